package stacks_test

import (
	"context"
	"testing"

	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/aviator-co/stackbase/internal/git"
	"github.com/aviator-co/stackbase/internal/git/gittest"
	"github.com/aviator-co/stackbase/internal/protect"
	"github.com/aviator-co/stackbase/internal/stacks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(bs []branches.Branch) []string {
	var ret []string
	for _, b := range bs {
		ret = append(ret, b.Name)
	}
	return ret
}

func loadIndex(t *testing.T, repo *git.Repo) *branches.Index {
	bs, err := repo.ListBranches(&git.ListBranches{})
	require.NoError(t, err)
	return branches.FromSlice(bs)
}

func TestDetect(t *testing.T) {
	// A - B - C - D - E
	//  \       \
	//   X       Z
	g := gittest.NewGraph(t)
	g.Linear("", "A", "B", "C", "D", "E")
	g.Commit("X", "A")
	g.Commit("Z", "C")
	g.Branch("main", "A")
	g.Branch("feat1", "B")
	g.Branch("feat2", "D")
	g.Branch("feat2b", "D")
	g.Branch("top", "E")
	g.Branch("fork", "Z")
	g.Branch("side", "X")
	repo := g.Repo()
	matcher, err := protect.New("main")
	require.NoError(t, err)

	stack, err := stacks.Detect(context.Background(), repo, loadIndex(t, repo), matcher, g.ID("E"))
	require.NoError(t, err)
	assert.Equal(t, "main", stack.Base.Name)
	assert.Equal(t, g.ID("A"), stack.MergeBase)
	assert.Equal(t, g.ID("E"), stack.Head)
	assert.Equal(t, []string{"feat1", "feat2", "feat2b", "top"}, names(stack.Path))
	assert.Equal(t, []string{"fork"}, names(stack.Dependents))

	assert.True(t, stack.Contains("main"))
	assert.True(t, stack.Contains("fork"))
	assert.False(t, stack.Contains("side"))
}

func TestDetect_BaseAheadOfStack(t *testing.T) {
	// main moved on after the stack was created.
	// A - B - M (main)
	//      \
	//       C - D (feat)
	g := gittest.NewGraph(t)
	g.Linear("", "A", "B", "M")
	g.Linear("B", "C", "D")
	g.Branch("main", "M")
	g.Branch("feat", "D")
	repo := g.Repo()
	matcher, err := protect.New("main")
	require.NoError(t, err)

	stack, err := stacks.Detect(context.Background(), repo, loadIndex(t, repo), matcher, g.ID("D"))
	require.NoError(t, err)
	assert.Equal(t, "main", stack.Base.Name)
	assert.Equal(t, g.ID("B"), stack.MergeBase)
	assert.Equal(t, []string{"feat"}, names(stack.Path))
	assert.Empty(t, stack.Dependents)
}

func TestDetect_NoProtectedBase(t *testing.T) {
	g := gittest.NewGraph(t)
	g.Linear("", "A", "B")
	g.Commit("U")
	g.Branch("main", "U")
	g.Branch("feat", "B")
	repo := g.Repo()
	matcher, err := protect.New("main")
	require.NoError(t, err)

	_, err = stacks.Detect(context.Background(), repo, loadIndex(t, repo), matcher, g.ID("B"))
	assert.ErrorIs(t, err, stacks.ErrNoProtectedBase)
}

func TestDetect_HeadIsProtected(t *testing.T) {
	// A - B (main, release) - C (feat)
	g := gittest.NewGraph(t)
	g.Linear("", "A", "B", "C")
	g.Branch("main", "B")
	g.Branch("release", "B")
	g.Branch("feat", "C")
	repo := g.Repo()
	matcher, err := protect.New("main", "release")
	require.NoError(t, err)
	idx := loadIndex(t, repo)

	stack, err := stacks.Detect(context.Background(), repo, idx, matcher, g.ID("B"))
	require.NoError(t, err)
	assert.Equal(t, "main", stack.Base.Name)
	assert.Equal(t, g.ID("B"), stack.MergeBase)
	assert.Len(t, stack.Path, 0)
	assert.Empty(t, stack.Dependents)

	stack, err = stacks.Detect(context.Background(), repo, idx, matcher, g.ID("C"))
	require.NoError(t, err)
	assert.Equal(t, []string{"feat"}, names(stack.Path))
}
