package git_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/aviator-co/stackbase/internal/git"
	"github.com/aviator-co/stackbase/internal/git/gittest"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A - B - C - D
//      \
//       X - Y
//
// U (unrelated root)
func newForkGraph(t *testing.T) *gittest.Graph {
	g := gittest.NewGraph(t)
	g.Linear("", "A", "B", "C", "D")
	g.Linear("B", "X", "Y")
	g.Commit("U")
	return g
}

func TestRepo_MergeBase(t *testing.T) {
	g := newForkGraph(t)
	repo := g.Repo()
	ctx := context.Background()

	for _, tc := range []struct {
		a, b string
		want string
	}{
		{"D", "Y", "B"},
		{"Y", "D", "B"},
		{"B", "D", "B"},
		{"D", "B", "B"},
		{"C", "C", "C"},
		{"A", "X", "A"},
	} {
		mb, ok := repo.MergeBase(ctx, g.ID(tc.a), g.ID(tc.b))
		require.True(t, ok, "merge-base %s %s", tc.a, tc.b)
		assert.Equal(t, tc.want, g.Label(mb), "merge-base %s %s", tc.a, tc.b)
	}

	_, ok := repo.MergeBase(ctx, g.ID("D"), g.ID("U"))
	assert.False(t, ok, "unrelated histories have no merge base")

	_, ok = repo.MergeBase(ctx, g.ID("D"), plumbing.NewHash("0123456789abcdef0123456789abcdef01234567"))
	assert.False(t, ok, "unknown commits have no merge base")
}

func TestRepo_IsAncestor(t *testing.T) {
	g := newForkGraph(t)
	repo := g.Repo()
	ctx := context.Background()

	assert.True(t, repo.IsAncestor(ctx, g.ID("A"), g.ID("D")))
	assert.True(t, repo.IsAncestor(ctx, g.ID("B"), g.ID("Y")))
	assert.True(t, repo.IsAncestor(ctx, g.ID("C"), g.ID("C")), "a commit is its own ancestor")
	assert.False(t, repo.IsAncestor(ctx, g.ID("D"), g.ID("A")))
	assert.False(t, repo.IsAncestor(ctx, g.ID("X"), g.ID("D")))
	assert.False(t, repo.IsAncestor(ctx, g.ID("U"), g.ID("D")))
}

func TestRepo_MergeBase_CrissCross(t *testing.T) {
	// Two merge commits that each merge the other side produce two equally
	// good merge bases; the lowest id is picked.
	g := gittest.NewGraph(t)
	g.Commit("A")
	g.Commit("L", "A")
	g.Commit("R", "A")
	g.Commit("M1", "L", "R")
	g.Commit("M2", "R", "L")

	mb, ok := g.Repo().MergeBase(context.Background(), g.ID("M1"), g.ID("M2"))
	require.True(t, ok)
	l, r := g.ID("L"), g.ID("R")
	want := l
	if r.String() < l.String() {
		want = r
	}
	assert.Equal(t, want, mb)
}

func TestRepo_AncestorsFrom(t *testing.T) {
	g := newForkGraph(t)
	repo := g.Repo()
	ctx := context.Background()

	var labels []string
	for c := range repo.AncestorsFrom(ctx, g.ID("Y")) {
		labels = append(labels, g.Label(c.ID))
	}
	assert.Equal(t, []string{"Y", "X", "B", "A"}, labels)

	// A fresh walk starts over and stopping early is fine.
	labels = nil
	for c := range repo.AncestorsFrom(ctx, g.ID("Y")) {
		labels = append(labels, g.Label(c.ID))
		if len(labels) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"Y", "X"}, labels)

	for c := range repo.AncestorsFrom(ctx, g.ID("D")) {
		assert.Equal(t, "D", c.Summary)
		assert.False(t, c.When.IsZero())
		break
	}

	var count int
	for range repo.AncestorsFrom(ctx, plumbing.NewHash("0123456789abcdef0123456789abcdef01234567")) {
		count++
	}
	assert.Zero(t, count, "unknown start yields nothing")
}

func TestRepo_AncestorsFrom_MergeVisitsEachCommitOnce(t *testing.T) {
	g := gittest.NewGraph(t)
	g.Linear("", "A", "B")
	g.Commit("C", "A")
	g.Commit("M", "B", "C")

	seen := map[string]int{}
	var labels []string
	for c := range g.Repo().AncestorsFrom(context.Background(), g.ID("M")) {
		seen[g.Label(c.ID)]++
		labels = append(labels, g.Label(c.ID))
	}
	assert.Equal(t, map[string]int{"M": 1, "B": 1, "C": 1, "A": 1}, seen)
	assert.Equal(t, "M", labels[0])
	assert.Equal(t, "A", labels[len(labels)-1])
}

func TestRepo_AncestorsFrom_Cancelled(t *testing.T) {
	g := newForkGraph(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var count int
	for range g.Repo().AncestorsFrom(ctx, g.ID("D")) {
		count++
	}
	assert.Zero(t, count)
}

func TestRepo_ListBranches(t *testing.T) {
	g := newForkGraph(t)
	g.Branch("main", "D")
	g.Branch("feat", "Y")
	g.Branch("also-main", "D")
	g.RemoteBranch("origin", "main", "C")
	repo := g.Repo()

	bs, err := repo.ListBranches(&git.ListBranches{})
	require.NoError(t, err)
	assert.Equal(t, []branches.Branch{
		{ID: g.ID("D"), Name: "also-main"},
		{ID: g.ID("Y"), Name: "feat"},
		{ID: g.ID("D"), Name: "main"},
	}, bs)

	bs, err = repo.ListBranches(&git.ListBranches{IncludeRemotes: true})
	require.NoError(t, err)
	assert.Equal(t, []branches.Branch{
		{ID: g.ID("D"), Name: "also-main"},
		{ID: g.ID("Y"), Name: "feat"},
		{ID: g.ID("D"), Name: "main"},
		{ID: g.ID("C"), Name: "origin/main"},
	}, bs)
}

func TestRepo_ResolveAndCurrentBranch(t *testing.T) {
	g := newForkGraph(t)
	g.Branch("feat", "Y")
	g.Checkout("feat")
	repo := g.Repo()

	name, err := repo.CurrentBranchName()
	require.NoError(t, err)
	assert.Equal(t, "feat", name)

	head, err := repo.ResolveCommit("HEAD")
	require.NoError(t, err)
	assert.Equal(t, g.ID("Y"), head)

	parent, err := repo.ResolveCommit("feat~1")
	require.NoError(t, err)
	assert.Equal(t, g.ID("X"), parent)

	_, err = repo.ResolveCommit("does-not-exist")
	require.Error(t, err)

	c, err := repo.Commit(g.ID("X"))
	require.NoError(t, err)
	assert.Equal(t, "X", c.Summary)
}

func TestRepo_ConfigValues(t *testing.T) {
	g := newForkGraph(t)
	repo := g.Repo()

	values, err := repo.ConfigValues("stack", "protected-branch")
	require.NoError(t, err)
	assert.Empty(t, values)

	g.AddConfig("stack", "protected-branch", "release/*", "v*")
	values, err = repo.ConfigValues("stack", "protected-branch")
	require.NoError(t, err)
	assert.Equal(t, []string{"release/*", "v*"}, values)
}

func TestRepo_GitWithoutWorkTree(t *testing.T) {
	repo := gittest.NewGraph(t).Repo()
	_, err := repo.Git(context.Background(), "status")
	assert.ErrorIs(t, err, git.ErrNoWorkTree)
	_, err = repo.GitDir(context.Background())
	assert.ErrorIs(t, err, git.ErrNoWorkTree)
}

func TestRepo_GitDir(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	repo, err := git.OpenRepo(dir)
	require.NoError(t, err)
	gitDir, err := repo.GitDir(context.Background())
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(filepath.Join(dir, ".git"))
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(gitDir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
