package gittest

import (
	"testing"
	"time"

	"github.com/aviator-co/stackbase/internal/git"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	logrus.SetLevel(logrus.TraceLevel)
}

// Graph is an in-memory repository whose history is built commit by commit.
// Commits are referred to by the label they were created with.
type Graph struct {
	t       testing.TB
	repo    *gogit.Repository
	tree    plumbing.Hash
	commits map[string]plumbing.Hash
	labels  map[plumbing.Hash]string
	when    time.Time
}

// NewGraph creates an empty in-memory repository.
func NewGraph(t testing.TB) *Graph {
	t.Helper()
	repo, err := gogit.Init(memory.NewStorage(), nil)
	require.NoError(t, err, "failed to initialize in-memory repository")

	g := &Graph{
		t:       t,
		repo:    repo,
		commits: map[string]plumbing.Hash{},
		labels:  map[plumbing.Hash]string{},
		when:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	obj := repo.Storer.NewEncodedObject()
	require.NoError(t, (&object.Tree{}).Encode(obj), "failed to encode empty tree")
	g.tree, err = repo.Storer.SetEncodedObject(obj)
	require.NoError(t, err, "failed to store empty tree")
	return g
}

// Repo returns the repository wrapped for the code under test.
func (g *Graph) Repo() *git.Repo {
	return git.FromGoGit(g.repo, "")
}

// Commit creates a commit with the given label and parents (by label) and
// returns its id. Every commit is one minute newer than the previous one.
func (g *Graph) Commit(label string, parents ...string) plumbing.Hash {
	g.t.Helper()
	require.NotContains(g.t, g.commits, label, "duplicate commit label %q", label)

	g.when = g.when.Add(time.Minute)
	sig := object.Signature{Name: "stackbase-test", Email: "stackbase-test@nonexistant", When: g.when}
	c := &object.Commit{
		Author:    sig,
		Committer: sig,
		Message:   label + "\n",
		TreeHash:  g.tree,
	}
	for _, p := range parents {
		c.ParentHashes = append(c.ParentHashes, g.ID(p))
	}
	obj := g.repo.Storer.NewEncodedObject()
	require.NoError(g.t, c.Encode(obj), "failed to encode commit %q", label)
	id, err := g.repo.Storer.SetEncodedObject(obj)
	require.NoError(g.t, err, "failed to store commit %q", label)

	g.commits[label] = id
	g.labels[id] = label
	return id
}

// Linear creates a chain of commits, each the parent of the next. The first
// label gets the given parent (if any).
func (g *Graph) Linear(parent string, labels ...string) {
	g.t.Helper()
	for _, label := range labels {
		if parent == "" {
			g.Commit(label)
		} else {
			g.Commit(label, parent)
		}
		parent = label
	}
}

// ID returns the id of a labelled commit.
func (g *Graph) ID(label string) plumbing.Hash {
	g.t.Helper()
	id, ok := g.commits[label]
	require.True(g.t, ok, "unknown commit label %q", label)
	return id
}

// Label returns the label of a commit id, or the id itself if unknown.
func (g *Graph) Label(id plumbing.Hash) string {
	if label, ok := g.labels[id]; ok {
		return label
	}
	return id.String()
}

// Branch points refs/heads/<name> at the labelled commit.
func (g *Graph) Branch(name, label string) {
	g.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), g.ID(label))
	require.NoError(g.t, g.repo.Storer.SetReference(ref), "failed to set branch %q", name)
}

// RemoteBranch points refs/remotes/<remote>/<name> at the labelled commit.
func (g *Graph) RemoteBranch(remote, name, label string) {
	g.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remote, name), g.ID(label))
	require.NoError(g.t, g.repo.Storer.SetReference(ref), "failed to set remote branch %s/%s", remote, name)
}

// Checkout points HEAD at the given branch.
func (g *Graph) Checkout(name string) {
	g.t.Helper()
	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(name))
	require.NoError(g.t, g.repo.Storer.SetReference(ref), "failed to checkout %q", name)
}

// AddConfig appends values to a git config key (e.g. "stack", "protected-branch").
func (g *Graph) AddConfig(section, key string, values ...string) {
	g.t.Helper()
	cfg, err := g.repo.Config()
	require.NoError(g.t, err)
	s := cfg.Raw.Section(section)
	for _, v := range values {
		s.AddOption(key, v)
	}
	require.NoError(g.t, g.repo.SetConfig(cfg))
}
