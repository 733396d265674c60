package branches

import (
	"context"
	"iter"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// Branch is a name bound to a commit.
type Branch struct {
	ID   plumbing.Hash
	Name string
}

// Commit is a single entry of an ancestor walk.
// Only ID is required; Summary and When are informational.
type Commit struct {
	ID      plumbing.Hash
	Summary string
	When    time.Time
}

// Repository is the view of the commit graph that branch classification needs.
type Repository interface {
	// MergeBase returns the nearest common ancestor of a and b. The second
	// return value is false if the commits share no history or either of them
	// is unknown.
	MergeBase(ctx context.Context, a, b plumbing.Hash) (plumbing.Hash, bool)

	// AncestorsFrom walks the history reachable from start, nearest first,
	// starting with start itself. Every call starts a fresh walk and every
	// commit is yielded at most once.
	AncestorsFrom(ctx context.Context, start plumbing.Hash) iter.Seq[Commit]
}

// ProtectionMatcher decides whether a branch name is protected.
type ProtectionMatcher interface {
	IsProtected(name string) bool
}

// ProtectionMatcherFunc adapts a plain function to a ProtectionMatcher.
type ProtectionMatcherFunc func(name string) bool

func (f ProtectionMatcherFunc) IsProtected(name string) bool {
	return f(name)
}
