package git

import (
	"bytes"
	"context"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sirupsen/logrus"
)

// MergeBase returns the best common ancestor of a and b. If git finds more
// than one (criss-cross merges), the one with the lowest id is returned so the
// result is stable.
//
// Unknown commits and unrelated histories both report false; lookup failures
// are logged rather than returned.
func (r *Repo) MergeBase(ctx context.Context, a, b plumbing.Hash) (plumbing.Hash, bool) {
	log := r.log.WithFields(logrus.Fields{"a": ShortSha(a.String()), "b": ShortSha(b.String())})
	if err := ctx.Err(); err != nil {
		log.WithError(err).Debug("merge base cancelled")
		return plumbing.ZeroHash, false
	}
	ca, err := r.repo.CommitObject(a)
	if err != nil {
		log.WithError(err).Debug("failed to load commit for merge base")
		return plumbing.ZeroHash, false
	}
	if a == b {
		return ca.Hash, true
	}
	cb, err := r.repo.CommitObject(b)
	if err != nil {
		log.WithError(err).Debug("failed to load commit for merge base")
		return plumbing.ZeroHash, false
	}
	bases, err := ca.MergeBase(cb)
	if err != nil {
		log.WithError(err).Warn("failed to compute merge base")
		return plumbing.ZeroHash, false
	}
	if len(bases) == 0 {
		return plumbing.ZeroHash, false
	}
	if len(bases) > 1 {
		log.WithField("count", len(bases)).Debug("multiple merge bases, using the lowest id")
		sort.Slice(bases, func(i, j int) bool {
			return bytes.Compare(bases[i].Hash[:], bases[j].Hash[:]) < 0
		})
	}
	return bases[0].Hash, true
}

// IsAncestor reports whether ancestor is reachable from descendant.
// A commit is its own ancestor.
func (r *Repo) IsAncestor(ctx context.Context, ancestor, descendant plumbing.Hash) bool {
	mb, ok := r.MergeBase(ctx, ancestor, descendant)
	return ok && mb == ancestor
}

func commitSummary(c *object.Commit) string {
	summary, _, _ := bytes.Cut([]byte(c.Message), []byte("\n"))
	return string(summary)
}
