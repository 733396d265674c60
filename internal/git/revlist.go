package git

import (
	"context"
	"io"
	"iter"

	"emperror.dev/errors"
	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// AncestorsFrom walks the history of start breadth-first, so commits are
// yielded nearest first (start itself comes first). Each call performs a new
// walk; the walk is lazy and stops as soon as the consumer stops ranging.
//
// Failures to read objects end the walk early and are logged.
func (r *Repo) AncestorsFrom(ctx context.Context, start plumbing.Hash) iter.Seq[branches.Commit] {
	return func(yield func(branches.Commit) bool) {
		log := r.log.WithField("start", ShortSha(start.String()))
		c, err := r.repo.CommitObject(start)
		if err != nil {
			log.WithError(err).Debug("cannot walk history of unknown commit")
			return
		}
		commits := object.NewCommitIterBSF(c, nil, nil)
		defer commits.Close()
		for {
			if err := ctx.Err(); err != nil {
				log.WithError(err).Warn("history walk cancelled")
				return
			}
			c, err := commits.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				log.WithError(err).Warn("history walk stopped early")
				return
			}
			if !yield(toCommit(c)) {
				return
			}
		}
	}
}

// Commit loads a single commit.
func (r *Repo) Commit(id plumbing.Hash) (branches.Commit, error) {
	c, err := r.repo.CommitObject(id)
	if err != nil {
		return branches.Commit{}, errors.WrapIff(err, "failed to load commit %s", ShortSha(id.String()))
	}
	return toCommit(c), nil
}

// ResolveCommit resolves a revision (branch name, sha, HEAD~2, ...) to a commit id.
func (r *Repo) ResolveCommit(rev string) (plumbing.Hash, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, errors.WrapIff(err, "failed to resolve revision %q", rev)
	}
	return *h, nil
}

func toCommit(c *object.Commit) branches.Commit {
	return branches.Commit{
		ID:      c.Hash,
		Summary: commitSummary(c),
		When:    c.Committer.When,
	}
}
