package branches

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
)

// Dependents returns the groups that descend from base and are not siblings
// of head, i.e. groups whose only shared history with head is base itself.
// The base commit is always kept if it is in the index.
//
// The repository is asked for two merge bases per group.
func (idx *Index) Dependents(
	ctx context.Context,
	repo Repository,
	base plumbing.Hash,
	head plumbing.Hash,
) *Index {
	return idx.filter(func(id plumbing.Hash, group []Branch) []Branch {
		convergesAtBase := mergeBaseIs(ctx, repo, id, head, base)
		isSharedBase := convergesAtBase && id != base
		isBaseDescendant := mergeBaseIs(ctx, repo, id, base, base)
		log := logrus.WithField("branch", group[0].Name)
		if isSharedBase {
			log.Tracef("branch is not on the line of HEAD (%s)", head)
			return nil
		}
		if !isBaseDescendant {
			log.Tracef("branch does not descend from %s", base)
			return nil
		}
		return group
	})
}

// OnPath returns the groups that lie on the ancestry line from base to head,
// both ends included.
//
// The repository is asked for two merge bases per group.
func (idx *Index) OnPath(
	ctx context.Context,
	repo Repository,
	base plumbing.Hash,
	head plumbing.Hash,
) *Index {
	return idx.filter(func(id plumbing.Hash, group []Branch) []Branch {
		isHeadAncestor := mergeBaseIs(ctx, repo, id, head, id)
		isBaseDescendant := mergeBaseIs(ctx, repo, id, base, base)
		log := logrus.WithField("branch", group[0].Name)
		if !isHeadAncestor {
			log.Tracef("branch is not an ancestor of HEAD (%s)", head)
			return nil
		}
		if !isBaseDescendant {
			log.Tracef("branch does not descend from %s", base)
			return nil
		}
		return group
	})
}

// Protected returns only the branches whose names are protected. Groups with
// no protected branch are dropped.
func (idx *Index) Protected(matcher ProtectionMatcher) *Index {
	return idx.filter(func(_ plumbing.Hash, group []Branch) []Branch {
		var kept []Branch
		for _, b := range group {
			if matcher.IsProtected(b.Name) {
				logrus.WithField("branch", b.Name).Trace("branch is protected")
				kept = append(kept, b)
			}
		}
		return kept
	})
}

// mergeBaseIs reports whether the merge base of a and b is want. A missing
// merge base (unrelated histories or unknown commits) reports false.
func mergeBaseIs(ctx context.Context, repo Repository, a, b, want plumbing.Hash) bool {
	mb, ok := repo.MergeBase(ctx, a, b)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"a": a.String(),
			"b": b.String(),
		}).Trace("no merge base")
		return false
	}
	return mb == want
}
