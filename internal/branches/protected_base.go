package branches

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
)

// FindProtectedBase returns the protected branch whose history head most
// recently rejoined (or descends from). protected should already be
// restricted to protected branches (see Index.Protected).
//
// The second return value is false if no ancestor of head is the merge base
// of head and a protected branch.
func FindProtectedBase(
	ctx context.Context,
	repo Repository,
	protected *Index,
	head plumbing.Hash,
) (Branch, bool) {
	candidates := ProtectedBaseCandidates(ctx, repo, protected, head)
	if len(candidates) == 0 {
		return Branch{}, false
	}
	return candidates[0], true
}

// ProtectedBaseCandidates is like FindProtectedBase but returns every
// protected branch that meets head's history at the nearest point.
//
// When several protected commits share the same merge base with head, their
// groups are concatenated in ascending commit id order, so the first element
// is the branch FindProtectedBase returns.
func ProtectedBaseCandidates(
	ctx context.Context,
	repo Repository,
	protected *Index,
	head plumbing.Hash,
) []Branch {
	bases := map[plumbing.Hash][]Branch{}
	for id, group := range protected.All() {
		mb, ok := repo.MergeBase(ctx, head, id)
		if !ok {
			logrus.WithField("branch", group[0].Name).
				Tracef("protected branch shares no history with %s", head)
			continue
		}
		if len(bases[mb]) > 0 {
			logrus.WithFields(logrus.Fields{
				"merge_base": mb.String(),
				"branch":     group[0].Name,
				"existing":   bases[mb][0].Name,
			}).Debug("multiple protected branches share a merge base with HEAD")
		}
		bases[mb] = append(bases[mb], group...)
	}
	if len(bases) == 0 {
		return nil
	}

	for c := range repo.AncestorsFrom(ctx, head) {
		if group, ok := bases[c.ID]; ok {
			return group
		}
	}
	logrus.WithField("head", head.String()).Debug("no protected base found")
	return nil
}
