package git

import (
	"strings"

	"emperror.dev/errors"
	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/go-git/go-git/v5/plumbing"
	"golang.org/x/exp/slices"
)

type ListBranches struct {
	// If true, remote-tracking branches are listed as well, named
	// "<remote>/<branch>". Symbolic refs such as origin/HEAD are skipped.
	IncludeRemotes bool
}

// ListBranches lists the branches of the repository sorted by name.
func (r *Repo) ListBranches(opts *ListBranches) ([]branches.Branch, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list references")
	}
	defer refs.Close()

	var ret []branches.Branch
	if err := refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		switch {
		case name.IsBranch():
		case name.IsRemote() && opts.IncludeRemotes:
			if strings.HasSuffix(name.String(), "/"+plumbing.HEAD.String()) {
				return nil
			}
		default:
			return nil
		}
		ret = append(ret, branches.Branch{ID: ref.Hash(), Name: name.Short()})
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "failed to iterate references")
	}
	slices.SortFunc(ret, func(a, b branches.Branch) int {
		return strings.Compare(a.Name, b.Name)
	})
	r.log.WithField("count", len(ret)).Debug("listed branches")
	return ret, nil
}
