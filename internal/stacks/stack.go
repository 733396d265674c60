package stacks

import (
	"context"

	"emperror.dev/errors"
	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

const ErrNoProtectedBase = errors.Sentinel("no protected base branch found")

// Stack is the set of branches stacked on top of a protected branch for a
// given head commit.
type Stack struct {
	Head plumbing.Hash
	// The protected branch the stack is rooted on.
	Base branches.Branch
	// The commit where the history of Head meets Base.
	MergeBase plumbing.Hash
	// Branches on the line from MergeBase to Head, ordered from the base
	// towards Head. Protected branches are not included.
	Path []branches.Branch
	// Branches that descend from MergeBase and are not on Path (for example,
	// branches forked from a commit of the stack). Protected branches are not
	// included.
	Dependents []branches.Branch
}

// Contains returns true if name is one of the stack's branches or its base.
func (s *Stack) Contains(name string) bool {
	if s.Base.Name == name {
		return true
	}
	for _, b := range s.Path {
		if b.Name == name {
			return true
		}
	}
	for _, b := range s.Dependents {
		if b.Name == name {
			return true
		}
	}
	return false
}

// Detect finds the stack that head belongs to. It returns ErrNoProtectedBase
// if head does not share history with any protected branch.
func Detect(
	ctx context.Context,
	repo branches.Repository,
	idx *branches.Index,
	matcher branches.ProtectionMatcher,
	head plumbing.Hash,
) (*Stack, error) {
	base, ok := branches.FindProtectedBase(ctx, repo, idx.Protected(matcher), head)
	if !ok {
		return nil, ErrNoProtectedBase
	}
	mergeBase, ok := repo.MergeBase(ctx, head, base.ID)
	if !ok {
		panic("invariant error: protected base " + base.Name + " has no merge base with HEAD")
	}
	log := logrus.WithFields(logrus.Fields{
		"base":       base.Name,
		"merge_base": mergeBase.String(),
		"head":       head.String(),
	})
	log.Debug("found protected base")

	stack := &Stack{
		Head:      head,
		Base:      base,
		MergeBase: mergeBase,
	}
	unprotected := func(group []branches.Branch) []branches.Branch {
		var ret []branches.Branch
		for _, b := range group {
			if !matcher.IsProtected(b.Name) {
				ret = append(ret, b)
			}
		}
		return ret
	}

	onPath := idx.OnPath(ctx, repo, mergeBase, head)
	var pathGroups [][]branches.Branch
	for c := range repo.AncestorsFrom(ctx, head) {
		if group, ok := onPath.Get(c.ID); ok {
			if kept := unprotected(group); len(kept) > 0 {
				pathGroups = append(pathGroups, kept)
			}
		}
		if c.ID == mergeBase {
			break
		}
	}
	slices.Reverse(pathGroups)
	for _, group := range pathGroups {
		stack.Path = append(stack.Path, group...)
	}

	for id, group := range idx.Dependents(ctx, repo, mergeBase, head).All() {
		if onPath.Contains(id) {
			continue
		}
		stack.Dependents = append(stack.Dependents, unprotected(group)...)
	}
	log.WithFields(logrus.Fields{
		"path":       len(stack.Path),
		"dependents": len(stack.Dependents),
	}).Debug("detected stack")
	return stack, nil
}
