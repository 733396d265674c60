package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"emperror.dev/errors"
	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/aviator-co/stackbase/internal/config"
	"github.com/aviator-co/stackbase/internal/git"
	"github.com/aviator-co/stackbase/internal/protect"
	"github.com/aviator-co/stackbase/internal/utils/colors"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func loadIndex(repo *git.Repo) (*branches.Index, error) {
	bs, err := repo.ListBranches(&git.ListBranches{
		IncludeRemotes: config.Stackbase.IncludeRemotes,
	})
	if err != nil {
		return nil, err
	}
	return branches.FromSlice(bs), nil
}

func protectionMatcher(repo *git.Repo) (*protect.Matcher, error) {
	gitRules, err := repo.ConfigValues("stack", "protected-branch")
	if err != nil {
		// Config file rules still apply.
		logrus.WithError(err).Warn("failed to read stack.protected-branch from git config")
	}
	rules := config.ProtectedBranchRules(gitRules...)
	logrus.WithField("rules", rules).Debug("protected branch rules")
	return protect.New(rules...)
}

type relationFlags struct {
	Base string
	Head string
}

func addRelationFlags(flags *pflag.FlagSet, opts *relationFlags) {
	flags.StringVar(
		&opts.Base, "base", "",
		"base revision (defaults to where HEAD meets its protected base branch)",
	)
	flags.StringVar(&opts.Head, "head", "HEAD", "head revision")
}

// resolveRelation resolves the base and head revisions. An explicit base must
// be an ancestor of head. An empty base resolves to the merge base of head and
// its protected base branch.
func resolveRelation(
	ctx context.Context,
	repo *git.Repo,
	idx *branches.Index,
	matcher branches.ProtectionMatcher,
	opts *relationFlags,
) (plumbing.Hash, plumbing.Hash, error) {
	head, err := repo.ResolveCommit(opts.Head)
	if err != nil {
		return plumbing.ZeroHash, plumbing.ZeroHash, err
	}
	if opts.Base != "" {
		base, err := repo.ResolveCommit(opts.Base)
		if err != nil {
			return plumbing.ZeroHash, plumbing.ZeroHash, err
		}
		if !repo.IsAncestor(ctx, base, head) {
			return plumbing.ZeroHash, plumbing.ZeroHash, errors.Errorf(
				"base %s is not an ancestor of %s", opts.Base, opts.Head,
			)
		}
		return base, head, nil
	}
	protected, ok := branches.FindProtectedBase(ctx, repo, idx.Protected(matcher), head)
	if !ok {
		return plumbing.ZeroHash, plumbing.ZeroHash, errors.Errorf(
			"%s has no protected base branch; pass --base explicitly", opts.Head,
		)
	}
	base, ok := repo.MergeBase(ctx, head, protected.ID)
	if !ok {
		return plumbing.ZeroHash, plumbing.ZeroHash, errors.Errorf(
			"%s shares no history with %s", opts.Head, protected.Name,
		)
	}
	logrus.WithFields(logrus.Fields{
		"protected_base": protected.Name,
		"base":           base.String(),
	}).Debug("using protected base")
	return base, head, nil
}

// printIndex prints one line per commit of the index with the branches that
// point at it.
func printIndex(w io.Writer, idx *branches.Index, matcher branches.ProtectionMatcher) {
	for id, group := range idx.All() {
		var names []string
		for _, b := range group {
			if matcher.IsProtected(b.Name) {
				names = append(names, colors.Protected(b.Name))
			} else {
				names = append(names, colors.Branch(b.Name))
			}
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", colors.Commit(git.ShortSha(id.String())), strings.Join(names, ", "))
	}
}
