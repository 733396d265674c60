package main

import (
	"fmt"
	"io"
	"strings"

	"emperror.dev/errors"
	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/aviator-co/stackbase/internal/git"
	"github.com/aviator-co/stackbase/internal/stacks"
	"github.com/aviator-co/stackbase/internal/utils/colors"
	"github.com/dustin/go-humanize"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var stackCmd = &cobra.Command{
	Use:     "stack [<revision>]",
	Aliases: []string{"st"},
	Short:   "show the stack of branches that a revision belongs to",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rev := "HEAD"
		if len(args) == 1 {
			rev = args[0]
		}
		repo, err := getRepo()
		if err != nil {
			return err
		}
		head, err := repo.ResolveCommit(rev)
		if err != nil {
			return err
		}
		idx, err := loadIndex(repo)
		if err != nil {
			return err
		}
		matcher, err := protectionMatcher(repo)
		if err != nil {
			return err
		}

		stack, err := stacks.Detect(cmd.Context(), repo, idx, matcher, head)
		if errors.Is(err, stacks.ErrNoProtectedBase) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), colors.Warning(fmt.Sprintf(
				"%s does not build on any protected branch (%s)",
				rev, strings.Join(matcher.Patterns(), ", "),
			)))
			return nil
		} else if err != nil {
			return err
		}

		var current string
		if rev == "HEAD" {
			current, err = repo.CurrentBranchName()
			if err != nil {
				logrus.WithError(err).Debug("HEAD is detached")
			}
		}
		printStack(cmd.OutOrStdout(), repo, stack, current)
		return nil
	},
}

type commitLoader interface {
	Commit(id plumbing.Hash) (branches.Commit, error)
}

// printStack prints the stack from the top (head) down to its protected base.
func printStack(w io.Writer, repo commitLoader, stack *stacks.Stack, current string) {
	describe := func(id plumbing.Hash) string {
		c, err := repo.Commit(id)
		if err != nil {
			logrus.WithError(err).Debug("failed to load commit")
			return colors.Commit(git.ShortSha(id.String()))
		}
		return fmt.Sprintf(
			"%s %s %s",
			colors.Commit(git.ShortSha(id.String())),
			c.Summary,
			colors.Faint("("+humanize.Time(c.When)+")"),
		)
	}
	branchLabel := func(b branches.Branch) string {
		label := colors.Branch(b.Name)
		if b.Name == current {
			label += " " + colors.Head("(HEAD)")
		}
		return label
	}

	for i := len(stack.Path) - 1; i >= 0; i-- {
		b := stack.Path[i]
		_, _ = fmt.Fprintf(w, " * %s %s\n", branchLabel(b), describe(b.ID))
		_, _ = fmt.Fprintln(w, " │")
	}
	for _, b := range stack.Dependents {
		_, _ = fmt.Fprintf(w, " ├ %s %s %s\n", branchLabel(b), colors.Faint("(dependent)"), describe(b.ID))
		_, _ = fmt.Fprintln(w, " │")
	}
	_, _ = fmt.Fprintf(
		w, " ◆ %s %s\n",
		colors.Protected(stack.Base.Name),
		colors.Faint("(merge base "+git.ShortSha(stack.MergeBase.String())+")"),
	)
}
