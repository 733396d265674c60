package main

import (
	"fmt"

	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/aviator-co/stackbase/internal/utils/colors"
	"github.com/spf13/cobra"
)

var protectedBaseFlags struct {
	All bool
}

var protectedBaseCmd = &cobra.Command{
	Use:   "protected-base [<revision>]",
	Short: "show the nearest protected branch that a revision builds on",
	Long: `Show the nearest protected branch that a revision (HEAD by default) builds on.

The history of the revision is walked backwards and the first commit where it
meets the history of a protected branch wins. With --all, every protected
branch meeting the history at that commit is printed.`,
	Args: cobra.MaximumNArgs(1),
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

		candidates := branches.ProtectedBaseCandidates(cmd.Context(), repo, idx.Protected(matcher), head)
		if len(candidates) == 0 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), colors.Warning(fmt.Sprintf("no protected base found for %s", rev)))
			return nil
		}
		if !protectedBaseFlags.All {
			candidates = candidates[:1]
		}
		for _, b := range candidates {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), b.Name)
		}
		return nil
	},
}

func init() {
	protectedBaseCmd.Flags().BoolVar(
		&protectedBaseFlags.All, "all", false,
		"print every protected branch at the nearest meeting point",
	)
}
