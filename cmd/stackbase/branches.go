package main

import (
	"github.com/spf13/cobra"
)

var branchesFlags struct {
	Protected bool
}

var branchesCmd = &cobra.Command{
	Use:     "branches",
	Aliases: []string{"br"},
	Short:   "list branches grouped by commit",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := getRepo()
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
		if branchesFlags.Protected {
			idx = idx.Protected(matcher)
		}
		printIndex(cmd.OutOrStdout(), idx, matcher)
		return nil
	},
}

func init() {
	branchesCmd.Flags().BoolVar(
		&branchesFlags.Protected, "protected", false,
		"only list protected branches",
	)
}
