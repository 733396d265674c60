package main

import (
	"context"

	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/cobra"
)

var onPathFlags relationFlags

var onPathCmd = &cobra.Command{
	Use:   "on-path",
	Short: "list branches on the line between base and head",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelation(cmd, &onPathFlags, (*branches.Index).OnPath)
	},
}

var dependentsFlags relationFlags

var dependentsCmd = &cobra.Command{
	Use:   "dependents",
	Short: "list branches that descend from base and follow head's line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelation(cmd, &dependentsFlags, (*branches.Index).Dependents)
	},
}

func init() {
	addRelationFlags(onPathCmd.Flags(), &onPathFlags)
	addRelationFlags(dependentsCmd.Flags(), &dependentsFlags)
}

type relationFunc = func(
	idx *branches.Index,
	ctx context.Context,
	repo branches.Repository,
	base, head plumbing.Hash,
) *branches.Index

func runRelation(cmd *cobra.Command, opts *relationFlags, relation relationFunc) error {
	ctx := cmd.Context()
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
	base, head, err := resolveRelation(ctx, repo, idx, matcher, opts)
	if err != nil {
		return err
	}
	printIndex(cmd.OutOrStdout(), relation(idx, ctx, repo, base, head), matcher)
	return nil
}
