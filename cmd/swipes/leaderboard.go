package main

import (
	"fmt"

	"github.com/Veraticus/swipes/internal/cli"
	"github.com/spf13/cobra"
)

func leaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "leaderboard",
		Aliases: []string{"wall"},
		Short:   "Show the wall of fame",
		Long:    `Rank opted-in students by current streak, then longest streak, then name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Leaderboard.DefaultLimit
			}

			entries, err := a.engine.Leaderboard(ctx, limit)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.format.FormatLeaderboard(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Number of entries to show (0 for all)")

	cmd.AddCommand(leaderboardOptCmd("join", "Show your streak on the wall of fame", true))
	cmd.AddCommand(leaderboardOptCmd("leave", "Remove yourself from the wall of fame", false))

	return cmd
}

func leaderboardOptCmd(use, short string, optIn bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			userID, err := a.currentUserID()
			if err != nil {
				return err
			}

			if _, err := a.engine.SetLeaderboardOptIn(ctx, userID, optIn); err != nil {
				return friendlyError(err)
			}

			msg := "You're on the wall of fame"
			if !optIn {
				msg = "You've left the wall of fame"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	}
}
