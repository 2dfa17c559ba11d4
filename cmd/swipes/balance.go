package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/swipes/internal/cli"
	"github.com/spf13/cobra"
)

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show or edit your balances",
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

			profile, err := a.engine.Profile(ctx, userID)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.format.FormatBalances(profile))
			return nil
		},
	}

	cmd.AddCommand(balanceSetCmd())
	cmd.AddCommand(balanceResetCmd())

	return cmd
}

func balanceSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set id=amount [id=amount...]",
		Short:   "Set balances by hand",
		Long:    `Overwrite balances, e.g. after checking the card office. Negative amounts become zero.`,
		Example: `  swipes balance set dining=212.40 swipes=9`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amounts, err := parseAssignments(args)
			if err != nil {
				return friendlyError(err)
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			userID, err := a.currentUserID()
			if err != nil {
				return err
			}

			profile, err := a.engine.UpdateBalances(ctx, userID, amounts)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.format.FormatBalances(profile))
			return nil
		},
	}
}

func balanceResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Apply any due weekly allowance resets",
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

			reset, err := a.engine.ApplyResets(ctx, userID)
			if err != nil {
				return friendlyError(err)
			}

			out := cmd.OutOrStdout()
			if len(reset) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No weekly resets due"))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess("Reset "+strings.Join(reset, ", ")))
			return nil
		},
	}
}
