package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	var pay string

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"forecast"},
		Short:   "Show balance, streak, forecast and recent spending",
		Long: `Show the dashboard for one balance type: the current balance and streak, when the
balance runs out at your average daily spend, what your subscriptions will cost
through the end of the month, and where the money went.`,
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

			dash, err := a.engine.Dashboard(ctx, userID, pay)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.format.FormatDashboard(dash))
			return nil
		},
	}

	cmd.Flags().StringVar(&pay, "pay", "", "Balance type to show (default: first on your plan)")

	return cmd
}
