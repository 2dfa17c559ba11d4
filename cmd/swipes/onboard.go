package main

import (
	"fmt"

	"github.com/Veraticus/swipes/internal/cli"
	"github.com/Veraticus/swipes/internal/engine"
	"github.com/spf13/cobra"
)

func onboardCmd() *cobra.Command {
	var (
		tier        string
		leaderboard bool
	)

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Create your profile on a meal-plan tier",
		Long: `Create a profile for the user in the identity token. The tier picks the balance
types and starting amounts (see 'tiers' in the config file).`,
		Example: `  swipes onboard --tier first-year --leaderboard`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.currentIdentity()
			if err != nil {
				return err
			}

			profile, err := a.engine.Onboard(ctx, engine.OnboardRequest{
				Identity:         id,
				Tier:             tier,
				LeaderboardOptIn: leaderboard,
			})
			if err != nil {
				return friendlyError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Welcome, "+profile.DisplayName+"!"))
			fmt.Fprint(out, a.format.FormatBalances(profile))
			return nil
		},
	}

	cmd.Flags().StringVar(&tier, "tier", "", "Plan tier, e.g. first-year, upperclass, off-campus")
	cmd.Flags().BoolVar(&leaderboard, "leaderboard", false, "Show your streak on the wall of fame")
	_ = cmd.MarkFlagRequired("tier")

	return cmd
}
