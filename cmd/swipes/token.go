package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/swipes/internal/cli"
	"github.com/Veraticus/swipes/internal/config"
	"github.com/Veraticus/swipes/internal/identity"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and inspect identity tokens",
		Long: `Identity tokens are HS256 ID tokens from the campus identity provider. For local
development 'token issue' signs one with the configured identity.secret.`,
	}

	cmd.AddCommand(tokenIssueCmd())
	cmd.AddCommand(tokenWhoamiCmd())

	return cmd
}

func tokenIssueCmd() *cobra.Command {
	var (
		id  identity.Identity
		ttl time.Duration
	)

	cmd := &cobra.Command{
		Use:     "issue",
		Short:   "Sign a development identity token",
		Example: `  export SWIPES_AUTH_TOKEN=$(swipes token issue --sub ada --name "Ada Lovelace")`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			v, err := newVerifier(cfg)
			if err != nil {
				return err
			}

			token, err := v.Sign(id, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&id.UserID, "sub", "", "Stable user id (required)")
	cmd.Flags().StringVar(&id.DisplayName, "name", "", "Display name")
	cmd.Flags().StringVar(&id.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&id.PhotoURL, "picture", "", "Photo URL")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}

func tokenWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity in the current token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			id, err := verifyToken(cfg, viper.GetString("auth.token"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Signed in as "+id.UserID))
			if id.DisplayName != "" {
				fmt.Fprintf(out, "  Name:  %s\n", id.DisplayName)
			}
			if id.Email != "" {
				fmt.Fprintf(out, "  Email: %s\n", id.Email)
			}
			return nil
		},
	}
}
