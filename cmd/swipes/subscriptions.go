package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/swipes/internal/cli"
	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/spf13/cobra"
)

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Manage weekly subscriptions",
	}

	cmd.AddCommand(subscriptionsAddCmd())
	cmd.AddCommand(subscriptionsListCmd())
	cmd.AddCommand(subscriptionsEndCmd())

	return cmd
}

func subscriptionsAddCmd() *cobra.Command {
	var (
		qty   int
		price float64
	)

	cmd := &cobra.Command{
		Use:   "add <item>",
		Short: "Subscribe to a weekly purchase of a catalog item",
		Long: `Start a weekly subscription. The item's price comes from the imported catalog
unless --price is given.`,
		Example: `  swipes subscriptions add "Oat Milk" --qty 2
  swipes subscriptions add "Farm Box" --price 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			item := model.CatalogItem{Name: args[0], Price: model.Money(price)}
			if !cmd.Flags().Changed("price") {
				found, err := a.store.GetCatalogItem(ctx, args[0])
				if err != nil {
					if errors.Is(err, common.ErrNotFound) {
						return common.NewUserError(fmt.Sprintf("%q is not in the catalog; pass --price or run 'swipes catalog import'", args[0]), err)
					}
					return err
				}
				item = *found
			}

			sub, err := a.engine.StartSubscription(ctx, userID, item, qty)
			if err != nil {
				return friendlyError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Subscribed to %d× %s for %s/week (id %s)",
				sub.Quantity, sub.Item.Name, model.Money(sub.WeeklyCost()), sub.ID)))
			return nil
		},
	}

	cmd.Flags().IntVar(&qty, "qty", 1, "Units per week")
	cmd.Flags().Float64Var(&price, "price", 0, "Unit price for items not in the catalog")

	return cmd
}

func subscriptionsListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your subscriptions",
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

			subs, err := a.engine.Subscriptions(ctx, userID, !all)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.format.FormatSubscriptions(subs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include ended subscriptions")

	return cmd
}

func subscriptionsEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <id>",
		Short: "End a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			sub, err := a.engine.EndSubscription(ctx, userID, args[0])
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Ended subscription to "+sub.Item.Name))
			return nil
		},
	}
}
