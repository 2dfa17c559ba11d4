package main

import (
	"fmt"

	"github.com/Veraticus/swipes/internal/engine"
	"github.com/spf13/cobra"
)

func purchaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record purchases",
	}

	cmd.AddCommand(purchaseLogCmd())

	return cmd
}

func purchaseLogCmd() *cobra.Command {
	var (
		pay, store, key, date string
		items                 []string
		total                 float64
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a purchase against one of your balances",
		Long: `Debit a balance, extend your daily streak and record the purchase.

Items are given as name[:quantity[:category]]. Items without a category are
classified by name. Pass --idempotency-key to make retries safe: a repeated key
returns the original purchase instead of charging twice.`,
		Example: `  swipes purchase log --pay dining --total 6.50 --store "Campus Market" \
    --item "Everything Bagel:2" --item "Cold Brew"
  swipes purchase log --pay swipes --total 1 --item Lunch:1:Meals --idempotency-key tap-0412`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			lineItems, err := parseItems(items)
			if err != nil {
				return friendlyError(err)
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			when, err := parseDate(date, a.cfg.Location)
			if err != nil {
				return friendlyError(err)
			}

			userID, err := a.currentUserID()
			if err != nil {
				return err
			}

			req := engine.PurchaseRequest{
				UserID:           userID,
				PaymentTypeID:    pay,
				Store:            store,
				IdempotencyToken: key,
				Items:            lineItems,
				Total:            total,
			}
			if when != nil {
				req.Date = *when
			}

			result, err := a.engine.LogPurchase(ctx, req)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.format.FormatPurchaseResult(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&pay, "pay", "", "Balance type to pay with, e.g. swipes or dining (required)")
	cmd.Flags().Float64Var(&total, "total", 0, "Purchase total in the balance's unit (required)")
	cmd.Flags().StringVar(&store, "store", "", "Where the purchase happened")
	cmd.Flags().StringArrayVar(&items, "item", nil, "Line item as name[:qty[:category]] (repeatable, required)")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Client token that makes retries safe")
	cmd.Flags().StringVar(&date, "date", "", "Purchase date, not in the future (YYYY-MM-DD or RFC 3339, default now)")
	_ = cmd.MarkFlagRequired("pay")
	_ = cmd.MarkFlagRequired("total")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}
