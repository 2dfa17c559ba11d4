package main

import (
	"fmt"

	"github.com/Veraticus/swipes/internal/service"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var (
		pay, since, until string
		limit             int
		asc               bool
	)

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "List your purchases, newest first",
		Example: `  swipes history --pay dining --since 2025-09-01 --limit 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			filter := service.PurchaseFilter{PaymentTypeID: pay, Limit: limit}
			if asc {
				filter.Order = service.OrderDateAsc
			}
			if filter.Since, err = parseDate(since, a.cfg.Location); err != nil {
				return friendlyError(err)
			}
			if filter.Until, err = parseDate(until, a.cfg.Location); err != nil {
				return friendlyError(err)
			}

			userID, err := a.currentUserID()
			if err != nil {
				return err
			}

			purchases, err := a.engine.History(ctx, userID, filter)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.format.FormatHistory(purchases))
			return nil
		},
	}

	cmd.Flags().StringVar(&pay, "pay", "", "Only purchases paid with this balance type")
	cmd.Flags().StringVar(&since, "since", "", "Start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "End date, exclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum purchases to show (0 for all)")
	cmd.Flags().BoolVar(&asc, "oldest-first", false, "List oldest purchases first")

	return cmd
}
