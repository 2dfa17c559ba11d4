package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/swipes/internal/catalog"
	"github.com/Veraticus/swipes/internal/classification"
	"github.com/Veraticus/swipes/internal/cli"
	"github.com/Veraticus/swipes/internal/common"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Import and search the store catalog",
	}

	cmd.AddCommand(catalogImportCmd())
	cmd.AddCommand(catalogSearchCmd())
	cmd.AddCommand(catalogClassifyCmd())

	return cmd
}

func catalogImportCmd() *cobra.Command {
	var (
		batchSize int
		snapshot  bool
	)

	cmd := &cobra.Command{
		Use:   "import <feed.json>",
		Short: "Import the store's JSON catalog feed",
		Long: `Load a catalog feed (a JSON array of {name, price, salePrice, department}, or an
object with an "items" array), classify every item and save it. Re-importing
updates prices in place.`,
		Example: `  swipes catalog import market-feed.json --snapshot`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Catalog import")
			ctx := handler.HandleInterrupts(cmd.Context(), "swipes catalog import "+args[0])

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open feed: %w", err)
			}
			defer func() {
				if closeErr := f.Close(); closeErr != nil {
					slog.Error("failed to close feed", "error", closeErr)
				}
			}()

			items, err := catalog.LoadFeed(ctx, f, classification.NewDefaultClassifier())
			if err != nil {
				return common.NewUserError("Could not read the catalog feed", err)
			}

			if snapshot {
				manager, err := a.store.NewSnapshotManager()
				if err != nil {
					return fmt.Errorf("failed to create snapshot manager: %w", err)
				}
				info, err := manager.Create(ctx, "", "before catalog import of "+args[0])
				if err != nil {
					return fmt.Errorf("failed to create snapshot: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Snapshot "+info.ID+" created"))
			}

			stats, err := catalog.Import(ctx, a.store, items, catalog.ImportOptions{
				Progress:  cmd.ErrOrStderr(),
				BatchSize: batchSize,
			})
			if err != nil {
				if handler.WasInterrupted() || errors.Is(err, context.Canceled) {
					return common.NewUserError(fmt.Sprintf("Import stopped after %d items", stats.Items), err)
				}
				return fmt.Errorf("catalog import failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d items in %d batch(es)", stats.Items, stats.Batches)))
			return writeCategoryCounts(out, stats.ByCategory)
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "Items saved per transaction")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Snapshot the database before importing")

	return cmd
}

func writeCategoryCounts(out io.Writer, counts map[string]int) error {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  %s\t%d\n", name, counts[name]); err != nil {
			return fmt.Errorf("failed to write category row: %w", err)
		}
	}
	return w.Flush()
}

func catalogSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search catalog items by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.store.SearchCatalog(ctx, strings.Join(args, " "), limit)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.format.FormatCatalog(items))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum results")

	return cmd
}

func catalogClassifyCmd() *cobra.Command {
	var department string

	cmd := &cobra.Command{
		Use:   "classify <name>",
		Short: "Show how an item name would be categorized",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := classification.NewDefaultClassifier().Classify(strings.Join(args, " "), department)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", res.Glyph, cli.BoldStyle.Render(res.Category),
				cli.SubtleStyle.Render("("+string(res.CategorySource)+")"))
			return nil
		},
	}

	cmd.Flags().StringVar(&department, "department", "", "Store department id")

	return cmd
}
