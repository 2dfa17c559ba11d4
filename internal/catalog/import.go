package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
	"github.com/schollz/progressbar/v3"
)

const defaultBatchSize = 100

// ImportOptions controls how items are written to the store.
type ImportOptions struct {
	// Progress receives a progress bar when non-nil.
	Progress  io.Writer
	BatchSize int
}

// ImportStats summarizes an import run.
type ImportStats struct {
	ByCategory map[string]int
	Items      int
	Batches    int
}

// Import writes items to the store in batches.
func Import(ctx context.Context, store service.CatalogStore, items []model.CatalogItem, opts ImportOptions) (ImportStats, error) {
	stats := ImportStats{ByCategory: make(map[string]int)}
	if len(items) == 0 {
		return stats, nil
	}

	size := opts.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = newProgressBar(opts.Progress, len(items))
	}

	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		end := min(start+size, len(items))
		batch := items[start:end]
		if err := store.SaveCatalogItems(ctx, batch); err != nil {
			return stats, fmt.Errorf("failed to save catalog batch %d: %w", stats.Batches+1, err)
		}

		stats.Batches++
		stats.Items += len(batch)
		for _, item := range batch {
			stats.ByCategory[item.Category]++
		}

		if bar != nil {
			if err := bar.Add(len(batch)); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	if bar != nil {
		if err := bar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
	}

	slog.Info("Imported catalog", "items", stats.Items, "batches", stats.Batches)
	return stats, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing catalog...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
