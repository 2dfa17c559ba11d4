package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/swipes/internal/cli"
	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/storage"
	"github.com/spf13/cobra"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Manage database snapshots",
		Long: `Create, list, restore, and delete database snapshots.

Take a snapshot before a semester rollover or a bulk catalog import so the ledger
can be put back if something goes wrong.`,
		Example: `  swipes snapshot create --tag pre-spring
  swipes snapshot list
  swipes snapshot restore pre-spring`,
	}

	cmd.AddCommand(snapshotCreateCmd())
	cmd.AddCommand(snapshotListCmd())
	cmd.AddCommand(snapshotRestoreCmd())
	cmd.AddCommand(snapshotDeleteCmd())

	return cmd
}

// withSnapshots opens the database and hands its snapshot manager to fn.
func withSnapshots(cmd *cobra.Command, fn func(*storage.SnapshotManager) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	manager, err := a.store.NewSnapshotManager()
	if err != nil {
		return fmt.Errorf("failed to create snapshot manager: %w", err)
	}
	return fn(manager)
}

func snapshotCreateCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSnapshots(cmd, func(manager *storage.SnapshotManager) error {
				info, err := manager.Create(cmd.Context(), tag, description)
				if err != nil {
					if errors.Is(err, storage.ErrSnapshotExists) || errors.Is(err, storage.ErrInvalidSnapshotID) {
						return common.NewUserError("Cannot create snapshot "+tag, err)
					}
					return fmt.Errorf("failed to create snapshot: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s Created snapshot %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					formatFileSize(info.FileSize))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Snapshot name (auto-generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the snapshot")

	return cmd
}

func snapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSnapshots(cmd, func(manager *storage.SnapshotManager) error {
				snapshots, err := manager.List(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(snapshots) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No snapshots yet. Use 'swipes snapshot create' to make one."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					cli.TableHeaderStyle.Render("ID"),
					cli.TableHeaderStyle.Render("Created"),
					cli.TableHeaderStyle.Render("Size"),
					cli.TableHeaderStyle.Render("Rows"),
					cli.TableHeaderStyle.Render("Description"))
				for _, s := range snapshots {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						s.ID,
						s.CreatedAt.Format("2006-01-02 15:04"),
						formatFileSize(s.FileSize),
						formatRowCounts(s.RowCounts),
						s.Description)
				}
				return w.Flush()
			})
		},
	}
}

func snapshotRestoreCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the database with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !yes {
				ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(),
					"Restore snapshot "+args[0]+"? Changes since it was taken will be lost.")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Restore canceled"))
					return nil
				}
			}

			return withSnapshots(cmd, func(manager *storage.SnapshotManager) error {
				if err := manager.Restore(ctx, args[0]); err != nil {
					if errors.Is(err, storage.ErrSnapshotNotFound) || errors.Is(err, storage.ErrSnapshotCorrupted) {
						return common.NewUserError("Cannot restore snapshot "+args[0], err)
					}
					return fmt.Errorf("failed to restore snapshot: %w", err)
				}
				slog.Info("Snapshot restored", "id", args[0])
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Restored snapshot "+args[0]))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func snapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSnapshots(cmd, func(manager *storage.SnapshotManager) error {
				if err := manager.Delete(cmd.Context(), args[0]); err != nil {
					if errors.Is(err, storage.ErrSnapshotNotFound) {
						return common.NewUserError("No snapshot named "+args[0], err)
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted snapshot "+args[0]))
				return nil
			})
		},
	}
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRowCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		if counts[name] > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[name]))
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, " ")
}
