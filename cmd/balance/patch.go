package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/balance-core/internal/application/handlers"
	"github.com/ersonp/balance-core/internal/domain/services"
)

func newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Manage queued changes and patches",
		Long: `Manage queued changes and patches.

Saved edits wait in a queue until they are committed as a versioned patch.
A committed patch can be rolled back by replaying its diffs in reverse.`,
	}

	cmd.AddCommand(
		newPatchPendingCmd(),
		newPatchDiscardCmd(),
		newPatchCommitCmd(),
		newPatchListCmd(),
		newPatchShowCmd(),
		newPatchRollbackCmd(),
	)

	return cmd
}

func newPatchPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List queued changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPatchHandler(func(handler *handlers.PatchHandler) error {
				changes, err := handler.HandlePending(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing pending changes: %w", err)
				}

				if len(changes) == 0 {
					fmt.Println("No pending changes.")
					return nil
				}

				fmt.Printf("Pending changes (%d):\n\n", len(changes))
				for _, change := range changes {
					writeChange(os.Stdout, change)
				}
				return nil
			})
		},
	}
}

func newPatchDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard <change-id>",
		Short: "Drop a queued change without touching entity files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPatchHandler(func(handler *handlers.PatchHandler) error {
				if err := handler.HandleDiscard(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("discarding change: %w", err)
				}
				fmt.Printf("Discarded change: %s\n", args[0])
				return nil
			})
		},
	}
}

func newPatchCommitCmd() *cobra.Command {
	var meta services.PatchMeta

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Bundle queued changes into a patch",
		Long: `Bundle every queued change into a new versioned patch.

Examples:
  balance patch commit --version 1.4.0 --title "Monk tuning"
  balance patch commit --version 1.4.1 --title "Hotfix" --tag hotfix --date 2026-03-14`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPatchHandler(func(handler *handlers.PatchHandler) error {
				patch, err := handler.HandleCommit(cmd.Context(), meta)
				if err != nil {
					return fmt.Errorf("committing patch: %w", err)
				}

				fmt.Printf("Committed patch %s (%s) with %d changes\n", patch.Version, patch.ID, len(patch.Changes))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&meta.Version, "version", "", "Patch version")
	cmd.Flags().StringVar(&meta.Title, "title", "", "Patch title")
	cmd.Flags().StringVar(&meta.Date, "date", "", "Patch date (YYYY-MM-DD, default today)")
	cmd.Flags().StringSliceVar(&meta.Tags, "tag", nil, "Patch tag (repeatable)")
	_ = cmd.MarkFlagRequired("version")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newPatchListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPatchHandler(func(handler *handlers.PatchHandler) error {
				patches, err := handler.HandleList(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("listing patches: %w", err)
				}

				if len(patches) == 0 {
					fmt.Println("No patches found.")
					return nil
				}

				for _, patch := range patches {
					writePatchSummary(os.Stdout, patch)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of patches to display")

	return cmd
}

func newPatchShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <patch-id>",
		Short: "Show a patch with its changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPatchHandler(func(handler *handlers.PatchHandler) error {
				patch, err := handler.HandleShow(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("loading patch: %w", err)
				}

				writePatchSummary(os.Stdout, *patch)
				fmt.Println()
				for _, change := range patch.Changes {
					writeChange(os.Stdout, change)
				}
				return nil
			})
		},
	}
}

func newPatchRollbackCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rollback <patch-id>",
		Short: "Revert every change of a patch",
		Long: `Revert every change of a patch by applying its diffs in reverse.

Entities created by the patch are removed. Deleted entities cannot be
restored because no snapshot is kept; they are reported as skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirmAction(fmt.Sprintf("Roll back patch %s?", args[0])) {
				fmt.Println("Cancelled.")
				return nil
			}

			return withPatchHandler(func(handler *handlers.PatchHandler) error {
				result, err := handler.HandleRollback(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("rolling back patch: %w", err)
				}

				fmt.Printf("Rolled back patch %s\n", result.PatchID)
				printTargets("Reverted", result.Reverted)
				printTargets("Removed", result.Removed)
				printTargets("Skipped", result.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func printTargets(label string, targets []string) {
	if len(targets) == 0 {
		return
	}
	fmt.Printf("  %s: %s\n", label, strings.Join(targets, ", "))
}
