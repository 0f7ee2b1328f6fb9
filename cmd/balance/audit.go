package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/domain/ports"
)

func newAuditCmd() *cobra.Command {
	var (
		target string
		action string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log",
		Long: `Show the audit log of queued changes, commits and rollbacks.

Examples:
  balance audit --action patch.committed
  balance audit --target astral_monk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (target == "") == (action == "") {
				return fmt.Errorf("specify exactly one of --target or --action")
			}

			return withRelationalDB(func(db ports.RelationalDB) error {
				var (
					entries []entities.AuditEntry
					err     error
				)
				if target != "" {
					entries, err = db.FindAuditLog(cmd.Context(), target)
				} else {
					entries, err = db.FindAuditLogByAction(cmd.Context(), action, limit)
				}
				if err != nil {
					return fmt.Errorf("reading audit log: %w", err)
				}

				if len(entries) == 0 {
					fmt.Println("No audit entries.")
					return nil
				}

				for _, entry := range entries {
					fmt.Printf("%s  %-18s %s", entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Action, entry.TargetID)
					if len(entry.Details) > 0 {
						fmt.Printf("  %s", formatValue(entry.Details))
					}
					fmt.Println()
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Show entries for one target")
	cmd.Flags().StringVar(&action, "action", "", "Show entries of one action")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultHistoryLimit, "Maximum number of entries to display")

	return cmd
}
