package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/balance-core/internal/application/handlers"
	"github.com/ersonp/balance-core/internal/domain/entities"
)

func newFmtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt [category] [file]",
		Short: "Rewrite entity files in canonical key order",
		Long: `Rewrite entity files in canonical key order without changing any value.

With no arguments every entity of every category is formatted.

Examples:
  balance fmt
  balance fmt heroes
  balance fmt heroes astral_monk`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				category entities.Category
				name     string
			)
			if len(args) > 0 {
				c, err := entities.ParseCategory(args[0])
				if err != nil {
					return err
				}
				category = c
			}
			if len(args) > 1 {
				name = args[1]
			}

			return withEntityHandler(func(handler *handlers.EntityHandler) error {
				result, err := handler.HandleFormat(cmd.Context(), category, name)
				if err != nil {
					return fmt.Errorf("formatting: %w", err)
				}

				for _, target := range result.Changed {
					fmt.Printf("Formatted %s\n", target)
				}
				fmt.Printf("%d checked, %d rewritten\n", result.Checked, len(result.Changed))
				return nil
			})
		},
	}
}
