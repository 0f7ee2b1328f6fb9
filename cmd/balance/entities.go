package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/balance-core/internal/application/handlers"
	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/domain/services"
)

func newEntitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Inspect and edit balance entities",
		Long: `Inspect and edit balance entities.

Every edit is saved as a delta against the stored file and queued as a
change record for the next patch.

Categories: units, heroes, spells, consumables`,
	}

	cmd.AddCommand(
		newEntitiesListCmd(),
		newEntitiesShowCmd(),
		newEntitiesSaveCmd(),
		newEntitiesSetCmd(),
		newEntitiesDeleteCmd(),
		newEntitiesHistoryCmd(),
	)

	return cmd
}

func newEntitiesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <category>",
		Short: "List entities in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := entities.ParseCategory(args[0])
			if err != nil {
				return err
			}

			return withEntityHandler(func(handler *handlers.EntityHandler) error {
				result, err := handler.HandleList(cmd.Context(), category)
				if err != nil {
					return fmt.Errorf("listing entities: %w", err)
				}

				if result.Total == 0 {
					fmt.Printf("No %s found.\n", category)
					return nil
				}

				fmt.Printf("%s (%d total):\n", strings.ToUpper(string(category[:1]))+string(category[1:]), result.Total)
				for _, name := range result.Names {
					fmt.Printf("  %s\n", name)
				}
				return nil
			})
		},
	}
}

func newEntitiesShowCmd() *cobra.Command {
	var editor bool

	cmd := &cobra.Command{
		Use:   "show <category> <file>",
		Short: "Print an entity",
		Long: `Print an entity as stored on disk.

With --editor the entity is printed the way the editor sees it: abilities
as a uniform list and legacy hero class fields renamed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := entities.ParseCategory(args[0])
			if err != nil {
				return err
			}

			return withEntityHandler(func(handler *handlers.EntityHandler) error {
				doc, err := handler.HandleShow(cmd.Context(), category, args[1], editor)
				if err != nil {
					return fmt.Errorf("loading entity: %w", err)
				}
				return writeDocument(os.Stdout, doc)
			})
		},
	}

	cmd.Flags().BoolVar(&editor, "editor", false, "Show the editor form of the entity")

	return cmd
}

func newEntitiesSaveCmd() *cobra.Command {
	var (
		formPath string
		opts     handlers.SaveOptions
	)

	cmd := &cobra.Command{
		Use:   "save <category> <file>",
		Short: "Save an edited form",
		Long: `Save an edited form document (JSON or YAML) over an entity.

Only the fields that differ from the stored entity are written back, so
an untouched legacy layout stays as it is. Use --new to create an entity.

Examples:
  balance entities save heroes astral_monk --form monk.yaml
  balance entities save units footman --form footman.json --new`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := entities.ParseCategory(args[0])
			if err != nil {
				return err
			}
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q, valid formats: %v", opts.Format, validFormats)
			}

			return withEntityHandler(func(handler *handlers.EntityHandler) error {
				result, err := handler.HandleSave(cmd.Context(), category, args[1], formPath, opts)
				if errors.Is(err, services.ErrNothingToSave) {
					fmt.Println("No changes to save.")
					return nil
				}
				if err != nil {
					return fmt.Errorf("saving entity: %w", err)
				}

				printSaveResult(category, result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formPath, "form", "f", "", "Path to the edited form document")
	cmd.Flags().StringVar(&opts.Format, "format", "auto", "Form format: auto, json, or yaml")
	cmd.Flags().BoolVar(&opts.Create, "new", false, "Create a new entity")
	_ = cmd.MarkFlagRequired("form")

	return cmd
}

func newEntitiesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <file> <path> <value>",
		Short: "Set one field of an entity",
		Long: `Set one field of an entity by its dotted path.

The value is read as JSON when it parses (numbers, booleans, objects),
otherwise it is stored as a string.

Examples:
  balance entities set heroes astral_monk abilities.primary.damage 35
  balance entities set units footman title "Shield Bearer"`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := entities.ParseCategory(args[0])
			if err != nil {
				return err
			}

			return withEntityHandler(func(handler *handlers.EntityHandler) error {
				result, err := handler.HandleSet(cmd.Context(), category, args[1], args[2], args[3])
				if err != nil {
					return fmt.Errorf("setting field: %w", err)
				}

				printSaveResult(category, result)
				return nil
			})
		},
	}
}

func newEntitiesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <category> <file>",
		Short: "Delete an entity",
		Long:  "Deletes an entity file. The deletion is queued for the next patch but cannot be rolled back.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := entities.ParseCategory(args[0])
			if err != nil {
				return err
			}

			if !force && !confirmAction(fmt.Sprintf("Delete %s/%s?", category, args[1])) {
				fmt.Println("Cancelled.")
				return nil
			}

			return withEntityHandler(func(handler *handlers.EntityHandler) error {
				change, err := handler.HandleDelete(cmd.Context(), category, args[1])
				if err != nil {
					return fmt.Errorf("deleting entity: %w", err)
				}

				fmt.Printf("Deleted %s/%s (change %s queued)\n", category, change.TargetID, change.ID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func newEntitiesHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <category> <file>",
		Short: "Show committed changes of an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := entities.ParseCategory(args[0])
			if err != nil {
				return err
			}

			return withPatchHandler(func(handler *handlers.PatchHandler) error {
				changes, err := handler.HandleHistory(cmd.Context(), category, args[1])
				if err != nil {
					return fmt.Errorf("loading history: %w", err)
				}

				if len(changes) == 0 {
					fmt.Println("No committed changes.")
					return nil
				}

				for _, change := range changes {
					fmt.Printf("%s  ", change.CreatedAt.Format("2006-01-02 15:04"))
					writeChange(os.Stdout, change)
				}
				return nil
			})
		},
	}
}

func printSaveResult(category entities.Category, result *services.SaveResult) {
	fmt.Printf("Saved %s/%s\n", category, result.Filename)
	if len(result.ChangedFields) > 0 {
		fmt.Printf("  Changed: %s\n", strings.Join(result.ChangedFields, ", "))
	}
	if result.Change != nil {
		fmt.Printf("  Queued change %s (%d diffs)\n", result.Change.ID, len(result.Change.Diffs))
	}
}
