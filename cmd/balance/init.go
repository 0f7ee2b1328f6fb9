package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/balance-core/internal/application/handlers"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new balance project",
		Long:  "Creates a .balance directory with default configuration, the entity data directories and the changelog database.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	result, err := handlers.NewInitHandler().Handle(ctx, cwd)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Created data directory: %s\n", result.DataDir)

	relationalDB, err := openDatabase(ctx, result.DatabasePath)
	if err != nil {
		return err
	}
	defer relationalDB.Close()

	fmt.Printf("Created changelog database: %s\n", result.DatabasePath)
	fmt.Println("Balance initialized successfully!")

	return nil
}
