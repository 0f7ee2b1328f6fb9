package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ersonp/balance-core/internal/application/handlers"
	"github.com/ersonp/balance-core/internal/domain/ports"
	"github.com/ersonp/balance-core/internal/domain/services"
	"github.com/ersonp/balance-core/internal/infrastructure/config"
	"github.com/ersonp/balance-core/internal/infrastructure/filestore"
	"github.com/ersonp/balance-core/internal/infrastructure/logger"
	"github.com/ersonp/balance-core/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	EntityHandler *handlers.EntityHandler
	PatchHandler  *handlers.PatchHandler
}

// internalDeps holds all dependencies including low-level components.
type internalDeps struct {
	Deps
	relationalDB *sqlite.Repository
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if !config.Exists(cwd) {
		return fmt.Errorf("balance is not initialized in %s (run balance init)", cwd)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Log)

	relationalDB, err := openDatabase(context.Background(), cfg.DatabasePath(cwd))
	if err != nil {
		return err
	}
	defer relationalDB.Close()

	store := filestore.New(cfg.DataDir(cwd))
	cache := services.NewEntityCache()

	patchService := services.NewPatchService(relationalDB, store, cache, log.WithField("component", "patches"))
	entityService := services.NewEntityService(store, patchService, cache, log.WithField("component", "entities"))

	deps := &internalDeps{
		Deps: Deps{
			Config:        cfg,
			EntityHandler: handlers.NewEntityHandler(entityService),
			PatchHandler:  handlers.NewPatchHandler(patchService),
		},
		relationalDB: relationalDB,
	}

	return fn(deps)
}

// openDatabase opens the changelog database and makes sure its schema exists.
func openDatabase(ctx context.Context, path string) (*sqlite.Repository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	relationalDB, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	if err != nil {
		return nil, fmt.Errorf("creating sqlite repository: %w", err)
	}

	if err := relationalDB.EnsureSchema(ctx); err != nil {
		relationalDB.Close()
		return nil, fmt.Errorf("ensuring sqlite schema: %w", err)
	}
	return relationalDB, nil
}

// withRelationalDB provides direct relational database access.
func withRelationalDB(fn func(ports.RelationalDB) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(d.relationalDB)
	})
}

// withEntityHandler provides access to the EntityHandler for entity commands.
func withEntityHandler(fn func(*handlers.EntityHandler) error) error {
	return withDeps(func(d *Deps) error {
		return fn(d.EntityHandler)
	})
}

// withPatchHandler provides access to the PatchHandler for patch commands.
func withPatchHandler(fn func(*handlers.PatchHandler) error) error {
	return withDeps(func(d *Deps) error {
		return fn(d.PatchHandler)
	})
}
