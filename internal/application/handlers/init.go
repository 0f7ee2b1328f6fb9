// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/balance-core/internal/infrastructure/config"
	"github.com/ersonp/balance-core/internal/infrastructure/filestore"
)

// InitHandler handles project initialization.
type InitHandler struct{}

// NewInitHandler creates a new init handler.
func NewInitHandler() *InitHandler {
	return &InitHandler{}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	DataDir      string
	DatabasePath string
}

// Handle writes the default config and creates one data directory per category.
func (h *InitHandler) Handle(_ context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("balance already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store := filestore.New(cfg.DataDir(basePath))
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("creating data directories: %w", err)
	}

	return &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		DataDir:      store.Root(),
		DatabasePath: cfg.DatabasePath(basePath),
	}, nil
}
