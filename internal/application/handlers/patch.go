package handlers

import (
	"context"

	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/domain/services"
)

// PatchHandler handles change queue and patch operations at the application layer.
type PatchHandler struct {
	patchService *services.PatchService
}

// NewPatchHandler creates a new PatchHandler.
func NewPatchHandler(patchService *services.PatchService) *PatchHandler {
	return &PatchHandler{
		patchService: patchService,
	}
}

// HandlePending returns the queued change records.
func (h *PatchHandler) HandlePending(ctx context.Context) ([]entities.ChangeRecord, error) {
	return h.patchService.Pending(ctx)
}

// HandleDiscard drops one queued change record.
func (h *PatchHandler) HandleDiscard(ctx context.Context, id string) error {
	return h.patchService.Discard(ctx, id)
}

// HandleCommit bundles the queue into a new patch.
func (h *PatchHandler) HandleCommit(ctx context.Context, meta services.PatchMeta) (*entities.Patch, error) {
	return h.patchService.Commit(ctx, meta)
}

// HandleList returns recent patches, newest first.
func (h *PatchHandler) HandleList(ctx context.Context, limit int) ([]entities.Patch, error) {
	return h.patchService.List(ctx, limit)
}

// HandleShow returns one patch with its change records.
func (h *PatchHandler) HandleShow(ctx context.Context, id string) (*entities.Patch, error) {
	return h.patchService.Get(ctx, id)
}

// HandleRollback reverts a patch.
func (h *PatchHandler) HandleRollback(ctx context.Context, id string) (*services.RollbackResult, error) {
	return h.patchService.Rollback(ctx, id)
}

// HandleHistory returns the committed change records of one entity.
func (h *PatchHandler) HandleHistory(ctx context.Context, category entities.Category, name string) ([]entities.ChangeRecord, error) {
	return h.patchService.History(ctx, category, entities.NormalizeFilename(name))
}
