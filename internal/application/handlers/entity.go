package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/domain/services"
	"github.com/ersonp/balance-core/internal/infrastructure/parsers"
)

// EntityHandler handles entity operations at the application layer.
type EntityHandler struct {
	entityService *services.EntityService
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(entityService *services.EntityService) *EntityHandler {
	return &EntityHandler{
		entityService: entityService,
	}
}

// EntityListResult contains the result of listing entities.
type EntityListResult struct {
	Category entities.Category `json:"category"`
	Names    []string          `json:"names"`
	Total    int               `json:"total"`
}

// HandleList returns the entity names of a category.
func (h *EntityHandler) HandleList(ctx context.Context, category entities.Category) (*EntityListResult, error) {
	names, err := h.entityService.List(ctx, category)
	if err != nil {
		return nil, err
	}

	return &EntityListResult{
		Category: category,
		Names:    names,
		Total:    len(names),
	}, nil
}

// HandleShow returns one entity, either as stored or prepared for the editor.
func (h *EntityHandler) HandleShow(ctx context.Context, category entities.Category, name string, editor bool) (map[string]any, error) {
	name = entities.NormalizeFilename(name)
	if editor {
		return h.entityService.LoadForEditing(ctx, category, name)
	}
	return h.entityService.LoadRaw(ctx, category, name)
}

// SaveOptions controls how a form file is saved.
type SaveOptions struct {
	Format string // "json", "yaml", or "auto"
	Create bool   // Write a new entity instead of a delta save
}

// HandleSave reads an edited form from formPath and saves it. Existing
// entities get a delta save against the editor snapshot they were loaded as.
func (h *EntityHandler) HandleSave(ctx context.Context, category entities.Category, name, formPath string, opts SaveOptions) (*services.SaveResult, error) {
	name = entities.NormalizeFilename(name)

	form, err := readForm(formPath, opts.Format)
	if err != nil {
		return nil, err
	}

	if opts.Create {
		return h.entityService.Create(ctx, category, name, form)
	}

	initial, err := h.entityService.LoadForEditing(ctx, category, name)
	if err != nil {
		return nil, err
	}

	return h.entityService.Save(ctx, services.SaveRequest{
		Category: category,
		Filename: name,
		Initial:  initial,
		Form:     form,
	})
}

func readForm(formPath, format string) (map[string]any, error) {
	var parser parsers.Parser
	if format == "" || format == "auto" {
		parser = parsers.ForFile(formPath)
	} else {
		parser = parsers.ForFormat(format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", formPath)
	}

	file, err := os.Open(formPath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	form, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return form, nil
}

// HandleSet sets one dotted field path. rawValue is decoded as JSON when it
// parses, otherwise it is stored as a string.
func (h *EntityHandler) HandleSet(ctx context.Context, category entities.Category, name, path, rawValue string) (*services.SaveResult, error) {
	return h.entityService.SetField(ctx, category, entities.NormalizeFilename(name), path, ParseValue(rawValue))
}

// ParseValue decodes a command-line value: JSON literals keep their type,
// anything else is a plain string.
func ParseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// HandleDelete removes an entity.
func (h *EntityHandler) HandleDelete(ctx context.Context, category entities.Category, name string) (*entities.ChangeRecord, error) {
	return h.entityService.Delete(ctx, category, entities.NormalizeFilename(name))
}

// FormatResult reports which files a format pass rewrote.
type FormatResult struct {
	Checked int
	Changed []string
}

// HandleFormat rewrites entity files in canonical key order. With an empty
// category every category is formatted; with an empty name every entity of
// the category is.
func (h *EntityHandler) HandleFormat(ctx context.Context, category entities.Category, name string) (*FormatResult, error) {
	if name != "" && category == "" {
		return nil, fmt.Errorf("formatting %s: category is required", name)
	}

	categories := entities.Categories
	if category != "" {
		categories = []entities.Category{category}
	}

	result := &FormatResult{}
	for _, c := range categories {
		names := []string{entities.NormalizeFilename(name)}
		if name == "" {
			var err error
			names, err = h.entityService.List(ctx, c)
			if err != nil {
				return nil, err
			}
		}

		for _, n := range names {
			changed, err := h.entityService.Format(ctx, c, n)
			if err != nil {
				return nil, err
			}
			result.Checked++
			if changed {
				result.Changed = append(result.Changed, string(c)+"/"+n)
			}
		}
	}
	return result, nil
}
