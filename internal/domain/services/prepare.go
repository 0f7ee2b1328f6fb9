package services

import "github.com/ersonp/balance-core/internal/domain/entities"

// PrepareForEditing turns a raw disk snapshot into the shape the editor form
// is seeded from: abilities in array form and, for heroes, the legacy class
// field renamed to hero_class. The result is the normalized initial snapshot
// ComputeDelta compares the form against; raw is not modified.
func PrepareForEditing(category entities.Category, raw map[string]any) map[string]any {
	out := CloneEntity(raw)
	if out == nil {
		out = map[string]any{}
	}

	if abilities, ok := out[entities.FieldAbilities]; ok || category == entities.CategoryHeroes {
		out[entities.FieldAbilities] = ToArrayForm(abilities)
	}

	if category == entities.CategoryHeroes {
		if _, has := out[entities.FieldHeroClass]; !has {
			if class, ok := out[entities.FieldClass]; ok {
				out[entities.FieldHeroClass] = class
				delete(out, entities.FieldClass)
			}
		}
	}
	return out
}
