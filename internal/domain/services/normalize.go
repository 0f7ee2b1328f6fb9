package services

import (
	"strings"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// internalPrefix marks bookkeeping keys that are never persisted or diffed.
const internalPrefix = "_"

// Normalize canonicalizes a value before structural comparison. Any object
// carrying an "abilities" field has that field forced into canonical object
// form, whether it was stored as an array or as an object. The input is
// never modified.
func Normalize(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = Normalize(v[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, field := range v {
			if k == entities.FieldAbilities {
				field = canonicalAbilities(field)
			}
			out[k] = Normalize(field)
		}
		return out
	default:
		return v
	}
}

// abilityKeys are the object-form keys the array form can represent.
var abilityKeys = map[string]struct{}{
	entities.SlotPassive:   {},
	entities.SlotPrimary:   {},
	entities.SlotSecondary: {},
	entities.SlotDefense:   {},
	entities.SlotUltimate:  {},
	entities.SlotOther:     {},
}

// canonicalAbilities rebuilds object-form abilities through the array form so
// that missing slots, zero defaults and slot routing match what ToObjectForm
// produces for the editor's array. Keys the array form has no place for are
// carried over as they are.
func canonicalAbilities(abilities any) any {
	obj, ok := abilities.(map[string]any)
	if !ok {
		return ToObjectForm(abilities)
	}
	out := ToObjectForm(ToArrayForm(obj)).(map[string]any)
	for k, v := range obj {
		if _, known := abilityKeys[k]; !known {
			out[k] = v
		}
	}
	return out
}

// NormalizeEntity is Normalize for an entity document.
func NormalizeEntity(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	return Normalize(doc).(map[string]any)
}

// IsInternalField reports whether a top-level key is bookkeeping: an
// underscore-prefixed marker or the save timestamp.
func IsInternalField(key string) bool {
	return strings.HasPrefix(key, internalPrefix) || key == entities.FieldLastModified
}

// StripInternal returns a shallow copy of doc without bookkeeping keys.
func StripInternal(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if IsInternalField(k) {
			continue
		}
		out[k] = v
	}
	return out
}
