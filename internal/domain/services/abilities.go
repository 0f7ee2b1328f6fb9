package services

import "github.com/ersonp/balance-core/internal/domain/entities"

// directSlots are the single-ability slots of the object form, in array-form
// order. ToObjectForm never fills secondary; a Secondary item overflows.
var directSlots = []struct {
	key  string
	role entities.AbilityRole
}{
	{entities.SlotPrimary, entities.RolePrimary},
	{entities.SlotSecondary, entities.RoleSecondary},
	{entities.SlotDefense, entities.RoleDefense},
	{entities.SlotUltimate, entities.RoleUltimate},
}

// ToArrayForm converts hero abilities into the editor's uniform array form.
//
// An array is returned unchanged. A role-keyed object yields passives first
// (in order), then primary, secondary, defense and ultimate, then any overflow
// entries from "other". Every entry gets mana_cost and cooldown defaults of 0
// underneath its own fields plus a type tag; overflow entries keep their own
// tag. Elements of passive or other that are not objects are dropped.
// Anything else yields an empty array.
func ToArrayForm(abilities any) []any {
	switch v := abilities.(type) {
	case []any:
		return v
	case map[string]any:
		return objectToArray(v)
	default:
		return []any{}
	}
}

func objectToArray(obj map[string]any) []any {
	out := make([]any, 0, 8)

	if passives, ok := obj[entities.SlotPassive].([]any); ok {
		for _, p := range passives {
			if item, ok := p.(map[string]any); ok {
				out = append(out, tagAbility(item, entities.RolePassive))
			}
		}
	}

	for _, slot := range directSlots {
		if item, ok := obj[slot.key].(map[string]any); ok {
			out = append(out, tagAbility(item, slot.role))
		}
	}

	if overflow, ok := obj[entities.SlotOther].([]any); ok {
		for _, o := range overflow {
			item, ok := o.(map[string]any)
			if !ok {
				continue
			}
			role := entities.RoleOther
			if own, ok := item[entities.AbilityFieldType].(string); ok && own != "" {
				role = entities.AbilityRole(own)
			}
			out = append(out, tagAbility(item, role))
		}
	}

	return out
}

// tagAbility copies item over the editor defaults and sets its role tag.
func tagAbility(item map[string]any, role entities.AbilityRole) map[string]any {
	out := make(map[string]any, len(item)+3)
	out[entities.AbilityFieldManaCost] = float64(0)
	out[entities.AbilityFieldCooldown] = float64(0)
	for k, v := range item {
		out[k] = cloneValue(v)
	}
	out[entities.AbilityFieldType] = string(role)
	return out
}

// ToObjectForm converts editor-form abilities back into the role-keyed object.
//
// Non-array input is returned unchanged. Items without a type tag are dropped.
// The first Primary, Defense or Ultimate item fills its slot; later ones
// overflow into "other" in encounter order, as does every other role.
// Overflow entries keep their type tag unless it is "Other"; empty ones are
// dropped.
func ToObjectForm(abilities any) any {
	items, ok := abilities.([]any)
	if !ok {
		return abilities
	}

	out := map[string]any{
		entities.SlotPrimary:  map[string]any{},
		entities.SlotDefense:  map[string]any{},
		entities.SlotUltimate: map[string]any{},
	}
	passives := []any{}
	var overflow []any

	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		role, _ := item[entities.AbilityFieldType].(string)
		if role == "" {
			continue
		}
		ability := stripAbilityDefaults(item)

		switch entities.AbilityRole(role) {
		case entities.RolePassive:
			passives = append(passives, ability)
		case entities.RolePrimary, entities.RoleDefense, entities.RoleUltimate:
			key := slotFor(entities.AbilityRole(role))
			if isEmptySlot(out[key]) {
				out[key] = ability
			} else {
				overflow = appendOverflow(overflow, ability, role)
			}
		default:
			overflow = appendOverflow(overflow, ability, role)
		}
	}

	out[entities.SlotPassive] = passives
	if overflow != nil {
		out[entities.SlotOther] = overflow
	}
	return out
}

func slotFor(role entities.AbilityRole) string {
	for _, slot := range directSlots {
		if slot.role == role {
			return slot.key
		}
	}
	return entities.SlotOther
}

// appendOverflow adds ability to the "other" list with its role tag restored,
// since the list does not imply one. Abilities left empty once defaults are
// stripped, such as an unused secondary slot, are dropped.
func appendOverflow(overflow []any, ability map[string]any, role string) []any {
	if len(ability) == 0 {
		return overflow
	}
	if entities.AbilityRole(role) != entities.RoleOther {
		ability[entities.AbilityFieldType] = role
	}
	return append(overflow, ability)
}

func isEmptySlot(v any) bool {
	if v == nil {
		return true
	}
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}

// stripAbilityDefaults removes the role tag, zero-valued editor defaults and
// an empty mechanics.features list from a copy of item.
func stripAbilityDefaults(item map[string]any) map[string]any {
	out := CloneEntity(item)
	delete(out, entities.AbilityFieldType)

	for _, field := range []string{entities.AbilityFieldManaCost, entities.AbilityFieldCooldown} {
		if v, ok := out[field]; ok && isZeroNumber(v) {
			delete(out, field)
		}
	}

	mechanics, ok := out[entities.AbilityFieldMechanics].(map[string]any)
	if !ok {
		return out
	}
	if features, ok := mechanics[entities.AbilityFieldFeatures].([]any); ok && len(features) == 0 {
		delete(mechanics, entities.AbilityFieldFeatures)
		if len(mechanics) == 0 {
			delete(out, entities.AbilityFieldMechanics)
		}
	}
	return out
}
