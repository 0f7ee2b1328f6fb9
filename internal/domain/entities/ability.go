package entities

// AbilityRole is the role tag an ability carries in the editor's array form.
type AbilityRole string

const (
	RolePassive   AbilityRole = "Passive"
	RolePrimary   AbilityRole = "Primary"
	RoleSecondary AbilityRole = "Secondary"
	RoleDefense   AbilityRole = "Defense"
	RoleUltimate  AbilityRole = "Ultimate"
	// RoleOther tags overflow abilities that carried no role of their own.
	RoleOther AbilityRole = "Other"
)

// Keys of the on-disk role-keyed abilities object.
const (
	SlotPassive   = "passive"
	SlotPrimary   = "primary"
	SlotSecondary = "secondary"
	SlotDefense   = "defense"
	SlotUltimate  = "ultimate"
	SlotOther     = "other"
)

// Ability item fields touched by format conversion.
const (
	AbilityFieldType      = "type"
	AbilityFieldManaCost  = "mana_cost"
	AbilityFieldCooldown  = "cooldown"
	AbilityFieldMechanics = "mechanics"
	AbilityFieldFeatures  = "features"
)
