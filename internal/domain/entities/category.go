// Package entities contains core domain data structures.
package entities

import (
	"fmt"
	"strings"
)

// Category is the kind of game-balance entity; each category is one directory of JSON files.
type Category string

const (
	CategoryUnits       Category = "units"
	CategoryHeroes      Category = "heroes"
	CategorySpells      Category = "spells"
	CategoryConsumables Category = "consumables"
)

// Categories lists every supported category in display order.
var Categories = []Category{
	CategoryUnits,
	CategoryHeroes,
	CategorySpells,
	CategoryConsumables,
}

// IsValid reports whether c is one of the supported categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category %q, valid categories: %v", s, Categories)
	}
	return c, nil
}
