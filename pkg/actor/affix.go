package actor

import "strings"

// AffixSlot determines where an affix name attaches to a base name.
type AffixSlot string

const (
	AffixSlotPrefix AffixSlot = "prefix"
	AffixSlotSuffix AffixSlot = "suffix"
)

// Affix is a named modifier applied to a base monster or item.
// The base name is retained alongside the affixed display name so
// quest-objective matching survives affix application.
type Affix struct {
	Name   string    `json:"name"`
	Slot   AffixSlot `json:"slot"`
	Effect string    `json:"effect,omitempty"` // e.g. "+2 defense", "fire damage"
}

// AffixedName composes a display name from a base name and its affixes:
// prefix? + baseName + suffix?. At most one affix per slot is applied;
// extra affixes in the same slot are ignored for naming (their effects
// still apply).
func AffixedName(baseName string, affixes []Affix) string {
	var prefix, suffix string
	for _, a := range affixes {
		switch a.Slot {
		case AffixSlotPrefix:
			if prefix == "" {
				prefix = a.Name
			}
		case AffixSlotSuffix:
			if suffix == "" {
				suffix = a.Name
			}
		}
	}

	parts := make([]string, 0, 3)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, baseName)
	if suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, " ")
}
