package actor

// Rarity grades an item. Higher rarity monotonically increases affix
// probability and count; the top rarity is always fully affixed.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Item is a loot drop produced by the procedural generation engine.
type Item struct {
	BaseName string  `json:"base_name"`
	Name     string  `json:"name"` // affixed display name
	Rarity   Rarity  `json:"rarity"`
	Affixes  []Affix `json:"affixes,omitempty"`
}

// ApplyAffixes sets the item's affixes and recomputes its display name.
func (it *Item) ApplyAffixes(affixes []Affix) {
	it.Affixes = affixes
	it.Name = AffixedName(it.BaseName, affixes)
}
