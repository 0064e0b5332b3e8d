package actor

// Monster is an opponent snapshot produced by the procedural generation
// engine. It is immutable for the turn in which it is generated, except
// for HP while it is the pending opponent.
type Monster struct {
	BaseName    string  `json:"base_name"` // identity used for quest-objective matching
	Name        string  `json:"name"`      // affixed display name: prefix? + base + suffix?
	Description string  `json:"description,omitempty"`
	Level       int     `json:"level"`
	HP          int     `json:"hp"`
	MaxHP       int     `json:"max_hp"`
	Defense     int     `json:"defense"`
	Attack      int     `json:"attack"`
	Affixes     []Affix `json:"affixes,omitempty"`
}

// ApplyAffixes sets the monster's affixes and recomputes its display name.
// BaseName is never altered.
func (m *Monster) ApplyAffixes(affixes []Affix) {
	m.Affixes = affixes
	m.Name = AffixedName(m.BaseName, affixes)
}

// TakeDamage reduces the monster's HP by the specified amount.
// HP cannot go below 0.
func (m *Monster) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	m.HP -= n
	if m.HP < 0 {
		m.HP = 0
	}
}

// IsDefeated returns true if the monster's HP is 0 or less.
func (m *Monster) IsDefeated() bool {
	return m.HP <= 0
}
