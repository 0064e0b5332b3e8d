package actor

import "testing"

func TestAffixedName(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		affixes  []Affix
		expected string
	}{
		{
			name:     "no affixes",
			base:     "Cave Troll",
			affixes:  nil,
			expected: "Cave Troll",
		},
		{
			name:     "prefix only",
			base:     "Cave Troll",
			affixes:  []Affix{{Name: "Venomous", Slot: AffixSlotPrefix}},
			expected: "Venomous Cave Troll",
		},
		{
			name:     "suffix only",
			base:     "Cave Troll",
			affixes:  []Affix{{Name: "of the Deep", Slot: AffixSlotSuffix}},
			expected: "Cave Troll of the Deep",
		},
		{
			name: "prefix and suffix",
			base: "Cave Troll",
			affixes: []Affix{
				{Name: "Venomous", Slot: AffixSlotPrefix},
				{Name: "of the Deep", Slot: AffixSlotSuffix},
			},
			expected: "Venomous Cave Troll of the Deep",
		},
		{
			name: "duplicate slot keeps first",
			base: "Cave Troll",
			affixes: []Affix{
				{Name: "Venomous", Slot: AffixSlotPrefix},
				{Name: "Frenzied", Slot: AffixSlotPrefix},
			},
			expected: "Venomous Cave Troll",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AffixedName(tt.base, tt.affixes)
			if got != tt.expected {
				t.Errorf("AffixedName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMonster_ApplyAffixesRetainsBaseName(t *testing.T) {
	m := &Monster{BaseName: "Bandit Leader", Name: "Bandit Leader", HP: 30, MaxHP: 30}
	m.ApplyAffixes([]Affix{
		{Name: "Scarred", Slot: AffixSlotPrefix, Effect: "+1 attack"},
	})

	if m.BaseName != "Bandit Leader" {
		t.Errorf("BaseName = %q, want Bandit Leader", m.BaseName)
	}
	if m.Name != "Scarred Bandit Leader" {
		t.Errorf("Name = %q, want Scarred Bandit Leader", m.Name)
	}
}

func TestMonster_TakeDamage(t *testing.T) {
	m := &Monster{BaseName: "Ghoul", Name: "Ghoul", HP: 10, MaxHP: 10}

	m.TakeDamage(4)
	if m.HP != 6 {
		t.Errorf("HP = %d, want 6", m.HP)
	}
	if m.IsDefeated() {
		t.Error("monster should not be defeated at 6 HP")
	}

	m.TakeDamage(-3)
	if m.HP != 6 {
		t.Error("negative damage should be ignored")
	}

	m.TakeDamage(100)
	if m.HP != 0 {
		t.Errorf("HP = %d, want 0 (never negative)", m.HP)
	}
	if !m.IsDefeated() {
		t.Error("monster at 0 HP should be defeated")
	}
}
