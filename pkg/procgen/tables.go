package procgen

import (
	"fmt"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/encounter"
)

// MonsterTemplate is one row of the monster catalog. BaseHP keys the
// template into a level band; stats are scaled by level at generation time.
type MonsterTemplate struct {
	Name        string `json:"name"`
	BaseHP      int    `json:"base_hp"`
	Defense     int    `json:"defense"`
	Attack      int    `json:"attack"`
	Description string `json:"description,omitempty"`
}

// AffixOption is one candidate affix with its flavor effect.
type AffixOption struct {
	Name   string `json:"name"`
	Effect string `json:"effect,omitempty"`
}

// AffixChance is a difficulty- or rarity-indexed probability row.
// One is the chance of at least one affix; Two the chance of two.
type AffixChance struct {
	One float64 `json:"one"`
	Two float64 `json:"two"`
}

// RarityWeight is one entry of a weighted rarity roll.
type RarityWeight struct {
	Rarity actor.Rarity `json:"rarity"`
	Weight int          `json:"weight"`
}

// RewardRow is the per-difficulty base for the deterministic reward
// calculator. Final values scale linearly with level.
type RewardRow struct {
	XP         int     `json:"xp"`
	Gold       int     `json:"gold"`
	DropChance float64 `json:"drop_chance"`
}

// Tables holds every externally supplied tuning table consumed by the
// generation engine. All of it is configuration, not architecture: the
// compiled-in defaults may be overridden from the data directory.
type Tables struct {
	Monsters []MonsterTemplate `json:"monsters"`

	// HP band per level: templates with BaseHP in
	// [level*BandMin, level*BandMax] are candidates for that level.
	BandMin int `json:"band_min"`
	BandMax int `json:"band_max"`

	// Per-level scaling applied to template HP and defense, in percent
	// added per level above 1.
	HPScalePct      int `json:"hp_scale_pct"`
	DefenseScalePct int `json:"defense_scale_pct"`

	MonsterAffixes map[encounter.Difficulty]AffixChance `json:"monster_affixes"`

	// Boss monsters always carry two affixes from this level up.
	BossTwoAffixLevel int `json:"boss_two_affix_level"`

	PrefixAffixes []AffixOption `json:"prefix_affixes"`
	SuffixAffixes []AffixOption `json:"suffix_affixes"`

	RarityWeights map[encounter.Difficulty][]RarityWeight `json:"rarity_weights"`
	ItemAffixes   map[actor.Rarity]AffixChance            `json:"item_affixes"`
	ItemBases     []string                                `json:"item_bases"`

	Rewards map[encounter.Difficulty]RewardRow `json:"rewards"`

	NPCs []actor.NPC `json:"npcs"`
}

// DefaultTables returns the compiled-in tuning tables.
func DefaultTables() *Tables {
	return &Tables{
		Monsters: []MonsterTemplate{
			{Name: "Cave Rat", BaseHP: 4, Defense: 9, Attack: 2, Description: "A mangy rodent the size of a dog."},
			{Name: "Giant Spider", BaseHP: 6, Defense: 10, Attack: 3, Description: "Eight glittering eyes in the dark."},
			{Name: "Goblin Scout", BaseHP: 7, Defense: 11, Attack: 3, Description: "Small, quick, and armed with a crooked knife."},
			{Name: "Skeleton", BaseHP: 10, Defense: 11, Attack: 4, Description: "Bones held together by old malice."},
			{Name: "Ghoul", BaseHP: 13, Defense: 12, Attack: 5, Description: "A gaunt corpse-eater with black claws."},
			{Name: "Bandit Leader", BaseHP: 16, Defense: 13, Attack: 5, Description: "A scarred veteran of a dozen ambushes."},
			{Name: "Cave Troll", BaseHP: 24, Defense: 13, Attack: 7, Description: "A mound of muscle and appetite."},
			{Name: "Wraith", BaseHP: 20, Defense: 14, Attack: 6, Description: "Cold air and a fading scream."},
			{Name: "Ogre Brute", BaseHP: 30, Defense: 14, Attack: 8, Description: "It uses a tree trunk as a club."},
			{Name: "Young Dragon", BaseHP: 45, Defense: 16, Attack: 10, Description: "Its scales still gleam like new coins."},
		},
		BandMin:           3,
		BandMax:           9,
		HPScalePct:        15,
		DefenseScalePct:   5,
		BossTwoAffixLevel: 5,
		MonsterAffixes: map[encounter.Difficulty]AffixChance{
			encounter.DifficultyEasy:   {One: 0.10, Two: 0.0},
			encounter.DifficultyNormal: {One: 0.30, Two: 0.05},
			encounter.DifficultyHard:   {One: 0.60, Two: 0.20},
			encounter.DifficultyBoss:   {One: 1.0, Two: 0.50},
		},
		PrefixAffixes: []AffixOption{
			{Name: "Venomous", Effect: "poison damage"},
			{Name: "Frenzied", Effect: "+2 attack"},
			{Name: "Armored", Effect: "+2 defense"},
			{Name: "Spectral", Effect: "resists mundane weapons"},
			{Name: "Ancient", Effect: "+25% HP"},
			{Name: "Burning", Effect: "fire damage"},
			{Name: "Frost-touched", Effect: "cold damage"},
		},
		SuffixAffixes: []AffixOption{
			{Name: "of the Deep", Effect: "+25% HP"},
			{Name: "of Shadows", Effect: "strikes first"},
			{Name: "of the Blood Moon", Effect: "+2 attack"},
			{Name: "of Stone", Effect: "+3 defense"},
			{Name: "of the Swarm", Effect: "summons lesser kin"},
		},
		RarityWeights: map[encounter.Difficulty][]RarityWeight{
			encounter.DifficultyEasy: {
				{Rarity: actor.RarityCommon, Weight: 80},
				{Rarity: actor.RarityUncommon, Weight: 18},
				{Rarity: actor.RarityRare, Weight: 2},
			},
			encounter.DifficultyNormal: {
				{Rarity: actor.RarityCommon, Weight: 60},
				{Rarity: actor.RarityUncommon, Weight: 30},
				{Rarity: actor.RarityRare, Weight: 9},
				{Rarity: actor.RarityLegendary, Weight: 1},
			},
			encounter.DifficultyHard: {
				{Rarity: actor.RarityCommon, Weight: 35},
				{Rarity: actor.RarityUncommon, Weight: 40},
				{Rarity: actor.RarityRare, Weight: 20},
				{Rarity: actor.RarityLegendary, Weight: 5},
			},
			encounter.DifficultyBoss: {
				{Rarity: actor.RarityUncommon, Weight: 40},
				{Rarity: actor.RarityRare, Weight: 45},
				{Rarity: actor.RarityLegendary, Weight: 15},
			},
		},
		ItemAffixes: map[actor.Rarity]AffixChance{
			actor.RarityCommon:    {One: 0.05, Two: 0.0},
			actor.RarityUncommon:  {One: 0.40, Two: 0.05},
			actor.RarityRare:      {One: 0.85, Two: 0.35},
			actor.RarityLegendary: {One: 1.0, Two: 1.0},
		},
		ItemBases: []string{
			"Shortsword", "Longbow", "War Hammer", "Leather Cuirass",
			"Iron Shield", "Traveler's Cloak", "Signet Ring", "Oak Staff",
		},
		Rewards: map[encounter.Difficulty]RewardRow{
			encounter.DifficultyEasy:   {XP: 10, Gold: 5, DropChance: 0.15},
			encounter.DifficultyNormal: {XP: 20, Gold: 10, DropChance: 0.30},
			encounter.DifficultyHard:   {XP: 35, Gold: 20, DropChance: 0.50},
			encounter.DifficultyBoss:   {XP: 60, Gold: 40, DropChance: 1.0},
		},
		NPCs: []actor.NPC{
			{Name: "Maren the Peddler", Type: "merchant", Disposition: "friendly", Profile: "Sells odds and ends from a creaking cart."},
			{Name: "Old Fenwick", Type: "villager", Disposition: "neutral", Profile: "Knows every rumor in the valley."},
			{Name: "Sergeant Hale", Type: "guard", Disposition: "neutral", Profile: "Suspicious of armed strangers."},
			{Name: "Sister Odile", Type: "healer", Disposition: "friendly", Profile: "Tends the wayside shrine."},
			{Name: "Corvin the Fence", Type: "rogue", Disposition: "neutral", Profile: "Asks no questions, pays in worn coin."},
			{Name: "Talla Quickfoot", Type: "scout", Disposition: "friendly", Profile: "Maps the wild paths for a fee."},
		},
	}
}

// Validate checks that the tables can support generation. Called after
// loading table overrides from the data directory.
func (t *Tables) Validate() error {
	if len(t.Monsters) == 0 {
		return fmt.Errorf("monster catalog is empty")
	}
	if t.BandMin <= 0 || t.BandMax <= t.BandMin {
		return fmt.Errorf("invalid HP band bounds: min=%d max=%d", t.BandMin, t.BandMax)
	}
	if len(t.PrefixAffixes) == 0 || len(t.SuffixAffixes) == 0 {
		return fmt.Errorf("affix tables must not be empty")
	}
	if len(t.ItemBases) == 0 {
		return fmt.Errorf("item base table is empty")
	}
	if len(t.NPCs) == 0 {
		return fmt.Errorf("npc table is empty")
	}
	for _, d := range []encounter.Difficulty{
		encounter.DifficultyEasy, encounter.DifficultyNormal,
		encounter.DifficultyHard, encounter.DifficultyBoss,
	} {
		if _, ok := t.MonsterAffixes[d]; !ok {
			return fmt.Errorf("missing monster affix chances for difficulty %q", d)
		}
		if len(t.RarityWeights[d]) == 0 {
			return fmt.Errorf("missing rarity weights for difficulty %q", d)
		}
		if _, ok := t.Rewards[d]; !ok {
			return fmt.Errorf("missing reward row for difficulty %q", d)
		}
	}
	return nil
}

// MonsterNames returns every base name in the catalog. The sanitization
// pipeline uses this to validate monster references in narrative text.
func (t *Tables) MonsterNames() []string {
	names := make([]string, 0, len(t.Monsters))
	for _, m := range t.Monsters {
		names = append(names, m.Name)
	}
	return names
}
