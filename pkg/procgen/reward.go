package procgen

import (
	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/encounter"
	"github.com/Subteran/DunGen-sub001/pkg/variety"
)

// Reward is the deterministic payout for a resolved encounter.
type Reward struct {
	XP   int `json:"xp"`
	Gold int `json:"gold"`
}

// Reward computes the payout for an encounter at the given level.
// The calculation is pure: difficulty base times level, no dice.
func (g *Generator) Reward(diff encounter.Difficulty, level int) Reward {
	if level < 1 {
		level = 1
	}
	row := g.tables.Rewards[diff]
	return Reward{
		XP:   row.XP * level,
		Gold: row.Gold * level,
	}
}

// RollLoot decides whether an encounter drops an item, and generates it.
// Drop chance is difficulty-indexed; boss encounters always drop.
func (g *Generator) RollLoot(diff encounter.Difficulty, affixHistory *variety.Ring[string]) (*actor.Item, bool) {
	row := g.tables.Rewards[diff]
	if g.rng.Float64() >= row.DropChance {
		return nil, false
	}
	return g.GenerateItem(diff, affixHistory), true
}
