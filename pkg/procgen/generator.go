package procgen

import (
	"math/rand"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/encounter"
	"github.com/Subteran/DunGen-sub001/pkg/variety"
)

// maxAffixRerolls bounds how many times an affix choice is re-rolled when
// it collides with the variety history before the least-recently-used
// candidate is accepted instead.
const maxAffixRerolls = 4

// Generator produces monsters, items, and rewards from weighted tables.
// It is fully deterministic for a given seed and makes no external calls.
type Generator struct {
	tables *Tables
	rng    *rand.Rand
}

// New creates a generator over the given tables.
func New(tables *Tables, seed int64) *Generator {
	return &Generator{
		tables: tables,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Tables exposes the tuning tables (read-only by convention); the
// sanitization pipeline needs the monster catalog names.
func (g *Generator) Tables() *Tables {
	return g.tables
}

// bandCandidates filters the monster catalog by the HP band for level,
// widening the band outward until at least one template qualifies. The
// result is never empty as long as the catalog is non-empty.
func (g *Generator) bandCandidates(level int) []MonsterTemplate {
	if level < 1 {
		level = 1
	}
	lo := level * g.tables.BandMin
	hi := level * g.tables.BandMax

	for {
		var out []MonsterTemplate
		for _, m := range g.tables.Monsters {
			if m.BaseHP >= lo && m.BaseHP <= hi {
				out = append(out, m)
			}
		}
		if len(out) > 0 {
			return out
		}
		// Widen outward; once the band spans every template the filter
		// cannot come back empty.
		lo--
		if lo < 0 {
			lo = 0
		}
		hi += g.tables.BandMax
	}
}

// PickBossAnchor commits a monster base name for a combat quest at quest
// creation. The anchor is drawn from the level band so the eventual boss
// is a fair fight.
func (g *Generator) PickBossAnchor(level int) string {
	candidates := g.bandCandidates(level)
	return candidates[g.rng.Intn(len(candidates))].Name
}

// scale applies per-level percentage growth to a base stat.
func scale(base, level, pctPerLevel int) int {
	if level < 1 {
		level = 1
	}
	return base * (100 + (level-1)*pctPerLevel) / 100
}

// GenerateMonster produces an opponent for the given level and
// difficulty. When bossAnchor is non-empty the selected base monster is
// guaranteed to match it, so affix rolls never change quest-objective
// identity. Chosen affixes are recorded into affixHistory.
func (g *Generator) GenerateMonster(level int, diff encounter.Difficulty, bossAnchor string, affixHistory *variety.Ring[string]) *actor.Monster {
	var tmpl MonsterTemplate
	if bossAnchor != "" {
		found := false
		for _, m := range g.tables.Monsters {
			if m.Name == bossAnchor {
				tmpl = m
				found = true
				break
			}
		}
		if !found {
			candidates := g.bandCandidates(level)
			tmpl = candidates[g.rng.Intn(len(candidates))]
		}
	} else {
		candidates := g.bandCandidates(level)
		tmpl = candidates[g.rng.Intn(len(candidates))]
	}

	hp := scale(tmpl.BaseHP, level, g.tables.HPScalePct)
	m := &actor.Monster{
		BaseName:    tmpl.Name,
		Name:        tmpl.Name,
		Description: tmpl.Description,
		Level:       level,
		HP:          hp,
		MaxHP:       hp,
		Defense:     scale(tmpl.Defense, level, g.tables.DefenseScalePct),
		Attack:      tmpl.Attack,
	}

	count := g.rollAffixCount(g.tables.MonsterAffixes[diff])
	if diff == encounter.DifficultyBoss && level >= g.tables.BossTwoAffixLevel {
		count = 2
	}
	if count > 0 {
		m.ApplyAffixes(g.rollAffixes(count, affixHistory))
	}
	return m
}

// GenerateItem produces a loot item for the given difficulty: rarity from
// the difficulty-indexed weights, then affixes from the rarity-indexed
// chances. The top rarity is always fully affixed.
func (g *Generator) GenerateItem(diff encounter.Difficulty, affixHistory *variety.Ring[string]) *actor.Item {
	rarity := g.rollRarity(diff)
	base := g.tables.ItemBases[g.rng.Intn(len(g.tables.ItemBases))]

	it := &actor.Item{
		BaseName: base,
		Name:     base,
		Rarity:   rarity,
	}

	count := g.rollAffixCount(g.tables.ItemAffixes[rarity])
	if rarity == actor.RarityLegendary {
		count = 2
	}
	if count > 0 {
		it.ApplyAffixes(g.rollAffixes(count, affixHistory))
	}
	return it
}

// PickNPC selects a social partner from the NPC table, avoiding recently
// used names. The chosen name is recorded into npcHistory.
func (g *Generator) PickNPC(npcHistory *variety.Ring[string]) actor.NPC {
	names := make([]string, 0, len(g.tables.NPCs))
	for _, n := range g.tables.NPCs {
		names = append(names, n.Name)
	}

	name := g.pickWithVariety(names, npcHistory)
	npcHistory.Record(name)
	for _, n := range g.tables.NPCs {
		if n.Name == name {
			return n
		}
	}
	return g.tables.NPCs[0]
}

func (g *Generator) rollRarity(diff encounter.Difficulty) actor.Rarity {
	weights := g.tables.RarityWeights[diff]
	total := 0
	for _, w := range weights {
		total += w.Weight
	}
	if total <= 0 {
		return actor.RarityCommon
	}
	roll := g.rng.Intn(total)
	for _, w := range weights {
		roll -= w.Weight
		if roll < 0 {
			return w.Rarity
		}
	}
	return weights[len(weights)-1].Rarity
}

func (g *Generator) rollAffixCount(chance AffixChance) int {
	r := g.rng.Float64()
	switch {
	case r < chance.Two:
		return 2
	case r < chance.One:
		return 1
	default:
		return 0
	}
}

// rollAffixes picks count affixes. A single affix lands in a random slot;
// two affixes take one slot each.
func (g *Generator) rollAffixes(count int, history *variety.Ring[string]) []actor.Affix {
	var out []actor.Affix
	if count >= 2 {
		out = append(out, g.pickAffix(actor.AffixSlotPrefix, history))
		out = append(out, g.pickAffix(actor.AffixSlotSuffix, history))
		return out
	}
	slot := actor.AffixSlotPrefix
	if g.rng.Intn(2) == 1 {
		slot = actor.AffixSlotSuffix
	}
	return append(out, g.pickAffix(slot, history))
}

// pickAffix chooses an affix for a slot, consulting the variety history:
// a bounded number of re-rolls while the choice collides, then the
// least-recently-used candidate is accepted. The final choice is recorded.
func (g *Generator) pickAffix(slot actor.AffixSlot, history *variety.Ring[string]) actor.Affix {
	options := g.tables.PrefixAffixes
	if slot == actor.AffixSlotSuffix {
		options = g.tables.SuffixAffixes
	}

	names := make([]string, 0, len(options))
	for _, o := range options {
		names = append(names, o.Name)
	}

	name := g.pickWithVariety(names, history)
	history.Record(name)

	for _, o := range options {
		if o.Name == name {
			return actor.Affix{Name: o.Name, Slot: slot, Effect: o.Effect}
		}
	}
	return actor.Affix{Name: name, Slot: slot}
}

// pickWithVariety draws uniformly from candidates, re-rolling up to
// maxAffixRerolls while the draw is in the recency history. On
// exhaustion the least-recently-used candidate wins; strict variety is a
// quality goal, not a correctness requirement.
func (g *Generator) pickWithVariety(candidates []string, history *variety.Ring[string]) string {
	pick := candidates[g.rng.Intn(len(candidates))]
	for i := 0; i < maxAffixRerolls && history.Contains(pick); i++ {
		pick = candidates[g.rng.Intn(len(candidates))]
	}
	if history.Contains(pick) {
		if lru, ok := history.LeastRecentOf(candidates); ok {
			return lru
		}
	}
	return pick
}
