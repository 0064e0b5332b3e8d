package encounter

import (
	"strings"

	"github.com/Subteran/DunGen-sub001/pkg/quest"
	"github.com/Subteran/DunGen-sub001/pkg/variety"
)

// Type classifies what kind of scene a turn plays out.
type Type string

const (
	TypeCombat      Type = "combat"
	TypeSocial      Type = "social"
	TypeExploration Type = "exploration"
	TypePuzzle      Type = "puzzle"
	TypeTrap        Type = "trap"
	TypeStealth     Type = "stealth"
	TypeChase       Type = "chase"
	TypeFinal       Type = "final"
)

// Difficulty scales generated opponents and rewards.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
	DifficultyBoss   Difficulty = "boss"
)

// Encounter is created once per turn by the orchestrator and is immutable
// for the turn's lifetime. It is never persisted beyond the active turn.
type Encounter struct {
	Type       Type       `json:"type"`
	Difficulty Difficulty `json:"difficulty"`
}

// regularTypes are the candidate types outside the final stage.
var regularTypes = []Type{
	TypeCombat, TypeSocial, TypeExploration, TypePuzzle,
	TypeTrap, TypeStealth, TypeChase,
}

// ParseType normalizes free text from the encounter-picker generator into
// a Type. Returns false for anything outside the known set.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t == TypeFinal {
		return t, true
	}
	for _, rt := range regularTypes {
		if t == rt {
			return t, true
		}
	}
	return "", false
}

// Candidates returns the encounter types allowed this turn, after
// deterministic variety filtering. In the quest's final stage the only
// candidate is the final (boss) encounter. Otherwise the most recent type
// is excluded, and combat is additionally excluded after a combat turn
// when the no-consecutive-combat rule is active, as long as an
// alternative remains.
func Candidates(history *variety.Ring[Type], finalStage bool, noConsecutiveCombat bool) []Type {
	if finalStage {
		return []Type{TypeFinal}
	}

	excluded := make(map[Type]bool)
	if last, ok := history.MostRecent(); ok {
		excluded[last] = true
		if noConsecutiveCombat && last == TypeCombat {
			excluded[TypeCombat] = true
		}
	}

	out := make([]Type, 0, len(regularTypes))
	for _, t := range regularTypes {
		if !excluded[t] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		// Strict variety is a quality goal, not a correctness requirement.
		return append(out, regularTypes...)
	}
	return out
}

// Allowed reports whether t is in the candidate set.
func Allowed(candidates []Type, t Type) bool {
	for _, c := range candidates {
		if c == t {
			return true
		}
	}
	return false
}

// Fallback picks a candidate deterministically when the generator's answer
// is unusable: the least recently seen candidate.
func Fallback(history *variety.Ring[Type], candidates []Type) Type {
	if t, ok := history.LeastRecentOf(candidates); ok {
		return t
	}
	return TypeExploration
}

// DifficultyFor derives encounter difficulty from the quest stage.
func DifficultyFor(stage quest.Stage) Difficulty {
	switch stage {
	case quest.StageEarly:
		return DifficultyEasy
	case quest.StageMid:
		return DifficultyNormal
	case quest.StageLate:
		return DifficultyHard
	default:
		return DifficultyBoss
	}
}
