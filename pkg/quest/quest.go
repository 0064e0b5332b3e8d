package quest

import (
	"errors"
	"fmt"
	"strings"
)

// Type classifies a quest by its success condition.
type Type string

const (
	TypeCombat        Type = "combat"
	TypeRetrieval     Type = "retrieval"
	TypeEscort        Type = "escort"
	TypeInvestigation Type = "investigation"
	TypeRescue        Type = "rescue"
	TypeDiplomatic    Type = "diplomatic"
)

// Stage is the current phase of a quest's arc. Stage is a pure function of
// encounter progress and never regresses within one quest's lifetime.
type Stage string

const (
	StageEarly      Stage = "early"
	StageMid        Stage = "mid"
	StageLate       Stage = "late"
	StageFinal      Stage = "final"
	StageFinale     Stage = "finale"
	StageLastChance Stage = "last_chance"
)

// ErrInvariant indicates a programming-contract failure: code attempted a
// quest transition its type or stage does not permit. It is rejected at the
// call site and logged, never surfaced to the player.
var ErrInvariant = errors.New("quest invariant violation")

// DefaultFailureWindow is the number of extra encounters a quest may run
// past TotalEncounters before it is force-failed.
const DefaultFailureWindow = 3

// typePatterns maps goal-text keywords to quest types. Order matters:
// the first matching keyword wins.
var typePatterns = []struct {
	keywords []string
	qtype    Type
}{
	{[]string{"defeat", "kill", "slay", "destroy", "vanquish", "eliminate"}, TypeCombat},
	{[]string{"retrieve", "find", "recover", "fetch", "locate", "reclaim"}, TypeRetrieval},
	{[]string{"escort", "protect", "guide", "accompany", "deliver"}, TypeEscort},
	{[]string{"investigate", "uncover", "solve", "discover", "expose"}, TypeInvestigation},
	{[]string{"rescue", "save", "free", "liberate"}, TypeRescue},
	{[]string{"negotiate", "persuade", "convince", "broker", "mediate"}, TypeDiplomatic},
}

// acquisitionVerbs are the player-action verbs accepted as evidence of a
// retrieval quest's objective being taken.
var acquisitionVerbs = []string{
	"take", "grab", "pick up", "retrieve", "recover", "claim",
	"seize", "collect", "obtain", "snatch", "acquire",
}

// Quest tracks one adventure objective from creation to completion or
// failure. Created when a location is entered; archived on completion
// or failure.
type Quest struct {
	Type             Type   `json:"type"`
	Goal             string `json:"goal"`
	ObjectiveKeyword string `json:"objective_keyword,omitempty"` // noun phrase extracted once at creation
	BossAnchor       string `json:"boss_anchor,omitempty"`       // monster base name committed at creation (combat quests)
	CurrentEncounter int    `json:"current_encounter"`
	TotalEncounters  int    `json:"total_encounters"`
	FailureWindow    int    `json:"failure_window"`
	Completed        bool   `json:"completed"`
	Failed           bool   `json:"failed"`
	VictoryRecorded  bool   `json:"victory_recorded,omitempty"`
}

// New creates a quest from goal text. Quest type and objective keyword are
// inferred once here; they never change afterward.
func New(goal string, totalEncounters int) *Quest {
	if totalEncounters <= 0 {
		totalEncounters = 6
	}
	return &Quest{
		Type:             InferType(goal),
		Goal:             goal,
		ObjectiveKeyword: ExtractObjective(goal),
		TotalEncounters:  totalEncounters,
		FailureWindow:    DefaultFailureWindow,
	}
}

// InferType classifies goal text by ordered keyword matching, with combat
// as the fallback.
func InferType(goal string) Type {
	lower := strings.ToLower(goal)
	for _, p := range typePatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return p.qtype
			}
		}
	}
	return TypeCombat
}

// ExtractObjective pulls the objective noun phrase out of goal text: the
// words following the first recognized quest verb, with leading articles
// stripped. Returns "" when no verb matches.
//
// Example: "Retrieve the lost amulet" yields "lost amulet".
func ExtractObjective(goal string) string {
	lower := strings.ToLower(goal)
	for _, p := range typePatterns {
		for _, kw := range p.keywords {
			idx := strings.Index(lower, kw)
			if idx < 0 {
				continue
			}
			rest := lower[idx+len(kw):]
			rest = strings.Trim(rest, " .,!?")
			for _, article := range []string{"the ", "a ", "an "} {
				if strings.HasPrefix(rest, article) {
					rest = rest[len(article):]
					break
				}
			}
			if rest != "" {
				return rest
			}
		}
	}
	return ""
}

// Stage derives the quest phase from encounter progress. Thresholds:
// under 50% early, 50-84% mid, 85-99% late, 100% final, then the
// extension window (finale, last_chance on its final encounter).
func (q *Quest) Stage() Stage {
	if q.CurrentEncounter >= q.TotalEncounters {
		over := q.CurrentEncounter - q.TotalEncounters
		switch {
		case over == 0:
			return StageFinal
		case over < q.FailureWindow:
			return StageFinale
		default:
			return StageLastChance
		}
	}
	pct := q.CurrentEncounter * 100 / q.TotalEncounters
	switch {
	case pct < 50:
		return StageEarly
	case pct < 85:
		return StageMid
	default:
		return StageLate
	}
}

// StageLabel renders the stage for prompt context, including the finale
// extension count (e.g. "finale+2").
func (q *Quest) StageLabel() string {
	s := q.Stage()
	if s == StageFinale {
		return fmt.Sprintf("finale+%d", q.CurrentEncounter-q.TotalEncounters)
	}
	return string(s)
}

// InFinalStage reports whether the quest has reached its final encounter
// or the extension window beyond it.
func (q *Quest) InFinalStage() bool {
	return q.CurrentEncounter >= q.TotalEncounters
}

// Advance increments the encounter counter. Stage follows from it.
func (q *Quest) Advance() {
	q.CurrentEncounter++
}

// Expired reports whether the quest has run past its extension window
// without completing.
func (q *Quest) Expired() bool {
	return !q.Completed && q.CurrentEncounter > q.TotalEncounters+q.FailureWindow
}

// ForceFailIfExpired marks the quest failed when the extension window is
// exhausted. Returns true if the quest was failed by this call.
func (q *Quest) ForceFailIfExpired() bool {
	if q.Completed || q.Failed {
		return false
	}
	if q.Expired() {
		q.Failed = true
		return true
	}
	return false
}

// RecordVictory notes the defeat of an opponent. Returns true when the
// defeated opponent's base name matches the boss anchor.
func (q *Quest) RecordVictory(baseName string) bool {
	if q.BossAnchor == "" {
		return false
	}
	if strings.EqualFold(baseName, q.BossAnchor) {
		q.VictoryRecorded = true
		return true
	}
	return false
}

// CompleteCombat marks a combat quest complete. Requires a recorded
// victory over the boss anchor; anything else is a contract violation.
func (q *Quest) CompleteCombat() error {
	if q.Type != TypeCombat {
		return fmt.Errorf("%w: CompleteCombat on %s quest", ErrInvariant, q.Type)
	}
	if !q.VictoryRecorded {
		return fmt.Errorf("%w: combat quest completed without recorded victory", ErrInvariant)
	}
	q.Completed = true
	return nil
}

// MatchesRetrieval reports whether a player action is acceptable evidence
// of the retrieval objective being acquired: an acquisition verb applied
// to the pre-registered objective keyword.
func (q *Quest) MatchesRetrieval(action string) bool {
	if q.Type != TypeRetrieval || q.ObjectiveKeyword == "" {
		return false
	}
	lower := strings.ToLower(action)
	if !strings.Contains(lower, q.ObjectiveKeyword) {
		return false
	}
	for _, verb := range acquisitionVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// CompleteRetrieval marks a retrieval quest complete when the player
// action matches the objective.
func (q *Quest) CompleteRetrieval(action string) error {
	if q.Type != TypeRetrieval {
		return fmt.Errorf("%w: CompleteRetrieval on %s quest", ErrInvariant, q.Type)
	}
	if !q.MatchesRetrieval(action) {
		return fmt.Errorf("%w: action does not acquire objective %q", ErrInvariant, q.ObjectiveKeyword)
	}
	q.Completed = true
	return nil
}

// CompleteFromNarrative accepts a completion proposed by the narrative
// generator. Only quest types without an objectively checkable success
// condition may complete this way, and only in the final stage or later.
func (q *Quest) CompleteFromNarrative() error {
	if q.Type == TypeCombat || q.Type == TypeRetrieval {
		return fmt.Errorf("%w: %s quests complete only through code", ErrInvariant, q.Type)
	}
	if !q.InFinalStage() {
		return fmt.Errorf("%w: narrative completion proposed in %s stage", ErrInvariant, q.Stage())
	}
	q.Completed = true
	return nil
}
