package prompts

import (
	"fmt"
	"strings"

	"github.com/Subteran/DunGen-sub001/pkg/encounter"
)

// TurnContext carries the structured game state a turn prompt is built
// from. The engine fills it from an immutable snapshot; the builder
// decides what survives the budget.
type TurnContext struct {
	PlayerAction string

	QuestStageLabel string
	QuestGoal       string

	EncounterType encounter.Type
	OpponentName  string // exact name of a pending or generated opponent
	PartnerName   string // exact name of a social partner

	Location  string
	PCSummary string

	RecentLog       []string // most recent last
	EncounterCounts map[encounter.Type]int
}

// stageGuidance maps a quest stage label to the directive the narrative
// generator must honor for pacing.
func stageGuidance(label string) string {
	switch {
	case label == "early":
		return "Quest stage early: establish the setting, hint at the objective."
	case label == "mid":
		return "Quest stage mid: raise the stakes, show progress toward the objective."
	case label == "late":
		return "Quest stage late: the objective is close, build urgency."
	case label == "final":
		return "Quest stage final: this is the climactic encounter."
	case strings.HasPrefix(label, "finale"):
		return "Quest stage " + label + ": the climax continues, push toward resolution."
	case label == "last_chance":
		return "Quest stage last chance: the objective slips away unless resolved now."
	default:
		return ""
	}
}

// NarrativePrompt assembles the bounded prompt for the narrative role.
// Tier 1 carries the directives and entity identity; tiers 2-3 carry
// context and history that may be dropped under budget pressure.
func NarrativePrompt(tc TurnContext, maxChars int) string {
	b := New().WithBudget(maxChars)

	b.Add(TierDirective, stageGuidance(tc.QuestStageLabel))
	b.Addf(TierDirective, "Encounter type: %s.", tc.EncounterType)
	if tc.OpponentName != "" {
		b.Addf(TierDirective, "The opponent is %s. Use this exact name.", tc.OpponentName)
	}
	if tc.PartnerName != "" {
		b.Addf(TierDirective, "The player is speaking with %s. Use this exact name.", tc.PartnerName)
	}
	b.Addf(TierDirective, "Player action: %s", tc.PlayerAction)

	if tc.QuestGoal != "" {
		b.Addf(TierContext, "Quest goal: %s", tc.QuestGoal)
	}
	if tc.Location != "" {
		b.Addf(TierContext, "Location: %s", tc.Location)
	}
	if tc.PCSummary != "" {
		b.Addf(TierContext, "Character: %s", tc.PCSummary)
	}

	if len(tc.RecentLog) > 0 {
		b.Addf(TierHistory, "Recent events: %s", strings.Join(tc.RecentLog, " | "))
	}
	if len(tc.EncounterCounts) > 0 {
		b.Addf(TierHistory, "Encounter tally: %s", formatCounts(tc.EncounterCounts))
	}

	return b.Build()
}

// EncounterPrompt assembles the bounded prompt for the encounter-picker
// role. The candidate list is a directive: the answer must come from it.
func EncounterPrompt(candidates []encounter.Type, tc TurnContext, maxChars int) string {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, string(c))
	}

	b := New().WithBudget(maxChars)
	b.Addf(TierDirective, "Allowed encounter types: %s.", strings.Join(names, ", "))
	b.Addf(TierDirective, "Player action: %s", tc.PlayerAction)
	b.Add(TierDirective, stageGuidance(tc.QuestStageLabel))

	if tc.QuestGoal != "" {
		b.Addf(TierContext, "Quest goal: %s", tc.QuestGoal)
	}
	if len(tc.RecentLog) > 0 {
		b.Addf(TierHistory, "Recent events: %s", strings.Join(tc.RecentLog, " | "))
	}

	return b.Build()
}

// ReducePrompt shrinks a prompt for the single retry after a malformed
// generator result: the budget is halved, which sheds history and
// context tiers first.
func ReducePrompt(tc TurnContext, enc encounter.Type, maxChars int) string {
	tc.RecentLog = nil
	tc.EncounterCounts = nil
	tc.EncounterType = enc
	return NarrativePrompt(tc, maxChars/2)
}

func formatCounts(counts map[encounter.Type]int) string {
	// Stable order for reproducible prompts.
	order := []encounter.Type{
		encounter.TypeCombat, encounter.TypeSocial, encounter.TypeExploration,
		encounter.TypePuzzle, encounter.TypeTrap, encounter.TypeStealth,
		encounter.TypeChase, encounter.TypeFinal,
	}
	parts := make([]string, 0, len(counts))
	for _, t := range order {
		if n, ok := counts[t]; ok && n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", t, n))
		}
	}
	return strings.Join(parts, ", ")
}
