package prompts

import (
	"strings"
	"testing"

	"github.com/Subteran/DunGen-sub001/pkg/encounter"
)

func TestBuilder_AllTiersFit(t *testing.T) {
	got := New().
		WithBudget(1000).
		Add(TierDirective, "directive one").
		Add(TierContext, "context one").
		Add(TierHistory, "history one").
		Build()

	want := "directive one\ncontext one\nhistory one"
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuilder_TierOneNeverTruncated(t *testing.T) {
	// Budget smaller than the combined tier-1 content: every tier-1 line
	// must still be present.
	got := New().
		WithBudget(10).
		Add(TierDirective, "the player attacks the ghoul").
		Add(TierDirective, "encounter type: combat").
		Add(TierContext, "some context that cannot fit").
		Build()

	if !strings.Contains(got, "the player attacks the ghoul") {
		t.Error("tier-1 line missing after truncation")
	}
	if !strings.Contains(got, "encounter type: combat") {
		t.Error("tier-1 line missing after truncation")
	}
	if strings.Contains(got, "some context") {
		t.Error("tier-2 line should have been dropped")
	}
}

func TestBuilder_HistoryDroppedBeforeContext(t *testing.T) {
	directive := "directive"
	context := "context line"
	history := "history line"

	// Budget that fits directive+context but not history.
	budget := len(directive) + 1 + len(context) + 3

	got := New().
		WithBudget(budget).
		Add(TierDirective, directive).
		Add(TierHistory, history).
		Add(TierContext, context).
		Build()

	if !strings.Contains(got, context) {
		t.Error("tier-2 line should survive before tier-3")
	}
	if strings.Contains(got, history) {
		t.Error("tier-3 line should be dropped first")
	}
}

func TestBuilder_OverflowDiscardsRemainder(t *testing.T) {
	got := New().
		WithBudget(30).
		Add(TierDirective, "d").
		Add(TierContext, "first context line that is long").
		Add(TierContext, "x").
		Build()

	// The first tier-2 line overflows; it and everything after it at
	// tiers 2-3 is discarded.
	if got != "d" {
		t.Errorf("Build() = %q, want %q", got, "d")
	}
}

func TestBuilder_EmptyLinesIgnored(t *testing.T) {
	got := New().
		Add(TierDirective, "").
		Add(TierDirective, "real").
		Build()
	if got != "real" {
		t.Errorf("Build() = %q, want %q", got, "real")
	}
}

func TestBuilder_InsertionOrderWithinTier(t *testing.T) {
	got := New().
		Add(TierContext, "second").
		Add(TierDirective, "first").
		Add(TierContext, "third").
		Build()
	want := "first\nsecond\nthird"
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestNarrativePrompt_DirectivesSurviveTinyBudget(t *testing.T) {
	tc := TurnContext{
		PlayerAction:    "attack the troll",
		QuestStageLabel: "final",
		QuestGoal:       "Defeat the warlord of the pass",
		EncounterType:   encounter.TypeCombat,
		OpponentName:    "Venomous Cave Troll",
		Location:        "The Sunken Gate",
		PCSummary:       "Tharn, Level 3 Ranger (HP 18/25, AC 13)",
		RecentLog:       []string{"entered the gate", "found a torch"},
	}

	got := NarrativePrompt(tc, 10)

	for _, must := range []string{"attack the troll", "combat", "Venomous Cave Troll", "final"} {
		if !strings.Contains(got, must) {
			t.Errorf("directive content %q missing under tiny budget\nprompt: %s", must, got)
		}
	}
	if strings.Contains(got, "Sunken Gate") || strings.Contains(got, "found a torch") {
		t.Error("context/history should be dropped under tiny budget")
	}
}

func TestNarrativePrompt_FullBudgetIncludesContext(t *testing.T) {
	tc := TurnContext{
		PlayerAction:    "look around",
		QuestStageLabel: "early",
		QuestGoal:       "Retrieve the lost amulet",
		EncounterType:   encounter.TypeExploration,
		Location:        "The Mill",
		PCSummary:       "Tharn, Level 1 Ranger (HP 20/20, AC 12)",
		RecentLog:       []string{"woke at dawn"},
		EncounterCounts: map[encounter.Type]int{encounter.TypeExploration: 2},
	}

	got := NarrativePrompt(tc, 4000)
	for _, must := range []string{"Retrieve the lost amulet", "The Mill", "woke at dawn", "exploration=2"} {
		if !strings.Contains(got, must) {
			t.Errorf("expected %q in full-budget prompt", must)
		}
	}
}

func TestEncounterPrompt_ListsCandidates(t *testing.T) {
	candidates := []encounter.Type{encounter.TypeSocial, encounter.TypeTrap}
	got := EncounterPrompt(candidates, TurnContext{PlayerAction: "go north", QuestStageLabel: "mid"}, 500)

	if !strings.Contains(got, "social, trap") {
		t.Errorf("candidate list missing: %s", got)
	}
	if !strings.Contains(got, "go north") {
		t.Error("player action missing")
	}
}

func TestInstructions_KnownRoles(t *testing.T) {
	if Instructions(RoleEncounter) == "" {
		t.Error("encounter role should have instructions")
	}
	if Instructions(RoleNarrative) == "" {
		t.Error("narrative role should have instructions")
	}
	if Instructions(Role("unknown")) != "" {
		t.Error("unknown role should have empty instructions")
	}
}
