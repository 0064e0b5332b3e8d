package quest

import (
	"errors"
	"testing"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name     string
		goal     string
		expected Type
	}{
		{
			name:     "defeat is combat",
			goal:     "Defeat the bandit leader",
			expected: TypeCombat,
		},
		{
			name:     "kill is combat",
			goal:     "Kill the lich king",
			expected: TypeCombat,
		},
		{
			name:     "retrieve is retrieval",
			goal:     "Retrieve the lost amulet",
			expected: TypeRetrieval,
		},
		{
			name:     "find is retrieval",
			goal:     "Find the missing ledger",
			expected: TypeRetrieval,
		},
		{
			name:     "escort",
			goal:     "Escort the merchant caravan to the pass",
			expected: TypeEscort,
		},
		{
			name:     "investigate",
			goal:     "Investigate the disappearances in the mill",
			expected: TypeInvestigation,
		},
		{
			name:     "rescue",
			goal:     "Rescue the miller's daughter",
			expected: TypeRescue,
		},
		{
			name:     "negotiate is diplomatic",
			goal:     "Negotiate a truce with the hill clans",
			expected: TypeDiplomatic,
		},
		{
			name:     "no keyword falls back to combat",
			goal:     "Something stirs beneath the old keep",
			expected: TypeCombat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferType(tt.goal); got != tt.expected {
				t.Errorf("InferType(%q) = %v, want %v", tt.goal, got, tt.expected)
			}
		})
	}
}

func TestExtractObjective(t *testing.T) {
	tests := []struct {
		goal     string
		expected string
	}{
		{"Retrieve the lost amulet", "lost amulet"},
		{"Defeat the bandit leader", "bandit leader"},
		{"Rescue a prisoner from the mine", "prisoner from the mine"},
		{"Find the missing ledger.", "missing ledger"},
		{"Nothing matches here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			if got := ExtractObjective(tt.goal); got != tt.expected {
				t.Errorf("ExtractObjective(%q) = %q, want %q", tt.goal, got, tt.expected)
			}
		})
	}
}

func TestQuest_StageThresholds(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected Stage
	}{
		{"start is early", 0, 10, StageEarly},
		{"under half is early", 4, 10, StageEarly},
		{"half is mid", 5, 10, StageMid},
		{"under 85 is mid", 8, 10, StageMid},
		{"85 to 99 is late", 9, 10, StageLate},
		{"100 is final", 10, 10, StageFinal},
		{"one past is finale", 11, 10, StageFinale},
		{"window edge is last chance", 13, 10, StageLastChance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Quest{CurrentEncounter: tt.current, TotalEncounters: tt.total, FailureWindow: DefaultFailureWindow}
			if got := q.Stage(); got != tt.expected {
				t.Errorf("Stage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestQuest_FinalBoundary(t *testing.T) {
	// A 6-encounter quest reaches final exactly at encounter 6.
	q := New("Defeat the warlord", 6)
	for i := 0; i < 5; i++ {
		q.Advance()
		if q.Stage() == StageFinal {
			t.Fatalf("quest entered final at encounter %d", q.CurrentEncounter)
		}
	}
	q.Advance()
	if q.Stage() != StageFinal {
		t.Errorf("Stage() at encounter 6 = %v, want final", q.Stage())
	}

	// Same for a 9-encounter quest at encounter 9.
	q = New("Defeat the warlord", 9)
	for i := 0; i < 9; i++ {
		q.Advance()
	}
	if q.Stage() != StageFinal {
		t.Errorf("Stage() at encounter 9 = %v, want final", q.Stage())
	}
}

func TestQuest_StageNeverRegresses(t *testing.T) {
	order := map[Stage]int{
		StageEarly:      0,
		StageMid:        1,
		StageLate:       2,
		StageFinal:      3,
		StageFinale:     4,
		StageLastChance: 5,
	}

	q := New("Defeat the warlord", 7)
	prev := q.Stage()
	for i := 0; i < 12; i++ {
		q.Advance()
		cur := q.Stage()
		if order[cur] < order[prev] {
			t.Fatalf("stage regressed from %v to %v at encounter %d", prev, cur, q.CurrentEncounter)
		}
		prev = cur
	}
}

func TestQuest_StageLabel(t *testing.T) {
	q := &Quest{CurrentEncounter: 12, TotalEncounters: 10, FailureWindow: 3}
	if got := q.StageLabel(); got != "finale+2" {
		t.Errorf("StageLabel() = %q, want finale+2", got)
	}

	q.CurrentEncounter = 5
	if got := q.StageLabel(); got != "mid" {
		t.Errorf("StageLabel() = %q, want mid", got)
	}
}

func TestQuest_ForceFailIfExpired(t *testing.T) {
	q := New("Defeat the warlord", 5)
	q.CurrentEncounter = 5 + q.FailureWindow

	if q.ForceFailIfExpired() {
		t.Error("quest at window edge should not fail yet")
	}

	q.Advance()
	if !q.ForceFailIfExpired() {
		t.Error("quest past window should force-fail")
	}
	if !q.Failed {
		t.Error("Failed flag should be set")
	}

	// A completed quest never fails.
	q2 := New("Defeat the warlord", 5)
	q2.Completed = true
	q2.CurrentEncounter = 20
	if q2.ForceFailIfExpired() {
		t.Error("completed quest must not be force-failed")
	}
}

func TestQuest_CompleteCombat(t *testing.T) {
	q := New("Defeat the bandit leader", 6)
	q.BossAnchor = "Bandit Leader"

	// No recorded victory: contract violation.
	err := q.CompleteCombat()
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("expected ErrInvariant, got %v", err)
	}
	if q.Completed {
		t.Error("quest must not be completed on invariant violation")
	}

	// Defeating a non-anchor monster is not a victory.
	if q.RecordVictory("Cave Rat") {
		t.Error("non-anchor defeat should not record victory")
	}

	// Anchor defeat (case-insensitive, affix-free base name).
	if !q.RecordVictory("bandit leader") {
		t.Error("anchor defeat should record victory")
	}
	if err := q.CompleteCombat(); err != nil {
		t.Errorf("CompleteCombat failed: %v", err)
	}
	if !q.Completed {
		t.Error("quest should be completed")
	}
}

func TestQuest_CompleteCombat_WrongType(t *testing.T) {
	q := New("Retrieve the lost amulet", 6)
	if err := q.CompleteCombat(); !errors.Is(err, ErrInvariant) {
		t.Errorf("expected ErrInvariant for non-combat quest, got %v", err)
	}
}

func TestQuest_MatchesRetrieval(t *testing.T) {
	q := New("Retrieve the lost amulet", 6)

	tests := []struct {
		name     string
		action   string
		expected bool
	}{
		{"verb plus objective", "I grab the lost amulet from the altar", true},
		{"pick up variant", "carefully pick up the lost amulet", true},
		{"objective without verb", "I stare at the lost amulet", false},
		{"verb without objective", "I grab the torch", false},
		{"unrelated action", "I walk north", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.MatchesRetrieval(tt.action); got != tt.expected {
				t.Errorf("MatchesRetrieval(%q) = %v, want %v", tt.action, got, tt.expected)
			}
		})
	}
}

func TestQuest_CompleteRetrieval(t *testing.T) {
	q := New("Retrieve the lost amulet", 6)

	if err := q.CompleteRetrieval("I admire the scenery"); !errors.Is(err, ErrInvariant) {
		t.Errorf("expected ErrInvariant, got %v", err)
	}

	if err := q.CompleteRetrieval("take the lost amulet"); err != nil {
		t.Errorf("CompleteRetrieval failed: %v", err)
	}
	if !q.Completed {
		t.Error("quest should be completed")
	}
}

func TestQuest_CompleteFromNarrative(t *testing.T) {
	q := New("Negotiate a truce with the hill clans", 6)

	// Too early: the generator may only propose completion in final or later.
	q.CurrentEncounter = 3
	if err := q.CompleteFromNarrative(); !errors.Is(err, ErrInvariant) {
		t.Errorf("expected ErrInvariant before final stage, got %v", err)
	}

	q.CurrentEncounter = 6
	if err := q.CompleteFromNarrative(); err != nil {
		t.Errorf("CompleteFromNarrative failed: %v", err)
	}
	if !q.Completed {
		t.Error("quest should be completed")
	}
}

func TestQuest_CompleteFromNarrative_ObjectiveTypesRejected(t *testing.T) {
	for _, goal := range []string{"Defeat the warlord", "Retrieve the lost amulet"} {
		q := New(goal, 4)
		q.CurrentEncounter = 4
		if err := q.CompleteFromNarrative(); !errors.Is(err, ErrInvariant) {
			t.Errorf("%s quest: expected ErrInvariant, got %v", q.Type, err)
		}
	}
}
