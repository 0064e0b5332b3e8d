package actor

import (
	"encoding/json"
	"testing"
)

func testSpec() *PCSpec {
	return &PCSpec{
		ID:    "tharn",
		Name:  "Tharn",
		Class: "Ranger",
		Level: 1,
		MaxHP: 20,
		HP:    20,
		AC:    12,
		Attributes: map[string]int{
			"strength":  12,
			"dexterity": 14,
		},
	}
}

func TestNewPCFromSpec(t *testing.T) {
	pc, err := NewPCFromSpec(testSpec())
	if err != nil {
		t.Fatalf("NewPCFromSpec failed: %v", err)
	}

	if pc.Actor.HP() != 20 {
		t.Errorf("HP() = %d, want 20", pc.Actor.HP())
	}
	if pc.Actor.AC() != 12 {
		t.Errorf("AC() = %d, want 12", pc.Actor.AC())
	}
}

func TestNewPCFromSpec_NilSpec(t *testing.T) {
	if _, err := NewPCFromSpec(nil); err == nil {
		t.Error("expected error for nil spec")
	}
}

func TestNewPCFromSpec_Defaults(t *testing.T) {
	pc, err := NewPCFromSpec(&PCSpec{ID: "nameless"})
	if err != nil {
		t.Fatalf("NewPCFromSpec failed: %v", err)
	}
	if pc.Spec.Level != 1 {
		t.Errorf("Level = %d, want 1", pc.Spec.Level)
	}
	if pc.Spec.MaxHP <= 0 {
		t.Error("MaxHP should default to a positive value")
	}
	if pc.Spec.AC <= 0 {
		t.Error("AC should default to a positive value")
	}
}

func TestPC_AddXP(t *testing.T) {
	pc, err := NewPCFromSpec(testSpec())
	if err != nil {
		t.Fatalf("NewPCFromSpec failed: %v", err)
	}

	// Level 1 threshold is 100: 50 XP does not level.
	gained, err := pc.AddXP(50)
	if err != nil {
		t.Fatalf("AddXP failed: %v", err)
	}
	if gained != 0 {
		t.Errorf("gained = %d, want 0", gained)
	}
	if pc.Spec.XP != 50 {
		t.Errorf("XP = %d, want 50", pc.Spec.XP)
	}

	// 60 more crosses the threshold.
	gained, err = pc.AddXP(60)
	if err != nil {
		t.Fatalf("AddXP failed: %v", err)
	}
	if gained != 1 {
		t.Errorf("gained = %d, want 1", gained)
	}
	if pc.Spec.Level != 2 {
		t.Errorf("Level = %d, want 2", pc.Spec.Level)
	}
	if pc.Spec.XP != 10 {
		t.Errorf("XP = %d, want 10 (overflow carried)", pc.Spec.XP)
	}
	if pc.Spec.MaxHP != 25 {
		t.Errorf("MaxHP = %d, want 25", pc.Spec.MaxHP)
	}
	if pc.Actor.HP() != 25 {
		t.Errorf("Actor.HP() = %d, want 25 (refilled on level-up)", pc.Actor.HP())
	}
}

func TestPC_AddXP_MultipleLevels(t *testing.T) {
	pc, err := NewPCFromSpec(testSpec())
	if err != nil {
		t.Fatalf("NewPCFromSpec failed: %v", err)
	}

	// 100 (level 1) + 200 (level 2) = 300 to reach level 3.
	gained, err := pc.AddXP(300)
	if err != nil {
		t.Fatalf("AddXP failed: %v", err)
	}
	if gained != 2 {
		t.Errorf("gained = %d, want 2", gained)
	}
	if pc.Spec.Level != 3 {
		t.Errorf("Level = %d, want 3", pc.Spec.Level)
	}
}

func TestPC_AcquireItem(t *testing.T) {
	pc, _ := NewPCFromSpec(testSpec())

	pc.AcquireItem("Rusted Dagger")
	pc.AcquireItem("Rusted Dagger")

	if len(pc.Spec.Inventory) != 1 {
		t.Errorf("Inventory length = %d, want 1 (no duplicates)", len(pc.Spec.Inventory))
	}
}

func TestPC_JSONRoundTrip(t *testing.T) {
	pc, err := NewPCFromSpec(testSpec())
	if err != nil {
		t.Fatalf("NewPCFromSpec failed: %v", err)
	}
	if err := pc.Actor.SetHP(13); err != nil {
		t.Fatalf("SetHP failed: %v", err)
	}

	data, err := json.Marshal(pc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var loaded PC
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if loaded.Spec.Name != "Tharn" {
		t.Errorf("Name = %q, want Tharn", loaded.Spec.Name)
	}
	if loaded.Actor == nil {
		t.Fatal("Actor should be rebuilt on unmarshal")
	}
	if loaded.Actor.HP() != 13 {
		t.Errorf("HP() = %d, want 13 (current HP preserved)", loaded.Actor.HP())
	}
	if loaded.Actor.MaxHP() != 20 {
		t.Errorf("MaxHP() = %d, want 20", loaded.Actor.MaxHP())
	}
}

func TestBuildSummary(t *testing.T) {
	pc, _ := NewPCFromSpec(testSpec())

	got := BuildSummary(pc)
	want := "Tharn, Level 1 Ranger (HP 20/20, AC 12)"
	if got != want {
		t.Errorf("BuildSummary() = %q, want %q", got, want)
	}

	if BuildSummary(nil) != "" {
		t.Error("BuildSummary(nil) should be empty")
	}
}
