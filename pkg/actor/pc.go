package actor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/d20"
)

// PCSpec is the serializable specification for the player character.
type PCSpec struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Class       string         `json:"class,omitempty"`
	Level       int            `json:"level,omitempty"`
	XP          int            `json:"xp,omitempty"`
	Gold        int            `json:"gold,omitempty"`
	Description string         `json:"description,omitempty"`
	HP          int            `json:"hp,omitempty"` // current HP (for serialization)
	MaxHP       int            `json:"max_hp,omitempty"`
	AC          int            `json:"ac,omitempty"`
	Attack      int            `json:"attack,omitempty"`
	Attributes  map[string]int `json:"attributes,omitempty"`
	Inventory   []string       `json:"inventory,omitempty"`
}

// PC is the runtime representation of the player character.
type PC struct {
	Spec  *PCSpec
	Actor *d20.Actor // built at runtime from Spec
}

// XP required to advance from the given level.
func xpThreshold(level int) int {
	return level * 100
}

// levelHPGain is the MaxHP increase per level-up.
const levelHPGain = 5

// NewPCFromSpec creates a PC from a PCSpec.
func NewPCFromSpec(spec *PCSpec) (*PC, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.Level <= 0 {
		spec.Level = 1
	}
	if spec.MaxHP <= 0 {
		spec.MaxHP = 20
	}
	if spec.AC <= 0 {
		spec.AC = 10
	}
	if spec.Attack <= 0 {
		spec.Attack = 3
	}

	a, err := buildActor(spec)
	if err != nil {
		return nil, err
	}
	return &PC{Spec: spec, Actor: a}, nil
}

func buildActor(spec *PCSpec) (*d20.Actor, error) {
	attrs := spec.Attributes
	if attrs == nil {
		attrs = make(map[string]int)
	}
	actor, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(attrs).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}
	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := actor.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return actor, nil
}

// AddXP grants experience and applies any level-ups. Each level-up raises
// MaxHP and refills current HP. Returns the number of levels gained.
func (pc *PC) AddXP(xp int) (int, error) {
	if xp <= 0 {
		return 0, nil
	}
	pc.Spec.XP += xp

	gained := 0
	for pc.Spec.XP >= xpThreshold(pc.Spec.Level) {
		pc.Spec.XP -= xpThreshold(pc.Spec.Level)
		pc.Spec.Level++
		pc.Spec.MaxHP += levelHPGain
		gained++
	}
	if gained == 0 {
		return 0, nil
	}

	// MaxHP changed, so the actor is rebuilt from the updated spec.
	pc.Spec.HP = pc.Spec.MaxHP
	a, err := buildActor(pc.Spec)
	if err != nil {
		return gained, err
	}
	pc.Actor = a
	return gained, nil
}

// AddGold grants gold. Negative amounts are ignored.
func (pc *PC) AddGold(n int) {
	if n > 0 {
		pc.Spec.Gold += n
	}
}

// AcquireItem adds an item to the PC's inventory if not already held.
func (pc *PC) AcquireItem(name string) {
	for _, it := range pc.Spec.Inventory {
		if it == name {
			return
		}
	}
	pc.Spec.Inventory = append(pc.Spec.Inventory, name)
}

// MarshalJSON serializes the PC as its spec, with current HP state read
// from the runtime actor.
func (pc *PC) MarshalJSON() ([]byte, error) {
	if pc == nil {
		return []byte("null"), nil
	}
	if pc.Actor == nil {
		return json.Marshal(pc.Spec)
	}

	spec := *pc.Spec
	spec.HP = pc.Actor.HP()
	spec.MaxHP = pc.Actor.MaxHP()
	spec.AC = pc.Actor.AC()
	return json.Marshal(&spec)
}

// UnmarshalJSON reconstructs a PC from JSON and rebuilds its actor.
func (pc *PC) UnmarshalJSON(data []byte) error {
	var spec PCSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal PC spec: %w", err)
	}
	rebuilt, err := NewPCFromSpec(&spec)
	if err != nil {
		return err
	}
	*pc = *rebuilt
	return nil
}

// BuildSummary constructs the compact character line used in prompt
// context. Returns an empty string if pc is nil.
//
// Example output:
// Tharn, Level 3 Ranger (HP 18/25, AC 13)
func BuildSummary(pc *PC) string {
	if pc == nil || pc.Spec == nil {
		return ""
	}
	sb := strings.Builder{}
	sb.WriteString(pc.Spec.Name)
	if pc.Spec.Level > 0 || pc.Spec.Class != "" {
		sb.WriteString(fmt.Sprintf(", Level %d %s", pc.Spec.Level, pc.Spec.Class))
	}
	if pc.Actor != nil {
		sb.WriteString(fmt.Sprintf(" (HP %d/%d, AC %d)", pc.Actor.HP(), pc.Actor.MaxHP(), pc.Actor.AC()))
	}
	return sb.String()
}
