package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Subteran/DunGen-sub001/pkg/chat"
)

// ErrorKind classifies generator failures so the orchestrator can pick
// a recovery strategy without inspecting provider internals.
type ErrorKind string

const (
	// ErrUnavailable means the provider could not be reached or did not
	// return a usable response. Surfaced as a recoverable "try again".
	ErrUnavailable ErrorKind = "unavailable"
	// ErrMalformed means the provider responded but the structured
	// result failed schema validation. Triggers one reduced-prompt retry.
	ErrMalformed ErrorKind = "malformed"
	// ErrRefused means the provider declined to produce content.
	ErrRefused ErrorKind = "refused"
)

// GeneratorError is the typed failure of a generator call.
type GeneratorError struct {
	Kind ErrorKind
	Err  error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator %s: %v", e.Kind, e.Err)
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as a provider-unavailable failure.
func Unavailable(err error) *GeneratorError {
	return &GeneratorError{Kind: ErrUnavailable, Err: err}
}

// Malformed wraps err as a schema-validation failure.
func Malformed(err error) *GeneratorError {
	return &GeneratorError{Kind: ErrMalformed, Err: err}
}

// Refused wraps err as a provider refusal.
func Refused(err error) *GeneratorError {
	return &GeneratorError{Kind: ErrRefused, Err: err}
}

// IsKind reports whether err is a GeneratorError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ge *GeneratorError
	return errors.As(err, &ge) && ge.Kind == kind
}

// GeneratorService is the boundary to an external text generator. The
// engine supplies a bounded conversation and consumes raw text; schema
// validation happens in the Parse functions before anything crosses
// into game state.
type GeneratorService interface {
	// Generate produces a completion for the given conversation.
	// Failures are returned as *GeneratorError.
	Generate(ctx context.Context, messages []chat.ChatMessage) (string, error)
}

// EncounterResult is the encounter generator's target schema.
type EncounterResult struct {
	EncounterType string `json:"encounter_type"`
}

// NarrativeResult is the narrative generator's target schema.
type NarrativeResult struct {
	Narrative        string   `json:"narrative"`
	SuggestedActions []string `json:"suggested_actions"`
	QuestCompleted   bool     `json:"quest_completed"`
}

// MaxSuggestedActions caps the options surfaced to the player.
const MaxSuggestedActions = 4

// extractJSON pulls the outermost JSON object out of a completion,
// tolerating code fences and surrounding prose.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return raw[start : end+1], nil
}

// ParseEncounterResult validates an encounter completion. Validation of
// the type against the turn's candidate set is the orchestrator's job;
// this only enforces the schema.
func ParseEncounterResult(raw string) (*EncounterResult, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, Malformed(err)
	}
	var result EncounterResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, Malformed(fmt.Errorf("decoding encounter result: %w", err))
	}
	if strings.TrimSpace(result.EncounterType) == "" {
		return nil, Malformed(fmt.Errorf("encounter result missing encounter_type"))
	}
	return &result, nil
}

// ParseNarrativeResult validates a narrative completion.
func ParseNarrativeResult(raw string) (*NarrativeResult, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, Malformed(err)
	}
	var result NarrativeResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, Malformed(fmt.Errorf("decoding narrative result: %w", err))
	}
	if strings.TrimSpace(result.Narrative) == "" {
		return nil, Malformed(fmt.Errorf("narrative result missing narrative"))
	}
	if len(result.SuggestedActions) > MaxSuggestedActions {
		result.SuggestedActions = result.SuggestedActions[:MaxSuggestedActions]
	}
	return &result, nil
}
