package prompts

// Role identifies a generator collaborator. Each role owns an
// independent conversational session with its own reset threshold.
type Role string

const (
	// RoleEncounter picks the next encounter type from a candidate set.
	RoleEncounter Role = "encounter"
	// RoleNarrative writes the turn's prose and suggested actions.
	RoleNarrative Role = "narrative"
)

// EncounterInstructions seed the encounter-picker session. The role
// answers with structured JSON so the result can be schema-validated at
// the boundary.
const EncounterInstructions = `You select the next encounter type for a text adventure. You will receive the allowed types and brief quest context. Respond with ONLY a JSON object: {"encounter_type": "<one of the allowed types>"}. Never answer with a type outside the allowed list. No prose.`

// NarrativeInstructions seed the narrative session.
const NarrativeInstructions = `You are the narrator of a grim fantasy text adventure. You describe each scene to the player in second person, present tense. Keep responses to 2-3 short paragraphs. Never resolve combat yourself; the game engine owns combat outcomes. Never invent monsters beyond the one named in the context.

Respond with ONLY a JSON object:
{"narrative": "<the scene prose>", "suggested_actions": ["<2 to 4 short imperative options>"], "quest_completed": <true only if the quest objective has clearly been fulfilled this turn>}`

// Instructions returns the static session seed for a role. Sessions are
// re-seeded with the same instructions after every reset.
func Instructions(role Role) string {
	switch role {
	case RoleEncounter:
		return EncounterInstructions
	case RoleNarrative:
		return NarrativeInstructions
	default:
		return ""
	}
}
