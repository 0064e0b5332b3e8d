package actor

// NPC represents a non-player character the player can interact with
// during social encounters.
type NPC struct {
	Name        string `json:"name"`
	Type        string `json:"type"`        // e.g. "villager", "guard", "merchant"
	Disposition string `json:"disposition"` // e.g. "hostile", "neutral", "friendly"
	Profile     string `json:"profile,omitempty"`
	Location    string `json:"location,omitempty"`
}
