package textfilter

import (
	"regexp"
	"strings"
)

// GenericOpponentSentence replaces sentences that name a monster the
// generation engine did not produce.
const GenericOpponentSentence = "A menacing shape stirs in the gloom."

// combatVerbs maps resolution verbs to neutral stand-ins. Combat
// outcomes are owned by the combat subsystem, so narrative text may
// describe the confrontation but never resolve it. Replacements must
// never themselves appear as keys, which keeps the transform
// idempotent.
var combatVerbs = []struct {
	word, neutral string
}{
	{"killing", "confronting"},
	{"killed", "confronted"},
	{"kills", "confronts"},
	{"kill", "confront"},
	{"slaying", "confronting"},
	{"slain", "confronted"},
	{"slays", "confronts"},
	{"slew", "confronted"},
	{"slay", "confront"},
	{"defeating", "challenging"},
	{"defeated", "challenged"},
	{"defeats", "challenges"},
	{"defeat", "challenge"},
	{"striking", "engaging"},
	{"strikes", "engages"},
	{"struck", "engaged"},
	{"strike", "engage"},
	{"vanquishing", "confronting"},
	{"vanquished", "confronted"},
	{"vanquishes", "confronts"},
	{"vanquish", "confront"},
	{"destroying", "confronting"},
	{"destroyed", "confronted"},
	{"destroys", "confronts"},
	{"destroy", "confront"},
}

var combatVerbRegexes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(combatVerbs))
	for i, v := range combatVerbs {
		out[i] = regexp.MustCompile(`(?i)\b` + v.word + `\b`)
	}
	return out
}()

// suggestionPatterns match sentences phrased as direct suggestions or
// questions to the player. Action options are a separate structured
// field, so they do not belong in narrative prose.
var suggestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\byou\s+(could|can|might|may|should)\b`),
	regexp.MustCompile(`(?i)^\s*(perhaps|maybe|why not|consider)\b`),
	regexp.MustCompile(`(?i)^\s*(do|will|would|what|where|how)\b.*\byou\b`),
}

var sentenceRegex = regexp.MustCompile(`[^.!?\n]+[.!?]*`)

// splitSentences breaks text into sentences, keeping terminators.
func splitSentences(text string) []string {
	raw := sentenceRegex.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NeutralizeCombatVerbs replaces resolution verbs with neutral
// alternatives, preserving the case of the original word. Intended for
// combat-typed encounters only; the caller gates on encounter type.
func NeutralizeCombatVerbs(text string) string {
	result := text
	for i, v := range combatVerbs {
		neutral := v.neutral
		result = combatVerbRegexes[i].ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, neutral)
		})
	}
	return result
}

// StripSuggestions removes sentences that address the player directly
// with a suggestion or question. Returns the remaining sentences
// rejoined with single spaces.
func StripSuggestions(text string) string {
	sentences := splitSentences(text)
	kept := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if isSuggestion(s) {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == len(sentences) {
		return text
	}
	return strings.Join(kept, " ")
}

func isSuggestion(sentence string) bool {
	if strings.HasSuffix(sentence, "?") && containsWordYou(sentence) {
		return true
	}
	for _, re := range suggestionPatterns {
		if re.MatchString(sentence) {
			return true
		}
	}
	return false
}

var youRegex = regexp.MustCompile(`(?i)\byou\b`)

func containsWordYou(sentence string) bool {
	return youRegex.MatchString(sentence)
}

// Sanitizer applies the full post-generation transform pipeline. It is
// configured once with the monster catalog and content rating, then
// applied to every narrative the generators return.
type Sanitizer struct {
	monsterKeywords []string
	profanity       *ProfanityFilter
	filterProfanity bool
}

// NewSanitizer builds a sanitizer. monsterNames is the generation
// catalog's base names; rating gates the profanity filter.
func NewSanitizer(monsterNames []string, rating string) *Sanitizer {
	s := &Sanitizer{
		profanity:       NewProfanityFilter(),
		filterProfanity: ShouldFilterContent(rating),
	}
	seen := make(map[string]bool)
	for _, name := range monsterNames {
		words := strings.Fields(strings.ToLower(name))
		if len(words) == 0 {
			continue
		}
		// The last word of a base name is its identifying keyword:
		// "Cave Rat" reads as a rat.
		kw := words[len(words)-1]
		if !seen[kw] {
			seen[kw] = true
			s.monsterKeywords = append(s.monsterKeywords, kw)
		}
	}
	return s
}

// ValidateMonsterReferences replaces any sentence naming a catalog
// monster that is not part of the actual opponent's name. With no
// opponent the text is returned unchanged.
func (s *Sanitizer) ValidateMonsterReferences(text, opponentName string) string {
	if opponentName == "" {
		return text
	}
	opponent := strings.ToLower(opponentName)
	sentences := splitSentences(text)
	changed := false
	for i, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, kw := range s.monsterKeywords {
			if !wordInSentence(lower, kw) || strings.Contains(opponent, kw) {
				continue
			}
			sentences[i] = GenericOpponentSentence
			changed = true
			break
		}
	}
	if !changed {
		return text
	}
	return strings.Join(sentences, " ")
}

func wordInSentence(lowerSentence, word string) bool {
	idx := 0
	for {
		i := strings.Index(lowerSentence[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isLetter(lowerSentence[start-1])
		afterOK := end == len(lowerSentence) || !isLetter(lowerSentence[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Sanitize runs the fixed-order pipeline: combat verb neutralization
// (combat encounters only), suggestion stripping, monster reference
// validation, then the rating-gated profanity filter. Every transform
// is pure and at worst leaves the text unchanged, so sanitizing twice
// yields the same result as sanitizing once.
func (s *Sanitizer) Sanitize(text string, combat bool, opponentName string) string {
	result := text
	if combat {
		result = NeutralizeCombatVerbs(result)
	}
	result = StripSuggestions(result)
	result = s.ValidateMonsterReferences(result, opponentName)
	if s.filterProfanity {
		result = s.profanity.FilterText(result)
	}
	return result
}

// SanitizeActions applies verb neutralization to each suggested action
// of a combat encounter.
func (s *Sanitizer) SanitizeActions(actions []string, combat bool) []string {
	if !combat {
		return actions
	}
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = NeutralizeCombatVerbs(a)
	}
	return out
}
