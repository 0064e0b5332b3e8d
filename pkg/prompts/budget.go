package prompts

import (
	"fmt"
	"strings"
)

// Tier is a priority class of prompt content. Lower tiers are dropped
// first under budget pressure.
type Tier int

const (
	// TierDirective lines are must-keep: quest-stage guidance, the
	// literal player action, the encounter type, and the name of any
	// entity the narrative must reference. Never truncated.
	TierDirective Tier = iota + 1
	// TierContext lines are contextual detail: quest goal, location,
	// compact character stats.
	TierContext
	// TierHistory lines are nice-to-have history: recent action log,
	// aggregate encounter counts. Dropped first.
	TierHistory
)

// DefaultMaxChars is the fallback prompt budget when a role has no
// configured budget. The precise numbers are configuration, not design.
const DefaultMaxChars = 2000

// Builder assembles a bounded prompt string from tiered lines using a
// fluent interface. Tier-1 lines are always emitted; tier-2 then tier-3
// lines are appended in insertion order until the budget would be
// exceeded, and the remainder is discarded. Truncation therefore degrades
// gracefully: directives and entity identity survive, historical flavor
// goes first.
type Builder struct {
	maxChars int
	lines    []line
}

type line struct {
	tier Tier
	text string
}

// New creates a prompt builder with the default budget.
func New() *Builder {
	return &Builder{maxChars: DefaultMaxChars}
}

// WithBudget sets the character budget. Non-positive budgets fall back
// to the default.
func (b *Builder) WithBudget(maxChars int) *Builder {
	if maxChars > 0 {
		b.maxChars = maxChars
	}
	return b
}

// Add appends a candidate line at the given tier. Empty lines are
// ignored.
func (b *Builder) Add(tier Tier, text string) *Builder {
	if text == "" {
		return b
	}
	b.lines = append(b.lines, line{tier: tier, text: text})
	return b
}

// Addf is Add with formatting.
func (b *Builder) Addf(tier Tier, format string, args ...any) *Builder {
	return b.Add(tier, fmt.Sprintf(format, args...))
}

// Build concatenates the lines under the budget.
func (b *Builder) Build() string {
	var sb strings.Builder

	// Tier 1 is unconditional, budget or not.
	for _, l := range b.lines {
		if l.tier != TierDirective {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.text)
	}

	// Tiers 2 and 3 in order, until the running length would exceed the
	// budget. The first overflowing line and everything after it at that
	// tier or below is discarded.
	for _, tier := range []Tier{TierContext, TierHistory} {
		for _, l := range b.lines {
			if l.tier != tier {
				continue
			}
			added := len(l.text)
			if sb.Len() > 0 {
				added++ // newline
			}
			if sb.Len()+added > b.maxChars {
				return sb.String()
			}
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(l.text)
		}
	}
	return sb.String()
}
