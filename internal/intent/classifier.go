package intent

import "slices"

// Classifier matches normalized text against ordered rule groups. It never
// mutates its groups and is safe for concurrent use.
type Classifier struct {
	groups []Group
}

// NewClassifier creates a classifier over groups, tested in the given order.
func NewClassifier(groups []Group) *Classifier {
	return &Classifier{groups: slices.Clone(groups)}
}

// Default returns a classifier over DefaultGroups.
func Default() *Classifier {
	return NewClassifier(DefaultGroups())
}

// Classify returns the first trigger hit by precedence, or an Unknown match.
func (c *Classifier) Classify(text string) Match {
	for _, g := range c.groups {
		for _, r := range g.Triggers {
			if r.Pattern.MatchString(text) {
				return Match{Intent: g.Intent, Rule: r.Name}
			}
		}
	}
	return Match{Intent: Unknown}
}

// Extract re-matches text against the extraction rules of in, in declaration
// order. It reports false when none match, which callers treat as an
// under-specified command rather than an error.
func (c *Classifier) Extract(in Intent, text string) (Captures, bool) {
	for _, g := range c.groups {
		if g.Intent != in {
			continue
		}
		for _, r := range g.Extractors {
			if caps, ok := r.capture(text); ok {
				return caps, true
			}
		}
		return Captures{}, false
	}
	return Captures{}, false
}

// Intents lists the intents in precedence order.
func (c *Classifier) Intents() []Intent {
	out := make([]Intent, len(c.groups))
	for i, g := range c.groups {
		out[i] = g.Intent
	}
	return out
}
