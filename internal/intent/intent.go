// Package intent classifies normalized command text into one of a closed set
// of intents and re-matches it against narrower extraction rules.
//
// Classification is first match by precedence, not best match: groups are
// tested in the order expense, income, task, reminder and the first trigger
// that matches decides. "agregar gasto variable 20000 en tarea" is an expense
// even though it mentions a task.
package intent

import (
	"fmt"
	"regexp"
)

// Intent is the coarse category of a command.
type Intent string

const (
	Expense  Intent = "expense"
	Income   Intent = "income"
	Task     Intent = "task"
	Reminder Intent = "reminder"
	Unknown  Intent = "unknown"
)

// Role names a value captured by an extraction rule.
type Role string

const (
	RoleKind        Role = "kind"
	RoleAmount      Role = "amount"
	RoleDescription Role = "description"
	RoleSource      Role = "source"
	RoleTitle       Role = "title"
)

// Rule is a compiled pattern. Named capture groups map to roles.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	roles   map[Role]int
}

func newRule(name, expr string) Rule {
	re := regexp.MustCompile(`(?i)` + expr)
	roles := make(map[Role]int)
	for i, sub := range re.SubexpNames() {
		if sub != "" {
			roles[Role(sub)] = i
		}
	}
	return Rule{Name: name, Pattern: re, roles: roles}
}

// Roles reports which roles the rule captures.
func (r Rule) Roles() []Role {
	out := make([]Role, 0, len(r.roles))
	for _, sub := range r.Pattern.SubexpNames() {
		if sub != "" {
			out = append(out, Role(sub))
		}
	}
	return out
}

// Group is the ordered rule set of one intent.
type Group struct {
	Intent Intent

	// Triggers decide classification.
	Triggers []Rule

	// Extractors pull roles out of text that was already classified. They are
	// narrower than the triggers: a trigger hit with no extractor hit is an
	// under-specified command.
	Extractors []Rule
}

// Match is the tagged outcome of classification.
type Match struct {
	Intent Intent

	// Rule is the name of the trigger that fired; empty for Unknown.
	Rule string
}

// Matched reports whether any group claimed the text.
func (m Match) Matched() bool {
	return m.Intent != Unknown
}

func (m Match) String() string {
	if !m.Matched() {
		return string(Unknown)
	}
	return fmt.Sprintf("%s(%s)", m.Intent, m.Rule)
}

// Captures are the role values of a successful extraction.
type Captures struct {
	Rule   string
	values map[Role]string
}

// Get returns the captured value for role, or "" if the rule has no such role
// or the group did not participate.
func (c Captures) Get(role Role) string {
	return c.values[role]
}

// Has reports whether the role captured a non-empty value.
func (c Captures) Has(role Role) bool {
	return c.values[role] != ""
}

func (r Rule) capture(text string) (Captures, bool) {
	m := r.Pattern.FindStringSubmatchIndex(text)
	if m == nil {
		return Captures{}, false
	}
	values := make(map[Role]string, len(r.roles))
	for role, idx := range r.roles {
		start, end := m[2*idx], m[2*idx+1]
		if start >= 0 {
			values[role] = text[start:end]
		}
	}
	return Captures{Rule: r.Name, values: values}, true
}
