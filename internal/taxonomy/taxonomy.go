// Package taxonomy holds the static reference vocabulary used to interpret
// commands: category and priority keyword sets, date expressions, weekday names
// and slang numerals.
//
// The tables ship embedded in the binary and are parsed once. A *Tables value
// is never modified after Load returns; every accessor hands out copies, so a
// single instance can be shared by any number of goroutines.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nadzzz/dictado/internal/normalize"
)

//go:embed taxonomy.yaml
var embedded []byte

// ErrInvalidTables is returned when a taxonomy document fails validation.
var ErrInvalidTables = errors.New("invalid taxonomy")

// Category is a canonical category name and the keywords that select it.
type Category struct {
	Name     string
	Keywords []string
}

// Priority is a priority level and the keywords that select it.
type Priority struct {
	Level    string
	Keywords []string
}

// DateExpression maps a symbolic date token to its keywords. Only expressions
// with an offset resolve to a calendar date.
type DateExpression struct {
	Token      string
	Keywords   []string
	OffsetDays int
	Resolves   bool
}

// Weekday is a Spanish weekday name.
type Weekday struct {
	Name string
	Day  time.Weekday
}

// Tables is the immutable, ordered reference data.
type Tables struct {
	slang             []normalize.Substitution
	categories        []Category
	defaultCategory   string
	priorities        []Priority
	defaultPriority   string
	dates             []DateExpression
	defaultDateOffset int
	weekdays          []Weekday
}

type document struct {
	SlangNumerals []struct {
		Word        string `yaml:"word"`
		Replacement string `yaml:"replacement"`
	} `yaml:"slang_numerals"`
	Categories []struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"categories"`
	DefaultCategory string `yaml:"default_category"`
	Priorities      []struct {
		Level    string   `yaml:"level"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"priorities"`
	DefaultPriority string `yaml:"default_priority"`
	Dates           []struct {
		Token      string   `yaml:"token"`
		OffsetDays *int     `yaml:"offset_days"`
		Keywords   []string `yaml:"keywords"`
	} `yaml:"dates"`
	DefaultDateOffsetDays int `yaml:"default_date_offset_days"`
	Weekdays              []struct {
		Name    string `yaml:"name"`
		Weekday string `yaml:"weekday"`
	} `yaml:"weekdays"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	return Load(embedded)
})

// Default returns the embedded tables. It panics if the embedded document is
// invalid, which can only happen if the binary was built from a broken file.
func Default() *Tables {
	t, err := defaultTables()
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded tables: %v", err))
	}
	return t
}

// Load parses and validates a taxonomy document.
func Load(data []byte) (*Tables, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}

	t := &Tables{
		defaultCategory:   strings.TrimSpace(doc.DefaultCategory),
		defaultPriority:   strings.TrimSpace(doc.DefaultPriority),
		defaultDateOffset: doc.DefaultDateOffsetDays,
	}

	for _, s := range doc.SlangNumerals {
		if s.Word == "" || s.Replacement == "" {
			return nil, fmt.Errorf("%w: slang numeral needs word and replacement", ErrInvalidTables)
		}
		t.slang = append(t.slang, normalize.Substitution{Word: s.Word, Replacement: s.Replacement})
	}

	for _, c := range doc.Categories {
		kws, err := foldKeywords("category "+c.Name, c.Keywords)
		if err != nil {
			return nil, err
		}
		if c.Name == "" {
			return nil, fmt.Errorf("%w: category without name", ErrInvalidTables)
		}
		t.categories = append(t.categories, Category{Name: c.Name, Keywords: kws})
	}
	if t.defaultCategory == "" {
		return nil, fmt.Errorf("%w: default_category is required", ErrInvalidTables)
	}

	for _, p := range doc.Priorities {
		kws, err := foldKeywords("priority "+p.Level, p.Keywords)
		if err != nil {
			return nil, err
		}
		t.priorities = append(t.priorities, Priority{Level: p.Level, Keywords: kws})
	}
	if !slices.ContainsFunc(t.priorities, func(p Priority) bool { return p.Level == t.defaultPriority }) {
		return nil, fmt.Errorf("%w: default_priority %q is not a declared level", ErrInvalidTables, t.defaultPriority)
	}

	for _, d := range doc.Dates {
		kws, err := foldKeywords("date "+d.Token, d.Keywords)
		if err != nil {
			return nil, err
		}
		expr := DateExpression{Token: d.Token, Keywords: kws}
		if d.OffsetDays != nil {
			expr.OffsetDays = *d.OffsetDays
			expr.Resolves = true
		}
		t.dates = append(t.dates, expr)
	}

	for _, w := range doc.Weekdays {
		day, ok := weekdayNames[strings.ToLower(w.Weekday)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidTables, w.Weekday)
		}
		t.weekdays = append(t.weekdays, Weekday{Name: normalize.Fold(w.Name), Day: day})
	}

	return t, nil
}

func foldKeywords(owner string, keywords []string) ([]string, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: %s has no keywords", ErrInvalidTables, owner)
	}
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		f := normalize.Fold(kw)
		if f == "" {
			return nil, fmt.Errorf("%w: %s has an empty keyword", ErrInvalidTables, owner)
		}
		out = append(out, f)
	}
	return out, nil
}

// Substitutions returns the slang numeral table in application order.
func (t *Tables) Substitutions() []normalize.Substitution {
	return slices.Clone(t.slang)
}

// Categories returns the category table in declaration order.
func (t *Tables) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Keywords: slices.Clone(c.Keywords)}
	}
	return out
}

// DefaultCategory is used when no category keyword matches.
func (t *Tables) DefaultCategory() string { return t.defaultCategory }

// Priorities returns the priority table in declaration order.
func (t *Tables) Priorities() []Priority {
	out := make([]Priority, len(t.priorities))
	for i, p := range t.priorities {
		out[i] = Priority{Level: p.Level, Keywords: slices.Clone(p.Keywords)}
	}
	return out
}

// DefaultPriority is used when no priority keyword matches.
func (t *Tables) DefaultPriority() string { return t.defaultPriority }

// Dates returns the date expression table in declaration order.
func (t *Tables) Dates() []DateExpression {
	out := make([]DateExpression, len(t.dates))
	for i, d := range t.dates {
		d.Keywords = slices.Clone(d.Keywords)
		out[i] = d
	}
	return out
}

// DefaultDateOffset is the day offset used when no date expression resolves.
func (t *Tables) DefaultDateOffset() int { return t.defaultDateOffset }

// Weekdays returns the weekday name table.
func (t *Tables) Weekdays() []Weekday {
	return slices.Clone(t.weekdays)
}

// LookupWeekday resolves a Spanish weekday name, accents optional.
func (t *Tables) LookupWeekday(name string) (time.Weekday, bool) {
	name = normalize.Fold(name)
	for _, w := range t.weekdays {
		if w.Name == name {
			return w.Day, true
		}
	}
	return 0, false
}
