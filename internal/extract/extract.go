// Package extract pulls structured fields (amount, category, priority, date)
// out of normalized command text using the taxonomy tables.
//
// Every lookup is total: when nothing matches it degrades to the table's
// default (otros, media, tomorrow) instead of failing.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/nadzzz/dictado/internal/normalize"
	"github.com/nadzzz/dictado/internal/taxonomy"
)

// DateLayout is the calendar date format of due dates.
const DateLayout = "2006-01-02"

type dateRule struct {
	token  string
	offset int
	re     *regexp.Regexp
}

// Extractor holds lookup structures compiled once from the taxonomy tables.
// It is read-only after New and safe for concurrent use.
type Extractor struct {
	categories      []taxonomy.Category
	defaultCategory string
	priorities      []taxonomy.Priority
	defaultPriority string
	dates           []dateRule
	defaultOffset   int
}

// New compiles an Extractor from t.
func New(t *taxonomy.Tables) *Extractor {
	e := &Extractor{
		categories:      t.Categories(),
		defaultCategory: t.DefaultCategory(),
		priorities:      t.Priorities(),
		defaultPriority: t.DefaultPriority(),
		defaultOffset:   t.DefaultDateOffset(),
	}
	for _, d := range t.Dates() {
		if !d.Resolves {
			continue
		}
		e.dates = append(e.dates, dateRule{token: d.Token, offset: d.OffsetDays, re: wordSet(d.Keywords)})
	}
	return e
}

// wordSet matches any of keywords as whole words.
func wordSet(keywords []string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Category returns the first category, in table order, that has a keyword
// contained in description. Several categories may match; the earliest
// declared wins, not the longest keyword.
func (e *Extractor) Category(description string) string {
	description = normalize.Fold(description)
	for _, c := range e.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(description, kw) {
				return c.Name
			}
		}
	}
	return e.defaultCategory
}

// Priority scans the whole text for priority keywords in table order
// (alta, media, baja). Keywords are plain substrings, so "ya" fires inside
// "playa" the same way category keywords do.
func (e *Extractor) Priority(text string) string {
	text = normalize.Fold(text)
	for _, p := range e.priorities {
		for _, kw := range p.Keywords {
			if strings.Contains(text, kw) {
				return p.Level
			}
		}
	}
	return e.defaultPriority
}

// DateOffset returns the day offset from today named by text and the token
// that matched. Only resolvable expressions (hoy, mañana) count; weekday names
// and anything else fall back to the default offset with an empty token.
func (e *Extractor) DateOffset(text string) (int, string) {
	text = normalize.Fold(text)
	for _, d := range e.dates {
		if d.re.MatchString(text) {
			return d.offset, d.token
		}
	}
	return e.defaultOffset, ""
}

// Date returns the due date named by text relative to now, formatted as
// YYYY-MM-DD in now's location.
func (e *Extractor) Date(text string, now time.Time) string {
	offset, _ := e.DateOffset(text)
	return now.AddDate(0, 0, offset).Format(DateLayout)
}

// DefaultDate is the date used when a command names none.
func (e *Extractor) DefaultDate(now time.Time) string {
	return now.AddDate(0, 0, e.defaultOffset).Format(DateLayout)
}
