// Package normalize canonicalizes spoken command text before it is matched.
//
// Normalization lower-cases, strips diacritics, replaces whole-word slang
// numerals ("50 lucas" -> "50 000") and collapses whitespace. It is a pure
// function: it never fails and normalizing twice yields the same text.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Substitution replaces a whole slang word with its numeric spelling.
type Substitution struct {
	Word        string
	Replacement string
}

type compiledSubstitution struct {
	re          *regexp.Regexp
	replacement string
}

// Normalizer applies the normalization steps with a fixed substitution table.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	subs []compiledSubstitution
}

// New compiles a Normalizer. Substitutions are applied in the given order and
// only on word boundaries, so "k" never touches "kilo".
func New(subs []Substitution) (*Normalizer, error) {
	n := &Normalizer{subs: make([]compiledSubstitution, 0, len(subs))}
	for _, s := range subs {
		word := Fold(s.Word)
		if word == "" {
			return nil, errors.New("normalize: empty substitution word")
		}
		if strings.ContainsFunc(s.Replacement, unicode.IsLetter) {
			// A letter in the replacement could itself be substituted on a
			// second pass and break idempotence.
			return nil, fmt.Errorf("normalize: replacement for %q must not contain letters", s.Word)
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("normalize: compiling %q: %w", s.Word, err)
		}
		n.subs = append(n.subs, compiledSubstitution{re: re, replacement: s.Replacement})
	}
	return n, nil
}

// Normalize returns the canonical form of text. Any input, including the empty
// string, yields a valid (possibly empty) string.
func (n *Normalizer) Normalize(text string) string {
	text = stripDiacritics(strings.ToLower(text))
	for _, s := range n.subs {
		text = s.re.ReplaceAllLiteralString(text, s.replacement)
	}
	return collapseSpace(text)
}

// Fold lower-cases, strips diacritics and collapses whitespace without any
// slang substitution. Taxonomy keywords are folded so they compare equal to
// normalized command text.
func Fold(text string) string {
	return collapseSpace(stripDiacritics(strings.ToLower(text)))
}

// stripDiacritics decomposes text and drops combining marks ("mañana" -> "manana").
// The chain keeps per-call state, so a fresh one is built every time.
func stripDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
