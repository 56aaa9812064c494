package taxonomy

// Vocabulary is a JSON-friendly snapshot of the tables, served to clients that
// want to show users what they can say.
type Vocabulary struct {
	Categories      []VocabularyEntry `json:"categories"`
	DefaultCategory string            `json:"default_category"`
	Priorities      []VocabularyEntry `json:"priorities"`
	DefaultPriority string            `json:"default_priority"`
	Dates           []VocabularyEntry `json:"dates"`
	Weekdays        []string          `json:"weekdays"`
	SlangNumerals   map[string]string `json:"slang_numerals"`
}

// VocabularyEntry is one labelled keyword set.
type VocabularyEntry struct {
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
}

// Vocabulary returns a snapshot of the tables.
func (t *Tables) Vocabulary() Vocabulary {
	v := Vocabulary{
		DefaultCategory: t.defaultCategory,
		DefaultPriority: t.defaultPriority,
		SlangNumerals:   make(map[string]string, len(t.slang)),
	}
	for _, c := range t.Categories() {
		v.Categories = append(v.Categories, VocabularyEntry{Label: c.Name, Keywords: c.Keywords})
	}
	for _, p := range t.Priorities() {
		v.Priorities = append(v.Priorities, VocabularyEntry{Label: p.Level, Keywords: p.Keywords})
	}
	for _, d := range t.Dates() {
		v.Dates = append(v.Dates, VocabularyEntry{Label: d.Token, Keywords: d.Keywords})
	}
	for _, w := range t.weekdays {
		v.Weekdays = append(v.Weekdays, w.Name)
	}
	for _, s := range t.slang {
		v.SlangNumerals[s.Word] = s.Replacement
	}
	return v
}
