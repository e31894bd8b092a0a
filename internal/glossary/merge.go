// Package glossary merges term lists and writes them out.
package glossary

import (
	"golang.org/x/text/cases"
)

const (
	LangJA = "JA"
	LangEN = "EN"
)

// Row is one tab-separated line of a glossary file. The Japanese term is
// always the first column and its English translation the second.
type Row []string

func (r Row) column(i int) string {
	if i < len(r) {
		return r[i]
	}
	return ""
}

// MergedRow is a line of the merged glossary.
type MergedRow struct {
	SourceTerm string `yaml:"source_term" db:"source_term"`
	TargetTerm string `yaml:"target_term" db:"target_term"`
	SourceLang string `yaml:"source_lang" db:"source_lang"`
	TargetLang string `yaml:"target_lang" db:"target_lang"`
}

func NewMergedRow(sourceTerm, targetTerm string) MergedRow {
	return MergedRow{
		SourceTerm: sourceTerm,
		TargetTerm: targetTerm,
		SourceLang: LangJA,
		TargetLang: LangEN,
	}
}

// MergedRowOf reads the term pair of any glossary row.
func MergedRowOf(row Row) MergedRow {
	return NewMergedRow(row.column(0), row.column(1))
}

func (r MergedRow) Row() Row {
	return Row{r.SourceTerm, r.TargetTerm, r.SourceLang, r.TargetLang}
}

// Conflict is reported when an internal translation replaces an external
// one that differs from it.
type Conflict struct {
	TermJA   string
	Existing string
	Incoming string
}

type ConflictObserver interface {
	OnConflict(conflict Conflict)
}

// ObserverFunc adapts a function to ConflictObserver.
type ObserverFunc func(conflict Conflict)

func (f ObserverFunc) OnConflict(conflict Conflict) {
	f(conflict)
}

// ConflictReport collects every conflict it observes.
type ConflictReport struct {
	Conflicts []Conflict
}

func (r *ConflictReport) OnConflict(conflict Conflict) {
	r.Conflicts = append(r.Conflicts, conflict)
}

// orderedTerms is a term -> translation map that remembers the order in
// which terms were first inserted.
type orderedTerms struct {
	terms        []string
	translations map[string]string
}

func newOrderedTerms(capacity int) *orderedTerms {
	return &orderedTerms{
		terms:        make([]string, 0, capacity),
		translations: make(map[string]string, capacity),
	}
}

func (m *orderedTerms) get(term string) (string, bool) {
	translation, ok := m.translations[term]
	return translation, ok
}

func (m *orderedTerms) set(term, translation string) {
	if _, ok := m.translations[term]; !ok {
		m.terms = append(m.terms, term)
	}
	m.translations[term] = translation
}

// Merge combines the external and internal glossaries. Both start with a
// header row, which is dropped.
//
// Without an internal glossary the external rows are returned as they are.
// Otherwise external terms are taken first, in order, and each internal
// term is added when it is new or when overwriteExternal is set. Replacing a
// translation that differs ignoring case is reported to observer, which may
// be nil. Terms whose translation ends up empty are left out. The result
// consists of MergedRow rows in first-insertion order.
func Merge(external, internal []Row, overwriteExternal bool, observer ConflictObserver) []Row {
	external = dropHeader(external)
	if internal == nil {
		return append([]Row{}, external...)
	}
	internal = dropHeader(internal)

	fold := cases.Fold()
	merged := newOrderedTerms(len(external) + len(internal))
	for _, row := range external {
		if term := row.column(0); term != "" {
			merged.set(term, row.column(1))
		}
	}
	for _, row := range internal {
		term, incoming := row.column(0), row.column(1)
		if term == "" {
			continue
		}
		existing, exists := merged.get(term)
		if exists && !overwriteExternal {
			continue
		}
		if exists && observer != nil && fold.String(existing) != fold.String(incoming) {
			observer.OnConflict(Conflict{TermJA: term, Existing: existing, Incoming: incoming})
		}
		merged.set(term, incoming)
	}

	rows := make([]Row, 0, len(merged.terms))
	for _, term := range merged.terms {
		translation := merged.translations[term]
		if translation == "" {
			continue
		}
		rows = append(rows, NewMergedRow(term, translation).Row())
	}
	return rows
}

func dropHeader(rows []Row) []Row {
	if len(rows) == 0 {
		return rows
	}
	return rows[1:]
}
