package registry

import (
	"github.com/japaniel/termreg/pkg/lexicon"
)

// Spelling is the registry over a merged spelling table. The table is
// monolingual, so every accessor ignores locale.
type Spelling struct {
	byID   map[string]lexicon.SpellingRecord
	misses *misses
}

var _ Lookup = (*Spelling)(nil)

// NewSpelling indexes records by Id. The records are deep-copied.
func NewSpelling(records lexicon.SpellingCollection, opts ...Option) *Spelling {
	s := &Spelling{
		byID:   make(map[string]lexicon.SpellingRecord, len(records)),
		misses: newMisses(lexicon.KindSpelling, opts),
	}
	for key, rec := range records {
		id := rec.ID
		if id == "" {
			id = key
		}
		s.byID[id] = rec.Clone()
	}
	return s
}

func (s *Spelling) Kind() lexicon.SourceKind { return lexicon.KindSpelling }

// Len returns the number of indexed ids.
func (s *Spelling) Len() int { return len(s.byID) }

func (s *Spelling) find(op, termID, locale string) (lexicon.SpellingRecord, bool) {
	rec, ok := s.byID[termID]
	if !ok {
		s.misses.report(op, termID, locale)
	}
	return rec, ok
}

func (s *Spelling) Gloss(termID, locale string) string {
	rec, _ := s.find("gloss", termID, locale)
	return rec.Gloss
}

func (s *Spelling) Definition(termID, locale string) string {
	rec, _ := s.find("definition", termID, locale)
	return rec.Definition
}

func (s *Spelling) Transliteration(termID, locale string) string {
	rec, _ := s.find("transliteration", termID, locale)
	return rec.Transliteration
}

func (s *Spelling) Refs(termID, locale string) []string {
	rec, _ := s.find("refs", termID, locale)
	return copyRefs(rec.References)
}

// Spell returns the project spelling and its percentage for code.
func (s *Spelling) Spell(termID, code string) (spelling, percent string) {
	rec, ok := s.find("spell", termID, code)
	if !ok {
		return "", ""
	}
	return rec.Spellings[code], rec.Percents[code]
}
