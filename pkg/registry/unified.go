package registry

import (
	"github.com/japaniel/termreg/pkg/lexicon"
)

// entry points at one record and, for variant ids, one of its variants.
type entry struct {
	record  *lexicon.UnifiedRecord
	variant int
}

// Unified is the registry over glossary and place-name collections.
type Unified struct {
	kind   lexicon.SourceKind
	byID   map[string]entry
	misses *misses
}

var _ Lookup = (*Unified)(nil)

// NewUnified indexes every variant termId of every record, plus each record's
// altTermIds. Records are visited in sorted key order and the first claim on
// an id wins; variant ids take precedence over alternate ids. An alternate id
// resolves to the record's first variant. The records are deep-copied.
func NewUnified(kind lexicon.SourceKind, records lexicon.Collection, opts ...Option) *Unified {
	u := &Unified{
		kind:   kind,
		byID:   make(map[string]entry),
		misses: newMisses(kind, opts),
	}
	keys := records.Keys()
	owned := make([]lexicon.UnifiedRecord, len(keys))
	for i, key := range keys {
		owned[i] = records[key].Clone()
	}
	for i := range owned {
		for j, v := range owned[i].Terms {
			if v.TermID == "" {
				continue
			}
			if _, taken := u.byID[v.TermID]; !taken {
				u.byID[v.TermID] = entry{record: &owned[i], variant: j}
			}
		}
	}
	for i := range owned {
		for _, alt := range owned[i].AltTermIDs {
			if _, taken := u.byID[alt]; !taken {
				u.byID[alt] = entry{record: &owned[i], variant: 0}
			}
		}
	}
	return u
}

func (u *Unified) Kind() lexicon.SourceKind { return u.kind }

// Len returns the number of indexed ids.
func (u *Unified) Len() int { return len(u.byID) }

func (u *Unified) find(op, termID, locale string) (entry, bool) {
	e, ok := u.byID[termID]
	if !ok {
		u.misses.report(op, termID, locale)
	}
	return e, ok
}

func (e entry) termVariant() (lexicon.TermVariant, bool) {
	if e.variant < 0 || e.variant >= len(e.record.Terms) {
		return lexicon.TermVariant{}, false
	}
	return e.record.Terms[e.variant], true
}

func (u *Unified) Gloss(termID, locale string) string {
	e, ok := u.find("gloss", termID, locale)
	if !ok {
		return ""
	}
	return e.record.Gloss.Get(locale)
}

// Definition returns the record's context text.
func (u *Unified) Definition(termID, locale string) string {
	e, ok := u.find("definition", termID, locale)
	if !ok {
		return ""
	}
	return e.record.Context.Get(locale)
}

// Transliteration is locale-independent.
func (u *Unified) Transliteration(termID, locale string) string {
	e, ok := u.find("transliteration", termID, locale)
	if !ok {
		return ""
	}
	v, _ := e.termVariant()
	return v.Transliteration
}

// Refs returns a copy of the variant's references.
func (u *Unified) Refs(termID, locale string) []string {
	e, ok := u.find("refs", termID, locale)
	if !ok {
		return []string{}
	}
	v, _ := e.termVariant()
	return copyRefs(v.Refs)
}
