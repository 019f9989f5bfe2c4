// Package lexicon holds the record shapes shared by the merge, export and
// lookup stages.
package lexicon

import (
	"fmt"
	"slices"
)

// SourceKind tags which upstream collection a record came from.
type SourceKind string

const (
	KindGlossary   SourceKind = "glossary"
	KindPlacenames SourceKind = "placenames"
	KindSpelling   SourceKind = "spelling"
)

// ParseSourceKind validates a configured kind name.
func ParseSourceKind(s string) (SourceKind, error) {
	switch k := SourceKind(s); k {
	case KindGlossary, KindPlacenames, KindSpelling:
		return k, nil
	}
	return "", fmt.Errorf("unknown source kind %q", s)
}

// DefaultLocale is used when a caller passes an empty locale.
const DefaultLocale = "en"

// Locales is the fixed column order for locale-keyed text.
var Locales = []string{"en", "es", "fr", "ne"}

// LocaleText maps the recognized locale codes to translated strings.
// Absent and null entries both decode to "".
type LocaleText struct {
	En string `json:"en,omitempty"`
	Es string `json:"es,omitempty"`
	Fr string `json:"fr,omitempty"`
	Ne string `json:"ne,omitempty"`
}

// Get returns the text for locale ("" means en). Unknown locales yield "".
func (t LocaleText) Get(locale string) string {
	switch locale {
	case "", "en":
		return t.En
	case "es":
		return t.Es
	case "fr":
		return t.Fr
	case "ne":
		return t.Ne
	}
	return ""
}

// Set stores text for locale. It reports false for an unknown locale.
func (t *LocaleText) Set(locale, text string) bool {
	switch locale {
	case "", "en":
		t.En = text
	case "es":
		t.Es = text
	case "fr":
		t.Fr = text
	case "ne":
		t.Ne = text
	default:
		return false
	}
	return true
}

// IsEmpty reports whether every locale is blank.
func (t LocaleText) IsEmpty() bool {
	return t == LocaleText{}
}

// Overlay copies every non-empty locale of other onto t. A populated entry
// is never replaced by an empty one.
func (t *LocaleText) Overlay(other LocaleText) {
	for _, loc := range Locales {
		if v := other.Get(loc); v != "" {
			t.Set(loc, v)
		}
	}
}

// TermVariant is one transliteration/id/reference triple under an entry.
type TermVariant struct {
	TermID          string   `json:"termId"`
	Transliteration string   `json:"transliteration,omitempty"`
	Refs            []string `json:"refs"`
}

// Clone returns a deep copy.
func (v TermVariant) Clone() TermVariant {
	v.Refs = slices.Clone(v.Refs)
	return v
}

// UnifiedRecord is the merged shape of a glossary term or place name.
type UnifiedRecord struct {
	LblTemplate string        `json:"lblTemplate"`
	Gloss       LocaleText    `json:"gloss"`
	Context     LocaleText    `json:"context"`
	Category    string        `json:"category,omitempty"`
	Domain      string        `json:"domain,omitempty"`
	Terms       []TermVariant `json:"terms"`
	AltTermIDs  []string      `json:"altTermIds,omitempty"`
	// SourceKeys lists every raw key folded into this record.
	SourceKeys []string `json:"sourceKeys,omitempty"`
}

// Clone returns a deep copy.
func (r UnifiedRecord) Clone() UnifiedRecord {
	out := r
	out.Terms = make([]TermVariant, len(r.Terms))
	for i, v := range r.Terms {
		out.Terms[i] = v.Clone()
	}
	out.AltTermIDs = slices.Clone(r.AltTermIDs)
	out.SourceKeys = slices.Clone(r.SourceKeys)
	return out
}

// HasRefs reports whether any variant carries a reference.
func (r UnifiedRecord) HasRefs() bool {
	for _, v := range r.Terms {
		if len(v.Refs) > 0 {
			return true
		}
	}
	return false
}

// Collection is a canonical collection keyed by raw key.
type Collection map[string]UnifiedRecord

// Keys returns the collection keys in ascending order.
func (c Collection) Keys() []string { return SortedKeys(c) }

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// AddSet inserts values into a sorted, duplicate-free slice.
func AddSet(set []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		i, found := slices.BinarySearch(set, v)
		if !found {
			set = slices.Insert(set, i, v)
		}
	}
	return set
}
