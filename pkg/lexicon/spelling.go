package lexicon

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	spellPrefix   = "spell-"
	percentPrefix = "pc-"
)

// SpellingBaseColumns is the fixed field prefix of a spelling row.
var SpellingBaseColumns = []string{
	"Id", "Strong", "Transliteration", "Gloss", "Definition", "Category", "Domain", "References",
}

// SpellingColumn returns the spelling column name for a project code.
func SpellingColumn(code string) string { return spellPrefix + code }

// PercentColumn returns the percentage column name for a project code.
func PercentColumn(code string) string { return percentPrefix + code }

// SpellingRecord is one row of a per-project spelling table. Spellings and
// Percents are keyed by project code; an empty value is the same as absent.
type SpellingRecord struct {
	ID              string
	Strong          string
	Transliteration string
	Gloss           string
	Definition      string
	Category        string
	Domain          string
	References      []string
	Spellings       map[string]string
	Percents        map[string]string
}

// Clone returns a deep copy.
func (s SpellingRecord) Clone() SpellingRecord {
	out := s
	out.References = slices.Clone(s.References)
	out.Spellings = maps.Clone(s.Spellings)
	out.Percents = maps.Clone(s.Percents)
	return out
}

// Codes returns every project code that has a spelling or percentage, sorted.
func (s SpellingRecord) Codes() []string {
	var codes []string
	for c := range s.Spellings {
		codes = AddSet(codes, c)
	}
	for c := range s.Percents {
		codes = AddSet(codes, c)
	}
	return codes
}

// MarshalJSON writes the upstream flat layout.
func (s SpellingRecord) MarshalJSON() ([]byte, error) {
	flat := map[string]any{
		"Id":              s.ID,
		"Strong":          s.Strong,
		"Transliteration": s.Transliteration,
		"Gloss":           s.Gloss,
		"Definition":      s.Definition,
		"Category":        s.Category,
		"Domain":          s.Domain,
		"References":      nonNil(s.References),
	}
	for code, v := range s.Spellings {
		if v != "" {
			flat[SpellingColumn(code)] = v
		}
	}
	for code, v := range s.Percents {
		if v != "" {
			flat[PercentColumn(code)] = v
		}
	}
	return json.Marshal(flat)
}

// UnmarshalJSON reads the upstream flat layout. Percentages may be numbers.
func (s *SpellingRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var out SpellingRecord
	scalars := []struct {
		name string
		dst  *string
	}{
		{"Id", &out.ID},
		{"Strong", &out.Strong},
		{"Transliteration", &out.Transliteration},
		{"Gloss", &out.Gloss},
		{"Definition", &out.Definition},
		{"Category", &out.Category},
		{"Domain", &out.Domain},
	}
	for _, f := range scalars {
		v, err := stringField(fields, []string{f.name})
		if err != nil {
			return err
		}
		*f.dst = v
	}
	refs, err := listField(fields, []string{"References"})
	if err != nil {
		return err
	}
	out.References = refs

	for name := range fields {
		var code string
		var dst *map[string]string
		switch {
		case strings.HasPrefix(name, spellPrefix):
			code, dst = strings.TrimPrefix(name, spellPrefix), &out.Spellings
		case strings.HasPrefix(name, percentPrefix):
			code, dst = strings.TrimPrefix(name, percentPrefix), &out.Percents
		default:
			continue
		}
		v, err := stringField(fields, []string{name})
		if err != nil {
			return fmt.Errorf("spelling %s: %w", out.ID, err)
		}
		if v == "" {
			continue
		}
		if *dst == nil {
			*dst = make(map[string]string)
		}
		(*dst)[code] = v
	}
	*s = out
	return nil
}

// SpellingCollection is a merged spelling table keyed by Id.
type SpellingCollection map[string]SpellingRecord

// Keys returns the collection keys in ascending order.
func (c SpellingCollection) Keys() []string { return SortedKeys(c) }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
