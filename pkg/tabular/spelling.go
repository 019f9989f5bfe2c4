package tabular

import (
	"fmt"
	"strings"

	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/merge"
)

// SpellingHeader returns the spelling table header for the given project
// codes: the base columns, then one spell-<code>, pc-<code> pair per code in
// the given order. The pairs interleave, so codes A and B give
//
//	... References, spell-A, pc-A, spell-B, pc-B
//
// and never all spell-* columns before all pc-* columns.
func SpellingHeader(codes []string) []string {
	h := append([]string(nil), lexicon.SpellingBaseColumns...)
	for _, code := range codes {
		h = append(h, lexicon.SpellingColumn(code), lexicon.PercentColumn(code))
	}
	return h
}

// SpellingTable builds a spelling table. References are joined with single
// spaces into one column; spellings for codes not listed are not exported.
func SpellingTable(records lexicon.SpellingCollection, codes []string) *Table {
	t := &Table{Header: SpellingHeader(codes)}
	for _, id := range records.Keys() {
		rec := records[id]
		row := []string{
			rec.ID, rec.Strong, rec.Transliteration, rec.Gloss, rec.Definition,
			rec.Category, rec.Domain, strings.Join(rec.References, " "),
		}
		for _, code := range codes {
			row = append(row, rec.Spellings[code], rec.Percents[code])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ParseSpellingTable reads a spelling table exported for the same codes.
// Empty spelling and percentage cells are treated as absent.
func ParseSpellingTable(t *Table, codes []string) (lexicon.SpellingCollection, error) {
	if err := t.expectHeader(SpellingHeader(codes)); err != nil {
		return nil, err
	}
	base := len(lexicon.SpellingBaseColumns)
	out := make(lexicon.SpellingCollection, len(t.Rows))
	for i, row := range t.Rows {
		rec := lexicon.SpellingRecord{
			ID:              row[0],
			Strong:          row[1],
			Transliteration: row[2],
			Gloss:           row[3],
			Definition:      row[4],
			Category:        row[5],
			Domain:          row[6],
			References:      strings.Fields(row[7]),
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: row %d has no Id", ErrMalformed, i+1)
		}
		if _, dup := out[rec.ID]; dup {
			return nil, fmt.Errorf("%w: row %d repeats Id %q", ErrMalformed, i+1, rec.ID)
		}
		if rec.References == nil {
			rec.References = []string{}
		}
		for j, code := range codes {
			if v := row[base+2*j]; v != "" {
				if rec.Spellings == nil {
					rec.Spellings = make(map[string]string)
				}
				rec.Spellings[code] = v
			}
			if v := row[base+2*j+1]; v != "" {
				if rec.Percents == nil {
					rec.Percents = make(map[string]string)
				}
				rec.Percents[code] = v
			}
		}
		out[rec.ID] = rec
	}
	return out, nil
}

// ApplySpelling merges an edited spelling table into a copy of records.
// Non-empty cells replace stored values and references are unioned. Rows
// whose Id is not in records are skipped and reported.
func ApplySpelling(records lexicon.SpellingCollection, t *Table, codes []string) (lexicon.SpellingCollection, []merge.Warning, error) {
	edits, err := ParseSpellingTable(t, codes)
	if err != nil {
		return nil, nil, err
	}
	matched := make(lexicon.SpellingCollection, len(edits))
	var warnings []merge.Warning
	for _, id := range edits.Keys() {
		if _, ok := records[id]; !ok {
			warnings = append(warnings, merge.Warning{
				Kind:    merge.WarnUnmatched,
				Source:  lexicon.KindSpelling,
				Key:     id,
				Message: "spelling row has no matching record",
			})
			continue
		}
		matched[id] = edits[id]
	}
	res := merge.MergeSpellings([]lexicon.SpellingCollection{matched, records})
	return res.Records, warnings, nil
}
