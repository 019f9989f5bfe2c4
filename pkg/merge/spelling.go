package merge

import (
	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/refsort"
)

// SpellingResult is the output of MergeSpellings.
type SpellingResult struct {
	Records  lexicon.SpellingCollection
	Warnings []Warning
}

// MergeSpellings combines per-project spelling tables, highest priority
// first. Rows match on exact Id. Non-empty fields of a higher-priority table
// replace lower ones, per-project spellings and percentages are merged code
// by code, and references are unioned and sorted.
func MergeSpellings(tables []lexicon.SpellingCollection) *SpellingResult {
	res := &SpellingResult{Records: make(lexicon.SpellingCollection)}
	for i := len(tables) - 1; i >= 0; i-- {
		for _, id := range lexicon.SortedKeys(tables[i]) {
			src := tables[i][id]
			if src.Gloss == "" && src.Definition == "" && src.Transliteration == "" && len(src.References) == 0 {
				res.Warnings = append(res.Warnings, Warning{
					Kind:    WarnThin,
					Source:  lexicon.KindSpelling,
					Key:     id,
					Message: "no gloss, definition, transliteration or references",
				})
			}
			dst, ok := res.Records[id]
			if !ok {
				dst = lexicon.SpellingRecord{ID: id, References: []string{}}
			}
			overlaySpelling(&dst, src)
			res.Records[id] = dst
		}
	}
	for id, rec := range res.Records {
		refsort.SortSpelling(&rec)
		res.Records[id] = rec
	}
	return res
}

func overlaySpelling(dst *lexicon.SpellingRecord, src lexicon.SpellingRecord) {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&dst.Strong, src.Strong},
		{&dst.Transliteration, src.Transliteration},
		{&dst.Gloss, src.Gloss},
		{&dst.Definition, src.Definition},
		{&dst.Category, src.Category},
		{&dst.Domain, src.Domain},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	dst.References = unionRefs(dst.References, src.References)
	dst.Spellings = overlayCodes(dst.Spellings, src.Spellings)
	dst.Percents = overlayCodes(dst.Percents, src.Percents)
}

func overlayCodes(dst, src map[string]string) map[string]string {
	for code, v := range src {
		if v == "" {
			continue
		}
		if dst == nil {
			dst = make(map[string]string)
		}
		dst[code] = v
	}
	return dst
}
