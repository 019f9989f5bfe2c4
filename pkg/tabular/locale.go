package tabular

import (
	"fmt"

	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/merge"
)

// Field selects which locale-keyed text of a record a gloss table carries.
type Field string

const (
	FieldGloss   Field = "gloss"
	FieldContext Field = "context"
)

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldGloss, FieldContext:
		return f, nil
	}
	return "", fmt.Errorf("unknown table field %q (want gloss or context)", s)
}

func (f Field) get(rec lexicon.UnifiedRecord) lexicon.LocaleText {
	if f == FieldContext {
		return rec.Context
	}
	return rec.Gloss
}

func (f Field) ptr(rec *lexicon.UnifiedRecord) *lexicon.LocaleText {
	if f == FieldContext {
		return &rec.Context
	}
	return &rec.Gloss
}

// LocaleHeader is the fixed header of a gloss table: key, en, es, fr, ne.
func LocaleHeader() []string {
	return append([]string{"key"}, lexicon.Locales...)
}

// LocaleTable builds a gloss table with one row per key in sorted order.
func LocaleTable(texts map[string]lexicon.LocaleText) *Table {
	t := &Table{Header: LocaleHeader()}
	for _, key := range lexicon.SortedKeys(texts) {
		text := texts[key]
		row := make([]string, 0, len(t.Header))
		row = append(row, key)
		for _, loc := range lexicon.Locales {
			row = append(row, text.Get(loc))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ParseLocaleTable reads a gloss table back into locale texts. A repeated
// key is an error.
func ParseLocaleTable(t *Table) (map[string]lexicon.LocaleText, error) {
	if err := t.expectHeader(LocaleHeader()); err != nil {
		return nil, err
	}
	out := make(map[string]lexicon.LocaleText, len(t.Rows))
	for i, row := range t.Rows {
		key := row[0]
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: row %d repeats key %q", ErrMalformed, i+1, key)
		}
		var text lexicon.LocaleText
		for j, loc := range lexicon.Locales {
			text.Set(loc, row[j+1])
		}
		out[key] = text
	}
	return out, nil
}

// ExportField builds a gloss table from one field of every record.
func ExportField(records lexicon.Collection, field Field) *Table {
	texts := make(map[string]lexicon.LocaleText, len(records))
	for key, rec := range records {
		texts[key] = field.get(rec)
	}
	return LocaleTable(texts)
}

// ApplyField merges a translator-edited gloss table into a copy of records.
// Non-empty cells replace the stored text; blank cells leave it alone. Rows
// whose key is not in records are skipped and reported.
func ApplyField(records lexicon.Collection, t *Table, field Field) (lexicon.Collection, []merge.Warning, error) {
	texts, err := ParseLocaleTable(t)
	if err != nil {
		return nil, nil, err
	}
	out := make(lexicon.Collection, len(records))
	for key, rec := range records {
		out[key] = rec.Clone()
	}
	var warnings []merge.Warning
	for _, key := range lexicon.SortedKeys(texts) {
		rec, ok := out[key]
		if !ok {
			warnings = append(warnings, merge.Warning{
				Kind:    merge.WarnUnmatched,
				Key:     key,
				Message: fmt.Sprintf("%s row has no matching record", field),
			})
			continue
		}
		field.ptr(&rec).Overlay(texts[key])
		out[key] = rec
	}
	return out, warnings, nil
}
