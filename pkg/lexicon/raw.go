package lexicon

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawRecord is one upstream entry after lenient decoding. Upstream editors
// disagree on key names and on whether text is a plain string or an object
// keyed by locale; UnmarshalJSON folds the known spellings together.
type RawRecord struct {
	Gloss           LocaleText
	Context         LocaleText
	TermID          string
	Transliteration string
	Refs            []string
	Terms           []TermVariant
	AltTermIDs      []string
	Category        string
	Domain          string
}

var (
	termIDAliases  = []string{"termId", "strongs", "strong", "Strong", "id", "Id"}
	contextAliases = []string{"context", "definition", "Definition"}
	glossAliases   = []string{"gloss", "Gloss"}
	refAliases     = []string{"refs", "references", "References"}
	altAliases     = []string{"altTermIds", "alt_term_ids"}
	translitAlias  = []string{"transliteration", "Transliteration"}
	categoryAlias  = []string{"category", "Category"}
	domainAlias    = []string{"domain", "Domain"}
)

// UnmarshalJSON implements json.Unmarshaler.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var out RawRecord
	var err error
	if out.Gloss, err = localeField(fields, glossAliases); err != nil {
		return err
	}
	if out.Context, err = localeField(fields, contextAliases); err != nil {
		return err
	}
	if out.TermID, err = stringField(fields, termIDAliases); err != nil {
		return err
	}
	if out.Transliteration, err = stringField(fields, translitAlias); err != nil {
		return err
	}
	if out.Category, err = stringField(fields, categoryAlias); err != nil {
		return err
	}
	if out.Domain, err = stringField(fields, domainAlias); err != nil {
		return err
	}
	if out.Refs, err = listField(fields, refAliases); err != nil {
		return err
	}
	if out.AltTermIDs, err = listField(fields, altAliases); err != nil {
		return err
	}
	if msg, ok := fields["terms"]; ok && !isNull(msg) {
		if err := json.Unmarshal(msg, &out.Terms); err != nil {
			return fmt.Errorf("terms: %w", err)
		}
	}
	*r = out
	return nil
}

// Variants returns the record's term variants. A record with no terms list
// but top-level id, transliteration or refs yields a single variant.
func (r RawRecord) Variants() []TermVariant {
	if len(r.Terms) > 0 {
		out := make([]TermVariant, len(r.Terms))
		for i, v := range r.Terms {
			out[i] = v.Clone()
		}
		return out
	}
	if r.TermID == "" && r.Transliteration == "" && len(r.Refs) == 0 {
		return nil
	}
	return []TermVariant{{
		TermID:          r.TermID,
		Transliteration: r.Transliteration,
		Refs:            append([]string(nil), r.Refs...),
	}}
}

// IsThin reports whether the record has none of gloss, context,
// transliteration or references.
func (r RawRecord) IsThin() bool {
	if !r.Gloss.IsEmpty() || !r.Context.IsEmpty() || r.Transliteration != "" || len(r.Refs) > 0 {
		return false
	}
	for _, v := range r.Terms {
		if v.Transliteration != "" || len(v.Refs) > 0 {
			return false
		}
	}
	return true
}

func isNull(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}

func lookup(fields map[string]json.RawMessage, aliases []string) (string, json.RawMessage, bool) {
	for _, name := range aliases {
		if msg, ok := fields[name]; ok && !isNull(msg) {
			return name, msg, true
		}
	}
	return "", nil, false
}

func localeField(fields map[string]json.RawMessage, aliases []string) (LocaleText, error) {
	name, msg, ok := lookup(fields, aliases)
	if !ok {
		return LocaleText{}, nil
	}
	var plain string
	if err := json.Unmarshal(msg, &plain); err == nil {
		return LocaleText{En: plain}, nil
	}
	var text LocaleText
	if err := json.Unmarshal(msg, &text); err != nil {
		return LocaleText{}, fmt.Errorf("%s: %w", name, err)
	}
	return text, nil
}

// stringField accepts strings and numbers, since upstream ids are sometimes
// written unquoted.
func stringField(fields map[string]json.RawMessage, aliases []string) (string, error) {
	name, msg, ok := lookup(fields, aliases)
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return "", fmt.Errorf("%s: expected string or number", name)
	}
	return n.String(), nil
}

// listField accepts a list of strings or a single string.
func listField(fields map[string]json.RawMessage, aliases []string) ([]string, error) {
	name, msg, ok := lookup(fields, aliases)
	if !ok {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(msg, &list); err == nil {
		return list, nil
	}
	var one string
	if err := json.Unmarshal(msg, &one); err != nil {
		return nil, fmt.Errorf("%s: expected string list", name)
	}
	if one == "" {
		return nil, nil
	}
	return []string{one}, nil
}
