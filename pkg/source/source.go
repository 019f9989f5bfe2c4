// Package source reads raw upstream collections from disk.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/japaniel/termreg/pkg/lexicon"
)

// ErrFatalInput marks a missing or unparsable input file. A run that sees it
// must stop before any output is written.
var ErrFatalInput = errors.New("fatal input error")

// InputError describes which file failed and why.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() []error { return []error{ErrFatalInput, e.Err} }

// Spec names one configured input file.
type Spec struct {
	Kind lexicon.SourceKind
	Path string
}

// Raw is one loaded glossary or gazetteer collection.
type Raw struct {
	Spec    Spec
	Records map[string]lexicon.RawRecord
}

// LoadRaw reads a JSON object mapping raw keys to records.
func LoadRaw(spec Spec) (*Raw, error) {
	records := make(map[string]lexicon.RawRecord)
	if err := decodeFile(spec.Path, &records); err != nil {
		return nil, err
	}
	return &Raw{Spec: spec, Records: records}, nil
}

// LoadSpelling reads a spelling table. Both the keyed object form
// {"G123": {...}} and a bare array of rows are accepted; array rows are
// keyed by their Id.
func LoadSpelling(path string) (lexicon.SpellingCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	c, err := ParseSpelling(data)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	return c, nil
}

// ParseSpelling decodes a spelling table held in memory. The shape is chosen
// by the first non-space byte, so a bad field in an object-form file is
// reported as such rather than as a failed array decode.
func ParseSpelling(data []byte) (lexicon.SpellingCollection, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, errors.New("parse: empty spelling table")
	}
	switch trimmed[0] {
	case '{':
		keyed := make(lexicon.SpellingCollection)
		if err := json.Unmarshal(data, &keyed); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		return keyed, nil
	case '[':
		var rows []lexicon.SpellingRecord
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		out := make(lexicon.SpellingCollection, len(rows))
		for i, r := range rows {
			if r.ID == "" {
				return nil, fmt.Errorf("row %d has no Id", i)
			}
			out[r.ID] = r
		}
		return out, nil
	default:
		return nil, fmt.Errorf("parse: spelling table must be a JSON object or array, got %q", trimmed[0])
	}
}

func decodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return &InputError{Path: path, Err: err}
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(v); err != nil {
		return &InputError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	return nil
}
