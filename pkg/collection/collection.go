// Package collection reads and writes canonical collection files.
//
// Output is pretty-printed JSON with two-space indentation and sorted keys so
// successive versions diff cleanly. Writes go to a temporary file in the
// destination directory and are renamed into place only after a successful
// sync, so a failed run never leaves a partial file behind.
package collection

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/source"
)

// Load reads a canonical collection.
func Load(path string) (lexicon.Collection, error) {
	c := make(lexicon.Collection)
	if err := readJSON(path, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadOptional reads a canonical collection, treating a missing file as an
// empty collection. It is used for the previously published version, which
// does not exist on the first run.
func LoadOptional(path string) (lexicon.Collection, error) {
	if path == "" {
		return lexicon.Collection{}, nil
	}
	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return lexicon.Collection{}, nil
	}
	return c, err
}

// LoadSpelling reads a merged spelling collection.
func LoadSpelling(path string) (lexicon.SpellingCollection, error) {
	return source.LoadSpelling(path)
}

// LoadSpellingOptional is LoadOptional for spelling collections.
func LoadSpellingOptional(path string) (lexicon.SpellingCollection, error) {
	if path == "" {
		return lexicon.SpellingCollection{}, nil
	}
	c, err := LoadSpelling(path)
	if errors.Is(err, fs.ErrNotExist) {
		return lexicon.SpellingCollection{}, nil
	}
	return c, err
}

// Encode renders v in the canonical on-disk form.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest returns the hex BLAKE3 hash of v's canonical encoding.
func Digest(v any) (string, error) {
	data, err := Encode(v)
	if err != nil {
		return "", err
	}
	return DigestBytes(data), nil
}

// DigestBytes returns the hex BLAKE3 hash of data.
func DigestBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Write encodes v and atomically replaces path with it.
func Write(path string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFile(path, data)
}

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Promote copies the candidate file over the published one atomically and
// returns the digest of the promoted bytes. The candidate is left in place.
func Promote(candidate, published string) (string, error) {
	data, err := ReadCandidate(candidate)
	if err != nil {
		return "", err
	}
	return Publish(data, published)
}

// ReadCandidate reads a candidate file for promotion and checks that it
// holds JSON. Callers that also need the records decode the returned bytes
// so that what they inspect is exactly what Publish writes.
func ReadCandidate(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &source.InputError{Path: path, Err: err}
	}
	if !json.Valid(data) {
		return nil, &source.InputError{Path: path, Err: errors.New("not valid JSON")}
	}
	return data, nil
}

// Publish atomically replaces published with data and returns its digest.
func Publish(data []byte, published string) (string, error) {
	if err := WriteFile(published, data); err != nil {
		return "", err
	}
	return DigestBytes(data), nil
}

// Decode parses a canonical collection held in memory.
func Decode(data []byte) (lexicon.Collection, error) {
	c := make(lexicon.Collection)
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return c, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return &source.InputError{Path: path, Err: err}
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return &source.InputError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	return nil
}
