// Package tabular converts canonical collections to and from the flat,
// tab-separated tables handed to translators.
//
// Cells are single-line: Escape replaces tabs with a space, newlines with the
// two characters `\n`, and drops carriage returns. There is no unescape, so
// multi-line text does not survive a round trip; everything else does.
package tabular

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/japaniel/termreg/pkg/collection"
	"github.com/japaniel/termreg/pkg/source"
)

// ErrMalformed marks a table whose header or column counts are wrong.
var ErrMalformed = errors.New("malformed table")

var cellEscaper = strings.NewReplacer("\r", "", "\t", " ", "\n", `\n`)

// Escape makes s safe for a single TSV cell.
func Escape(s string) string {
	return cellEscaper.Replace(s)
}

// Table is a header row plus data rows of the same width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Validate checks that every row has the header's column count.
func (t *Table) Validate() error {
	if len(t.Header) == 0 {
		return fmt.Errorf("%w: empty header", ErrMalformed)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return fmt.Errorf("%w: row %d has %d columns, header has %d", ErrMalformed, i+1, len(row), len(t.Header))
		}
	}
	return nil
}

// expectHeader checks the header against the schema's fixed column order.
func (t *Table) expectHeader(want []string) error {
	if !slices.Equal(t.Header, want) {
		return fmt.Errorf("%w: header %q, want %q", ErrMalformed, t.Header, want)
	}
	return t.Validate()
}

// Write emits the header and rows, escaping every cell.
func (t *Table) Write(w io.Writer) error {
	if err := t.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	writeRow := func(cells []string) error {
		for i, c := range cells {
			if i > 0 {
				if err := bw.WriteByte('\t'); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(Escape(c)); err != nil {
				return err
			}
		}
		return bw.WriteByte('\n')
	}
	if err := writeRow(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String renders the table, mainly for tests and previews.
func (t *Table) String() string {
	var sb strings.Builder
	if err := t.Write(&sb); err != nil {
		return ""
	}
	return sb.String()
}

// Read parses a TSV table. A trailing "\r" on each line (spreadsheet
// exports) is ignored, as are blank lines at the end of input.
func Read(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMalformed)
	}

	t := &Table{Header: strings.Split(lines[0], "\t")}
	for _, line := range lines[1:] {
		t.Rows = append(t.Rows, strings.Split(line, "\t"))
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadFile parses a TSV file. Failures are fatal input errors.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &source.InputError{Path: path, Err: err}
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, &source.InputError{Path: path, Err: err}
	}
	return t, nil
}

// WriteFile atomically writes the table to path.
func WriteFile(path string, t *Table) error {
	var sb strings.Builder
	if err := t.Write(&sb); err != nil {
		return err
	}
	return collection.WriteFile(path, []byte(sb.String()))
}
