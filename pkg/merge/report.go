package merge

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/japaniel/termreg/pkg/collection"
	"github.com/japaniel/termreg/pkg/lexicon"
)

// ChangeReport lists how a new collection differs from the published one.
// It is advisory output for human review before promotion.
type ChangeReport struct {
	Added   []string
	Changed []string
	Removed []string
	// Diffs holds a line diff per changed key when the report is verbose.
	Diffs    map[string]string
	Warnings []Warning
}

// Empty reports whether nothing was added, changed or removed.
func (r *ChangeReport) Empty() bool {
	return len(r.Added) == 0 && len(r.Changed) == 0 && len(r.Removed) == 0
}

// Digests returns the digest of each record's canonical encoding.
func Digests[M ~map[string]R, R any](m M) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for key, rec := range m {
		d, err := collection.Digest(rec)
		if err != nil {
			return nil, fmt.Errorf("digest %s: %w", key, err)
		}
		out[key] = d
	}
	return out, nil
}

// Diff compares two collections key by key using record digests. With
// verbose set, changed keys also get a line diff of their encodings.
func Diff[M ~map[string]R, R any](prior, next M, verbose bool) (*ChangeReport, error) {
	before, err := Digests(prior)
	if err != nil {
		return nil, err
	}
	after, err := Digests(next)
	if err != nil {
		return nil, err
	}
	r := DiffDigests(before, after)
	if !verbose {
		return r, nil
	}
	for _, key := range r.Changed {
		a, err := collection.Encode(prior[key])
		if err != nil {
			return nil, err
		}
		b, err := collection.Encode(next[key])
		if err != nil {
			return nil, err
		}
		if r.Diffs == nil {
			r.Diffs = make(map[string]string)
		}
		r.Diffs[key] = lineDiff(string(a), string(b))
	}
	return r, nil
}

// DiffDigests builds a report from per-key digests, e.g. those recorded in
// the publication ledger.
func DiffDigests(prior, next map[string]string) *ChangeReport {
	r := &ChangeReport{}
	for _, key := range lexicon.SortedKeys(next) {
		old, ok := prior[key]
		switch {
		case !ok:
			r.Added = append(r.Added, key)
		case old != next[key]:
			r.Changed = append(r.Changed, key)
		}
	}
	for _, key := range lexicon.SortedKeys(prior) {
		if _, ok := next[key]; !ok {
			r.Removed = append(r.Removed, key)
		}
	}
	return r
}

func lineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(strings.TrimSuffix(line, "\n"))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// WriteText renders the report for operators.
func (r *ChangeReport) WriteText(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "added: %d, changed: %d, removed: %d, warnings: %d\n",
		len(r.Added), len(r.Changed), len(r.Removed), len(r.Warnings))
	section := func(title string, keys []string) {
		if len(keys) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s:\n", title)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s\n", k)
			if d, ok := r.Diffs[k]; ok && title == "changed" {
				for _, line := range strings.Split(strings.TrimSuffix(d, "\n"), "\n") {
					fmt.Fprintf(&sb, "      %s\n", line)
				}
			}
		}
	}
	section("added", r.Added)
	section("changed", r.Changed)
	section("removed", r.Removed)

	var thin, other []string
	for _, w := range r.Warnings {
		if w.Kind == WarnThin {
			thin = append(thin, fmt.Sprintf("%s (%s)", w.Key, w.Source))
		} else {
			other = append(other, w.String())
		}
	}
	section("thin", thin)
	section("warnings", other)

	_, err := io.WriteString(w, sb.String())
	return err
}
