// Package refsort orders scripture references inside records.
//
// References are compared as plain strings. Upstream producers are expected
// to write them in a zero-padded form (e.g. "044027027") where string order
// and canonical order agree; this package does not rewrite reference text.
package refsort

import (
	"slices"
	"strings"

	"github.com/japaniel/termreg/pkg/lexicon"
)

// SortTermRefs sorts each variant's refs ascending, then orders the variants
// by their lowest reference. Variants without references go last. Equal
// keys keep their input order. The record is modified in place; applying
// the sort twice is the same as applying it once.
func SortTermRefs(rec *lexicon.UnifiedRecord) {
	for i := range rec.Terms {
		slices.Sort(rec.Terms[i].Refs)
	}
	slices.SortStableFunc(rec.Terms, CompareVariants)
}

// CompareVariants orders two variants by first reference, empty last.
// Two variants without references compare equal.
func CompareVariants(a, b lexicon.TermVariant) int {
	switch {
	case len(a.Refs) == 0 && len(b.Refs) == 0:
		return 0
	case len(a.Refs) == 0:
		return 1
	case len(b.Refs) == 0:
		return -1
	}
	return strings.Compare(a.Refs[0], b.Refs[0])
}

// SortCollection applies SortTermRefs to every record of c.
func SortCollection(c lexicon.Collection) {
	for k, rec := range c {
		SortTermRefs(&rec)
		c[k] = rec
	}
}

// SortSpelling sorts a spelling record's references.
func SortSpelling(rec *lexicon.SpellingRecord) {
	slices.Sort(rec.References)
}
