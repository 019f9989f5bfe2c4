package refsort

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/japaniel/termreg/pkg/lexicon"
)

func TestSortTermRefs_OrdersVariantsByLowestRef(t *testing.T) {
	rec := lexicon.UnifiedRecord{Terms: []lexicon.TermVariant{
		{TermID: "empty-1"},
		{TermID: "late", Refs: []string{"044027027", "044021001"}},
		{TermID: "empty-2", Refs: []string{}},
		{TermID: "early", Refs: []string{"040002001"}},
	}}

	SortTermRefs(&rec)

	ids := make([]string, len(rec.Terms))
	for i, v := range rec.Terms {
		ids[i] = v.TermID
	}
	assert.Equal(t, []string{"early", "late", "empty-1", "empty-2"}, ids)
	assert.Equal(t, []string{"044021001", "044027027"}, rec.Terms[1].Refs)
}

func TestSortTermRefs_TiesKeepInsertionOrder(t *testing.T) {
	rec := lexicon.UnifiedRecord{Terms: []lexicon.TermVariant{
		{TermID: "b", Refs: []string{"001001001"}},
		{TermID: "a", Refs: []string{"001001001", "002001001"}},
	}}
	SortTermRefs(&rec)
	assert.Equal(t, "b", rec.Terms[0].TermID)
	assert.Equal(t, "a", rec.Terms[1].TermID)
}

func TestSortCollection(t *testing.T) {
	c := lexicon.Collection{
		"x": {Terms: []lexicon.TermVariant{{TermID: "1", Refs: []string{"2", "1"}}}},
	}
	SortCollection(c)
	require.Equal(t, []string{"1", "2"}, c["x"].Terms[0].Refs)
}

func variantGen() *rapid.Generator[lexicon.TermVariant] {
	return rapid.Custom(func(t *rapid.T) lexicon.TermVariant {
		return lexicon.TermVariant{
			TermID: rapid.StringMatching(`[A-Z][0-9]{1,3}`).Draw(t, "termId"),
			Refs:   rapid.SliceOfN(rapid.StringMatching(`0[0-6][0-9]{7}`), 0, 5).Draw(t, "refs"),
		}
	})
}

func TestSortTermRefs_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		terms := rapid.SliceOfN(variantGen(), 0, 8).Draw(rt, "terms")
		rec := lexicon.UnifiedRecord{Terms: terms}
		input := rec.Clone()

		SortTermRefs(&rec)

		seenEmpty := false
		for _, v := range rec.Terms {
			if !slices.IsSorted(v.Refs) {
				rt.Fatalf("refs not sorted: %v", v.Refs)
			}
			if len(v.Refs) == 0 {
				seenEmpty = true
			} else if seenEmpty {
				rt.Fatalf("variant with refs after an empty one: %+v", rec.Terms)
			}
		}

		// Empty-ref variants keep their relative input order.
		var wantEmpty, gotEmpty []string
		for _, v := range input.Terms {
			if len(v.Refs) == 0 {
				wantEmpty = append(wantEmpty, v.TermID)
			}
		}
		for _, v := range rec.Terms {
			if len(v.Refs) == 0 {
				gotEmpty = append(gotEmpty, v.TermID)
			}
		}
		if !slices.Equal(wantEmpty, gotEmpty) {
			rt.Fatalf("empty variants reordered: want %v got %v", wantEmpty, gotEmpty)
		}

		again := rec.Clone()
		SortTermRefs(&again)
		if !slices.EqualFunc(rec.Terms, again.Terms, func(a, b lexicon.TermVariant) bool {
			return a.TermID == b.TermID && slices.Equal(a.Refs, b.Refs)
		}) {
			rt.Fatalf("second sort changed the record")
		}
	})
}
