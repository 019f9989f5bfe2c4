package merge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/termreg/pkg/lexicon"
)

func TestDiff(t *testing.T) {
	prior := lexicon.Collection{
		"bethel": {LblTemplate: "{Bethel}", Gloss: lexicon.LocaleText{En: "Bethel"}},
		"gilgal": {LblTemplate: "{Gilgal}"},
		"shiloh": {LblTemplate: "{Shiloh}", Gloss: lexicon.LocaleText{En: "Shiloh"}},
	}
	next := lexicon.Collection{
		"bethel": {LblTemplate: "{Bethel}", Gloss: lexicon.LocaleText{En: "Bethel"}},
		"shiloh": {LblTemplate: "{Shiloh}", Gloss: lexicon.LocaleText{En: "Shiloh", Es: "Silo"}},
		"mizpah": {LblTemplate: "{Mizpah}"},
	}

	r, err := Diff(prior, next, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"mizpah"}, r.Added)
	assert.Equal(t, []string{"shiloh"}, r.Changed)
	assert.Equal(t, []string{"gilgal"}, r.Removed)
	assert.False(t, r.Empty())
	require.Contains(t, r.Diffs, "shiloh")
	assert.Contains(t, r.Diffs["shiloh"], `+ `)
	assert.Contains(t, r.Diffs["shiloh"], `"es": "Silo"`)
}

func TestDiff_Unchanged(t *testing.T) {
	c := lexicon.Collection{"bethel": {LblTemplate: "{Bethel}"}}
	r, err := Diff(c, c, false)
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.Nil(t, r.Diffs)
}

func TestChangeReport_WriteText(t *testing.T) {
	r := &ChangeReport{
		Added:   []string{"mizpah"},
		Changed: []string{"shiloh"},
		Diffs:   map[string]string{"shiloh": "- a\n+ b\n"},
		Warnings: []Warning{
			{Kind: WarnThin, Source: lexicon.KindGlossary, Key: "zoar"},
			{Kind: WarnUnmatched, Key: "nowhere", Message: "key not in collection"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "added: 1, changed: 1, removed: 0, warnings: 2")
	assert.Contains(t, out, "\nadded:\n  mizpah\n")
	assert.Contains(t, out, "  shiloh\n      - a\n      + b\n")
	assert.Contains(t, out, "\nthin:\n  zoar (glossary)\n")
	assert.Contains(t, out, "unmatched nowhere: key not in collection")
	assert.NotContains(t, out, "removed:\n")
}
