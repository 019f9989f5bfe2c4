package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/termreg/pkg/collection"
	"github.com/japaniel/termreg/pkg/db"
	"github.com/japaniel/termreg/pkg/merge"
	"github.com/japaniel/termreg/pkg/source"
)

const placesJSON = `{
  "adriatic_sea": {"termId": "X1", "transliteration": "Adria", "refs": ["66027027"], "gloss": {"en": "Adriatic Sea"}},
  "arabia_nt": {"gloss": "Arabia", "strong": "G688", "refs": ["048001017"]},
  "arabia_ot": {"gloss": {"es": "Arabia"}, "strong": "H6152", "refs": ["011010015"]}
}`

const glossaryJSON = `{
  "aaron": {"gloss": "Aaron", "strongs": "H175", "definition": "brother of Moses", "refs": ["002004014"]},
  "thin_one": {}
}`

// assertLedgerMatches checks that the newest publication of path recorded
// one digest per published record, equal to the digest of that record.
func assertLedgerMatches[M ~map[string]R, R any](t *testing.T, ledgerPath, path string, published M) {
	t.Helper()
	want, err := merge.Digests(published)
	require.NoError(t, err)
	conn, err := db.Open(ledgerPath)
	require.NoError(t, err)
	defer conn.Close()
	got, err := db.LatestDigests(conn, path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

type workspace struct {
	dir    string
	config string
}

func (w workspace) path(name string) string { return filepath.Join(w.dir, name) }

func newWorkspace(t *testing.T, places string) workspace {
	t.Helper()
	w := workspace{dir: t.TempDir()}
	require.NoError(t, os.WriteFile(w.path("places.json"), []byte(places), 0o644))
	require.NoError(t, os.WriteFile(w.path("glossary.json"), []byte(glossaryJSON), 0o644))
	cfg := fmt.Sprintf(`sources:
  - kind: placenames
    path: %s
  - kind: glossary
    path: %s
priority: [placenames, glossary]
output: %s
published: %s
ledger: %s
log:
  mode: prod
`, w.path("places.json"), w.path("glossary.json"), w.path("out/registry.json"), w.path("published/registry.json"), w.path("ledger.db"))
	w.config = w.path("termreg.yaml")
	require.NoError(t, os.WriteFile(w.config, []byte(cfg), 0o644))
	return w
}

func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--config", w.config}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCLI_MergeExportImportPromote(t *testing.T) {
	w := newWorkspace(t, placesJSON)

	out, err := w.run(t, "merge")
	require.NoError(t, err)
	assert.Contains(t, out, "added: 4, changed: 0, removed: 0, warnings: 1")
	assert.Contains(t, out, "thin_one (glossary)")

	records, err := collection.Load(w.path("out/registry.json"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aaron", "adriatic_sea", "arabia_nt", "thin_one"}, records.Keys())
	assert.Equal(t, "{AdriaticSea}", records["adriatic_sea"].LblTemplate)
	assert.Equal(t, []string{"arabia_nt", "arabia_ot"}, records["arabia_nt"].SourceKeys)

	out, err = w.run(t, "export", "--field", "gloss")
	require.NoError(t, err)
	assert.Contains(t, out, "key\ten\tes\tfr\tne\n")
	assert.Contains(t, out, "arabia_nt\tArabia\tArabia\t\t\n")

	table := "key\ten\tes\tfr\tne\naaron\t\tAarón\t\t\nghost\tGhost\t\t\t\n"
	require.NoError(t, os.WriteFile(w.path("edits.tsv"), []byte(table), 0o644))
	out, err = w.run(t, "import", w.path("edits.tsv"))
	require.NoError(t, err)
	assert.Contains(t, out, "warning: unmatched ghost")
	assert.Contains(t, out, "applied 1 rows")
	records, err = collection.Load(w.path("out/registry.json"))
	require.NoError(t, err)
	assert.Equal(t, "Aaron", records["aaron"].Gloss.En)
	assert.Equal(t, "Aarón", records["aaron"].Gloss.Es)

	out, err = w.run(t, "promote")
	require.NoError(t, err)
	assert.Contains(t, out, "publication")
	published, err := collection.Load(w.path("published/registry.json"))
	require.NoError(t, err)
	assertLedgerMatches(t, w.path("ledger.db"), w.path("published/registry.json"), published)

	out, err = w.run(t, "history", "--changes")
	require.NoError(t, err)
	assert.Contains(t, out, "4 records")
	assert.Contains(t, out, "added: 4, changed: 0, removed: 0")

	out, err = w.run(t, "lookup", "--kind", "placenames", "X1", "H6152", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "gloss:           Adriatic Sea")
	assert.Contains(t, out, "refs:            66027027")
	assert.Contains(t, out, "transliteration: \n")

	// The import lives only in the candidate, so a fresh merge reverts it.
	out, err = w.run(t, "merge", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "added: 0, changed: 1, removed: 0")
	assert.Contains(t, out, "aaron")
}

func TestCLI_MergeFailsWithoutWritingOnBadInput(t *testing.T) {
	w := newWorkspace(t, `{"adriatic_sea": {"gloss": `)

	_, err := w.run(t, "merge")
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrFatalInput)

	_, statErr := os.Stat(w.path("out/registry.json"))
	assert.True(t, os.IsNotExist(statErr), "no output may be written")
}

func TestCLI_ImportRejectsWrongHeader(t *testing.T) {
	w := newWorkspace(t, placesJSON)
	_, err := w.run(t, "merge")
	require.NoError(t, err)
	before, err := os.ReadFile(w.path("out/registry.json"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(w.path("bad.tsv"), []byte("key\ten\nx\ty\n"), 0o644))
	_, err = w.run(t, "import", w.path("bad.tsv"))
	require.ErrorIs(t, err, source.ErrFatalInput)

	after, err := os.ReadFile(w.path("out/registry.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCLI_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "termreg.yaml")
	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout, &bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "init"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "wrote "+path)
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestCLI_SpellingPipeline(t *testing.T) {
	dir := t.TempDir()
	p := func(name string) string { return filepath.Join(dir, name) }
	require.NoError(t, os.WriteFile(p("web.json"), []byte(`[{"Id": "G2", "Gloss": "Aaron", "References": ["044007040"], "spell-ENGWEB": "Aaron", "pc-ENGWEB": 100}]`), 0o644))
	require.NoError(t, os.WriteFile(p("blm.json"), []byte(`{"G2": {"Id": "G2", "References": ["042001005"], "spell-SPABLM": "Aarón"}}`), 0o644))
	cfg := fmt.Sprintf(`spelling_sources: [%s, %s]
spelling_output: %s
spelling_published: %s
project_codes: [ENGWEB, SPABLM]
ledger: %s
log:
  mode: prod
`, p("web.json"), p("blm.json"), p("out/spelling.json"), p("published/spelling.json"), p("ledger.db"))
	require.NoError(t, os.WriteFile(p("termreg.yaml"), []byte(cfg), 0o644))
	w := workspace{dir: dir, config: p("termreg.yaml")}

	out, err := w.run(t, "merge")
	require.NoError(t, err)
	assert.Contains(t, out, "added: 1")

	out, err = w.run(t, "export", "--spelling")
	require.NoError(t, err)
	assert.Contains(t, out, "Id\tStrong\tTransliteration\tGloss\tDefinition\tCategory\tDomain\tReferences\tspell-ENGWEB\tpc-ENGWEB\tspell-SPABLM\tpc-SPABLM\n")
	assert.Contains(t, out, "G2\t\t\tAaron\t\t\t\t042001005 044007040\tAaron\t100\tAarón\t\n")

	out, err = w.run(t, "promote", "--spelling")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 records, publication ")
	spellings, err := collection.LoadSpelling(p("published/spelling.json"))
	require.NoError(t, err)
	assertLedgerMatches(t, p("ledger.db"), p("published/spelling.json"), spellings)

	out, err = w.run(t, "lookup", "--kind", "spelling", "G2")
	require.NoError(t, err)
	assert.Contains(t, out, "gloss:           Aaron")
	assert.Contains(t, out, "refs:            042001005 044007040")
}
