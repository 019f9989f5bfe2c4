package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/termreg/pkg/lexicon"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRaw(t *testing.T) {
	path := writeFile(t, "places.json", `{
		"arabia_nt": {"gloss": "Arabia", "strong": "G688", "refs": ["048001017"]},
		"sea_great": {"gloss": {"en": "Great Sea", "es": "Mar Grande"}}
	}`)
	raw, err := LoadRaw(Spec{Kind: lexicon.KindPlacenames, Path: path})
	require.NoError(t, err)
	assert.Equal(t, lexicon.KindPlacenames, raw.Spec.Kind)
	require.Len(t, raw.Records, 2)
	assert.Equal(t, "G688", raw.Records["arabia_nt"].TermID)
	assert.Equal(t, "Mar Grande", raw.Records["sea_great"].Gloss.Es)
}

func TestLoadRaw_FatalErrors(t *testing.T) {
	_, err := LoadRaw(Spec{Path: filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorIs(t, err, ErrFatalInput)
	require.ErrorIs(t, err, fs.ErrNotExist)

	bad := writeFile(t, "bad.json", `{"arabia_nt": {"gloss": `)
	_, err = LoadRaw(Spec{Path: bad})
	require.ErrorIs(t, err, ErrFatalInput)

	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, bad, inErr.Path)
}

func TestLoadSpelling_ObjectAndArray(t *testing.T) {
	obj := writeFile(t, "obj.json", `{"G2": {"Id": "G2", "Gloss": "Aaron", "spell-ENGWEB": "Aaron"}}`)
	got, err := LoadSpelling(obj)
	require.NoError(t, err)
	assert.Equal(t, "Aaron", got["G2"].Spellings["ENGWEB"])

	arr := writeFile(t, "arr.json", `[{"Id": "G2", "Gloss": "Aaron"}, {"Id": "G3", "pc-SPABLM": 50}]`)
	got, err = LoadSpelling(arr)
	require.NoError(t, err)
	assert.Equal(t, []string{"G2", "G3"}, got.Keys())
	assert.Equal(t, "50", got["G3"].Percents["SPABLM"])

	noID := writeFile(t, "noid.json", `[{"Gloss": "Aaron"}]`)
	_, err = LoadSpelling(noID)
	require.ErrorIs(t, err, ErrFatalInput)

	garbage := writeFile(t, "garbage.json", `"just a string"`)
	_, err = LoadSpelling(garbage)
	require.ErrorIs(t, err, ErrFatalInput)
}

func TestLoadSpelling_ReportsFieldErrorForObjectForm(t *testing.T) {
	path := writeFile(t, "bad.json", "\n  {\"G2\": {\"Id\": \"G2\", \"Strong\": {}}}")
	_, err := LoadSpelling(path)
	require.ErrorIs(t, err, ErrFatalInput)
	assert.Contains(t, err.Error(), "Strong")
	assert.NotContains(t, err.Error(), "[]lexicon.SpellingRecord")
}

func TestParseSpelling_Shapes(t *testing.T) {
	_, err := ParseSpelling([]byte(`[{"Id": "G2", "References": {}}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "References")

	_, err = ParseSpelling([]byte("   "))
	require.Error(t, err)

	got, err := ParseSpelling([]byte(" {} "))
	require.NoError(t, err)
	assert.Empty(t, got)
}
