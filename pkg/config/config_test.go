package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/termreg/pkg/lexicon"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termreg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - kind: glossary
    path: in/glossary.json
  - kind: placenames
    path: in/places.json
priority: [glossary, placenames]
output: out/terms.json
project_codes: [ENGWEB, SPABLM]
log:
  mode: prod
report:
  verbose: true
`)
	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, []SourceConfig{
		{Kind: "glossary", Path: "in/glossary.json"},
		{Kind: "placenames", Path: "in/places.json"},
	}, cfg.Sources)
	assert.Equal(t, []string{"glossary", "placenames"}, cfg.Priority)
	assert.Equal(t, "out/terms.json", cfg.Output)
	assert.Equal(t, "published/registry.json", cfg.Published)
	assert.Equal(t, []string{"ENGWEB", "SPABLM"}, cfg.ProjectCodes)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "prod", cfg.Log.Mode)
	assert.True(t, cfg.Report.Verbose)
	require.NoError(t, cfg.Validate())

	kinds, err := cfg.PriorityKinds()
	require.NoError(t, err)
	assert.Equal(t, []lexicon.SourceKind{lexicon.KindGlossary, lexicon.KindPlacenames}, kinds)
	assert.Equal(t, lexicon.KindPlacenames, cfg.SourceSpecs()[1].Kind)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")
	t.Setenv("TERMREG_WORKERS", "8")
	t.Setenv("TERMREG_LOG_MODE", "prod")
	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "prod", cfg.Log.Mode)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, used, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, Defaults().Output, cfg.Output)
	assert.Equal(t, Defaults().Priority, cfg.Priority)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Defaults()
		c.Sources = []SourceConfig{{Kind: "placenames", Path: "in/p.json"}}
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown kind", func(c *Config) { c.Sources[0].Kind = "maps" }, "unknown source kind"},
		{"spelling in sources", func(c *Config) { c.Sources[0].Kind = "spelling" }, "spelling_sources"},
		{"kind not prioritized", func(c *Config) { c.Priority = []string{"glossary"} }, "missing from priority"},
		{"duplicate priority", func(c *Config) { c.Priority = []string{"placenames", "placenames"} }, "listed twice"},
		{"missing path", func(c *Config) { c.Sources[0].Path = "" }, "path is required"},
		{"output equals published", func(c *Config) { c.Published = "./" + c.Output }, "differ from the published"},
		{"output overwrites input", func(c *Config) { c.Output = "in/p.json" }, "overwrite input"},
		{"duplicate code", func(c *Config) { c.ProjectCodes = []string{"A", "A"} }, "listed twice"},
		{"blank code", func(c *Config) { c.ProjectCodes = []string{" "} }, "invalid code"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"spelling output missing", func(c *Config) {
			c.SpellingSources = []string{"s.json"}
			c.SpellingOutput = ""
		}, "spelling_output is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "termreg.yaml")
	require.NoError(t, WriteDefault(path))
	assert.Error(t, WriteDefault(path), "existing file must not be replaced")

	cfg, _, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Sources, 2)
	assert.Equal(t, Defaults().Ledger, cfg.Ledger)
}
