// Package config provides configuration types, defaults and loading for termreg.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/source"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "termreg.yaml"

// EnvPrefix prefixes environment overrides, e.g. TERMREG_LOG_MODE=prod.
const EnvPrefix = "TERMREG"

// SourceConfig names one raw input collection.
type SourceConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind"`
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Mode string `mapstructure:"mode" yaml:"mode"` // "dev" (default) or "prod"
}

// ReportConfig controls the change report.
type ReportConfig struct {
	Verbose bool `mapstructure:"verbose" yaml:"verbose"` // include per-key diffs
}

// Config holds all configuration options for termreg.
type Config struct {
	Sources   []SourceConfig `mapstructure:"sources" yaml:"sources"`
	Priority  []string       `mapstructure:"priority" yaml:"priority"` // highest first
	Output    string         `mapstructure:"output" yaml:"output"`
	Published string         `mapstructure:"published" yaml:"published"`

	SpellingSources   []string `mapstructure:"spelling_sources" yaml:"spelling_sources"` // highest first
	SpellingOutput    string   `mapstructure:"spelling_output" yaml:"spelling_output"`
	SpellingPublished string   `mapstructure:"spelling_published" yaml:"spelling_published"`
	ProjectCodes      []string `mapstructure:"project_codes" yaml:"project_codes"`

	Workers int          `mapstructure:"workers" yaml:"workers"`
	Ledger  string       `mapstructure:"ledger" yaml:"ledger"`
	Log     LogConfig    `mapstructure:"log" yaml:"log"`
	Report  ReportConfig `mapstructure:"report" yaml:"report"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Priority:          []string{string(lexicon.KindPlacenames), string(lexicon.KindGlossary)},
		Output:            "out/registry.json",
		Published:         "published/registry.json",
		SpellingOutput:    "out/spelling.json",
		SpellingPublished: "published/spelling.json",
		Workers:           4,
		Ledger:            "termreg.db",
		Log:               LogConfig{Mode: "dev"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("priority", d.Priority)
	v.SetDefault("output", d.Output)
	v.SetDefault("published", d.Published)
	v.SetDefault("spelling_output", d.SpellingOutput)
	v.SetDefault("spelling_published", d.SpellingPublished)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("ledger", d.Ledger)
	v.SetDefault("log.mode", d.Log.Mode)
	v.SetDefault("report.verbose", d.Report.Verbose)
}

// Load reads configuration from path, or from DefaultFile in the working
// directory when path is empty. A missing default file is not an error; a
// missing explicit file is. Environment variables override file values.
func Load(path string) (Config, string, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, "", fmt.Errorf("reading config %s: %w", path, err)
		}
		path = ""
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	return cfg, path, nil
}

// Validate checks the configuration for mistakes that would otherwise surface
// halfway through a run.
func (c Config) Validate() error {
	var errs []error
	priority, err := c.PriorityKinds()
	if err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]bool)
	for i, s := range c.Sources {
		kind, err := lexicon.ParseSourceKind(s.Kind)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("sources[%d]: %w", i, err))
		case kind == lexicon.KindSpelling:
			errs = append(errs, fmt.Errorf("sources[%d]: spelling tables go under spelling_sources", i))
		case !slices.Contains(priority, kind):
			errs = append(errs, fmt.Errorf("sources[%d]: kind %q missing from priority", i, kind))
		case seen[s.Kind]:
			errs = append(errs, fmt.Errorf("sources[%d]: more than one %s source", i, kind))
		}
		seen[s.Kind] = true
		if s.Path == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: path is required", i))
		}
	}
	if len(c.Sources) > 0 {
		errs = append(errs, c.checkOutputs("output", c.Output, c.Published, c.sourcePaths())...)
	}
	if len(c.SpellingSources) > 0 {
		errs = append(errs, c.checkOutputs("spelling_output", c.SpellingOutput, c.SpellingPublished, c.SpellingSources)...)
	}
	codes := make(map[string]bool)
	for _, code := range c.ProjectCodes {
		if strings.TrimSpace(code) == "" || strings.ContainsAny(code, "\t\n") {
			errs = append(errs, fmt.Errorf("project_codes: invalid code %q", code))
		}
		if codes[code] {
			errs = append(errs, fmt.Errorf("project_codes: %q listed twice", code))
		}
		codes[code] = true
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// checkOutputs keeps candidates apart from inputs and from the published file.
func (c Config) checkOutputs(name, output, published string, inputs []string) []error {
	var errs []error
	if output == "" {
		return []error{fmt.Errorf("%s is required", name)}
	}
	if published != "" && filepath.Clean(published) == filepath.Clean(output) {
		errs = append(errs, fmt.Errorf("%s must differ from the published path", name))
	}
	for _, in := range inputs {
		if filepath.Clean(in) == filepath.Clean(output) {
			errs = append(errs, fmt.Errorf("%s would overwrite input %s", name, in))
		}
	}
	return errs
}

func (c Config) sourcePaths() []string {
	out := make([]string, 0, len(c.Sources))
	for _, s := range c.Sources {
		out = append(out, s.Path)
	}
	return out
}

// PriorityKinds parses Priority, highest first.
func (c Config) PriorityKinds() ([]lexicon.SourceKind, error) {
	out := make([]lexicon.SourceKind, 0, len(c.Priority))
	for _, p := range c.Priority {
		kind, err := lexicon.ParseSourceKind(p)
		if err != nil {
			return nil, fmt.Errorf("priority: %w", err)
		}
		if slices.Contains(out, kind) {
			return nil, fmt.Errorf("priority: %q listed twice", kind)
		}
		out = append(out, kind)
	}
	return out, nil
}

// SourceSpecs converts Sources for the loader. Call Validate first.
func (c Config) SourceSpecs() []source.Spec {
	out := make([]source.Spec, 0, len(c.Sources))
	for _, s := range c.Sources {
		out = append(out, source.Spec{Kind: lexicon.SourceKind(s.Kind), Path: s.Path})
	}
	return out
}

// WriteDefault writes a starter config file. It refuses to replace an
// existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	cfg := Defaults()
	cfg.Sources = []SourceConfig{
		{Kind: string(lexicon.KindPlacenames), Path: "data/placenames.json"},
		{Kind: string(lexicon.KindGlossary), Path: "data/glossary.json"},
	}
	var sb strings.Builder
	sb.WriteString("# termreg configuration. Priority is highest first.\n")
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
