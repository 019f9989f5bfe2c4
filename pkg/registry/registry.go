// Package registry serves read-only lookups over a finished canonical
// collection. A registry is built once and never changes afterwards; callers
// own the value and pass it to whatever needs it.
package registry

import (
	"fmt"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/japaniel/termreg/pkg/collection"
	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/logging"
)

// Lookup is the query surface shared by every backing schema. An empty
// locale means en. Unknown ids yield "" or an empty slice, never an error.
type Lookup interface {
	Kind() lexicon.SourceKind
	Gloss(termID, locale string) string
	Definition(termID, locale string) string
	Transliteration(termID, locale string) string
	Refs(termID, locale string) []string
}

// Miss describes a lookup for an id the registry does not hold.
type Miss struct {
	Kind   lexicon.SourceKind
	Op     string
	TermID string
	Locale string
}

// MissReporter receives lookup misses. It is called at most once per
// (kind, op, termID) within the dedupe window.
type MissReporter func(Miss)

const (
	DefaultMissWindow      = 10 * time.Minute
	defaultCleanupInterval = 30 * time.Minute
)

type options struct {
	logger   *logging.Logger
	reporter MissReporter
	window   time.Duration
}

// Option configures a registry.
type Option func(*options)

// WithLogger sets the logger used by the default miss reporter.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMissReporter replaces the default debug-log reporter.
func WithMissReporter(r MissReporter) Option {
	return func(o *options) { o.reporter = r }
}

// WithMissWindow sets how long a reported miss is suppressed. Zero or less
// reports every miss.
func WithMissWindow(d time.Duration) Option {
	return func(o *options) { o.window = d }
}

// misses funnels lookup misses into the reporter, dropping repeats.
type misses struct {
	kind     lexicon.SourceKind
	reporter MissReporter
	seen     *gocache.Cache
}

func newMisses(kind lexicon.SourceKind, opts []Option) *misses {
	o := options{window: DefaultMissWindow}
	for _, opt := range opts {
		opt(&o)
	}
	m := &misses{kind: kind, reporter: o.reporter}
	if m.reporter == nil {
		logger := o.logger
		m.reporter = func(miss Miss) {
			logger.Debug("registry miss", "kind", miss.Kind, "op", miss.Op, "termId", miss.TermID, "locale", miss.Locale)
		}
	}
	if o.window > 0 {
		m.seen = gocache.New(o.window, defaultCleanupInterval)
	}
	return m
}

func (m *misses) report(op, termID, locale string) {
	if m.seen != nil {
		// Add fails when the key is already present and unexpired.
		if err := m.seen.Add(op+"\x00"+termID, struct{}{}, gocache.DefaultExpiration); err != nil {
			return
		}
	}
	m.reporter(Miss{Kind: m.kind, Op: op, TermID: termID, Locale: locale})
}

// Open loads a canonical collection file and builds the registry for kind.
func Open(kind lexicon.SourceKind, path string, opts ...Option) (Lookup, error) {
	switch kind {
	case lexicon.KindGlossary, lexicon.KindPlacenames:
		records, err := collection.Load(path)
		if err != nil {
			return nil, err
		}
		return NewUnified(kind, records, opts...), nil
	case lexicon.KindSpelling:
		records, err := collection.LoadSpelling(path)
		if err != nil {
			return nil, err
		}
		return NewSpelling(records, opts...), nil
	}
	return nil, fmt.Errorf("no registry for source kind %q", kind)
}

func copyRefs(refs []string) []string {
	if len(refs) == 0 {
		return []string{}
	}
	return slices.Clone(refs)
}
