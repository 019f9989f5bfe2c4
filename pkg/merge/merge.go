// Package merge folds heterogeneous raw collections into canonical records.
package merge

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/japaniel/termreg/pkg/canon"
	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/logging"
	"github.com/japaniel/termreg/pkg/refsort"
)

// WarningKind classifies a recoverable problem found during a run.
type WarningKind string

const (
	// WarnThin marks a raw record without gloss, context, transliteration or refs.
	WarnThin WarningKind = "thin"
	// WarnUnmatched marks a targeted update whose key is not in the collection.
	WarnUnmatched WarningKind = "unmatched"
)

// Warning is a validation problem that is reported but does not stop the run.
type Warning struct {
	Kind    WarningKind
	Source  lexicon.SourceKind
	Key     string
	Message string
}

func (w Warning) String() string {
	if w.Source != "" {
		return fmt.Sprintf("%s %s/%s: %s", w.Kind, w.Source, w.Key, w.Message)
	}
	return fmt.Sprintf("%s %s: %s", w.Kind, w.Key, w.Message)
}

// Result is the output of a merge run.
type Result struct {
	Records  lexicon.Collection
	Warnings []Warning
}

// Merger combines raw sources into one collection.
type Merger struct {
	// Priority lists source kinds from highest to lowest priority. Every
	// source passed to Merge must appear here.
	Priority []lexicon.SourceKind
	Workers  int
	// Logger is used for progress messages. nil means no logging.
	Logger *logging.Logger

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewMerger creates a Merger with the given priority, highest first.
func NewMerger(priority []lexicon.SourceKind) *Merger {
	return &Merger{
		Priority: priority,
		Workers:  4,
	}
}

// group is one canonical key's record as seen by a single source.
type group struct {
	rawKeys []string
	record  lexicon.UnifiedRecord
}

// partial is everything one source contributes.
type partial struct {
	groups   map[string]*group
	warnings []Warning
}

// Merge folds the sources into canonical records. Records are grouped by
// canonical key; the outer key of each output record is the first raw key
// (in sorted order) of the highest-priority source that contributed to it.
func (m *Merger) Merge(ctx context.Context, sources map[lexicon.SourceKind]map[string]lexicon.RawRecord) (*Result, error) {
	order, err := m.applyOrder(sources)
	if err != nil {
		return nil, err
	}

	// Normalize each source into its own partial map. Each job owns one slot.
	partials := make([]*partial, len(order))
	var wp WorkerPoolInterface
	if m.PoolFactory != nil {
		wp = m.PoolFactory(m.Workers, len(order))
	} else {
		wp = NewWorkerPool(m.Workers, len(order))
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wp.Start(ctx)
	for i, kind := range order {
		i, kind := i, kind
		records := sources[kind]
		job := func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partials[i] = normalize(kind, records)
			return nil
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			cancel()
			_ = wp.Close()
			return nil, fmt.Errorf("schedule %s: %w", kind, err)
		}
	}
	if err := wp.Close(); err != nil {
		return nil, fmt.Errorf("normalize sources: %w", err)
	}
	for i, p := range partials {
		if p == nil {
			return nil, fmt.Errorf("normalize %s: no result", order[i])
		}
	}

	// Single-threaded reduction, lowest priority first.
	res := &Result{Records: make(lexicon.Collection)}
	outerKey := make(map[string]string)
	merged := make(map[string]*lexicon.UnifiedRecord)
	for i, kind := range order {
		p := partials[i]
		res.Warnings = append(res.Warnings, p.warnings...)
		for _, ck := range lexicon.SortedKeys(p.groups) {
			g := p.groups[ck]
			dst, ok := merged[ck]
			if !ok {
				rec := newRecord(ck)
				dst = &rec
				merged[ck] = dst
			}
			overlay(dst, g.record)
			outerKey[ck] = g.rawKeys[0]
		}
		m.Logger.Debug("source folded", "source", kind, "groups", len(p.groups))
	}

	for ck, rec := range merged {
		refsort.SortTermRefs(rec)
		res.Records[outerKey[ck]] = *rec
	}
	slices.SortStableFunc(res.Warnings, func(a, b Warning) int {
		if c := strings.Compare(string(a.Kind), string(b.Kind)); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	m.Logger.Info("merge complete", "records", len(res.Records), "warnings", len(res.Warnings))
	return res, nil
}

// applyOrder returns the configured kinds that have sources, lowest
// priority first.
func (m *Merger) applyOrder(sources map[lexicon.SourceKind]map[string]lexicon.RawRecord) ([]lexicon.SourceKind, error) {
	for kind := range sources {
		if !slices.Contains(m.Priority, kind) {
			return nil, fmt.Errorf("source %q has no configured priority", kind)
		}
	}
	var order []lexicon.SourceKind
	for i := len(m.Priority) - 1; i >= 0; i-- {
		kind := m.Priority[i]
		if slices.Contains(order, kind) {
			return nil, fmt.Errorf("source %q listed twice in priority", kind)
		}
		if _, ok := sources[kind]; ok {
			order = append(order, kind)
		}
	}
	return order, nil
}

// normalize groups one source's records by canonical key. Raw keys sharing a
// canonical key (e.g. "arabia_nt" and "arabia_ot") are folded in sorted
// order with the same overlay rule used across sources.
func normalize(kind lexicon.SourceKind, records map[string]lexicon.RawRecord) *partial {
	p := &partial{groups: make(map[string]*group)}
	for _, raw := range lexicon.SortedKeys(records) {
		rr := records[raw]
		if rr.IsThin() {
			p.warnings = append(p.warnings, Warning{
				Kind:    WarnThin,
				Source:  kind,
				Key:     raw,
				Message: "no gloss, context, transliteration or references",
			})
		}
		ck := canon.Canonicalize(raw)
		g, ok := p.groups[ck]
		if !ok {
			g = &group{record: newRecord(ck)}
			p.groups[ck] = g
		}
		g.rawKeys = append(g.rawKeys, raw)
		overlay(&g.record, fromRaw(raw, rr))
	}
	return p
}

func newRecord(canonicalKey string) lexicon.UnifiedRecord {
	return lexicon.UnifiedRecord{
		LblTemplate: "{" + canonicalKey + "}",
		Terms:       []lexicon.TermVariant{},
	}
}

func fromRaw(key string, rr lexicon.RawRecord) lexicon.UnifiedRecord {
	return lexicon.UnifiedRecord{
		Gloss:      rr.Gloss,
		Context:    rr.Context,
		Category:   rr.Category,
		Domain:     rr.Domain,
		Terms:      rr.Variants(),
		AltTermIDs: lexicon.AddSet(nil, rr.AltTermIDs...),
		SourceKeys: []string{key},
	}
}

// overlay folds src into dst. Non-empty scalars in src win; lists are unioned.
// Variants sharing a non-empty termId collapse into one with their refs unioned.
func overlay(dst *lexicon.UnifiedRecord, src lexicon.UnifiedRecord) {
	dst.Gloss.Overlay(src.Gloss)
	dst.Context.Overlay(src.Context)
	if src.Category != "" {
		dst.Category = src.Category
	}
	if src.Domain != "" {
		dst.Domain = src.Domain
	}
	for _, v := range src.Terms {
		i := -1
		if v.TermID != "" {
			i = slices.IndexFunc(dst.Terms, func(t lexicon.TermVariant) bool { return t.TermID == v.TermID })
		}
		if i < 0 {
			v = v.Clone()
			v.Refs = unionRefs(nil, v.Refs)
			dst.Terms = append(dst.Terms, v)
			continue
		}
		existing := &dst.Terms[i]
		if v.Transliteration != "" {
			existing.Transliteration = v.Transliteration
		}
		existing.Refs = unionRefs(existing.Refs, v.Refs)
	}
	dst.AltTermIDs = lexicon.AddSet(dst.AltTermIDs, src.AltTermIDs...)
	dst.SourceKeys = lexicon.AddSet(dst.SourceKeys, src.SourceKeys...)
}

// unionRefs appends refs not already present, keeping first-seen order.
// Ordering is left to refsort. The result is never nil.
func unionRefs(dst, refs []string) []string {
	if dst == nil {
		dst = make([]string, 0, len(refs))
	}
	for _, r := range refs {
		if !slices.Contains(dst, r) {
			dst = append(dst, r)
		}
	}
	return dst
}
