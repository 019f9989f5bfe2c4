package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/termreg/pkg/collection"
	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/merge"
	"github.com/japaniel/termreg/pkg/source"
)

type mergeOptions struct {
	dryRun  bool
	verbose bool
}

func newMergeCmd(a *app) *cobra.Command {
	var opts mergeOptions
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge configured sources into the candidate collections",
		Long: `Reads every configured source, merges them by canonical key in priority order,
writes the candidate collection(s) and prints a change report against the published
version. Any unreadable input aborts the run before anything is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("verbose") {
				opts.verbose = a.cfg.Report.Verbose
			}
			return a.runMerge(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the change report without writing output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "include a line diff for every changed key")
	return cmd
}

// mergeOutput is one candidate file ready to be written.
type mergeOutput struct {
	path   string
	value  any
	report *merge.ChangeReport
}

func (a *app) runMerge(cmd *cobra.Command, opts mergeOptions) error {
	ctx := cmd.Context()
	if len(a.cfg.Sources) == 0 && len(a.cfg.SpellingSources) == 0 {
		return fmt.Errorf("no sources configured")
	}

	// Everything is read and merged before the first write so a bad input
	// leaves all outputs untouched.
	var outputs []mergeOutput
	if len(a.cfg.Sources) > 0 {
		out, err := a.mergeUnified(cmd, opts)
		if err != nil {
			return err
		}
		outputs = append(outputs, out)
	}
	if len(a.cfg.SpellingSources) > 0 {
		out, err := a.mergeSpelling(opts)
		if err != nil {
			return err
		}
		outputs = append(outputs, out)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !opts.dryRun {
		for _, out := range outputs {
			if err := collection.Write(out.path, out.value); err != nil {
				return fmt.Errorf("write %s: %w", out.path, err)
			}
			a.logger.Info("candidate written", "path", out.path)
		}
	}
	for _, out := range outputs {
		fmt.Fprintf(a.stdout, "== %s\n", out.path)
		if err := out.report.WriteText(a.stdout); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) mergeUnified(cmd *cobra.Command, opts mergeOptions) (mergeOutput, error) {
	sources := make(map[lexicon.SourceKind]map[string]lexicon.RawRecord)
	for _, spec := range a.cfg.SourceSpecs() {
		raw, err := source.LoadRaw(spec)
		if err != nil {
			return mergeOutput{}, err
		}
		a.logger.Debug("source loaded", "kind", spec.Kind, "path", spec.Path, "records", len(raw.Records))
		sources[spec.Kind] = raw.Records
	}
	priority, err := a.cfg.PriorityKinds()
	if err != nil {
		return mergeOutput{}, err
	}
	m := merge.NewMerger(priority)
	m.Workers = a.cfg.Workers
	m.Logger = a.logger
	res, err := m.Merge(cmd.Context(), sources)
	if err != nil {
		return mergeOutput{}, err
	}

	prior, err := collection.LoadOptional(a.cfg.Published)
	if err != nil {
		return mergeOutput{}, err
	}
	report, err := merge.Diff(prior, res.Records, opts.verbose)
	if err != nil {
		return mergeOutput{}, err
	}
	report.Warnings = res.Warnings
	return mergeOutput{path: a.cfg.Output, value: res.Records, report: report}, nil
}

func (a *app) mergeSpelling(opts mergeOptions) (mergeOutput, error) {
	tables := make([]lexicon.SpellingCollection, 0, len(a.cfg.SpellingSources))
	for _, path := range a.cfg.SpellingSources {
		t, err := source.LoadSpelling(path)
		if err != nil {
			return mergeOutput{}, err
		}
		a.logger.Debug("spelling table loaded", "path", path, "records", len(t))
		tables = append(tables, t)
	}
	res := merge.MergeSpellings(tables)

	prior, err := collection.LoadSpellingOptional(a.cfg.SpellingPublished)
	if err != nil {
		return mergeOutput{}, err
	}
	report, err := merge.Diff(prior, res.Records, opts.verbose)
	if err != nil {
		return mergeOutput{}, err
	}
	report.Warnings = res.Warnings
	return mergeOutput{path: a.cfg.SpellingOutput, value: res.Records, report: report}, nil
}
