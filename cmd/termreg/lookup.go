package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/registry"
)

type lookupOptions struct {
	kind      string
	locale    string
	from      string
	candidate bool
}

func newLookupCmd(a *app) *cobra.Command {
	var opts lookupOptions
	cmd := &cobra.Command{
		Use:   "lookup TERMID...",
		Short: "Query the registry the way the label renderer does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lexicon.ParseSourceKind(opts.kind)
			if err != nil {
				return err
			}
			reg, err := registry.Open(kind, opts.path(a, kind), registry.WithLogger(a.logger))
			if err != nil {
				return err
			}
			for _, id := range args {
				a.printLookup(reg, id, opts.locale)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", string(lexicon.KindGlossary), "registry schema: glossary, placenames or spelling")
	cmd.Flags().StringVarP(&opts.locale, "locale", "l", lexicon.DefaultLocale, "locale for gloss and definition")
	cmd.Flags().StringVar(&opts.from, "from", "", "collection file to query")
	cmd.Flags().BoolVar(&opts.candidate, "candidate", false, "query the candidate output instead of the published collection")
	return cmd
}

func (o lookupOptions) path(a *app, kind lexicon.SourceKind) string {
	if o.from != "" {
		return o.from
	}
	spelling := kind == lexicon.KindSpelling
	switch {
	case spelling && o.candidate:
		return a.cfg.SpellingOutput
	case spelling:
		return a.cfg.SpellingPublished
	case o.candidate:
		return a.cfg.Output
	default:
		return a.cfg.Published
	}
}

func (a *app) printLookup(reg registry.Lookup, id, locale string) {
	fmt.Fprintf(a.stdout, "%s\n", id)
	fmt.Fprintf(a.stdout, "  gloss:           %s\n", reg.Gloss(id, locale))
	fmt.Fprintf(a.stdout, "  definition:      %s\n", reg.Definition(id, locale))
	fmt.Fprintf(a.stdout, "  transliteration: %s\n", reg.Transliteration(id, locale))
	fmt.Fprintf(a.stdout, "  refs:            %s\n", strings.Join(reg.Refs(id, locale), " "))
}
