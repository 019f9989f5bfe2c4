package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/termreg/pkg/collection"
	"github.com/japaniel/termreg/pkg/merge"
	"github.com/japaniel/termreg/pkg/source"
	"github.com/japaniel/termreg/pkg/tabular"
)

type tableOptions struct {
	field    string
	spelling bool
	from     string
	out      string
}

func (o tableOptions) collectionPath(a *app) string {
	switch {
	case o.from != "":
		return o.from
	case o.spelling:
		return a.cfg.SpellingOutput
	default:
		return a.cfg.Output
	}
}

func newExportCmd(a *app) *cobra.Command {
	var opts tableOptions
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a translation table as TSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.exportTable(opts)
			if err != nil {
				return err
			}
			if opts.out == "" || opts.out == "-" {
				return t.Write(a.stdout)
			}
			if err := tabular.WriteFile(opts.out, t); err != nil {
				return err
			}
			a.logger.Info("table exported", "path", opts.out, "rows", len(t.Rows))
			return nil
		},
	}
	addTableFlags(cmd, &opts)
	cmd.Flags().StringVarP(&opts.out, "output", "o", "", "write the table to this file instead of stdout")
	return cmd
}

func (a *app) exportTable(opts tableOptions) (*tabular.Table, error) {
	path := opts.collectionPath(a)
	if opts.spelling {
		records, err := collection.LoadSpelling(path)
		if err != nil {
			return nil, err
		}
		return tabular.SpellingTable(records, a.cfg.ProjectCodes), nil
	}
	field, err := tabular.ParseField(opts.field)
	if err != nil {
		return nil, err
	}
	records, err := collection.Load(path)
	if err != nil {
		return nil, err
	}
	return tabular.ExportField(records, field), nil
}

func newImportCmd(a *app) *cobra.Command {
	var opts tableOptions
	cmd := &cobra.Command{
		Use:   "import TABLE",
		Short: "Apply an edited translation table to a collection",
		Long: `Merges a translator-edited TSV back into the candidate collection. Non-empty
cells replace stored text; rows whose key is not in the collection are reported
and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(args[0], opts)
		},
	}
	addTableFlags(cmd, &opts)
	cmd.Flags().StringVarP(&opts.out, "output", "o", "", "write the updated collection here (default: overwrite the source collection)")
	return cmd
}

func (a *app) runImport(tablePath string, opts tableOptions) error {
	t, err := tabular.ReadFile(tablePath)
	if err != nil {
		return err
	}
	path := opts.collectionPath(a)
	dest := opts.out
	if dest == "" {
		dest = path
	}

	var updated any
	var warnings []merge.Warning
	if opts.spelling {
		records, err := collection.LoadSpelling(path)
		if err != nil {
			return err
		}
		updated, warnings, err = tabular.ApplySpelling(records, t, a.cfg.ProjectCodes)
		if err != nil {
			return &source.InputError{Path: tablePath, Err: err}
		}
	} else {
		field, err := tabular.ParseField(opts.field)
		if err != nil {
			return err
		}
		records, err := collection.Load(path)
		if err != nil {
			return err
		}
		updated, warnings, err = tabular.ApplyField(records, t, field)
		if err != nil {
			return &source.InputError{Path: tablePath, Err: err}
		}
	}

	if err := collection.Write(dest, updated); err != nil {
		return err
	}
	for _, w := range warnings {
		a.logger.Warn("import warning", "kind", w.Kind, "key", w.Key, "message", w.Message)
		fmt.Fprintf(a.stdout, "warning: %s\n", w)
	}
	fmt.Fprintf(a.stdout, "applied %d rows to %s (%d unmatched)\n", len(t.Rows)-len(warnings), dest, len(warnings))
	return nil
}

func addTableFlags(cmd *cobra.Command, opts *tableOptions) {
	cmd.Flags().StringVarP(&opts.field, "field", "f", "gloss", "record field to carry: gloss or context")
	cmd.Flags().BoolVar(&opts.spelling, "spelling", false, "use the spelling collection and table layout")
	cmd.Flags().StringVar(&opts.from, "from", "", "collection file (default: the configured candidate output)")
}
