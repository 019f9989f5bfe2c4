package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/termreg/pkg/db"
	"github.com/japaniel/termreg/pkg/merge"
)

type historyOptions struct {
	path    string
	limit   int
	changes bool
}

func newHistoryCmd(a *app) *cobra.Command {
	var opts historyOptions
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded publications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Ledger == "" {
				return fmt.Errorf("no ledger configured")
			}
			conn, err := db.Open(a.cfg.Ledger)
			if err != nil {
				return err
			}
			defer conn.Close()
			return a.printHistory(conn, opts)
		},
	}
	cmd.Flags().StringVar(&opts.path, "path", "", "only publications of this published path")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "number of publications to show (0 for all)")
	cmd.Flags().BoolVar(&opts.changes, "changes", false, "list keys added, changed or removed by each publication")
	return cmd
}

func (a *app) printHistory(conn db.DBExecutor, opts historyOptions) error {
	pubs, err := db.ListPublications(conn, opts.path, opts.limit)
	if err != nil {
		return err
	}
	if len(pubs) == 0 {
		fmt.Fprintln(a.stdout, "no publications recorded")
		return nil
	}
	for _, p := range pubs {
		fmt.Fprintf(a.stdout, "%s  %s  %-10s %6d records  %s  %.12s\n",
			p.PublishedAt.Local().Format(time.DateTime), p.ID, p.Kind, p.RecordCount, p.Path, p.Digest)
		if !opts.changes {
			continue
		}
		report, err := a.publicationChanges(conn, p)
		if err != nil {
			return err
		}
		if err := report.WriteText(a.stdout); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout)
	}
	return nil
}

// publicationChanges compares a publication with the one before it on the
// same path.
func (a *app) publicationChanges(conn db.DBExecutor, p db.Publication) (*merge.ChangeReport, error) {
	next, err := db.RecordDigests(conn, p.ID)
	if err != nil {
		return nil, err
	}
	prior := map[string]string{}
	older, err := db.ListPublications(conn, p.Path, 0)
	if err != nil {
		return nil, err
	}
	for i, o := range older {
		if o.ID == p.ID && i+1 < len(older) {
			if prior, err = db.RecordDigests(conn, older[i+1].ID); err != nil {
				return nil, err
			}
			break
		}
	}
	return merge.DiffDigests(prior, next), nil
}
