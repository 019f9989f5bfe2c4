package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/termreg/pkg/collection"
	"github.com/japaniel/termreg/pkg/db"
	"github.com/japaniel/termreg/pkg/lexicon"
	"github.com/japaniel/termreg/pkg/merge"
	"github.com/japaniel/termreg/pkg/source"
)

func newPromoteCmd(a *app) *cobra.Command {
	var spelling bool
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Publish the reviewed candidate collection",
		Long: `Copies the candidate collection over the published one atomically and records
the publication, with a digest per record, in the ledger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, candidate, published := "registry", a.cfg.Output, a.cfg.Published
			if spelling {
				kind, candidate, published = string(lexicon.KindSpelling), a.cfg.SpellingOutput, a.cfg.SpellingPublished
			}
			if published == "" {
				return fmt.Errorf("no published path configured for %s", kind)
			}
			return a.runPromote(cmd, kind, candidate, published)
		},
	}
	cmd.Flags().BoolVar(&spelling, "spelling", false, "promote the spelling collection")
	return cmd
}

func (a *app) runPromote(cmd *cobra.Command, kind, candidate, published string) error {
	// The candidate is read once. Its records are digested from the same
	// bytes that get published, and a bad candidate fails the run with
	// nothing replaced.
	data, err := collection.ReadCandidate(candidate)
	if err != nil {
		return err
	}
	var digests map[string]string
	if kind == string(lexicon.KindSpelling) {
		var records lexicon.SpellingCollection
		if records, err = source.ParseSpelling(data); err == nil {
			digests, err = merge.Digests(records)
		}
	} else {
		var records lexicon.Collection
		if records, err = collection.Decode(data); err == nil {
			digests, err = merge.Digests(records)
		}
	}
	if err != nil {
		return &source.InputError{Path: candidate, Err: err}
	}

	var ledger *sql.DB
	if a.cfg.Ledger != "" {
		if ledger, err = db.Open(a.cfg.Ledger); err != nil {
			return err
		}
		defer ledger.Close()
	}

	fileDigest, err := collection.Publish(data, published)
	if err != nil {
		return err
	}
	a.logger.Info("collection promoted", "from", candidate, "to", published, "records", len(digests))

	if ledger == nil {
		fmt.Fprintf(a.stdout, "promoted %s -> %s (%d records)\n", candidate, published, len(digests))
		return nil
	}
	pub, err := db.RecordPublication(cmd.Context(), ledger, db.Publication{
		Kind:   kind,
		Path:   published,
		Digest: fileDigest,
	}, digests)
	if err != nil {
		return fmt.Errorf("promoted %s but failed to record publication: %w", published, err)
	}
	fmt.Fprintf(a.stdout, "promoted %s -> %s (%d records, publication %s)\n", candidate, published, pub.RecordCount, pub.ID)
	return nil
}
