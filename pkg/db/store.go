package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/japaniel/termreg/pkg/lexicon"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// ErrNotFound is returned when a publication id is unknown.
var ErrNotFound = errors.New("publication not found")

// InsertPublication stores the publication row.
func InsertPublication(db DBExecutor, p Publication) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("publication id must be non-empty")
	}
	if strings.TrimSpace(p.Path) == "" {
		return fmt.Errorf("publication path must be non-empty")
	}
	_, err := db.Exec(
		`INSERT INTO publications (id, published_at, kind, path, record_count, digest) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.PublishedAt.UTC(), p.Kind, p.Path, p.RecordCount, p.Digest,
	)
	if err != nil {
		return fmt.Errorf("insert publication: %w", err)
	}
	return nil
}

// RecordPublication writes a publication and its per-record digests in one
// transaction. ID and PublishedAt are filled in when zero.
func RecordPublication(ctx context.Context, conn *sql.DB, p Publication, digests map[string]string) (Publication, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now()
	}
	p.RecordCount = len(digests)

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Publication{}, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	if err := InsertPublication(tx, p); err != nil {
		return Publication{}, err
	}
	bw := NewBatchWriter(tx, "published_records", []string{"publication_id", "key", "digest"}, 0)
	for _, key := range lexicon.SortedKeys(digests) {
		if err := bw.Add(p.ID, key, digests[key]); err != nil {
			return Publication{}, err
		}
	}
	if err := bw.Flush(); err != nil {
		return Publication{}, err
	}
	if err := tx.Commit(); err != nil {
		return Publication{}, fmt.Errorf("commit publication %s: %w", p.ID, err)
	}
	return p, nil
}

const publicationCols = `id, published_at, kind, path, record_count, digest`

func scanPublication(row interface{ Scan(...interface{}) error }) (Publication, error) {
	var p Publication
	var kind sql.NullString
	if err := row.Scan(&p.ID, &p.PublishedAt, &kind, &p.Path, &p.RecordCount, &p.Digest); err != nil {
		return Publication{}, err
	}
	if kind.Valid {
		p.Kind = kind.String
	}
	return p, nil
}

// GetPublication returns one publication by id.
func GetPublication(db DBExecutor, id string) (Publication, error) {
	p, err := scanPublication(db.QueryRow(`SELECT `+publicationCols+` FROM publications WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Publication{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// ListPublications returns publications newest first. An empty path lists
// every path; a non-positive limit means no limit.
func ListPublications(db DBExecutor, path string, limit int) ([]Publication, error) {
	query := `SELECT ` + publicationCols + ` FROM publications`
	var args []interface{}
	if path != "" {
		query += ` WHERE path = ?`
		args = append(args, path)
	}
	query += ` ORDER BY published_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordDigests returns the per-record digests stored for a publication.
func RecordDigests(db DBExecutor, publicationID string) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, digest FROM published_records WHERE publication_id = ?`, publicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var key, digest string
		if err := rows.Scan(&key, &digest); err != nil {
			return nil, err
		}
		out[key] = digest
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestDigests returns the record digests of the newest publication of
// path, or an empty map if path was never published.
func LatestDigests(db DBExecutor, path string) (map[string]string, error) {
	pubs, err := ListPublications(db, path, 1)
	if err != nil {
		return nil, err
	}
	if len(pubs) == 0 {
		return map[string]string{}, nil
	}
	return RecordDigests(db, pubs[0].ID)
}
