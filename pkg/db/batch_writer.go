package db

import (
	"fmt"
	"strings"
)

// sqlite caps bound parameters per statement at 999 on older builds.
const maxParams = 999

// BatchWriter buffers rows for one table and writes them as multi-row
// INSERT statements. It does not manage transactions; pass a *sql.Tx as
// the executor to make a series of flushes atomic.
type BatchWriter struct {
	exec    DBExecutor
	table   string
	columns []string
	size    int
	buf     [][]interface{}
	written int
}

// NewBatchWriter creates a writer for table. batchSize is the number of rows
// per statement; it is clamped so a statement stays under sqlite's parameter
// limit. A non-positive size picks the largest allowed.
func NewBatchWriter(exec DBExecutor, table string, columns []string, batchSize int) *BatchWriter {
	limit := maxParams / len(columns)
	if batchSize <= 0 || batchSize > limit {
		batchSize = limit
	}
	return &BatchWriter{
		exec:    exec,
		table:   table,
		columns: columns,
		size:    batchSize,
		buf:     make([][]interface{}, 0, batchSize),
	}
}

// Add buffers one row, flushing when the batch is full.
func (bw *BatchWriter) Add(values ...interface{}) error {
	if len(values) != len(bw.columns) {
		return fmt.Errorf("batch writer %s: got %d values for %d columns", bw.table, len(values), len(bw.columns))
	}
	bw.buf = append(bw.buf, values)
	if len(bw.buf) >= bw.size {
		return bw.Flush()
	}
	return nil
}

// Flush writes any buffered rows.
func (bw *BatchWriter) Flush() error {
	if len(bw.buf) == 0 {
		return nil
	}
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(bw.columns)), ", ") + ")"
	rows := strings.TrimSuffix(strings.Repeat(row+", ", len(bw.buf)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", bw.table, strings.Join(bw.columns, ", "), rows)

	args := make([]interface{}, 0, len(bw.buf)*len(bw.columns))
	for _, r := range bw.buf {
		args = append(args, r...)
	}
	if _, err := bw.exec.Exec(query, args...); err != nil {
		return fmt.Errorf("insert batch of %d into %s: %w", len(bw.buf), bw.table, err)
	}
	bw.written += len(bw.buf)
	bw.buf = bw.buf[:0]
	return nil
}

// Written returns the number of rows flushed so far.
func (bw *BatchWriter) Written() int { return bw.written }
