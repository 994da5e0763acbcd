package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/esscova/ecommerce-data-pipeline/pkg/records"
)

// Loader replaces the staging table's content with a canonical batch. It only
// ever works through an open Tx; committing (or rolling back) is the
// responsibility of the enclosing scope, so a truncate is never visible
// without its matching bulk insert.
type Loader struct {
	dialect Dialect
}

// NewLoader binds a Loader to the dialect of the connection it will serve.
func NewLoader(d Dialect) *Loader {
	return &Loader{dialect: d}
}

// Truncate removes every row from table. It does not commit.
func (l *Loader) Truncate(ctx context.Context, tx Tx, table string) error {
	log.Printf("storage: removing all rows from staging table %q", table)
	if err := tx.Exec(ctx, l.dialect.TruncateStmt(table)); err != nil {
		return fmt.Errorf("storage: truncate %q: %w", table, err)
	}
	return nil
}

// BulkLoad inserts the batch into table using the caller-supplied column
// order. Each record contributes one positional row: a key missing from a
// record becomes a NULL placeholder, never an error. An empty batch is a
// successful no-op. Database errors are logged and returned so the enclosing
// scope rolls back; the loader never swallows a load failure.
func (l *Loader) BulkLoad(ctx context.Context, tx Tx, table string, recs []records.Record, columns []string) (int64, error) {
	if len(recs) == 0 {
		log.Printf("storage: no records to load into staging table %q", table)
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("storage: bulk load %q: no columns configured", table)
	}

	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = rec[col] // missing key -> nil
		}
		rows = append(rows, row)
	}

	n, err := tx.CopyIn(ctx, table, columns, rows)
	if err != nil {
		log.Printf("storage: bulk load into %q failed: %v", table, err)
		return n, fmt.Errorf("storage: bulk load %q: %w", table, err)
	}
	log.Printf("storage: %d records inserted into staging table %q", n, table)
	return n, nil
}
