// Package sqlite implements the staging storage backend on database/sql with
// the pure-Go modernc driver. SQLite has no dedicated bulk-load API; CopyIn
// runs a prepared INSERT per row inside the enclosing transaction, which keeps
// performance acceptable for full-batch reloads and makes this backend ideal
// for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/esscova/ecommerce-data-pipeline/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Conn, error) {
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("sqlite: open: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: ping: %w", err)
		}
		return &conn{db: db}, nil
	})
}

type conn struct{ db *sql.DB }

func (c *conn) Begin(ctx context.Context) (storage.Tx, error) {
	t, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	return &tx{t: t, d: Dialect{}}, nil
}

func (c *conn) Dialect() storage.Dialect { return Dialect{} }

func (c *conn) Close(ctx context.Context) error { return c.db.Close() }

type tx struct {
	t *sql.Tx
	d Dialect
}

func (x *tx) Exec(ctx context.Context, sqlText string, args ...any) error {
	_, err := x.t.ExecContext(ctx, sqlText, args...)
	return err
}

// CopyIn prepares one INSERT and executes it per row. len(row) must equal
// len(columns) for every row.
func (x *tx) CopyIn(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyIn: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = x.d.QuoteIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		x.d.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := x.t.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return inserted, fmt.Errorf("sqlite: CopyIn: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return inserted, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

func (x *tx) Commit(ctx context.Context) error   { return x.t.Commit() }
func (x *tx) Rollback(ctx context.Context) error { return x.t.Rollback() }

// Dialect renders SQLite identifier quoting and statements.
type Dialect struct{}

func (Dialect) QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// TruncateStmt: SQLite has no TRUNCATE; an unqualified DELETE is the
// equivalent full-table removal and stays transactional.
func (d Dialect) TruncateStmt(table string) string {
	return "DELETE FROM " + d.QuoteIdent(table)
}
