// Package mssql implements the staging storage backend for SQL Server using
// go-mssqldb. CopyIn uses the driver's bulk-copy statement, SQL Server's
// native fast path for batch inserts.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"github.com/esscova/ecommerce-data-pipeline/internal/storage"
)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Conn, error) {
		// Validate the DSN early to fail fast on obvious mistakes.
		if _, err := msdsn.Parse(cfg.DSN); err != nil {
			return nil, fmt.Errorf("mssql: dsn: %w", err)
		}
		db, err := sql.Open("sqlserver", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("mssql: open: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("mssql: ping: %w", err)
		}
		return &conn{db: db}, nil
	})
}

type conn struct{ db *sql.DB }

func (c *conn) Begin(ctx context.Context) (storage.Tx, error) {
	t, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mssql: begin: %w", err)
	}
	return &tx{t: t}, nil
}

func (c *conn) Dialect() storage.Dialect { return Dialect{} }

func (c *conn) Close(ctx context.Context) error { return c.db.Close() }

type tx struct{ t *sql.Tx }

func (x *tx) Exec(ctx context.Context, sqlText string, args ...any) error {
	_, err := x.t.ExecContext(ctx, sqlText, args...)
	return err
}

// CopyIn uses the go-mssqldb bulk-copy protocol: one prepared bulk statement,
// one Exec per row, and a final no-argument Exec to flush the batch.
func (x *tx) CopyIn(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := x.t.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("mssql: prepare bulk copy: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mssql: CopyIn: row %d length %d != columns length %d", i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("mssql: bulk row: %w", err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("mssql: bulk flush: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (x *tx) Commit(ctx context.Context) error   { return x.t.Commit() }
func (x *tx) Rollback(ctx context.Context) error { return x.t.Rollback() }

// Dialect renders SQL Server bracket quoting and statements.
type Dialect struct{}

func (Dialect) QuoteIdent(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

// TruncateStmt uses DELETE rather than TRUNCATE TABLE so foreign-key
// referenced staging tables still clear inside the transaction.
func (d Dialect) TruncateStmt(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return "DELETE FROM " + strings.Join(parts, ".")
}
