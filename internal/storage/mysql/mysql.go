// Package mysql implements the staging storage backend on database/sql with
// the go-sql-driver. CopyIn builds chunked multi-row INSERT statements, the
// practical bulk path for MySQL without LOAD DATA privileges.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/esscova/ecommerce-data-pipeline/internal/storage"
)

// insertChunk caps rows per multi-row INSERT to stay well under MySQL's
// placeholder and packet limits.
const insertChunk = 1000

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Conn, error) {
		db, err := sql.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("mysql: open: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("mysql: ping: %w", err)
		}
		return &conn{db: db}, nil
	})
}

type conn struct{ db *sql.DB }

func (c *conn) Begin(ctx context.Context) (storage.Tx, error) {
	t, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mysql: begin: %w", err)
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

// CopyIn issues multi-row INSERTs of up to insertChunk rows each, all inside
// the enclosing transaction.
func (x *tx) CopyIn(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyIn: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = x.d.QuoteIdent(c)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", x.d.QuoteIdent(table), strings.Join(quoted, ", "))
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var inserted int64
	for start := 0; start < len(rows); start += insertChunk {
		end := start + insertChunk
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		tuples := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if len(row) != len(columns) {
				return inserted, fmt.Errorf("mysql: CopyIn: row length %d != columns length %d", len(row), len(columns))
			}
			tuples[i] = tuple
			args = append(args, row...)
		}

		res, err := x.t.ExecContext(ctx, prefix+strings.Join(tuples, ", "), args...)
		if err != nil {
			return inserted, fmt.Errorf("mysql: insert chunk: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		} else {
			inserted += int64(len(chunk))
		}
	}
	return inserted, nil
}

func (x *tx) Commit(ctx context.Context) error   { return x.t.Commit() }
func (x *tx) Rollback(ctx context.Context) error { return x.t.Rollback() }

// Dialect renders MySQL backtick quoting and statements.
type Dialect struct{}

func (Dialect) QuoteIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (d Dialect) TruncateStmt(table string) string {
	return "DELETE FROM " + d.QuoteIdent(table)
}
