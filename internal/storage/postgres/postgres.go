// Package postgres implements the staging storage backend on top of pgx v5.
// Bulk loading uses the native COPY protocol, the fastest path Postgres
// offers for full-batch reloads.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/esscova/ecommerce-data-pipeline/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Conn, error) {
		c, err := pgx.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: connect: %w", err)
		}
		return &conn{c: c}, nil
	})
}

type conn struct{ c *pgx.Conn }

func (c *conn) Begin(ctx context.Context) (storage.Tx, error) {
	t, err := c.c.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	return &tx{t: t}, nil
}

func (c *conn) Dialect() storage.Dialect { return Dialect{} }

func (c *conn) Close(ctx context.Context) error { return c.c.Close(ctx) }

type tx struct{ t pgx.Tx }

func (x *tx) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := x.t.Exec(ctx, sql, args...)
	return err
}

// CopyIn streams rows through COPY FROM. Column identifiers are passed to pgx
// as an Identifier, which quotes them itself.
func (x *tx) CopyIn(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return x.t.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
}

func (x *tx) Commit(ctx context.Context) error   { return x.t.Commit(ctx) }
func (x *tx) Rollback(ctx context.Context) error { return x.t.Rollback(ctx) }

// Dialect renders Postgres identifier quoting and statements.
type Dialect struct{}

// QuoteIdent quotes a single identifier segment.
func (Dialect) QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// TruncateStmt uses TRUNCATE, which is transactional in Postgres and rolls
// back with the surrounding scope.
func (d Dialect) TruncateStmt(table string) string {
	return "TRUNCATE TABLE " + d.fqn(table)
}

// fqn quotes a possibly schema-qualified name like "public.staging" to
// "public"."staging".
func (d Dialect) fqn(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
