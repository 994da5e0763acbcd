// Package storage contains the storage-agnostic contracts for the relational
// staging area: a connection/transaction abstraction, a backend registry, a
// transaction scope with guaranteed release, and the staging loader itself.
//
// Backends (postgres, sqlite, mssql, mysql) live in subpackages and register
// themselves at init time, so callers select one by configuration kind without
// importing driver specifics.
package storage

import "context"

// Config selects and parameterizes a storage backend.
type Config struct {
	// Kind names a registered backend: "postgres", "sqlite", "mssql", "mysql".
	Kind string

	// DSN is the backend-specific connection string.
	DSN string
}

// Dialect captures the identifier and statement differences between backends.
type Dialect interface {
	// QuoteIdent quotes a single identifier so case-sensitive or reserved
	// names survive (e.g. "purchase_date" -> "\"purchase_date\"").
	QuoteIdent(ident string) string

	// TruncateStmt renders the full-table delete-all statement for table.
	// The statement must not commit on its own; commit belongs to the
	// enclosing transaction scope.
	TruncateStmt(table string) string
}

// Conn is a single exclusively-owned connection to the staging database.
// One pipeline run acquires, uses, and releases its own Conn; there is no
// pooling or sharing across runs.
type Conn interface {
	Begin(ctx context.Context) (Tx, error)
	Dialect() Dialect
	Close(ctx context.Context) error
}

// Tx is an open transaction. All staging work (DDL scripts, truncate, bulk
// insert) happens through a Tx so the enclosing scope can commit or roll back
// atomically.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error

	// CopyIn performs the backend's batched multi-row insert of rows aligned
	// to columns, returning the number of rows inserted.
	CopyIn(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
