package storage

import (
	"context"
	"fmt"
	"log"
)

// This file implements the scoped transactional lifecycle:
// DISCONNECTED -> CONNECTED -> work -> COMMITTED | ROLLED_BACK -> DISCONNECTED.
// The connection and transaction are released on every exit path.

// Transact opens a connection for cfg, runs fn inside one transaction, and
// guarantees the connection is closed afterwards whether fn succeeds, fails,
// or the commit itself fails.
func Transact(ctx context.Context, cfg Config, fn func(tx Tx, d Dialect) error) error {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(ctx); cerr != nil {
			log.Printf("storage: warning: closing %s connection: %v", cfg.Kind, cerr)
		}
	}()
	return WithTx(ctx, conn, fn)
}

// WithTx begins a transaction on conn and applies the commit/rollback
// discipline: commit when fn returns nil, roll back when fn errors, and make
// a best-effort final rollback when the commit itself fails. The original
// error always wins over rollback errors.
func WithTx(ctx context.Context, conn Conn, fn func(tx Tx, d Dialect) error) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: begin transaction: %w", err)
	}

	if err := fn(tx, conn.Dialect()); err != nil {
		log.Printf("storage: transaction body failed, rolling back: %v", err)
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Printf("storage: warning: rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("storage: commit failed, attempting final rollback: %v", err)
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Printf("storage: warning: final rollback failed: %v", rbErr)
		}
		return fmt.Errorf("storage: commit transaction: %w", err)
	}
	return nil
}
