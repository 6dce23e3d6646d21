// Package repository contains the MySQL data access layer: the ledger
// store backing the reservation engine plus the catalog, user and
// token repositories used by the HTTP handlers.
package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Store is the MySQL implementation of reservation.Store.  Ledger and
// booking methods participate in a caller transaction when the context
// comes from WithTx; otherwise they run against the pool directly.
type Store struct {
	db *sql.DB
}

// NewStore binds a Store to the given database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for callers that need to compose
// their own transactions across repositories.
func (s *Store) DB() *sql.DB { return s.db }

type txKey struct{}

// WithTx begins a transaction, runs fn with a context that routes every
// store call through that transaction, and commits iff fn returns nil.
// Any error rolls the whole transaction back.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction carried by ctx, or the pool.
func (s *Store) q(ctx context.Context) dbtx {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// TxFrom extracts the transaction a WithTx context carries, letting
// other repositories in this package join the same transaction.
func TxFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// placeholders returns "?,?,...,?" with n markers for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// uint64Args converts seat IDs into a driver argument slice.
func uint64Args(ids []uint64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
