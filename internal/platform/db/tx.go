package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txContextKey struct{}

// ContextWithTx returns a context carrying the transaction. Repositories
// route their queries through it when present.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext returns the transaction carried by the context, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx
}

// WithTx runs fn inside a transaction, with the transaction attached to the
// context passed to fn. The transaction is rolled back if fn returns an error
// or panics, and committed otherwise.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ContextWithTx(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Atomic runs fn atomically. Services depend on this function type rather
// than the pool so unit tests can substitute a passthrough.
type Atomic func(ctx context.Context, fn func(ctx context.Context) error) error

// PoolAtomic returns an Atomic backed by WithTx on the pool.
func PoolAtomic(pool *pgxpool.Pool) Atomic {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return WithTx(ctx, pool, fn)
	}
}
