// Package tx propagates SQL transactions through context and provides the
// Runner abstraction services use to make multi-store sequences atomic.
package tx

import (
	"context"
	"database/sql"
	"fmt"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner executes a function atomically. SQL-backed runners open a real
// transaction; the passthrough runner exists for in-memory wiring where each
// store already serializes its own mutations.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQL is a Runner backed by database/sql transactions. The transaction is
// placed in the context so stores pick it up via From.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (r *SQL) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		// Already inside a transaction; join it.
		return fn(ctx)
	}
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Passthrough is a Runner that simply invokes the function. Used with
// in-memory stores, which take their own locks per operation.
type Passthrough struct{}

func (Passthrough) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
