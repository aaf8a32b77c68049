package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Transactor stores the active pgx.Tx in the context so that repository
// calls made with it participate in the same transaction.
type Transactor struct {
	db beginner
}

func NewTransactor(db beginner) *Transactor {
	return &Transactor{db: db}
}

// WithinTransaction begins a transaction and calls fn. If fn returns nil the
// transaction is committed, otherwise it is rolled back. Panics roll back and
// are rethrown.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
