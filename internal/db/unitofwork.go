package db

import (
	"context"
	"database/sql"
	"fmt"
)

// TxFunc runs against a transaction-scoped DBTX.
type TxFunc func(ctx context.Context, tx DBTX) error

// UnitOfWork scopes a batch of writes (seeding, imports) or a consistent
// multi-table read (exports) to one transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn TxFunc) error
	WithinReadTx(ctx context.Context, fn TxFunc) error
}

// SQLiteUnitOfWork implements UnitOfWork using database/sql transactions.
type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn TxFunc) error {
	return u.run(ctx, nil, fn)
}

// WithinReadTx gives fn a read-only snapshot. Writes inside fn fail.
func (u *SQLiteUnitOfWork) WithinReadTx(ctx context.Context, fn TxFunc) error {
	return u.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (u *SQLiteUnitOfWork) run(ctx context.Context, opts *sql.TxOptions, fn TxFunc) error {
	tx, err := u.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
