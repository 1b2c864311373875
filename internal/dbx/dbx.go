// Package dbx holds the small database plumbing shared by repositories:
// a querier interface satisfied by both *sql.DB and *sql.Tx, and a
// helper that runs a function inside a transaction.
package dbx

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql the repositories use. Both
// *sql.DB and *sql.Tx satisfy it, so the same repository code serves
// plain queries and transactional units of work.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InTx begins a transaction, runs fn against it, and commits when fn
// returns nil. Any error or panic rolls the transaction back; panics
// are rethrown after the rollback.
func InTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx Querier) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
