package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// snapshotTx is used for reads that reconstruct an aggregate from
// several statements.  REPEATABLE READ gives every statement in the
// transaction the same InnoDB snapshot.
var snapshotTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// withTx runs fn inside a transaction.  The transaction is rolled back
// on every exit path unless fn succeeds and the commit goes through, so
// the pooled connection always returns in autocommit mode.
func withTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// deleteRow runs a single-row DELETE.  A foreign key violation yields
// ErrInUse and zero affected rows yields notFound.
func deleteRow(ctx context.Context, db *sql.DB, query string, id any, notFound error) error {
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		if isReferenced(err) {
			return ErrInUse
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// lockRow checks that a row exists and locks it for the rest of tx.
func lockRow(ctx context.Context, tx *sql.Tx, query string, id any, notFound error) error {
	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}
