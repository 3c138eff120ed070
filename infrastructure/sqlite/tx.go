package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
)

// SlowTxThreshold is how long a transaction may take before it is logged.
var SlowTxThreshold = 250 * time.Millisecond

type txFunc = func(ctx context.Context, tx bun.Tx) error

// WithWriteTx runs fn on the writer; an error from fn rolls back.
func (db *DB) WithWriteTx(ctx context.Context, fn txFunc) error {
	if db == nil || db.W == nil {
		return errors.New("sqlite: write db is not initialized")
	}
	return runTx(ctx, db.W, "write", &sql.TxOptions{}, fn)
}

// WithReadTx runs fn in a read-only transaction on the read pool.
func (db *DB) WithReadTx(ctx context.Context, fn txFunc) error {
	if db == nil || db.R == nil {
		return errors.New("sqlite: read db is not initialized")
	}
	return runTx(ctx, db.R, "read", &sql.TxOptions{ReadOnly: true}, fn)
}

func runTx(ctx context.Context, h *bun.DB, kind string, opts *sql.TxOptions, fn txFunc) error {
	start := time.Now()
	err := h.RunInTx(ctx, opts, fn)
	if took := time.Since(start); took > SlowTxThreshold {
		slog.Warn("slow sqlite transaction", slog.String("kind", kind), slog.Duration("took", took), slog.Any("err", err))
	}
	return err
}
