package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/config"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so reads can run inside or
// outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

func (r *Repository) txContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
}

// Tx exposes the queries that may run inside a transaction.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn in a transaction. The transaction commits only when fn returns nil.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &Tx{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

// InSlotTx is WithTx holding the advisory lock of one tour slot. The lock is
// released when the transaction ends, so creates for the same slot run one at a time.
func (r *Repository) InSlotTx(ctx context.Context, d domain.Date, tod string, fn func(ctx context.Context, tx *Tx) error) error {
	return r.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
		query := `SELECT pg_advisory_xact_lock(hashtextextended('slot:' || $1::text || ' ' || $2::text, 0))`
		if _, err := tx.tx.ExecContext(ctx, query, d, tod); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}
