package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

func getAllBlackoutDates(ctx context.Context, q querier) ([]*domain.BlackoutDate, error) {
	query := `SELECT id, date, reason, created_at FROM blackout_dates ORDER BY date`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bds := make([]*domain.BlackoutDate, 0)
	for rows.Next() {
		bd := &domain.BlackoutDate{}
		if err := rows.Scan(&bd.ID, &bd.Date, &bd.Reason, &bd.CreatedAt); err != nil {
			return nil, err
		}
		bds = append(bds, bd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bds, nil
}

func (r *Repository) GetAllBlackoutDates(ctx context.Context) ([]*domain.BlackoutDate, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return getAllBlackoutDates(ctx, r.dbpool)
}

func (tx *Tx) GetAllBlackoutDates(ctx context.Context) ([]*domain.BlackoutDate, error) {
	return getAllBlackoutDates(ctx, tx.tx)
}

// CreateBlackoutDate fails on the blackout_dates_date_key constraint when the date
// is already closed.
func (r *Repository) CreateBlackoutDate(ctx context.Context, bd *domain.BlackoutDate) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO blackout_dates (date, reason)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := r.dbpool.QueryRowContext(ctx, query, bd.Date, bd.Reason).Scan(&bd.ID, &bd.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetBlackoutDate(ctx context.Context, id int64) (*domain.BlackoutDate, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT date, reason, created_at FROM blackout_dates WHERE id = $1`

	bd := &domain.BlackoutDate{ID: id}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&bd.Date, &bd.Reason, &bd.CreatedAt); err != nil {
		return nil, err
	}

	return bd, nil
}

func (r *Repository) DeleteBlackoutDate(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `DELETE FROM blackout_dates WHERE id = $1`
	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
