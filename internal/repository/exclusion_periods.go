package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

// Periods are returned in a stable order because the first matching period wins.
func getAllExclusionPeriods(ctx context.Context, q querier) ([]*domain.ExclusionPeriod, error) {
	query := `
		SELECT id, name, start_date, end_date, recurring_yearly, created_at, version
		FROM exclusion_periods
		ORDER BY start_date, id
	`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	eps := make([]*domain.ExclusionPeriod, 0)
	for rows.Next() {
		ep := &domain.ExclusionPeriod{}
		dst := []any{&ep.ID, &ep.Name, &ep.StartDate, &ep.EndDate, &ep.RecurringYearly, &ep.CreatedAt, &ep.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		eps = append(eps, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return eps, nil
}

func (r *Repository) GetAllExclusionPeriods(ctx context.Context) ([]*domain.ExclusionPeriod, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return getAllExclusionPeriods(ctx, r.dbpool)
}

func (tx *Tx) GetAllExclusionPeriods(ctx context.Context) ([]*domain.ExclusionPeriod, error) {
	return getAllExclusionPeriods(ctx, tx.tx)
}

func (r *Repository) GetExclusionPeriod(ctx context.Context, id int64) (*domain.ExclusionPeriod, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT name, start_date, end_date, recurring_yearly, created_at, version
		FROM exclusion_periods
		WHERE id = $1
	`

	ep := &domain.ExclusionPeriod{ID: id}
	dst := []any{&ep.Name, &ep.StartDate, &ep.EndDate, &ep.RecurringYearly, &ep.CreatedAt, &ep.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return ep, nil
}

func (r *Repository) CreateExclusionPeriod(ctx context.Context, ep *domain.ExclusionPeriod) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO exclusion_periods (name, start_date, end_date, recurring_yearly)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`
	params := []any{ep.Name, ep.StartDate, ep.EndDate, ep.RecurringYearly}
	dst := []any{&ep.ID, &ep.CreatedAt, &ep.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// UpdateExclusionPeriod returns sql.ErrNoRows when ep.Version is stale.
func (r *Repository) UpdateExclusionPeriod(ctx context.Context, ep *domain.ExclusionPeriod) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE exclusion_periods
		SET
			name = $1,
			start_date = $2,
			end_date = $3,
			recurring_yearly = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`
	params := []any{ep.Name, ep.StartDate, ep.EndDate, ep.RecurringYearly, ep.ID, ep.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&ep.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteExclusionPeriod(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `DELETE FROM exclusion_periods WHERE id = $1`
	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
