package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

const scheduleTemplateColumns = `
	id,
	kind,
	day_of_week,
	specific_date,
	to_char(time_of_day, 'HH24:MI:SS'),
	max_groups,
	is_active,
	created_at,
	version
`

func scanScheduleTemplate(scan func(dst ...any) error) (*domain.ScheduleTemplate, error) {
	st := &domain.ScheduleTemplate{}
	dst := []any{
		&st.ID,
		&st.Kind,
		&st.DayOfWeek,
		&st.SpecificDate,
		&st.TimeOfDay,
		&st.MaxGroups,
		&st.IsActive,
		&st.CreatedAt,
		&st.Version,
	}
	if err := scan(dst...); err != nil {
		return nil, err
	}
	return st, nil
}

func getScheduleTemplates(ctx context.Context, q querier, activeOnly bool) ([]*domain.ScheduleTemplate, error) {
	query := `SELECT ` + scheduleTemplateColumns + ` FROM schedule_templates`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sts := make([]*domain.ScheduleTemplate, 0)
	for rows.Next() {
		st, err := scanScheduleTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		sts = append(sts, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sts, nil
}

func (r *Repository) GetAllScheduleTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return getScheduleTemplates(ctx, r.dbpool, false)
}

func (r *Repository) GetActiveScheduleTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return getScheduleTemplates(ctx, r.dbpool, true)
}

func (tx *Tx) GetActiveScheduleTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error) {
	return getScheduleTemplates(ctx, tx.tx, true)
}

func (r *Repository) GetScheduleTemplate(ctx context.Context, id int64) (*domain.ScheduleTemplate, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + scheduleTemplateColumns + ` FROM schedule_templates WHERE id = $1`
	return scanScheduleTemplate(r.dbpool.QueryRowContext(ctx, query, id).Scan)
}

func (r *Repository) CreateScheduleTemplate(ctx context.Context, st *domain.ScheduleTemplate) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO schedule_templates (kind, day_of_week, specific_date, time_of_day, max_groups, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`
	params := []any{st.Kind, st.DayOfWeek, st.SpecificDate, st.TimeOfDay, st.MaxGroups, st.IsActive}
	dst := []any{&st.ID, &st.CreatedAt, &st.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// UpdateScheduleTemplate returns sql.ErrNoRows when st.Version is stale.
func (r *Repository) UpdateScheduleTemplate(ctx context.Context, st *domain.ScheduleTemplate) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE schedule_templates
		SET
			kind = $1,
			day_of_week = $2,
			specific_date = $3,
			time_of_day = $4,
			max_groups = $5,
			is_active = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`
	params := []any{st.Kind, st.DayOfWeek, st.SpecificDate, st.TimeOfDay, st.MaxGroups, st.IsActive, st.ID, st.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&st.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteScheduleTemplate(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `DELETE FROM schedule_templates WHERE id = $1`
	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
