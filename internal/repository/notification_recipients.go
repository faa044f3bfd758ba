package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

func (r *Repository) GetAllNotificationRecipients(ctx context.Context) ([]*domain.NotificationRecipient, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT id, email, notify_new_booking, notify_cancellation, created_at
		FROM notification_recipients
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nrs := make([]*domain.NotificationRecipient, 0)
	for rows.Next() {
		nr := &domain.NotificationRecipient{}
		dst := []any{&nr.ID, &nr.Email, &nr.NotifyNewBooking, &nr.NotifyCancellation, &nr.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		nrs = append(nrs, nr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return nrs, nil
}

// GetRecipientEmails lists the addresses that opted in to the given kind of mail.
func (r *Repository) GetRecipientEmails(ctx context.Context, kind domain.RecipientKind) ([]string, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT email FROM notification_recipients WHERE notify_new_booking ORDER BY id`
	if kind == domain.RecipientCancellation {
		query = `SELECT email FROM notification_recipients WHERE notify_cancellation ORDER BY id`
	}

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return emails, nil
}

// UpsertNotificationRecipient keys recipients by email.
func (r *Repository) UpsertNotificationRecipient(ctx context.Context, nr *domain.NotificationRecipient) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO notification_recipients (email, notify_new_booking, notify_cancellation)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT notification_recipients_email_key DO UPDATE
		SET notify_new_booking = EXCLUDED.notify_new_booking,
			notify_cancellation = EXCLUDED.notify_cancellation
		RETURNING id, created_at
	`
	params := []any{nr.Email, nr.NotifyNewBooking, nr.NotifyCancellation}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&nr.ID, &nr.CreatedAt); err != nil {
		return err
	}

	return nil
}

// DeleteNotificationRecipient returns sql.ErrNoRows when no recipient has the id.
func (r *Repository) DeleteNotificationRecipient(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var deleted int64
	query := `DELETE FROM notification_recipients WHERE id = $1 RETURNING id`
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&deleted); err != nil {
		return err
	}

	return nil
}
