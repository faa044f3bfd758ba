// Package reminder sends the "tour coming up" mail to families a few days
// before their visit.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

type BookingSource interface {
	BookingsOn(ctx context.Context, d domain.Date) ([]*domain.Booking, error)
}

// Claimer records which bookings already got their reminder.
type Claimer interface {
	// Claim reports false when the reference was claimed before.
	Claim(ctx context.Context, reference string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, reference string) error
}

type Notifier interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Job struct {
	bookings   BookingSource
	claimer    Claimer
	notifier   Notifier
	daysBefore int
	logger     *slog.Logger
}

func NewJob(bookings BookingSource, claimer Claimer, notifier Notifier, daysBefore int, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{
		bookings:   bookings,
		claimer:    claimer,
		notifier:   notifier,
		daysBefore: daysBefore,
		logger:     logger,
	}
}

// Run queues one reminder per confirmed booking on the target day and returns
// how many were queued.
func (j *Job) Run(ctx context.Context, policy domain.BookingPolicy, now time.Time) (int, error) {
	target := policy.Today(now).AddDays(j.daysBefore)

	bookings, err := j.bookings.BookingsOn(ctx, target)
	if err != nil {
		return 0, fmt.Errorf("load bookings on %s: %w", target, err)
	}

	// keys live until two days after the tour
	loc := policy.Location
	if loc == nil {
		loc = time.UTC
	}
	ttl := target.AddDays(2).In(loc).Sub(now)

	sent := 0
	for _, b := range bookings {
		if b.Status != domain.BookingStatusConfirmed {
			continue
		}

		ok, err := j.claimer.Claim(ctx, b.Reference, ttl)
		if err != nil {
			j.logger.Error("failed to claim reminder", slog.String("reference", b.Reference), slog.String("error", err.Error()))
			continue
		}
		if !ok {
			continue
		}

		msg := domain.MailMessage{Type: domain.MailTypeReminder, To: b.Email, Data: b}
		if err := j.notifier.Publish(ctx, msg); err != nil {
			j.logger.Error("failed to publish reminder", slog.String("reference", b.Reference), slog.String("error", err.Error()))
			if err := j.claimer.Release(ctx, b.Reference); err != nil {
				j.logger.Error("failed to release reminder claim", slog.String("reference", b.Reference), slog.String("error", err.Error()))
			}
			continue
		}
		sent++
	}

	j.logger.Info("reminders queued", slog.String("date", target.String()), slog.Int("count", sent))
	return sent, nil
}
