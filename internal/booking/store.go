package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/repository"
)

// PostgresStore adapts *repository.Repository to Store.
type PostgresStore struct {
	*repository.Repository
}

func NewPostgresStore(repo *repository.Repository) *PostgresStore {
	return &PostgresStore{Repository: repo}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) InSlotTx(ctx context.Context, d domain.Date, tod string, fn func(ctx context.Context, tx SlotTx) error) error {
	return s.Repository.InSlotTx(ctx, d, tod, func(ctx context.Context, tx *repository.Tx) error {
		return fn(ctx, slotTx{tx})
	})
}

type slotTx struct {
	*repository.Tx
}

func (t slotTx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	err := t.Tx.InsertBooking(ctx, b)
	if errors.Is(err, repository.ErrDuplicateReference) {
		return ErrReferenceTaken
	}
	return err
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, tx LockedTx) error) error {
	return s.Repository.WithTx(ctx, func(ctx context.Context, tx *repository.Tx) error {
		return fn(ctx, lockedTx{tx})
	})
}

type lockedTx struct {
	tx *repository.Tx
}

func (t lockedTx) GetBookingForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := t.tx.GetBookingForUpdate(ctx, id)
	return b, notFound(err)
}

func (t lockedTx) CancelBooking(ctx context.Context, id int64, at time.Time) error {
	return t.tx.CancelBooking(ctx, id, at)
}

func (s *PostgresStore) GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.Repository.GetBookingByID(ctx, id)
	return b, notFound(err)
}

func (s *PostgresStore) GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	b, err := s.Repository.GetBookingByReference(ctx, reference)
	return b, notFound(err)
}

func (s *PostgresStore) UpdateBookingNotes(ctx context.Context, id int64, notes string) error {
	return notFound(s.Repository.UpdateBookingNotes(ctx, id, notes))
}
