package booking

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

const (
	defaultPerPage = 20
	maxPerPage     = 200
	// keeps (page-1)*perPage far from overflowing the SQL offset
	maxPage = 1_000_000
)

// Cancel marks a booking cancelled. The row stays locked while its status is
// checked, so two concurrent cancels cannot both succeed. Cancelling twice returns
// ErrAlreadyCancelled and leaves cancelled_at untouched.
func (s *Service) Cancel(ctx context.Context, id int64, notify bool) (*domain.Booking, error) {
	var cancelled *domain.Booking
	err := s.store.InTx(ctx, func(ctx context.Context, tx LockedTx) error {
		b, err := tx.GetBookingForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.Status == domain.BookingStatusCancelled {
			return ErrAlreadyCancelled
		}

		at := s.now()
		if err := tx.CancelBooking(ctx, id, at); err != nil {
			return err
		}
		b.Status = domain.BookingStatusCancelled
		b.CancelledAt = &at
		cancelled = b
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyCancelled):
		return nil, err
	default:
		return nil, systemError(err)
	}

	s.logger.Info("booking cancelled", "reference", cancelled.Reference, "notify", notify)

	if notify {
		s.notify(ctx, domain.MailTypeCancellation, cancelled.Email, cancelled)
	}
	s.notifyAdmins(ctx, domain.RecipientCancellation, cancelled)

	return cancelled, nil
}

// UpdateNotes replaces the admin notes of a booking.
func (s *Service) UpdateNotes(ctx context.Context, id int64, notes string) error {
	if err := s.store.UpdateBookingNotes(ctx, id, truncate(notes, maxNotesLength)); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.store.GetBookingByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return b, nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	b, err := s.store.GetBookingByReference(ctx, reference)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return b, nil
}

// BookingsOn lists the confirmed bookings of one tour date, ordered by time.
func (s *Service) BookingsOn(ctx context.Context, d domain.Date) ([]*domain.Booking, error) {
	bookings, err := s.store.GetConfirmedBookingsOn(ctx, d)
	if err != nil {
		return nil, systemError(err)
	}
	return bookings, nil
}

// ResendConfirmation queues the confirmation mail of a booking again.
func (s *Service) ResendConfirmation(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.notifier == nil {
		return nil, systemError(errors.New("no notifier configured"))
	}
	msg := domain.MailMessage{Type: domain.MailTypeConfirmation, To: b.Email, Data: b}
	if err := s.notifier.Publish(ctx, msg); err != nil {
		return nil, systemError(err)
	}
	return b, nil
}

// NormalizeFilter fills in paging defaults and clamps paging values.
func NormalizeFilter(f domain.BookingFilter) domain.BookingFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > maxPage {
		f.Page = maxPage
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	return f
}

// List returns one page of bookings. Counts here cover every status and say nothing
// about live availability.
func (s *Service) List(ctx context.Context, f domain.BookingFilter) (*domain.BookingPage, error) {
	f = NormalizeFilter(f)
	rows, total, err := s.store.ListBookings(ctx, f)
	if err != nil {
		return nil, systemError(err)
	}

	pages := total / int64(f.PerPage)
	if total%int64(f.PerPage) != 0 {
		pages++
	}
	return &domain.BookingPage{Rows: rows, Total: total, Pages: pages}, nil
}

func (s *Service) Statistics(ctx context.Context, from, to *domain.Date) (*domain.BookingStatistics, error) {
	stats, err := s.store.GetBookingStatistics(ctx, from, to)
	if err != nil {
		return nil, systemError(err)
	}

	if stats.Total > 0 {
		stats.CancellationRate = round1(float64(stats.Cancelled) / float64(stats.Total) * 100)
	} else {
		stats.CancellationRate = 0
	}
	stats.AvgGroupSize = round1(stats.AvgGroupSize)
	if stats.PopularTimes == nil {
		stats.PopularTimes = []domain.PopularTime{}
	}
	return stats, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var exportHeader = []string{
	"Reference",
	"Date",
	"Time",
	"Name",
	"Email",
	"Phone",
	"Adults",
	"Children",
	"Child Name",
	"Year Level",
	"Special Requirements",
	"Status",
	"Created At",
}

// ExportCSV writes every booking matching f, ignoring pagination.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, f domain.BookingFilter) error {
	rows, err := s.store.ListAllBookings(ctx, f)
	if err != nil {
		return systemError(err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, b := range rows {
		record := []string{
			b.Reference,
			b.TourDate.String(),
			b.TourTime,
			b.ParentName,
			b.Email,
			b.Phone,
			strconv.Itoa(int(b.Adults)),
			strconv.Itoa(int(b.Children)),
			b.ChildName,
			b.YearLevel,
			b.SpecialRequirements,
			string(b.Status),
			b.CreatedAt.Format(time.DateTime),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func wrapStoreError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return systemError(err)
}
