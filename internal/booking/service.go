// Package booking creates bookings against live availability and manages them
// afterwards.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/availability"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/utils"
)

// SlotTx is the view of a transaction that holds the lock of one tour slot.
type SlotTx interface {
	availability.SlotReader
	BookingReferenceExists(ctx context.Context, reference string) (bool, error)
	// InsertBooking returns ErrReferenceTaken on a duplicate reference.
	InsertBooking(ctx context.Context, b *domain.Booking) error
}

// LockedTx is a transaction in which bookings can be locked and cancelled.
type LockedTx interface {
	GetBookingForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int64, at time.Time) error
}

// Store reports missing rows as ErrNotFound.
type Store interface {
	InSlotTx(ctx context.Context, d domain.Date, tod string, fn func(ctx context.Context, tx SlotTx) error) error
	InTx(ctx context.Context, fn func(ctx context.Context, tx LockedTx) error) error

	GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error)
	GetConfirmedBookingsOn(ctx context.Context, d domain.Date) ([]*domain.Booking, error)
	UpdateBookingNotes(ctx context.Context, id int64, notes string) error
	ListBookings(ctx context.Context, f domain.BookingFilter) ([]*domain.Booking, int64, error)
	ListAllBookings(ctx context.Context, f domain.BookingFilter) ([]*domain.Booking, error)
	GetBookingStatistics(ctx context.Context, from, to *domain.Date) (*domain.BookingStatistics, error)
	GetRecipientEmails(ctx context.Context, kind domain.RecipientKind) ([]string, error)
}

// Notifier hands a mail event to the delivery collaborator.
type Notifier interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Service struct {
	store         Store
	notifier      Notifier
	validate      *validator.Validate
	logger        *slog.Logger
	adminFallback string

	now       func() time.Time
	newSuffix func() string
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReferenceSuffix replaces the random reference suffix generator.
func WithReferenceSuffix(fn func() string) Option {
	return func(s *Service) { s.newSuffix = fn }
}

// WithAdminFallback sets the address that receives new-booking mail when no
// recipient has opted in.
func WithAdminFallback(email string) Option {
	return func(s *Service) { s.adminFallback = email }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(store Store, notifier Notifier, validate *validator.Validate, opts ...Option) *Service {
	s := &Service{
		store:     store,
		notifier:  notifier,
		validate:  validate,
		logger:    slog.Default(),
		now:       time.Now,
		newSuffix: utils.GenerateReferenceSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in and books the requested slot. It returns a *ValidationError,
// an *availability.SlotUnavailableError, or an error wrapping ErrSystem.
func (s *Service) Create(ctx context.Context, policy domain.BookingPolicy, in Input) (*domain.Booking, error) {
	req, err := validateInput(s.validate, policy, in)
	if err != nil {
		return nil, err
	}

	b := req.booking()
	err = s.store.InSlotTx(ctx, req.date, req.time, func(ctx context.Context, tx SlotTx) error {
		st, err := availability.CheckSlot(ctx, tx, policy, s.now(), req.date, req.time)
		if err != nil {
			return err
		}
		b.ScheduleTemplateID = &st.ID

		return s.insertWithReference(ctx, policy.ReferencePrefix, tx, b)
	})
	if err != nil {
		var unavailable *availability.SlotUnavailableError
		if errors.As(err, &unavailable) {
			return nil, unavailable
		}
		return nil, systemError(err)
	}

	s.logger.Info("booking created", "reference", b.Reference, "date", b.TourDate.String(), "time", b.TourTime, "group_size", b.GroupSize())

	s.notify(ctx, domain.MailTypeConfirmation, b.Email, b)
	s.notifyAdmins(ctx, domain.RecipientNewBooking, b)

	return b, nil
}

func (s *Service) notify(ctx context.Context, typ domain.MailType, to string, b *domain.Booking) {
	if s.notifier == nil || to == "" {
		return
	}
	msg := domain.MailMessage{Type: typ, To: to, Data: b}
	if err := s.notifier.Publish(ctx, msg); err != nil {
		s.logger.Error("notification failed", "type", typ, "to", to, "reference", b.Reference, "error", err)
	}
}

func (s *Service) notifyAdmins(ctx context.Context, kind domain.RecipientKind, b *domain.Booking) {
	recipients, err := s.store.GetRecipientEmails(ctx, kind)
	if err != nil {
		s.logger.Error("failed to load notification recipients", "reference", b.Reference, "error", err)
		return
	}

	typ := domain.MailTypeAdminNew
	if kind == domain.RecipientCancellation {
		typ = domain.MailTypeAdminCancelled
	}
	if len(recipients) == 0 && kind == domain.RecipientNewBooking && s.adminFallback != "" {
		recipients = []string{s.adminFallback}
	}

	for _, to := range recipients {
		s.notify(ctx, typ, to, b)
	}
}
