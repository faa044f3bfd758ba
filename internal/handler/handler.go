package handler

import (
	"context"
	"io"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/booking"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/config"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

// Repository is the staff-managed configuration the admin routes edit.
type Repository interface {
	GetAllScheduleTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error)
	GetScheduleTemplate(ctx context.Context, id int64) (*domain.ScheduleTemplate, error)
	CreateScheduleTemplate(ctx context.Context, st *domain.ScheduleTemplate) error
	UpdateScheduleTemplate(ctx context.Context, st *domain.ScheduleTemplate) error
	DeleteScheduleTemplate(ctx context.Context, id int64) error

	GetAllBlackoutDates(ctx context.Context) ([]*domain.BlackoutDate, error)
	GetBlackoutDate(ctx context.Context, id int64) (*domain.BlackoutDate, error)
	CreateBlackoutDate(ctx context.Context, bd *domain.BlackoutDate) error
	DeleteBlackoutDate(ctx context.Context, id int64) error

	GetAllExclusionPeriods(ctx context.Context) ([]*domain.ExclusionPeriod, error)
	GetExclusionPeriod(ctx context.Context, id int64) (*domain.ExclusionPeriod, error)
	CreateExclusionPeriod(ctx context.Context, ep *domain.ExclusionPeriod) error
	UpdateExclusionPeriod(ctx context.Context, ep *domain.ExclusionPeriod) error
	DeleteExclusionPeriod(ctx context.Context, id int64) error

	GetAllNotificationRecipients(ctx context.Context) ([]*domain.NotificationRecipient, error)
	UpsertNotificationRecipient(ctx context.Context, nr *domain.NotificationRecipient) error
	DeleteNotificationRecipient(ctx context.Context, id int64) error
}

type Availability interface {
	AvailableDates(ctx context.Context, policy domain.BookingPolicy) ([]domain.AvailableDate, error)
	SlotsFor(ctx context.Context, d domain.Date, policy domain.BookingPolicy) ([]domain.Slot, error)
}

type Bookings interface {
	Create(ctx context.Context, policy domain.BookingPolicy, in booking.Input) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, notify bool) (*domain.Booking, error)
	UpdateNotes(ctx context.Context, id int64, notes string) error
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	ResendConfirmation(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) (*domain.BookingPage, error)
	Statistics(ctx context.Context, from, to *domain.Date) (*domain.BookingStatistics, error)
	ExportCSV(ctx context.Context, w io.Writer, f domain.BookingFilter) error
}

// Limiter reports whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	policy       domain.BookingPolicy
	repository   Repository
	availability Availability
	bookings     Bookings
	limiter      Limiter
	translator   ut.Translator
	now          func() time.Time

	Mux *chi.Mux
}

// NewHandler wires the HTTP layer. limiter may be nil, which disables rate limiting.
func NewHandler(cfg *config.Config, repo Repository, avail Availability, bookings Bookings, limiter Limiter) (*Handler, error) {
	policy, err := cfg.BookingPolicy()
	if err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		policy:       policy,
		repository:   repo,
		availability: avail,
		bookings:     bookings,
		limiter:      limiter,
		translator:   trans,
		now:          time.Now,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// public booking form
	h.Mux.Route("/availability", func(r chi.Router) {
		r.Get("/", h.GetAvailableDates)
		r.Get("/{date}", h.GetAvailableSlots)
	})

	// staff only
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.RequiredRole(RoleAdmin))

		r.Route("/schedule-templates", func(r chi.Router) {
			r.Post("/", h.CreateScheduleTemplate)
			r.Get("/", h.GetAllScheduleTemplates)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.scheduleTemplate)
				r.Get("/", h.GetScheduleTemplate)
				r.Patch("/", h.UpdateScheduleTemplate)
				r.Delete("/", h.DeleteScheduleTemplate)
			})
		})

		r.Route("/blackout-dates", func(r chi.Router) {
			r.Post("/", h.CreateBlackoutDate)
			r.Get("/", h.GetAllBlackoutDates)
			r.With(h.blackoutDate).Delete("/{id}", h.DeleteBlackoutDate)
		})

		r.Route("/exclusion-periods", func(r chi.Router) {
			r.Post("/", h.CreateExclusionPeriod)
			r.Get("/", h.GetAllExclusionPeriods)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.exclusionPeriod)
				r.Get("/", h.GetExclusionPeriod)
				r.Patch("/", h.UpdateExclusionPeriod)
				r.Delete("/", h.DeleteExclusionPeriod)
			})
		})

		r.Route("/notification-recipients", func(r chi.Router) {
			r.Put("/", h.UpsertNotificationRecipient)
			r.Get("/", h.GetAllNotificationRecipients)
			r.Delete("/{id}", h.DeleteNotificationRecipient)
		})
	})

	h.Mux.Route("/bookings", func(r chi.Router) {
		r.With(h.rateLimit).Post("/", h.SubmitBooking)

		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Use(h.RequiredRole(RoleAdmin))

			r.Get("/", h.GetBookings)
			r.Get("/export", h.ExportBookings)
			r.Get("/statistics", h.GetBookingStatistics)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.bookingID)
				r.Get("/", h.GetBooking)
				r.Post("/cancel", h.CancelBooking)
				r.Patch("/notes", h.UpdateBookingNotes)
				r.Post("/resend-confirmation", h.ResendConfirmation)
			})
		})
	})
}
