package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/booking"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/config"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

const testSecret = "test-secret"

// fakeRepository only implements what a test sets up; anything else panics
// through the nil embedded interface.
type fakeRepository struct {
	Repository

	templates map[int64]*domain.ScheduleTemplate
	created   []*domain.ScheduleTemplate
	blackouts []*domain.BlackoutDate
	createErr error
}

func (f *fakeRepository) GetScheduleTemplate(_ context.Context, id int64) (*domain.ScheduleTemplate, error) {
	st, ok := f.templates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *st
	return &cp, nil
}

func (f *fakeRepository) CreateScheduleTemplate(_ context.Context, st *domain.ScheduleTemplate) error {
	if f.createErr != nil {
		return f.createErr
	}
	st.ID = int64(len(f.created) + 1)
	f.created = append(f.created, st)
	return nil
}

func (f *fakeRepository) UpdateScheduleTemplate(_ context.Context, st *domain.ScheduleTemplate) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.templates[st.ID] = st
	return nil
}

func (f *fakeRepository) CreateBlackoutDate(_ context.Context, bd *domain.BlackoutDate) error {
	if f.createErr != nil {
		return f.createErr
	}
	bd.ID = int64(len(f.blackouts) + 1)
	f.blackouts = append(f.blackouts, bd)
	return nil
}

type fakeAvailability struct {
	slots  []domain.Slot
	asked  domain.Date
	policy domain.BookingPolicy
}

func (f *fakeAvailability) AvailableDates(_ context.Context, policy domain.BookingPolicy) ([]domain.AvailableDate, error) {
	f.policy = policy
	return []domain.AvailableDate{{Date: f.asked, Slots: f.slots}}, nil
}

func (f *fakeAvailability) SlotsFor(_ context.Context, d domain.Date, policy domain.BookingPolicy) ([]domain.Slot, error) {
	f.asked = d
	f.policy = policy
	return f.slots, nil
}

type fakeBookings struct {
	Bookings

	created   *booking.Input
	createErr error

	cancelledID int64
	notify      bool
	cancelErr   error

	notes string

	filter domain.BookingFilter
	csv    string
}

func (f *fakeBookings) Create(_ context.Context, _ domain.BookingPolicy, in booking.Input) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &in
	return &domain.Booking{ID: 1, Reference: "CVS-ABC123", Email: in.Email, Status: domain.BookingStatusConfirmed}, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id int64, notify bool) (*domain.Booking, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	f.cancelledID = id
	f.notify = notify
	return &domain.Booking{ID: id, Status: domain.BookingStatusCancelled}, nil
}

func (f *fakeBookings) UpdateNotes(_ context.Context, _ int64, notes string) error {
	f.notes = notes
	return nil
}

func (f *fakeBookings) List(_ context.Context, filter domain.BookingFilter) (*domain.BookingPage, error) {
	f.filter = filter
	return &domain.BookingPage{Rows: []*domain.Booking{}, Total: 0, Pages: 0}, nil
}

func (f *fakeBookings) ExportCSV(_ context.Context, w io.Writer, filter domain.BookingFilter) error {
	f.filter = filter
	_, err := io.WriteString(w, f.csv)
	return err
}

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

type testEnv struct {
	handler  *Handler
	repo     *fakeRepository
	avail    *fakeAvailability
	bookings *fakeBookings
	limiter  *fakeLimiter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.Booking.Enabled = true
	cfg.Booking.MinGroupSize = 1
	cfg.Booking.MaxGroupSize = 6
	cfg.Booking.AdvanceDays = 60
	cfg.Booking.ReferencePrefix = "CVS"
	cfg.Booking.Timezone = "UTC"
	cfg.RateLimit.Enabled = true

	env := &testEnv{
		repo:     &fakeRepository{templates: map[int64]*domain.ScheduleTemplate{}},
		avail:    &fakeAvailability{},
		bookings: &fakeBookings{},
		limiter:  &fakeLimiter{allow: true},
	}

	h, err := NewHandler(cfg, env.repo, env.avail, env.bookings, env.limiter)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	h.now = func() time.Time { return time.Date(2025, time.March, 2, 12, 0, 0, 0, time.UTC) }
	h.RegisterRoutes()
	env.handler = h
	return env
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	now := time.Date(2025, time.March, 2, 12, 0, 0, 0, time.UTC)
	token, err := IssueToken(testSecret, "staff@school.example", role, time.Hour, now)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "203.0.113.7:54321"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.Mux.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, env
}
