package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

type fakeBookings struct {
	asked    domain.Date
	bookings []*domain.Booking
	err      error
}

func (f *fakeBookings) BookingsOn(_ context.Context, d domain.Date) ([]*domain.Booking, error) {
	f.asked = d
	return f.bookings, f.err
}

type fakeClaimer struct {
	claimed map[string]time.Duration
	fail    string
}

func newFakeClaimer() *fakeClaimer {
	return &fakeClaimer{claimed: make(map[string]time.Duration)}
}

func (f *fakeClaimer) Claim(_ context.Context, reference string, ttl time.Duration) (bool, error) {
	if reference == f.fail {
		return false, errors.New("redis down")
	}
	if _, ok := f.claimed[reference]; ok {
		return false, nil
	}
	f.claimed[reference] = ttl
	return true, nil
}

func (f *fakeClaimer) Release(_ context.Context, reference string) error {
	delete(f.claimed, reference)
	return nil
}

type fakeNotifier struct {
	sent []domain.MailMessage
	fail string
}

func (f *fakeNotifier) Publish(_ context.Context, msg domain.MailMessage) error {
	if msg.Data.Reference == f.fail {
		return errors.New("broker down")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func confirmed(ref, email string) *domain.Booking {
	return &domain.Booking{
		Reference: ref,
		Email:     email,
		TourDate:  domain.NewDate(2025, time.March, 5),
		TourTime:  "09:00:00",
		Status:    domain.BookingStatusConfirmed,
	}
}

var (
	policy = domain.BookingPolicy{Enabled: true, Location: time.UTC}
	now    = time.Date(2025, time.March, 3, 7, 0, 0, 0, time.UTC)
	quiet  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func TestRun(t *testing.T) {
	cancelled := confirmed("CVS-CCCCCC", "c@example.com")
	cancelled.Status = domain.BookingStatusCancelled

	source := &fakeBookings{bookings: []*domain.Booking{
		confirmed("CVS-AAAAAA", "a@example.com"),
		confirmed("CVS-BBBBBB", "b@example.com"),
		cancelled,
	}}
	claimer := newFakeClaimer()
	notifier := &fakeNotifier{}
	job := NewJob(source, claimer, notifier, 2, quiet)

	sent, err := job.Run(context.Background(), policy, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if want := domain.NewDate(2025, time.March, 5); !source.asked.Equal(want) {
		t.Fatalf("asked for %s, want %s", source.asked, want)
	}
	for _, msg := range notifier.sent {
		if msg.Type != domain.MailTypeReminder {
			t.Errorf("type = %s, want reminder", msg.Type)
		}
	}
	// until 2025-03-07 00:00 UTC
	if got, want := claimer.claimed["CVS-AAAAAA"], 89*time.Hour; got != want {
		t.Errorf("ttl = %s, want %s", got, want)
	}

	// a second run on the same day sends nothing
	sent, err = job.Run(context.Background(), policy, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if sent != 0 {
		t.Fatalf("second run sent %d, want 0", sent)
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("total sent = %d, want 2", len(notifier.sent))
	}
}

func TestRun_PublishFailureReleasesClaim(t *testing.T) {
	source := &fakeBookings{bookings: []*domain.Booking{confirmed("CVS-AAAAAA", "a@example.com")}}
	claimer := newFakeClaimer()
	notifier := &fakeNotifier{fail: "CVS-AAAAAA"}
	job := NewJob(source, claimer, notifier, 2, quiet)

	sent, err := job.Run(context.Background(), policy, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}
	if _, ok := claimer.claimed["CVS-AAAAAA"]; ok {
		t.Fatal("claim was kept after a failed publish")
	}

	notifier.fail = ""
	if sent, _ := job.Run(context.Background(), policy, now); sent != 1 {
		t.Fatalf("retry sent = %d, want 1", sent)
	}
}

func TestRun_ClaimErrorSkipsBooking(t *testing.T) {
	source := &fakeBookings{bookings: []*domain.Booking{
		confirmed("CVS-AAAAAA", "a@example.com"),
		confirmed("CVS-BBBBBB", "b@example.com"),
	}}
	claimer := newFakeClaimer()
	claimer.fail = "CVS-AAAAAA"
	notifier := &fakeNotifier{}

	sent, err := NewJob(source, claimer, notifier, 2, quiet).Run(context.Background(), policy, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sent != 1 || notifier.sent[0].To != "b@example.com" {
		t.Fatalf("sent = %d (%v), want only b@example.com", sent, notifier.sent)
	}
}

func TestRun_LoadError(t *testing.T) {
	source := &fakeBookings{err: errors.New("db down")}
	if _, err := NewJob(source, newFakeClaimer(), &fakeNotifier{}, 2, quiet).Run(context.Background(), policy, now); err == nil {
		t.Fatal("expected an error")
	}
}
