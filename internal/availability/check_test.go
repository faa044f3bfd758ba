package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

func TestCheckSlot(t *testing.T) {
	store := &fakeStore{
		templates: []*domain.ScheduleTemplate{
			recurring(1, time.Monday, "10:00:00", 2),
			recurring(2, time.Monday, "10:10:00", 2),
			recurring(3, time.Monday, "14:00:00", 1),
			oneOff(4, monday.AddDays(2), "10:00:00", 2),
		},
		blackouts: []*domain.BlackoutDate{{ID: 1, Date: monday.AddDays(7), Reason: "Staff day"}},
		periods: []*domain.ExclusionPeriod{{
			ID:        1,
			Name:      "Easter break",
			StartDate: monday.AddDays(14),
			EndDate:   monday.AddDays(20),
		}},
		counts: map[domain.SlotKey]int{
			{Date: monday, Time: "14:00:00"}: 1,
		},
	}
	// Monday 10:05 local time.
	now := monday.In(time.UTC).Add(10*time.Hour + 5*time.Minute)

	disabled := policy()
	disabled.Enabled = false

	tests := []struct {
		name   string
		policy domain.BookingPolicy
		d      domain.Date
		tod    string
		want   Reason
		wantID int64
	}{
		{name: "disabled", policy: disabled, d: monday, tod: "10:10:00", want: ReasonDisabled},
		{name: "past date", policy: policy(), d: monday.AddDays(-7), tod: "10:00:00", want: ReasonPast},
		{name: "already passed today", policy: policy(), d: monday, tod: "10:00:00", want: ReasonPassed},
		{name: "later today", policy: policy(), d: monday, tod: "10:10:00", wantID: 2},
		{name: "beyond window", policy: policy(), d: monday.AddDays(21), tod: "10:00:00", want: ReasonOutOfWindow},
		{name: "blackout", policy: policy(), d: monday.AddDays(7), tod: "10:00:00", want: ReasonBlackout},
		{name: "excluded", policy: policy(), d: monday.AddDays(14), tod: "10:00:00", want: ReasonExcluded},
		{name: "unknown time", policy: policy(), d: monday.AddDays(1), tod: "10:00:00", want: ReasonNotFound},
		{name: "one-off", policy: policy(), d: monday.AddDays(2), tod: "10:00:00", wantID: 4},
		{name: "full", policy: policy(), d: monday, tod: "14:00:00", want: ReasonFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := CheckSlot(context.Background(), store, tt.policy, now, tt.d, tt.tod)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if st.ID != tt.wantID {
					t.Fatalf("template id = %d, want %d", st.ID, tt.wantID)
				}
				return
			}

			var unavailable *SlotUnavailableError
			if !errors.As(err, &unavailable) {
				t.Fatalf("expected SlotUnavailableError, got %v", err)
			}
			if unavailable.Reason != tt.want {
				t.Fatalf("reason = %s, want %s (%s)", unavailable.Reason, tt.want, unavailable.Message)
			}
		})
	}
}

func TestCheckSlot_ExcludedMessageNamesPeriod(t *testing.T) {
	store := &fakeStore{
		templates: []*domain.ScheduleTemplate{recurring(1, time.Monday, "10:00:00", 2)},
		periods: []*domain.ExclusionPeriod{{
			Name:      "Easter break",
			StartDate: monday,
			EndDate:   monday.AddDays(3),
		}},
	}

	_, err := CheckSlot(context.Background(), store, policy(), monday.In(time.UTC), monday, "10:00:00")
	want := "This date falls within Easter break and is not available for bookings."
	if err == nil || err.Error() != want {
		t.Fatalf("error = %v, want %q", err, want)
	}
}
