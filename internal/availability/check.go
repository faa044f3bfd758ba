package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

type Reason string

const (
	ReasonDisabled    Reason = "disabled"
	ReasonPast        Reason = "past"
	ReasonPassed      Reason = "passed"
	ReasonOutOfWindow Reason = "out_of_window"
	ReasonBlackout    Reason = "blackout"
	ReasonExcluded    Reason = "excluded"
	ReasonNotFound    Reason = "not_found"
	ReasonFull        Reason = "full"
)

// SlotUnavailableError reports why a (date, time) cannot be booked right now.
type SlotUnavailableError struct {
	Reason  Reason
	Message string
}

func (e *SlotUnavailableError) Error() string {
	return e.Message
}

func unavailable(reason Reason, msg string) *SlotUnavailableError {
	return &SlotUnavailableError{Reason: reason, Message: msg}
}

// SlotReader is what a slot check needs. Inside a booking transaction it is backed
// by the transaction so the count is read under the slot lock.
type SlotReader interface {
	ConfigReader
	CountConfirmedBookings(ctx context.Context, d domain.Date, tod string) (int, error)
}

// CheckSlot validates a single slot against live state. It returns the template that
// governs the slot, a *SlotUnavailableError, or a read error from r.
func CheckSlot(ctx context.Context, r SlotReader, policy domain.BookingPolicy, now time.Time, d domain.Date, tod string) (*domain.ScheduleTemplate, error) {
	if !policy.Enabled {
		return nil, unavailable(ReasonDisabled, "Bookings are currently disabled.")
	}

	local := policy.Now(now)
	today := domain.DateOf(local)
	if d.Before(today) {
		return nil, unavailable(ReasonPast, "Cannot book tours in the past.")
	}
	if d.Equal(today) && tod <= domain.ClockOf(local) {
		return nil, unavailable(ReasonPassed, "This time slot has already passed.")
	}
	if d.After(policy.MaxDate(today)) {
		return nil, unavailable(ReasonOutOfWindow, "This date is outside the advance booking window.")
	}

	cat, resolver, err := LoadConfig(ctx, r)
	if err != nil {
		return nil, err
	}
	if resolver.IsBlackout(d) {
		return nil, unavailable(ReasonBlackout, "Tours are not available on this date.")
	}
	if ex, ok := resolver.Excluded(d); ok {
		return nil, unavailable(ReasonExcluded, fmt.Sprintf("This date falls within %s and is not available for bookings.", ex.Name))
	}

	st, ok := cat.Resolve(d, tod)
	if !ok {
		return nil, unavailable(ReasonNotFound, "This time slot is not available.")
	}

	booked, err := r.CountConfirmedBookings(ctx, d, tod)
	if err != nil {
		return nil, err
	}
	if booked >= int(st.MaxGroups) {
		return nil, unavailable(ReasonFull, "This time slot is fully booked.")
	}
	return st, nil
}
