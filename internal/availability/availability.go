// Package availability derives bookable tour slots from the schedule catalog, the
// exclusion rules and the live count of confirmed bookings.
package availability

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/exclusion"
)

// ConfigReader loads the staff-managed configuration that availability is derived from.
type ConfigReader interface {
	GetActiveScheduleTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error)
	GetAllBlackoutDates(ctx context.Context) ([]*domain.BlackoutDate, error)
	GetAllExclusionPeriods(ctx context.Context) ([]*domain.ExclusionPeriod, error)
}

type Store interface {
	ConfigReader
	// CountConfirmedBookingsBetween groups confirmed bookings in [from, to] by slot.
	CountConfirmedBookingsBetween(ctx context.Context, from, to domain.Date) (map[domain.SlotKey]int, error)
}

type Calculator struct {
	store Store
	now   func() time.Time
}

func NewCalculator(store Store, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{store: store, now: now}
}

// AvailableDates lists every open date in the booking window that has at least one slot.
func (c *Calculator) AvailableDates(ctx context.Context, policy domain.BookingPolicy) ([]domain.AvailableDate, error) {
	if !policy.Enabled {
		return []domain.AvailableDate{}, nil
	}
	today := policy.Today(c.now())
	return c.compute(ctx, today, policy.MaxDate(today))
}

// SlotsFor returns the slots of a single date. Dates outside the booking window or
// closed by an exclusion yield an empty list.
func (c *Calculator) SlotsFor(ctx context.Context, d domain.Date, policy domain.BookingPolicy) ([]domain.Slot, error) {
	if !policy.Enabled {
		return []domain.Slot{}, nil
	}
	today := policy.Today(c.now())
	if d.Before(today) || d.After(policy.MaxDate(today)) {
		return []domain.Slot{}, nil
	}

	dates, err := c.compute(ctx, d, d)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return []domain.Slot{}, nil
	}
	return dates[0].Slots, nil
}

func (c *Calculator) compute(ctx context.Context, from, to domain.Date) ([]domain.AvailableDate, error) {
	cat, resolver, err := LoadConfig(ctx, c.store)
	if err != nil {
		return nil, err
	}
	counts, err := c.store.CountConfirmedBookingsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return Compute(from, to, cat, resolver, counts), nil
}

// LoadConfig reads the templates and exclusions and builds the in-memory views over them.
func LoadConfig(ctx context.Context, r ConfigReader) (*catalog.Catalog, *exclusion.Resolver, error) {
	templates, err := r.GetActiveScheduleTemplates(ctx)
	if err != nil {
		return nil, nil, err
	}
	blackouts, err := r.GetAllBlackoutDates(ctx)
	if err != nil {
		return nil, nil, err
	}
	periods, err := r.GetAllExclusionPeriods(ctx)
	if err != nil {
		return nil, nil, err
	}
	return catalog.New(templates), exclusion.NewResolver(blackouts, periods), nil
}

// Compute walks [from, to] and emits the slots of every open date, dates ascending and
// slots by time. counts holds confirmed bookings per slot; missing keys count as zero.
func Compute(from, to domain.Date, cat *catalog.Catalog, resolver *exclusion.Resolver, counts map[domain.SlotKey]int) []domain.AvailableDate {
	out := []domain.AvailableDate{}
	for d := from; !d.After(to); d = d.AddDays(1) {
		if resolver.Closed(d) {
			continue
		}

		templates := cat.SlotsOn(d)
		if len(templates) == 0 {
			continue
		}

		slots := make([]domain.Slot, 0, len(templates))
		for _, st := range templates {
			slots = append(slots, newSlot(st, counts[domain.SlotKey{Date: d, Time: st.TimeOfDay}]))
		}
		out = append(out, domain.AvailableDate{Date: d, Slots: slots})
	}
	return out
}

func newSlot(st *domain.ScheduleTemplate, booked int) domain.Slot {
	remaining := int(st.MaxGroups) - booked
	if remaining < 0 {
		remaining = 0
	}
	return domain.Slot{
		ScheduleTemplateID: st.ID,
		Time:               st.TimeOfDay,
		MaxGroups:          st.MaxGroups,
		Booked:             booked,
		Remaining:          remaining,
		Available:          remaining > 0,
	}
}
