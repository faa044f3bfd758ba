package availability

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

type fakeStore struct {
	templates []*domain.ScheduleTemplate
	blackouts []*domain.BlackoutDate
	periods   []*domain.ExclusionPeriod
	counts    map[domain.SlotKey]int
}

func (f *fakeStore) GetActiveScheduleTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error) {
	return f.templates, nil
}

func (f *fakeStore) GetAllBlackoutDates(ctx context.Context) ([]*domain.BlackoutDate, error) {
	return f.blackouts, nil
}

func (f *fakeStore) GetAllExclusionPeriods(ctx context.Context) ([]*domain.ExclusionPeriod, error) {
	return f.periods, nil
}

func (f *fakeStore) CountConfirmedBookingsBetween(ctx context.Context, from, to domain.Date) (map[domain.SlotKey]int, error) {
	out := make(map[domain.SlotKey]int)
	for k, v := range f.counts {
		if !k.Date.Before(from) && !k.Date.After(to) {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeStore) CountConfirmedBookings(ctx context.Context, d domain.Date, tod string) (int, error) {
	return f.counts[domain.SlotKey{Date: d, Time: tod}], nil
}

func recurring(id int64, wd time.Weekday, tod string, max int32) *domain.ScheduleTemplate {
	dow := int32(wd)
	return &domain.ScheduleTemplate{ID: id, Kind: domain.TemplateKindRecurring, DayOfWeek: &dow, TimeOfDay: tod, MaxGroups: max, IsActive: true}
}

func oneOff(id int64, d domain.Date, tod string, max int32) *domain.ScheduleTemplate {
	return &domain.ScheduleTemplate{ID: id, Kind: domain.TemplateKindOneOff, SpecificDate: &d, TimeOfDay: tod, MaxGroups: max, IsActive: true}
}

func policy() domain.BookingPolicy {
	return domain.BookingPolicy{
		Enabled:         true,
		MinGroupSize:    1,
		MaxGroupSize:    6,
		AdvanceDays:     14,
		ReferencePrefix: "CVS",
		Location:        time.UTC,
	}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
