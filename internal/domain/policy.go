package domain

import "time"

// BookingPolicy is the set of staff-controlled booking options in effect for one call.
type BookingPolicy struct {
	Enabled         bool
	MinGroupSize    int
	MaxGroupSize    int
	AdvanceDays     int
	ReferencePrefix string
	Location        *time.Location
}

// Now converts t to the school's local time.
func (p BookingPolicy) Now(t time.Time) time.Time {
	if p.Location == nil {
		return t
	}
	return t.In(p.Location)
}

func (p BookingPolicy) Today(t time.Time) Date {
	return DateOf(p.Now(t))
}

// MaxDate is the last bookable date of the window starting on today.
func (p BookingPolicy) MaxDate(today Date) Date {
	return today.AddDays(p.AdvanceDays)
}
