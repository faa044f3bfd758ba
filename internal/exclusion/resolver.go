// Package exclusion decides whether a calendar date is closed to tours.
package exclusion

import (
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

// Resolver answers blackout and exclusion questions against a snapshot of the
// staff-managed closures. It holds no state beyond that snapshot.
type Resolver struct {
	blackouts map[domain.Date]*domain.BlackoutDate
	periods   []*domain.ExclusionPeriod
}

// NewResolver keeps periods in the given order; the first matching period wins.
func NewResolver(blackouts []*domain.BlackoutDate, periods []*domain.ExclusionPeriod) *Resolver {
	r := &Resolver{
		blackouts: make(map[domain.Date]*domain.BlackoutDate, len(blackouts)),
		periods:   periods,
	}
	for _, b := range blackouts {
		r.blackouts[b.Date] = b
	}
	return r
}

func (r *Resolver) IsBlackout(d domain.Date) bool {
	_, ok := r.blackouts[d]
	return ok
}

func (r *Resolver) Excluded(d domain.Date) (*domain.Exclusion, bool) {
	for _, p := range r.periods {
		if ex, ok := Match(p, d); ok {
			return ex, true
		}
	}
	return nil, false
}

// Closed reports whether d is either blacked out or excluded.
func (r *Resolver) Closed(d domain.Date) bool {
	if r.IsBlackout(d) {
		return true
	}
	_, excluded := r.Excluded(d)
	return excluded
}

// Match tests a single period against d.
func Match(p *domain.ExclusionPeriod, d domain.Date) (*domain.Exclusion, bool) {
	if !p.RecurringYearly {
		if d.Before(p.StartDate) || d.After(p.EndDate) {
			return nil, false
		}
		return newExclusion(p, p.StartDate, p.EndDate), true
	}

	year := d.Year()
	startMD := monthDay(p.StartDate)
	endMD := monthDay(p.EndDate)

	if startMD <= endMD {
		start := instantiate(year, p.StartDate)
		end := instantiate(year, p.EndDate)
		if within(d, start, end) {
			return newExclusion(p, start, end), true
		}
		return nil, false
	}

	// The period wraps the year boundary, e.g. Dec 20 - Jan 27.
	start := instantiate(year, p.StartDate)
	if within(d, start, domain.NewDate(year, time.December, 31)) {
		return newExclusion(p, start, instantiate(year+1, p.EndDate)), true
	}
	start = instantiate(year-1, p.StartDate)
	end := instantiate(year, p.EndDate)
	if within(d, start, end) {
		return newExclusion(p, start, end), true
	}
	return nil, false
}

func newExclusion(p *domain.ExclusionPeriod, start, end domain.Date) *domain.Exclusion {
	return &domain.Exclusion{
		PeriodID:       p.ID,
		Name:           p.Name,
		EffectiveStart: start,
		EffectiveEnd:   end,
	}
}

func monthDay(d domain.Date) int {
	return int(d.Month())*100 + d.Day()
}

// instantiate places the month and day of md in year, clamping Feb 29 to Feb 28
// when year is not a leap year.
func instantiate(year int, md domain.Date) domain.Date {
	month, day := md.Month(), md.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return domain.NewDate(year, month, day)
}

func within(d, start, end domain.Date) bool {
	return !d.Before(start) && !d.After(end)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
