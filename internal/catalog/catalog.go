// Package catalog resolves which schedule template governs a tour slot.
package catalog

import (
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

// Catalog is an immutable view over the active schedule templates.
type Catalog struct {
	active []*domain.ScheduleTemplate
}

// New drops inactive templates. Templates are ordered by id so that the lowest id
// wins when several match at the same precedence level.
func New(templates []*domain.ScheduleTemplate) *Catalog {
	active := make([]*domain.ScheduleTemplate, 0, len(templates))
	for _, st := range templates {
		if st.IsActive {
			active = append(active, st)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return &Catalog{active: active}
}

func (c *Catalog) Active() []*domain.ScheduleTemplate {
	return c.active
}

// Resolve returns the template for a tour on d at tod. A one-off template for the
// exact date takes precedence over a recurring template for the weekday.
func (c *Catalog) Resolve(d domain.Date, tod string) (*domain.ScheduleTemplate, bool) {
	var recurring *domain.ScheduleTemplate
	for _, st := range c.active {
		if !st.AppliesTo(d, tod) {
			continue
		}
		if st.Kind == domain.TemplateKindOneOff {
			return st, true
		}
		if recurring == nil {
			recurring = st
		}
	}
	return recurring, recurring != nil
}

// RecurringOn returns the recurring templates for d's weekday, one per time of day.
func (c *Catalog) RecurringOn(d domain.Date) []*domain.ScheduleTemplate {
	return c.collect(func(st *domain.ScheduleTemplate) bool {
		return st.Kind == domain.TemplateKindRecurring &&
			st.DayOfWeek != nil && time.Weekday(*st.DayOfWeek) == d.Weekday()
	})
}

// OneOffOn returns the one-off templates for d, one per time of day.
func (c *Catalog) OneOffOn(d domain.Date) []*domain.ScheduleTemplate {
	return c.collect(func(st *domain.ScheduleTemplate) bool {
		return st.Kind == domain.TemplateKindOneOff &&
			st.SpecificDate != nil && st.SpecificDate.Equal(d)
	})
}

// SlotsOn merges one-off and recurring templates for d, one per time of day,
// sorted by time. A recurring template shadowed by a one-off at the same time is
// left out.
func (c *Catalog) SlotsOn(d domain.Date) []*domain.ScheduleTemplate {
	byTime := make(map[string]*domain.ScheduleTemplate)
	for _, st := range c.OneOffOn(d) {
		byTime[st.TimeOfDay] = st
	}
	for _, st := range c.RecurringOn(d) {
		if _, ok := byTime[st.TimeOfDay]; !ok {
			byTime[st.TimeOfDay] = st
		}
	}

	out := make([]*domain.ScheduleTemplate, 0, len(byTime))
	for _, st := range byTime {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeOfDay < out[j].TimeOfDay })
	return out
}

func (c *Catalog) collect(keep func(*domain.ScheduleTemplate) bool) []*domain.ScheduleTemplate {
	seen := make(map[string]struct{})
	var out []*domain.ScheduleTemplate
	for _, st := range c.active {
		if !keep(st) {
			continue
		}
		if _, dup := seen[st.TimeOfDay]; dup {
			continue
		}
		seen[st.TimeOfDay] = struct{}{}
		out = append(out, st)
	}
	return out
}
