package domain

import (
	"time"
)

type TemplateKind string

const (
	TemplateKindRecurring TemplateKind = "recurring"
	TemplateKindOneOff    TemplateKind = "oneoff"
)

func (k TemplateKind) Valid() bool {
	switch k {
	case TemplateKindRecurring, TemplateKindOneOff:
		return true
	}
	return false
}

// ScheduleTemplate is a bookable tour time. Recurring templates carry DayOfWeek
// (0 = Sunday), one-off templates carry SpecificDate; never both.
type ScheduleTemplate struct {
	ID           int64        `json:"id"`
	Kind         TemplateKind `json:"kind"`
	DayOfWeek    *int32       `json:"dayOfWeek"`
	SpecificDate *Date        `json:"specificDate"`
	TimeOfDay    string       `json:"timeOfDay"`
	MaxGroups    int32        `json:"maxGroups"`
	IsActive     bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	Version      int32        `json:"-"`
}

// AppliesTo reports whether the template describes a tour on d at tod,
// ignoring whether it is active.
func (st *ScheduleTemplate) AppliesTo(d Date, tod string) bool {
	if st.TimeOfDay != tod {
		return false
	}
	switch st.Kind {
	case TemplateKindOneOff:
		return st.SpecificDate != nil && st.SpecificDate.Equal(d)
	case TemplateKindRecurring:
		return st.DayOfWeek != nil && time.Weekday(*st.DayOfWeek) == d.Weekday()
	}
	return false
}
