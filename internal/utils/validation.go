package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

// ValidateScheduleTemplate checks the fields of st against its kind and normalizes
// its time of day to HH:MM:SS. The field of the other kind is cleared.
func ValidateScheduleTemplate(st *domain.ScheduleTemplate) error {
	if !st.Kind.Valid() {
		return fmt.Errorf("Unknown template kind %q.", st.Kind)
	}

	tod, err := domain.ParseTimeOfDay(st.TimeOfDay)
	if err != nil {
		return errors.New("Time of day must be in HH:MM format.")
	}
	st.TimeOfDay = tod

	if st.MaxGroups < 1 {
		return errors.New("Max groups must be at least 1.")
	}

	switch st.Kind {
	case domain.TemplateKindRecurring:
		if st.DayOfWeek == nil {
			return errors.New("Day of week is required for recurring templates.")
		}
		if *st.DayOfWeek < 0 || *st.DayOfWeek > 6 {
			return errors.New("Day of week must be between 0 (Sunday) and 6 (Saturday).")
		}
		st.SpecificDate = nil
	case domain.TemplateKindOneOff:
		if st.SpecificDate == nil || st.SpecificDate.IsZero() {
			return errors.New("Date is required for one-off templates.")
		}
		st.DayOfWeek = nil
	}

	return nil
}

// ValidateExclusionPeriod only orders the dates of non-recurring periods; a
// recurring period whose end is before its start wraps the new year.
func ValidateExclusionPeriod(ep *domain.ExclusionPeriod) error {
	if ep.Name == "" {
		return errors.New("Period name is required.")
	}
	if ep.StartDate.IsZero() || ep.EndDate.IsZero() {
		return errors.New("Start and end dates are required.")
	}
	if !ep.RecurringYearly && ep.EndDate.Before(ep.StartDate) {
		return errors.New("End date must be on or after start date.")
	}
	return nil
}
