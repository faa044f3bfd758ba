package domain

import "time"

type BlackoutDate struct {
	ID        int64     `json:"id"`
	Date      Date      `json:"date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExclusionPeriod closes an inclusive date range. Recurring periods only use the
// month and day of StartDate and EndDate and may wrap the year boundary.
type ExclusionPeriod struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	StartDate       Date      `json:"startDate"`
	EndDate         Date      `json:"endDate"`
	RecurringYearly bool      `json:"recurringYearly"`
	CreatedAt       time.Time `json:"createdAt"`
	Version         int32     `json:"-"`
}

// Exclusion is the concrete window of a period that matched a date.
type Exclusion struct {
	PeriodID       int64  `json:"periodID"`
	Name           string `json:"name"`
	EffectiveStart Date   `json:"effectiveStart"`
	EffectiveEnd   Date   `json:"effectiveEnd"`
}
