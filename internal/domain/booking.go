package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow:
		return true
	}
	return false
}

type Booking struct {
	ID                  int64         `json:"id"`
	Reference           string        `json:"reference"`
	ScheduleTemplateID  *int64        `json:"scheduleTemplateID"`
	TourDate            Date          `json:"tourDate"`
	TourTime            string        `json:"tourTime"`
	ParentName          string        `json:"parentName"`
	Email               string        `json:"email"`
	Phone               string        `json:"phone"`
	Adults              int32         `json:"adults"`
	Children            int32         `json:"children"`
	ChildName           string        `json:"childName"`
	YearLevel           string        `json:"yearLevel"`
	SpecialRequirements string        `json:"specialRequirements"`
	Status              BookingStatus `json:"status"`
	AdminNotes          string        `json:"adminNotes"`
	CreatedAt           time.Time     `json:"createdAt"`
	CancelledAt         *time.Time    `json:"cancelledAt"`
}

func (b *Booking) GroupSize() int32 {
	return b.Adults + b.Children
}

// BookingFilter selects bookings for admin listing and export. Zero values mean "no filter".
type BookingFilter struct {
	Status   BookingStatus
	DateFrom *Date
	DateTo   *Date
	Search   string
	OrderBy  string
	Order    string
	Page     int
	PerPage  int
}

type BookingPage struct {
	Rows  []*Booking `json:"rows"`
	Total int64      `json:"total"`
	Pages int64      `json:"pages"`
}

type PopularTime struct {
	TourTime string `json:"tourTime"`
	Count    int64  `json:"count"`
}

type BookingStatistics struct {
	Total            int64         `json:"total"`
	Confirmed        int64         `json:"confirmed"`
	Cancelled        int64         `json:"cancelled"`
	CancellationRate float64       `json:"cancellationRate"`
	AvgGroupSize     float64       `json:"avgGroupSize"`
	PopularTimes     []PopularTime `json:"popularTimes"`
}
