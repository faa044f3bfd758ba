package domain

// SlotKey identifies a tour slot by date and wall-clock time.
type SlotKey struct {
	Date Date
	Time string
}

type Slot struct {
	ScheduleTemplateID int64  `json:"scheduleTemplateID"`
	Time               string `json:"time"`
	MaxGroups          int32  `json:"maxGroups"`
	Booked             int    `json:"booked"`
	Remaining          int    `json:"remaining"`
	Available          bool   `json:"available"`
}

type AvailableDate struct {
	Date  Date   `json:"date"`
	Slots []Slot `json:"slots"`
}
