package domain

import "time"

type MailType string

const (
	MailTypeConfirmation   MailType = "confirmation"
	MailTypeCancellation   MailType = "cancellation"
	MailTypeAdminNew       MailType = "admin_new"
	MailTypeAdminCancelled MailType = "admin_cancelled"
	MailTypeReminder       MailType = "reminder"
)

// MailMessage is the payload placed on the email queue.
type MailMessage struct {
	Type MailType `json:"type"`
	To   string   `json:"to"`
	Data *Booking `json:"data"`
}

type NotificationRecipient struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	NotifyNewBooking   bool      `json:"notifyNewBooking"`
	NotifyCancellation bool      `json:"notifyCancellation"`
	CreatedAt          time.Time `json:"createdAt"`
}

type RecipientKind int

const (
	RecipientNewBooking RecipientKind = iota
	RecipientCancellation
)
