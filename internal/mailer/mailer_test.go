package mailer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

func booking() *domain.Booking {
	return &domain.Booking{
		Reference:           "CVS-ABC123",
		TourDate:            domain.NewDate(2025, time.March, 3),
		TourTime:            "09:00:00",
		ParentName:          "Jane Citizen",
		Email:               "jane@example.com",
		Phone:               "0412345678",
		Adults:              2,
		Children:            1,
		ChildName:           "Sam",
		YearLevel:           "Year 7",
		SpecialRequirements: "Wheelchair access",
	}
}

func render(t *testing.T, typ domain.MailType) string {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	msg, err := r.Build("tours@school.example", domain.MailMessage{Type: typ, To: "jane@example.com", Data: booking()})
	if err != nil {
		t.Fatalf("Build(%s): %v", typ, err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return buf.String()
}

func TestBuild(t *testing.T) {
	tests := []struct {
		typ      domain.MailType
		subject  string
		contains []string
	}{
		{
			typ:      domain.MailTypeConfirmation,
			subject:  "Your Campus Tour Booking Confirmation - CVS-ABC123",
			contains: []string{"Dear Jane Citizen", "Monday, 3 March 2025", "9:00 AM", "Group size: 3"},
		},
		{
			typ:      domain.MailTypeCancellation,
			subject:  "Campus Tour Booking Cancelled - CVS-ABC123",
			contains: []string{"has been cancelled"},
		},
		{
			typ:      domain.MailTypeAdminNew,
			subject:  "New Campus Tour Booking - CVS-ABC123",
			contains: []string{"0412345678", "Sam (Year 7)", "Wheelchair access"},
		},
		{
			typ:      domain.MailTypeAdminCancelled,
			subject:  "Booking Cancelled - CVS-ABC123",
			contains: []string{"Jane Citizen"},
		},
		{
			typ:      domain.MailTypeReminder,
			subject:  "Reminder: Your Campus Tour is Coming Up - CVS-ABC123",
			contains: []string{"friendly reminder"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			out := render(t, tt.typ)
			if !strings.Contains(out, "Subject: "+tt.subject) {
				t.Fatalf("subject %q not found in:\n%s", tt.subject, out)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("%q not found in:\n%s", s, out)
				}
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	if _, err := r.Build("tours@school.example", domain.MailMessage{Type: "newsletter", To: "a@b.example", Data: booking()}); err == nil {
		t.Fatal("expected an error for an unknown type")
	}
	if _, err := r.Build("tours@school.example", domain.MailMessage{Type: domain.MailTypeReminder, To: "a@b.example"}); err == nil {
		t.Fatal("expected an error for a message without booking")
	}
	if _, err := r.Build("tours@school.example", domain.MailMessage{Type: domain.MailTypeReminder, To: "not an address", Data: booking()}); err == nil {
		t.Fatal("expected an error for an invalid recipient")
	}
}
