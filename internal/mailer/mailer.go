// Package mailer renders queued mail events into SMTP messages.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Renderer struct {
	templates map[domain.MailType]*template.Template
}

func NewRenderer() (*Renderer, error) {
	types := []domain.MailType{
		domain.MailTypeConfirmation,
		domain.MailTypeCancellation,
		domain.MailTypeAdminNew,
		domain.MailTypeAdminCancelled,
		domain.MailTypeReminder,
	}

	r := &Renderer{templates: make(map[domain.MailType]*template.Template, len(types))}
	for _, typ := range types {
		tmpl, err := template.ParseFS(templateFS, "templates/"+string(typ)+".tmpl")
		if err != nil {
			return nil, err
		}
		r.templates[typ] = tmpl
	}
	return r, nil
}

// view is what the templates see.
type view struct {
	*domain.Booking
	Date string
	Time string
}

func newView(b *domain.Booking) view {
	v := view{Booking: b, Time: b.TourTime}
	v.Date = b.TourDate.In(time.UTC).Format("Monday, 2 January 2006")
	if t, err := time.Parse(domain.TimeOfDayLayout, b.TourTime); err == nil {
		v.Time = t.Format("3:04 PM")
	}
	return v
}

// Build renders m into a message ready for delivery.
func (r *Renderer) Build(from string, m domain.MailMessage) (*mail.Msg, error) {
	tmpl, ok := r.templates[m.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mail type %q", m.Type)
	}
	if m.Data == nil {
		return nil, fmt.Errorf("mail %q has no booking", m.Type)
	}

	data := newView(m.Data)

	var subject bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(m.To); err != nil {
		return nil, err
	}
	msg.Subject(strings.TrimSpace(subject.String()))
	if err := msg.SetBodyTextTemplate(tmpl.Lookup("body"), data); err != nil {
		return nil, err
	}

	return msg, nil
}
