package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

type fakeChannel struct {
	key       string
	mandatory bool
	msg       amqp.Publishing
	deadline  bool
	err       error
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.key = key
	c.mandatory = mandatory
	c.msg = msg
	_, c.deadline = ctx.Deadline()
	return c.err
}

func TestPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, 5*time.Second)

	msg := domain.MailMessage{
		Type: domain.MailTypeConfirmation,
		To:   "jane@example.com",
		Data: &domain.Booking{Reference: "CVS-ABC123", TourDate: domain.NewDate(2025, time.March, 3), TourTime: "09:00:00"},
	}
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if ch.key != QueueName || !ch.mandatory || !ch.deadline {
		t.Fatalf("unexpected publish call: key=%q mandatory=%v deadline=%v", ch.key, ch.mandatory, ch.deadline)
	}
	if ch.msg.DeliveryMode != amqp.Persistent || ch.msg.ContentType != "application/json" || ch.msg.Type != "confirmation" {
		t.Fatalf("unexpected publishing %+v", ch.msg)
	}

	var got domain.MailMessage
	if err := json.Unmarshal(ch.msg.Body, &got); err != nil {
		t.Fatalf("body is not a mail message: %v", err)
	}
	if got.To != msg.To || got.Data.Reference != "CVS-ABC123" || got.Data.TourDate != msg.Data.TourDate {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestPublish_Error(t *testing.T) {
	want := errors.New("channel closed")
	p := newPublisher(&fakeChannel{err: want}, time.Second)

	if err := p.Publish(context.Background(), domain.MailMessage{Type: domain.MailTypeReminder}); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}
