// Package notify puts mail events on the RabbitMQ email queue.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

const QueueName = "email_queue"

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	mu      sync.Mutex
	ch      channel
	timeout time.Duration
}

func NewPublisher(ch *amqp.Channel, timeout time.Duration) *Publisher {
	return newPublisher(ch, timeout)
}

func newPublisher(ch channel, timeout time.Duration) *Publisher {
	return &Publisher{ch: ch, timeout: timeout}
}

// DeclareQueue makes sure the durable email queue exists.
func DeclareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		QueueName, // name
		true,      // durable
		false,     // keep the queue when no consumer is attached
		false,     // shared between consumers
		false,     // wait for the broker to confirm
		nil,
	)
}

func (p *Publisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// amqp channels must not be shared by concurrent publishers.
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         string(msg.Type),
			Body:         body,
		},
	)
}
