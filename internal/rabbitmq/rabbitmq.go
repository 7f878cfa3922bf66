package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"internship_portal/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher pushes email messages onto a durable queue consumed by the
// mail sender worker. Implements mailer.Sender.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func New(urlForConn string, queueName string) (*Publisher, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(urlForConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, err := ch.QueueDeclare(
		queueName, true, false, false, false, nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Publisher{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

func (p *Publisher) Send(ctx context.Context, msg models.EmailMessage) error {
	const op = "rabbitmq.Send"

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return p.channel.PublishWithContext(
		ctx,
		"",
		p.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

func (p *Publisher) Close() {
	_ = p.channel.Close()
	_ = p.conn.Close()
}
