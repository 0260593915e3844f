package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/ds124wfegd/college-events/internal/entity"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type RabbitMQConfig struct {
	URL          string
	ExchangeName string
	// QueueName, when set, is declared and bound to every routing key.
	QueueName string
}

type RabbitMQ struct {
	mu      sync.Mutex // amqp.Channel is not safe for concurrent publishing
	conn    *amqp.Connection
	channel *amqp.Channel
	config  RabbitMQConfig
}

func NewRabbitMQ(config RabbitMQConfig) (*RabbitMQ, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// topic exchange: потребители подписываются на "registration.*", "event.full" и т.д.
	err = channel.ExchangeDeclare(
		config.ExchangeName, // name
		"topic",             // kind
		true,                // durable
		false,               // auto-deleted
		false,               // internal
		false,               // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if config.QueueName != "" {
		q, err := channel.QueueDeclare(
			config.QueueName, // name
			true,             // durable
			false,            // delete when unused
			false,            // exclusive
			false,            // no-wait
			amqp.Table{
				"x-queue-mode": "lazy",
			},
		)
		if err == nil {
			err = channel.QueueBind(q.Name, "#", config.ExchangeName, false, nil)
		}
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue: %w", err)
		}
	}

	logrus.WithField("exchange", config.ExchangeName).Info("Connected to RabbitMQ")
	return &RabbitMQ{conn: conn, channel: channel, config: config}, nil
}

func newPublishing(n *entity.Notification) (amqp.Publishing, error) {
	body, err := encode(n)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    n.ID.String(),
		Type:         string(n.Type),
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.OccurredAt,
	}, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, n *entity.Notification) error {
	msg, err := newPublishing(n)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.PublishWithContext(
		ctx,
		r.config.ExchangeName, // exchange
		routingKey(n),         // routing key
		false,                 // mandatory
		false,                 // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	var errs []error

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing RabbitMQ: %v", errs)
	}

	return nil
}

// HealthCheck проверяет соединение с RabbitMQ
func (r *RabbitMQ) HealthCheck() error {
	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}
	return nil
}
