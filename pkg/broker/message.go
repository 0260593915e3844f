// Package broker publishes domain notifications to RabbitMQ or Kafka.
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ds124wfegd/college-events/internal/entity"
)

type Publisher interface {
	Publish(ctx context.Context, n *entity.Notification) error
	Close() error
}

// routingKey is the notification type, e.g. "registration.created".
func routingKey(n *entity.Notification) string {
	return string(n.Type)
}

// partitionKey keeps all notifications of one event in order on one partition.
func partitionKey(n *entity.Notification) []byte {
	switch {
	case n.EventID != nil:
		return []byte(n.EventID.String())
	case n.StudentID != nil:
		return []byte(n.StudentID.String())
	default:
		return []byte(n.ID.String())
	}
}

func encode(n *entity.Notification) ([]byte, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return body, nil
}
