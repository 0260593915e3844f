package broker

import (
	"encoding/json"
	"testing"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	eventID := uuid.New()
	n := entity.NewNotification(entity.NotificationEventFull, nil, &eventID, map[string]interface{}{"max_capacity": 2})

	msg, err := newPublishing(n)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, n.ID.String(), msg.MessageId)
	assert.Equal(t, "event.full", routingKey(n))

	var decoded entity.Notification
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, n.Type, decoded.Type)
	assert.Equal(t, eventID, *decoded.EventID)
}

func TestKafkaMessageKey(t *testing.T) {
	eventID, studentID := uuid.New(), uuid.New()

	tests := []struct {
		name string
		n    *entity.Notification
		want string
	}{
		{"event first", entity.NewNotification(entity.NotificationRegistrationCreated, &studentID, &eventID, nil), eventID.String()},
		{"student only", entity.NewNotification(entity.NotificationStudentChanged, &studentID, nil, nil), studentID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := newKafkaMessage(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(msg.Key))
			require.Len(t, msg.Headers, 1)
			assert.Equal(t, string(tt.n.Type), string(msg.Headers[0].Value))
		})
	}

	n := entity.NewNotification(entity.NotificationCollegeChanged, nil, nil, nil)
	msg, err := newKafkaMessage(n)
	require.NoError(t, err)
	assert.Equal(t, n.ID.String(), string(msg.Key))
}
