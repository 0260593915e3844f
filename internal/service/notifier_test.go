package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ds124wfegd/college-events/internal/database/memory"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, *entity.Notification) error { return p.err }

func TestMultiPublisher(t *testing.T) {
	rec := &recordingPublisher{}
	boom := errors.New("broker down")
	multi := MultiPublisher{failingPublisher{boom}, nil, rec}

	err := multi.Publish(context.Background(), entity.NewNotification(entity.NotificationEventFull, nil, nil, nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, rec.count(entity.NotificationEventFull), "a failing publisher does not stop the others")
}

func TestPublisherFailureDoesNotFailMutation(t *testing.T) {
	svc := NewServices(memory.NewStore(), failingPublisher{errors.New("down")}, nil, DefaultOptions())

	college, err := svc.Colleges.CreateCollege(adminCtx(), &CollegeRequest{Name: "MIT"})
	require.NoError(t, err)

	_, err = svc.Colleges.GetCollege(context.Background(), college.ID)
	assert.NoError(t, err)
}
