package service

import (
	"context"
	"testing"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventUpdate(e *entity.EventWithAvailability, capacity int) *EventRequest {
	return &EventRequest{
		Name:        e.Name,
		Description: e.Description,
		EventDate:   e.EventDate,
		Location:    e.Location,
		MaxCapacity: capacity,
		EventType:   e.EventType,
		CollegeID:   e.CollegeID,
	}
}

func TestCreateEventValidation(t *testing.T) {
	env := newTestEnv(t)
	college := env.college("MIT")

	valid := func() *EventRequest {
		return &EventRequest{
			Name:        "Go meetup",
			EventDate:   entity.NewEventTime(testStart),
			MaxCapacity: 10,
			EventType:   entity.EventTypeTechnical,
			CollegeID:   college.ID,
		}
	}

	tests := []struct {
		name   string
		mutate func(r *EventRequest)
		want   error
	}{
		{"unknown type", func(r *EventRequest) { r.EventType = "Party" }, entity.ErrInvalidEventType},
		{"zero capacity", func(r *EventRequest) { r.MaxCapacity = 0 }, entity.ErrInvalidInput},
		{"no date", func(r *EventRequest) { r.EventDate = entity.EventTime{} }, entity.ErrInvalidInput},
		{"blank name", func(r *EventRequest) { r.Name = "  " }, entity.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			_, err := env.svc.Events.CreateEvent(adminCtx(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, entity.KindInvalidArgument, entity.KindOf(err))
		})
	}

	off := false
	req := valid()
	req.IsActive = &off
	created, err := env.svc.Events.CreateEvent(adminCtx(), req)
	require.NoError(t, err)
	assert.True(t, created.IsActive, "new events start active")
	assert.Equal(t, 10, created.AvailableSpots)
}

func TestCapacityCannotDropBelowRegistrations(t *testing.T) {
	env := newTestEnv(t)
	college := env.college("MIT")
	event := env.event(college.ID, 5, testStart)
	for _, st := range env.students(college.ID, 3) {
		env.register(st.ID, event.ID)
	}

	_, err := env.svc.Events.UpdateEvent(adminCtx(), event.ID, eventUpdate(event, 2))
	assert.ErrorIs(t, err, entity.ErrCapacityBelowCurrent)

	updated, err := env.svc.Events.UpdateEvent(adminCtx(), event.ID, eventUpdate(event, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentRegistrations)
	assert.Zero(t, updated.AvailableSpots)
	assert.True(t, updated.IsActive, "omitted isActive keeps the flag")
}

func TestEventQueries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	college := env.college("MIT")
	full := env.event(college.ID, 1, testStart)
	open := env.event(college.ID, 5, testStart.Add(24*time.Hour))
	env.register(env.student(college.ID).ID, full.ID)

	available, err := env.svc.Events.GetAvailableEvents(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)

	active, err := env.svc.Events.GetActiveEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	ranged, err := env.svc.Events.GetEventsByDateRange(ctx, testStart.Add(time.Hour), testStart.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, open.ID, ranged[0].ID)

	_, err = env.svc.Events.GetEventsByDateRange(ctx, testStart, testStart.Add(-time.Hour))
	assert.Equal(t, entity.KindInvalidArgument, entity.KindOf(err))

	_, err = env.svc.Events.GetEventsByType(ctx, "Party")
	assert.ErrorIs(t, err, entity.ErrInvalidEventType)
}
