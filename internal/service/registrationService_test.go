package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCapacityScenario проверяет сценарий с вместимостью 2
func TestCapacityScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	college := env.college("MIT")
	s := env.students(college.ID, 3)
	event := env.event(college.ID, 2, testStart.Add(48*time.Hour))

	_, err := env.svc.Registrations.Register(ctx, s[0].ID, event.ID)
	require.NoError(t, err)
	_, err = env.svc.Registrations.Register(ctx, s[1].ID, event.ID)
	require.NoError(t, err)

	_, err = env.svc.Registrations.Register(ctx, s[2].ID, event.ID)
	assert.ErrorIs(t, err, entity.ErrCapacityExceeded)
	assert.Equal(t, entity.KindCapacityExceeded, entity.KindOf(err))

	require.NoError(t, env.svc.Registrations.Cancel(ctx, s[0].ID, event.ID, false))

	_, err = env.svc.Registrations.Register(ctx, s[2].ID, event.ID)
	require.NoError(t, err)

	got, err := env.svc.Events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentRegistrations)
	assert.Equal(t, 0, got.AvailableSpots)

	assert.Equal(t, 2, env.publisher.count(entity.NotificationEventFull))
	assert.Equal(t, 1, env.publisher.count(entity.NotificationRegistrationCancelled))
}

func TestConcurrentRegistrationsNeverExceedCapacity(t *testing.T) {
	const (
		capacity = 5
		clients  = 100
	)

	env := newTestEnv(t)
	college := env.college("MIT")
	students := env.students(college.ID, clients)
	event := env.event(college.ID, capacity, testStart)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		rejected int
		other    []error
	)

	for _, st := range students {
		wg.Add(1)
		go func(studentID uuid.UUID) {
			defer wg.Done()
			_, err := env.svc.Registrations.Register(context.Background(), studentID, event.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, entity.ErrCapacityExceeded):
				rejected++
			default:
				other = append(other, err)
			}
		}(st.ID)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, capacity, success)
	assert.Equal(t, clients-capacity, rejected)

	count, err := env.svc.Registrations.CountEventRegistrations(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, count)
}

func TestDuplicateRegistration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	college := env.college("MIT")
	student := env.student(college.ID)
	event := env.event(college.ID, 10, testStart)

	env.register(student.ID, event.ID)

	_, err := env.svc.Registrations.Register(ctx, student.ID, event.ID)
	assert.ErrorIs(t, err, entity.ErrDuplicateRegistration)
	assert.Equal(t, entity.KindConflict, entity.KindOf(err))

	require.NoError(t, env.svc.Registrations.Cancel(ctx, student.ID, event.ID, false))
	env.register(student.ID, event.ID)

	regs, err := env.svc.Registrations.GetStudentRegistrations(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 1, "cancelled registrations are not listed")
}

func TestRegisterPreconditions(t *testing.T) {
	env := newTestEnv(t)
	college := env.college("MIT")
	student := env.student(college.ID)
	event := env.event(college.ID, 10, testStart)

	inactive := env.event(college.ID, 10, testStart)
	off := false
	_, err := env.svc.Events.UpdateEvent(adminCtx(), inactive.ID, &EventRequest{
		Name:        inactive.Name,
		EventDate:   inactive.EventDate,
		MaxCapacity: inactive.MaxCapacity,
		EventType:   inactive.EventType,
		IsActive:    &off,
		CollegeID:   college.ID,
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		studentID uuid.UUID
		eventID   uuid.UUID
		want      error
		kind      entity.Kind
	}{
		{"unknown event", student.ID, uuid.New(), entity.ErrEventNotFound, entity.KindNotFound},
		{"unknown student", uuid.New(), event.ID, entity.ErrStudentNotFound, entity.KindNotFound},
		{"inactive event", student.ID, inactive.ID, entity.ErrEventInactive, entity.KindPreconditionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Registrations.Register(context.Background(), tt.studentID, tt.eventID)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, entity.KindOf(err))
		})
	}

	count, err := env.svc.Registrations.CountEventRegistrations(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCancelWithAttendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	college := env.college("MIT")
	student := env.student(college.ID)
	event := env.event(college.ID, 10, testStart)

	err := env.svc.Registrations.Cancel(ctx, student.ID, event.ID, false)
	assert.ErrorIs(t, err, entity.ErrRegistrationNotFound)

	env.register(student.ID, event.ID)
	env.mark(student.ID, event.ID, true)

	err = env.svc.Registrations.Cancel(ctx, student.ID, event.ID, false)
	assert.ErrorIs(t, err, entity.ErrAttendanceRecorded)
	assert.Equal(t, entity.KindPreconditionFailed, entity.KindOf(err))

	_, err = env.svc.Registrations.GetRegistration(ctx, student.ID, event.ID)
	require.NoError(t, err, "rejected cancel must keep the registration")

	require.NoError(t, env.svc.Registrations.Cancel(ctx, student.ID, event.ID, true))

	attendance, err := env.svc.Attendance.GetAttendance(ctx, student.ID, event.ID)
	require.NoError(t, err, "forced cancel keeps attendance history")
	assert.True(t, attendance.IsPresent)
}

func TestRegistrationQueriesReturnEmptySlices(t *testing.T) {
	env := newTestEnv(t)

	regs, err := env.svc.Registrations.GetEventRegistrations(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, regs)
	assert.Empty(t, regs)
}
