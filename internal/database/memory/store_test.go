package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *Store
	college entity.College
	student entity.Student
	event   entity.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := NewStore()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	college := entity.College{ID: uuid.New(), Name: "MIT", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Colleges().Create(ctx, &college))

	student := entity.Student{
		ID:        uuid.New(),
		StudentID: "S-001",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		CollegeID: college.ID,
	}
	require.NoError(t, s.Students().Create(ctx, &student))

	event := entity.Event{
		ID:          uuid.New(),
		Name:        "Go Workshop",
		EventDate:   entity.NewEventTime(now.Add(24 * time.Hour)),
		MaxCapacity: 2,
		EventType:   entity.EventTypeWorkshop,
		IsActive:    true,
		CollegeID:   college.ID,
	}
	require.NoError(t, s.Events().Create(ctx, &event))

	return &fixture{store: s, college: college, student: student, event: event}
}

func (f *fixture) register(t *testing.T, at time.Time) *entity.Registration {
	t.Helper()
	reg := &entity.Registration{
		ID:               uuid.New(),
		StudentID:        f.student.ID,
		EventID:          f.event.ID,
		RegistrationDate: at,
		IsConfirmed:      true,
	}
	require.NoError(t, f.store.Registrations().Create(context.Background(), reg))
	return reg
}

func TestUniquenessConstraints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.store.Colleges().Create(ctx, &entity.College{ID: uuid.New(), Name: "MIT"})
	assert.ErrorIs(t, err, entity.ErrCollegeAlreadyExists)

	dupNumber := f.student
	dupNumber.ID = uuid.New()
	dupNumber.Email = "other@example.com"
	assert.ErrorIs(t, f.store.Students().Create(ctx, &dupNumber), entity.ErrStudentIDTaken)

	dupEmail := f.student
	dupEmail.ID = uuid.New()
	dupEmail.StudentID = "S-002"
	assert.ErrorIs(t, f.store.Students().Create(ctx, &dupEmail), entity.ErrStudentEmailTaken)

	orphan := f.student
	orphan.ID = uuid.New()
	orphan.StudentID = "S-003"
	orphan.Email = "orphan@example.com"
	orphan.CollegeID = uuid.New()
	assert.ErrorIs(t, f.store.Students().Create(ctx, &orphan), entity.ErrCollegeNotFound)
}

func TestRegistrationSoftCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	reg := f.register(t, now)

	err := f.store.Registrations().Create(ctx, &entity.Registration{
		ID: uuid.New(), StudentID: f.student.ID, EventID: f.event.ID, RegistrationDate: now,
	})
	assert.ErrorIs(t, err, entity.ErrDuplicateRegistration)

	event, err := f.store.Events().GetByID(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, event.CurrentRegistrations)
	assert.Equal(t, 1, event.AvailableSpots)

	require.NoError(t, f.store.Registrations().Cancel(ctx, reg.ID, now))
	assert.ErrorIs(t, f.store.Registrations().Cancel(ctx, reg.ID, now), entity.ErrRegistrationNotFound)

	_, err = f.store.Registrations().GetActive(ctx, f.student.ID, f.event.ID)
	assert.ErrorIs(t, err, entity.ErrRegistrationNotFound)

	all, err := f.store.Registrations().Count(ctx, entity.RegistrationFilter{EventID: &f.event.ID, IncludeCancelled: true})
	require.NoError(t, err)
	assert.Equal(t, 1, all)

	active, err := f.store.Registrations().Count(ctx, entity.RegistrationFilter{EventID: &f.event.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, active)

	// повторная регистрация после отмены
	f.register(t, now.Add(time.Minute))
}

func TestAttendanceUpsertKeepsID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, time.Now())

	first := &entity.Attendance{ID: uuid.New(), StudentID: f.student.ID, EventID: f.event.ID, IsPresent: true, AttendanceTime: time.Now()}
	require.NoError(t, f.store.Attendance().Upsert(ctx, first))

	second := &entity.Attendance{ID: uuid.New(), StudentID: f.student.ID, EventID: f.event.ID, IsPresent: false, AttendanceTime: time.Now()}
	require.NoError(t, f.store.Attendance().Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := f.store.Attendance().Get(ctx, f.student.ID, f.event.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPresent)

	total, err := f.store.Attendance().Count(ctx, entity.AttendanceFilter{EventID: &f.event.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	present, err := f.store.Attendance().Count(ctx, entity.AttendanceFilter{EventID: &f.event.ID, PresentOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 0, present)
}

func TestFeedbackAverageAndOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	avg, count, err := f.store.Feedback().AverageRating(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)

	base := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	for i, rating := range []int{5, 3, 4} {
		student := entity.Student{
			ID:        uuid.New(),
			StudentID: uuid.NewString()[:8],
			Email:     uuid.NewString() + "@example.com",
			CollegeID: f.college.ID,
		}
		require.NoError(t, f.store.Students().Create(ctx, &student))
		require.NoError(t, f.store.Feedback().Create(ctx, &entity.Feedback{
			ID:           uuid.New(),
			StudentID:    student.ID,
			EventID:      f.event.ID,
			Rating:       rating,
			Comment:      "ok",
			FeedbackDate: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	avg, count, err = f.store.Feedback().AverageRating(ctx, f.event.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)
	assert.Equal(t, 3, count)

	list, err := f.store.Feedback().List(ctx, entity.FeedbackFilter{EventID: &f.event.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 4, list[0].Rating, "newest first")
	assert.Equal(t, 5, list[2].Rating)
}

func TestDeleteWithDependents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, time.Now())

	assert.ErrorIs(t, f.store.Colleges().Delete(ctx, f.college.ID), entity.ErrCollegeHasDependents)
	assert.ErrorIs(t, f.store.Students().Delete(ctx, f.student.ID), entity.ErrStudentHasDependents)
	assert.ErrorIs(t, f.store.Events().Delete(ctx, f.event.ID), entity.ErrEventHasDependents)

	require.NoError(t, f.store.Registrations().DeleteByEventID(ctx, f.event.ID))
	require.NoError(t, f.store.Events().Delete(ctx, f.event.ID))
	require.NoError(t, f.store.Students().Delete(ctx, f.student.ID))
	require.NoError(t, f.store.Colleges().Delete(ctx, f.college.ID))

	_, err := f.store.Colleges().GetByID(ctx, f.college.ID)
	assert.ErrorIs(t, err, entity.ErrCollegeNotFound)
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boom := errors.New("boom")

	err := f.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		reg := &entity.Registration{ID: uuid.New(), StudentID: f.student.ID, EventID: f.event.ID, RegistrationDate: time.Now(), IsConfirmed: true}
		if err := repos.Registrations().Create(ctx, reg); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := f.store.Registrations().Count(ctx, entity.RegistrationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, count, "registration from the failed transaction must be gone")
}

func TestInReadTxRejectsWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.store.InReadTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		return repos.Colleges().Create(ctx, &entity.College{ID: uuid.New(), Name: "Other"})
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	_, err := f.store.Colleges().GetAll(context.Background())
	assert.Equal(t, entity.KindUnavailable, entity.KindOf(err))

	err = f.store.InTx(context.Background(), func(context.Context, database.Repositories) error { return nil })
	assert.Equal(t, entity.KindUnavailable, entity.KindOf(err))
}

func TestListingsAreOrdered(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	early := f.event
	early.ID = uuid.New()
	early.Name = "Kickoff"
	early.EventDate = entity.NewEventTime(f.event.EventDate.Add(-48 * time.Hour))
	require.NoError(t, f.store.Events().Create(ctx, &early))

	events, err := f.store.Events().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, early.ID, events[0].ID)
	assert.Equal(t, f.event.ID, events[1].ID)

	found, err := f.store.Events().Search(ctx, "kick")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Kickoff", found[0].Name)
}
