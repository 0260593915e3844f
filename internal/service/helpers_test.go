package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ds124wfegd/college-events/internal/database/memory"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func adminCtx() context.Context {
	return entity.WithCaller(context.Background(), entity.SystemCaller)
}

func userCtx() context.Context {
	return entity.WithCaller(context.Background(), entity.Caller{UserID: "u-1", Role: entity.RoleUser})
}

// recordingPublisher remembers the notification types it received.
type recordingPublisher struct {
	mu    sync.Mutex
	types []entity.NotificationType
}

func (p *recordingPublisher) Publish(_ context.Context, n *entity.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, n.Type)
	return nil
}

func (p *recordingPublisher) count(t entity.NotificationType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, got := range p.types {
		if got == t {
			n++
		}
	}
	return n
}

type testEnv struct {
	t         *testing.T
	store     *memory.Store
	svc       *Services
	publisher *recordingPublisher
	seq       atomic.Int64
}

func newTestEnv(t *testing.T, mutate ...func(o *Options)) *testEnv {
	t.Helper()

	env := &testEnv{t: t, store: memory.NewStore(), publisher: &recordingPublisher{}}
	opts := DefaultOptions()
	// every call to the clock moves it forward by a second
	opts.Now = func() time.Time {
		return testStart.Add(time.Duration(env.seq.Add(1)) * time.Second)
	}
	for _, m := range mutate {
		m(&opts)
	}

	env.svc = NewServices(env.store, env.publisher, nil, opts)
	return env
}

func (e *testEnv) college(name string) *entity.College {
	e.t.Helper()
	college, err := e.svc.Colleges.CreateCollege(adminCtx(), &CollegeRequest{Name: name, City: "Boston"})
	require.NoError(e.t, err)
	return college
}

func (e *testEnv) student(collegeID uuid.UUID) *entity.Student {
	e.t.Helper()
	n := e.seq.Add(1)
	student, err := e.svc.Students.CreateStudent(adminCtx(), &StudentRequest{
		StudentID:   fmt.Sprintf("S-%05d", n),
		FirstName:   "Student",
		LastName:    fmt.Sprintf("No%05d", n),
		Email:       fmt.Sprintf("student%d@example.com", n),
		YearOfStudy: 2,
		CollegeID:   collegeID,
	})
	require.NoError(e.t, err)
	return student
}

func (e *testEnv) students(collegeID uuid.UUID, n int) []*entity.Student {
	e.t.Helper()
	result := make([]*entity.Student, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, e.student(collegeID))
	}
	return result
}

func (e *testEnv) event(collegeID uuid.UUID, capacity int, date time.Time) *entity.EventWithAvailability {
	e.t.Helper()
	event, err := e.svc.Events.CreateEvent(adminCtx(), &EventRequest{
		Name:        fmt.Sprintf("Event %d", e.seq.Add(1)),
		EventDate:   entity.NewEventTime(date),
		Location:    "Main hall",
		MaxCapacity: capacity,
		EventType:   entity.EventTypeWorkshop,
		CollegeID:   collegeID,
	})
	require.NoError(e.t, err)
	return event
}

func (e *testEnv) register(studentID, eventID uuid.UUID) {
	e.t.Helper()
	_, err := e.svc.Registrations.Register(context.Background(), studentID, eventID)
	require.NoError(e.t, err)
}

func (e *testEnv) mark(studentID, eventID uuid.UUID, present bool) {
	e.t.Helper()
	var err error
	if present {
		_, err = e.svc.Attendance.MarkPresent(adminCtx(), studentID, eventID)
	} else {
		_, err = e.svc.Attendance.MarkAbsent(adminCtx(), studentID, eventID)
	}
	require.NoError(e.t, err)
}

func (e *testEnv) feedback(studentID, eventID uuid.UUID, rating int) *entity.Feedback {
	e.t.Helper()
	fb, err := e.svc.Feedback.SubmitFeedback(context.Background(), &FeedbackRequest{
		StudentID: studentID,
		EventID:   eventID,
		Rating:    rating,
		Comment:   "good",
	})
	require.NoError(e.t, err)
	return fb
}
