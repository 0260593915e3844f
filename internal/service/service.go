package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CollegeService interface {
	CreateCollege(ctx context.Context, req *CollegeRequest) (*entity.College, error)
	GetCollege(ctx context.Context, id uuid.UUID) (*entity.College, error)
	GetCollegeByName(ctx context.Context, name string) (*entity.College, error)
	GetAllColleges(ctx context.Context) ([]*entity.College, error)
	UpdateCollege(ctx context.Context, id uuid.UUID, req *CollegeRequest) (*entity.College, error)
	DeleteCollege(ctx context.Context, id uuid.UUID, cascade bool) error
}

type StudentService interface {
	CreateStudent(ctx context.Context, req *StudentRequest) (*entity.Student, error)
	GetStudent(ctx context.Context, id uuid.UUID) (*entity.Student, error)
	GetStudentByStudentID(ctx context.Context, studentID string) (*entity.Student, error)
	GetAllStudents(ctx context.Context) ([]*entity.Student, error)
	GetStudentsByCollege(ctx context.Context, collegeID uuid.UUID) ([]*entity.Student, error)
	SearchStudents(ctx context.Context, term string) ([]*entity.Student, error)
	UpdateStudent(ctx context.Context, id uuid.UUID, req *StudentRequest) (*entity.Student, error)
	DeleteStudent(ctx context.Context, id uuid.UUID, cascade bool) error
}

type EventService interface {
	// Основные операции
	CreateEvent(ctx context.Context, req *EventRequest) (*entity.EventWithAvailability, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*entity.EventWithAvailability, error)
	GetAllEvents(ctx context.Context) ([]*entity.EventWithAvailability, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req *EventRequest) (*entity.EventWithAvailability, error)
	DeleteEvent(ctx context.Context, id uuid.UUID, cascade bool) error

	// Выборки
	GetActiveEvents(ctx context.Context) ([]*entity.EventWithAvailability, error)
	GetAvailableEvents(ctx context.Context) ([]*entity.EventWithAvailability, error)
	GetEventsByCollege(ctx context.Context, collegeID uuid.UUID) ([]*entity.EventWithAvailability, error)
	GetEventsByType(ctx context.Context, eventType entity.EventType) ([]*entity.EventWithAvailability, error)
	GetEventsByDateRange(ctx context.Context, from, to time.Time) ([]*entity.EventWithAvailability, error)
	SearchEvents(ctx context.Context, term string) ([]*entity.EventWithAvailability, error)
}

// RegistrationService links students to events under the capacity rule.
type RegistrationService interface {
	Register(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Registration, error)
	// Cancel refuses to drop a registration that already has attendance unless force is set.
	Cancel(ctx context.Context, studentID, eventID uuid.UUID, force bool) error

	GetRegistration(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Registration, error)
	GetAllRegistrations(ctx context.Context) ([]*entity.Registration, error)
	GetEventRegistrations(ctx context.Context, eventID uuid.UUID) ([]*entity.Registration, error)
	GetStudentRegistrations(ctx context.Context, studentID uuid.UUID) ([]*entity.Registration, error)
	CountEventRegistrations(ctx context.Context, eventID uuid.UUID) (int, error)
}

type AttendanceService interface {
	MarkPresent(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Attendance, error)
	MarkAbsent(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Attendance, error)

	GetAttendance(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Attendance, error)
	GetAllAttendance(ctx context.Context) ([]*entity.Attendance, error)
	GetEventAttendance(ctx context.Context, eventID uuid.UUID, presentOnly bool) ([]*entity.Attendance, error)
	GetStudentAttendance(ctx context.Context, studentID uuid.UUID, presentOnly bool) ([]*entity.Attendance, error)
	CountPresent(ctx context.Context, eventID uuid.UUID) (int, error)
	GetAttendanceStats(ctx context.Context, eventID uuid.UUID) (entity.AttendanceStats, error)
}

type FeedbackService interface {
	SubmitFeedback(ctx context.Context, req *FeedbackRequest) (*entity.Feedback, error)
	UpdateFeedback(ctx context.Context, req *FeedbackRequest) (*entity.Feedback, error)
	DeleteFeedback(ctx context.Context, feedbackID uuid.UUID) error

	GetFeedback(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Feedback, error)
	GetAllFeedback(ctx context.Context) ([]*entity.Feedback, error)
	GetEventFeedback(ctx context.Context, eventID uuid.UUID) ([]*entity.Feedback, error)
	GetStudentFeedback(ctx context.Context, studentID uuid.UUID) ([]*entity.Feedback, error)
	CountEventFeedback(ctx context.Context, eventID uuid.UUID) (int, error)
	GetAverageRating(ctx context.Context, eventID uuid.UUID) (float64, error)
}

// ReportService is read-only: every report is computed from one store snapshot.
type ReportService interface {
	GetStatistics(ctx context.Context) (*entity.SystemStats, error)
	GetEventPopularity(ctx context.Context) ([]*entity.EventPopularity, error)
	GetAttendanceReport(ctx context.Context) ([]*entity.EventAttendanceReport, error)
	GetEventAttendanceReport(ctx context.Context, eventID uuid.UUID) (*entity.EventAttendanceReport, error)
}

// UserService defines the interface for user operations
type UserService interface {
	CreateUser(ctx context.Context, req *UserRequest) (*entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetAllUsers(ctx context.Context) ([]*entity.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *UserRequest) (*entity.User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role entity.Role) (*entity.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	// ResolveCaller applies the stored account to a token caller: a known
	// account overrides the token role and a disabled one is refused.
	ResolveCaller(ctx context.Context, caller entity.Caller) (entity.Caller, error)
}

// Options holds the tunable domain policy.
type Options struct {
	PopularityWeights entity.PopularityWeights
	// RequireAttendance makes feedback depend on a present attendance mark
	// instead of only an active registration.
	RequireAttendance bool
	Now               func() time.Time
}

func DefaultOptions() Options {
	return Options{
		PopularityWeights: entity.DefaultPopularityWeights,
		RequireAttendance: true,
	}
}

type Services struct {
	Colleges      CollegeService
	Students      StudentService
	Events        EventService
	Registrations RegistrationService
	Attendance    AttendanceService
	Feedback      FeedbackService
	Reports       ReportService
	Users         UserService
}

// NewServices wires every service to the same store. publisher and cache may be nil.
func NewServices(store database.Store, publisher Publisher, cache ReportCache, opts Options) *Services {
	b := newBase(store, publisher, opts)
	if cache == nil {
		cache = NopCache{}
	}

	return &Services{
		Colleges:      &collegeService{base: b},
		Students:      &studentService{base: b},
		Events:        &eventService{base: b},
		Registrations: &registrationService{base: b},
		Attendance:    &attendanceService{base: b},
		Feedback:      &feedbackService{base: b, requireAttendance: opts.RequireAttendance},
		Reports:       &reportService{base: b, cache: cache, weights: opts.PopularityWeights},
		Users:         &userService{base: b},
	}
}

// base carries the dependencies shared by all services.
type base struct {
	store     database.Store
	publisher Publisher
	validate  *validator.Validate
	now       func() time.Time
}

func newBase(store database.Store, publisher Publisher, opts Options) *base {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &base{
		store:     store,
		publisher: publisher,
		validate:  validator.New(),
		now:       now,
	}
}

// notify runs after commit; a failed side channel never fails the request.
func (b *base) notify(ctx context.Context, n *entity.Notification) {
	if err := b.publisher.Publish(ctx, n); err != nil {
		logrus.WithError(err).WithField("type", n.Type).Warn("Failed to publish notification")
	}
}

func (b *base) validateStruct(req interface{}) error {
	if err := b.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" failed on "+fe.Tag())
			}
			return entity.InvalidArgument("%s", strings.Join(fields, "; "))
		}
		return entity.InvalidArgument("%v", err)
	}
	return nil
}

func requireAdmin(ctx context.Context) error {
	caller, ok := entity.CallerFrom(ctx)
	if !ok || !caller.IsAdmin() {
		return entity.ErrForbidden
	}
	return nil
}

func ptr(id uuid.UUID) *uuid.UUID {
	return &id
}
