package database

import (
	"context"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type CollegeRepository interface {
	Create(ctx context.Context, college *entity.College) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.College, error)
	GetByName(ctx context.Context, name string) (*entity.College, error)
	GetAll(ctx context.Context) ([]*entity.College, error)
	Update(ctx context.Context, college *entity.College) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type StudentRepository interface {
	Create(ctx context.Context, student *entity.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Student, error)
	GetByStudentID(ctx context.Context, studentID string) (*entity.Student, error)
	GetByEmail(ctx context.Context, email string) (*entity.Student, error)
	GetAll(ctx context.Context) ([]*entity.Student, error)
	GetByCollegeID(ctx context.Context, collegeID uuid.UUID) ([]*entity.Student, error)
	Search(ctx context.Context, term string) ([]*entity.Student, error)
	Update(ctx context.Context, student *entity.Student) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EventWithAvailability, error)
	// LockByID locks the event row until the surrounding transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	GetAll(ctx context.Context) ([]*entity.EventWithAvailability, error)
	GetByCollegeID(ctx context.Context, collegeID uuid.UUID) ([]*entity.EventWithAvailability, error)
	GetByType(ctx context.Context, eventType entity.EventType) ([]*entity.EventWithAvailability, error)
	GetEventsByDateRange(ctx context.Context, from, to time.Time) ([]*entity.EventWithAvailability, error)
	Search(ctx context.Context, term string) ([]*entity.EventWithAvailability, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RegistrationRepository interface {
	Create(ctx context.Context, registration *entity.Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Registration, error)
	GetActive(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Registration, error)
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, filter entity.RegistrationFilter) ([]*entity.Registration, error)
	Count(ctx context.Context, filter entity.RegistrationFilter) (int, error)
	DeleteByStudentID(ctx context.Context, studentID uuid.UUID) error
	DeleteByEventID(ctx context.Context, eventID uuid.UUID) error
}

type AttendanceRepository interface {
	// Upsert inserts or overwrites the record for the (student, event) pair.
	Upsert(ctx context.Context, attendance *entity.Attendance) error
	Get(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Attendance, error)
	List(ctx context.Context, filter entity.AttendanceFilter) ([]*entity.Attendance, error)
	Count(ctx context.Context, filter entity.AttendanceFilter) (int, error)
	DeleteByStudentID(ctx context.Context, studentID uuid.UUID) error
	DeleteByEventID(ctx context.Context, eventID uuid.UUID) error
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Feedback, error)
	Get(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Feedback, error)
	Update(ctx context.Context, feedback *entity.Feedback) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter entity.FeedbackFilter) ([]*entity.Feedback, error)
	Count(ctx context.Context, filter entity.FeedbackFilter) (int, error)
	// AverageRating returns the unrounded mean rating and the number of ratings.
	AverageRating(ctx context.Context, eventID uuid.UUID) (float64, int, error)
	DeleteByStudentID(ctx context.Context, studentID uuid.UUID) error
	DeleteByEventID(ctx context.Context, eventID uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Colleges() CollegeRepository
	Students() StudentRepository
	Events() EventRepository
	Registrations() RegistrationRepository
	Attendance() AttendanceRepository
	Feedback() FeedbackRepository
	Users() UserRepository
}

// Store is the entity storage. Mutations that check and write must run in InTx;
// reports that read several tables run in InReadTx to see one snapshot.
type Store interface {
	Repositories
	InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	InReadTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Close() error
}
