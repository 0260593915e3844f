package entity

import (
	"time"

	"github.com/google/uuid"
)

type Registration struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	StudentID        uuid.UUID  `json:"studentId" db:"student_id"`
	EventID          uuid.UUID  `json:"eventId" db:"event_id"`
	RegistrationDate time.Time  `json:"registrationDate" db:"registration_date"`
	IsConfirmed      bool       `json:"isConfirmed" db:"is_confirmed"`
	CancelledAt      *time.Time `json:"cancelledAt,omitempty" db:"cancelled_at"`
}

func (r *Registration) IsActive() bool {
	return r.CancelledAt == nil
}

type Attendance struct {
	ID             uuid.UUID `json:"id" db:"id"`
	StudentID      uuid.UUID `json:"studentId" db:"student_id"`
	EventID        uuid.UUID `json:"eventId" db:"event_id"`
	IsPresent      bool      `json:"isPresent" db:"is_present"`
	AttendanceTime time.Time `json:"attendanceTime" db:"attendance_time"`
}

type Feedback struct {
	ID           uuid.UUID `json:"id" db:"id"`
	StudentID    uuid.UUID `json:"studentId" db:"student_id"`
	EventID      uuid.UUID `json:"eventId" db:"event_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	FeedbackDate time.Time `json:"feedbackDate" db:"feedback_date"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// Filters for the join entities. Nil ids match everything.

type RegistrationFilter struct {
	StudentID        *uuid.UUID
	EventID          *uuid.UUID
	IncludeCancelled bool
}

type AttendanceFilter struct {
	StudentID   *uuid.UUID
	EventID     *uuid.UUID
	PresentOnly bool
}

type FeedbackFilter struct {
	StudentID *uuid.UUID
	EventID   *uuid.UUID
}
