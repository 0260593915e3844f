package entity

import (
	"errors"
	"fmt"
)

// Kind classifies domain errors so transports can map them without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindCapacityExceeded
	KindPreconditionFailed
	KindInvalidArgument
	KindUnavailable
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnavailable:
		return "unavailable"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

type DomainError struct {
	Kind Kind
	msg  string
}

func (e *DomainError) Error() string {
	return e.msg
}

func newError(kind Kind, msg string) *DomainError {
	return &DomainError{Kind: kind, msg: msg}
}

var (
	// College errors
	ErrCollegeNotFound      = newError(KindNotFound, "college not found")
	ErrCollegeAlreadyExists = newError(KindConflict, "college with this name already exists")
	ErrCollegeHasDependents = newError(KindConflict, "college still has students or events")

	// Student errors
	ErrStudentNotFound      = newError(KindNotFound, "student not found")
	ErrStudentIDTaken       = newError(KindConflict, "student with this student id already exists")
	ErrStudentEmailTaken    = newError(KindConflict, "student with this email already exists")
	ErrStudentHasDependents = newError(KindConflict, "student still has registrations, attendance or feedback")

	// Event errors
	ErrEventNotFound        = newError(KindNotFound, "event not found")
	ErrEventInactive        = newError(KindPreconditionFailed, "event is not active")
	ErrEventHasDependents   = newError(KindConflict, "event still has registrations, attendance or feedback")
	ErrCapacityBelowCurrent = newError(KindConflict, "max capacity cannot be lower than current registrations")
	ErrInvalidEventType     = newError(KindInvalidArgument, "invalid event type")

	// Registration errors
	ErrRegistrationNotFound  = newError(KindNotFound, "registration not found")
	ErrDuplicateRegistration = newError(KindConflict, "student is already registered for this event")
	ErrCapacityExceeded      = newError(KindCapacityExceeded, "event is at full capacity")
	ErrAttendanceRecorded    = newError(KindPreconditionFailed, "attendance already recorded for this registration")

	// Attendance errors
	ErrAttendanceNotFound = newError(KindNotFound, "attendance not found")
	ErrNotRegistered      = newError(KindPreconditionFailed, "student is not registered for this event")

	// Feedback errors
	ErrFeedbackNotFound  = newError(KindNotFound, "feedback not found")
	ErrDuplicateFeedback = newError(KindConflict, "student has already submitted feedback for this event")
	ErrNotAttended       = newError(KindPreconditionFailed, "student did not attend this event")
	ErrInvalidRating     = newError(KindInvalidArgument, "rating must be between 1 and 5")
	ErrEmptyComment      = newError(KindInvalidArgument, "comment is required")

	// User errors
	ErrUserNotFound   = newError(KindNotFound, "user not found")
	ErrUsernameTaken  = newError(KindConflict, "username already exists")
	ErrUserEmailTaken = newError(KindConflict, "user with this email already exists")
	ErrInvalidRole    = newError(KindInvalidArgument, "invalid role")
	ErrUserInactive   = newError(KindForbidden, "user account is disabled")

	// General errors
	ErrInvalidInput       = newError(KindInvalidArgument, "invalid input")
	ErrStorageUnavailable = newError(KindUnavailable, "storage unavailable")
	ErrForbidden          = newError(KindForbidden, "forbidden operation")
)

// InvalidArgument wraps a validation message as an InvalidArgument error.
func InvalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Unavailable marks a storage failure as retryable by the caller.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
