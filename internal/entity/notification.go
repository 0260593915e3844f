package entity

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationRegistrationCreated   NotificationType = "registration.created"
	NotificationRegistrationCancelled NotificationType = "registration.cancelled"
	NotificationEventFull             NotificationType = "event.full"
	NotificationAttendanceMarked      NotificationType = "attendance.marked"
	NotificationFeedbackSubmitted     NotificationType = "feedback.submitted"
	NotificationFeedbackUpdated       NotificationType = "feedback.updated"
	NotificationFeedbackDeleted       NotificationType = "feedback.deleted"
	NotificationEventChanged          NotificationType = "event.changed"
	NotificationStudentChanged        NotificationType = "student.changed"
	NotificationCollegeChanged        NotificationType = "college.changed"
)

// Notification is a domain event published after a mutation commits.
type Notification struct {
	ID         uuid.UUID              `json:"id"`
	Type       NotificationType       `json:"type"`
	StudentID  *uuid.UUID             `json:"studentId,omitempty"`
	EventID    *uuid.UUID             `json:"eventId,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func NewNotification(t NotificationType, studentID, eventID *uuid.UUID, data map[string]interface{}) *Notification {
	return &Notification{
		ID:         uuid.New(),
		Type:       t,
		StudentID:  studentID,
		EventID:    eventID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}
