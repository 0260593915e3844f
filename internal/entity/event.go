package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeConference EventType = "Conference"
	EventTypeWorkshop   EventType = "Workshop"
	EventTypeSeminar    EventType = "Seminar"
	EventTypeCultural   EventType = "Cultural"
	EventTypeSports     EventType = "Sports"
	EventTypeTechnical  EventType = "Technical"
	EventTypeOther      EventType = "Other"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeConference, EventTypeWorkshop, EventTypeSeminar, EventTypeCultural,
		EventTypeSports, EventTypeTechnical, EventTypeOther:
		return true
	}
	return false
}

type Event struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	EventDate   EventTime `json:"eventDate" db:"event_date"`
	Location    string    `json:"location" db:"location"`
	MaxCapacity int       `json:"maxCapacity" db:"max_capacity"`
	EventType   EventType `json:"eventType" db:"event_type"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CollegeID   uuid.UUID `json:"collegeId" db:"college_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// EventWithAvailability carries the registration count derived from live rows.
type EventWithAvailability struct {
	Event
	CurrentRegistrations int `json:"currentRegistrations"`
	AvailableSpots       int `json:"availableSpots"`
}

func NewEventWithAvailability(e Event, current int) *EventWithAvailability {
	return &EventWithAvailability{
		Event:                e,
		CurrentRegistrations: current,
		AvailableSpots:       e.MaxCapacity - current,
	}
}

func (e *EventWithAvailability) IsFull() bool {
	return e.CurrentRegistrations >= e.MaxCapacity
}
