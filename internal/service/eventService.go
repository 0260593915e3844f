package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventRequest represents the data needed to create or update an event
type EventRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Description string           `json:"description" validate:"max=2000"`
	EventDate   entity.EventTime `json:"eventDate"`
	Location    string           `json:"location" validate:"max=200"`
	MaxCapacity int              `json:"maxCapacity" validate:"required,min=1"`
	EventType   entity.EventType `json:"eventType" validate:"required"`
	// IsActive is ignored on create: new events always start active.
	IsActive  *bool     `json:"isActive,omitempty"`
	CollegeID uuid.UUID `json:"collegeId" validate:"required"`
}

func (s *eventService) checkRequest(req *EventRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if err := s.validateStruct(req); err != nil {
		return err
	}
	if req.EventDate.IsZero() {
		return entity.InvalidArgument("eventDate is required")
	}
	if !req.EventType.Valid() {
		return entity.ErrInvalidEventType
	}
	return nil
}

type eventService struct {
	*base
}

func (s *eventService) CreateEvent(ctx context.Context, req *EventRequest) (*entity.EventWithAvailability, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	event := entity.Event{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		EventDate:   entity.NewEventTime(req.EventDate.Time),
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
		EventType:   req.EventType,
		IsActive:    true,
		CollegeID:   req.CollegeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		if _, err := repos.Colleges().GetByID(ctx, req.CollegeID); err != nil {
			return err
		}
		return repos.Events().Create(ctx, &event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id":     event.ID,
		"name":         event.Name,
		"max_capacity": event.MaxCapacity,
	}).Info("Event created")
	s.notify(ctx, entity.NewNotification(entity.NotificationEventChanged, nil, ptr(event.ID), nil))
	return entity.NewEventWithAvailability(event, 0), nil
}

func (s *eventService) GetEvent(ctx context.Context, id uuid.UUID) (*entity.EventWithAvailability, error) {
	return s.store.Events().GetByID(ctx, id)
}

func (s *eventService) GetAllEvents(ctx context.Context) ([]*entity.EventWithAvailability, error) {
	return s.store.Events().GetAll(ctx)
}

// UpdateEvent may not lower maxCapacity below the number of active
// registrations; the event row is locked so the check holds until commit.
func (s *eventService) UpdateEvent(ctx context.Context, id uuid.UUID, req *EventRequest) (*entity.EventWithAvailability, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}

	var updated *entity.EventWithAvailability
	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		event, err := repos.Events().LockByID(ctx, id)
		if err != nil {
			return err
		}

		current, err := repos.Registrations().Count(ctx, entity.RegistrationFilter{EventID: &id})
		if err != nil {
			return err
		}
		if req.MaxCapacity < current {
			return entity.ErrCapacityBelowCurrent
		}
		if event.CollegeID != req.CollegeID {
			if _, err := repos.Colleges().GetByID(ctx, req.CollegeID); err != nil {
				return err
			}
		}

		event.Name = req.Name
		event.Description = req.Description
		event.EventDate = entity.NewEventTime(req.EventDate.Time)
		event.Location = req.Location
		event.MaxCapacity = req.MaxCapacity
		event.EventType = req.EventType
		event.CollegeID = req.CollegeID
		if req.IsActive != nil {
			event.IsActive = *req.IsActive
		}
		event.UpdatedAt = s.now()

		if err := repos.Events().Update(ctx, event); err != nil {
			return err
		}
		updated = entity.NewEventWithAvailability(*event, current)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("event_id", id).Info("Event updated")
	s.notify(ctx, entity.NewNotification(entity.NotificationEventChanged, nil, ptr(id), nil))
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id uuid.UUID, cascade bool) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		if cascade {
			if _, err := repos.Events().LockByID(ctx, id); err != nil {
				return err
			}
			return deleteEventTree(ctx, repos, id)
		}
		return repos.Events().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"event_id": id, "cascade": cascade}).Info("Event deleted")
	s.notify(ctx, entity.NewNotification(entity.NotificationEventChanged, nil, ptr(id), nil))
	return nil
}

func (s *eventService) GetActiveEvents(ctx context.Context) ([]*entity.EventWithAvailability, error) {
	events, err := s.store.Events().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterEvents(events, func(e *entity.EventWithAvailability) bool { return e.IsActive }), nil
}

// GetAvailableEvents returns active events that still have free spots.
func (s *eventService) GetAvailableEvents(ctx context.Context) ([]*entity.EventWithAvailability, error) {
	events, err := s.store.Events().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterEvents(events, func(e *entity.EventWithAvailability) bool { return e.IsActive && !e.IsFull() }), nil
}

func (s *eventService) GetEventsByCollege(ctx context.Context, collegeID uuid.UUID) ([]*entity.EventWithAvailability, error) {
	return s.store.Events().GetByCollegeID(ctx, collegeID)
}

func (s *eventService) GetEventsByType(ctx context.Context, eventType entity.EventType) ([]*entity.EventWithAvailability, error) {
	if !eventType.Valid() {
		return nil, entity.ErrInvalidEventType
	}
	return s.store.Events().GetByType(ctx, eventType)
}

func (s *eventService) GetEventsByDateRange(ctx context.Context, from, to time.Time) ([]*entity.EventWithAvailability, error) {
	if to.Before(from) {
		return nil, entity.InvalidArgument("end of range is before its start")
	}
	return s.store.Events().GetEventsByDateRange(ctx, from, to)
}

func (s *eventService) SearchEvents(ctx context.Context, term string) ([]*entity.EventWithAvailability, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.store.Events().GetAll(ctx)
	}
	return s.store.Events().Search(ctx, term)
}

func filterEvents(events []*entity.EventWithAvailability, keep func(e *entity.EventWithAvailability) bool) []*entity.EventWithAvailability {
	result := make([]*entity.EventWithAvailability, 0, len(events))
	for _, e := range events {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

func deleteEventTree(ctx context.Context, repos database.Repositories, id uuid.UUID) error {
	if err := repos.Feedback().DeleteByEventID(ctx, id); err != nil {
		return err
	}
	if err := repos.Attendance().DeleteByEventID(ctx, id); err != nil {
		return err
	}
	if err := repos.Registrations().DeleteByEventID(ctx, id); err != nil {
		return err
	}
	return repos.Events().Delete(ctx, id)
}
