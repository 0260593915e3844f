package service

import (
	"context"
	"errors"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type registrationService struct {
	*base
}

// Register locks the event row first so the capacity check and the insert are
// serialized against every other registration for the same event.
func (s *registrationService) Register(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Registration, error) {
	var (
		registration *entity.Registration
		event        *entity.Event
		becameFull   bool
	)

	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		var err error
		event, err = repos.Events().LockByID(ctx, eventID)
		if err != nil {
			return err
		}
		if !event.IsActive {
			return entity.ErrEventInactive
		}
		if _, err := repos.Students().GetByID(ctx, studentID); err != nil {
			return err
		}

		_, err = repos.Registrations().GetActive(ctx, studentID, eventID)
		switch {
		case err == nil:
			return entity.ErrDuplicateRegistration
		case !errors.Is(err, entity.ErrRegistrationNotFound):
			return err
		}

		current, err := repos.Registrations().Count(ctx, entity.RegistrationFilter{EventID: &eventID})
		if err != nil {
			return err
		}
		if current >= event.MaxCapacity {
			return entity.ErrCapacityExceeded
		}

		registration = &entity.Registration{
			ID:               uuid.New(),
			StudentID:        studentID,
			EventID:          eventID,
			RegistrationDate: s.now(),
			IsConfirmed:      true,
		}
		if err := repos.Registrations().Create(ctx, registration); err != nil {
			return err
		}
		becameFull = current+1 == event.MaxCapacity
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"student_id": studentID,
			"event_id":   eventID,
		}).WithError(err).Debug("Registration rejected")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"registration_id": registration.ID,
		"student_id":      studentID,
		"event_id":        eventID,
	}).Info("Registration created")

	s.notify(ctx, entity.NewNotification(entity.NotificationRegistrationCreated, ptr(studentID), ptr(eventID),
		map[string]interface{}{"registration_id": registration.ID}))
	if becameFull {
		s.notify(ctx, entity.NewNotification(entity.NotificationEventFull, nil, ptr(eventID),
			map[string]interface{}{"event_name": event.Name, "max_capacity": event.MaxCapacity}))
	}
	return registration, nil
}

func (s *registrationService) Cancel(ctx context.Context, studentID, eventID uuid.UUID, force bool) error {
	var registration *entity.Registration

	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		if _, err := repos.Events().LockByID(ctx, eventID); err != nil {
			return err
		}

		var err error
		registration, err = repos.Registrations().GetActive(ctx, studentID, eventID)
		if err != nil {
			return err
		}

		if !force {
			_, err := repos.Attendance().Get(ctx, studentID, eventID)
			switch {
			case err == nil:
				return entity.ErrAttendanceRecorded
			case !errors.Is(err, entity.ErrAttendanceNotFound):
				return err
			}
		}

		return repos.Registrations().Cancel(ctx, registration.ID, s.now())
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"registration_id": registration.ID,
		"student_id":      studentID,
		"event_id":        eventID,
		"forced":          force,
	}).Info("Registration cancelled")

	s.notify(ctx, entity.NewNotification(entity.NotificationRegistrationCancelled, ptr(studentID), ptr(eventID),
		map[string]interface{}{"registration_id": registration.ID, "forced": force}))
	return nil
}

func (s *registrationService) GetRegistration(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Registration, error) {
	return s.store.Registrations().GetActive(ctx, studentID, eventID)
}

func (s *registrationService) GetAllRegistrations(ctx context.Context) ([]*entity.Registration, error) {
	return s.list(ctx, entity.RegistrationFilter{})
}

func (s *registrationService) GetEventRegistrations(ctx context.Context, eventID uuid.UUID) ([]*entity.Registration, error) {
	return s.list(ctx, entity.RegistrationFilter{EventID: &eventID})
}

func (s *registrationService) GetStudentRegistrations(ctx context.Context, studentID uuid.UUID) ([]*entity.Registration, error) {
	return s.list(ctx, entity.RegistrationFilter{StudentID: &studentID})
}

func (s *registrationService) CountEventRegistrations(ctx context.Context, eventID uuid.UUID) (int, error) {
	return s.store.Registrations().Count(ctx, entity.RegistrationFilter{EventID: &eventID})
}

func (s *registrationService) list(ctx context.Context, filter entity.RegistrationFilter) ([]*entity.Registration, error) {
	registrations, err := s.store.Registrations().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if registrations == nil {
		registrations = []*entity.Registration{}
	}
	return registrations, nil
}
