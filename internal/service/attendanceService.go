package service

import (
	"context"
	"errors"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type attendanceService struct {
	*base
}

func (s *attendanceService) MarkPresent(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Attendance, error) {
	return s.mark(ctx, studentID, eventID, true)
}

func (s *attendanceService) MarkAbsent(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Attendance, error) {
	return s.mark(ctx, studentID, eventID, false)
}

// mark upserts the pair's record; marking again overwrites the previous value.
func (s *attendanceService) mark(ctx context.Context, studentID, eventID uuid.UUID, present bool) (*entity.Attendance, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	attendance := &entity.Attendance{
		ID:        uuid.New(),
		StudentID: studentID,
		EventID:   eventID,
		IsPresent: present,
	}

	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		if _, err := repos.Events().LockByID(ctx, eventID); err != nil {
			return err
		}
		if _, err := repos.Students().GetByID(ctx, studentID); err != nil {
			return err
		}

		if _, err := repos.Registrations().GetActive(ctx, studentID, eventID); err != nil {
			if errors.Is(err, entity.ErrRegistrationNotFound) {
				return entity.ErrNotRegistered
			}
			return err
		}

		attendance.AttendanceTime = s.now()
		return repos.Attendance().Upsert(ctx, attendance)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"student_id": studentID,
		"event_id":   eventID,
		"present":    present,
	}).Info("Attendance marked")

	s.notify(ctx, entity.NewNotification(entity.NotificationAttendanceMarked, ptr(studentID), ptr(eventID),
		map[string]interface{}{"present": present}))
	return attendance, nil
}

func (s *attendanceService) GetAttendance(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Attendance, error) {
	return s.store.Attendance().Get(ctx, studentID, eventID)
}

func (s *attendanceService) GetAllAttendance(ctx context.Context) ([]*entity.Attendance, error) {
	return s.list(ctx, entity.AttendanceFilter{})
}

func (s *attendanceService) GetEventAttendance(ctx context.Context, eventID uuid.UUID, presentOnly bool) ([]*entity.Attendance, error) {
	return s.list(ctx, entity.AttendanceFilter{EventID: &eventID, PresentOnly: presentOnly})
}

func (s *attendanceService) GetStudentAttendance(ctx context.Context, studentID uuid.UUID, presentOnly bool) ([]*entity.Attendance, error) {
	return s.list(ctx, entity.AttendanceFilter{StudentID: &studentID, PresentOnly: presentOnly})
}

func (s *attendanceService) CountPresent(ctx context.Context, eventID uuid.UUID) (int, error) {
	return s.store.Attendance().Count(ctx, entity.AttendanceFilter{EventID: &eventID, PresentOnly: true})
}

// GetAttendanceStats is record-based: only pairs with an attendance row count.
func (s *attendanceService) GetAttendanceStats(ctx context.Context, eventID uuid.UUID) (entity.AttendanceStats, error) {
	var present, total int
	err := s.store.InReadTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		var err error
		if present, err = repos.Attendance().Count(ctx, entity.AttendanceFilter{EventID: &eventID, PresentOnly: true}); err != nil {
			return err
		}
		total, err = repos.Attendance().Count(ctx, entity.AttendanceFilter{EventID: &eventID})
		return err
	})
	if err != nil {
		return entity.AttendanceStats{}, err
	}
	return entity.NewAttendanceStats(present, total), nil
}

func (s *attendanceService) list(ctx context.Context, filter entity.AttendanceFilter) ([]*entity.Attendance, error) {
	records, err := s.store.Attendance().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*entity.Attendance{}
	}
	return records, nil
}
