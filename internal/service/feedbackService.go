package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type FeedbackRequest struct {
	StudentID uuid.UUID `json:"studentId" validate:"required"`
	EventID   uuid.UUID `json:"eventId" validate:"required"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment" validate:"max=2000"`
}

type feedbackService struct {
	*base
	requireAttendance bool
}

// check validates the arguments; rating and comment errors keep their own sentinels.
func (s *feedbackService) check(req *FeedbackRequest) error {
	if req.Rating < entity.MinRating || req.Rating > entity.MaxRating {
		return entity.ErrInvalidRating
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if req.Comment == "" {
		return entity.ErrEmptyComment
	}
	return s.validateStruct(req)
}

func (s *feedbackService) SubmitFeedback(ctx context.Context, req *FeedbackRequest) (*entity.Feedback, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	feedback := &entity.Feedback{
		ID:        uuid.New(),
		StudentID: req.StudentID,
		EventID:   req.EventID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		event, err := repos.Events().LockByID(ctx, req.EventID)
		if err != nil {
			return err
		}
		if _, err := repos.Students().GetByID(ctx, req.StudentID); err != nil {
			return err
		}
		if !event.IsActive {
			return entity.ErrEventInactive
		}

		_, err = repos.Feedback().Get(ctx, req.StudentID, req.EventID)
		switch {
		case err == nil:
			return entity.ErrDuplicateFeedback
		case !errors.Is(err, entity.ErrFeedbackNotFound):
			return err
		}

		if err := s.checkEligible(ctx, repos, req.StudentID, req.EventID); err != nil {
			return err
		}

		feedback.FeedbackDate = s.now()
		return repos.Feedback().Create(ctx, feedback)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"feedback_id": feedback.ID,
		"student_id":  req.StudentID,
		"event_id":    req.EventID,
		"rating":      req.Rating,
	}).Info("Feedback submitted")

	s.notify(ctx, entity.NewNotification(entity.NotificationFeedbackSubmitted, ptr(req.StudentID), ptr(req.EventID),
		map[string]interface{}{"feedback_id": feedback.ID, "rating": feedback.Rating}))
	return feedback, nil
}

// checkEligible requires a present attendance mark, or only an active
// registration when attendance is not required.
func (s *feedbackService) checkEligible(ctx context.Context, repos database.Repositories, studentID, eventID uuid.UUID) error {
	if !s.requireAttendance {
		if _, err := repos.Registrations().GetActive(ctx, studentID, eventID); err != nil {
			if errors.Is(err, entity.ErrRegistrationNotFound) {
				return entity.ErrNotRegistered
			}
			return err
		}
		return nil
	}

	attendance, err := repos.Attendance().Get(ctx, studentID, eventID)
	if err != nil {
		if errors.Is(err, entity.ErrAttendanceNotFound) {
			return entity.ErrNotAttended
		}
		return err
	}
	if !attendance.IsPresent {
		return entity.ErrNotAttended
	}
	return nil
}

func (s *feedbackService) UpdateFeedback(ctx context.Context, req *FeedbackRequest) (*entity.Feedback, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	var feedback *entity.Feedback
	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		if _, err := repos.Events().GetByID(ctx, req.EventID); err != nil {
			return err
		}
		if _, err := repos.Students().GetByID(ctx, req.StudentID); err != nil {
			return err
		}

		current, err := repos.Feedback().Get(ctx, req.StudentID, req.EventID)
		if err != nil {
			return err
		}

		current.Rating = req.Rating
		current.Comment = req.Comment
		current.FeedbackDate = s.now()
		if err := repos.Feedback().Update(ctx, current); err != nil {
			return err
		}
		feedback = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"feedback_id": feedback.ID, "rating": feedback.Rating}).Info("Feedback updated")
	s.notify(ctx, entity.NewNotification(entity.NotificationFeedbackUpdated, ptr(req.StudentID), ptr(req.EventID),
		map[string]interface{}{"feedback_id": feedback.ID, "rating": feedback.Rating}))
	return feedback, nil
}

func (s *feedbackService) DeleteFeedback(ctx context.Context, feedbackID uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	var feedback *entity.Feedback
	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		var err error
		feedback, err = repos.Feedback().GetByID(ctx, feedbackID)
		if err != nil {
			return err
		}
		return repos.Feedback().Delete(ctx, feedbackID)
	})
	if err != nil {
		return err
	}

	logrus.WithField("feedback_id", feedbackID).Info("Feedback deleted")
	s.notify(ctx, entity.NewNotification(entity.NotificationFeedbackDeleted, ptr(feedback.StudentID), ptr(feedback.EventID),
		map[string]interface{}{"feedback_id": feedbackID}))
	return nil
}

func (s *feedbackService) GetFeedback(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Feedback, error) {
	return s.store.Feedback().Get(ctx, studentID, eventID)
}

func (s *feedbackService) GetAllFeedback(ctx context.Context) ([]*entity.Feedback, error) {
	return s.list(ctx, entity.FeedbackFilter{})
}

func (s *feedbackService) GetEventFeedback(ctx context.Context, eventID uuid.UUID) ([]*entity.Feedback, error) {
	return s.list(ctx, entity.FeedbackFilter{EventID: &eventID})
}

func (s *feedbackService) GetStudentFeedback(ctx context.Context, studentID uuid.UUID) ([]*entity.Feedback, error) {
	return s.list(ctx, entity.FeedbackFilter{StudentID: &studentID})
}

func (s *feedbackService) CountEventFeedback(ctx context.Context, eventID uuid.UUID) (int, error) {
	return s.store.Feedback().Count(ctx, entity.FeedbackFilter{EventID: &eventID})
}

// GetAverageRating rounds to one decimal; an event without feedback averages 0.
func (s *feedbackService) GetAverageRating(ctx context.Context, eventID uuid.UUID) (float64, error) {
	avg, _, err := s.store.Feedback().AverageRating(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return entity.Round(avg, 1), nil
}

func (s *feedbackService) list(ctx context.Context, filter entity.FeedbackFilter) ([]*entity.Feedback, error) {
	feedbacks, err := s.store.Feedback().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if feedbacks == nil {
		feedbacks = []*entity.Feedback{}
	}
	return feedbacks, nil
}
