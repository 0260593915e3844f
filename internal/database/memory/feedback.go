package memory

import (
	"context"
	"sort"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type feedbackRepository struct {
	v *view
}

func feedbackMatches(f entity.Feedback, filter entity.FeedbackFilter) bool {
	return matches(filter.StudentID, f.StudentID) && matches(filter.EventID, f.EventID)
}

func (r feedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.students[feedback.StudentID]; !ok {
			return entity.ErrStudentNotFound
		}
		if _, ok := t.events[feedback.EventID]; !ok {
			return entity.ErrEventNotFound
		}
		for _, f := range t.feedback {
			if f.StudentID == feedback.StudentID && f.EventID == feedback.EventID {
				return entity.ErrDuplicateFeedback
			}
		}
		t.feedback[feedback.ID] = *feedback
		return nil
	})
}

func (r feedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Feedback, error) {
	var feedback entity.Feedback
	err := r.v.read(ctx, func(t *tables) error {
		f, ok := t.feedback[id]
		if !ok {
			return entity.ErrFeedbackNotFound
		}
		feedback = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r feedbackRepository) Get(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Feedback, error) {
	var feedback *entity.Feedback
	err := r.v.read(ctx, func(t *tables) error {
		for _, f := range t.feedback {
			if f.StudentID == studentID && f.EventID == eventID {
				f := f
				feedback = &f
				return nil
			}
		}
		return entity.ErrFeedbackNotFound
	})
	return feedback, err
}

func (r feedbackRepository) Update(ctx context.Context, feedback *entity.Feedback) error {
	return r.v.write(ctx, func(t *tables) error {
		current, ok := t.feedback[feedback.ID]
		if !ok {
			return entity.ErrFeedbackNotFound
		}
		current.Rating = feedback.Rating
		current.Comment = feedback.Comment
		current.FeedbackDate = feedback.FeedbackDate
		t.feedback[feedback.ID] = current
		return nil
	})
}

func (r feedbackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.feedback[id]; !ok {
			return entity.ErrFeedbackNotFound
		}
		delete(t.feedback, id)
		return nil
	})
}

// List returns the newest feedback first.
func (r feedbackRepository) List(ctx context.Context, filter entity.FeedbackFilter) ([]*entity.Feedback, error) {
	var feedbacks []*entity.Feedback
	err := r.v.read(ctx, func(t *tables) error {
		for _, f := range t.feedback {
			if feedbackMatches(f, filter) {
				f := f
				feedbacks = append(feedbacks, &f)
			}
		}
		return nil
	})
	sort.Slice(feedbacks, func(i, j int) bool {
		a, b := feedbacks[i], feedbacks[j]
		if !a.FeedbackDate.Equal(b.FeedbackDate) {
			return a.FeedbackDate.After(b.FeedbackDate)
		}
		return lessID(a.ID, b.ID)
	})
	return feedbacks, err
}

func (r feedbackRepository) Count(ctx context.Context, filter entity.FeedbackFilter) (int, error) {
	count := 0
	err := r.v.read(ctx, func(t *tables) error {
		for _, f := range t.feedback {
			if feedbackMatches(f, filter) {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r feedbackRepository) AverageRating(ctx context.Context, eventID uuid.UUID) (float64, int, error) {
	var sum, count int
	err := r.v.read(ctx, func(t *tables) error {
		for _, f := range t.feedback {
			if f.EventID == eventID {
				sum += f.Rating
				count++
			}
		}
		return nil
	})
	if err != nil || count == 0 {
		return 0, 0, err
	}
	return float64(sum) / float64(count), count, nil
}

func (r feedbackRepository) DeleteByStudentID(ctx context.Context, studentID uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		for id, f := range t.feedback {
			if f.StudentID == studentID {
				delete(t.feedback, id)
			}
		}
		return nil
	})
}

func (r feedbackRepository) DeleteByEventID(ctx context.Context, eventID uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		for id, f := range t.feedback {
			if f.EventID == eventID {
				delete(t.feedback, id)
			}
		}
		return nil
	})
}
