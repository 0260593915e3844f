package repository

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type feedbackRepository struct {
	db querier
}

const feedbackColumns = `id, student_id, event_id, rating, comment, feedback_date`

func scanFeedback(row rowScanner) (*entity.Feedback, error) {
	var feedback entity.Feedback
	err := row.Scan(
		&feedback.ID,
		&feedback.StudentID,
		&feedback.EventID,
		&feedback.Rating,
		&feedback.Comment,
		&feedback.FeedbackDate,
	)
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func feedbackWhere(filter entity.FeedbackFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter.StudentID != nil {
		w.add("student_id = $%d", *filter.StudentID)
	}
	if filter.EventID != nil {
		w.add("event_id = $%d", *filter.EventID)
	}
	return w
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	query := `
		INSERT INTO feedbacks (id, student_id, event_id, rating, comment, feedback_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		feedback.ID,
		feedback.StudentID,
		feedback.EventID,
		feedback.Rating,
		feedback.Comment,
		feedback.FeedbackDate,
	)
	return mapError(err)
}

func (r *feedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks WHERE id = $1`

	feedback, err := scanFeedback(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, entity.ErrFeedbackNotFound)
	}
	return feedback, nil
}

func (r *feedbackRepository) Get(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks WHERE student_id = $1 AND event_id = $2`

	feedback, err := scanFeedback(r.db.QueryRowContext(ctx, query, studentID, eventID))
	if err != nil {
		return nil, notFound(err, entity.ErrFeedbackNotFound)
	}
	return feedback, nil
}

func (r *feedbackRepository) Update(ctx context.Context, feedback *entity.Feedback) error {
	query := `UPDATE feedbacks SET rating = $1, comment = $2, feedback_date = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		feedback.Rating,
		feedback.Comment,
		feedback.FeedbackDate,
		feedback.ID,
	)
	if err != nil {
		return mapError(fmt.Errorf("failed to update feedback: %w", err))
	}
	return expectAffected(result, entity.ErrFeedbackNotFound)
}

func (r *feedbackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feedbacks WHERE id = $1`, id)
	if err != nil {
		return mapError(fmt.Errorf("failed to delete feedback: %w", err))
	}
	return expectAffected(result, entity.ErrFeedbackNotFound)
}

func (r *feedbackRepository) List(ctx context.Context, filter entity.FeedbackFilter) ([]*entity.Feedback, error) {
	w := feedbackWhere(filter)
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks` + w.String() +
		` ORDER BY feedback_date DESC, id`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to query feedbacks: %w", err))
	}
	defer rows.Close()

	var feedbacks []*entity.Feedback
	for rows.Next() {
		feedback, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedbacks = append(feedbacks, feedback)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("error iterating feedbacks: %w", err))
	}
	return feedbacks, nil
}

func (r *feedbackRepository) Count(ctx context.Context, filter entity.FeedbackFilter) (int, error) {
	w := feedbackWhere(filter)

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedbacks`+w.String(), w.args...).Scan(&count); err != nil {
		return 0, mapError(fmt.Errorf("failed to count feedbacks: %w", err))
	}
	return count, nil
}

func (r *feedbackRepository) AverageRating(ctx context.Context, eventID uuid.UUID) (float64, int, error) {
	query := `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM feedbacks WHERE event_id = $1`

	var (
		avg   float64
		count int
	)
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&avg, &count); err != nil {
		return 0, 0, mapError(fmt.Errorf("failed to average ratings: %w", err))
	}
	return avg, count, nil
}

func (r *feedbackRepository) DeleteByStudentID(ctx context.Context, studentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feedbacks WHERE student_id = $1`, studentID)
	return mapError(err)
}

func (r *feedbackRepository) DeleteByEventID(ctx context.Context, eventID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feedbacks WHERE event_id = $1`, eventID)
	return mapError(err)
}
