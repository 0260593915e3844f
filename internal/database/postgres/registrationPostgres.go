package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type registrationRepository struct {
	db querier
}

const registrationColumns = `id, student_id, event_id, registration_date, is_confirmed, cancelled_at`

func scanRegistration(row rowScanner) (*entity.Registration, error) {
	var registration entity.Registration
	err := row.Scan(
		&registration.ID,
		&registration.StudentID,
		&registration.EventID,
		&registration.RegistrationDate,
		&registration.IsConfirmed,
		&registration.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func registrationWhere(filter entity.RegistrationFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter.StudentID != nil {
		w.add("student_id = $%d", *filter.StudentID)
	}
	if filter.EventID != nil {
		w.add("event_id = $%d", *filter.EventID)
	}
	if !filter.IncludeCancelled {
		w.addRaw("cancelled_at IS NULL")
	}
	return w
}

func (r *registrationRepository) Create(ctx context.Context, registration *entity.Registration) error {
	query := `
		INSERT INTO registrations (id, student_id, event_id, registration_date, is_confirmed, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		registration.ID,
		registration.StudentID,
		registration.EventID,
		registration.RegistrationDate,
		registration.IsConfirmed,
		registration.CancelledAt,
	)
	return mapError(err)
}

func (r *registrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	registration, err := scanRegistration(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, entity.ErrRegistrationNotFound)
	}
	return registration, nil
}

func (r *registrationRepository) GetActive(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE student_id = $1 AND event_id = $2 AND cancelled_at IS NULL
	`

	registration, err := scanRegistration(r.db.QueryRowContext(ctx, query, studentID, eventID))
	if err != nil {
		return nil, notFound(err, entity.ErrRegistrationNotFound)
	}
	return registration, nil
}

func (r *registrationRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE registrations SET cancelled_at = $1 WHERE id = $2 AND cancelled_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return mapError(fmt.Errorf("failed to cancel registration: %w", err))
	}
	return expectAffected(result, entity.ErrRegistrationNotFound)
}

func (r *registrationRepository) List(ctx context.Context, filter entity.RegistrationFilter) ([]*entity.Registration, error) {
	w := registrationWhere(filter)
	query := `SELECT ` + registrationColumns + ` FROM registrations` + w.String() +
		` ORDER BY registration_date ASC, id`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to query registrations: %w", err))
	}
	defer rows.Close()

	var registrations []*entity.Registration
	for rows.Next() {
		registration, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, registration)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("error iterating registrations: %w", err))
	}
	return registrations, nil
}

func (r *registrationRepository) Count(ctx context.Context, filter entity.RegistrationFilter) (int, error) {
	w := registrationWhere(filter)

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`+w.String(), w.args...).Scan(&count); err != nil {
		return 0, mapError(fmt.Errorf("failed to count registrations: %w", err))
	}
	return count, nil
}

func (r *registrationRepository) DeleteByStudentID(ctx context.Context, studentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE student_id = $1`, studentID)
	return mapError(err)
}

func (r *registrationRepository) DeleteByEventID(ctx context.Context, eventID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = $1`, eventID)
	return mapError(err)
}
