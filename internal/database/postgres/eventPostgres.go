package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type eventRepository struct {
	db querier
}

// eventSelect joins active registrations so the count always reflects live rows.
const eventSelect = `
	SELECT
		e.id, e.name, e.description, e.event_date, e.location, e.max_capacity,
		e.event_type, e.is_active, e.college_id, e.created_at, e.updated_at,
		COUNT(r.id) AS current_registrations
	FROM events e
	LEFT JOIN registrations r ON r.event_id = e.id AND r.cancelled_at IS NULL
`

const eventGroupOrder = ` GROUP BY e.id ORDER BY e.event_date ASC, e.id`

func scanEvent(row rowScanner, event *entity.Event, extra ...interface{}) error {
	dest := []interface{}{
		&event.ID,
		&event.Name,
		&event.Description,
		&event.EventDate,
		&event.Location,
		&event.MaxCapacity,
		&event.EventType,
		&event.IsActive,
		&event.CollegeID,
		&event.CreatedAt,
		&event.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func scanEventWithAvailability(row rowScanner) (*entity.EventWithAvailability, error) {
	var (
		event   entity.Event
		current int
	)
	if err := scanEvent(row, &event, &current); err != nil {
		return nil, err
	}
	return entity.NewEventWithAvailability(event, current), nil
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (
			id, name, description, event_date, location, max_capacity,
			event_type, is_active, college_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.EventDate,
		event.Location,
		event.MaxCapacity,
		event.EventType,
		event.IsActive,
		event.CollegeID,
		event.CreatedAt,
		event.UpdatedAt,
	)
	return mapError(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EventWithAvailability, error) {
	query := eventSelect + ` WHERE e.id = $1 GROUP BY e.id`

	event, err := scanEventWithAvailability(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, entity.ErrEventNotFound)
	}
	return event, nil
}

func (r *eventRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `
		SELECT id, name, description, event_date, location, max_capacity,
			event_type, is_active, college_id, created_at, updated_at
		FROM events
		WHERE id = $1
		FOR UPDATE
	`

	var event entity.Event
	if err := scanEvent(r.db.QueryRowContext(ctx, query, id), &event); err != nil {
		return nil, notFound(err, entity.ErrEventNotFound)
	}
	return &event, nil
}

func (r *eventRepository) list(ctx context.Context, where string, args ...interface{}) ([]*entity.EventWithAvailability, error) {
	rows, err := r.db.QueryContext(ctx, eventSelect+where+eventGroupOrder, args...)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to query events: %w", err))
	}
	defer rows.Close()

	var events []*entity.EventWithAvailability
	for rows.Next() {
		event, err := scanEventWithAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("error iterating events: %w", err))
	}
	return events, nil
}

func (r *eventRepository) GetAll(ctx context.Context) ([]*entity.EventWithAvailability, error) {
	return r.list(ctx, "")
}

func (r *eventRepository) GetByCollegeID(ctx context.Context, collegeID uuid.UUID) ([]*entity.EventWithAvailability, error) {
	return r.list(ctx, " WHERE e.college_id = $1", collegeID)
}

func (r *eventRepository) GetByType(ctx context.Context, eventType entity.EventType) ([]*entity.EventWithAvailability, error) {
	return r.list(ctx, " WHERE e.event_type = $1", eventType)
}

func (r *eventRepository) GetEventsByDateRange(ctx context.Context, from, to time.Time) ([]*entity.EventWithAvailability, error) {
	return r.list(ctx, " WHERE e.event_date BETWEEN $1 AND $2", from, to)
}

func (r *eventRepository) Search(ctx context.Context, term string) ([]*entity.EventWithAvailability, error) {
	searchPattern := "%" + term + "%"
	return r.list(ctx, " WHERE e.name ILIKE $1 OR e.description ILIKE $1 OR e.location ILIKE $1", searchPattern)
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, event_date = $3, location = $4, max_capacity = $5,
			event_type = $6, is_active = $7, college_id = $8, updated_at = $9
		WHERE id = $10
	`

	result, err := r.db.ExecContext(ctx, query,
		event.Name,
		event.Description,
		event.EventDate,
		event.Location,
		event.MaxCapacity,
		event.EventType,
		event.IsActive,
		event.CollegeID,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return mapError(fmt.Errorf("failed to update event: %w", err))
	}
	return expectAffected(result, entity.ErrEventNotFound)
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return entity.ErrEventHasDependents
	}
	if err != nil {
		return mapError(fmt.Errorf("failed to delete event: %w", err))
	}
	return expectAffected(result, entity.ErrEventNotFound)
}
