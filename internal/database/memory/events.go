package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type eventRepository struct {
	v *view
}

func (t *tables) activeRegistrations(eventID uuid.UUID) int {
	count := 0
	for _, reg := range t.registrations {
		if reg.EventID == eventID && reg.IsActive() {
			count++
		}
	}
	return count
}

func (r eventRepository) Create(ctx context.Context, event *entity.Event) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.colleges[event.CollegeID]; !ok {
			return entity.ErrCollegeNotFound
		}
		t.events[event.ID] = *event
		return nil
	})
}

func (r eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EventWithAvailability, error) {
	var event *entity.EventWithAvailability
	err := r.v.read(ctx, func(t *tables) error {
		e, ok := t.events[id]
		if !ok {
			return entity.ErrEventNotFound
		}
		event = entity.NewEventWithAvailability(e, t.activeRegistrations(id))
		return nil
	})
	return event, err
}

// LockByID needs no extra locking here: a transaction already holds the store lock.
func (r eventRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	err := r.v.read(ctx, func(t *tables) error {
		e, ok := t.events[id]
		if !ok {
			return entity.ErrEventNotFound
		}
		event = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r eventRepository) list(ctx context.Context, match func(e entity.Event) bool) ([]*entity.EventWithAvailability, error) {
	var events []*entity.EventWithAvailability
	err := r.v.read(ctx, func(t *tables) error {
		for id, e := range t.events {
			if match(e) {
				events = append(events, entity.NewEventWithAvailability(e, t.activeRegistrations(id)))
			}
		}
		return nil
	})
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.EventDate.Equal(b.EventDate.Time) {
			return a.EventDate.Before(b.EventDate.Time)
		}
		return lessID(a.ID, b.ID)
	})
	return events, err
}

func (r eventRepository) GetAll(ctx context.Context) ([]*entity.EventWithAvailability, error) {
	return r.list(ctx, func(entity.Event) bool { return true })
}

func (r eventRepository) GetByCollegeID(ctx context.Context, collegeID uuid.UUID) ([]*entity.EventWithAvailability, error) {
	return r.list(ctx, func(e entity.Event) bool { return e.CollegeID == collegeID })
}

func (r eventRepository) GetByType(ctx context.Context, eventType entity.EventType) ([]*entity.EventWithAvailability, error) {
	return r.list(ctx, func(e entity.Event) bool { return e.EventType == eventType })
}

func (r eventRepository) GetEventsByDateRange(ctx context.Context, from, to time.Time) ([]*entity.EventWithAvailability, error) {
	return r.list(ctx, func(e entity.Event) bool {
		return !e.EventDate.Before(from) && !e.EventDate.After(to)
	})
}

func (r eventRepository) Search(ctx context.Context, term string) ([]*entity.EventWithAvailability, error) {
	return r.list(ctx, func(e entity.Event) bool {
		return containsFold(e.Name, term) || containsFold(e.Description, term) || containsFold(e.Location, term)
	})
}

func (r eventRepository) Update(ctx context.Context, event *entity.Event) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.events[event.ID]; !ok {
			return entity.ErrEventNotFound
		}
		if _, ok := t.colleges[event.CollegeID]; !ok {
			return entity.ErrCollegeNotFound
		}
		t.events[event.ID] = *event
		return nil
	})
}

func (r eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.events[id]; !ok {
			return entity.ErrEventNotFound
		}
		for _, reg := range t.registrations {
			if reg.EventID == id {
				return entity.ErrEventHasDependents
			}
		}
		for _, a := range t.attendance {
			if a.EventID == id {
				return entity.ErrEventHasDependents
			}
		}
		for _, f := range t.feedback {
			if f.EventID == id {
				return entity.ErrEventHasDependents
			}
		}
		delete(t.events, id)
		return nil
	})
}
