package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type registrationRepository struct {
	v *view
}

func registrationMatches(reg entity.Registration, filter entity.RegistrationFilter) bool {
	return matches(filter.StudentID, reg.StudentID) &&
		matches(filter.EventID, reg.EventID) &&
		(filter.IncludeCancelled || reg.IsActive())
}

func (r registrationRepository) Create(ctx context.Context, registration *entity.Registration) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.students[registration.StudentID]; !ok {
			return entity.ErrStudentNotFound
		}
		if _, ok := t.events[registration.EventID]; !ok {
			return entity.ErrEventNotFound
		}
		if registration.IsActive() {
			for _, reg := range t.registrations {
				if reg.IsActive() && reg.StudentID == registration.StudentID && reg.EventID == registration.EventID {
					return entity.ErrDuplicateRegistration
				}
			}
		}
		t.registrations[registration.ID] = *registration
		return nil
	})
}

func (r registrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Registration, error) {
	var registration entity.Registration
	err := r.v.read(ctx, func(t *tables) error {
		reg, ok := t.registrations[id]
		if !ok {
			return entity.ErrRegistrationNotFound
		}
		registration = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r registrationRepository) GetActive(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Registration, error) {
	var registration *entity.Registration
	err := r.v.read(ctx, func(t *tables) error {
		for _, reg := range t.registrations {
			if reg.IsActive() && reg.StudentID == studentID && reg.EventID == eventID {
				reg := reg
				registration = &reg
				return nil
			}
		}
		return entity.ErrRegistrationNotFound
	})
	return registration, err
}

func (r registrationRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.v.write(ctx, func(t *tables) error {
		reg, ok := t.registrations[id]
		if !ok || !reg.IsActive() {
			return entity.ErrRegistrationNotFound
		}
		cancelledAt := at
		reg.CancelledAt = &cancelledAt
		t.registrations[id] = reg
		return nil
	})
}

func (r registrationRepository) List(ctx context.Context, filter entity.RegistrationFilter) ([]*entity.Registration, error) {
	var registrations []*entity.Registration
	err := r.v.read(ctx, func(t *tables) error {
		for _, reg := range t.registrations {
			if registrationMatches(reg, filter) {
				reg := reg
				registrations = append(registrations, &reg)
			}
		}
		return nil
	})
	sort.Slice(registrations, func(i, j int) bool {
		a, b := registrations[i], registrations[j]
		if !a.RegistrationDate.Equal(b.RegistrationDate) {
			return a.RegistrationDate.Before(b.RegistrationDate)
		}
		return lessID(a.ID, b.ID)
	})
	return registrations, err
}

func (r registrationRepository) Count(ctx context.Context, filter entity.RegistrationFilter) (int, error) {
	count := 0
	err := r.v.read(ctx, func(t *tables) error {
		for _, reg := range t.registrations {
			if registrationMatches(reg, filter) {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r registrationRepository) DeleteByStudentID(ctx context.Context, studentID uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		for id, reg := range t.registrations {
			if reg.StudentID == studentID {
				delete(t.registrations, id)
			}
		}
		return nil
	})
}

func (r registrationRepository) DeleteByEventID(ctx context.Context, eventID uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		for id, reg := range t.registrations {
			if reg.EventID == eventID {
				delete(t.registrations, id)
			}
		}
		return nil
	})
}
