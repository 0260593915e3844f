package memory

import (
	"context"
	"sort"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type collegeRepository struct {
	v *view
}

func (t *tables) collegeNameTaken(name string, except uuid.UUID) bool {
	for id, c := range t.colleges {
		if id != except && c.Name == name {
			return true
		}
	}
	return false
}

func (r collegeRepository) Create(ctx context.Context, college *entity.College) error {
	return r.v.write(ctx, func(t *tables) error {
		if t.collegeNameTaken(college.Name, college.ID) {
			return entity.ErrCollegeAlreadyExists
		}
		t.colleges[college.ID] = *college
		return nil
	})
}

func (r collegeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.College, error) {
	var college entity.College
	err := r.v.read(ctx, func(t *tables) error {
		c, ok := t.colleges[id]
		if !ok {
			return entity.ErrCollegeNotFound
		}
		college = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &college, nil
}

func (r collegeRepository) GetByName(ctx context.Context, name string) (*entity.College, error) {
	var college *entity.College
	err := r.v.read(ctx, func(t *tables) error {
		for _, c := range t.colleges {
			if c.Name == name {
				c := c
				college = &c
				return nil
			}
		}
		return entity.ErrCollegeNotFound
	})
	return college, err
}

func (r collegeRepository) GetAll(ctx context.Context) ([]*entity.College, error) {
	var colleges []*entity.College
	err := r.v.read(ctx, func(t *tables) error {
		for _, c := range t.colleges {
			c := c
			colleges = append(colleges, &c)
		}
		return nil
	})
	sort.Slice(colleges, func(i, j int) bool {
		if colleges[i].Name != colleges[j].Name {
			return colleges[i].Name < colleges[j].Name
		}
		return lessID(colleges[i].ID, colleges[j].ID)
	})
	return colleges, err
}

func (r collegeRepository) Update(ctx context.Context, college *entity.College) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.colleges[college.ID]; !ok {
			return entity.ErrCollegeNotFound
		}
		if t.collegeNameTaken(college.Name, college.ID) {
			return entity.ErrCollegeAlreadyExists
		}
		t.colleges[college.ID] = *college
		return nil
	})
}

func (r collegeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.colleges[id]; !ok {
			return entity.ErrCollegeNotFound
		}
		for _, s := range t.students {
			if s.CollegeID == id {
				return entity.ErrCollegeHasDependents
			}
		}
		for _, e := range t.events {
			if e.CollegeID == id {
				return entity.ErrCollegeHasDependents
			}
		}
		delete(t.colleges, id)
		return nil
	})
}
