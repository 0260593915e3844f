package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CollegeRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Address string `json:"address" validate:"max=255"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=100"`
	Country string `json:"country" validate:"max=100"`
}

func (r *CollegeRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.Country = strings.TrimSpace(r.Country)
}

type collegeService struct {
	*base
}

func (s *collegeService) CreateCollege(ctx context.Context, req *CollegeRequest) (*entity.College, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	req.normalize()
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	now := s.now()
	college := &entity.College{
		ID:        uuid.New(),
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Colleges().Create(ctx, college); err != nil {
		return nil, fmt.Errorf("failed to create college: %w", err)
	}

	logrus.WithFields(logrus.Fields{"college_id": college.ID, "name": college.Name}).Info("College created")
	s.notify(ctx, entity.NewNotification(entity.NotificationCollegeChanged, nil, nil, map[string]interface{}{"college_id": college.ID}))
	return college, nil
}

func (s *collegeService) GetCollege(ctx context.Context, id uuid.UUID) (*entity.College, error) {
	return s.store.Colleges().GetByID(ctx, id)
}

func (s *collegeService) GetCollegeByName(ctx context.Context, name string) (*entity.College, error) {
	return s.store.Colleges().GetByName(ctx, strings.TrimSpace(name))
}

func (s *collegeService) GetAllColleges(ctx context.Context) ([]*entity.College, error) {
	return s.store.Colleges().GetAll(ctx)
}

func (s *collegeService) UpdateCollege(ctx context.Context, id uuid.UUID, req *CollegeRequest) (*entity.College, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	req.normalize()
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	var college *entity.College
	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		current, err := repos.Colleges().GetByID(ctx, id)
		if err != nil {
			return err
		}

		current.Name = req.Name
		current.Address = req.Address
		current.City = req.City
		current.State = req.State
		current.Country = req.Country
		current.UpdatedAt = s.now()

		if err := repos.Colleges().Update(ctx, current); err != nil {
			return err
		}
		college = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, entity.NewNotification(entity.NotificationCollegeChanged, nil, nil, map[string]interface{}{"college_id": id}))
	return college, nil
}

// DeleteCollege rejects a college that still owns students or events unless
// cascade is set, in which case everything below it goes in the same transaction.
func (s *collegeService) DeleteCollege(ctx context.Context, id uuid.UUID, cascade bool) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		if _, err := repos.Colleges().GetByID(ctx, id); err != nil {
			return err
		}

		if cascade {
			events, err := repos.Events().GetByCollegeID(ctx, id)
			if err != nil {
				return err
			}
			for _, e := range events {
				if err := deleteEventTree(ctx, repos, e.ID); err != nil {
					return err
				}
			}

			students, err := repos.Students().GetByCollegeID(ctx, id)
			if err != nil {
				return err
			}
			for _, st := range students {
				if err := deleteStudentTree(ctx, repos, st.ID); err != nil {
					return err
				}
			}
		}

		return repos.Colleges().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"college_id": id, "cascade": cascade}).Info("College deleted")
	s.notify(ctx, entity.NewNotification(entity.NotificationCollegeChanged, nil, nil, map[string]interface{}{"college_id": id}))
	return nil
}
