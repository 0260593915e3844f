package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserRequest carries an already hashed password; the engine never sees plain text.
type UserRequest struct {
	Username     string      `json:"username" validate:"required,min=3,max=50"`
	Email        string      `json:"email" validate:"required,email,max=255"`
	FirstName    string      `json:"firstName" validate:"max=50"`
	LastName     string      `json:"lastName" validate:"max=50"`
	Role         entity.Role `json:"role"`
	IsActive     *bool       `json:"isActive,omitempty"`
	PasswordHash string      `json:"passwordHash"`
}

func (r *UserRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.Role == "" {
		r.Role = entity.RoleUser
	}
}

type userService struct {
	*base
}

func (s *userService) check(req *UserRequest) error {
	req.normalize()
	if err := s.validateStruct(req); err != nil {
		return err
	}
	if !req.Role.Valid() {
		return entity.ErrInvalidRole
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, req *UserRequest) (*entity.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	now := s.now()
	user := &entity.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		IsActive:     req.IsActive == nil || *req.IsActive,
		PasswordHash: req.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username, "role": user.Role}).Info("User created")
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.store.Users().GetByID(ctx, id)
}

// ResolveCaller is called for every authenticated request, before any role check.
// Subjects that are not stored accounts come from an external identity provider
// and keep the role from their token.
func (s *userService) ResolveCaller(ctx context.Context, caller entity.Caller) (entity.Caller, error) {
	id, err := uuid.Parse(caller.UserID)
	if err != nil {
		return caller, nil
	}

	user, err := s.store.Users().GetByID(ctx, id)
	if errors.Is(err, entity.ErrUserNotFound) {
		return caller, nil
	}
	if err != nil {
		return entity.Caller{}, err
	}
	if !user.IsActive {
		return entity.Caller{}, entity.ErrUserInactive
	}

	caller.Role = user.Role
	return caller, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]*entity.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.store.Users().GetAll(ctx)
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, req *UserRequest) (*entity.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	return s.modify(ctx, id, func(user *entity.User) {
		user.Username = req.Username
		user.Email = req.Email
		user.FirstName = req.FirstName
		user.LastName = req.LastName
		user.Role = req.Role
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if req.PasswordHash != "" {
			user.PasswordHash = req.PasswordHash
		}
	})
}

func (s *userService) ChangeRole(ctx context.Context, id uuid.UUID, role entity.Role) (*entity.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, entity.ErrInvalidRole
	}
	return s.modify(ctx, id, func(user *entity.User) { user.Role = role })
}

func (s *userService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, func(user *entity.User) { user.IsActive = active })
}

func (s *userService) modify(ctx context.Context, id uuid.UUID, apply func(user *entity.User)) (*entity.User, error) {
	var user *entity.User
	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		current, err := repos.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		apply(current)
		current.UpdatedAt = s.now()
		if err := repos.Users().Update(ctx, current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": id, "role": user.Role, "active": user.IsActive}).Info("User updated")
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return err
	}

	logrus.WithField("user_id", id).Info("User deleted")
	return nil
}
