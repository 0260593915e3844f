package memory

import (
	"context"
	"sort"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type userRepository struct {
	v *view
}

func (t *tables) checkUser(user *entity.User) error {
	for id, u := range t.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return entity.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return entity.ErrUserEmailTaken
		}
	}
	return nil
}

func (r userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.v.write(ctx, func(t *tables) error {
		if err := t.checkUser(user); err != nil {
			return err
		}
		t.users[user.ID] = *user
		return nil
	})
}

func (r userRepository) find(ctx context.Context, match func(u entity.User) bool) (*entity.User, error) {
	var user *entity.User
	err := r.v.read(ctx, func(t *tables) error {
		for _, u := range t.users {
			if match(u) {
				u := u
				user = &u
				return nil
			}
		}
		return entity.ErrUserNotFound
	})
	return user, err
}

func (r userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(ctx, func(u entity.User) bool { return u.ID == id })
}

func (r userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.find(ctx, func(u entity.User) bool { return u.Username == username })
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.find(ctx, func(u entity.User) bool { return u.Email == email })
}

func (r userRepository) GetAll(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User
	err := r.v.read(ctx, func(t *tables) error {
		for _, u := range t.users {
			u := u
			users = append(users, &u)
		}
		return nil
	})
	sort.Slice(users, func(i, j int) bool {
		if users[i].Username != users[j].Username {
			return users[i].Username < users[j].Username
		}
		return lessID(users[i].ID, users[j].ID)
	})
	return users, err
}

func (r userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.users[user.ID]; !ok {
			return entity.ErrUserNotFound
		}
		if err := t.checkUser(user); err != nil {
			return err
		}
		t.users[user.ID] = *user
		return nil
	})
}

func (r userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.users[id]; !ok {
			return entity.ErrUserNotFound
		}
		delete(t.users, id)
		return nil
	})
}
