package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/journal/internal/domain/user"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, role string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// exact, case-sensitive match like the unique index
	for _, u := range r.s.users {
		if u.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.s.nextUserID++
	u := user.User{
		ID:           r.s.nextUserID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	r.s.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UsersRepo) SetTwoFactorEnabled(ctx context.Context, id int64, enabled bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.TwoFactorEnabled = enabled
	r.s.users[id] = u

	return nil
}
