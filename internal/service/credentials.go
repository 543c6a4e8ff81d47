package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/security"
)

type Credentials struct {
	users UsersRepo
}

func NewCredentials(users UsersRepo) *Credentials {
	return &Credentials{users: users}
}

// Register stores a new user with role user and returns its id.
func (c *Credentials) Register(ctx context.Context, email, password string) (int64, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return 0, invalid("email and password are required")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	u, err := c.users.Create(ctx, email, hash, user.RoleUser)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// Verify checks an email/password pair. Unknown email and wrong password
// both yield ErrInvalidCredentials.
func (c *Credentials) Verify(ctx context.Context, email, password string) (user.User, error) {
	u, err := c.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// keep response time independent of whether the email exists
			security.BurnPasswordCheck(password)
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, err
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return user.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (c *Credentials) ListUsers(ctx context.Context) ([]user.User, error) {
	return c.users.List(ctx)
}

func (c *Credentials) EnableTwoFactor(ctx context.Context, userID int64) error {
	return c.users.SetTwoFactorEnabled(ctx, userID, true)
}

func (c *Credentials) Get(ctx context.Context, userID int64) (user.User, error) {
	return c.users.GetByID(ctx, userID)
}
