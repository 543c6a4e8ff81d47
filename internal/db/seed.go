package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/journal/internal/domain/prompt"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/security"
)

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, email, passwordHash, role string) (user.User, error)
}

type PromptSeeder interface {
	SeedGlobal(ctx context.Context, texts []string) (bool, error)
}

// EnsureAdminUser creates the bootstrap admin once. Nothing happens when the
// credentials are not configured or the email already exists.
func EnsureAdminUser(ctx context.Context, users AdminStore, email, password string, log *slog.Logger) error {
	if email == "" || password == "" {
		return nil
	}

	// check if the user exists
	_, err := users.GetByEmail(ctx, email)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(password)

	if err != nil {
		return err
	}

	_, err = users.Create(ctx, email, hash, user.RoleAdmin)

	// lost a race with another instance
	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("bootstrap admin created", "email", email)
	return nil
}

// SeedPrompts inserts the fixed global prompts when the prompt table is empty.
func SeedPrompts(ctx context.Context, prompts PromptSeeder, log *slog.Logger) error {
	seeded, err := prompts.SeedGlobal(ctx, prompt.Seed)
	if err != nil {
		return err
	}

	if seeded {
		log.Info("seeded global prompts", "count", len(prompt.Seed))
	}
	return nil
}
