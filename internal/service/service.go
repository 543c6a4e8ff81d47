// Package service holds the journal use cases: credentials, second-factor
// verification, prompt selection and the entry ledger. Storage is reached
// through the small repo interfaces below so the Postgres and in-memory
// stores are interchangeable.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/geocoder89/journal/internal/domain/entry"
	"github.com/geocoder89/journal/internal/domain/prompt"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/domain/verification"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrVerificationRequired = errors.New("verification code required")
	ErrNotifier             = errors.New("notification delivery failed")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

type UsersRepo interface {
	Create(ctx context.Context, email, passwordHash, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	SetTwoFactorEnabled(ctx context.Context, id int64, enabled bool) error
}

type PromptsRepo interface {
	GetByID(ctx context.Context, id int64) (prompt.Prompt, error)
	ListEligible(ctx context.Context, userID int64) ([]prompt.Prompt, error)
}

type EntriesRepo interface {
	Create(ctx context.Context, e entry.Entry) (entry.Entry, error)
	GetOwned(ctx context.Context, id, ownerID int64) (entry.Entry, error)
	UpdateText(ctx context.Context, id, ownerID int64, text string, now time.Time) error
	List(ctx context.Context, f entry.ListFilter) ([]entry.View, error)
	Count(ctx context.Context, f entry.ListFilter) (int, error)
}

type VerificationCodesRepo interface {
	Create(ctx context.Context, userID int64, code string, expiresAt, createdAt time.Time) (verification.Code, error)
	FindValid(ctx context.Context, userID int64, code string, now time.Time) (verification.Code, error)
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// Rand picks an int uniformly from [0, n).
type Rand interface {
	Intn(n int) int
}

// CryptoRand draws from crypto/rand.
type CryptoRand struct{}

func (CryptoRand) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return int(v.Int64())
}
