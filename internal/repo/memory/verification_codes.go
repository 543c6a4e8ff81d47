package memory

import (
	"context"
	"time"

	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/domain/verification"
)

type VerificationCodesRepo struct {
	s *Store
}

func (r *VerificationCodesRepo) Create(ctx context.Context, userID int64, code string, expiresAt, createdAt time.Time) (verification.Code, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return verification.Code{}, user.ErrNotFound
	}

	r.s.nextCodeID++
	c := verification.Code{
		ID:        r.s.nextCodeID,
		UserID:    userID,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}
	r.s.codes = append(r.s.codes, c)

	return c, nil
}

// FindValid returns the newest code for the user matching code that is
// still valid at now.
func (r *VerificationCodesRepo) FindValid(ctx context.Context, userID int64, code string, now time.Time) (verification.Code, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// codes are appended in id order, so walk backwards
	for i := len(r.s.codes) - 1; i >= 0; i-- {
		c := r.s.codes[i]
		if c.UserID == userID && c.Code == code && c.ValidAt(now) {
			return c, nil
		}
	}
	return verification.Code{}, verification.ErrNotFound
}
