package verification

import (
	"errors"
	"time"
)

const (
	CodeMin = 100000
	CodeMax = 999999
	TTL     = 10 * time.Minute
)

type Code struct {
	ID        int64
	UserID    int64
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ValidAt reports whether the code is still usable at now. Expiry is exclusive.
func (c Code) ValidAt(now time.Time) bool {
	return c.ExpiresAt.After(now)
}

var ErrNotFound = errors.New("verification code not found")
