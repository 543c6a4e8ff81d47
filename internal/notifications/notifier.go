package notifications

import (
	"context"
	"time"
)

const (
	PurposeLogin     = "login"
	PurposeEnable2FA = "enable_2fa"
)

type VerificationCodeInput struct {
	UserID    int64
	Email     string
	Code      string
	ExpiresAt time.Time
	Purpose   string
}

// Notifier delivers verification codes to a user out of band.
type Notifier interface {
	SendVerificationCode(ctx context.Context, in VerificationCodeInput) error
}
