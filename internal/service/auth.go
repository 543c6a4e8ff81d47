package service

import (
	"context"

	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/notifications"
)

// Auth composes credential checks with the second factor.
type Auth struct {
	creds *Credentials
	gate  *VerificationGate
}

func NewAuth(creds *Credentials, gate *VerificationGate) *Auth {
	return &Auth{creds: creds, gate: gate}
}

// Login verifies the password and, for users with two-factor enabled, the
// verification code. A missing code yields ErrVerificationRequired; a wrong
// or expired one is reported as ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, email, password, code string) (user.User, error) {
	u, err := a.creds.Verify(ctx, email, password)
	if err != nil {
		return user.User{}, err
	}

	if !u.TwoFactorEnabled {
		return u, nil
	}

	if code == "" {
		return user.User{}, ErrVerificationRequired
	}

	ok, err := a.gate.Verify(ctx, u.ID, code)
	if err != nil {
		return user.User{}, err
	}
	if !ok {
		return user.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// SendLoginCode re-checks the password and issues a login code. Users
// without two-factor get ErrValidation so the endpoint cannot be used to
// spam arbitrary accounts.
func (a *Auth) SendLoginCode(ctx context.Context, email, password string) error {
	u, err := a.creds.Verify(ctx, email, password)
	if err != nil {
		return err
	}
	if !u.TwoFactorEnabled {
		return invalid("two-factor authentication is not enabled")
	}

	_, err = a.gate.Issue(ctx, u.ID, u.Email, notifications.PurposeLogin)
	return err
}

// EnableTwoFactor sends a code and only flips the flag once delivery
// succeeded. Calling it again for an enabled user sends another code.
func (a *Auth) EnableTwoFactor(ctx context.Context, userID int64) error {
	u, err := a.creds.Get(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := a.gate.Issue(ctx, u.ID, u.Email, notifications.PurposeEnable2FA); err != nil {
		return err
	}

	return a.creds.EnableTwoFactor(ctx, u.ID)
}
