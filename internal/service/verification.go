package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/geocoder89/journal/internal/domain/verification"
	"github.com/geocoder89/journal/internal/notifications"
)

type VerificationGate struct {
	codes    VerificationCodesRepo
	notifier notifications.Notifier
	now      Clock
	rnd      Rand
}

func NewVerificationGate(codes VerificationCodesRepo, notifier notifications.Notifier) *VerificationGate {
	return &VerificationGate{
		codes:    codes,
		notifier: notifier,
		now:      systemClock,
		rnd:      CryptoRand{},
	}
}

func (g *VerificationGate) WithClock(now Clock) *VerificationGate {
	g.now = now
	return g
}

func (g *VerificationGate) WithRand(rnd Rand) *VerificationGate {
	g.rnd = rnd
	return g
}

// Issue persists a fresh code for the user and hands it to the notifier.
// Earlier outstanding codes stay valid. When delivery fails the stored code
// is kept and the error wraps ErrNotifier.
func (g *VerificationGate) Issue(ctx context.Context, userID int64, email, purpose string) (string, error) {
	code := strconv.Itoa(verification.CodeMin + g.rnd.Intn(verification.CodeMax-verification.CodeMin+1))

	now := g.now()
	expiresAt := now.Add(verification.TTL)

	if _, err := g.codes.Create(ctx, userID, code, expiresAt, now); err != nil {
		return "", fmt.Errorf("store verification code: %w", err)
	}

	err := g.notifier.SendVerificationCode(ctx, notifications.VerificationCodeInput{
		UserID:    userID,
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
		Purpose:   purpose,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotifier, err)
	}

	return code, nil
}

// Verify reports whether code is an unexpired code issued to userID.
func (g *VerificationGate) Verify(ctx context.Context, userID int64, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	_, err := g.codes.FindValid(ctx, userID, code, g.now())
	if err != nil {
		if errors.Is(err, verification.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
