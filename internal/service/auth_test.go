package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/journal/internal/notifications"
	"github.com/geocoder89/journal/internal/repo/memory"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	store *memory.Store
	auth  *Auth
	creds *Credentials
	n     *recordingNotifier
	clock *fakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := memory.NewStore()
	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	n := &recordingNotifier{}
	creds := NewCredentials(store.Users())
	gate := newGate(store, n, clock, &seqRand{vals: []int{111, 222, 333}})

	return &authFixture{store: store, auth: NewAuth(creds, gate), creds: creds, n: n, clock: clock}
}

func TestAuth_LoginWithoutTwoFactor(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	registerUser(t, f.store, "alice@example.com")

	u, err := f.auth.Login(ctx, "alice@example.com", "pw1", "")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)

	_, err = f.auth.Login(ctx, "alice@example.com", "nope", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_EnableTwoFactorThenLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	uid := registerUser(t, f.store, "alice@example.com")

	require.NoError(t, f.auth.EnableTwoFactor(ctx, uid))

	sent := f.n.last(t)
	require.Equal(t, notifications.PurposeEnable2FA, sent.Purpose)
	require.Equal(t, "alice@example.com", sent.Email)

	u, err := f.creds.Get(ctx, uid)
	require.NoError(t, err)
	require.True(t, u.TwoFactorEnabled)

	_, err = f.auth.Login(ctx, "alice@example.com", "pw1", "")
	require.ErrorIs(t, err, ErrVerificationRequired)

	_, err = f.auth.Login(ctx, "alice@example.com", "pw1", "999999")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "alice@example.com", "pw1", sent.Code)
	require.NoError(t, err)

	// the password is still checked before the code
	_, err = f.auth.Login(ctx, "alice@example.com", "nope", sent.Code)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_EnableTwoFactorNotifierFailureLeavesFlagOff(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	uid := registerUser(t, f.store, "alice@example.com")
	f.n.err = errors.New("provider down")

	err := f.auth.EnableTwoFactor(ctx, uid)
	require.ErrorIs(t, err, ErrNotifier)

	u, err := f.creds.Get(ctx, uid)
	require.NoError(t, err)
	require.False(t, u.TwoFactorEnabled)
}

func TestAuth_SendLoginCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	uid := registerUser(t, f.store, "alice@example.com")

	err := f.auth.SendLoginCode(ctx, "alice@example.com", "pw1")
	require.ErrorIs(t, err, ErrValidation)

	err = f.auth.SendLoginCode(ctx, "alice@example.com", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.auth.EnableTwoFactor(ctx, uid))
	require.NoError(t, f.auth.SendLoginCode(ctx, "alice@example.com", "pw1"))

	sent := f.n.last(t)
	require.Equal(t, notifications.PurposeLogin, sent.Purpose)

	f.clock.Advance(time.Minute)
	_, err = f.auth.Login(ctx, "alice@example.com", "pw1", sent.Code)
	require.NoError(t, err)
}
