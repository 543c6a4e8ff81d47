package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/journal/internal/domain/prompt"
	"github.com/geocoder89/journal/internal/notifications"
	"github.com/geocoder89/journal/internal/repo/memory"
	"github.com/stretchr/testify/require"
)

type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

type recordingNotifier struct {
	mu   sync.Mutex
	err  error
	sent []notifications.VerificationCodeInput
}

func (n *recordingNotifier) SendVerificationCode(ctx context.Context, in notifications.VerificationCodeInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, in)
	return n.err
}

func (n *recordingNotifier) last(t *testing.T) notifications.VerificationCodeInput {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newSeededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	_, err := store.Prompts().SeedGlobal(context.Background(), prompt.Seed)
	require.NoError(t, err)
	return store
}

func registerUser(t *testing.T, store *memory.Store, email string) int64 {
	t.Helper()
	id, err := NewCredentials(store.Users()).Register(context.Background(), email, "pw1")
	require.NoError(t, err)
	return id
}
