package notifications

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeNotifier struct {
	err   error
	calls int
	block bool
}

func (f *fakeNotifier) SendVerificationCode(ctx context.Context, in VerificationCodeInput) error {
	f.calls++
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func TestProtectedNotifier_OpensAfterThresholdAndRecovers(t *testing.T) {
	inner := &fakeNotifier{err: errors.New("provider down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 2,
		Cooldown:         time.Minute,
	})

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := n.SendVerificationCode(ctx, VerificationCodeInput{}); err == nil {
			t.Fatalf("call %d: expected provider error", i)
		}
	}

	if err := n.SendVerificationCode(ctx, VerificationCodeInput{}); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("open circuit must not reach provider, calls=%d", inner.calls)
	}

	// after cooldown a single trial is let through
	now = now.Add(time.Minute)
	inner.err = nil
	if err := n.SendVerificationCode(ctx, VerificationCodeInput{}); err != nil {
		t.Fatalf("trial call: %v", err)
	}
	if n.state != stateClosed {
		t.Fatalf("state: got %s want closed", n.state)
	}
}

func TestProtectedNotifier_HalfOpenFailureReopens(t *testing.T) {
	inner := &fakeNotifier{err: errors.New("down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{FailureThreshold: 1, Cooldown: time.Second})

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	ctx := context.Background()
	_ = n.SendVerificationCode(ctx, VerificationCodeInput{})

	now = now.Add(time.Second)
	if err := n.SendVerificationCode(ctx, VerificationCodeInput{}); err == nil || errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected trial call to reach provider and fail, got %v", err)
	}
	if n.state != stateOpen {
		t.Fatalf("state: got %s want open", n.state)
	}
}

func TestProtectedNotifier_EnforcesTimeout(t *testing.T) {
	inner := &fakeNotifier{block: true}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{Timeout: 10 * time.Millisecond})

	err := n.SendVerificationCode(context.Background(), VerificationCodeInput{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
