package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/http/handlers"
	"github.com/geocoder89/journal/internal/service"
)

type fakeEnabler struct {
	gotUser int64
	err     error
}

func (f *fakeEnabler) EnableTwoFactor(ctx context.Context, userID int64) error {
	f.gotUser = userID
	return f.err
}

func TestEnableTwoFactor(t *testing.T) {
	tok := tokenFor(t, 9, user.RoleUser)

	t.Run("ok", func(t *testing.T) {
		en := &fakeEnabler{}
		r, authed := authedRouter()
		authed.POST("/enable-2fa", handlers.NewTwoFactorHandler(en, nil).Enable)

		w := do(r, http.MethodPost, "/enable-2fa", tok, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("got %d body=%s", w.Code, w.Body.String())
		}
		if en.gotUser != 9 {
			t.Fatalf("enabled for user %d", en.gotUser)
		}
	})

	t.Run("notifier failure", func(t *testing.T) {
		en := &fakeEnabler{err: fmt.Errorf("%w: smtp timeout", service.ErrNotifier)}
		r, authed := authedRouter()
		authed.POST("/enable-2fa", handlers.NewTwoFactorHandler(en, nil).Enable)

		w := do(r, http.MethodPost, "/enable-2fa", tok, nil)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("got %d want 500", w.Code)
		}
		if code := errorCode(t, w); code != "internal_error" {
			t.Fatalf("code: %q", code)
		}
	})
}
