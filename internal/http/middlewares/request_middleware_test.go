package middlewares_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/journal/internal/auth"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/http/middlewares"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/gin-gonic/gin"
)

func TestRequestLogger_CarriesRequestAndUserIDs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(observability.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	m := auth.NewManager("test-secret")
	am := middlewares.NewAuthMiddleware(m)

	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.RequestLogger(log))
	r.GET("/entries", am.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, err := m.IssueSession(user.User{ID: 9, Email: "a@example.com", Role: user.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", "req-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "http_request" || rec["route"] != "/entries" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["request_id"] != "req-abc" {
		t.Fatalf("request_id = %v", rec["request_id"])
	}
	if rec["user_id"] != float64(9) {
		t.Fatalf("user_id = %v", rec["user_id"])
	}
}
