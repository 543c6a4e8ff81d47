package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/journal/internal/auth"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

var testTokens = auth.NewManager("handler-test-secret")

// authedRouter returns an engine whose routes added to the group run behind
// the real auth middleware.
func authedRouter() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	am := middlewares.NewAuthMiddleware(testTokens)
	return r, r.Group("/", am.RequireAuth())
}

func tokenFor(t *testing.T, id int64, role string) string {
	t.Helper()
	tok, err := testTokens.IssueSession(user.User{ID: id, Email: "u@example.com", Role: role})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return tok
}

func do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body: %v body=%s", err, w.Body.String())
	}
	return env.Error.Code
}
