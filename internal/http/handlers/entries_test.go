package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/journal/internal/domain/entry"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/http/handlers"
	"github.com/geocoder89/journal/internal/service"
	"github.com/gin-gonic/gin"
)

type fakeLedger struct {
	submitFn   func(ctx context.Context, userID, promptID int64, text string) (int64, error)
	editableFn func(ctx context.Context, entryID, userID int64) (bool, error)
	updateFn   func(ctx context.Context, entryID, userID int64, text string) error
	listFn     func(ctx context.Context, userID int64, q service.ListQuery) (entry.Page, error)
}

func (f *fakeLedger) Submit(ctx context.Context, userID, promptID int64, text string) (int64, error) {
	if f.submitFn != nil {
		return f.submitFn(ctx, userID, promptID, text)
	}
	return 1, nil
}

func (f *fakeLedger) EditableNow(ctx context.Context, entryID, userID int64) (bool, error) {
	if f.editableFn != nil {
		return f.editableFn(ctx, entryID, userID)
	}
	return true, nil
}

func (f *fakeLedger) Update(ctx context.Context, entryID, userID int64, text string) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, entryID, userID, text)
	}
	return nil
}

func (f *fakeLedger) List(ctx context.Context, userID int64, q service.ListQuery) (entry.Page, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, q)
	}
	return entry.Page{Entries: []entry.View{}}, nil
}

func entriesRouter(l handlers.Ledger) *gin.Engine {
	r, authed := authedRouter()
	h := handlers.NewEntriesHandler(l, nil)
	authed.GET("/answer/:id/can-edit", h.CanEdit)
	authed.POST("/submit", h.Submit)
	authed.GET("/entries", h.List)
	return r
}

func TestCanEdit(t *testing.T) {
	tok := tokenFor(t, 7, user.RoleUser)

	tests := []struct {
		name     string
		path     string
		editable bool
		err      error
		want     int
		wantCode string
	}{
		{name: "editable", path: "/answer/5/can-edit", editable: true, want: http.StatusOK},
		{name: "closed", path: "/answer/5/can-edit", editable: false, want: http.StatusOK},
		{name: "bad id", path: "/answer/abc/can-edit", want: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "not owned", path: "/answer/5/can-edit", err: entry.ErrNotFound, want: http.StatusNotFound, wantCode: "not_found"},
		{name: "storage", path: "/answer/5/can-edit", err: errors.New("db down"), want: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser, gotEntry int64
			r := entriesRouter(&fakeLedger{
				editableFn: func(ctx context.Context, entryID, userID int64) (bool, error) {
					gotEntry, gotUser = entryID, userID
					return tt.editable, tt.err
				},
			})

			w := do(r, http.MethodGet, tt.path, tok, nil)
			if w.Code != tt.want {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.want, w.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, w); code != tt.wantCode {
					t.Fatalf("code: got %q want %q", code, tt.wantCode)
				}
				return
			}

			var resp struct {
				CanEdit bool `json:"canEdit"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.CanEdit != tt.editable {
				t.Fatalf("canEdit: got %v want %v", resp.CanEdit, tt.editable)
			}
			if gotUser != 7 || gotEntry != 5 {
				t.Fatalf("ledger called with entry=%d user=%d", gotEntry, gotUser)
			}
		})
	}
}

func TestSubmit_CreateAndUpdate(t *testing.T) {
	tok := tokenFor(t, 7, user.RoleUser)

	var created, updated bool
	r := entriesRouter(&fakeLedger{
		submitFn: func(ctx context.Context, userID, promptID int64, text string) (int64, error) {
			created = userID == 7 && promptID == 2 && text == "hello"
			return 10, nil
		},
		updateFn: func(ctx context.Context, entryID, userID int64, text string) error {
			updated = entryID == 10 && userID == 7 && text == "edited"
			return nil
		},
	})

	w := do(r, http.MethodPost, "/submit", tok, gin.H{"question_id": 2, "text": "hello"})
	if w.Code != http.StatusOK || !created {
		t.Fatalf("create: got %d created=%v body=%s", w.Code, created, w.Body.String())
	}

	w = do(r, http.MethodPost, "/submit", tok, gin.H{"question_id": 2, "text": "edited", "answer_id": 10})
	if w.Code != http.StatusOK || !updated {
		t.Fatalf("update: got %d updated=%v body=%s", w.Code, updated, w.Body.String())
	}
}

func TestSubmit_Errors(t *testing.T) {
	tok := tokenFor(t, 7, user.RoleUser)

	tests := []struct {
		name     string
		body     gin.H
		submit   error
		update   error
		want     int
		wantCode string
	}{
		{"missing text", gin.H{"question_id": 1}, nil, nil, http.StatusBadRequest, "invalid_request"},
		{"unknown question", gin.H{"question_id": 99, "text": "x"}, &service.ValidationError{Msg: "unknown question"}, nil, http.StatusBadRequest, "invalid_request"},
		{"window closed", gin.H{"question_id": 1, "text": "x", "answer_id": 3}, nil, entry.ErrEditWindowClosed, http.StatusForbidden, "edit_window_closed"},
		{"not owned", gin.H{"question_id": 1, "text": "x", "answer_id": 3}, nil, entry.ErrNotFound, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := entriesRouter(&fakeLedger{
				submitFn: func(context.Context, int64, int64, string) (int64, error) { return 0, tt.submit },
				updateFn: func(context.Context, int64, int64, string) error { return tt.update },
			})

			w := do(r, http.MethodPost, "/submit", tok, tt.body)
			if w.Code != tt.want {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.want, w.Body.String())
			}
			if code := errorCode(t, w); code != tt.wantCode {
				t.Fatalf("code: got %q want %q", code, tt.wantCode)
			}
		})
	}
}

func TestListEntries_PassesQueryAndSetsETag(t *testing.T) {
	tok := tokenFor(t, 7, user.RoleUser)

	var got service.ListQuery
	r := entriesRouter(&fakeLedger{
		listFn: func(ctx context.Context, userID int64, q service.ListQuery) (entry.Page, error) {
			got = q
			return entry.Page{
				Entries: []entry.View{{
					ID: 1, PromptID: 2, Text: "hello", Date: entry.FormatTimestamp(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)),
					PromptText: "What made you smile today?",
				}},
				Total:   1,
				HasMore: false,
			}, nil
		},
	})

	w := do(r, http.MethodGet, "/entries?page=2&limit=4&search=smile&searchType=question", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d body=%s", w.Code, w.Body.String())
	}
	if got.Page != 2 || got.Limit != 4 || got.Search != "smile" || got.Scope != entry.ScopeQuestion {
		t.Fatalf("unexpected query: %+v", got)
	}

	var page struct {
		Entries []map[string]any `json:"entries"`
		Total   int              `json:"total"`
		HasMore bool             `json:"hasMore"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Entries) != 1 || page.Total != 1 || page.HasMore {
		t.Fatalf("unexpected page: %+v", page)
	}
	for _, k := range []string{"id", "question_id", "text", "date", "question_text"} {
		if _, ok := page.Entries[0][k]; !ok {
			t.Fatalf("entry missing %q: %v", k, page.Entries[0])
		}
	}

	if w.Header().Get("ETag") == "" {
		t.Fatal("expected ETag header")
	}
}

func TestListEntries_NotModified(t *testing.T) {
	tok := tokenFor(t, 7, user.RoleUser)
	r := entriesRouter(&fakeLedger{})

	first := do(r, http.MethodGet, "/entries", tok, nil)
	etag := first.Header().Get("ETag")

	req, _ := http.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("got %d want 304", w.Code)
	}
}

func TestListEntries_BadQuery(t *testing.T) {
	tok := tokenFor(t, 7, user.RoleUser)
	r := entriesRouter(&fakeLedger{})

	w := do(r, http.MethodGet, "/entries?page=abc", tok, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d want 400", w.Code)
	}
}

func TestEntries_RequireToken(t *testing.T) {
	r := entriesRouter(&fakeLedger{})

	if w := do(r, http.MethodGet, "/entries", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: got %d want 401", w.Code)
	}
	if w := do(r, http.MethodGet, "/entries", "bogus", nil); w.Code != http.StatusForbidden {
		t.Fatalf("bad token: got %d want 403", w.Code)
	}
}
