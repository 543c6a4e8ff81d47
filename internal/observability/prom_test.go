package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDB_CountsErrorsByClass(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("users.create", func() error { return &pgconn.PgError{Code: "23505"} })
	_ = p.ObserveDB("users.get", func() error { return pgx.ErrNoRows })
	_ = p.ObserveDB("users.get", func() error { return nil })

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")); got != 1 {
		t.Fatalf("unique violations: got %v want 1", got)
	}
	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 1 {
		t.Fatalf("no-rows must not count as an error, got %d series", got)
	}
}

func TestObserveDB_NilProm(t *testing.T) {
	var p *Prom
	want := errors.New("boom")

	if err := p.ObserveDB("x", func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("got %v", err)
	}
	p.IncLogin("ok")
}

func TestClassifyDBErr(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&pgconn.PgError{Code: "23503"}, "foreign_key_violation"},
		{&pgconn.PgError{Code: "23514"}, "check_violation"},
		{&pgconn.PgError{Code: "55P03"}, "lock_not_available"},
		{&pgconn.PgError{Code: "22001"}, "pg_22001"},
		{fmt.Errorf("list entries: %w", context.DeadlineExceeded), "timeout"},
		{context.Canceled, "canceled"},
		{&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, "connection"},
		{errors.New("weird"), "unknown"},
	}
	for _, tc := range cases {
		if got := ClassifyDBErr(tc.err); got != tc.want {
			t.Fatalf("ClassifyDBErr(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestGinHandleMiddleware_RecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewProm(prometheus.NewRegistry())

	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/answer/:id/can-edit", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/answer/12/can-edit", nil))

	if got := testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/answer/:id/can-edit", "200")); got != 1 {
		t.Fatalf("requests total: got %v want 1", got)
	}
}
