package monitor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edgard/paybot/internal/metrics"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func newTestServer(err error) http.Handler {
	return NewServer(":0", stubPinger{err: err}, slog.New(slog.NewTextHandler(io.Discard, nil))).Routes()
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"healthy", nil, http.StatusOK, `"ok"`},
		{"storage down", errors.New("refused"), http.StatusServiceUnavailable, "storage unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			newTestServer(tt.err).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	metrics.ExportRendered()

	rec := httptest.NewRecorder()
	newTestServer(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "paybot_exports_rendered_total") {
		t.Error("metrics output missing paybot_exports_rendered_total")
	}
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	header http.Header
	code   int
}

func (w *brokenWriter) Header() http.Header       { return w.header }
func (w *brokenWriter) WriteHeader(code int)      { w.code = code }
func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHealthzLogsFailedWrite(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	s := NewServer(":0", stubPinger{}, slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	w := &brokenWriter{header: http.Header{}}
	s.health(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.code)
	}
	if !strings.Contains(logs.String(), "Failed to write health response") || !strings.Contains(logs.String(), "connection reset") {
		t.Errorf("logs = %q, want the write failure", logs.String())
	}
}
