package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SamMeown/ETL/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// the logger root is process wide, so every test in this package shares one
// captured stream
var (
	logBuf  bytes.Buffer
	logOnce sync.Once
)

func captureLogs() *bytes.Buffer {
	logOnce.Do(func() {
		logger.Init(logger.Options{Level: "debug", Format: "json", Service: "web-test", Writer: &logBuf})
	})
	return &logBuf
}

func TestAccessLogEmitsAndScopesLogger(t *testing.T) {
	buf := captureLogs()
	buf.Reset()

	r := chi.NewRouter()
	r.Use(Stack()...)
	r.Get("/ops/health", func(w http.ResponseWriter, req *http.Request) {
		// handlers log through the request-scoped child
		logger.C(req.Context()).Debug().Msg("inside handler")
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/ops/health", nil))

	out := buf.String()
	if !strings.Contains(out, `"inside handler"`) || !strings.Contains(out, `"request_id"`) {
		t.Fatalf("handler log line missing request id:\n%s", out)
	}
	if !strings.Contains(out, `"path":"/ops/health"`) || !strings.Contains(out, `"status":200`) {
		t.Fatalf("access line missing fields:\n%s", out)
	}
	if !strings.Contains(out, `"method":"GET"`) {
		t.Fatalf("access line missing method:\n%s", out)
	}
}

func TestAccessLogSlowRequestsWarn(t *testing.T) {
	buf := captureLogs()
	buf.Reset()

	r := chi.NewRouter()
	r.Use(AccessLog(time.Nanosecond))
	r.Get("/x", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("slow request should log at warn:\n%s", buf.String())
	}
}

func TestRecoverWritesPanicEnvelope(t *testing.T) {
	buf := captureLogs()
	buf.Reset()

	r := chi.NewRouter()
	r.Use(Stack()...)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("kaput") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decode(t, rec)
	if env.Code != "panic" || env.Error != "internal error" {
		t.Fatalf("panic envelope: %+v", env)
	}
	out := buf.String()
	if !strings.Contains(out, "handler panicked") || !strings.Contains(out, "kaput") {
		t.Fatalf("panic log missing:\n%s", out)
	}
}

func TestStackSetsNoCache(t *testing.T) {
	captureLogs()

	r := chi.NewRouter()
	r.Use(Stack()...)
	r.Get("/x", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
		t.Fatalf("Cache-Control = %q", cc)
	}
}

func TestStackAnswersHeartbeat(t *testing.T) {
	captureLogs()

	r := chi.NewRouter()
	r.Use(Stack()...)
	r.Get("/x", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	// /ping is answered by the heartbeat middleware before routing
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
