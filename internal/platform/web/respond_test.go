package web

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "github.com/SamMeown/ETL/internal/platform/errors"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// envelope mirrors Envelope with Code as a string so tests see the wire form
type envelope struct {
	StatusCode int             `json:"status_code"`
	Status     string          `json:"status"`
	Code       string          `json:"code"`
	Error      string          `json:"error"`
	RequestID  string          `json:"request_id"`
	Data       json.RawMessage `json:"data"`
}

func withReqID(r *http.Request, id string) *http.Request {
	ctx := context.WithValue(r.Context(), chimw.RequestIDKey, id)
	return r.WithContext(ctx)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("body not json: %v", err)
	}
	return env
}

func TestOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := withReqID(httptest.NewRequest("GET", "/ops/sync", nil), "req-7")

	OK(rec, req, map[string]int{"loaded": 3})

	env := decode(t, rec)
	if rec.Code != http.StatusOK || env.StatusCode != http.StatusOK || env.Status != "OK" {
		t.Fatalf("status fields: %d %+v", rec.Code, env)
	}
	if env.RequestID != "req-7" {
		t.Fatalf("request id = %q", env.RequestID)
	}
	if env.Code != "" || env.Error != "" {
		t.Fatalf("success envelope must not carry error fields: %+v", env)
	}
	if string(env.Data) != `{"loaded":3}` {
		t.Fatalf("data = %s", env.Data)
	}
}

func TestFailEnvelopeClassified(t *testing.T) {
	rec := httptest.NewRecorder()
	req := withReqID(httptest.NewRequest("GET", "/ops/ready", nil), "req-8")

	cause := stderrs.New("dial tcp: connection refused")
	Fail(rec, req, perr.Wrap(cause, perr.KindUnavailable, "ping search cluster"))

	env := decode(t, rec)
	if rec.Code != http.StatusServiceUnavailable || env.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d %+v", rec.Code, env)
	}
	if env.Code != "unavailable" {
		t.Fatalf("code = %q", env.Code)
	}
	// short message only; the cause chain belongs in logs
	if env.Error != "ping search cluster" {
		t.Fatalf("error = %q", env.Error)
	}
	if env.RequestID != "req-8" {
		t.Fatalf("request id = %q", env.RequestID)
	}
}

func TestFailEnvelopeForeignError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ops/ready", nil)

	Fail(rec, req, stderrs.New("boom"))

	env := decode(t, rec)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	// unclassified errors carry no code on the wire
	if env.Code != "" {
		t.Fatalf("code = %q, want empty", env.Code)
	}
	if env.Error != "boom" {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestGetAdapter(t *testing.T) {
	r := chi.NewRouter()
	Get(r, "/ok", func(*http.Request) (any, error) {
		return "fine", nil
	})
	Get(r, "/bad", func(*http.Request) (any, error) {
		return nil, perr.New(perr.KindNotFound, "no such index")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/ok", nil))
	if env := decode(t, rec); rec.Code != http.StatusOK || string(env.Data) != `"fine"` {
		t.Fatalf("ok adapter: %d %+v", rec.Code, env)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/bad", nil))
	if env := decode(t, rec); rec.Code != http.StatusNotFound || env.Code != "not_found" {
		t.Fatalf("error adapter: %d %+v", rec.Code, env)
	}
}
