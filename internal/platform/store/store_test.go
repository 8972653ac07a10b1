package store

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SamMeown/ETL/internal/platform/backoff"

	"github.com/rs/zerolog"
)

// tinyRetry keeps failure paths fast; one short attempt, no real budget
func tinyRetry() backoff.Policy {
	return backoff.Policy{Start: time.Millisecond, Ceiling: time.Millisecond, Budget: time.Millisecond}
}

func TestOpenSearchOnly(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := Open(context.Background(), Config{
		ES: ESConfig{Enabled: true, BaseURL: srv.URL, Retry: tinyRetry(), PingTimeout: time.Second},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.ES == nil {
		t.Fatal("search backend missing")
	}
	if s.PG != nil {
		t.Fatalf("postgres should stay nil when disabled, got %T", s.PG)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenBadPostgresDSN(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{
		PG: PGConfig{Enabled: true, ConnString: "://bad", MaxConns: 1, Retry: tinyRetry()},
	})
	if err == nil {
		t.Fatalf("want an error for an unparseable DSN, got store %#v", s)
	}
}

func TestOpenEmptySearchURL(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{
		ES: ESConfig{Enabled: true, Retry: tinyRetry()},
	}); err == nil {
		t.Fatal("want an error for an empty search base url")
	}
}

func TestOpenSearchNeverReady(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := Open(context.Background(), Config{
		ES: ESConfig{Enabled: true, BaseURL: srv.URL, Retry: tinyRetry(), PingTimeout: time.Second},
	}); err == nil {
		t.Fatal("want an error once the ping budget runs out")
	}
}

func TestOpenNoBackends(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.ES != nil {
		t.Fatal("no backend was enabled, none should be set")
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenFailsOnFirstBackend(t *testing.T) {
	t.Parallel()

	// postgres fails to parse before the search backend is even dialed
	s, err := Open(context.Background(), Config{
		PG: PGConfig{Enabled: true, ConnString: "://bad", Retry: tinyRetry()},
		ES: ESConfig{Enabled: true, BaseURL: "http://127.0.0.1:1", Retry: tinyRetry()},
	})
	if err == nil {
		t.Fatalf("want the postgres failure, got store %#v", s)
	}
}
