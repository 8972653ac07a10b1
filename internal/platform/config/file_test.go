package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perr "github.com/SamMeown/ETL/internal/platform/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const fullConfig = `{
  "postgres_db": {
    "dsn": {"host": "127.0.0.1", "port": 5432, "dbname": "movies_database", "user": "app", "password": "123qwe"},
    "min_backoff_delay": 0.5,
    "max_backoff_delay": 5,
    "total_backoff_time": 20
  },
  "es_db": {
    "dsn": {"host": "127.0.0.1", "port": 9200, "dbname": "movies"}
  },
  "state_file_path": "var/storage.json",
  "sync_interval": 10,
  "batch_size": 50
}`

func TestLoadFileFull(t *testing.T) {
	f, err := LoadFile(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if f.BatchSize != 50 || f.StateFilePath != "var/storage.json" {
		t.Fatalf("unexpected values: %+v", f)
	}
	if f.SyncEvery() != 10*time.Second {
		t.Fatalf("sync every = %v", f.SyncEvery())
	}

	p := f.Postgres.Retry.Policy()
	if p.Start != 500*time.Millisecond || p.Ceiling != 5*time.Second || p.Budget != 20*time.Second {
		t.Fatalf("pg policy = %+v", p)
	}

	if got := f.Postgres.DSN.ConnString(); got != "host=127.0.0.1 port=5432 dbname=movies_database user=app password=123qwe" {
		t.Fatalf("conn string = %q", got)
	}
	if got := f.Elastic.DSN.BaseURL(); got != "http://127.0.0.1:9200" {
		t.Fatalf("base url = %q", got)
	}
	if f.Elastic.DSN.Index() != "movies" {
		t.Fatalf("index = %q", f.Elastic.DSN.Index())
	}
}

func TestLoadFileDefaults(t *testing.T) {
	minimal := `{
  "postgres_db": {"dsn": {"host": "db", "port": 5432, "dbname": "movies_database", "user": "app", "password": "x"}},
  "es_db": {"dsn": {"host": "es", "port": 9200, "dbname": "movies"}}
}`
	f, err := LoadFile(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if f.StateFilePath != DefaultStateFilePath {
		t.Fatalf("state path = %q", f.StateFilePath)
	}
	if f.SyncEvery() != 30*time.Second {
		t.Fatalf("sync every = %v", f.SyncEvery())
	}
	if f.BatchSize != DefaultBatchSize {
		t.Fatalf("batch size = %d", f.BatchSize)
	}

	for _, r := range []Retry{f.Postgres.Retry, f.Elastic.Retry} {
		p := r.Policy()
		if p.Start != 100*time.Millisecond || p.Ceiling != 10*time.Second || p.Budget != 30*time.Second {
			t.Fatalf("default policy = %+v", p)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatalf("expected error for missing config")
	}
	if !perr.HasKind(err, perr.KindConfig) {
		t.Fatalf("kind = %v", perr.KindOf(err))
	}
}

func TestLoadFileMalformed(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "{oops"))
	if err == nil {
		t.Fatalf("expected error for malformed config")
	}
	if !perr.HasKind(err, perr.KindParse) {
		t.Fatalf("kind = %v", perr.KindOf(err))
	}
}

func TestLoadFileValidation(t *testing.T) {
	noUser := `{
  "postgres_db": {"dsn": {"host": "db", "port": 5432, "dbname": "movies_database", "password": "x"}},
  "es_db": {"dsn": {"host": "es", "port": 9200, "dbname": "movies"}}
}`
	_, err := LoadFile(writeConfig(t, noUser))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !perr.HasKind(err, perr.KindConfig) {
		t.Fatalf("kind = %v", perr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "user") {
		t.Fatalf("message should name the json field: %v", err)
	}
}

func TestLoadFileRejectsBadPort(t *testing.T) {
	badPort := `{
  "postgres_db": {"dsn": {"host": "db", "port": 777777, "dbname": "movies_database", "user": "app", "password": "x"}},
  "es_db": {"dsn": {"host": "es", "port": 9200, "dbname": "movies"}}
}`
	_, err := LoadFile(writeConfig(t, badPort))
	if err == nil || !perr.HasKind(err, perr.KindConfig) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
