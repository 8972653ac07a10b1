package config

import (
	"testing"
	"time"
)

func TestPrefixComposes(t *testing.T) {
	t.Setenv("ETL_PG_MAX_CONNS", "4")

	pg := New().Prefix("ETL_").Prefix("PG_")
	if got := pg.MayInt("MAX_CONNS", 1); got != 4 {
		t.Fatalf("MAX_CONNS = %d, want 4", got)
	}
}

func TestMayStringDefaultsOnBlank(t *testing.T) {
	t.Setenv("OPS_ADDR", "   ")

	if got := New().MayString("OPS_ADDR", ":4000"); got != ":4000" {
		t.Fatalf("blank value should fall back, got %q", got)
	}

	t.Setenv("OPS_ADDR", ":9999")
	if got := New().MayString("OPS_ADDR", ":4000"); got != ":9999" {
		t.Fatalf("set value should win, got %q", got)
	}
}

func TestMayIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("PG_SLOW_MS", "fast")

	if got := New().Prefix("PG_").MayInt("SLOW_MS", 500); got != 500 {
		t.Fatalf("garbage should fall back, got %d", got)
	}
}

func TestMayBool(t *testing.T) {
	t.Setenv("PG_LOG_SQL", "true")
	if !New().Prefix("PG_").MayBool("LOG_SQL", false) {
		t.Fatal("true should read as true")
	}

	t.Setenv("PG_LOG_SQL", "sure")
	if New().Prefix("PG_").MayBool("LOG_SQL", false) {
		t.Fatal("garbage should fall back to default")
	}
}

func TestMayDuration(t *testing.T) {
	t.Setenv("OPS_SHUTDOWN_GRACE", "250ms")
	if got := New().MayDuration("OPS_SHUTDOWN_GRACE", 5*time.Second); got != 250*time.Millisecond {
		t.Fatalf("grace = %v", got)
	}

	t.Setenv("OPS_SHUTDOWN_GRACE", "250")
	if got := New().MayDuration("OPS_SHUTDOWN_GRACE", 5*time.Second); got != 5*time.Second {
		t.Fatalf("bare number is not a duration, want the default, got %v", got)
	}
}

func TestUnsetKeysUseDefaults(t *testing.T) {
	c := New().Prefix("MOVIESYNC_TEST_UNSET_")
	if c.MayString("A", "x") != "x" || c.MayInt("B", 7) != 7 || c.MayBool("C", true) != true {
		t.Fatal("unset keys must yield defaults")
	}
	if c.MayDuration("D", time.Minute) != time.Minute {
		t.Fatal("unset duration must yield default")
	}
}
