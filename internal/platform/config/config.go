// Package config carries the daemon's two configuration layers: the JSON
// pipeline file (LoadFile) and optional environment knobs read through Conf
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SamMeown/ETL/internal/platform/logger"
)

// Conf reads environment knobs under a fixed prefix. Everything read through
// it carries a default, so a bare environment always boots; configuration the
// pipeline cannot run without belongs in the JSON file instead
type Conf struct{ prefix string }

// New returns the root reader (no prefix)
func New() Conf { return Conf{} }

// Prefix scopes a child reader, e.g. New().Prefix("PG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) get(key string) (name, value string) {
	name = c.prefix + key
	return name, strings.TrimSpace(os.Getenv(name))
}

// MayString returns the value of key, or def when unset or blank
func (c Conf) MayString(key, def string) string {
	if _, v := c.get(key); v != "" {
		return v
	}
	return def
}

// MayInt reads an integer knob; unreadable values warn and fall back to def
func (c Conf) MayInt(key string, def int) int {
	name, s := c.get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		warnDefault(name, s, "int")
		return def
	}
	return v
}

// MayBool reads a boolean knob (strconv.ParseBool forms); unreadable values
// warn and fall back to def
func (c Conf) MayBool(key string, def bool) bool {
	name, s := c.get(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		warnDefault(name, s, "bool")
		return def
	}
	return v
}

// MayDuration reads a time.ParseDuration knob like 250ms or 2s; unreadable
// values warn and fall back to def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	name, s := c.get(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		warnDefault(name, s, "duration")
		return def
	}
	return d
}

func warnDefault(name, value, want string) {
	logger.Get().Warn().
		Str("key", name).
		Str("value", value).
		Str("want", want).
		Msg("unreadable env value, using default")
}
