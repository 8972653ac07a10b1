// Package logger owns the process-wide zerolog root and hands out component
// and context-scoped children. Configuration comes from LOG_* env vars so the
// logger is usable before any config file has been read
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project logging type, an alias so call sites stay decoupled
// from the backing library
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	// Level is one of trace debug info warn error; anything else means info
	Level string

	// Format selects json (machines) or console (humans); default console
	Format string

	// Service stamps every line with the service identity
	Service string

	// Writer overrides the output, stdout when nil; tests capture here
	Writer io.Writer
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_SERVICE
//
// env access stays inline rather than going through the config reader so the
// logger can come up first during boot
func FromEnv() Options {
	return Options{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Service: envDefault("LOG_SERVICE", "moviesync"),
	}
}

func envDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

var (
	initOnce sync.Once
	rootMu   sync.RWMutex
	rootLog  *zerolog.Logger
)

// Init builds the root logger; only the first call wins
func Init(opt Options) {
	initOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

		out := opt.Writer
		if out == nil {
			out = os.Stdout
		}
		if strings.ToLower(opt.Format) != "json" {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		b := zerolog.New(out).Level(level(opt.Level)).With().Timestamp()
		if opt.Service != "" {
			b = b.Str("service", opt.Service)
		}
		l := b.Logger()

		rootMu.Lock()
		rootLog = &l
		rootMu.Unlock()

		// lets zerolog.Ctx fall back to the root instead of a nop logger
		zerolog.DefaultContextLogger = &l
	})
}

// Get returns the root logger, initializing it from env on first use
func Get() *Logger {
	rootMu.RLock()
	l := rootLog
	rootMu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	rootMu.RLock()
	defer rootMu.RUnlock()
	return rootLog
}

// Named returns a child tagged with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

// WithContext attaches l to ctx so downstream code can recover it with C
func WithContext(ctx context.Context, l *Logger) context.Context {
	return l.WithContext(ctx)
}

// C returns the logger carried by ctx, or the root when none was attached.
// The HTTP middleware attaches a request-scoped child; everywhere else this
// is simply the root
func C(ctx context.Context) *Logger {
	// DefaultContextLogger is set at Init, so a bare context still logs
	Get()
	return zerolog.Ctx(ctx)
}

func level(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
