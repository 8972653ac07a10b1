package web

import (
	"net/http"
	"runtime/debug"
	"time"

	perr "github.com/SamMeown/ETL/internal/platform/errors"
	"github.com/SamMeown/ETL/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Stack is the chain every listener runs: correlation id first, then the
// access log so it observes panicking requests too, recovery inside it, then
// freshness and CORS for dashboards polling the endpoints
func Stack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		chimw.RequestID,
		chimw.RealIP,
		chimw.Heartbeat("/ping"),
		AccessLog(time.Second),
		Recover,
		chimw.NoCache,
		cors.Handler(cors.Options{
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "X-Request-ID"},
		}),
		chimw.Timeout(30 * time.Second),
	}
}

// AccessLog attaches a request-scoped logger carrying the request id and
// emits one line per request; requests at or over slow log at warn
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger.Named("web").With().
				Str("request_id", chimw.GetReqID(r.Context())).
				Logger()
			ctx := logger.WithContext(r.Context(), &l)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))
			elapsed := time.Since(start)

			evt := l.Info()
			if slow > 0 && elapsed >= slow {
				evt = l.Warn()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Msg("request")
		})
	}
}

// Recover converts a handler panic into a 500 envelope so one bad request
// cannot take the listener down
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.C(r.Context()).Error().
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")
				Fail(w, r, perr.New(perr.KindPanic, "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
