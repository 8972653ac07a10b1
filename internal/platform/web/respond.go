package web

import (
	"encoding/json"
	stderrs "errors"
	"net/http"

	perr "github.com/SamMeown/ETL/internal/platform/errors"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Envelope is the body every endpoint responds with, success or not
type Envelope struct {
	StatusCode int       `json:"status_code"`
	Status     string    `json:"status"`
	Code       perr.Kind `json:"code,omitempty"`
	Error      string    `json:"error,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Data       any       `json:"data,omitempty"`
}

// JSON encodes v onto w under the given HTTP status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 envelope around data
func OK(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Status:     http.StatusText(http.StatusOK),
		RequestID:  chimw.GetReqID(r.Context()),
		Data:       data,
	})
}

// Fail maps err onto a status through its kind and writes the envelope;
// the body carries the short message, the cause chain stays in the logs
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := perr.HTTPStatus(err)
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       perr.KindOf(err),
		Error:      message(err),
		RequestID:  chimw.GetReqID(r.Context()),
	})
}

func message(err error) string {
	var e *perr.Error
	if stderrs.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}

// Get mounts fn under GET path and wraps whatever it returns in the envelope
func Get(r chi.Router, path string, fn func(*http.Request) (any, error)) {
	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		data, err := fn(req)
		if err != nil {
			Fail(w, req, err)
			return
		}
		OK(w, req, data)
	})
}
