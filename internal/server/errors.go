package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/bikedash/internal/dataset"
	pagerender "github.com/KaramelBytes/bikedash/internal/render"
	"github.com/KaramelBytes/bikedash/internal/views"
)

// APIError is the JSON error body.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// toAPIError maps domain errors to HTTP statuses.
func toAPIError(r *http.Request, err error) *APIError {
	e := &APIError{StatusCode: http.StatusInternalServerError, ErrorCode: "internal", Message: err.Error(), RequestID: requestIDFrom(r.Context())}
	switch {
	case errors.Is(err, dataset.ErrDataUnavailable):
		e.StatusCode, e.ErrorCode = http.StatusServiceUnavailable, "data_unavailable"
	case errors.Is(err, dataset.ErrSchemaMismatch):
		e.StatusCode, e.ErrorCode = http.StatusUnprocessableEntity, "schema_mismatch"
	case errors.Is(err, views.ErrUnknownView):
		e.StatusCode, e.ErrorCode = http.StatusNotFound, "unknown_view"
	case errors.Is(err, errNotFound):
		e.StatusCode, e.ErrorCode = http.StatusNotFound, "not_found"
	case errors.Is(err, pagerender.ErrUnknownFormat):
		e.StatusCode, e.ErrorCode = http.StatusNotFound, "unknown_format"
	case errors.Is(err, pagerender.ErrNotPlottable):
		e.StatusCode, e.ErrorCode = http.StatusNotFound, "not_plottable"
	}
	return e
}

var errNotFound = errors.New("not found")
