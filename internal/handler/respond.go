package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/geowise/station-healthcheck/internal/domain"
)

// statusError carries the HTTP status chosen for a request-level failure.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badRequest(err error) error { return &statusError{code: http.StatusBadRequest, err: err} }

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var se *statusError
	var pe *csv.ParseError
	switch {
	case errors.As(err, &se):
		return se.code
	case errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, domain.ErrUnknownDetector):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMalformedTable), errors.Is(err, domain.ErrEmptyFile), errors.As(err, &pe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoStationSource):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
