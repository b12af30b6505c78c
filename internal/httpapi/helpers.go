package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/example/ridepool-client/internal/api"
	"github.com/example/ridepool-client/internal/fallback"
	"github.com/example/ridepool-client/internal/gateway"
	"github.com/example/ridepool-client/internal/session"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError answers in the same {success, message} shape the backend uses.
func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := err.Error()
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

// readJSON decodes an optional JSON body. An empty body leaves dst untouched.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) (bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return false, nil
		case errors.As(err, &syntaxError):
			return false, fmt.Errorf("%w: badly-formed JSON at character %d", errBadRequest, syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return false, fmt.Errorf("%w: badly-formed JSON", errBadRequest)
		case errors.As(err, &typeError):
			return false, fmt.Errorf("%w: incorrect JSON type for field %q", errBadRequest, typeError.Field)
		case errors.As(err, &maxBytesError):
			return false, fmt.Errorf("%w: body must not be larger than %d bytes", errBadRequest, maxBytesError.Limit)
		default:
			return false, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return false, fmt.Errorf("%w: body must only contain a single JSON value", errBadRequest)
	}
	return true, nil
}

var errBadRequest = errors.New("bad request")

func statusOf(err error) int {
	var apiErr *gateway.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status
	case IsOneOf(err, errBadRequest):
		return http.StatusBadRequest
	case IsOneOf(err, fallback.ErrAccessDenied):
		return http.StatusForbidden
	case IsOneOf(err, gateway.ErrUnauthorized, session.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case IsOneOf(err, fallback.ErrNotFound):
		return http.StatusNotFound
	case IsOneOf(err, session.ErrAlreadyAuthenticated, session.ErrAuthInProgress):
		return http.StatusConflict
	case IsOneOf(err, session.ErrValidation, fallback.ErrInvalidParams, api.ErrInvalidRequest):
		return http.StatusUnprocessableEntity
	case IsOneOf(err, fallback.ErrOfflineUnsupported, session.ErrRegistrationUnavailable):
		return http.StatusServiceUnavailable
	case IsOneOf(err, gateway.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func IsOneOf(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
