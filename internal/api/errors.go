package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/response"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", service.ErrInvalidInput, err)
	}
	return nil
}

// writeError maps service and storage errors to API responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		response.BadRequest(w, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, auth.ErrEmailExists):
		response.Conflict(w, err.Error())
	default:
		slog.Error("Unhandled request error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		response.InternalError(w, "internal error")
	}
}
