package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/glycoguard/glycoguard/internal/middleware"
	"github.com/glycoguard/glycoguard/internal/nutrition"
	"github.com/glycoguard/glycoguard/internal/service"
)

// handleServiceError maps service errors to HTTP responses. Unknown errors
// are logged with the request id and answered with a fixed message.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeFieldError(w, validationErr.Field, validationErr.Message)
		return
	}

	var inputErr *nutrition.InputError
	if errors.As(err, &inputErr) {
		writeFieldError(w, inputErr.Field, inputErr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, service.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", `Bearer realm="glycoguard"`)
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token")
	case errors.Is(err, service.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", "Prediction model is not available")
	case errors.Is(err, service.ErrUnknownFoodCategory):
		writeError(w, http.StatusNotFound, "UNKNOWN_CATEGORY", "Unknown food category")
	default:
		logger.Error("request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
