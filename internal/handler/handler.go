// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/glycoguard/glycoguard/internal/handler/dto"
	"github.com/glycoguard/glycoguard/internal/model"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// multipartMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const multipartMemory = 1 << 20

// Handler serves the root and fallback routes.
type Handler struct {
	logger *slog.Logger
}

// New creates a new Handler instance.
func New(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Hello reports the service name and version.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "GlycoGuard diabetes risk API",
		"version": Version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Debug("failed to encode response", "error", err)
	}
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorDetail{Code: code, Message: message},
	})
}

// writeFieldError writes a validation error naming the offending field.
func writeFieldError(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		Error: dto.ErrorDetail{Code: "VALIDATION_ERROR", Message: message, Field: field},
	})
}

// decodeJSON decodes a single JSON object from the request body.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// parseForm accepts both urlencoded and multipart bodies.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// formFloat reads a required finite number from the parsed form.
func formFloat(r *http.Request, field string) (float64, *fieldError) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, &fieldError{field, fmt.Sprintf("Missing or empty field: %s", field)}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !model.IsFinite(v) {
		return 0, &fieldError{field, fmt.Sprintf("Invalid numeric value for %s", field)}
	}
	return v, nil
}

type fieldError struct {
	field   string
	message string
}

func (e *fieldError) write(w http.ResponseWriter) {
	writeFieldError(w, e.field, e.message)
}

