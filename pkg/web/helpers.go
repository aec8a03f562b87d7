// Package web holds the HTTP response helpers, request parameter parsing and middleware shared by REST handlers.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// RespondText writes a plain text body.
func RespondText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// RespondValidationError writes a 400 response describing which struct fields failed which rule.
// Errors that are not validator.ValidationErrors are reported as an invalid request body.
func RespondValidationError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		logger.Error("Error validating request body", "error", err)
		RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	errorResponse := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		// fieldErr.Tag() returns "required", "max", etc.
		errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	logger.Warn("Validation errors occurred", "errors", errorResponse)
	RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
}

// ParseID extracts and validates the ID from the request path. Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	pathValueID := r.PathValue("id")
	id, err := uuid.Parse(pathValueID)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", pathValueID))
		return uuid.UUID{}, false
	}
	return id, true
}
