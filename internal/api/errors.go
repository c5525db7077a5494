package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/controller"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/intent"
	"github.com/nerrad567/hearth/internal/scene"
	"github.com/nerrad567/hearth/internal/schedule"
)

// Error is the body of every error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeConflict     = "conflict"
	ErrCodeUnavailable  = "unavailable"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

func writeUnavailable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, message)
}

// validationErrors are caller mistakes reported as 422 or 400.
var validationErrors = []error{
	automation.ErrInvalidCommand,
	automation.ErrUnknownType,
	automation.ErrUnknownTarget,
	automation.ErrInvalidValue,
	schedule.ErrInvalidSchedule,
	schedule.ErrInvalidHour,
	schedule.ErrUnsupportedDevice,
	schedule.ErrInvalidValue,
	scene.ErrInvalidScene,
	scene.ErrInvalidName,
	scene.ErrInvalidSlug,
	scene.ErrInvalidTime,
	intent.ErrNotRecognized,
	intent.ErrUnknownGesture,
	intent.ErrMissingParameter,
	intent.ErrNotCommand,
	emergency.ErrUnknownReason,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeDomainError maps a domain error onto a status code.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	case errors.Is(err, schedule.ErrScheduleNotFound), errors.Is(err, scene.ErrSceneNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, schedule.ErrScheduleExists), errors.Is(err, scene.ErrSceneExists),
		errors.Is(err, scene.ErrSceneDisabled), errors.Is(err, scene.ErrTooManyScenes):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, automation.ErrUnavailable), errors.Is(err, controller.ErrStopped):
		writeUnavailable(w, err.Error())
	default:
		writeInternalError(w, "internal error")
	}
}
