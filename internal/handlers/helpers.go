package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"uniadmin-console/internal/backend"
	"uniadmin-console/internal/config"
	"uniadmin-console/internal/service"
)

// maxJSONBody caps decoded request bodies. Profile updates may carry a data URL.
const maxJSONBody = 4 << 20

// --- Helper Functions ---

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(config.RequestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

func getUserName(ctx context.Context) string {
	userName, _ := ctx.Value(config.UserNameKey).(string)
	return userName
}

// getActor returns the admin recorded as the author of a change.
func getActor(ctx context.Context) string {
	if actor, _ := ctx.Value(config.ActorKey).(string); actor != "" {
		return actor
	}
	return getUserName(ctx)
}

func writeJSON(w http.ResponseWriter, app *config.Application, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.Logger.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func writeResponse(w http.ResponseWriter, app *config.Application, status int, success bool, data interface{}, message string) {
	response := map[string]interface{}{
		"success": success,
		"message": message,
	}

	if data != nil {
		response["data"] = data
	}

	if !success {
		response["error"] = message
	}

	writeJSON(w, app, status, response)
}

func writeSuccess(w http.ResponseWriter, app *config.Application, data interface{}, message string) {
	writeResponse(w, app, http.StatusOK, true, data, message)
}

func writeError(w http.ResponseWriter, app *config.Application, status int, message string) {
	writeResponse(w, app, status, false, nil, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return fallback
}

// writeServiceError maps service and backend errors onto HTTP statuses.
// action completes "Failed to ..." for unexpected errors.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, h.app, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrVacancyNotFound):
		writeError(w, h.app, http.StatusNotFound, "Vacancy not found")
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrInvalidDeadline):
		writeError(w, h.app, http.StatusBadRequest, err.Error())
	case errors.Is(err, backend.ErrUnauthorized):
		writeError(w, h.app, http.StatusUnauthorized, "Session expired. Please login again.")
	case errors.Is(err, backend.ErrForbidden):
		writeError(w, h.app, http.StatusForbidden, "Access Denied: You are not an Admin.")
	default:
		h.app.Logger.Error().
			Str("request_id", getRequestID(r.Context())).
			Int("backend_status", backend.StatusCode(err)).
			Err(err).
			Msg("Failed to " + action)

		status := http.StatusInternalServerError
		message := "Failed to " + action
		if code := backend.StatusCode(err); code != 0 {
			status = http.StatusBadGateway
			if msg := backend.Message(err); msg != "" {
				message += ": " + msg
			}
		}
		writeError(w, h.app, status, message)
	}
}
