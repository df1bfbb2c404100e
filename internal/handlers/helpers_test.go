package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"uniadmin-console/internal/backend"
	"uniadmin-console/internal/config"
	"uniadmin-console/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceError(t *testing.T) {
	h := New(&config.Application{Logger: zerolog.Nop()}, nil, nil, nil, nil)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"UserNotFound", fmt.Errorf("get: %w", service.ErrUserNotFound), http.StatusNotFound, "User not found"},
		{"VacancyNotFound", service.ErrVacancyNotFound, http.StatusNotFound, "Vacancy not found"},
		{"InvalidRole", service.ErrInvalidRole, http.StatusBadRequest, "invalid role"},
		{"Unauthorized", &backend.APIError{StatusCode: 401}, http.StatusUnauthorized, "Session expired. Please login again."},
		{"Forbidden", fmt.Errorf("list users: %w", &backend.APIError{StatusCode: 403}), http.StatusForbidden, "Access Denied: You are not an Admin."},
		{"BackendFailure", &backend.APIError{StatusCode: 500, Message: "db offline"}, http.StatusBadGateway, "Failed to list users: db offline"},
		{"Unexpected", errors.New("boom"), http.StatusInternalServerError, "Failed to list users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "list users")

			assert.Equal(t, tt.status, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["error"])
		})
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc", nil)

	assert.Equal(t, 3, queryInt(r, "page", 1))
	assert.Equal(t, 50, queryInt(r, "limit", 50))
	assert.Equal(t, 7, queryInt(r, "missing", 7))
}
