package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"uniadmin-console/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api/", Logger: zerolog.Nop()})
}

func TestListUsers(t *testing.T) {
	ctx := WithToken(context.Background(), "tok-123")

	t.Run("ListEnvelope", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/users", r.URL.Path)
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			w.Write([]byte(`{"list":[{"_id":"a1","userName":"kamal","email":"k@uni.lk","role":"admin","date":"2024-01-05T10:00:00Z","isBlocked":true}]}`))
		})

		users, err := client.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "kamal", users[0].UserName)
		assert.True(t, users[0].IsBlocked)
		assert.Equal(t, 2024, users[0].Date.Year())
	})

	t.Run("BareArray", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(` [{"userName":"nimal"}]`))
		})

		users, err := client.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "nimal", users[0].UserName)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Token expired"}`))
		})

		users, err := client.ListUsers(ctx)
		assert.Nil(t, users)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
		assert.Equal(t, "Token expired", Message(err))
	})
}

func TestNoTokenNoHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"userName":"kamal"}`))
	})

	user, err := client.GetUser(context.Background(), "kamal")
	require.NoError(t, err)
	assert.Equal(t, "kamal", user.UserName)
}

func TestUserMutations(t *testing.T) {
	ctx := WithToken(context.Background(), "tok")

	t.Run("UpdateUserEscapesName", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/api/users/a%2Fb", r.URL.EscapedPath())
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "moderator", body["role"])
			w.Write([]byte(`{"message":"ok"}`))
		})

		err := client.UpdateUser(ctx, "a/b", map[string]string{"role": "moderator"})
		assert.NoError(t, err)
	})

	t.Run("ToggleBlock", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/api/users/toggle-block/kamal", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		assert.NoError(t, client.ToggleBlock(ctx, "kamal"))
	})

	t.Run("NotFoundPlainText", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such user", http.StatusNotFound)
		})

		err := client.ToggleBlock(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrForbidden)
		assert.Equal(t, "no such user", Message(err))
	})
}

func TestJobs(t *testing.T) {
	ctx := WithToken(context.Background(), "tok")

	t.Run("ListJobs", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/job", r.URL.Path)
			w.Write([]byte(`[{"_id":"j1","jobId":"JOB-1","jobRole":"Lecturer","salary":120000,"isAvailable":true,"deadline":"2026-12-01T00:00:00.000Z"}]`))
		})

		jobs, err := client.ListJobs(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "Lecturer", jobs[0].JobRole)
		assert.Equal(t, 120000.0, jobs[0].Salary)
		require.NotNil(t, jobs[0].Deadline)
		assert.Equal(t, 12, int(jobs[0].Deadline.Month()))
	})

	t.Run("SetJobAvailability", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/api/job/j1", r.URL.Path)
			raw, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"isAvailable":false}`, string(raw))
		})

		assert.NoError(t, client.SetJobAvailability(ctx, "j1", false))
	})

	t.Run("CreateJob", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var job models.Vacancy
			require.NoError(t, json.NewDecoder(r.Body).Decode(&job))
			assert.Equal(t, "JOB-42", job.JobID)
			w.WriteHeader(http.StatusCreated)
		})

		assert.NoError(t, client.CreateJob(ctx, &models.Vacancy{JobID: "JOB-42", JobRole: "Instructor"}))
	})

	t.Run("Forbidden", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"admins only"}`))
		})

		err := client.UpdateJob(ctx, "j1", &models.Vacancy{})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, "admins only", Message(err))
	})
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, client.Ping(context.Background()))

	dead := New(Options{BaseURL: "http://127.0.0.1:1", Logger: zerolog.Nop()})
	assert.Error(t, dead.Ping(context.Background()))
}
