package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "healthcheck/1.0", r.UserAgent())
			w.Write([]byte(`{"success":true,"data":{"status":"healthy"}}`))
		}))
		defer srv.Close()

		assert.NoError(t, check(srv.URL, time.Second))
	})

	t.Run("Degraded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"success":false,"data":{"status":"degraded"}}`))
		}))
		defer srv.Close()

		err := check(srv.URL, time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("UnhealthyBody", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true,"data":{"status":"starting"}}`))
		}))
		defer srv.Close()

		err := check(srv.URL, time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "starting")
	})
}
