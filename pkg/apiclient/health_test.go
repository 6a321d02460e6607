package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Data:      map[string]any{"service": "emporium"},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	status, err := client.Health()

	require.NoError(t, err)
	assert.True(t, status.Healthy())
	assert.Equal(t, "emporium", status.Data["service"])
}

func TestReady_NotReadyIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health/ready", r.URL.Path)

		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC(),
			Error:     "bootstrap has not completed",
		})
	}))
	defer server.Close()

	client := New(server.URL)
	status, err := client.Ready()

	require.NoError(t, err)
	assert.False(t, status.Healthy())
	assert.Equal(t, "bootstrap has not completed", status.Error)
}

func TestDatabaseHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health/db", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Data:      map[string]any{"latency_ms": 1.2},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	status, err := client.DatabaseHealth()

	require.NoError(t, err)
	assert.True(t, status.Healthy())
}

func TestHealth_NonEnvelopeBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream timeout"))
	}))
	defer server.Close()

	client := New(server.URL)
	status, err := client.Health()

	assert.Nil(t, status)
	require.Error(t, err)
}
