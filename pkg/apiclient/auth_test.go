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

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req LoginRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "admin", req.Username)
		assert.Equal(t, "password123", req.Password)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken: "access-token-123",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
			ExpiresAt:   time.Now().Add(time.Hour),
		})
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.Login("admin", "password123")

	require.NoError(t, err)
	assert.Equal(t, "access-token-123", resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, time.Hour, resp.ExpiresInDuration())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(APIError{
			Code:    "UNAUTHORIZED",
			Message: "Invalid username or password",
		})
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.Login("baduser", "badpassword")

	assert.Nil(t, resp)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.True(t, apiErr.IsAuthError())
}

func TestMe(t *testing.T) {
	issued := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	expires := issued.Add(time.Hour)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Identity{
			Username:  "admin",
			IssuedAt:  issued,
			ExpiresAt: expires,
		})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("token-abc")
	identity, err := client.Me()

	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Username)
	assert.True(t, identity.IssuedAt.Equal(issued))
	assert.True(t, identity.ExpiresAt.Equal(expires))
}

func TestMe_Unauthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Authorization header required", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL)
	identity, err := client.Me()

	assert.Nil(t, identity)
	require.Error(t, err)
}
