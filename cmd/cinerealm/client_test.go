package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(data any) []byte {
	body, _ := json.Marshal(map[string]any{"success": true, "data": data})
	return body
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/status", r.URL.Path)
		_, _ = w.Write(envelope(StatusResponse{
			Status:       "healthy",
			Version:      "0.1.0",
			Providers:    8,
			PlayingState: "idle",
		}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	status, err := client.Status()
	require.NoError(t, err)

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 8, status.Providers)
	assert.Equal(t, "idle", status.PlayingState)
}

func TestClient_Providers_TypeFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/providers", r.URL.Path)
		require.Equal(t, "anime", r.URL.Query().Get("type"))
		_, _ = w.Write(envelope([]ProviderResponse{
			{Name: "FluxLine", Key: "vidplus", Supports: map[string]bool{"anime": true}},
		}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	providers, err := client.Providers("anime")
	require.NoError(t, err)

	require.Len(t, providers, 1)
	assert.Equal(t, "FluxLine", providers[0].Name)
}

func TestClient_Resume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1399", r.URL.Query().Get("id"))
		require.Equal(t, "tv", r.URL.Query().Get("type"))
		require.Equal(t, "1", r.URL.Query().Get("season"))
		_, _ = w.Write(envelope(map[string]float64{"position": 120}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	position, err := client.Resume(1399, "tv", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, float64(120), position)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Media type is required"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Resume(603, "movie", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Media type is required")
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "2:03", formatSeconds(123))
	assert.Equal(t, "1:01:05", formatSeconds(3665))
	assert.Equal(t, "0:00", formatSeconds(0))
}

func TestFormatTimeAgo(t *testing.T) {
	assert.Equal(t, "never", formatTimeAgo(0))

	now := time.Now()
	assert.Equal(t, "just now", formatTimeAgo(now.UnixMilli()))
	assert.Equal(t, "5m ago", formatTimeAgo(now.Add(-5*time.Minute).UnixMilli()))
	assert.Equal(t, "3h ago", formatTimeAgo(now.Add(-3*time.Hour).UnixMilli()))
	assert.Equal(t, "2d ago", formatTimeAgo(now.Add(-49*time.Hour).UnixMilli()))
}
