package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiEnvelope mirrors the server's APIResponse wrapper.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Client wraps HTTP calls to the cinerealm server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new cinerealm API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return c.decode(resp, result)
}

func (c *Client) post(path string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return c.decode(resp, result)
}

// decode unwraps the APIResponse envelope and decodes the data payload.
func (c *Client) decode(resp *http.Response, result any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("server error %d", resp.StatusCode)
		}
		return fmt.Errorf("%s", msg)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// API response types (mirror server types)

type StatusResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	Providers    int    `json:"providers"`
	HistorySize  int    `json:"history_size"`
	PlayingState string `json:"playing_state"`
}

type ProviderResponse struct {
	Name     string          `json:"name"`
	Key      string          `json:"key"`
	Supports map[string]bool `json:"supports"`
}

type HistoryEntry struct {
	TMDBID   int     `json:"tmdbId,omitempty"`
	MediaID  string  `json:"id,omitempty"`
	Type     string  `json:"type"`
	Season   int     `json:"season,omitempty"`
	Episode  int     `json:"episode,omitempty"`
	Progress float64 `json:"progress"`
	Duration float64 `json:"duration"`
	AddedAt  int64   `json:"addedAt"`
}

type WatchlistEntry struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path,omitempty"`
	AddedAt    int64  `json:"addedAt"`
}

func (c *Client) Status() (*StatusResponse, error) {
	var status StatusResponse
	if err := c.get("/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Providers(mediaType string) ([]ProviderResponse, error) {
	path := "/api/providers"
	if mediaType != "" {
		path += "?type=" + mediaType
	}
	var providers []ProviderResponse
	if err := c.get(path, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func (c *Client) ContinueWatching() ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := c.get("/api/history/continue", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) History() ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := c.get("/api/history", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) Watchlist() ([]WatchlistEntry, error) {
	var entries []WatchlistEntry
	if err := c.get("/api/watchlist", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) Resume(id int, mediaType string, season, episode int) (float64, error) {
	path := fmt.Sprintf("/api/history/resume?id=%d&type=%s", id, mediaType)
	if season > 0 {
		path += fmt.Sprintf("&season=%d&episode=%d", season, episode)
	}
	var result struct {
		Position float64 `json:"position"`
	}
	if err := c.get(path, &result); err != nil {
		return 0, err
	}
	return result.Position, nil
}

func (c *Client) Export(path string) error {
	body := map[string]string{"path": path}
	return c.post("/api/state/export", body, nil)
}
