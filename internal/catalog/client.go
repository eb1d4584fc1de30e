package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/DEHZ00/Cinerealm/pkg/config"
)

// Client fetches catalog metadata through the TMDB proxy. Every
// lookup method treats the proxy as unreliable: a failed or malformed
// response is logged and surfaces as a nil or empty result.
type Client struct {
	config     *config.CatalogConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *responseCache
	logger     *slog.Logger
}

// New creates a catalog client with the configured request budget and
// response cache.
func New(cfg *config.CatalogConfig, logger *slog.Logger) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		cache:      newResponseCache(cfg.CacheTTL),
		logger:     logger,
	}
}

// Item fetches the detail record for one movie or TV entry. Returns
// nil when the proxy fails or the id is unknown.
func (c *Client) Item(ctx context.Context, mediaType string, id int) *Item {
	if mediaType != "movie" && mediaType != "tv" {
		c.logger.Warn("Rejecting catalog lookup for unknown media type",
			"media_type", mediaType)
		return nil
	}

	var item Item
	if !c.get(ctx, fmt.Sprintf("/%s/%d", mediaType, id), &item) {
		return nil
	}
	if item.ID == 0 {
		return nil
	}
	return &item
}

// Trending fetches the trending list for a media type over a window
// ("day" or "week").
func (c *Client) Trending(ctx context.Context, mediaType, window string) []Item {
	return c.List(ctx, fmt.Sprintf("/trending/%s/%s", mediaType, window))
}

// heroCap bounds the full-bleed banner carousel.
const heroCap = 5

// Hero returns the top trending entries suitable for a banner carousel.
// Only items with a backdrop survive, capped at five.
func (c *Client) Hero(ctx context.Context, mediaType, window string) []Item {
	items := c.Trending(ctx, mediaType, window)

	hero := make([]Item, 0, heroCap)
	for _, item := range items {
		if item.BackdropPath == "" {
			continue
		}
		hero = append(hero, item)
		if len(hero) == heroCap {
			break
		}
	}
	return hero
}

// List fetches any paged list endpoint, such as /movie/popular or
// /tv/top_rated. Entries without a poster are dropped, matching what
// the browsing surface can actually render.
func (c *Client) List(ctx context.Context, endpoint string) []Item {
	var response listResponse
	if !c.get(ctx, endpoint, &response) {
		return nil
	}

	results := make([]Item, 0, len(response.Results))
	for _, item := range response.Results {
		if item.PosterPath == "" {
			continue
		}
		results = append(results, item)
	}
	return results
}

// Seasons returns the season summaries of a TV show, with specials
// (season 0) filtered out.
func (c *Client) Seasons(ctx context.Context, tvID int) []SeasonSummary {
	item := c.Item(ctx, "tv", tvID)
	if item == nil {
		return nil
	}

	seasons := make([]SeasonSummary, 0, len(item.Seasons))
	for _, s := range item.Seasons {
		if s.SeasonNumber <= 0 {
			continue
		}
		seasons = append(seasons, s)
	}
	return seasons
}

// Season fetches the episode listing for one season of a TV show.
func (c *Client) Season(ctx context.Context, tvID, number int) *SeasonDetail {
	var detail SeasonDetail
	if !c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", tvID, number), &detail) {
		return nil
	}
	return &detail
}

// ExternalIDs fetches the cross-service identifiers of a TV show.
func (c *Client) ExternalIDs(ctx context.Context, tvID int) *ExternalIDs {
	var ids ExternalIDs
	if !c.get(ctx, fmt.Sprintf("/tv/%d/external_ids", tvID), &ids) {
		return nil
	}
	return &ids
}

// ImageURL resolves a TMDB image path against the configured image
// host. Empty paths stay empty.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return c.config.ImageBaseURL + path
}

// get performs one proxy request and decodes the JSON body into out.
// Returns false on any failure past the cache: rate-limit wait
// cancelled, transport error, non-2xx status, or undecodable body.
func (c *Client) get(ctx context.Context, endpoint string, out any) bool {
	requestURL := c.config.BaseURL + c.config.PathPrefix + endpoint

	if body := c.cache.Get(requestURL); body != nil {
		if err := json.Unmarshal(body, out); err == nil {
			return true
		}
		// A cached body that no longer decodes means the target type
		// changed; fall through and refetch.
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("Catalog request cancelled while rate limited",
			"endpoint", endpoint,
			"error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		c.logger.Warn("Failed to build catalog request",
			"endpoint", endpoint,
			"error", err)
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Catalog request failed",
			"endpoint", endpoint,
			"error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Catalog proxy returned error status",
			"endpoint", endpoint,
			"status", resp.StatusCode)
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		c.logger.Warn("Failed to read catalog response",
			"endpoint", endpoint,
			"error", err)
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Warn("Catalog proxy returned non-JSON body",
			"endpoint", endpoint,
			"error", err)
		return false
	}

	c.cache.Set(requestURL, body)
	return true
}

// ParseListEndpoint normalizes a caller-supplied list endpoint. Only
// simple catalog paths are allowed through; anything else (absolute
// URLs, traversal, query strings) is rejected so the proxy surface
// stays closed.
func ParseListEndpoint(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty endpoint")
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.IsAbs() || parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("invalid endpoint %q", raw)
	}
	for _, segment := range strings.Split(strings.Trim(parsed.Path, "/"), "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("invalid endpoint %q", raw)
		}
		for _, r := range segment {
			if !isEndpointRune(r) {
				return "", fmt.Errorf("invalid endpoint %q", raw)
			}
		}
	}
	return parsed.Path, nil
}

func isEndpointRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}
