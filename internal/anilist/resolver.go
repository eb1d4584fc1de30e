// Package anilist cross-references TMDB ids against the AniList and
// MyAnimeList id spaces. Anime embed providers address titles by
// AniList or MAL id, not by TMDB id, so playback of an anime entry
// needs this mapping first.
package anilist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/machinebox/graphql"

	"github.com/DEHZ00/Cinerealm/pkg/config"
)

// IDPair is the result of a cross-reference lookup. Either field may
// be zero when the upstream mapping is incomplete.
type IDPair struct {
	AniListID int `json:"anilistId"`
	MALID     int `json:"malId"`
}

// Resolver looks up anime identifiers through two services: the
// consumet metadata API maps TMDB ids to AniList/MAL pairs, and the
// AniList GraphQL API fills in a missing MAL id. Both lookups degrade
// on failure; playback falls back to whatever ids are known.
type Resolver struct {
	config     *config.AnimeIDsConfig
	httpClient *http.Client
	gqlClient  *graphql.Client
	logger     *slog.Logger
}

// New creates a resolver against the configured consumet and AniList
// endpoints.
func New(cfg *config.AnimeIDsConfig, logger *slog.Logger) *Resolver {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Resolver{
		config:     cfg,
		httpClient: httpClient,
		gqlClient:  graphql.NewClient(cfg.AniListEndpoint, graphql.WithHTTPClient(httpClient)),
		logger:     logger,
	}
}

// FromTMDB maps a TMDB TV id to its AniList/MAL pair via consumet.
// Returns an empty pair when the service is unreachable or has no
// mapping for the id.
func (r *Resolver) FromTMDB(ctx context.Context, tmdbID int) IDPair {
	requestURL := fmt.Sprintf("%s/meta/anilist/info/%d?provider=tmdb", r.config.ConsumetBaseURL, tmdbID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		r.logger.Warn("Failed to build anime id request",
			"tmdb_id", tmdbID,
			"error", err)
		return IDPair{}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("Anime id lookup failed",
			"tmdb_id", tmdbID,
			"error", err)
		return IDPair{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Warn("Anime id service returned error status",
			"tmdb_id", tmdbID,
			"status", resp.StatusCode)
		return IDPair{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		r.logger.Warn("Failed to read anime id response",
			"tmdb_id", tmdbID,
			"error", err)
		return IDPair{}
	}

	// The consumet info payload carries its AniList id in "id" as a
	// string; malId is numeric.
	var payload struct {
		ID    json.Number `json:"id"`
		MALID int         `json:"malId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		r.logger.Warn("Anime id service returned non-JSON body",
			"tmdb_id", tmdbID,
			"error", err)
		return IDPair{}
	}

	pair := IDPair{MALID: payload.MALID}
	if id, err := payload.ID.Int64(); err == nil {
		pair.AniListID = int(id)
	}

	r.logger.Debug("Resolved anime ids from TMDB id",
		"tmdb_id", tmdbID,
		"anilist_id", pair.AniListID,
		"mal_id", pair.MALID)
	return pair
}

// MALFromAniList fetches the MAL id of an AniList media entry.
// Returns 0 when the id is unknown or the API is unreachable.
func (r *Resolver) MALFromAniList(ctx context.Context, anilistID int) int {
	if anilistID == 0 {
		return 0
	}

	req := graphql.NewRequest(`
		query ($id: Int) {
			Media(id: $id, type: ANIME) {
				idMal
			}
		}
	`)
	req.Var("id", anilistID)

	var response struct {
		Media struct {
			IDMal int `json:"idMal"`
		}
	}
	if err := r.gqlClient.Run(ctx, req, &response); err != nil {
		r.logger.Warn("AniList MAL id lookup failed",
			"anilist_id", anilistID,
			"error", err)
		return 0
	}

	return response.Media.IDMal
}

// Resolve fills in as much of an id pair as the upstream services
// allow, starting from a TMDB id and any ids already known.
func (r *Resolver) Resolve(ctx context.Context, tmdbID int, known IDPair) IDPair {
	pair := known

	if pair.AniListID == 0 {
		fetched := r.FromTMDB(ctx, tmdbID)
		if pair.AniListID == 0 {
			pair.AniListID = fetched.AniListID
		}
		if pair.MALID == 0 {
			pair.MALID = fetched.MALID
		}
	}

	if pair.AniListID != 0 && pair.MALID == 0 {
		pair.MALID = r.MALFromAniList(ctx, pair.AniListID)
	}

	return pair
}
