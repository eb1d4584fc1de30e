package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DEHZ00/Cinerealm/internal/catalog"
	"github.com/DEHZ00/Cinerealm/internal/player"
	"github.com/DEHZ00/Cinerealm/internal/provider"
	"github.com/DEHZ00/Cinerealm/internal/storage"
)

// APIResponse represents a standard API response structure.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SystemStatus represents the current system status.
type SystemStatus struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	Providers    int    `json:"providers"`
	HistorySize  int    `json:"history_size"`
	PlayingState string `json:"playing_state"`
}

// Version is the reported release version.
var Version = "0.1.0"

// handleHealth provides a simple health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HealthCheck(); err != nil {
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "Storage unavailable", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Server is healthy",
	})
}

// handleAPIStatus returns system status information.
func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.History()
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to read history", err)
		return
	}

	status := SystemStatus{
		Status:       "running",
		Version:      Version,
		Uptime:       time.Since(s.startedAt).Round(time.Second).String(),
		Providers:    len(provider.Registry()),
		HistorySize:  len(records),
		PlayingState: s.player.Session().State().String(),
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    status,
	})
}

// handleProviders lists the provider registry, optionally filtered to
// the providers capable of a media type.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	mediaType := r.URL.Query().Get("type")
	if mediaType == "" {
		s.writeJSONResponse(w, http.StatusOK, APIResponse{
			Success: true,
			Data:    provider.Registry(),
		})
		return
	}

	t := provider.MediaType(mediaType)
	if !t.Valid() {
		s.writeErrorResponse(w, http.StatusBadRequest, "Unknown media type", nil)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    provider.Capable(t),
	})
}

// handlePlay starts a playback session.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req player.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	np, err := s.player.Play(r.Context(), req)
	s.writePlaybackResponse(w, np, err)
}

// handlePlaySelect switches the active session to another provider.
func (s *Server) handlePlaySelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Provider == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "Provider name is required", nil)
		return
	}

	np, err := s.player.SelectProvider(req.Provider)
	s.writePlaybackResponse(w, np, err)
}

// handlePlayOptions merges new options into the active session and
// re-triggers the active provider selection.
func (s *Server) handlePlayOptions(w http.ResponseWriter, r *http.Request) {
	var opts provider.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	np, err := s.player.UpdateOptions(opts)
	s.writePlaybackResponse(w, np, err)
}

// handlePlayCurrent returns the active playback session.
func (s *Server) handlePlayCurrent(w http.ResponseWriter, r *http.Request) {
	np := s.player.Current()
	if np == nil {
		s.writeErrorResponse(w, http.StatusNotFound, "Nothing is playing", nil)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    np,
	})
}

// handlePlayStop unmounts the embed and clears the session.
func (s *Server) handlePlayStop(w http.ResponseWriter, r *http.Request) {
	s.player.Stop()
	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Playback stopped",
	})
}

// handlePlayFailed records that the mounted embed failed to load. The
// session keeps the failure state until the user switches providers.
func (s *Server) handlePlayFailed(w http.ResponseWriter, r *http.Request) {
	s.player.Session().ReportLoadFailure()
	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Load failure recorded",
	})
}

// writePlaybackResponse maps playback outcomes onto the API envelope.
// A missing playable URL is not a server fault: the session stays
// bound and the client offers the remaining providers.
func (s *Server) writePlaybackResponse(w http.ResponseWriter, np *player.NowPlaying, err error) {
	switch {
	case err == nil:
		s.writeJSONResponse(w, http.StatusOK, APIResponse{
			Success: true,
			Data:    np,
		})
	case errors.Is(err, player.ErrNoPlayableSource):
		s.writeJSONResponse(w, http.StatusOK, APIResponse{
			Success: false,
			Data:    np,
			Error:   err.Error(),
		})
	case errors.Is(err, player.ErrSuperseded):
		s.writeErrorResponse(w, http.StatusConflict, "Superseded by a newer play request", err)
	default:
		s.writeErrorResponse(w, http.StatusBadRequest, "Playback failed", err)
	}
}

// handleHistory returns the full watch history, most recent first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.History()
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to read history", err)
		return
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].AddedAt > records[j].AddedAt
	})

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    records,
	})
}

// handleContinueWatching returns the continue-watching view.
func (s *Server) handleContinueWatching(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ContinueWatching()
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to read history", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    records,
	})
}

// handleResume returns the stored resume position for one media
// identity. An unknown identity resumes from zero.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	id, err := strconv.Atoi(query.Get("id"))
	if err != nil || id == 0 {
		s.writeErrorResponse(w, http.StatusBadRequest, "Numeric id is required", nil)
		return
	}
	mediaType := query.Get("type")
	if mediaType == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "Media type is required", nil)
		return
	}
	season, _ := strconv.Atoi(query.Get("season"))
	episode, _ := strconv.Atoi(query.Get("episode"))

	position := s.store.Resume(id, mediaType, season, episode)

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]float64{
			"position": position,
		},
	})
}

// handleWatchlist returns the saved titles, most recently added first.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.Watchlist()
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to read watchlist", err)
		return
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].AddedAt > records[j].AddedAt
	})

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    records,
	})
}

// handleWatchlistToggle adds or removes a title from the watchlist.
func (s *Server) handleWatchlistToggle(w http.ResponseWriter, r *http.Request) {
	var record storage.WatchlistRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	added, err := s.store.ToggleWatchlist(record)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to toggle watchlist", err)
		return
	}

	message := "Removed from watchlist"
	if added {
		message = "Added to watchlist"
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]bool{
			"added": added,
		},
		Message: message,
	})
}

// handleCatalogItem returns one catalog entry plus its effective
// media type after the anime reclassification rule.
func (s *Server) handleCatalogItem(w http.ResponseWriter, r *http.Request) {
	mediaType := chi.URLParam(r, "type")
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Numeric id is required", nil)
		return
	}

	item := s.catalog.Item(r.Context(), mediaType, id)
	if item == nil {
		s.writeErrorResponse(w, http.StatusNotFound, "Catalog entry not available", nil)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"item":          item,
			"effectiveType": catalog.EffectiveType(item, mediaType),
		},
	})
}

// handleCatalogList proxies a whitelisted list endpoint.
func (s *Server) handleCatalogList(w http.ResponseWriter, r *http.Request) {
	endpoint, err := catalog.ParseListEndpoint(r.URL.Query().Get("endpoint"))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid catalog endpoint", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.catalog.List(r.Context(), endpoint),
	})
}

// handleCatalogTrending returns the trending list for a type/window.
func (s *Server) handleCatalogTrending(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.catalog.Trending(r.Context(), chi.URLParam(r, "type"), chi.URLParam(r, "window")),
	})
}

// handleCatalogHero returns the banner carousel entries for a
// type/window: the top trending titles that ship a backdrop image.
func (s *Server) handleCatalogHero(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.catalog.Hero(r.Context(), chi.URLParam(r, "type"), chi.URLParam(r, "window")),
	})
}

// handleCatalogSeasons returns the season summaries of a TV show.
func (s *Server) handleCatalogSeasons(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Numeric id is required", nil)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.catalog.Seasons(r.Context(), id),
	})
}

// handleCatalogSeason returns the episode listing for one season.
func (s *Server) handleCatalogSeason(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Numeric id is required", nil)
		return
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Numeric season number is required", nil)
		return
	}

	detail := s.catalog.Season(r.Context(), id, number)
	if detail == nil {
		s.writeErrorResponse(w, http.StatusNotFound, "Season not available", nil)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    detail,
	})
}

// handleDisclaimer reports whether the user dismissed the disclaimer.
func (s *Server) handleDisclaimer(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]bool{
			"accepted": s.store.DisclaimerAccepted(),
		},
	})
}

// handleDisclaimerAccept persists the disclaimer opt-out.
func (s *Server) handleDisclaimerAccept(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SetDisclaimerAccepted(true); err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to persist disclaimer", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Disclaimer accepted",
	})
}

// handleStateExport writes a snapshot of history and watchlist to the
// given server-side path.
func (s *Server) handleStateExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "Export path is required", err)
		return
	}

	if err := s.store.ExportState(req.Path); err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "Export failed", err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "State exported",
	})
}

// handleStateImport merges a previously exported snapshot back in.
func (s *Server) handleStateImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "Import path is required", err)
		return
	}

	if err := s.store.ImportState(req.Path); err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "Import failed", err)
		return
	}

	s.broadcastRefresh()
	s.writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "State imported",
	})
}

// writeJSONResponse writes a JSON response with the specified status code.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes an error response with the specified status code and message.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	s.logger.Error("HTTP error response",
		"status", statusCode,
		"message", message,
		"error", err)

	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
	}

	s.writeJSONResponse(w, statusCode, APIResponse{
		Success: false,
		Error:   errorMsg,
		Message: message,
	})
}
