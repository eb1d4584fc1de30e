// Package server provides the HTTP surface of cinerealm. It exposes a
// REST API over the provider registry, the playback session, history
// and watchlist state, and the catalog proxy, plus a WebSocket channel
// that carries untrusted player progress messages. Routing uses chi/v5
// with CORS support so the page assets can talk to it during
// development.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DEHZ00/Cinerealm/internal/catalog"
	"github.com/DEHZ00/Cinerealm/internal/player"
	"github.com/DEHZ00/Cinerealm/internal/progress"
	"github.com/DEHZ00/Cinerealm/internal/storage"
	"github.com/DEHZ00/Cinerealm/internal/ui"
	"github.com/DEHZ00/Cinerealm/pkg/config"
)

// Server is the HTTP server for cinerealm.
type Server struct {
	config     *config.ServerConfig
	logger     *slog.Logger
	store      *storage.Store
	catalog    *catalog.Client
	player     *player.Orchestrator
	listener   *progress.Listener
	httpServer *http.Server
	router     chi.Router
	startedAt  time.Time

	wsMutex   sync.RWMutex
	wsClients map[*wsClient]struct{}
}

// New creates the HTTP server. Progress messages arriving over the
// WebSocket channel are applied to the store; terminal "ended" events
// trigger a continue-watching refresh broadcast to every client.
func New(cfg *config.ServerConfig, store *storage.Store, catalogClient *catalog.Client, orch *player.Orchestrator, logger *slog.Logger) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		store:     store,
		catalog:   catalogClient,
		player:    orch,
		startedAt: time.Now(),
		wsClients: make(map[*wsClient]struct{}),
	}
	s.listener = progress.NewListener(store, logger, s.broadcastRefresh)

	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures the middleware stack for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware())
	s.router.Use(middleware.Recoverer)

	if s.config.EnableCompression {
		s.router.Use(middleware.Compress(5))
	}

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleAPIStatus)
		r.Get("/providers", s.handleProviders)

		r.Route("/play", func(r chi.Router) {
			r.Post("/", s.handlePlay)
			r.Delete("/", s.handlePlayStop)
			r.Get("/current", s.handlePlayCurrent)
			r.Post("/select", s.handlePlaySelect)
			r.Post("/options", s.handlePlayOptions)
			r.Post("/failed", s.handlePlayFailed)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistory)
			r.Get("/continue", s.handleContinueWatching)
			r.Get("/resume", s.handleResume)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleWatchlist)
			r.Post("/toggle", s.handleWatchlistToggle)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/list", s.handleCatalogList)
			r.Get("/trending/{type}/{window}", s.handleCatalogTrending)
			r.Get("/hero/{type}/{window}", s.handleCatalogHero)
			r.Get("/tv/{id}/seasons", s.handleCatalogSeasons)
			r.Get("/tv/{id}/season/{number}", s.handleCatalogSeason)
			r.Get("/{type}/{id}", s.handleCatalogItem)
		})

		r.Get("/disclaimer", s.handleDisclaimer)
		r.Post("/disclaimer/accept", s.handleDisclaimerAccept)

		r.Post("/state/export", s.handleStateExport)
		r.Post("/state/import", s.handleStateImport)
	})

	// WebSocket endpoint for the untrusted player progress channel
	s.router.Get("/ws/player", s.handleWebSocket)

	// Static page assets
	ui.RegisterRoutes(s.router)
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		"address", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	return s.Stop()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Error shutting down HTTP server", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped successfully")
	return nil
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware creates a structured logging middleware for HTTP requests.
func (s *Server) loggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			s.logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"ip", r.RemoteAddr,
			)
		})
	}
}
