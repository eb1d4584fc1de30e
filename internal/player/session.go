// Package player owns the single playback slot: the embed session,
// the provider selector bound to it, and the orchestrator that
// assembles a playable session from ids, options, and stored history.
package player

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrNoPlayableSource reports that the selected provider produced no
// URL for the current media. Distinct from a load failure: nothing is
// mounted and the user must pick a different provider.
var ErrNoPlayableSource = errors.New("no playable URL for this source")

// EmbedState describes the playback slot.
type EmbedState int

const (
	// StateIdle means nothing is mounted.
	StateIdle EmbedState = iota
	// StateActive means an embed is mounted and presumed playing.
	StateActive
	// StateNoSource means the last mount had no URL to mount.
	StateNoSource
	// StateLoadFailed means the mounted embed reported a load failure.
	// The embed stays mounted; recovery is a manual provider switch.
	StateLoadFailed
)

func (s EmbedState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateNoSource:
		return "no_source"
	case StateLoadFailed:
		return "load_failed"
	default:
		return "idle"
	}
}

// Embed is the one live third-party player instance.
type Embed struct {
	Provider  string    `json:"provider"`
	URL       string    `json:"url"`
	MountedAt time.Time `json:"mounted_at"`
}

// Session is the hard-singleton playback slot. At most one embed is
// ever live; mounting a new one tears down the previous one first.
// The generation counter versions playback attempts so that slow
// async work started for a superseded attempt can detect it is stale.
type Session struct {
	logger *slog.Logger

	mu         sync.Mutex
	current    *Embed
	state      EmbedState
	generation uint64
}

// NewSession creates an empty playback slot.
func NewSession(logger *slog.Logger) *Session {
	return &Session{
		logger: logger,
		state:  StateIdle,
	}
}

// Begin starts a new playback attempt and returns its generation.
// Any previously issued generation becomes stale immediately.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Live reports whether gen is still the newest playback attempt.
// Continuations of superseded attempts check this and discard their
// results instead of clobbering the newer session.
func (s *Session) Live(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

// Mount replaces the live embed with a new one for the given provider
// and URL. The previous embed, if any, is always torn down first, so
// two consecutive mounts leave exactly one embed matching the second
// call. An empty URL mounts nothing and returns ErrNoPlayableSource.
func (s *Session) Mount(providerName, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	if url == "" {
		s.state = StateNoSource
		s.logger.Warn("No playable URL for source", "provider", providerName)
		return ErrNoPlayableSource
	}

	s.current = &Embed{
		Provider:  providerName,
		URL:       url,
		MountedAt: time.Now(),
	}
	s.state = StateActive

	s.logger.Info("Mounted embed",
		"provider", providerName,
		"url", url)
	return nil
}

// Unmount tears down the live embed. Safe to call when nothing is
// mounted.
func (s *Session) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.logger.Info("Unmounted embed", "provider", s.current.Provider)
	}
	s.teardownLocked()
	s.state = StateIdle
}

// teardownLocked releases the current embed. The navigation target is
// cleared before the embed is dropped so a lingering reference cannot
// keep pointing at the provider.
func (s *Session) teardownLocked() {
	if s.current == nil {
		return
	}
	s.current.URL = ""
	s.current = nil
}

// ReportLoadFailure records that the mounted embed failed to load.
// The embed stays mounted and no retry or provider switch happens;
// the failure state persists until the next mount.
func (s *Session) ReportLoadFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	s.state = StateLoadFailed
	s.logger.Warn("Embed reported load failure", "provider", s.current.Provider)
}

// Current returns a copy of the live embed, if any.
func (s *Session) Current() (Embed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Embed{}, false
	}
	return *s.current, true
}

// State returns the playback slot state.
func (s *Session) State() EmbedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
