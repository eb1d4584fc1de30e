package player

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/DEHZ00/Cinerealm/internal/provider"
)

// PrefStore persists the user's explicit provider choice across
// sessions.
type PrefStore interface {
	LastProvider() string
	SetLastProvider(name string) error
}

// Selector binds a media descriptor and options bag to the playback
// slot and dispatches provider selection. All URL construction flows
// through Select, so option changes re-trigger the active selection
// instead of mounting directly.
type Selector struct {
	prefs       PrefStore
	session     *Session
	defaultName string
	logger      *slog.Logger

	mu     sync.Mutex
	media  provider.MediaDescriptor
	opts   provider.Options
	active string
	bound  bool
}

// NewSelector creates a selector over the given playback slot.
// defaultName is the configured fallback provider.
func NewSelector(prefs PrefStore, session *Session, defaultName string, logger *slog.Logger) *Selector {
	return &Selector{
		prefs:       prefs,
		session:     session,
		defaultName: defaultName,
		logger:      logger,
	}
}

// Choices returns the providers capable of the given media type, in
// registry order.
func (s *Selector) Choices(t provider.MediaType) []provider.Provider {
	return provider.Capable(t)
}

// Bind installs a new media descriptor and options bag, picks the
// initial provider, and mounts it. The choice order is: the persisted
// last provider when it supports the media type, then the configured
// default, then the first capable provider in registry order.
func (s *Selector) Bind(media provider.MediaDescriptor, opts provider.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.media = media
	s.opts = opts
	s.bound = true

	name := s.initialChoice(media.Type)
	if name == "" {
		return fmt.Errorf("no provider supports media type %q", media.Type)
	}
	return s.selectLocked(name)
}

// Select switches the bound session to the named provider: persists
// the choice, clears any prior failure, builds a fresh URL, and
// mounts it.
func (s *Selector) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.bound {
		return fmt.Errorf("no media bound")
	}
	return s.selectLocked(name)
}

// UpdateOptions replaces the options bag and re-triggers the active
// selection so the provider's URL grammar is reapplied.
func (s *Selector) UpdateOptions(opts provider.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.bound {
		return fmt.Errorf("no media bound")
	}
	s.opts = opts
	return s.selectLocked(s.active)
}

// Active returns the currently selected provider name, or "".
func (s *Selector) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Selector) selectLocked(name string) error {
	p, ok := provider.ByName(name)
	if !ok {
		return fmt.Errorf("unknown provider %q", name)
	}
	if !p.Supports[s.media.Type] {
		return fmt.Errorf("provider %q does not support %q", name, s.media.Type)
	}

	if err := s.prefs.SetLastProvider(name); err != nil {
		// Losing the preference is not worth failing playback over.
		s.logger.Warn("Failed to persist provider choice",
			"provider", name,
			"error", err)
	}

	s.active = name

	url := provider.Build(p.Key, s.media, s.opts)
	return s.session.Mount(name, url)
}

// initialChoice implements the selection fallback policy. Returns ""
// only when no provider supports the media type.
func (s *Selector) initialChoice(t provider.MediaType) string {
	if last := s.prefs.LastProvider(); last != "" {
		if p, ok := provider.ByName(last); ok && p.Supports[t] {
			return last
		}
	}
	if p, ok := provider.ByName(s.defaultName); ok && p.Supports[t] {
		return s.defaultName
	}
	if capable := provider.Capable(t); len(capable) > 0 {
		return capable[0].Name
	}
	return ""
}
