package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"dario.cat/mergo"

	"github.com/DEHZ00/Cinerealm/internal/anilist"
	"github.com/DEHZ00/Cinerealm/internal/catalog"
	"github.com/DEHZ00/Cinerealm/internal/provider"
	"github.com/DEHZ00/Cinerealm/internal/storage"
	"github.com/DEHZ00/Cinerealm/pkg/config"
)

// ErrSuperseded reports that a playback attempt was replaced by a
// newer one while its id resolution was still in flight. The stale
// attempt's results are discarded.
var ErrSuperseded = errors.New("playback superseded by a newer request")

// IDResolver maps TMDB ids into the AniList/MAL id spaces.
type IDResolver interface {
	Resolve(ctx context.Context, tmdbID int, known anilist.IDPair) anilist.IDPair
}

// SeasonLister supplies the season summaries of a TV show for the
// episode chooser.
type SeasonLister interface {
	Seasons(ctx context.Context, tvID int) []catalog.SeasonSummary
}

// PlayRequest is everything a caller supplies to start playback.
// AniListID/MALID short-circuit the external lookups when already
// known.
type PlayRequest struct {
	ID        int              `json:"id"`
	Type      string           `json:"type"`
	Title     string           `json:"title,omitempty"`
	Season    int              `json:"season,omitempty"`
	Episode   int              `json:"episode,omitempty"`
	AniListID int              `json:"anilistId,omitempty"`
	MALID     int              `json:"malId,omitempty"`
	Options   provider.Options `json:"options,omitempty"`
}

// NowPlaying describes the active playback session.
type NowPlaying struct {
	ID       int                      `json:"id"`
	Type     string                   `json:"type"`
	Title    string                   `json:"title,omitempty"`
	Media    provider.MediaDescriptor `json:"media"`
	Options  provider.Options         `json:"options"`
	Provider string                   `json:"provider"`
	EmbedURL string                   `json:"embedUrl,omitempty"`
	Resume   float64                  `json:"resume"`
	Seasons  []catalog.SeasonSummary  `json:"seasons,omitempty"`
}

// Orchestrator assembles playback sessions: resolves anime ids,
// merges options over defaults, pulls the resume position, and hands
// the result to the selector and session.
type Orchestrator struct {
	config   *config.PlaybackConfig
	store    *storage.Store
	seasons  SeasonLister
	resolver IDResolver
	session  *Session
	selector *Selector
	logger   *slog.Logger

	mu      sync.Mutex
	current *NowPlaying
}

// NewOrchestrator wires a session and selector around the given
// collaborators.
func NewOrchestrator(cfg *config.PlaybackConfig, store *storage.Store, seasons SeasonLister, resolver IDResolver, logger *slog.Logger) *Orchestrator {
	session := NewSession(logger)
	return &Orchestrator{
		config:   cfg,
		store:    store,
		seasons:  seasons,
		resolver: resolver,
		session:  session,
		selector: NewSelector(store, session, cfg.DefaultProvider, logger),
		logger:   logger,
	}
}

// Session exposes the playback slot for the progress channel and the
// HTTP surface.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Play starts a playback session. Anime entries missing an AniList or
// MAL id go through the external resolvers first; failures there
// degrade to whatever ids are known. A Play call that arrives while a
// previous one is still resolving wins: the older call returns
// ErrSuperseded and leaves the newer session untouched.
func (o *Orchestrator) Play(ctx context.Context, req PlayRequest) (*NowPlaying, error) {
	mediaType := provider.MediaType(req.Type)
	if !mediaType.Valid() {
		return nil, fmt.Errorf("unknown media type %q", req.Type)
	}
	if req.ID == 0 && req.AniListID == 0 {
		return nil, fmt.Errorf("no media id supplied")
	}

	// A series request without an episode continues at the last watched
	// one; the URL builder falls back to S1E1 for unseen shows.
	if mediaType != provider.TypeMovie && req.Season == 0 {
		if season, episode, ok := o.store.LatestEpisode(req.ID, req.Type); ok {
			req.Season, req.Episode = season, episode
		}
	}

	gen := o.session.Begin()

	ids := anilist.IDPair{AniListID: req.AniListID, MALID: req.MALID}
	if mediaType == provider.TypeAnime && (ids.AniListID == 0 || ids.MALID == 0) {
		ids = o.resolver.Resolve(ctx, req.ID, ids)
		if !o.session.Live(gen) {
			o.logger.Debug("Discarding superseded playback attempt",
				"id", req.ID,
				"generation", gen)
			return nil, ErrSuperseded
		}
	}

	media := provider.MediaDescriptor{
		Type:      mediaType,
		TMDBID:    req.ID,
		Season:    req.Season,
		Episode:   req.Episode,
		AniListID: ids.AniListID,
		MALID:     ids.MALID,
	}

	opts := req.Options
	if err := mergeOptions(&opts, o.defaultOptions()); err != nil {
		return nil, fmt.Errorf("failed to merge playback options: %w", err)
	}

	resume := o.store.Resume(req.ID, req.Type, req.Season, req.Episode)
	opts.Progress = provider.Float(resume)

	bindErr := o.selector.Bind(media, opts)
	if bindErr != nil && !errors.Is(bindErr, ErrNoPlayableSource) {
		return nil, bindErr
	}

	np := &NowPlaying{
		ID:       req.ID,
		Type:     req.Type,
		Title:    req.Title,
		Media:    media,
		Options:  opts,
		Provider: o.selector.Active(),
		Resume:   resume,
	}
	if embed, ok := o.session.Current(); ok {
		np.EmbedURL = embed.URL
	}

	if mediaType == provider.TypeTV || mediaType == provider.TypeAnime {
		np.Seasons = o.seasons.Seasons(ctx, req.ID)
	}

	o.mu.Lock()
	o.current = np
	o.mu.Unlock()

	o.logger.Info("Started playback session",
		"id", req.ID,
		"type", req.Type,
		"provider", np.Provider,
		"resume", resume)

	// ErrNoPlayableSource still yields a session: the selector stays
	// bound so the user can switch providers.
	return o.snapshot(), bindErr
}

// SelectProvider switches the active session to the named provider.
func (o *Orchestrator) SelectProvider(name string) (*NowPlaying, error) {
	o.mu.Lock()
	if o.current == nil {
		o.mu.Unlock()
		return nil, fmt.Errorf("nothing is playing")
	}
	o.mu.Unlock()

	err := o.selector.Select(name)
	if err != nil && !errors.Is(err, ErrNoPlayableSource) {
		return nil, err
	}
	o.refreshCurrent()
	return o.snapshot(), err
}

// UpdateOptions merges the supplied options over the active session's
// and re-triggers the active provider selection, so toggles like dub
// or auto-skip-intro rebuild the URL through the provider's grammar.
func (o *Orchestrator) UpdateOptions(extra provider.Options) (*NowPlaying, error) {
	o.mu.Lock()
	if o.current == nil {
		o.mu.Unlock()
		return nil, fmt.Errorf("nothing is playing")
	}
	merged := extra
	if err := mergeOptions(&merged, o.current.Options); err != nil {
		o.mu.Unlock()
		return nil, fmt.Errorf("failed to merge playback options: %w", err)
	}
	o.current.Options = merged
	o.mu.Unlock()

	err := o.selector.UpdateOptions(merged)
	if err != nil && !errors.Is(err, ErrNoPlayableSource) {
		return nil, err
	}
	o.refreshCurrent()
	return o.snapshot(), err
}

// Stop unmounts the embed and clears the active session.
func (o *Orchestrator) Stop() {
	o.session.Unmount()

	o.mu.Lock()
	o.current = nil
	o.mu.Unlock()
}

// Current returns a copy of the active session, or nil.
func (o *Orchestrator) Current() *NowPlaying {
	return o.snapshot()
}

func (o *Orchestrator) snapshot() *NowPlaying {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil {
		return nil
	}
	np := *o.current
	return &np
}

func (o *Orchestrator) refreshCurrent() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil {
		return
	}
	o.current.Provider = o.selector.Active()
	o.current.EmbedURL = ""
	if embed, ok := o.session.Current(); ok {
		o.current.EmbedURL = embed.URL
	}
}

// mergeOptions fills the unset fields of dst from defaults. The
// transformer stops mergo from descending into non-nil pointers,
// which would let a default true clobber an explicit false.
func mergeOptions(dst *provider.Options, defaults provider.Options) error {
	return mergo.Merge(dst, defaults, mergo.WithTransformers(optionPointers{}))
}

type optionPointers struct{}

func (optionPointers) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t.Kind() != reflect.Ptr {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if dst.CanSet() && dst.IsNil() {
			dst.Set(src)
		}
		return nil
	}
}

// defaultOptions is the documented option baseline callers merge
// their extras over.
func (o *Orchestrator) defaultOptions() provider.Options {
	return provider.Options{
		Color:               o.config.ThemeColor,
		Theme:               o.config.ThemeColor,
		Autoplay:            provider.Bool(true),
		AutoNext:            provider.Bool(true),
		AutoplayNextEpisode: provider.Bool(true),
		NextButton:          provider.Bool(true),
		EpisodeSelector:     provider.Bool(true),
		Overlay:             provider.Bool(true),
		Poster:              provider.Bool(true),
		Title:               provider.Bool(true),
		ServerIcon:          provider.Bool(true),
		Chromecast:          provider.Bool(true),
		HideServerControls:  provider.Bool(false),
		FullscreenButton:    provider.Bool(true),
		Icons:               "true",
		Dub:                 provider.Bool(o.config.Dub),
		AutoSkipIntro:       provider.Bool(o.config.AutoSkipIntro),
	}
}
