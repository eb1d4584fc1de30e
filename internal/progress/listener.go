package progress

import (
	"log/slog"
	"time"

	"github.com/DEHZ00/Cinerealm/internal/storage"
)

// Listener applies decoded progress updates to the history store. It is the
// single writer for the untrusted channel: every accepted message becomes an
// upsert against one identity-keyed record, and terminal "ended" events
// trigger a continue-watching refresh through the hook.
type Listener struct {
	store   *storage.Store
	logger  *slog.Logger
	onEnded func()

	// now is swappable for tests.
	now func() time.Time
}

// NewListener wires a listener to the store. onEnded may be nil when no
// surface needs refresh notifications.
func NewListener(store *storage.Store, logger *slog.Logger, onEnded func()) *Listener {
	return &Listener{
		store:   store,
		logger:  logger,
		onEnded: onEnded,
		now:     time.Now,
	}
}

// HandleMessage decodes one raw message from the untrusted channel and, when
// it matches a known shape, folds it into history. Undecodable input is
// dropped silently; only a store write failure is logged.
func (l *Listener) HandleMessage(raw []byte) {
	update, ok := Decode(raw)
	if !ok {
		return
	}
	l.Apply(update)
}

// Apply upserts one canonical update. A record is created with zeroed
// progress and duration when the identity is new, then the update is applied
// and the recency timestamp refreshed.
func (l *Listener) Apply(update Update) {
	probe := storage.HistoryRecord{
		TMDBID:  update.TMDBID,
		MediaID: update.MediaID,
		Type:    update.Type,
		Season:  update.Season,
		Episode: update.Episode,
	}

	record, ok := l.store.GetHistory(probe)
	if !ok {
		record = &probe
	}

	record.Progress = update.Progress
	record.Duration = update.Duration
	record.AddedAt = l.now().UnixMilli()

	if err := l.store.UpsertHistory(*record); err != nil {
		l.logger.Error("Failed to persist progress update",
			"type", update.Type,
			"tmdb_id", update.TMDBID,
			"error", err)
		return
	}

	l.logger.Debug("Progress update applied",
		"type", update.Type,
		"tmdb_id", update.TMDBID,
		"media_id", update.MediaID,
		"season", update.Season,
		"episode", update.Episode,
		"progress", update.Progress,
		"event", update.Event)

	if update.Event == "ended" && l.onEnded != nil {
		l.onEnded()
	}
}
