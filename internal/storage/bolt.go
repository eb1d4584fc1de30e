// Package storage persists the per-user state of cinerealm — watch history,
// watchlist, and small preferences — in an embedded BoltDB file.
//
// Design Philosophy:
// - BoltDB chosen for ACID properties and embedded nature
// - One bucket per collection; records are JSON values under composite keys
// - Identity keys follow the {type}:{id}[:{season}:{episode}] pattern
// - Writes happen after every mutation; corrupt rows are skipped, never fatal
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketHistory   = []byte("history")   // watch-progress records
	bucketWatchlist = []byte("watchlist") // saved-for-later records
	bucketPrefs     = []byte("prefs")     // small scalar preferences
)

// Preference keys. Fixed names so exported state stays portable.
const (
	prefLastProvider       = "last_provider"
	prefDisclaimerAccepted = "disclaimer_accepted"
)

// Store handles all BoltDB operations for local state with proper error
// handling and logging.
type Store struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// HistoryRecord is one watch-progress row. Identity is (type, id) for
// movies and (type, id, season, episode) for tv and anime. TMDBID carries
// numeric catalog ids; MediaID preserves non-numeric ids reported by
// embedded players that address media their own way.
type HistoryRecord struct {
	TMDBID   int     `json:"tmdbId,omitempty"`
	MediaID  string  `json:"id,omitempty"`
	Type     string  `json:"type"`
	Season   int     `json:"season,omitempty"`
	Episode  int     `json:"episode,omitempty"`
	Progress float64 `json:"progress"`
	Duration float64 `json:"duration"`
	AddedAt  int64   `json:"addedAt"` // unix milliseconds of last update
}

// WatchlistRecord is one saved title. Identity is (type, id); records are
// toggled on and off, never updated in place.
type WatchlistRecord struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path,omitempty"`
	AddedAt    int64  `json:"addedAt"`
}

// identityID returns the record's id rendered for key construction.
func (r HistoryRecord) identityID() string {
	if r.TMDBID > 0 {
		return strconv.Itoa(r.TMDBID)
	}
	return r.MediaID
}

// episodeScoped reports whether the record's identity includes season and
// episode. Movies are identified by id alone.
func (r HistoryRecord) episodeScoped() bool {
	return r.Type == "tv" || r.Type == "anime"
}

// key builds the composite bucket key for the record.
func (r HistoryRecord) key() []byte {
	if r.episodeScoped() {
		return []byte(fmt.Sprintf("%s:%s:%d:%d", r.Type, r.identityID(), r.Season, r.Episode))
	}
	return []byte(fmt.Sprintf("%s:%s", r.Type, r.identityID()))
}

// key builds the composite bucket key for the watchlist record.
func (r WatchlistRecord) key() []byte {
	return []byte(fmt.Sprintf("%s:%d", r.Type, r.ID))
}

// NewStore opens (or creates) the state database at path and ensures all
// buckets exist.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	store := &Store{db: db, logger: logger}

	if err := store.initializeBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	logger.Info("State store initialized", "db_path", path)
	return store, nil
}

// initializeBuckets creates all required buckets if they don't exist.
func (s *Store) initializeBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketHistory, bucketWatchlist, bucketPrefs}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", string(bucket), err)
			}
		}

		return nil
	})
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	s.logger.Info("Closing state store")
	return s.db.Close()
}

// HealthCheck verifies the database is reachable.
func (s *Store) HealthCheck() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketHistory) == nil {
			return fmt.Errorf("history bucket missing")
		}
		return nil
	})
}

// UpsertHistory writes the record under its identity key, replacing any
// previous row for the same identity. Persistence is immediate.
func (s *Store) UpsertHistory(record HistoryRecord) error {
	if record.identityID() == "" || record.Type == "" {
		return fmt.Errorf("history record must have an id and a type")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketHistory)

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal history record: %w", err)
		}

		if err := bucket.Put(record.key(), data); err != nil {
			return fmt.Errorf("failed to store history record: %w", err)
		}

		s.logger.Debug("History record upserted",
			"key", string(record.key()),
			"progress", record.Progress,
			"duration", record.Duration)

		return nil
	})
}

// GetHistory retrieves the record matching the identity of probe, if any.
func (s *Store) GetHistory(probe HistoryRecord) (*HistoryRecord, bool) {
	var record HistoryRecord
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketHistory).Get(probe.key())
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &record); err != nil {
			s.logger.Warn("Failed to unmarshal history record",
				"key", string(probe.key()),
				"error", err)
			return nil
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &record, true
}

// History returns every stored history record. Corrupt rows are skipped with
// a warning so one bad entry never hides the rest.
func (s *Store) History() ([]HistoryRecord, error) {
	var records []HistoryRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketHistory).ForEach(func(k, v []byte) error {
			var record HistoryRecord
			if err := json.Unmarshal(v, &record); err != nil {
				s.logger.Warn("Failed to unmarshal history record",
					"key", string(k),
					"error", err)
				return nil
			}
			records = append(records, record)
			return nil
		})
	})

	return records, err
}

// ToggleWatchlist adds the record when its identity is absent and removes it
// when present. Returns true when the item ended up on the list.
func (s *Store) ToggleWatchlist(record WatchlistRecord) (bool, error) {
	if record.ID == 0 || record.Type == "" {
		return false, fmt.Errorf("watchlist record must have an id and a type")
	}

	added := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketWatchlist)
		key := record.key()

		if bucket.Get(key) != nil {
			return bucket.Delete(key)
		}

		if record.AddedAt == 0 {
			record.AddedAt = time.Now().UnixMilli()
		}
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal watchlist record: %w", err)
		}
		added = true
		return bucket.Put(key, data)
	})
	if err != nil {
		return false, err
	}

	s.logger.Debug("Watchlist toggled",
		"key", string(record.key()),
		"added", added)
	return added, nil
}

// InWatchlist reports whether the (id, type) identity is saved.
func (s *Store) InWatchlist(id int, mediaType string) bool {
	present := false
	s.db.View(func(tx *bbolt.Tx) error {
		key := WatchlistRecord{ID: id, Type: mediaType}.key()
		present = tx.Bucket(bucketWatchlist).Get(key) != nil
		return nil
	})
	return present
}

// Watchlist returns all saved titles.
func (s *Store) Watchlist() ([]WatchlistRecord, error) {
	var records []WatchlistRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketWatchlist).ForEach(func(k, v []byte) error {
			var record WatchlistRecord
			if err := json.Unmarshal(v, &record); err != nil {
				s.logger.Warn("Failed to unmarshal watchlist record",
					"key", string(k),
					"error", err)
				return nil
			}
			records = append(records, record)
			return nil
		})
	})

	return records, err
}

// LastProvider returns the display name of the provider the user last chose,
// or "" when none was persisted yet.
func (s *Store) LastProvider() string {
	return s.getPref(prefLastProvider)
}

// SetLastProvider persists the user's explicit provider choice.
func (s *Store) SetLastProvider(name string) error {
	return s.setPref(prefLastProvider, name)
}

// DisclaimerAccepted reports whether the user opted out of the disclaimer.
func (s *Store) DisclaimerAccepted() bool {
	return s.getPref(prefDisclaimerAccepted) == "true"
}

// SetDisclaimerAccepted persists the disclaimer opt-out.
func (s *Store) SetDisclaimerAccepted(accepted bool) error {
	return s.setPref(prefDisclaimerAccepted, strconv.FormatBool(accepted))
}

func (s *Store) getPref(key string) string {
	var value string
	s.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(bucketPrefs).Get([]byte(key)); data != nil {
			value = string(data)
		}
		return nil
	})
	return value
}

func (s *Store) setPref(key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPrefs).Put([]byte(key), []byte(value))
	})
}
