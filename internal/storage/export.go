package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/natefinch/atomic"
)

// StateSnapshot is the portable form of the local state: the two
// JSON-serialized collections under their fixed names. It matches the shape
// browsers kept in web storage, so exported files double as a migration
// path.
type StateSnapshot struct {
	History   []HistoryRecord   `json:"history"`
	Watchlist []WatchlistRecord `json:"watchlist"`
}

// ExportState writes both collections to path as a single JSON document,
// ordered by recency. The write is atomic so a crash never leaves a
// truncated snapshot behind.
func (s *Store) ExportState(path string) error {
	history, err := s.History()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	watchlist, err := s.Watchlist()
	if err != nil {
		return fmt.Errorf("failed to read watchlist: %w", err)
	}

	sort.Slice(history, func(i, j int) bool { return history[i].AddedAt > history[j].AddedAt })
	sort.Slice(watchlist, func(i, j int) bool { return watchlist[i].AddedAt > watchlist[j].AddedAt })

	snapshot := StateSnapshot{History: history, Watchlist: watchlist}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state snapshot: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("atomic write failed for %s: %w", path, err)
	}

	s.logger.Info("State exported",
		"path", path,
		"history_records", len(history),
		"watchlist_records", len(watchlist))
	return nil
}

// ImportState merges a snapshot file into the store. A missing or corrupt
// file degrades to an empty snapshot rather than failing: local state is
// best-effort by design.
func (s *Store) ImportState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("State snapshot unreadable, importing nothing",
			"path", path,
			"error", err)
		return nil
	}

	var snapshot StateSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("State snapshot corrupt, importing nothing",
			"path", path,
			"error", err)
		return nil
	}

	for _, record := range snapshot.History {
		if record.identityID() == "" || record.Type == "" {
			continue
		}
		if err := s.UpsertHistory(record); err != nil {
			return fmt.Errorf("failed to import history record: %w", err)
		}
	}

	for _, record := range snapshot.Watchlist {
		if record.ID == 0 || record.Type == "" {
			continue
		}
		if s.InWatchlist(record.ID, record.Type) {
			continue
		}
		if _, err := s.ToggleWatchlist(record); err != nil {
			return fmt.Errorf("failed to import watchlist record: %w", err)
		}
	}

	s.logger.Info("State imported",
		"path", path,
		"history_records", len(snapshot.History),
		"watchlist_records", len(snapshot.Watchlist))
	return nil
}
