package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Suppress logs during tests
	}))

	store, err := NewStore(filepath.Join(t.TempDir(), "cinerealm.db"), logger)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestNewStoreCreatesDatabaseFile(t *testing.T) {
	tempDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	dbPath := filepath.Join(tempDir, "cinerealm.db")
	store, err := NewStore(dbPath, logger)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	if err := store.HealthCheck(); err != nil {
		t.Errorf("Health check failed: %v", err)
	}
}

func TestUpsertAndGetHistory(t *testing.T) {
	store := createTestStore(t)

	record := HistoryRecord{
		TMDBID:   1399,
		Type:     "tv",
		Season:   1,
		Episode:  2,
		Progress: 640,
		Duration: 3600,
		AddedAt:  time.Now().UnixMilli(),
	}

	if err := store.UpsertHistory(record); err != nil {
		t.Fatalf("Failed to upsert history record: %v", err)
	}

	got, ok := store.GetHistory(HistoryRecord{TMDBID: 1399, Type: "tv", Season: 1, Episode: 2})
	if !ok {
		t.Fatal("Expected record to be found")
	}
	if got.Progress != 640 {
		t.Errorf("Expected progress 640, got %v", got.Progress)
	}

	// Different episode is a different identity.
	if _, ok := store.GetHistory(HistoryRecord{TMDBID: 1399, Type: "tv", Season: 1, Episode: 3}); ok {
		t.Error("Episode 3 should not share identity with episode 2")
	}
}

func TestUpsertHistoryIsIdentityStable(t *testing.T) {
	store := createTestStore(t)

	first := HistoryRecord{TMDBID: 1399, Type: "tv", Season: 1, Episode: 2, Progress: 100, Duration: 3600, AddedAt: 1}
	second := first
	second.Progress = 250
	second.AddedAt = 2

	if err := store.UpsertHistory(first); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if err := store.UpsertHistory(second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	records, err := store.History()
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record after two upserts of the same identity, got %d", len(records))
	}
	if records[0].Progress != 250 {
		t.Errorf("Expected latest progress 250, got %v", records[0].Progress)
	}
}

func TestMovieIdentityIgnoresSeasonEpisode(t *testing.T) {
	store := createTestStore(t)

	record := HistoryRecord{TMDBID: 603, Type: "movie", Progress: 120, Duration: 5400, AddedAt: 1}
	if err := store.UpsertHistory(record); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Season/episode values on a movie probe do not change its identity.
	got, ok := store.GetHistory(HistoryRecord{TMDBID: 603, Type: "movie", Season: 3, Episode: 9})
	if !ok {
		t.Fatal("Movie lookup should ignore season/episode")
	}
	if got.Progress != 120 {
		t.Errorf("Expected progress 120, got %v", got.Progress)
	}
}

func TestUpsertHistoryValidation(t *testing.T) {
	store := createTestStore(t)

	if err := store.UpsertHistory(HistoryRecord{Type: "movie"}); err == nil {
		t.Error("Expected error for record without id")
	}
	if err := store.UpsertHistory(HistoryRecord{TMDBID: 1}); err == nil {
		t.Error("Expected error for record without type")
	}
}

func TestNonNumericMediaID(t *testing.T) {
	store := createTestStore(t)

	record := HistoryRecord{MediaID: "one-piece", Type: "anime", Season: 1, Episode: 1071, Progress: 300, Duration: 1440, AddedAt: 1}
	if err := store.UpsertHistory(record); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, ok := store.GetHistory(HistoryRecord{MediaID: "one-piece", Type: "anime", Season: 1, Episode: 1071})
	if !ok {
		t.Fatal("Expected non-numeric id record to be found")
	}
	if got.Progress != 300 {
		t.Errorf("Expected progress 300, got %v", got.Progress)
	}
}

func TestToggleWatchlist(t *testing.T) {
	store := createTestStore(t)

	record := WatchlistRecord{ID: 603, Type: "movie", Title: "The Matrix", PosterPath: "/matrix.jpg"}

	added, err := store.ToggleWatchlist(record)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !added {
		t.Error("First toggle should add")
	}
	if !store.InWatchlist(603, "movie") {
		t.Error("Item should be in watchlist after add")
	}

	added, err = store.ToggleWatchlist(record)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if added {
		t.Error("Second toggle should remove")
	}
	if store.InWatchlist(603, "movie") {
		t.Error("Item should be gone after second toggle")
	}

	// Same id under a different type is a distinct identity.
	if _, err := store.ToggleWatchlist(WatchlistRecord{ID: 603, Type: "tv", Title: "Something"}); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if store.InWatchlist(603, "movie") {
		t.Error("Movie identity should be unaffected by tv toggle")
	}
	if !store.InWatchlist(603, "tv") {
		t.Error("TV identity should be present")
	}
}

func TestPrefs(t *testing.T) {
	store := createTestStore(t)

	if store.LastProvider() != "" {
		t.Error("Expected no last provider initially")
	}
	if err := store.SetLastProvider("Saturn"); err != nil {
		t.Fatalf("SetLastProvider failed: %v", err)
	}
	if store.LastProvider() != "Saturn" {
		t.Errorf("Expected Saturn, got %s", store.LastProvider())
	}

	if store.DisclaimerAccepted() {
		t.Error("Disclaimer should not be accepted initially")
	}
	if err := store.SetDisclaimerAccepted(true); err != nil {
		t.Fatalf("SetDisclaimerAccepted failed: %v", err)
	}
	if !store.DisclaimerAccepted() {
		t.Error("Disclaimer should be accepted after set")
	}
}
