package storage

import (
	"testing"

	"go.etcd.io/bbolt"
)

func mustUpsert(t *testing.T, store *Store, record HistoryRecord) {
	t.Helper()
	if err := store.UpsertHistory(record); err != nil {
		t.Fatalf("Failed to upsert record: %v", err)
	}
}

func TestResumeAbsentIdentityReturnsZero(t *testing.T) {
	store := createTestStore(t)

	if got := store.Resume(999, "movie", 0, 0); got != 0 {
		t.Errorf("Expected 0 for absent identity, got %v", got)
	}
	if got := store.Resume(999, "tv", 4, 7); got != 0 {
		t.Errorf("Expected 0 for absent episode identity, got %v", got)
	}
}

func TestResumeExactMatch(t *testing.T) {
	store := createTestStore(t)

	mustUpsert(t, store, HistoryRecord{TMDBID: 603, Type: "movie", Progress: 120, Duration: 5400, AddedAt: 1})
	mustUpsert(t, store, HistoryRecord{TMDBID: 1399, Type: "tv", Season: 1, Episode: 2, Progress: 640, Duration: 3600, AddedAt: 2})

	if got := store.Resume(603, "movie", 0, 0); got != 120 {
		t.Errorf("Expected 120, got %v", got)
	}
	if got := store.Resume(1399, "tv", 1, 2); got != 640 {
		t.Errorf("Expected 640, got %v", got)
	}
	if got := store.Resume(1399, "tv", 1, 3); got != 0 {
		t.Errorf("Different episode should resume at 0, got %v", got)
	}
}

func TestContinueWatchingDurationBoundary(t *testing.T) {
	store := createTestStore(t)

	// duration < 60 is too short to be meaningful.
	mustUpsert(t, store, HistoryRecord{TMDBID: 1, Type: "movie", Progress: 30, Duration: 59, AddedAt: 10})
	// duration == 60 is the inclusive boundary, but progress within 60s of the
	// end counts as finished, so only a record with headroom survives.
	mustUpsert(t, store, HistoryRecord{TMDBID: 2, Type: "movie", Progress: 30, Duration: 120, AddedAt: 20})

	list, err := store.ContinueWatching()
	if err != nil {
		t.Fatalf("ContinueWatching failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(list))
	}
	if list[0].TMDBID != 2 {
		t.Errorf("Expected record 2, got %d", list[0].TMDBID)
	}
}

func TestContinueWatchingFinishedBoundary(t *testing.T) {
	store := createTestStore(t)

	// progress >= duration-60 is treated as finished: 1000 >= 1050-60.
	mustUpsert(t, store, HistoryRecord{TMDBID: 1, Type: "movie", Progress: 1000, Duration: 1050, AddedAt: 10})
	// 900 < 1200-60 stays in progress.
	mustUpsert(t, store, HistoryRecord{TMDBID: 2, Type: "movie", Progress: 900, Duration: 1200, AddedAt: 20})
	// Exactly at the boundary is excluded.
	mustUpsert(t, store, HistoryRecord{TMDBID: 3, Type: "movie", Progress: 1140, Duration: 1200, AddedAt: 30})
	// One second inside the boundary is included.
	mustUpsert(t, store, HistoryRecord{TMDBID: 4, Type: "movie", Progress: 1139, Duration: 1200, AddedAt: 40})

	list, err := store.ContinueWatching()
	if err != nil {
		t.Fatalf("ContinueWatching failed: %v", err)
	}

	ids := make(map[int]bool)
	for _, r := range list {
		ids[r.TMDBID] = true
	}
	if ids[1] {
		t.Error("Record within 60s of end should be excluded")
	}
	if !ids[2] {
		t.Error("Record with 300s remaining should be included")
	}
	if ids[3] {
		t.Error("Record exactly at duration-60 should be excluded")
	}
	if !ids[4] {
		t.Error("Record one second inside the margin should be included")
	}
}

func TestContinueWatchingZeroProgressExcluded(t *testing.T) {
	store := createTestStore(t)

	mustUpsert(t, store, HistoryRecord{TMDBID: 1, Type: "movie", Progress: 0, Duration: 5400, AddedAt: 10})

	list, err := store.ContinueWatching()
	if err != nil {
		t.Fatalf("ContinueWatching failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Unstarted records should not appear, got %d", len(list))
	}
}

func TestContinueWatchingSortsByRecency(t *testing.T) {
	store := createTestStore(t)

	mustUpsert(t, store, HistoryRecord{TMDBID: 1, Type: "movie", Progress: 100, Duration: 5400, AddedAt: 10})
	mustUpsert(t, store, HistoryRecord{TMDBID: 2, Type: "movie", Progress: 100, Duration: 5400, AddedAt: 30})
	mustUpsert(t, store, HistoryRecord{TMDBID: 3, Type: "movie", Progress: 100, Duration: 5400, AddedAt: 20})

	list, err := store.ContinueWatching()
	if err != nil {
		t.Fatalf("ContinueWatching failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(list))
	}
	if list[0].TMDBID != 2 || list[1].TMDBID != 3 || list[2].TMDBID != 1 {
		t.Errorf("Wrong order: %d, %d, %d", list[0].TMDBID, list[1].TMDBID, list[2].TMDBID)
	}
}

func TestContinueWatchingDeduplicatesByTypeAndID(t *testing.T) {
	store := createTestStore(t)

	// Two episodes of the same series: only the most recent survives.
	mustUpsert(t, store, HistoryRecord{TMDBID: 1399, Type: "tv", Season: 1, Episode: 1, Progress: 500, Duration: 3600, AddedAt: 10})
	mustUpsert(t, store, HistoryRecord{TMDBID: 1399, Type: "tv", Season: 1, Episode: 2, Progress: 700, Duration: 3600, AddedAt: 20})
	// Same numeric id as a movie is a different pair.
	mustUpsert(t, store, HistoryRecord{TMDBID: 1399, Type: "movie", Progress: 300, Duration: 5400, AddedAt: 5})

	list, err := store.ContinueWatching()
	if err != nil {
		t.Fatalf("ContinueWatching failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 records after dedupe, got %d", len(list))
	}
	if list[0].Episode != 2 {
		t.Errorf("Expected most recent episode kept, got episode %d", list[0].Episode)
	}
	if list[1].Type != "movie" {
		t.Errorf("Expected movie entry kept, got %s", list[1].Type)
	}
}

func TestContinueWatchingCap(t *testing.T) {
	store := createTestStore(t)

	for i := 1; i <= 30; i++ {
		mustUpsert(t, store, HistoryRecord{TMDBID: i, Type: "movie", Progress: 100, Duration: 5400, AddedAt: int64(i)})
	}

	list, err := store.ContinueWatching()
	if err != nil {
		t.Fatalf("ContinueWatching failed: %v", err)
	}
	if len(list) != 20 {
		t.Errorf("Expected cap of 20, got %d", len(list))
	}
	// Newest 20 survive: ids 30 down to 11.
	if list[0].TMDBID != 30 || list[19].TMDBID != 11 {
		t.Errorf("Wrong window: first=%d last=%d", list[0].TMDBID, list[19].TMDBID)
	}
}

func TestLatestEpisode(t *testing.T) {
	store := createTestStore(t)

	if _, _, ok := store.LatestEpisode(1399, "tv"); ok {
		t.Error("Expected no latest episode for empty store")
	}

	mustUpsert(t, store, HistoryRecord{TMDBID: 1399, Type: "tv", Season: 1, Episode: 4, Progress: 100, Duration: 3600, AddedAt: 10})
	mustUpsert(t, store, HistoryRecord{TMDBID: 1399, Type: "tv", Season: 2, Episode: 1, Progress: 100, Duration: 3600, AddedAt: 20})
	// Movie rows never count.
	mustUpsert(t, store, HistoryRecord{TMDBID: 1399, Type: "movie", Progress: 100, Duration: 5400, AddedAt: 30})

	season, episode, ok := store.LatestEpisode(1399, "tv")
	if !ok {
		t.Fatal("Expected a latest episode")
	}
	if season != 2 || episode != 1 {
		t.Errorf("Expected S2E1, got S%dE%d", season, episode)
	}
}

func TestHistorySkipsCorruptRows(t *testing.T) {
	store := createTestStore(t)

	for i := 1; i <= 3; i++ {
		mustUpsert(t, store, HistoryRecord{TMDBID: i, Type: "movie", Progress: 100, Duration: 5400, AddedAt: int64(i)})
	}

	// Sneak a corrupt value into the bucket.
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketHistory).Put([]byte("movie:broken"), []byte("{not json"))
	})
	if err != nil {
		t.Fatalf("Failed to inject corrupt row: %v", err)
	}

	records, err := store.History()
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Corrupt row should be skipped, expected 3 records, got %d", len(records))
	}
}
