package storage

import (
	"fmt"
	"sort"
)

// Derived-view tuning. The 60-second thresholds and the 20-item cap are a
// firm contract with the continue-watching surface.
const (
	minMeaningfulDuration = 60.0
	finishedMargin        = 60.0
	continueWatchingCap   = 20
)

// Resume returns the last known playback offset in seconds for the given
// identity, or 0 when nothing is stored. It never fails: an unreadable store
// behaves like an empty one.
func (s *Store) Resume(id int, mediaType string, season, episode int) float64 {
	probe := HistoryRecord{TMDBID: id, Type: mediaType, Season: season, Episode: episode}
	record, ok := s.GetHistory(probe)
	if !ok {
		return 0
	}
	return record.Progress
}

// ContinueWatching derives the in-progress list: newest first, items too
// short to matter or within a minute of their end dropped, one entry per
// (type, id) pair, capped at 20.
func (s *Store) ContinueWatching() ([]HistoryRecord, error) {
	records, err := s.History()
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].AddedAt > records[j].AddedAt
	})

	seen := make(map[string]bool)
	var compact []HistoryRecord

	for _, item := range records {
		if item.Type == "" || item.identityID() == "" {
			continue
		}
		if item.Progress == 0 || item.Duration < minMeaningfulDuration {
			continue
		}
		if item.Progress >= item.Duration-finishedMargin {
			// basically finished
			continue
		}

		pairKey := fmt.Sprintf("%s-%s", item.Type, item.identityID())
		if seen[pairKey] {
			continue
		}
		seen[pairKey] = true
		compact = append(compact, item)

		if len(compact) >= continueWatchingCap {
			break
		}
	}

	return compact, nil
}

// LatestEpisode returns the most recently watched (season, episode) pair for
// an episodic title, for "last watched S/E" labelling. ok is false when the
// title has no episode-scoped history.
func (s *Store) LatestEpisode(id int, mediaType string) (season, episode int, ok bool) {
	records, err := s.History()
	if err != nil {
		return 0, 0, false
	}

	var best *HistoryRecord
	for i := range records {
		r := records[i]
		if r.Type != mediaType || r.TMDBID != id {
			continue
		}
		if r.Season == 0 || r.Episode == 0 {
			continue
		}
		if best == nil || r.AddedAt > best.AddedAt {
			best = &records[i]
		}
	}

	if best == nil {
		return 0, 0, false
	}
	return best.Season, best.Episode, true
}
