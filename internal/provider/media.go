// Package provider holds the static registry of third-party embed providers
// and the pure URL builders that translate a media descriptor plus a playback
// options bag into each provider's idiosyncratic embed URL.
//
// Design Philosophy:
// - One builder function per provider, dispatched through a strategy table
// - Builders are deterministic and never perform lookups of their own
// - Unsupported (provider, type) combinations yield "" rather than errors
// - Options unknown to a provider are dropped silently; that asymmetry is
//   the compatibility contract with uncontrolled third parties
package provider

import "strconv"

// MediaType classifies a playable unit.
type MediaType string

const (
	TypeMovie MediaType = "movie"
	TypeTV    MediaType = "tv"
	TypeAnime MediaType = "anime"
)

// Valid reports whether t is one of the known media types.
func (t MediaType) Valid() bool {
	return t == TypeMovie || t == TypeTV || t == TypeAnime
}

// MediaDescriptor identifies one playable unit. TMDBID is the unique join
// key; AniListID and MALID are caches of a one-way lookup from TMDBID and
// are never authoritative. Season/Episode apply to tv and anime only, and
// anime may address by episode alone.
type MediaDescriptor struct {
	Type      MediaType `json:"type"`
	TMDBID    int       `json:"tmdb_id"`
	Season    int       `json:"season,omitempty"`
	Episode   int       `json:"episode,omitempty"`
	AniListID int       `json:"anilist_id,omitempty"`
	MALID     int       `json:"mal_id,omitempty"`
}

// primaryID returns the identifier builders fall back to when they have no
// type-specific preference: the TMDB id, or for anime the AniList id when
// the TMDB id is absent. Empty string means the descriptor is unaddressable.
func (m MediaDescriptor) primaryID() string {
	if m.TMDBID > 0 {
		return strconv.Itoa(m.TMDBID)
	}
	if m.Type == TypeAnime && m.AniListID > 0 {
		return strconv.Itoa(m.AniListID)
	}
	return ""
}

// seasonOrDefault returns the season number, defaulting to 1.
func (m MediaDescriptor) seasonOrDefault() int {
	if m.Season > 0 {
		return m.Season
	}
	return 1
}

// episodeOrDefault returns the episode number, defaulting to 1.
func (m MediaDescriptor) episodeOrDefault() int {
	if m.Episode > 0 {
		return m.Episode
	}
	return 1
}
