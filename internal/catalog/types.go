// Package catalog provides a client for the TMDB metadata proxy.
// The proxy is an opaque fetch boundary: failures at this boundary
// degrade to empty results and a warning log, never an error that
// could take a page down.
package catalog

// Item is a single movie or TV entry as returned by the proxy.
// List endpoints populate GenreIDs; detail endpoints populate Genres
// and, for TV, the season summaries.
type Item struct {
	ID            int             `json:"id"`
	Title         string          `json:"title,omitempty"`
	Name          string          `json:"name,omitempty"`
	Overview      string          `json:"overview,omitempty"`
	PosterPath    string          `json:"poster_path,omitempty"`
	BackdropPath  string          `json:"backdrop_path,omitempty"`
	ReleaseDate   string          `json:"release_date,omitempty"`
	FirstAirDate  string          `json:"first_air_date,omitempty"`
	VoteAverage   float64         `json:"vote_average,omitempty"`
	GenreIDs      []int           `json:"genre_ids,omitempty"`
	Genres        []Genre         `json:"genres,omitempty"`
	OriginCountry []string        `json:"origin_country,omitempty"`
	Seasons       []SeasonSummary `json:"seasons,omitempty"`
}

// DisplayTitle returns the movie title or TV name, whichever is set.
func (i *Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

// Genre is a TMDB genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SeasonSummary describes one season in a TV detail response.
type SeasonSummary struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	PosterPath   string `json:"poster_path,omitempty"`
}

// SeasonDetail is the full episode listing for one season.
type SeasonDetail struct {
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Episodes     []Episode `json:"episodes"`
}

// Episode is a single episode entry within a season.
type Episode struct {
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview,omitempty"`
	StillPath     string `json:"still_path,omitempty"`
	Runtime       int    `json:"runtime,omitempty"`
}

// ExternalIDs carries the cross-service identifiers of a TV show.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id,omitempty"`
	TVDBID int    `json:"tvdb_id,omitempty"`
}

// listResponse is the paged envelope every TMDB list endpoint uses.
type listResponse struct {
	Page         int    `json:"page"`
	Results      []Item `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

// animationGenreID is TMDB's genre id for "Animation".
const animationGenreID = 16

// EffectiveType reclassifies a TV entry as anime when it is tagged
// animation and originates from Japan. Any other combination keeps
// the requested type.
func EffectiveType(item *Item, mediaType string) string {
	if mediaType != "tv" || item == nil {
		return mediaType
	}
	if item.isAnimation() && item.isJapanese() {
		return "anime"
	}
	return mediaType
}

func (i *Item) isAnimation() bool {
	for _, id := range i.GenreIDs {
		if id == animationGenreID {
			return true
		}
	}
	for _, g := range i.Genres {
		if g.ID == animationGenreID || g.Name == "Animation" {
			return true
		}
	}
	return false
}

func (i *Item) isJapanese() bool {
	for _, country := range i.OriginCountry {
		if country == "JP" {
			return true
		}
	}
	return false
}
