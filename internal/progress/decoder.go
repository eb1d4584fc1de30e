// Package progress normalizes the untrusted playback messages emitted by
// embedded third-party players into canonical watch-history updates.
//
// Two independently-shaped message formats are accepted. Decoding is a
// tagged-union attempt: try each shape in turn, and report "not this shape"
// without error on mismatch. Malformed payloads are expected noise on this
// channel and are swallowed, never surfaced.
package progress

import (
	"encoding/json"
	"strconv"
)

// Update is the canonical, shape-independent form of a progress message.
type Update struct {
	TMDBID   int     // numeric media id, 0 when the sender used a non-numeric id
	MediaID  string  // non-numeric id kept as given (shape B only)
	Type     string  // "movie", "tv", "anime", or whatever the sender claims
	Season   int     // episodic addressing, 0 when absent
	Episode  int
	Progress float64 // seconds watched
	Duration float64 // seconds total
	Event    string  // player event name ("timeupdate", "ended", ...), shape A only
}

// envelope is the common outer wrapper of both shapes.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode attempts to interpret raw as one of the two known message shapes.
// It returns false for anything else: unknown types, missing data, garbage
// bytes, or shape-A messages without a usable id. No error is ever returned;
// this channel is adversarial-input-tolerant by design.
func Decode(raw []byte) (Update, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Some players double-encode: a JSON string whose contents are the
		// actual message. Unwrap once and retry.
		var nested string
		if err := json.Unmarshal(raw, &nested); err != nil {
			return Update{}, false
		}
		if err := json.Unmarshal([]byte(nested), &env); err != nil {
			return Update{}, false
		}
	}

	if len(env.Data) == 0 {
		return Update{}, false
	}

	switch env.Type {
	case "PLAYER_EVENT":
		return decodePlayerEvent(env.Data)
	case "MEDIA_DATA":
		return decodeMediaData(env.Data)
	}
	return Update{}, false
}

// decodePlayerEvent handles shape A. The id must coerce to a non-zero
// integer and a media type must be present; anything else is discarded.
func decodePlayerEvent(data json.RawMessage) (Update, bool) {
	var payload struct {
		CurrentTime float64         `json:"currentTime"`
		Duration    float64         `json:"duration"`
		ID          json.RawMessage `json:"id"`
		MediaType   string          `json:"mediaType"`
		Season      int             `json:"season"`
		Episode     int             `json:"episode"`
		Event       string          `json:"event"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Update{}, false
	}

	id := coerceInt(payload.ID)
	if id == 0 || payload.MediaType == "" {
		return Update{}, false
	}

	u := Update{
		TMDBID:   id,
		Type:     payload.MediaType,
		Progress: payload.CurrentTime,
		Duration: payload.Duration,
		Event:    payload.Event,
	}
	if u.Type == "tv" || u.Type == "anime" {
		u.Season = payload.Season
		u.Episode = payload.Episode
	}
	return u, true
}

// decodeMediaData handles shape B. The watched time falls through three
// aliases in priority order, and a non-numeric id is kept as given.
func decodeMediaData(data json.RawMessage) (Update, bool) {
	var payload struct {
		ID       json.RawMessage `json:"id"`
		Type     string          `json:"type"`
		Progress *struct {
			Watched     *float64 `json:"watched"`
			WatchedTime *float64 `json:"watchedTime"`
			Time        *float64 `json:"time"`
			Duration    *float64 `json:"duration"`
		} `json:"progress"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Update{}, false
	}
	if payload.Type == "" || len(payload.ID) == 0 {
		return Update{}, false
	}

	u := Update{Type: payload.Type}

	if id := coerceInt(payload.ID); id != 0 {
		u.TMDBID = id
	} else {
		var s string
		if err := json.Unmarshal(payload.ID, &s); err != nil || s == "" {
			return Update{}, false
		}
		u.MediaID = s
	}

	if payload.Progress != nil {
		switch {
		case payload.Progress.Watched != nil:
			u.Progress = *payload.Progress.Watched
		case payload.Progress.WatchedTime != nil:
			u.Progress = *payload.Progress.WatchedTime
		case payload.Progress.Time != nil:
			u.Progress = *payload.Progress.Time
		}
		if payload.Progress.Duration != nil {
			u.Duration = *payload.Progress.Duration
		}
	}
	return u, true
}

// coerceInt extracts an integer from a JSON value that may arrive as a
// number or a numeric string. Returns 0 when no integer can be recovered.
func coerceInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return 0
}
