package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePlayerEvent(t *testing.T) {
	raw := []byte(`{
		"type": "PLAYER_EVENT",
		"data": {
			"currentTime": 640.5,
			"duration": 3600,
			"id": 1399,
			"mediaType": "tv",
			"season": 1,
			"episode": 2,
			"event": "timeupdate"
		}
	}`)

	u, ok := Decode(raw)
	assert.True(t, ok)
	assert.Equal(t, 1399, u.TMDBID)
	assert.Equal(t, "tv", u.Type)
	assert.Equal(t, 1, u.Season)
	assert.Equal(t, 2, u.Episode)
	assert.Equal(t, 640.5, u.Progress)
	assert.Equal(t, 3600.0, u.Duration)
	assert.Equal(t, "timeupdate", u.Event)
}

func TestDecodePlayerEventStringID(t *testing.T) {
	raw := []byte(`{"type":"PLAYER_EVENT","data":{"id":"603","mediaType":"movie","currentTime":12,"duration":5400}}`)

	u, ok := Decode(raw)
	assert.True(t, ok)
	assert.Equal(t, 603, u.TMDBID)
	assert.Equal(t, "movie", u.Type)
	// Movies never carry episodic addressing.
	assert.Zero(t, u.Season)
	assert.Zero(t, u.Episode)
}

func TestDecodePlayerEventDiscards(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"zero id", `{"type":"PLAYER_EVENT","data":{"id":0,"mediaType":"movie"}}`},
		{"non-numeric id", `{"type":"PLAYER_EVENT","data":{"id":"abc","mediaType":"movie"}}`},
		{"missing media type", `{"type":"PLAYER_EVENT","data":{"id":603,"currentTime":10}}`},
		{"missing data", `{"type":"PLAYER_EVENT"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Decode([]byte(tt.raw))
			assert.False(t, ok)
		})
	}
}

func TestDecodeMediaData(t *testing.T) {
	raw := []byte(`{
		"type": "MEDIA_DATA",
		"data": {
			"id": 603,
			"type": "movie",
			"progress": {"watched": 120, "duration": 5400}
		}
	}`)

	u, ok := Decode(raw)
	assert.True(t, ok)
	assert.Equal(t, 603, u.TMDBID)
	assert.Equal(t, "movie", u.Type)
	assert.Equal(t, 120.0, u.Progress)
	assert.Equal(t, 5400.0, u.Duration)
	assert.Empty(t, u.Event)
}

func TestDecodeMediaDataWatchedAliases(t *testing.T) {
	tests := []struct {
		name     string
		progress string
		expected float64
	}{
		{"watched wins", `{"watched": 100, "watchedTime": 200, "time": 300, "duration": 5400}`, 100},
		{"watchedTime second", `{"watchedTime": 200, "time": 300, "duration": 5400}`, 200},
		{"time last", `{"time": 300, "duration": 5400}`, 300},
		{"none defaults to zero", `{"duration": 5400}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte(`{"type":"MEDIA_DATA","data":{"id":603,"type":"movie","progress":` + tt.progress + `}}`)
			u, ok := Decode(raw)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, u.Progress)
		})
	}
}

func TestDecodeMediaDataNonNumericIDKeptAsGiven(t *testing.T) {
	raw := []byte(`{"type":"MEDIA_DATA","data":{"id":"one-piece","type":"anime","progress":{"watched":300,"duration":1440}}}`)

	u, ok := Decode(raw)
	assert.True(t, ok)
	assert.Zero(t, u.TMDBID)
	assert.Equal(t, "one-piece", u.MediaID)
	assert.Equal(t, "anime", u.Type)
}

func TestDecodeMediaDataNumericStringID(t *testing.T) {
	raw := []byte(`{"type":"MEDIA_DATA","data":{"id":"603","type":"movie","progress":{"watched":1,"duration":100}}}`)

	u, ok := Decode(raw)
	assert.True(t, ok)
	assert.Equal(t, 603, u.TMDBID)
	assert.Empty(t, u.MediaID)
}

func TestDecodeDoubleEncodedMessage(t *testing.T) {
	// Some players post a JSON string containing the real message.
	raw := []byte(`"{\"type\":\"PLAYER_EVENT\",\"data\":{\"id\":603,\"mediaType\":\"movie\",\"currentTime\":10,\"duration\":5400}}"`)

	u, ok := Decode(raw)
	assert.True(t, ok)
	assert.Equal(t, 603, u.TMDBID)
}

func TestDecodeGarbageIsSilentlyRejected(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `hello there`},
		{"empty", ``},
		{"wrong type", `{"type":"SOMETHING_ELSE","data":{"id":1}}`},
		{"null data", `{"type":"MEDIA_DATA","data":null}`},
		{"data wrong shape", `{"type":"MEDIA_DATA","data":[1,2,3]}`},
		{"string payload not json", `"just a plain string"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Decode([]byte(tt.raw))
			assert.False(t, ok)
		})
	}
}
