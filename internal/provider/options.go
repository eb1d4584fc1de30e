package provider

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Options is the flat, provider-agnostic playback configuration bag. Each
// provider consumes only the subset it understands and ignores the rest.
// Pointer fields distinguish "unset" (omitted from the URL entirely) from an
// explicit false/zero, which providers receive as the literal strings
// "true"/"false" or a floored integer.
type Options struct {
	Color          string `json:"color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
	IconColor      string `json:"icon_color,omitempty"`
	FontColor      string `json:"font_color,omitempty"`
	FontSize       string `json:"font_size,omitempty"`
	Theme          string `json:"theme,omitempty"`

	Autoplay            *bool `json:"autoplay,omitempty"`
	AutoNext            *bool `json:"auto_next,omitempty"`
	AutoplayNextEpisode *bool `json:"autoplay_next_episode,omitempty"`
	NextButton          *bool `json:"next_button,omitempty"`
	NextEpisode         *bool `json:"next_episode,omitempty"`
	EpisodeSelector     *bool `json:"episode_selector,omitempty"`
	Overlay             *bool `json:"overlay,omitempty"`
	Poster              *bool `json:"poster,omitempty"`
	Title               *bool `json:"title,omitempty"`
	ServerIcon          *bool `json:"server_icon,omitempty"`
	Chromecast          *bool `json:"chromecast,omitempty"`
	WatchParty          *bool `json:"watch_party,omitempty"`
	EpisodeList         *bool `json:"episode_list,omitempty"`
	HideServerControls  *bool `json:"hide_server_controls,omitempty"`
	FullscreenButton    *bool `json:"fullscreen_button,omitempty"`
	PauseScreen         *bool `json:"pause_screen,omitempty"`
	Dub                 *bool `json:"dub,omitempty"`
	AutoSkipIntro       *bool `json:"auto_skip_intro,omitempty"`

	// Progress and StartAt are resume offsets in seconds. Providers floor
	// them to whole seconds; some only accept StartAt when it is positive.
	Progress *float64 `json:"progress,omitempty"`
	StartAt  *float64 `json:"start_at,omitempty"`

	Opacity   *float64 `json:"opacity,omitempty"`
	IdleCheck *int     `json:"idle_check,omitempty"`

	Server     string `json:"server,omitempty"`
	Sub        string `json:"sub,omitempty"`
	Icons      string `json:"icons,omitempty"`
	BackButton string `json:"back_button,omitempty"`
	Logo       string `json:"logo,omitempty"`
}

// Bool returns a pointer to v, for populating optional Options fields.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v, for populating optional Options fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for populating optional Options fields.
func Int(v int) *int { return &v }

// DubEnabled reports whether the dub preference is explicitly on.
func (o Options) DubEnabled() bool {
	return o.Dub != nil && *o.Dub
}

// params accumulates query parameters in insertion order, matching the way
// the embed providers document their URLs. Values are escaped on render.
type params struct {
	pairs []paramPair
}

type paramPair struct {
	key   string
	value string
}

// add appends a raw key/value pair, skipping empty values.
func (p *params) add(key, value string) {
	if value == "" {
		return
	}
	p.pairs = append(p.pairs, paramPair{key: key, value: value})
}

// addBool serializes a tri-state boolean as the literal "true"/"false",
// omitting it entirely when unset.
func (p *params) addBool(key string, v *bool) {
	if v == nil {
		return
	}
	p.add(key, strconv.FormatBool(*v))
}

// addColor appends a color value with any leading '#' stripped.
func (p *params) addColor(key, value string) {
	p.add(key, strings.TrimPrefix(value, "#"))
}

// addSeconds floors a second offset to a whole integer, omitting when unset
// or not a finite number.
func (p *params) addSeconds(key string, v *float64) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return
	}
	p.add(key, strconv.Itoa(int(math.Floor(*v))))
}

// addFloat appends a numeric value, omitting when unset.
func (p *params) addFloat(key string, v *float64) {
	if v == nil {
		return
	}
	p.add(key, strconv.FormatFloat(*v, 'f', -1, 64))
}

// addInt appends an integer value, omitting when unset.
func (p *params) addInt(key string, v *int) {
	if v == nil {
		return
	}
	p.add(key, strconv.Itoa(*v))
}

// encode renders the accumulated parameters as a query string with a leading
// '?', or "" when nothing was added.
func (p *params) encode() string {
	if len(p.pairs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('?')
	for i, pair := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair.value))
	}
	return b.String()
}
