package provider

import (
	"fmt"
	"strconv"
)

// builderFunc maps a media descriptor and options bag onto one provider's
// embed URL grammar. Returning "" means the combination is unaddressable.
type builderFunc func(media MediaDescriptor, opts Options) string

// builders is the per-provider strategy table. New providers are added here
// without touching existing entries.
var builders = map[string]builderFunc{
	"spenEmbed": buildSpenEmbed,
	"vidplus":   buildVidPlus,
	"vidfast":   buildVidFast,
	"vidking":   buildVidKing,
	"videasy":   buildVidEasy,
	"vidora":    buildVidora,
	"vidlink":   buildVidLink,
	"VidSrc":    buildVidSrc,
}

// Build constructs the embed URL for the given provider key. It returns ""
// when the provider is unknown, the provider does not support the media
// type, or the descriptor carries no usable identifier. Build is pure: same
// inputs always produce the same URL, and no lookups happen here — anime id
// resolution is the caller's job.
func Build(key string, media MediaDescriptor, opts Options) string {
	if !Supports(key, media.Type) {
		return ""
	}
	if media.primaryID() == "" {
		return ""
	}
	build, ok := builders[key]
	if !ok {
		return ""
	}
	return build(media, opts)
}

// buildSpenEmbed targets spencerdevs.xyz. Anime is addressed by AniList id
// with episode-only numbering; the only recognized option is a theme color.
func buildSpenEmbed(media MediaDescriptor, opts Options) string {
	id := media.primaryID()

	var base string
	switch media.Type {
	case TypeMovie:
		base = fmt.Sprintf("https://spencerdevs.xyz/movie/%s", id)
	case TypeTV:
		base = fmt.Sprintf("https://spencerdevs.xyz/tv/%s/%d/%d", id, media.seasonOrDefault(), media.episodeOrDefault())
	case TypeAnime:
		base = fmt.Sprintf("https://spencerdevs.xyz/anime/%s/%d", anilistOr(media, id), media.episodeOrDefault())
	}
	if base == "" {
		return ""
	}

	var q params
	if theme := firstNonEmpty(opts.Theme, opts.Color); theme != "" {
		q.addColor("theme", theme)
	}
	return base + q.encode()
}

// buildVidPlus targets player.vidplus.to, the provider with the widest
// recognized-option surface.
func buildVidPlus(media MediaDescriptor, opts Options) string {
	id := media.primaryID()

	var base string
	switch media.Type {
	case TypeMovie:
		base = fmt.Sprintf("https://player.vidplus.to/embed/movie/%s", id)
	case TypeTV:
		base = fmt.Sprintf("https://player.vidplus.to/embed/tv/%s/%d/%d", id, media.seasonOrDefault(), media.episodeOrDefault())
	case TypeAnime:
		base = fmt.Sprintf("https://player.vidplus.to/embed/anime/%s/%d", anilistOr(media, id), media.episodeOrDefault())
	}
	if base == "" {
		return ""
	}

	var q params
	q.addColor("primarycolor", opts.Color)
	q.addColor("secondarycolor", opts.SecondaryColor)
	q.addColor("iconcolor", opts.IconColor)
	q.addBool("autoplay", opts.Autoplay)
	q.addBool("autoNext", opts.AutoNext)
	q.addBool("nextButton", opts.NextButton)
	q.addSeconds("progress", opts.Progress)
	q.addBool("watchparty", opts.WatchParty)
	q.addBool("chromecast", opts.Chromecast)
	q.addBool("episodelist", opts.EpisodeList)
	q.add("server", opts.Server)
	q.addBool("poster", opts.Poster)
	q.addBool("title", opts.Title)
	q.add("icons", opts.Icons)
	q.addColor("fontcolor", opts.FontColor)
	q.add("fontsize", opts.FontSize)
	q.addFloat("opacity", opts.Opacity)
	q.addBool("servericon", opts.ServerIcon)
	return base + q.encode()
}

// buildVidFast targets vidfast.pro. Movie and tv only.
func buildVidFast(media MediaDescriptor, opts Options) string {
	id := media.primaryID()

	var base string
	switch media.Type {
	case TypeMovie:
		base = fmt.Sprintf("https://vidfast.pro/movie/%s", id)
	case TypeTV:
		base = fmt.Sprintf("https://vidfast.pro/tv/%s/%d/%d", id, media.seasonOrDefault(), media.episodeOrDefault())
	}
	if base == "" {
		return ""
	}

	var q params
	q.addBool("autoPlay", opts.Autoplay)
	q.addSeconds("startAt", opts.StartAt)
	q.addColor("theme", opts.Theme)
	q.addBool("nextButton", opts.NextButton)
	q.addBool("autoNext", opts.AutoNext)
	q.add("server", opts.Server)
	q.addBool("hideServerControls", opts.HideServerControls)
	q.addBool("fullscreenButton", opts.FullscreenButton)
	q.addBool("chromecast", opts.Chromecast)
	q.add("sub", opts.Sub)
	q.addBool("title", opts.Title)
	q.addBool("poster", opts.Poster)
	return base + q.encode()
}

// buildVidKing targets www.vidking.net. Movie and tv only.
func buildVidKing(media MediaDescriptor, opts Options) string {
	id := media.primaryID()

	var base string
	switch media.Type {
	case TypeMovie:
		base = fmt.Sprintf("https://www.vidking.net/embed/movie/%s", id)
	case TypeTV:
		base = fmt.Sprintf("https://www.vidking.net/embed/tv/%s/%d/%d", id, media.seasonOrDefault(), media.episodeOrDefault())
	}
	if base == "" {
		return ""
	}

	var q params
	q.addColor("color", opts.Color)
	q.addBool("autoPlay", opts.Autoplay)
	q.addBool("nextEpisode", opts.NextEpisode)
	q.addBool("episodeSelector", opts.EpisodeSelector)
	q.addSeconds("progress", opts.Progress)
	return base + q.encode()
}

// buildVidEasy targets player.videasy.net. Anime without an episode number
// is addressed movie-style, with no episode path segment.
func buildVidEasy(media MediaDescriptor, opts Options) string {
	id := media.primaryID()

	switch media.Type {
	case TypeMovie:
		var q params
		q.addColor("color", opts.Color)
		q.addSeconds("progress", opts.Progress)
		q.addBool("overlay", opts.Overlay)
		q.addBool("nextEpisode", opts.NextEpisode)
		q.addBool("episodeSelector", opts.EpisodeSelector)
		q.addBool("autoplayNextEpisode", opts.AutoplayNextEpisode)
		q.addBool("dub", opts.Dub)
		return fmt.Sprintf("https://player.videasy.net/movie/%s", id) + q.encode()

	case TypeTV:
		var q params
		q.addColor("color", opts.Color)
		q.addSeconds("progress", opts.Progress)
		q.addBool("nextEpisode", opts.NextEpisode)
		q.addBool("episodeSelector", opts.EpisodeSelector)
		q.addBool("autoplayNextEpisode", opts.AutoplayNextEpisode)
		q.addBool("overlay", opts.Overlay)
		q.addBool("dub", opts.Dub)
		return fmt.Sprintf("https://player.videasy.net/tv/%s/%d/%d", id, media.seasonOrDefault(), media.episodeOrDefault()) + q.encode()

	case TypeAnime:
		base := fmt.Sprintf("https://player.videasy.net/anime/%s", anilistOr(media, id))
		if media.Episode > 0 {
			base = fmt.Sprintf("%s/%d", base, media.Episode)
		}
		var q params
		q.addBool("dub", opts.Dub)
		q.addColor("color", opts.Color)
		return base + q.encode()
	}
	return ""
}

// buildVidora targets vidora.su. Movie and tv only; note the British
// "colour" spelling in its parameter set.
func buildVidora(media MediaDescriptor, opts Options) string {
	id := media.primaryID()

	var base string
	switch media.Type {
	case TypeMovie:
		base = fmt.Sprintf("https://vidora.su/movie/%s", id)
	case TypeTV:
		base = fmt.Sprintf("https://vidora.su/tv/%s/%d/%d", id, media.seasonOrDefault(), media.episodeOrDefault())
	}
	if base == "" {
		return ""
	}

	var q params
	q.addBool("autoplay", opts.Autoplay)
	q.addColor("colour", opts.Color)
	q.addBool("autonextepisode", opts.AutoplayNextEpisode)
	q.add("backbutton", opts.BackButton)
	q.add("logo", opts.Logo)
	q.addBool("pausescreen", opts.PauseScreen)
	q.addInt("idlecheck", opts.IdleCheck)
	return base + q.encode()
}

// buildVidLink targets vidlink.pro. Anime requires a MyAnimeList id when
// available and carries the subtitle/dub preference as a path segment, with
// a forced fallback when the requested audio is missing.
func buildVidLink(media MediaDescriptor, opts Options) string {
	id := media.primaryID()

	switch media.Type {
	case TypeMovie:
		return fmt.Sprintf("https://vidlink.pro/movie/%s", id)

	case TypeTV:
		return fmt.Sprintf("https://vidlink.pro/tv/%s/%d/%d", id, media.seasonOrDefault(), media.episodeOrDefault())

	case TypeAnime:
		animeID := id
		if media.MALID > 0 {
			animeID = strconv.Itoa(media.MALID)
		} else if media.AniListID > 0 {
			animeID = strconv.Itoa(media.AniListID)
		}
		base := fmt.Sprintf("https://vidlink.pro/anime/%s/%d/%s", animeID, media.episodeOrDefault(), subOrDub(opts))

		var q params
		q.add("fallback", "true")
		q.addColor("primaryColor", opts.Color)
		q.addBool("autoplay", opts.Autoplay)
		q.addBool("nextbutton", opts.NextButton)
		if opts.StartAt != nil && *opts.StartAt > 0 {
			q.addSeconds("startAt", opts.StartAt)
		}
		return base + q.encode()
	}
	return ""
}

// buildVidSrc targets vidsrc.cc. Movie and tv use the v3 embed paths; anime
// uses the v2 path with a prefixed identifier ("ani" + AniList id, or
// "tmdb" + TMDB id) and the subtitle/dub preference as a path segment.
func buildVidSrc(media MediaDescriptor, opts Options) string {
	id := media.primaryID()

	var base string
	var q params
	switch media.Type {
	case TypeMovie:
		base = fmt.Sprintf("https://vidsrc.cc/v3/embed/movie/%s", id)
	case TypeTV:
		base = fmt.Sprintf("https://vidsrc.cc/v3/embed/tv/%s/%d/%d", id, media.seasonOrDefault(), media.episodeOrDefault())
	case TypeAnime:
		idString := id
		if media.AniListID > 0 {
			idString = "ani" + strconv.Itoa(media.AniListID)
		} else if media.TMDBID > 0 {
			idString = "tmdb" + strconv.Itoa(media.TMDBID)
		}
		base = fmt.Sprintf("https://vidsrc.cc/v2/embed/anime/%s/%d/%s", idString, media.episodeOrDefault(), subOrDub(opts))
		q.addBool("autoSkipIntro", opts.AutoSkipIntro)
	}
	if base == "" {
		return ""
	}

	q.addBool("autoPlay", opts.Autoplay)
	if opts.StartAt != nil && *opts.StartAt > 0 {
		q.addSeconds("startAt", opts.StartAt)
	}
	return base + q.encode()
}

// anilistOr prefers the AniList id for anime paths, falling back to the
// generic identifier.
func anilistOr(media MediaDescriptor, fallback string) string {
	if media.AniListID > 0 {
		return strconv.Itoa(media.AniListID)
	}
	return fallback
}

// subOrDub renders the audio preference path segment.
func subOrDub(opts Options) string {
	if opts.DubEnabled() {
		return "dub"
	}
	return "sub"
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
