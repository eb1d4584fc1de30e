package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func movieDescriptor() MediaDescriptor {
	return MediaDescriptor{Type: TypeMovie, TMDBID: 603}
}

func tvDescriptor() MediaDescriptor {
	return MediaDescriptor{Type: TypeTV, TMDBID: 1399, Season: 1, Episode: 2}
}

func animeDescriptor() MediaDescriptor {
	return MediaDescriptor{Type: TypeAnime, TMDBID: 85937, AniListID: 101922, MALID: 38000, Episode: 5}
}

func TestBuildMoviePaths(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"spenEmbed", "https://spencerdevs.xyz/movie/603"},
		{"vidplus", "https://player.vidplus.to/embed/movie/603"},
		{"vidfast", "https://vidfast.pro/movie/603"},
		{"vidking", "https://www.vidking.net/embed/movie/603"},
		{"videasy", "https://player.videasy.net/movie/603"},
		{"vidora", "https://vidora.su/movie/603"},
		{"vidlink", "https://vidlink.pro/movie/603"},
		{"VidSrc", "https://vidsrc.cc/v3/embed/movie/603"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			url := Build(tt.key, movieDescriptor(), Options{})
			assert.Equal(t, tt.expected, url)
		})
	}
}

func TestBuildTVPaths(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"spenEmbed", "https://spencerdevs.xyz/tv/1399/1/2"},
		{"vidplus", "https://player.vidplus.to/embed/tv/1399/1/2"},
		{"vidfast", "https://vidfast.pro/tv/1399/1/2"},
		{"vidking", "https://www.vidking.net/embed/tv/1399/1/2"},
		{"videasy", "https://player.videasy.net/tv/1399/1/2"},
		{"vidora", "https://vidora.su/tv/1399/1/2"},
		{"vidlink", "https://vidlink.pro/tv/1399/1/2"},
		{"VidSrc", "https://vidsrc.cc/v3/embed/tv/1399/1/2"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			url := Build(tt.key, tvDescriptor(), Options{})
			assert.Equal(t, tt.expected, url)
		})
	}
}

func TestBuildAnimePaths(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"spenEmbed", "https://spencerdevs.xyz/anime/101922/5"},
		{"vidplus", "https://player.vidplus.to/embed/anime/101922/5"},
		{"videasy", "https://player.videasy.net/anime/101922/5"},
		{"vidlink", "https://vidlink.pro/anime/38000/5/sub?fallback=true"},
		{"VidSrc", "https://vidsrc.cc/v2/embed/anime/ani101922/5/sub"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			url := Build(tt.key, animeDescriptor(), Options{})
			assert.Equal(t, tt.expected, url)
		})
	}
}

func TestBuildUnsupportedCombinationsReturnEmpty(t *testing.T) {
	animeOnly := animeDescriptor()

	for _, key := range []string{"vidfast", "vidking", "vidora"} {
		t.Run(key, func(t *testing.T) {
			assert.Equal(t, "", Build(key, animeOnly, Options{}))
		})
	}

	// Unknown provider key supports nothing.
	assert.Equal(t, "", Build("bogus", movieDescriptor(), Options{}))
}

func TestBuildUnaddressableDescriptorReturnsEmpty(t *testing.T) {
	// No TMDB id at all.
	assert.Equal(t, "", Build("vidplus", MediaDescriptor{Type: TypeMovie}, Options{}))

	// Anime with no resolvable id of any kind.
	assert.Equal(t, "", Build("vidplus", MediaDescriptor{Type: TypeAnime}, Options{}))

	// Anime addressed by AniList id alone is still playable.
	url := Build("vidplus", MediaDescriptor{Type: TypeAnime, AniListID: 101922, Episode: 1}, Options{})
	assert.Equal(t, "https://player.vidplus.to/embed/anime/101922/1", url)
}

func TestBooleanOptionsSerializeAsLiterals(t *testing.T) {
	opts := Options{
		Autoplay:   Bool(true),
		AutoNext:   Bool(false),
		NextButton: Bool(true),
	}

	url := Build("vidplus", movieDescriptor(), opts)
	assert.Contains(t, url, "autoplay=true")
	assert.Contains(t, url, "autoNext=false")
	assert.Contains(t, url, "nextButton=true")
	assert.NotContains(t, url, "=1")
	assert.NotContains(t, url, "=0")
}

func TestUnsetOptionsAreOmitted(t *testing.T) {
	url := Build("vidplus", movieDescriptor(), Options{Autoplay: Bool(true)})
	assert.Equal(t, "https://player.vidplus.to/embed/movie/603?autoplay=true", url)

	// No options at all produces no query string.
	assert.Equal(t, "https://vidora.su/movie/603", Build("vidora", movieDescriptor(), Options{}))
}

func TestColorOptionsStripLeadingHash(t *testing.T) {
	opts := Options{Color: "#4E0000", Theme: "#ffffff"}

	assert.Contains(t, Build("vidplus", movieDescriptor(), opts), "primarycolor=4E0000")
	assert.Contains(t, Build("vidking", movieDescriptor(), opts), "color=4E0000")
	assert.Contains(t, Build("vidfast", movieDescriptor(), opts), "theme=ffffff")
	assert.Contains(t, Build("vidora", movieDescriptor(), opts), "colour=4E0000")

	// spenEmbed prefers theme over color.
	assert.Equal(t, "https://spencerdevs.xyz/movie/603?theme=ffffff", Build("spenEmbed", movieDescriptor(), opts))
}

func TestProgressOffsetsAreFloored(t *testing.T) {
	opts := Options{Progress: Float(125.9)}
	assert.Contains(t, Build("vidking", movieDescriptor(), opts), "progress=125")
	assert.Contains(t, Build("videasy", movieDescriptor(), opts), "progress=125")

	startAt := Options{StartAt: Float(99.7)}
	assert.Contains(t, Build("vidfast", movieDescriptor(), startAt), "startAt=99")
}

func TestStartAtOmittedWhenNotPositive(t *testing.T) {
	opts := Options{StartAt: Float(0)}
	assert.NotContains(t, Build("VidSrc", movieDescriptor(), opts), "startAt")

	anime := animeDescriptor()
	assert.NotContains(t, Build("vidlink", anime, opts), "startAt")

	opts.StartAt = Float(42)
	assert.Contains(t, Build("vidlink", anime, opts), "startAt=42")
}

func TestDubSelectsPathSegment(t *testing.T) {
	anime := animeDescriptor()

	dubbed := Options{Dub: Bool(true)}
	assert.True(t, strings.HasPrefix(Build("vidlink", anime, dubbed), "https://vidlink.pro/anime/38000/5/dub"))
	assert.True(t, strings.HasPrefix(Build("VidSrc", anime, dubbed), "https://vidsrc.cc/v2/embed/anime/ani101922/5/dub"))

	subbed := Options{Dub: Bool(false)}
	assert.True(t, strings.HasPrefix(Build("vidlink", anime, subbed), "https://vidlink.pro/anime/38000/5/sub"))
}

func TestVidLinkPrefersMALIDForAnime(t *testing.T) {
	withMAL := animeDescriptor()
	assert.Contains(t, Build("vidlink", withMAL, Options{}), "/anime/38000/")

	withoutMAL := withMAL
	withoutMAL.MALID = 0
	assert.Contains(t, Build("vidlink", withoutMAL, Options{}), "/anime/101922/")

	tmdbOnly := MediaDescriptor{Type: TypeAnime, TMDBID: 85937, Episode: 5}
	assert.Contains(t, Build("vidlink", tmdbOnly, Options{}), "/anime/85937/")
}

func TestVidSrcAnimeIDPrefixes(t *testing.T) {
	withAniList := animeDescriptor()
	assert.Contains(t, Build("VidSrc", withAniList, Options{}), "/anime/ani101922/")

	tmdbOnly := MediaDescriptor{Type: TypeAnime, TMDBID: 85937, Episode: 5}
	assert.Contains(t, Build("VidSrc", tmdbOnly, Options{}), "/anime/tmdb85937/")
}

func TestVidEasyAnimeWithoutEpisodeUsesMovieStylePath(t *testing.T) {
	film := MediaDescriptor{Type: TypeAnime, TMDBID: 129, AniListID: 199}
	assert.Equal(t, "https://player.videasy.net/anime/199", Build("videasy", film, Options{}))

	withEpisode := film
	withEpisode.Episode = 3
	assert.Equal(t, "https://player.videasy.net/anime/199/3", Build("videasy", withEpisode, Options{}))
}

func TestVidLinkAnimeAlwaysForcesFallback(t *testing.T) {
	url := Build("vidlink", animeDescriptor(), Options{})
	assert.Contains(t, url, "fallback=true")
}

func TestSeasonEpisodeDefaultToOne(t *testing.T) {
	bare := MediaDescriptor{Type: TypeTV, TMDBID: 1399}
	assert.Equal(t, "https://vidfast.pro/tv/1399/1/1", Build("vidfast", bare, Options{}))
}

func TestBuildIsDeterministic(t *testing.T) {
	opts := Options{
		Color:      "#abcdef",
		Autoplay:   Bool(true),
		NextButton: Bool(true),
		Progress:   Float(120),
		Server:     "alpha",
	}

	first := Build("vidplus", tvDescriptor(), opts)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Build("vidplus", tvDescriptor(), opts))
	}
}

func TestQueryValuesAreEscaped(t *testing.T) {
	opts := Options{Server: "a b&c"}
	url := Build("vidplus", movieDescriptor(), opts)
	assert.Contains(t, url, "server=a+b%26c")
}
