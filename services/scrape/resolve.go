package scrape

import (
	"net/url"
	"strings"

	"unistream/models"
)

// embedHosts maps domain fragments to the embed provider name reported as
// the source kind. Matching is a fixed allow-list; anything unrecognized is
// treated as a direct file rather than guessed at.
var embedHosts = []struct {
	fragment string
	provider string
}{
	{"streamtape", "streamtape"},
	{"dood", "doodstream"},
	{"mixdrop", "mixdrop"},
	{"upstream", "upstream"},
	{"vidcloud", "vidcloud"},
	{"mp4upload", "mp4upload"},
	{"yourupload", "yourupload"},
	{"sbembed", "sbembed"},
	{"filemoon", "filemoon"},
	{"voe", "voe"},
}

// Classify turns one raw extracted link into a canonical VideoSource.
// An .m3u8-style path or a declared playlist type wins over everything; a
// host on the embed allow-list yields that provider's name as the kind; the
// rest is assumed to be a direct file. Ambiguity never raises an error;
// unknown stays unknown.
func Classify(raw RawSource) models.VideoSource {
	link := strings.TrimSpace(raw.URL)
	if strings.HasPrefix(link, "//") {
		link = "https:" + link
	}

	kind, m3u8 := classifyKind(link, raw.DeclaredType)

	// Recognized resolution labels normalize; anything else passes through
	// as free text ("auto", "cam", ...).
	quality := strings.TrimSpace(raw.Quality)
	switch {
	case quality == "":
		quality = models.QualityUnknown
	case qualityFromLabel(quality) != models.QualityUnknown:
		quality = qualityFromLabel(quality)
	}

	return models.VideoSource{
		URL:       link,
		Kind:      kind,
		Quality:   quality,
		Language:  strings.TrimSpace(raw.Language),
		IsM3U8:    m3u8,
		Referer:   strings.TrimSpace(raw.Referer),
		Headers:   raw.Headers,
		Subtitles: raw.Subtitles,
	}
}

func classifyKind(link, declared string) (string, bool) {
	if strings.Contains(link, ".m3u8") || isPlaylistType(declared) {
		return models.KindHLS, true
	}
	if provider := embedProvider(link); provider != "" {
		return provider, false
	}
	return models.KindDirect, false
}

func isPlaylistType(declared string) bool {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case "hls", "m3u8", "playlist", "application/x-mpegurl", "application/vnd.apple.mpegurl":
		return true
	}
	return false
}

// embedProvider returns the allow-listed provider name for the link's host,
// or "" when the host is not a known embed provider.
func embedProvider(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	for _, e := range embedHosts {
		if strings.Contains(host, e.fragment) {
			return e.provider
		}
	}
	return ""
}
