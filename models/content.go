package models

// ContentType identifies the broad category a title belongs to.
type ContentType string

const (
	TypeAnime  ContentType = "anime"
	TypeMovie  ContentType = "movie"
	TypeSeries ContentType = "series"
	TypeAll    ContentType = "all"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case TypeAnime, TypeMovie, TypeSeries, TypeAll:
		return true
	}
	return false
}

// Matches reports whether a title of type t satisfies the filter f.
func (t ContentType) Matches(f ContentType) bool {
	return f == TypeAll || f == t
}

// Status describes the airing state of a title.
type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusUnknown   Status = "unknown"
)

// Video source kinds. Embed sources carry the provider name as their kind
// (e.g. "streamtape") instead of one of these constants.
const (
	KindDirect = "direct"
	KindHLS    = "hls"
)

// QualityUnknown is the quality label used when no resolution can be inferred.
const QualityUnknown = "unknown"

// ContentSummary is a single search hit from one source. Identifiers are
// opaque and only meaningful to the source that produced them.
type ContentSummary struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	URL    string      `json:"url"`
	Poster string      `json:"poster,omitempty"`
	Type   ContentType `json:"type"`
	Year   string      `json:"year,omitempty"`
	Source string      `json:"source"`
}

// EpisodeRef points at one episode of a title. The (content id, episode id)
// pair forms the stable key used for source resolution.
type EpisodeRef struct {
	Number    int    `json:"number"`
	Title     string `json:"title,omitempty"`
	ID        string `json:"id"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Season groups episodes for series sources that expose season structure.
type Season struct {
	Number       int          `json:"number"`
	Title        string       `json:"title,omitempty"`
	ID           string       `json:"id"`
	EpisodeCount int          `json:"episode_count"`
	Episodes     []EpisodeRef `json:"episodes,omitempty"`
}

// SubtitleTrack is one subtitle file attached to a video source.
type SubtitleTrack struct {
	Language string `json:"language"`
	URL      string `json:"url"`
}

// VideoSource is one playable link extracted for a title or episode.
type VideoSource struct {
	URL       string            `json:"url"`
	Kind      string            `json:"kind"`
	Quality   string            `json:"quality"`
	Language  string            `json:"language,omitempty"`
	IsM3U8    bool              `json:"is_m3u8"`
	Referer   string            `json:"referer,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Subtitles []SubtitleTrack   `json:"subtitles,omitempty"`
}

// DownloadLink is an offline download offered by a source.
type DownloadLink struct {
	URL     string `json:"url"`
	Label   string `json:"label,omitempty"`
	Quality string `json:"quality,omitempty"`
}

// ContentDetails extends a summary with full metadata and episode structure.
// EpisodeListComplete is true only when Episodes is fully resolved and
// EpisodeCount equals its length; a count without a resolved list leaves it
// false rather than pretending the sequence is complete.
type ContentDetails struct {
	ContentSummary

	Description         string        `json:"description,omitempty"`
	ReleaseYear         string        `json:"release_year,omitempty"`
	Genres              []string      `json:"genres,omitempty"`
	Status              Status        `json:"status"`
	Duration            string        `json:"duration,omitempty"`
	Rating              string        `json:"rating,omitempty"`
	EpisodeCount        int           `json:"episode_count"`
	Episodes            []EpisodeRef  `json:"episodes,omitempty"`
	EpisodeListComplete bool          `json:"episode_list_complete"`
	Seasons             []Season      `json:"seasons,omitempty"`
	Sources             []VideoSource `json:"sources,omitempty"`
}

// SourceFailure names one source that failed during an aggregated call.
type SourceFailure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// SourceOutcome reports, for one aggregated call, every source that was
// attempted split into the disjoint succeeded/failed sets.
type SourceOutcome struct {
	Attempted []string        `json:"attempted"`
	Succeeded []string        `json:"succeeded"`
	Failed    []SourceFailure `json:"failed,omitempty"`
}
