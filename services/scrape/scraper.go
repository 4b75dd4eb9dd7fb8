package scrape

import (
	"context"

	"unistream/models"
)

// SourceInfo describes a registered source's declared capabilities.
type SourceInfo struct {
	Key         string               `json:"key"`
	DisplayName string               `json:"display_name"`
	BaseURL     string               `json:"base_url"`
	Language    string               `json:"language"`
	Types       []models.ContentType `json:"content_types"`
}

// Serves reports whether the source declares a content type satisfying
// the filter t.
func (i SourceInfo) Serves(t models.ContentType) bool {
	for _, ct := range i.Types {
		if ct.Matches(t) {
			return true
		}
	}
	return false
}

// Scraper is the contract every site adapter implements. Raw return values
// are site-shaped and loosely typed; the normalizer turns them into the
// canonical models. Implementations must be safe for concurrent use and must
// not keep mutable state across calls.
type Scraper interface {
	// Key returns the registry key identifying this source.
	Key() string

	// Info returns the source's declared metadata.
	Info() SourceInfo

	// Search returns up to limit raw hits for a non-empty query. Zero hits
	// is a valid empty slice, not an error.
	Search(ctx context.Context, query string, limit int) ([]RawSummary, error)

	// Details fetches full metadata for an identifier previously returned
	// by this adapter's Search. Unknown identifiers yield ErrNotFound.
	// contentType disambiguates movie vs series on sources that split the
	// two behind distinct URL layouts; adapters that don't need it ignore it.
	Details(ctx context.Context, contentID string, contentType models.ContentType) (*RawDetails, error)

	// EpisodeSources extracts playable links for one episode. Partial
	// success returns the resolved subset rather than failing wholesale.
	EpisodeSources(ctx context.Context, contentID, episodeID string) ([]RawSource, error)
}

// DownloadLinker is an optional adapter capability for sources that expose
// offline download links alongside streams.
type DownloadLinker interface {
	DownloadLinks(ctx context.Context, contentID, episodeID string) ([]models.DownloadLink, error)
}

// RawSummary is one search hit as extracted from a site, prior to
// normalization.
type RawSummary struct {
	ID     string
	Title  string
	URL    string
	Poster string
	Type   models.ContentType
	Year   string
}

// RawEpisode is an episode row as extracted from a site. Number stays a
// string here because sites emit it in whatever form their markup carries.
type RawEpisode struct {
	Number    string
	Title     string
	ID        string
	Thumbnail string
}

// RawSeason groups raw episodes for sources with season structure.
type RawSeason struct {
	Number   string
	Title    string
	ID       string
	Episodes []RawEpisode
}

// RawDetails is the full metadata payload extracted for one title.
type RawDetails struct {
	RawSummary

	Description  string
	ReleaseYear  string
	Genres       []string
	Status       string
	Duration     string
	Rating       string
	EpisodeCount string
	Episodes     []RawEpisode
	Seasons      []RawSeason
	Sources      []RawSource
}

// RawSource is one extracted link before classification. DeclaredType is the
// site's own label for the link ("hls", "iframe", ...) when it states one.
type RawSource struct {
	URL          string
	DeclaredType string
	Quality      string
	Language     string
	Referer      string
	Headers      map[string]string
	Subtitles    []models.SubtitleTrack
}
