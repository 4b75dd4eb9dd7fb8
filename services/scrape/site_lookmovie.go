package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"unistream/models"
)

// LookMovie is fully API driven. Movies and shows live behind separate
// endpoints, and streams are token-gated HLS fetched via the access
// endpoint.
type LookMovie struct {
	base  string
	fetch *Fetcher
}

func NewLookMovie(baseURL string, fetch *Fetcher) *LookMovie {
	return &LookMovie{base: strings.TrimRight(baseURL, "/"), fetch: fetch}
}

func (l *LookMovie) Key() string { return "lookmovie" }

func (l *LookMovie) Info() SourceInfo {
	return SourceInfo{
		Key:         l.Key(),
		DisplayName: "LookMovie",
		BaseURL:     l.base,
		Language:    "en",
		Types:       []models.ContentType{models.TypeMovie, models.TypeSeries},
	}
}

type lookmovieSearchResult struct {
	Results []struct {
		ID     json.Number `json:"id"`
		Title  string      `json:"title"`
		Slug   string      `json:"slug"`
		Poster string      `json:"poster"`
		Year   json.Number `json:"year"`
	} `json:"results"`
}

// Search queries movies and shows separately and interleaves nothing:
// movies first, then shows, capped at limit overall.
func (l *LookMovie) Search(ctx context.Context, query string, limit int) ([]RawSummary, error) {
	var results []RawSummary

	var movies lookmovieSearchResult
	moviesURL := fmt.Sprintf("%s/api/v1/movies/search/?q=%s", l.base, url.QueryEscape(query))
	if err := l.fetch.JSON(ctx, moviesURL, nil, &movies); err != nil {
		return nil, err
	}
	for _, item := range movies.Results {
		if len(results) >= limit {
			break
		}
		results = append(results, RawSummary{
			ID:     item.ID.String(),
			Title:  item.Title,
			URL:    fmt.Sprintf("%s/movies/view/%s", l.base, item.Slug),
			Poster: item.Poster,
			Type:   models.TypeMovie,
			Year:   item.Year.String(),
		})
	}

	var shows lookmovieSearchResult
	showsURL := fmt.Sprintf("%s/api/v1/shows/search/?q=%s", l.base, url.QueryEscape(query))
	if err := l.fetch.JSON(ctx, showsURL, nil, &shows); err == nil {
		for _, item := range shows.Results {
			if len(results) >= limit {
				break
			}
			results = append(results, RawSummary{
				ID:     item.ID.String(),
				Title:  item.Title,
				URL:    fmt.Sprintf("%s/shows/view/%s", l.base, item.Slug),
				Poster: item.Poster,
				Type:   models.TypeSeries,
				Year:   item.Year.String(),
			})
		}
	}
	return results, nil
}

type lookmovieMovie struct {
	Data struct {
		Title       string      `json:"title"`
		Slug        string      `json:"slug"`
		Description string      `json:"description"`
		Poster      string      `json:"poster"`
		Year        json.Number `json:"year"`
		Duration    json.Number `json:"duration"`
		Rating      json.Number `json:"rating"`
		Genres      []string    `json:"genres"`
	} `json:"data"`
}

type lookmovieShow struct {
	Data struct {
		Title       string      `json:"title"`
		Slug        string      `json:"slug"`
		Description string      `json:"description"`
		Poster      string      `json:"poster"`
		Year        json.Number `json:"year"`
		Rating      json.Number `json:"rating"`
		Genres      []string    `json:"genres"`
		Seasons     []struct {
			ID           json.Number `json:"id"`
			SeasonNumber json.Number `json:"season_number"`
			Title        string      `json:"title"`
			Episodes     []struct {
				ID            json.Number `json:"id"`
				EpisodeNumber json.Number `json:"episode_number"`
				Title         string      `json:"title"`
			} `json:"episodes"`
		} `json:"seasons"`
	} `json:"data"`
}

func (l *LookMovie) Details(ctx context.Context, contentID string, contentType models.ContentType) (*RawDetails, error) {
	if contentType == models.TypeSeries {
		return l.showDetails(ctx, contentID)
	}
	return l.movieDetails(ctx, contentID)
}

func (l *LookMovie) movieDetails(ctx context.Context, contentID string) (*RawDetails, error) {
	var payload lookmovieMovie
	apiURL := fmt.Sprintf("%s/api/v1/movies/view/%s", l.base, contentID)
	if err := l.fetch.JSON(ctx, apiURL, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Data.Title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
	}

	details := &RawDetails{
		RawSummary: RawSummary{
			ID:     contentID,
			Title:  payload.Data.Title,
			URL:    fmt.Sprintf("%s/movies/view/%s", l.base, payload.Data.Slug),
			Poster: payload.Data.Poster,
			Type:   models.TypeMovie,
		},
		Description: payload.Data.Description,
		ReleaseYear: payload.Data.Year.String(),
		Genres:      payload.Data.Genres,
		Rating:      payload.Data.Rating.String(),
	}
	if payload.Data.Duration.String() != "" {
		details.Duration = payload.Data.Duration.String() + " min"
	}

	sources, err := l.streams(ctx, "movies", contentID)
	if err != nil {
		return nil, err
	}
	details.Sources = sources
	return details, nil
}

func (l *LookMovie) showDetails(ctx context.Context, contentID string) (*RawDetails, error) {
	var payload lookmovieShow
	apiURL := fmt.Sprintf("%s/api/v1/shows/view/%s", l.base, contentID)
	if err := l.fetch.JSON(ctx, apiURL, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Data.Title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
	}

	details := &RawDetails{
		RawSummary: RawSummary{
			ID:     contentID,
			Title:  payload.Data.Title,
			URL:    fmt.Sprintf("%s/shows/view/%s", l.base, payload.Data.Slug),
			Poster: payload.Data.Poster,
			Type:   models.TypeSeries,
		},
		Description: payload.Data.Description,
		ReleaseYear: payload.Data.Year.String(),
		Genres:      payload.Data.Genres,
		Rating:      payload.Data.Rating.String(),
	}

	for _, season := range payload.Data.Seasons {
		raw := RawSeason{
			Number: season.SeasonNumber.String(),
			Title:  season.Title,
			ID:     season.ID.String(),
		}
		for _, ep := range season.Episodes {
			raw.Episodes = append(raw.Episodes, RawEpisode{
				Number: ep.EpisodeNumber.String(),
				Title:  ep.Title,
				ID:     ep.ID.String(),
			})
		}
		details.Seasons = append(details.Seasons, raw)
	}
	return details, nil
}

type lookmovieAccess struct {
	Data struct {
		Streams []struct {
			URL     string `json:"url"`
			Quality string `json:"quality"`
		} `json:"streams"`
	} `json:"data"`
}

func (l *LookMovie) streams(ctx context.Context, kind, id string) ([]RawSource, error) {
	var payload lookmovieAccess
	accessURL := fmt.Sprintf("%s/api/v1/%s/access/%s", l.base, kind, id)
	if err := l.fetch.JSON(ctx, accessURL, nil, &payload); err != nil {
		return nil, err
	}

	sources := make([]RawSource, 0, len(payload.Data.Streams))
	for _, stream := range payload.Data.Streams {
		if stream.URL == "" {
			continue
		}
		sources = append(sources, RawSource{
			URL:          stream.URL,
			DeclaredType: models.KindHLS,
			Quality:      stream.Quality,
			Referer:      l.base,
		})
	}
	return sources, nil
}

func (l *LookMovie) EpisodeSources(ctx context.Context, _, episodeID string) ([]RawSource, error) {
	return l.streams(ctx, "episode", episodeID)
}
