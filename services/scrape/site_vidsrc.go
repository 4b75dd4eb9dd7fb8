package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"unistream/models"
)

// VidSrc is a JSON API covering movies, series, and anime.
type VidSrc struct {
	base  string
	fetch *Fetcher
}

func NewVidSrc(baseURL string, fetch *Fetcher) *VidSrc {
	return &VidSrc{base: strings.TrimRight(baseURL, "/"), fetch: fetch}
}

func (v *VidSrc) Key() string { return "vidsrc" }

func (v *VidSrc) Info() SourceInfo {
	return SourceInfo{
		Key:         v.Key(),
		DisplayName: "VidSrc",
		BaseURL:     v.base,
		Language:    "multi",
		Types:       []models.ContentType{models.TypeMovie, models.TypeSeries, models.TypeAnime},
	}
}

type vidsrcSearchResult struct {
	Result []struct {
		ID     string      `json:"id"`
		Title  string      `json:"title"`
		Type   string      `json:"type"`
		Poster string      `json:"poster"`
		Year   json.Number `json:"year"`
	} `json:"result"`
}

func (v *VidSrc) Search(ctx context.Context, query string, limit int) ([]RawSummary, error) {
	var payload vidsrcSearchResult
	searchURL := fmt.Sprintf("%s/api/search/%s", v.base, url.PathEscape(query))
	if err := v.fetch.JSON(ctx, searchURL, nil, &payload); err != nil {
		return nil, err
	}

	results := make([]RawSummary, 0, len(payload.Result))
	for _, item := range payload.Result {
		if len(results) >= limit {
			break
		}
		contentType := models.ContentType(item.Type)
		if !contentType.Valid() || contentType == models.TypeAll {
			contentType = models.TypeMovie
		}
		results = append(results, RawSummary{
			ID:     item.ID,
			Title:  item.Title,
			URL:    fmt.Sprintf("%s/%s/%s", v.base, contentType, item.ID),
			Poster: item.Poster,
			Type:   contentType,
			Year:   item.Year.String(),
		})
	}
	return results, nil
}

type vidsrcDetails struct {
	Data struct {
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Poster      string      `json:"poster"`
		Year        json.Number `json:"year"`
		Genres      []string    `json:"genres"`
		Seasons     []struct {
			ID       json.Number `json:"id"`
			Number   json.Number `json:"number"`
			Episodes []struct {
				ID     json.Number `json:"id"`
				Number json.Number `json:"number"`
				Title  string      `json:"title"`
			} `json:"episodes"`
		} `json:"seasons"`
		Sources []struct {
			URL string `json:"url"`
		} `json:"sources"`
	} `json:"data"`
}

func (v *VidSrc) Details(ctx context.Context, contentID string, contentType models.ContentType) (*RawDetails, error) {
	if contentType != models.TypeSeries {
		contentType = models.TypeMovie
	}
	var payload vidsrcDetails
	apiURL := fmt.Sprintf("%s/api/%s/%s", v.base, contentType, contentID)
	if err := v.fetch.JSON(ctx, apiURL, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Data.Title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
	}

	details := &RawDetails{
		RawSummary: RawSummary{
			ID:     contentID,
			Title:  payload.Data.Title,
			URL:    fmt.Sprintf("%s/%s/%s", v.base, contentType, contentID),
			Poster: payload.Data.Poster,
			Type:   contentType,
		},
		Description: payload.Data.Description,
		ReleaseYear: payload.Data.Year.String(),
		Genres:      payload.Data.Genres,
	}

	if contentType == models.TypeSeries {
		for _, season := range payload.Data.Seasons {
			raw := RawSeason{
				Number: season.Number.String(),
				Title:  "Season " + season.Number.String(),
				ID:     season.ID.String(),
			}
			for _, ep := range season.Episodes {
				raw.Episodes = append(raw.Episodes, RawEpisode{
					Number: ep.Number.String(),
					Title:  ep.Title,
					ID:     ep.ID.String(),
				})
			}
			details.Seasons = append(details.Seasons, raw)
		}
	} else {
		for _, src := range payload.Data.Sources {
			if src.URL == "" {
				continue
			}
			details.Sources = append(details.Sources, RawSource{
				URL:     src.URL,
				Referer: v.base,
			})
		}
	}
	return details, nil
}

type vidsrcEpisode struct {
	Data struct {
		Sources []struct {
			URL string `json:"url"`
		} `json:"sources"`
	} `json:"data"`
}

func (v *VidSrc) EpisodeSources(ctx context.Context, _, episodeID string) ([]RawSource, error) {
	var payload vidsrcEpisode
	apiURL := fmt.Sprintf("%s/api/episode/%s", v.base, episodeID)
	if err := v.fetch.JSON(ctx, apiURL, nil, &payload); err != nil {
		return nil, err
	}

	sources := make([]RawSource, 0, len(payload.Data.Sources))
	for _, src := range payload.Data.Sources {
		if src.URL == "" {
			continue
		}
		sources = append(sources, RawSource{
			URL:     src.URL,
			Referer: v.base,
		})
	}
	return sources, nil
}
