package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"unistream/models"
)

// SFlix serves movies and series. Season, episode, server, and source
// data all come from its ajax API, which wraps HTML fragments in JSON.
type SFlix struct {
	base  string
	fetch *Fetcher
}

func NewSFlix(baseURL string, fetch *Fetcher) *SFlix {
	return &SFlix{base: strings.TrimRight(baseURL, "/"), fetch: fetch}
}

func (f *SFlix) Key() string { return "sflix" }

func (f *SFlix) Info() SourceInfo {
	return SourceInfo{
		Key:         f.Key(),
		DisplayName: "SFlix",
		BaseURL:     f.base,
		Language:    "en",
		Types:       []models.ContentType{models.TypeMovie, models.TypeSeries},
	}
}

func (f *SFlix) Search(ctx context.Context, query string, limit int) ([]RawSummary, error) {
	searchURL := fmt.Sprintf("%s/search/%s", f.base, url.PathEscape(query))
	doc, err := f.fetch.Document(ctx, searchURL, nil)
	if err != nil {
		return nil, err
	}

	var results []RawSummary
	doc.Find("div.flw-item").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a.film-poster-ahref").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}
		img := s.Find("img").First()
		title := strings.TrimSpace(s.Find("h2.film-name").First().Text())
		if title == "" {
			title, _ = img.Attr("alt")
		}
		contentType := models.TypeSeries
		if strings.Contains(href, "/movie/") {
			contentType = models.TypeMovie
		}
		results = append(results, RawSummary{
			ID:     idFromPath(href),
			Title:  title,
			URL:    absoluteURL(f.base, href),
			Poster: imgSrc(img),
			Type:   contentType,
		})
		return len(results) < limit
	})
	return results, nil
}

func (f *SFlix) Details(ctx context.Context, contentID string, contentType models.ContentType) (*RawDetails, error) {
	if contentType != models.TypeSeries {
		contentType = models.TypeMovie
	}
	detailURL := fmt.Sprintf("%s/%s/%s", f.base, contentType, contentID)
	doc, err := f.fetch.Document(ctx, detailURL, nil)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h2.film-name").First().Text())
	if title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
	}

	details := &RawDetails{
		RawSummary: RawSummary{
			ID:     contentID,
			Title:  title,
			URL:    detailURL,
			Poster: imgSrc(doc.Find("img.film-poster-img").First()),
			Type:   contentType,
		},
		Description: strings.TrimSpace(doc.Find("div.film-description").First().Text()),
	}

	doc.Find(`a[href*="/genre/"]`).Each(func(_ int, s *goquery.Selection) {
		details.Genres = append(details.Genres, strings.TrimSpace(s.Text()))
	})

	infoText := doc.Find("div.elements").First().Text()
	if m := yearPattern.FindString(infoText); m != "" {
		details.ReleaseYear = m
	}
	if m := durationPattern.FindStringSubmatch(infoText); m != nil {
		details.Duration = m[1] + " min"
	}

	if contentType == models.TypeSeries {
		seasons, err := f.seasonList(ctx, contentID)
		if err != nil {
			return nil, err
		}
		details.Seasons = seasons
	} else {
		sources, err := f.movieSources(ctx, contentID)
		if err != nil {
			return nil, err
		}
		details.Sources = sources
	}
	return details, nil
}

// sflixFragment is the ajax envelope; data holds an HTML fragment.
type sflixFragment struct {
	Data string `json:"data"`
}

func (f *SFlix) fragment(ctx context.Context, url string) (*goquery.Document, error) {
	var payload sflixFragment
	if err := f.fetch.JSON(ctx, url, nil, &payload); err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse fragment %s: %v", ErrSourceUnavailable, url, err)
	}
	return doc, nil
}

func (f *SFlix) seasonList(ctx context.Context, seriesID string) ([]RawSeason, error) {
	doc, err := f.fragment(ctx, fmt.Sprintf("%s/ajax/season/list/%s", f.base, seriesID))
	if err != nil {
		return nil, err
	}

	type seasonRef struct {
		title string
		id    string
	}
	var refs []seasonRef
	doc.Find("a.dropdown-item").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		refs = append(refs, seasonRef{title: strings.TrimSpace(s.Text()), id: id})
	})

	seasons := make([]RawSeason, 0, len(refs))
	for i, ref := range refs {
		episodes, err := f.seasonEpisodes(ctx, ref.id)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, RawSeason{
			Number:   fmt.Sprintf("%d", i+1),
			Title:    ref.title,
			ID:       ref.id,
			Episodes: episodes,
		})
	}
	return seasons, nil
}

func (f *SFlix) seasonEpisodes(ctx context.Context, seasonID string) ([]RawEpisode, error) {
	doc, err := f.fragment(ctx, fmt.Sprintf("%s/ajax/season/episodes/%s", f.base, seasonID))
	if err != nil {
		return nil, err
	}

	var episodes []RawEpisode
	doc.Find("a.episode-item").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		title, _ := s.Attr("title")
		num := strings.TrimSpace(s.Find("span.episode-number").First().Text())
		episodes = append(episodes, RawEpisode{
			Number: num,
			Title:  title,
			ID:     id,
		})
	})
	return episodes, nil
}

type sflixSourceList struct {
	Data []struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (f *SFlix) movieSources(ctx context.Context, movieID string) ([]RawSource, error) {
	return f.serverSources(ctx,
		fmt.Sprintf("%s/ajax/movie/servers/%s", f.base, movieID),
		fmt.Sprintf("%s/ajax/movie/sources/", f.base))
}

func (f *SFlix) EpisodeSources(ctx context.Context, _, episodeID string) ([]RawSource, error) {
	return f.serverSources(ctx,
		fmt.Sprintf("%s/ajax/episode/servers/%s", f.base, episodeID),
		fmt.Sprintf("%s/ajax/episode/sources/", f.base))
}

// serverSources walks the server list fragment and resolves each
// server id into its source links. A dead server is skipped, not fatal.
func (f *SFlix) serverSources(ctx context.Context, serversURL, sourcesPrefix string) ([]RawSource, error) {
	doc, err := f.fragment(ctx, serversURL)
	if err != nil {
		return nil, err
	}

	var serverIDs []string
	doc.Find("a.server-item").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("data-id"); ok && id != "" {
			serverIDs = append(serverIDs, id)
		}
	})

	var sources []RawSource
	for _, id := range serverIDs {
		var payload sflixSourceList
		if err := f.fetch.JSON(ctx, sourcesPrefix+id, nil, &payload); err != nil {
			continue
		}
		for _, src := range payload.Data {
			if src.Link == "" {
				continue
			}
			sources = append(sources, RawSource{
				URL:     src.Link,
				Referer: f.base,
			})
		}
	}
	return sources, nil
}
