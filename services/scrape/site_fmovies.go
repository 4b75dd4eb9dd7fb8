package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"unistream/models"
)

// FMovies mixes plain HTML pages with two small ajax endpoints for the
// per-season episode list and the per-episode source list.
type FMovies struct {
	base  string
	fetch *Fetcher
}

func NewFMovies(baseURL string, fetch *Fetcher) *FMovies {
	return &FMovies{base: strings.TrimRight(baseURL, "/"), fetch: fetch}
}

func (f *FMovies) Key() string { return "fmovies" }

func (f *FMovies) Info() SourceInfo {
	return SourceInfo{
		Key:         f.Key(),
		DisplayName: "FMovies",
		BaseURL:     f.base,
		Language:    "en",
		Types:       []models.ContentType{models.TypeMovie, models.TypeSeries},
	}
}

func (f *FMovies) Search(ctx context.Context, query string, limit int) ([]RawSummary, error) {
	searchURL := fmt.Sprintf("%s/search?keyword=%s", f.base, url.QueryEscape(query))
	doc, err := f.fetch.Document(ctx, searchURL, nil)
	if err != nil {
		return nil, err
	}

	var results []RawSummary
	doc.Find("div.item").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a.poster").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}
		title, _ := link.Attr("title")
		contentType := models.TypeSeries
		if strings.Contains(href, "/movie/") {
			contentType = models.TypeMovie
		}
		results = append(results, RawSummary{
			ID:     idFromPath(href),
			Title:  title,
			URL:    absoluteURL(f.base, href),
			Poster: imgSrc(link.Find("img").First()),
			Type:   contentType,
		})
		return len(results) < limit
	})
	return results, nil
}

func (f *FMovies) Details(ctx context.Context, contentID string, contentType models.ContentType) (*RawDetails, error) {
	if contentType != models.TypeSeries {
		contentType = models.TypeMovie
	}
	detailURL := fmt.Sprintf("%s/%s/%s", f.base, contentType, contentID)
	doc, err := f.fetch.Document(ctx, detailURL, nil)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1.title").First().Text())
	if title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
	}

	details := &RawDetails{
		RawSummary: RawSummary{
			ID:     contentID,
			Title:  title,
			URL:    detailURL,
			Poster: imgSrc(doc.Find("img.poster").First()),
			Type:   contentType,
		},
		Description: strings.TrimSpace(doc.Find("div.desc").First().Text()),
	}

	meta := doc.Find("div.meta").First()
	meta.Find(`a[href*="/genre/"]`).Each(func(_ int, s *goquery.Selection) {
		details.Genres = append(details.Genres, strings.TrimSpace(s.Text()))
	})
	metaText := meta.Text()
	if m := yearPattern.FindString(metaText); m != "" {
		details.ReleaseYear = m
	}
	if m := durationPattern.FindStringSubmatch(metaText); m != nil {
		details.Duration = m[1] + " min"
	}

	if contentType == models.TypeSeries {
		seasons, err := f.seasonList(ctx, doc, contentID)
		if err != nil {
			return nil, err
		}
		details.Seasons = seasons
	} else {
		doc.Find("div.watch iframe").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok && src != "" {
				details.Sources = append(details.Sources, RawSource{
					URL:     src,
					Referer: f.base,
				})
			}
		})
	}
	return details, nil
}

// seasonList reads the season dropdown off the detail page and fetches
// each season's episode fragment.
func (f *FMovies) seasonList(ctx context.Context, doc *goquery.Document, seriesID string) ([]RawSeason, error) {
	type seasonRef struct {
		num   string
		title string
	}
	var refs []seasonRef
	doc.Find("select#season option").Each(func(_ int, s *goquery.Selection) {
		num, _ := s.Attr("value")
		refs = append(refs, seasonRef{num: num, title: strings.TrimSpace(s.Text())})
	})

	seasons := make([]RawSeason, 0, len(refs))
	for _, ref := range refs {
		episodes, err := f.seasonEpisodes(ctx, seriesID, ref.num)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, RawSeason{
			Number:   ref.num,
			Title:    ref.title,
			ID:       fmt.Sprintf("%s-s%s", seriesID, ref.num),
			Episodes: episodes,
		})
	}
	return seasons, nil
}

func (f *FMovies) seasonEpisodes(ctx context.Context, seriesID, seasonNum string) ([]RawEpisode, error) {
	listURL := fmt.Sprintf("%s/ajax/season/episodes/%s?season=%s", f.base, seriesID, url.QueryEscape(seasonNum))
	doc, err := f.fetch.Document(ctx, listURL, nil)
	if err != nil {
		return nil, err
	}

	var episodes []RawEpisode
	doc.Find("a.episode").Each(func(_ int, s *goquery.Selection) {
		num, _ := s.Attr("data-num")
		title, _ := s.Attr("title")
		id, _ := s.Attr("data-id")
		episodes = append(episodes, RawEpisode{
			Number: num,
			Title:  title,
			ID:     id,
		})
	})
	return episodes, nil
}

type fmoviesSourceList struct {
	Data []struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (f *FMovies) EpisodeSources(ctx context.Context, _, episodeID string) ([]RawSource, error) {
	var payload fmoviesSourceList
	sourcesURL := fmt.Sprintf("%s/ajax/episode/sources/%s", f.base, episodeID)
	if err := f.fetch.JSON(ctx, sourcesURL, nil, &payload); err != nil {
		return nil, err
	}

	sources := make([]RawSource, 0, len(payload.Data))
	for _, src := range payload.Data {
		if src.Link == "" {
			continue
		}
		sources = append(sources, RawSource{
			URL:     src.Link,
			Referer: f.base,
		})
	}
	return sources, nil
}
