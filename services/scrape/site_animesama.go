package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"unistream/models"
)

// AnimeSama is a French catalog. Search is a small JSON endpoint; the
// rest is plain HTML with one player block per mirror.
type AnimeSama struct {
	base  string
	fetch *Fetcher
}

func NewAnimeSama(baseURL string, fetch *Fetcher) *AnimeSama {
	return &AnimeSama{base: strings.TrimRight(baseURL, "/"), fetch: fetch}
}

func (a *AnimeSama) Key() string { return "animesama" }

func (a *AnimeSama) Info() SourceInfo {
	return SourceInfo{
		Key:         a.Key(),
		DisplayName: "AnimeSama",
		BaseURL:     a.base,
		Language:    "fr",
		Types:       []models.ContentType{models.TypeAnime},
	}
}

type animesamaHit struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Image string `json:"image"`
}

func (a *AnimeSama) Search(ctx context.Context, query string, limit int) ([]RawSummary, error) {
	searchURL := fmt.Sprintf("%s/template-php/defaut/fetch.php?search=%s", a.base, url.QueryEscape(query))
	var hits []animesamaHit
	if err := a.fetch.JSON(ctx, searchURL, nil, &hits); err != nil {
		return nil, err
	}

	if len(hits) > limit {
		hits = hits[:limit]
	}
	results := make([]RawSummary, 0, len(hits))
	for _, hit := range hits {
		results = append(results, RawSummary{
			ID:     idFromPath(hit.URL),
			Title:  hit.Title,
			URL:    absoluteURL(a.base, hit.URL),
			Poster: hit.Image,
			Type:   models.TypeAnime,
		})
	}
	return results, nil
}

func (a *AnimeSama) Details(ctx context.Context, contentID string, _ models.ContentType) (*RawDetails, error) {
	detailURL := fmt.Sprintf("%s/anime/%s", a.base, contentID)
	doc, err := a.fetch.Document(ctx, detailURL, nil)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
	}

	details := &RawDetails{
		RawSummary: RawSummary{
			ID:     contentID,
			Title:  title,
			URL:    detailURL,
			Poster: imgSrc(doc.Find("img.cover").First()),
			Type:   models.TypeAnime,
		},
		Description: strings.TrimSpace(doc.Find("div.synopsis").First().Text()),
	}

	doc.Find("div.genres a").Each(func(_ int, s *goquery.Selection) {
		details.Genres = append(details.Genres, strings.TrimSpace(s.Text()))
	})

	doc.Find("a.episode").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		id := idFromPath(href)
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		details.Episodes = append(details.Episodes, RawEpisode{
			Number: strconv.Itoa(i + 1),
			Title:  strings.TrimSpace(s.Text()),
			ID:     id,
		})
	})
	return details, nil
}

func (a *AnimeSama) EpisodeSources(ctx context.Context, contentID, episodeID string) ([]RawSource, error) {
	episodeURL := fmt.Sprintf("%s/anime/%s/%s", a.base, contentID, episodeID)
	doc, err := a.fetch.Document(ctx, episodeURL, nil)
	if err != nil {
		return nil, err
	}

	var sources []RawSource
	doc.Find("div.player iframe").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		sources = append(sources, RawSource{
			URL:      src,
			Language: "fr",
			Referer:  episodeURL,
		})
	})
	return sources, nil
}
