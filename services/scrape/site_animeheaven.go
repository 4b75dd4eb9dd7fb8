package scrape

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"unistream/models"
)

var animeheavenEpPattern = regexp.MustCompile(`(?i)Episode\s*(\d+)`)

// AnimeHeaven is a plain-HTML site; episode links sit directly on the
// detail page with no ajax layer.
type AnimeHeaven struct {
	base  string
	fetch *Fetcher
}

func NewAnimeHeaven(baseURL string, fetch *Fetcher) *AnimeHeaven {
	return &AnimeHeaven{base: strings.TrimRight(baseURL, "/"), fetch: fetch}
}

func (a *AnimeHeaven) Key() string { return "animeheaven" }

func (a *AnimeHeaven) Info() SourceInfo {
	return SourceInfo{
		Key:         a.Key(),
		DisplayName: "AnimeHeaven",
		BaseURL:     a.base,
		Language:    "en",
		Types:       []models.ContentType{models.TypeAnime},
	}
}

func (a *AnimeHeaven) Search(ctx context.Context, query string, limit int) ([]RawSummary, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", a.base, url.QueryEscape(query))
	doc, err := a.fetch.Document(ctx, searchURL, nil)
	if err != nil {
		return nil, err
	}

	var results []RawSummary
	doc.Find("div.condd").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}
		title := strings.TrimSpace(link.Find("div.condd").First().Text())
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}
		results = append(results, RawSummary{
			ID:    idFromPath(href),
			Title: title,
			URL:   absoluteURL(a.base, href),
			Type:  models.TypeAnime,
		})
		return len(results) < limit
	})
	return results, nil
}

func (a *AnimeHeaven) Details(ctx context.Context, contentID string, _ models.ContentType) (*RawDetails, error) {
	detailURL := fmt.Sprintf("%s/anime/%s", a.base, contentID)
	doc, err := a.fetch.Document(ctx, detailURL, nil)
	if err != nil {
		return nil, err
	}

	info := doc.Find("div.infoboxc").First()
	if info.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
	}

	poster := ""
	if src, ok := info.Find("img").First().Attr("src"); ok {
		poster = absoluteURL(a.base, src)
	}

	details := &RawDetails{
		RawSummary: RawSummary{
			ID:     contentID,
			Title:  strings.TrimSpace(info.Find("h1").First().Text()),
			URL:    detailURL,
			Poster: poster,
			Type:   models.TypeAnime,
		},
		Description: strings.TrimSpace(doc.Find("div.infodes").First().Text()),
	}

	var episodes []RawEpisode
	doc.Find(`a[href*="/episode/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		num := 0
		if m := animeheavenEpPattern.FindStringSubmatch(text); m != nil {
			num, _ = strconv.Atoi(m[1])
		}
		episodes = append(episodes, RawEpisode{
			Number: strconv.Itoa(num),
			Title:  text,
			ID:     idFromPath(href),
		})
	})
	sort.SliceStable(episodes, func(i, j int) bool {
		ni, _ := strconv.Atoi(episodes[i].Number)
		nj, _ := strconv.Atoi(episodes[j].Number)
		return ni < nj
	})
	details.Episodes = episodes
	return details, nil
}

func (a *AnimeHeaven) EpisodeSources(ctx context.Context, _, episodeID string) ([]RawSource, error) {
	episodeURL := fmt.Sprintf("%s/episode/%s", a.base, episodeID)
	doc, err := a.fetch.Document(ctx, episodeURL, nil)
	if err != nil {
		return nil, err
	}

	var sources []RawSource
	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		sources = append(sources, RawSource{
			URL:     src,
			Referer: episodeURL,
		})
	})
	return sources, nil
}
