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

// AniWatch (formerly Zoro) keeps episode and server data behind a JSON
// ajax API; only search and the detail page are plain HTML.
type AniWatch struct {
	base  string
	fetch *Fetcher
}

func NewAniWatch(baseURL string, fetch *Fetcher) *AniWatch {
	return &AniWatch{base: strings.TrimRight(baseURL, "/"), fetch: fetch}
}

func (a *AniWatch) Key() string { return "zoro" }

func (a *AniWatch) Info() SourceInfo {
	return SourceInfo{
		Key:         a.Key(),
		DisplayName: "AniWatch",
		BaseURL:     a.base,
		Language:    "en",
		Types:       []models.ContentType{models.TypeAnime},
	}
}

func (a *AniWatch) Search(ctx context.Context, query string, limit int) ([]RawSummary, error) {
	searchURL := fmt.Sprintf("%s/search?keyword=%s", a.base, url.QueryEscape(query))
	doc, err := a.fetch.Document(ctx, searchURL, nil)
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
		title := strings.TrimSpace(s.Find("h3.film-name").First().Text())
		if title == "" {
			title, _ = img.Attr("alt")
		}
		results = append(results, RawSummary{
			ID:     idFromPath(href),
			Title:  title,
			URL:    absoluteURL(a.base, href),
			Poster: imgSrc(img),
			Type:   models.TypeAnime,
		})
		return len(results) < limit
	})
	return results, nil
}

func (a *AniWatch) Details(ctx context.Context, contentID string, _ models.ContentType) (*RawDetails, error) {
	detailURL := fmt.Sprintf("%s/anime/%s", a.base, contentID)
	doc, err := a.fetch.Document(ctx, detailURL, nil)
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
			Type:   models.TypeAnime,
		},
		Description: strings.TrimSpace(doc.Find("div.film-description").First().Text()),
	}

	doc.Find(`a[href*="/genre/"]`).Each(func(_ int, s *goquery.Selection) {
		details.Genres = append(details.Genres, strings.TrimSpace(s.Text()))
	})

	infoText := doc.Find("div.anisc-info").First().Text()
	if m := yearPattern.FindString(infoText); m != "" {
		details.ReleaseYear = m
	}
	lower := strings.ToLower(infoText)
	switch {
	case strings.Contains(lower, "ongoing"):
		details.Status = "ongoing"
	case strings.Contains(lower, "completed"):
		details.Status = "completed"
	}

	episodes, err := a.episodeList(ctx, contentID)
	if err != nil {
		return nil, err
	}
	details.Episodes = episodes
	return details, nil
}

type aniwatchEpisodeList struct {
	Data struct {
		Episodes []struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
			ID     any    `json:"id"`
			Image  string `json:"image"`
		} `json:"episodes"`
	} `json:"data"`
}

func (a *AniWatch) episodeList(ctx context.Context, contentID string) ([]RawEpisode, error) {
	var payload aniwatchEpisodeList
	listURL := fmt.Sprintf("%s/ajax/v2/episode/list/%s", a.base, contentID)
	if err := a.fetch.JSON(ctx, listURL, nil, &payload); err != nil {
		return nil, err
	}

	episodes := make([]RawEpisode, 0, len(payload.Data.Episodes))
	for _, ep := range payload.Data.Episodes {
		episodes = append(episodes, RawEpisode{
			Number:    strconv.Itoa(ep.Number),
			Title:     ep.Title,
			ID:        jsonID(ep.ID),
			Thumbnail: ep.Image,
		})
	}
	return episodes, nil
}

type aniwatchServerList struct {
	Data struct {
		Servers []struct {
			ServerName string `json:"serverName"`
			ServerID   any    `json:"serverId"`
		} `json:"servers"`
	} `json:"data"`
}

type aniwatchSource struct {
	Data struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (a *AniWatch) EpisodeSources(ctx context.Context, _, episodeID string) ([]RawSource, error) {
	var servers aniwatchServerList
	serversURL := fmt.Sprintf("%s/ajax/v2/episode/servers?episodeId=%s", a.base, url.QueryEscape(episodeID))
	if err := a.fetch.JSON(ctx, serversURL, nil, &servers); err != nil {
		return nil, err
	}

	var sources []RawSource
	for _, server := range servers.Data.Servers {
		var src aniwatchSource
		sourceURL := fmt.Sprintf("%s/ajax/v2/episode/sources?serverId=%s", a.base, url.QueryEscape(jsonID(server.ServerID)))
		if err := a.fetch.JSON(ctx, sourceURL, nil, &src); err != nil {
			continue
		}
		if src.Data.Link == "" {
			continue
		}
		sources = append(sources, RawSource{
			URL:     src.Data.Link,
			Referer: a.base,
		})
	}
	return sources, nil
}

// jsonID renders an id field that sites serve as either a string or a
// number.
func jsonID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}
