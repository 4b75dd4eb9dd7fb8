package scrape

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"unistream/models"
)

const gogoAjaxURL = "https://ajax.gogocdn.net/ajax"

var (
	gogoMovieIDPattern  = regexp.MustCompile(`movie_id\s*=\s*["']?(\d+)`)
	gogoReleasedPattern = regexp.MustCompile(`Released:\s*(\d{4})`)
	gogoStatusPattern   = regexp.MustCompile(`Status:\s*(\w+)`)
)

// Gogoanime scrapes anitaku.to. Episode lists come from the gogocdn
// ajax endpoint; the episode page itself only carries embed iframes.
type Gogoanime struct {
	base  string
	fetch *Fetcher
}

func NewGogoanime(baseURL string, fetch *Fetcher) *Gogoanime {
	return &Gogoanime{base: strings.TrimRight(baseURL, "/"), fetch: fetch}
}

func (g *Gogoanime) Key() string { return "gogoanime" }

func (g *Gogoanime) Info() SourceInfo {
	return SourceInfo{
		Key:         g.Key(),
		DisplayName: "Gogoanime",
		BaseURL:     g.base,
		Language:    "en",
		Types:       []models.ContentType{models.TypeAnime},
	}
}

func (g *Gogoanime) Search(ctx context.Context, query string, limit int) ([]RawSummary, error) {
	searchURL := fmt.Sprintf("%s/search.html?keyword=%s", g.base, url.QueryEscape(query))
	doc, err := g.fetch.Document(ctx, searchURL, nil)
	if err != nil {
		return nil, err
	}

	var results []RawSummary
	doc.Find("div.img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}
		img := link.Find("img").First()
		title, _ := img.Attr("alt")
		if title == "" {
			title, _ = link.Attr("title")
		}
		results = append(results, RawSummary{
			ID:     idFromPath(href),
			Title:  title,
			URL:    absoluteURL(g.base, href),
			Poster: imgSrc(img),
			Type:   models.TypeAnime,
		})
		return len(results) < limit
	})
	return results, nil
}

func (g *Gogoanime) Details(ctx context.Context, contentID string, _ models.ContentType) (*RawDetails, error) {
	detailURL := fmt.Sprintf("%s/category/%s", g.base, contentID)
	doc, err := g.fetch.Document(ctx, detailURL, nil)
	if err != nil {
		return nil, err
	}

	info := doc.Find("div.anime_info_body").First()
	if info.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
	}

	details := &RawDetails{
		RawSummary: RawSummary{
			ID:     contentID,
			Title:  strings.TrimSpace(info.Find("h1").First().Text()),
			URL:    detailURL,
			Poster: imgSrc(info.Find("img").First()),
			Type:   models.TypeAnime,
		},
		Description: strings.TrimSpace(doc.Find("div.description").First().Text()),
	}

	doc.Find(`a[href*="/genre/"]`).Each(func(_ int, s *goquery.Selection) {
		details.Genres = append(details.Genres, strings.TrimSpace(s.Text()))
	})

	infoText := info.Text()
	if m := gogoReleasedPattern.FindStringSubmatch(infoText); m != nil {
		details.ReleaseYear = m[1]
	}
	if m := gogoStatusPattern.FindStringSubmatch(infoText); m != nil {
		details.Status = strings.ToLower(m[1])
	}

	episodes, err := g.episodeList(ctx, doc)
	if err != nil {
		return nil, err
	}
	details.Episodes = episodes
	return details, nil
}

// episodeList pulls the episode list from the gogocdn ajax endpoint.
// The numeric series id lives in a hidden input on the detail page,
// with an inline-script fallback on some mirrors.
func (g *Gogoanime) episodeList(ctx context.Context, doc *goquery.Document) ([]RawEpisode, error) {
	movieID, _ := doc.Find("input#movie_id").First().Attr("value")
	if movieID == "" {
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if m := gogoMovieIDPattern.FindStringSubmatch(s.Text()); m != nil {
				movieID = m[1]
				return false
			}
			return true
		})
	}
	if movieID == "" {
		return nil, nil
	}

	listURL := fmt.Sprintf("%s/load-list-episode?ep_start=0&ep_end=9999&id=%s", gogoAjaxURL, movieID)
	epDoc, err := g.fetch.Document(ctx, listURL, nil)
	if err != nil {
		return nil, err
	}

	// The ajax endpoint lists newest first.
	var hrefs, titles []string
	epDoc.Find("a.active").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		hrefs = append(hrefs, strings.TrimSpace(href))
		titles = append(titles, strings.TrimSpace(s.Text()))
	})

	episodes := make([]RawEpisode, 0, len(hrefs))
	for i := len(hrefs) - 1; i >= 0; i-- {
		n := len(hrefs) - i
		id := idFromPath(hrefs[i])
		if id == "" {
			id = fmt.Sprintf("ep%d", n)
		}
		episodes = append(episodes, RawEpisode{
			Number: fmt.Sprintf("%d", n),
			Title:  titles[i],
			ID:     id,
		})
	}
	return episodes, nil
}

func (g *Gogoanime) EpisodeSources(ctx context.Context, _, episodeID string) ([]RawSource, error) {
	episodeURL := fmt.Sprintf("%s/%s", g.base, episodeID)
	doc, err := g.fetch.Document(ctx, episodeURL, nil)
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

// DownloadLinks scrapes the download box on the episode page.
func (g *Gogoanime) DownloadLinks(ctx context.Context, _, episodeID string) ([]models.DownloadLink, error) {
	episodeURL := fmt.Sprintf("%s/%s", g.base, episodeID)
	doc, err := g.fetch.Document(ctx, episodeURL, nil)
	if err != nil {
		return nil, err
	}

	var links []models.DownloadLink
	doc.Find("div.favorites_book a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(strings.ToLower(href), "download") {
			return
		}
		label := strings.TrimSpace(s.Text())
		links = append(links, models.DownloadLink{
			URL:     href,
			Label:   label,
			Quality: qualityFromLabel(label),
		})
	})
	return links, nil
}
