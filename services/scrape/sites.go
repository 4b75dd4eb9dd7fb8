package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	_ Scraper        = (*Gogoanime)(nil)
	_ Scraper        = (*AniWatch)(nil)
	_ Scraper        = (*AnimeHeaven)(nil)
	_ Scraper        = (*AnimeSama)(nil)
	_ Scraper        = (*SFlix)(nil)
	_ Scraper        = (*FMovies)(nil)
	_ Scraper        = (*LookMovie)(nil)
	_ Scraper        = (*VidSrc)(nil)
	_ DownloadLinker = (*Gogoanime)(nil)
)

// absoluteURL resolves href against base. Relative paths and
// protocol-relative links both come back absolute.
func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// idFromPath returns the last path segment of an href, with any query
// string and ".html" suffix stripped. Site adapters use it as the
// content id.
func idFromPath(href string) string {
	href = strings.SplitN(href, "?", 2)[0]
	href = strings.TrimSuffix(href, "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		href = href[i+1:]
	}
	return strings.TrimSuffix(href, ".html")
}

// imgSrc prefers the lazy-load attribute over src, which on most of
// these sites holds a placeholder.
func imgSrc(sel *goquery.Selection) string {
	if v, ok := sel.Attr("data-src"); ok && v != "" {
		return v
	}
	v, _ := sel.Attr("src")
	return v
}
