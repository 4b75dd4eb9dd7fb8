package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"unistream/models"
)

const gogoSearchPage = `
<html><body>
<ul class="items">
  <li>
    <div class="img">
      <a href="/category/attack-on-titan" title="Attack on Titan">
        <img src="https://img.example/aot.jpg" alt="Attack on Titan">
      </a>
    </div>
  </li>
  <li>
    <div class="img">
      <a href="/category/attack-on-titan-season-2">
        <img src="https://img.example/aot2.jpg" alt="Attack on Titan Season 2">
      </a>
    </div>
  </li>
</ul>
</body></html>`

const gogoDetailPage = `
<html><body>
<div class="anime_info_body">
  <img src="https://img.example/aot.jpg">
  <h1>Attack on Titan</h1>
  <p>Type: TV Series</p>
  <p>Released: 2013</p>
  <p>Status: Completed</p>
</div>
<div class="description">Humanity fights for survival.</div>
<a href="/genre/action">Action</a>
<a href="/genre/drama">Drama</a>
</body></html>`

const gogoEpisodePage = `
<html><body>
<div class="play-video">
  <iframe src="//streamtape.com/e/abc123"></iframe>
  <iframe src="https://cdn.example/embed/xyz"></iframe>
</div>
<div class="favorites_book">
  <a href="https://files.example/download/aot-ep1-1080p">Download 1080p</a>
  <a href="/category/attack-on-titan">Back</a>
</div>
</body></html>`

func gogoTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search.html", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") == "" {
			http.Error(w, "missing keyword", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, gogoSearchPage)
	})
	mux.HandleFunc("/category/attack-on-titan", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gogoDetailPage)
	})
	mux.HandleFunc("/attack-on-titan-episode-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gogoEpisodePage)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGogoanimeSearch(t *testing.T) {
	srv := gogoTestServer(t)
	g := NewGogoanime(srv.URL, NewFetcher(2*time.Second, 1, 0))

	results, err := g.Search(context.Background(), "attack on titan", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.ID != "attack-on-titan" {
		t.Errorf("ID = %q", first.ID)
	}
	if first.Title != "Attack on Titan" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Type != models.TypeAnime {
		t.Errorf("Type = %q", first.Type)
	}
	if first.Poster != "https://img.example/aot.jpg" {
		t.Errorf("Poster = %q", first.Poster)
	}
	if first.URL != srv.URL+"/category/attack-on-titan" {
		t.Errorf("URL = %q", first.URL)
	}
}

func TestGogoanimeSearchHonorsLimit(t *testing.T) {
	srv := gogoTestServer(t)
	g := NewGogoanime(srv.URL, NewFetcher(2*time.Second, 1, 0))

	results, err := g.Search(context.Background(), "attack on titan", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

func TestGogoanimeDetails(t *testing.T) {
	srv := gogoTestServer(t)
	g := NewGogoanime(srv.URL, NewFetcher(2*time.Second, 1, 0))

	details, err := g.Details(context.Background(), "attack-on-titan", models.TypeAnime)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if details.Title != "Attack on Titan" {
		t.Errorf("Title = %q", details.Title)
	}
	if details.Description != "Humanity fights for survival." {
		t.Errorf("Description = %q", details.Description)
	}
	if details.ReleaseYear != "2013" {
		t.Errorf("ReleaseYear = %q", details.ReleaseYear)
	}
	if details.Status != "completed" {
		t.Errorf("Status = %q", details.Status)
	}
	if len(details.Genres) != 2 {
		t.Errorf("Genres = %v", details.Genres)
	}
	// No movie_id input on the page, so no episode list was resolved.
	if len(details.Episodes) != 0 {
		t.Errorf("Episodes = %d, want 0", len(details.Episodes))
	}
}

func TestGogoanimeEpisodeSources(t *testing.T) {
	srv := gogoTestServer(t)
	g := NewGogoanime(srv.URL, NewFetcher(2*time.Second, 1, 0))

	sources, err := g.EpisodeSources(context.Background(), "attack-on-titan", "attack-on-titan-episode-1")
	if err != nil {
		t.Fatalf("EpisodeSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if sources[0].URL != "//streamtape.com/e/abc123" {
		t.Errorf("URL = %q", sources[0].URL)
	}
	if sources[0].Referer == "" {
		t.Error("Referer empty, want episode page URL")
	}
}

func TestGogoanimeDownloadLinks(t *testing.T) {
	srv := gogoTestServer(t)
	g := NewGogoanime(srv.URL, NewFetcher(2*time.Second, 1, 0))

	links, err := g.DownloadLinks(context.Background(), "attack-on-titan", "attack-on-titan-episode-1")
	if err != nil {
		t.Fatalf("DownloadLinks: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1 (non-download anchors skipped)", len(links))
	}
	if links[0].Quality != "1080p" {
		t.Errorf("Quality = %q", links[0].Quality)
	}
}

func TestFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(2*time.Second, 1, 0)
	_, err := f.Document(context.Background(), srv.URL+"/missing", nil)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestFetcherAcceptsNon200Success(t *testing.T) {
	// Some ajax endpoints answer 2xx codes other than 200.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := NewFetcher(2*time.Second, 1, 0)
	var out struct {
		OK bool `json:"ok"`
	}
	if err := f.JSON(context.Background(), srv.URL+"/ajax", nil, &out); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !out.OK {
		t.Error("body not decoded")
	}
}
