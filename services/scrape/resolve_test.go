package scrape

import (
	"testing"

	"unistream/models"
)

func TestClassifyHLS(t *testing.T) {
	tests := []struct {
		name string
		raw  RawSource
	}{
		{"m3u8 path", RawSource{URL: "https://cdn.example/master.m3u8"}},
		{"m3u8 with query", RawSource{URL: "https://cdn.example/master.m3u8?token=abc"}},
		{"declared hls", RawSource{URL: "https://cdn.example/stream", DeclaredType: "hls"}},
		{"declared mime type", RawSource{URL: "https://cdn.example/stream", DeclaredType: "application/x-mpegURL"}},
	}
	for _, tt := range tests {
		got := Classify(tt.raw)
		if got.Kind != models.KindHLS {
			t.Errorf("%s: Kind = %q, want hls", tt.name, got.Kind)
		}
		if !got.IsM3U8 {
			t.Errorf("%s: IsM3U8 = false, want true", tt.name)
		}
	}
}

func TestClassifyEmbedProviders(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://streamtape.com/e/abc", "streamtape"},
		{"https://dood.wf/e/xyz", "doodstream"},
		{"https://mixdrop.ag/e/123", "mixdrop"},
		{"https://upstream.to/embed-9", "upstream"},
		{"https://rabbitstream.vidcloud.icu/embed", "vidcloud"},
		{"https://www.mp4upload.com/embed-a.html", "mp4upload"},
		{"https://filemoon.sx/e/abc", "filemoon"},
		{"https://voe.sx/e/abc", "voe"},
	}
	for _, tt := range tests {
		got := Classify(RawSource{URL: tt.url})
		if got.Kind != tt.want {
			t.Errorf("Classify(%s).Kind = %q, want %q", tt.url, got.Kind, tt.want)
		}
		if got.IsM3U8 {
			t.Errorf("Classify(%s).IsM3U8 = true, want false", tt.url)
		}
	}
}

func TestClassifyDirectFallback(t *testing.T) {
	got := Classify(RawSource{URL: "https://files.example/video.mp4"})
	if got.Kind != models.KindDirect {
		t.Errorf("Kind = %q, want direct", got.Kind)
	}
}

func TestClassifyProtocolRelative(t *testing.T) {
	got := Classify(RawSource{URL: "//streamtape.com/e/abc"})
	if got.URL != "https://streamtape.com/e/abc" {
		t.Errorf("URL = %q, want https prefix", got.URL)
	}
	if got.Kind != "streamtape" {
		t.Errorf("Kind = %q, want streamtape", got.Kind)
	}
}

func TestClassifyQuality(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", models.QualityUnknown},
		{"1080p", "1080p"},
		{"Full HD", "1080p"},
		{"auto", "auto"}, // unrecognized labels pass through
	}
	for _, tt := range tests {
		got := Classify(RawSource{URL: "https://x.example/v.mp4", Quality: tt.in})
		if got.Quality != tt.want {
			t.Errorf("Quality(%q) = %q, want %q", tt.in, got.Quality, tt.want)
		}
	}
}

func TestClassifyPathFragmentIsNotEmbedHost(t *testing.T) {
	// Only the host decides the embed provider, not the path.
	got := Classify(RawSource{URL: "https://files.example/streamtape/video.mp4"})
	if got.Kind != models.KindDirect {
		t.Errorf("Kind = %q, want direct for path-only match", got.Kind)
	}
}
