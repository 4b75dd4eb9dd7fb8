package scrape

import (
	"errors"
	"reflect"
	"testing"

	"unistream/models"
)

func TestNormalizeSummary(t *testing.T) {
	raw := RawSummary{
		ID:     " attack-on-titan ",
		Title:  "  Attack   on Titan  ",
		URL:    "https://site.example/category/attack-on-titan",
		Type:   models.TypeAnime,
		Year:   "Released: 2013",
		Poster: "https://site.example/poster.jpg",
	}

	got, err := normalizeSummary(raw, "gogoanime")
	if err != nil {
		t.Fatalf("normalizeSummary: %v", err)
	}
	if got.ID != "attack-on-titan" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.Title != "Attack on Titan" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Year != "2013" {
		t.Errorf("Year = %q", got.Year)
	}
	if got.Source != "gogoanime" {
		t.Errorf("Source = %q", got.Source)
	}
}

func TestNormalizeSummaryMalformed(t *testing.T) {
	tests := []RawSummary{
		{ID: "", Title: "has title"},
		{ID: "has-id", Title: ""},
		{ID: "has-id", Title: "   "},
	}
	for _, raw := range tests {
		if _, err := normalizeSummary(raw, "src"); !errors.Is(err, ErrMalformedResult) {
			t.Errorf("normalizeSummary(%+v) err = %v, want ErrMalformedResult", raw, err)
		}
	}
}

func TestNormalizeSummaryInvalidTypeDefaultsToMovie(t *testing.T) {
	got, err := normalizeSummary(RawSummary{ID: "x", Title: "X", Type: "podcast"}, "src")
	if err != nil {
		t.Fatalf("normalizeSummary: %v", err)
	}
	if got.Type != models.TypeMovie {
		t.Errorf("Type = %q, want movie", got.Type)
	}
}

func TestNormalizeDetailsEpisodeCount(t *testing.T) {
	// A resolved episode list overrides the declared count.
	raw := &RawDetails{
		RawSummary:   RawSummary{ID: "x", Title: "X", Type: models.TypeAnime},
		EpisodeCount: "24",
		Episodes: []RawEpisode{
			{Number: "1", Title: "First", ID: "ep-1"},
			{Number: "2", Title: "", ID: "ep-2"},
			{Number: "", Title: "No number", ID: "ep-3"},
			{Number: "4", Title: "Dropped", ID: ""}, // no id, dropped
		},
	}

	got, err := normalizeDetails(raw, "src")
	if err != nil {
		t.Fatalf("normalizeDetails: %v", err)
	}
	if got.EpisodeCount != 3 {
		t.Errorf("EpisodeCount = %d, want 3", got.EpisodeCount)
	}
	if !got.EpisodeListComplete {
		t.Error("EpisodeListComplete = false, want true")
	}
	if got.Episodes[1].Title != "Episode 2" {
		t.Errorf("fallback title = %q, want %q", got.Episodes[1].Title, "Episode 2")
	}
	if got.Episodes[2].Number != 3 {
		t.Errorf("positional number = %d, want 3", got.Episodes[2].Number)
	}
}

func TestNormalizeDetailsDeclaredCountOnly(t *testing.T) {
	raw := &RawDetails{
		RawSummary:   RawSummary{ID: "x", Title: "X", Type: models.TypeAnime},
		EpisodeCount: "1000+",
	}
	got, err := normalizeDetails(raw, "src")
	if err != nil {
		t.Fatalf("normalizeDetails: %v", err)
	}
	if got.EpisodeCount != 1000 {
		t.Errorf("EpisodeCount = %d, want 1000", got.EpisodeCount)
	}
	if got.EpisodeListComplete {
		t.Error("EpisodeListComplete = true with no resolved list")
	}
}

func TestNormalizeGenres(t *testing.T) {
	got := normalizeGenres([]string{"Action", "action", " Drama ", "", "ACTION"})
	want := []string{"Action", "Drama"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeGenres = %v, want %v", got, want)
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.Status
	}{
		{"Ongoing", models.StatusOngoing},
		{"airing", models.StatusOngoing},
		{"Completed", models.StatusCompleted},
		{"ended", models.StatusCompleted},
		{"who knows", models.StatusUnknown},
		{"", models.StatusUnknown},
	}
	for _, tt := range tests {
		if got := normalizeStatus(tt.in); got != tt.want {
			t.Errorf("normalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12", 12},
		{" 12 ", 12},
		{"Episode 12", 12},
		{"S2", 2},
		{"none", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := coerceInt(tt.in); got != tt.want {
			t.Errorf("coerceInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQualityFromLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4K UHD", "4k"},
		{"2160p", "4k"},
		{"1440p", "1440p"},
		{"Full HD 1080p", "1080p"},
		{"FHD", "1080p"},
		{"720p HD", "720p"},
		{"HD", "720p"},
		{"480p", "480p"},
		{"360p", "360p"},
		{"CAM", models.QualityUnknown},
		{"", models.QualityUnknown},
	}
	for _, tt := range tests {
		if got := qualityFromLabel(tt.in); got != tt.want {
			t.Errorf("qualityFromLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
