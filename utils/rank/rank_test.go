package rank

import (
	"testing"

	"unistream/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		query string
		title string
		check func(float64) bool
		desc  string
	}{
		{"naruto", "Naruto", func(s float64) bool { return s == 1.0 }, "exact match scores 1.0"},
		{"Demon Slayer: Kimetsu no Yaiba", "demon slayer kimetsu no yaiba", func(s float64) bool { return s == 1.0 }, "punctuation ignored"},
		{"naruto", "Naruto Shippuden", func(s float64) bool { return s >= 0.70 }, "containment beats fuzzy floor"},
		{"naruto", "Cooking with Grandma", func(s float64) bool { return s < 0.5 }, "unrelated title scores low"},
		{"", "Anything", func(s float64) bool { return s == 0.0 }, "empty query scores zero"},
	}
	for _, tt := range tests {
		if got := Score(tt.query, tt.title); !tt.check(got) {
			t.Errorf("Score(%q, %q) = %v: %s", tt.query, tt.title, got, tt.desc)
		}
	}
}

func TestScoreContainmentOutranksFuzzy(t *testing.T) {
	contained := Score("naruto", "Naruto Shippuden")
	fuzzy := Score("naruto", "Narpto") // one substitution, not a substring
	if contained <= fuzzy {
		t.Errorf("containment %v should outrank fuzzy %v", contained, fuzzy)
	}
}

func TestResultsOrderAndFilter(t *testing.T) {
	items := []models.ContentSummary{
		{ID: "1", Title: "Totally Unrelated Documentary"},
		{ID: "2", Title: "One Piece Film Red"},
		{ID: "3", Title: "One Piece"},
	}

	ranked := Results("one piece", items)
	if len(ranked) != 2 {
		t.Fatalf("got %d items, want 2 (unrelated filtered)", len(ranked))
	}
	if ranked[0].ID != "3" {
		t.Errorf("best match = %s, want the exact title first", ranked[0].ID)
	}
}

func TestResultsStableForTies(t *testing.T) {
	items := []models.ContentSummary{
		{ID: "a", Title: "Bleach"},
		{ID: "b", Title: "Bleach"},
	}
	ranked := Results("bleach", items)
	if len(ranked) != 2 || ranked[0].ID != "a" || ranked[1].ID != "b" {
		t.Errorf("tie order not preserved: %+v", ranked)
	}
}
