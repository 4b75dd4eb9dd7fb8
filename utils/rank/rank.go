// Package rank scores search results against the query so that
// multi-source result sets can be merged into one relevance-ordered list.
package rank

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"unistream/models"
)

// Score rates how well title answers query, from 0.0 (unrelated) to
// 1.0 (exact match after normalization). Containment ranks above fuzzy
// similarity so "Naruto Shippuden" still places for the query "naruto".
func Score(query, title string) float64 {
	q := normalize(query)
	t := normalize(title)

	if q == "" || t == "" {
		return 0.0
	}
	if q == t {
		return 1.0
	}

	if strings.Contains(t, q) {
		// Exact substring: score by how much of the title the query covers,
		// floored so containment always beats a fuzzy-only match.
		ratio := float64(len(q)) / float64(len(t))
		return 0.70 + ratio*0.25
	}

	distance := fuzzy.LevenshteinDistance(q, t)
	maxLen := len(q)
	if len(t) > maxLen {
		maxLen = len(t)
	}
	score := 1.0 - float64(distance)/float64(maxLen)
	if score < 0 {
		return 0.0
	}
	// Cap below the containment floor.
	if score > 0.70 {
		score = 0.70
	}
	return score
}

// Results orders items by relevance to query, best first. Items scoring
// zero are dropped. Ties keep their incoming order, which preserves the
// per-source completion order the aggregator produced.
func Results(query string, items []models.ContentSummary) []models.ContentSummary {
	type scored struct {
		item  models.ContentSummary
		score float64
	}

	kept := make([]scored, 0, len(items))
	for _, item := range items {
		s := Score(query, item.Title)
		if s <= 0 {
			continue
		}
		kept = append(kept, scored{item: item, score: s})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	ranked := make([]models.ContentSummary, len(kept))
	for i, s := range kept {
		ranked[i] = s.item
	}
	return ranked
}

// normalize lowercases and strips punctuation so "Demon Slayer: Kimetsu
// no Yaiba" and "demon slayer kimetsu no yaiba" compare equal.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '.' || r == '-' || r == '_' || r == ':':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
