package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"unistream/models"
)

// The normalizer is the single place raw site output becomes canonical
// records: absent optionals get defaults, loose types are coerced, and
// structurally invalid records are rejected with ErrMalformedResult.

func normalizeSummary(raw RawSummary, key string) (models.ContentSummary, error) {
	title := cleanText(raw.Title)
	id := strings.TrimSpace(raw.ID)
	if id == "" || title == "" {
		return models.ContentSummary{}, fmt.Errorf("%w: summary missing id or title", ErrMalformedResult)
	}
	ct := raw.Type
	if !ct.Valid() || ct == models.TypeAll {
		ct = models.TypeMovie
	}
	return models.ContentSummary{
		ID:     id,
		Title:  title,
		URL:    strings.TrimSpace(raw.URL),
		Poster: strings.TrimSpace(raw.Poster),
		Type:   ct,
		Year:   extractYear(raw.Year),
		Source: key,
	}, nil
}

func normalizeDetails(raw *RawDetails, key string) (*models.ContentDetails, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil details", ErrMalformedResult)
	}
	summary, err := normalizeSummary(raw.RawSummary, key)
	if err != nil {
		return nil, err
	}

	episodes := normalizeEpisodes(raw.Episodes)
	seasons := make([]models.Season, 0, len(raw.Seasons))
	for _, rs := range raw.Seasons {
		eps := normalizeEpisodes(rs.Episodes)
		seasons = append(seasons, models.Season{
			Number:       coerceInt(rs.Number),
			Title:        cleanText(rs.Title),
			ID:           strings.TrimSpace(rs.ID),
			EpisodeCount: len(eps),
			Episodes:     eps,
		})
	}

	sources := make([]models.VideoSource, 0, len(raw.Sources))
	for _, rs := range raw.Sources {
		if strings.TrimSpace(rs.URL) == "" {
			continue
		}
		sources = append(sources, Classify(rs))
	}

	// The declared count wins only when the episode list is unresolved;
	// a resolved list is the authority on its own length.
	count := coerceInt(raw.EpisodeCount)
	if len(episodes) > 0 {
		count = len(episodes)
	}

	details := &models.ContentDetails{
		ContentSummary:      summary,
		Description:         cleanText(raw.Description),
		ReleaseYear:         extractYear(raw.ReleaseYear),
		Genres:              normalizeGenres(raw.Genres),
		Status:              normalizeStatus(raw.Status),
		Duration:            cleanText(raw.Duration),
		Rating:              strings.TrimSpace(raw.Rating),
		EpisodeCount:        count,
		Episodes:            episodes,
		EpisodeListComplete: len(episodes) > 0 && count == len(episodes),
		Seasons:             seasons,
		Sources:             sources,
	}
	if details.ReleaseYear == "" {
		details.ReleaseYear = summary.Year
	}
	return details, nil
}

// normalizeEpisodes coerces raw episode rows, dropping rows without an
// identifier. Rows without a parsable number keep their list position so a
// source that only labels episodes by name still yields a usable ordering.
func normalizeEpisodes(raws []RawEpisode) []models.EpisodeRef {
	episodes := make([]models.EpisodeRef, 0, len(raws))
	for i, re := range raws {
		id := strings.TrimSpace(re.ID)
		if id == "" {
			continue
		}
		number := coerceInt(re.Number)
		if number <= 0 {
			number = i + 1
		}
		title := cleanText(re.Title)
		if title == "" {
			title = fmt.Sprintf("Episode %d", number)
		}
		episodes = append(episodes, models.EpisodeRef{
			Number:    number,
			Title:     title,
			ID:        id,
			Thumbnail: strings.TrimSpace(re.Thumbnail),
		})
	}
	return episodes
}

func normalizeStatus(s string) models.Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ongoing", "airing", "returning series":
		return models.StatusOngoing
	case "completed", "finished", "ended":
		return models.StatusCompleted
	default:
		return models.StatusUnknown
	}
}

func normalizeGenres(genres []string) []string {
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = cleanText(g)
		if g == "" {
			continue
		}
		lowered := strings.ToLower(g)
		if _, dup := seen[lowered]; dup {
			continue
		}
		seen[lowered] = struct{}{}
		out = append(out, g)
	}
	return out
}

var (
	yearPattern     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	digitPattern    = regexp.MustCompile(`\d+`)
	durationPattern = regexp.MustCompile(`(?i)(\d+)\s*min`)
)

// extractYear pulls a four-digit year out of free text such as
// "Released: 2013" or an ISO date.
func extractYear(text string) string {
	return yearPattern.FindString(text)
}

// coerceInt parses a loosely formatted integer ("12", " 12 ", "Episode 12").
func coerceInt(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if m := digitPattern.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	return 0
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// cleanText collapses runs of whitespace and trims title decoration.
func cleanText(s string) string {
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.Trim(s, " -:|•")
}

// qualityFromLabel infers a resolution label from free text, defaulting to
// QualityUnknown. Mirrors the labels sites actually print on their buttons.
func qualityFromLabel(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "4k"), strings.Contains(lower, "2160p"):
		return "4k"
	case strings.Contains(lower, "1440p"), strings.Contains(lower, "2k"):
		return "1440p"
	case strings.Contains(lower, "1080p"), strings.Contains(lower, "full hd"), strings.Contains(lower, "fhd"):
		return "1080p"
	case strings.Contains(lower, "720p"), strings.Contains(lower, "hd"):
		return "720p"
	case strings.Contains(lower, "480p"):
		return "480p"
	case strings.Contains(lower, "360p"):
		return "360p"
	default:
		return models.QualityUnknown
	}
}
