package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unistream/models"
)

type stubScraper struct {
	key     string
	types   []models.ContentType
	results []RawSummary
	err     error
	delay   time.Duration

	details    *RawDetails
	detailsErr error
	sources    []RawSource
	sourcesErr error

	links []models.DownloadLink
}

func (s *stubScraper) Key() string { return s.key }

func (s *stubScraper) Info() SourceInfo {
	types := s.types
	if types == nil {
		types = []models.ContentType{models.TypeAnime}
	}
	return SourceInfo{Key: s.key, DisplayName: s.key, Language: "en", Types: types}
}

func (s *stubScraper) Search(ctx context.Context, query string, limit int) ([]RawSummary, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubScraper) Details(ctx context.Context, contentID string, contentType models.ContentType) (*RawDetails, error) {
	if s.detailsErr != nil {
		return nil, s.detailsErr
	}
	return s.details, nil
}

func (s *stubScraper) EpisodeSources(ctx context.Context, contentID, episodeID string) ([]RawSource, error) {
	if s.sourcesErr != nil {
		return nil, s.sourcesErr
	}
	return s.sources, nil
}

type stubDownloader struct {
	stubScraper
}

func (s *stubDownloader) DownloadLinks(ctx context.Context, contentID, episodeID string) ([]models.DownloadLink, error) {
	return s.links, nil
}

func summaries(prefix string, n int) []RawSummary {
	out := make([]RawSummary, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, RawSummary{
			ID:    fmt.Sprintf("%s-%d", prefix, i),
			Title: fmt.Sprintf("%s title %d", prefix, i),
			Type:  models.TypeAnime,
		})
	}
	return out
}

func TestSearchMergesResultsAndReportsFailure(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "alpha", results: summaries("alpha", 2)},
		&stubScraper{key: "beta", err: fmt.Errorf("%w: connection refused", ErrSourceUnavailable)},
		&stubScraper{key: "gamma", results: summaries("gamma", 1)},
	), time.Second)

	result, err := svc.Search(context.Background(), SearchOptions{Query: "naruto", Type: models.TypeAnime, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, result.Items, 3)
	assert.ElementsMatch(t, []string{"alpha", "gamma"}, result.SourcesUsed)
	assert.ElementsMatch(t, []string{"alpha", "beta", "gamma"}, result.Outcome.Attempted)
	assert.ElementsMatch(t, []string{"alpha", "gamma"}, result.Outcome.Succeeded)

	require.Len(t, result.Outcome.Failed, 1)
	assert.Equal(t, "beta", result.Outcome.Failed[0].Source)
	assert.Equal(t, "source unavailable", result.Outcome.Failed[0].Reason)

	// Every merged item carries its originating source key.
	for _, item := range result.Items {
		assert.NotEmpty(t, item.Source)
	}
}

func TestSearchAllSourcesFailReturnsEmptyReport(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "alpha", err: ErrSourceUnavailable},
		&stubScraper{key: "beta", err: ErrNotFound},
	), time.Second)

	result, err := svc.Search(context.Background(), SearchOptions{Query: "x", Type: models.TypeAnime})
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Empty(t, result.SourcesUsed)
	assert.Len(t, result.Outcome.Failed, 2)

	reasons := map[string]string{}
	for _, f := range result.Outcome.Failed {
		reasons[f.Source] = f.Reason
	}
	assert.Equal(t, "source unavailable", reasons["alpha"])
	assert.Equal(t, "not found", reasons["beta"])
}

func TestSearchSlowSourceMarkedTimeout(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "fast", results: summaries("fast", 2)},
		&stubScraper{key: "slow", delay: 5 * time.Second, results: summaries("slow", 2)},
	), 100*time.Millisecond)

	start := time.Now()
	result, err := svc.Search(context.Background(), SearchOptions{Query: "x", Type: models.TypeAnime})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second, "call must respect the aggregation deadline")

	assert.Len(t, result.Items, 2)
	assert.Equal(t, []string{"fast"}, result.SourcesUsed)
	require.Len(t, result.Outcome.Failed, 1)
	assert.Equal(t, "slow", result.Outcome.Failed[0].Source)
	assert.Equal(t, "timeout", result.Outcome.Failed[0].Reason)
}

func TestSearchLimitClamped(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "alpha", results: summaries("alpha", 60)},
	), time.Second)

	result, err := svc.Search(context.Background(), SearchOptions{Query: "x", Type: models.TypeAnime, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, result.Items, maxLimit)

	result, err = svc.Search(context.Background(), SearchOptions{Query: "x", Type: models.TypeAnime, Limit: -3})
	require.NoError(t, err)
	assert.Len(t, result.Items, defaultLimit)
}

func TestSearchTypeFilterSelectsSources(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "anime-only", types: []models.ContentType{models.TypeAnime}, results: summaries("a", 1)},
		&stubScraper{key: "movie-only", types: []models.ContentType{models.TypeMovie}, results: summaries("m", 1)},
	), time.Second)

	result, err := svc.Search(context.Background(), SearchOptions{Query: "x", Type: models.TypeAnime})
	require.NoError(t, err)
	assert.Equal(t, []string{"anime-only"}, result.Outcome.Attempted)
}

func TestSearchUnknownSource(t *testing.T) {
	svc := NewService(NewRegistry(&stubScraper{key: "alpha"}), time.Second)

	_, err := svc.Search(context.Background(), SearchOptions{Query: "x", Source: "nope"})
	assert.ErrorIs(t, err, ErrNoMatchingSource)
}

func TestSearchExplicitSourceTypeMismatch(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "anime-only", types: []models.ContentType{models.TypeAnime}},
	), time.Second)

	_, err := svc.Search(context.Background(), SearchOptions{Query: "x", Source: "anime-only", Type: models.TypeMovie})
	assert.ErrorIs(t, err, ErrNoMatchingSource)
}

func TestSearchSkipsMalformedItems(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "alpha", results: []RawSummary{
			{ID: "ok-1", Title: "Good", Type: models.TypeAnime},
			{ID: "", Title: "No id", Type: models.TypeAnime},
			{ID: "no-title", Title: "", Type: models.TypeAnime},
		}},
	), time.Second)

	result, err := svc.Search(context.Background(), SearchOptions{Query: "x", Type: models.TypeAnime})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "ok-1", result.Items[0].ID)
	// Malformed items are item-level skips, never a source failure.
	assert.Empty(t, result.Outcome.Failed)
	assert.Equal(t, []string{"alpha"}, result.Outcome.Succeeded)
}

func TestMultiSearchRanksByRelevance(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "alpha", results: []RawSummary{
			{ID: "1", Title: "Something Else Entirely", Type: models.TypeAnime},
			{ID: "2", Title: "Naruto", Type: models.TypeAnime},
		}},
		&stubScraper{key: "beta", types: []models.ContentType{models.TypeMovie}, results: []RawSummary{
			{ID: "3", Title: "Naruto Shippuden", Type: models.TypeMovie},
		}},
	), time.Second)

	result, err := svc.MultiSearch(context.Background(), "naruto", 10)
	require.NoError(t, err)

	require.NotEmpty(t, result.Items)
	assert.Equal(t, "Naruto", result.Items[0].Title)
	for _, item := range result.Items {
		assert.NotEqual(t, "Something Else Entirely", item.Title, "unrelated titles rank out")
	}
}

func TestDetailsPropagatesNotFound(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "alpha", detailsErr: fmt.Errorf("%w: xyz", ErrNotFound)},
	), time.Second)

	_, err := svc.Details(context.Background(), "alpha", "xyz", models.TypeAnime)
	assert.ErrorIs(t, err, ErrNotFound)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "alpha", srcErr.Source)
}

func TestDetailsUnknownSource(t *testing.T) {
	svc := NewService(NewRegistry(&stubScraper{key: "alpha"}), time.Second)

	_, err := svc.Details(context.Background(), "missing", "id", models.TypeMovie)
	assert.ErrorIs(t, err, ErrNoMatchingSource)
}

func TestEpisodeSourcesClassified(t *testing.T) {
	svc := NewService(NewRegistry(
		&stubScraper{key: "alpha", sources: []RawSource{
			{URL: "https://cdn.example/stream/master.m3u8"},
			{URL: "https://streamtape.com/e/abc123"},
		}},
	), time.Second)

	sources, err := svc.EpisodeSources(context.Background(), "alpha", "show", "ep-1")
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, models.KindHLS, sources[0].Kind)
	assert.True(t, sources[0].IsM3U8)
	assert.Equal(t, "streamtape", sources[1].Kind)
	assert.False(t, sources[1].IsM3U8)
}

func TestDownloadLinks(t *testing.T) {
	withLinks := &stubDownloader{stubScraper: stubScraper{key: "dl"}}
	withLinks.links = []models.DownloadLink{{URL: "https://example.com/file.mp4", Label: "1080p"}}

	svc := NewService(NewRegistry(withLinks, &stubScraper{key: "plain"}), time.Second)

	links, err := svc.DownloadLinks(context.Background(), "dl", "id", "")
	require.NoError(t, err)
	assert.Len(t, links, 1)

	// A source without download support answers with an empty list.
	links, err = svc.DownloadLinks(context.Background(), "plain", "id", "")
	require.NoError(t, err)
	assert.Empty(t, links)
	assert.NotNil(t, links)

	_, err = svc.DownloadLinks(context.Background(), "nosuch", "id", "")
	assert.ErrorIs(t, err, ErrNoMatchingSource)
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrTimeout, "timeout"},
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{ErrNotFound, "not found"},
		{fmt.Errorf("wrapped: %w", ErrSourceUnavailable), "source unavailable"},
		{errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, failureReason(tt.err))
	}
}
