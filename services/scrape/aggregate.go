package scrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"unistream/models"
	"unistream/utils/rank"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// Service fans queries out across the registered scrapers and merges
// whatever comes back before the deadline. A slow or broken site never
// fails the whole call; it just shows up in the outcome report.
type Service struct {
	registry *Registry
	timeout  time.Duration
}

func NewService(registry *Registry, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{registry: registry, timeout: timeout}
}

// SearchOptions narrows a search. Source pins the search to one scraper;
// otherwise Type selects every scraper serving that content type.
type SearchOptions struct {
	Query  string
	Type   models.ContentType
	Limit  int
	Source string
}

// SearchResult is the merged fan-out result. SourcesUsed lists only the
// sources that contributed at least one item.
type SearchResult struct {
	Items       []models.ContentSummary
	SourcesUsed []string
	Outcome     models.SourceOutcome
}

type fanoutResult struct {
	key   string
	items []models.ContentSummary
	err   error
}

// Search queries the matching scrapers concurrently and merges their
// results in completion order. It returns ErrNoMatchingSource when no
// registered scraper matches the options. When every source fails it
// still returns normally, with an empty item list and a full failure
// report.
func (s *Service) Search(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	limit := clampLimit(opts.Limit)

	candidates, err := s.candidates(opts)
	if err != nil {
		return nil, err
	}

	rid := shortID()
	log.Printf("[scrape] %s search %q type=%s limit=%d sources=%d", rid, opts.Query, opts.Type, limit, len(candidates))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resCh := make(chan fanoutResult, len(candidates))
	var wg conc.WaitGroup
	for _, sc := range candidates {
		sc := sc
		wg.Go(func() {
			raw, err := sc.Search(ctx, opts.Query, limit)
			if err != nil {
				resCh <- fanoutResult{key: sc.Key(), err: sourceErr(sc.Key(), err)}
				return
			}
			items := make([]models.ContentSummary, 0, len(raw))
			for _, r := range raw {
				item, err := normalizeSummary(r, sc.Key())
				if err != nil {
					log.Printf("[scrape] %s dropping malformed result from %s: %v", rid, sc.Key(), err)
					continue
				}
				items = append(items, item)
			}
			resCh <- fanoutResult{key: sc.Key(), items: items}
		})
	}
	go func() {
		wg.Wait()
		close(resCh)
	}()

	result := s.collect(ctx, rid, candidates, resCh, limit)
	log.Printf("[scrape] %s search done: %d items, used=%v, failed=%d",
		rid, len(result.Items), result.SourcesUsed, len(result.Outcome.Failed))
	return result, nil
}

// collect drains the fan-out channel until every candidate has answered
// or the deadline hits. Sources still pending at the deadline are marked
// failed with a timeout reason; anything they deliver later is discarded.
func (s *Service) collect(ctx context.Context, rid string, candidates []Scraper, resCh <-chan fanoutResult, limit int) *SearchResult {
	pending := make(map[string]bool, len(candidates))
	outcome := models.SourceOutcome{Attempted: make([]string, 0, len(candidates))}
	for _, sc := range candidates {
		pending[sc.Key()] = true
		outcome.Attempted = append(outcome.Attempted, sc.Key())
	}

	result := &SearchResult{Items: []models.ContentSummary{}, SourcesUsed: []string{}}

	for len(pending) > 0 {
		select {
		case r, ok := <-resCh:
			if !ok {
				pending = nil
				break
			}
			delete(pending, r.key)
			if r.err != nil {
				reason := failureReason(r.err)
				log.Printf("[scrape] %s source %s failed: %s", rid, r.key, reason)
				outcome.Failed = append(outcome.Failed, models.SourceFailure{Source: r.key, Reason: reason})
				continue
			}
			if len(r.items) > 0 {
				result.Items = append(result.Items, r.items...)
				result.SourcesUsed = append(result.SourcesUsed, r.key)
			}
			outcome.Succeeded = append(outcome.Succeeded, r.key)
		case <-ctx.Done():
			for key := range pending {
				log.Printf("[scrape] %s source %s failed: timeout", rid, key)
				outcome.Failed = append(outcome.Failed, models.SourceFailure{Source: key, Reason: "timeout"})
			}
			pending = nil
		}
	}

	if len(result.Items) > limit {
		result.Items = result.Items[:limit]
	}
	result.Outcome = outcome
	return result
}

// MultiSearch searches every registered source and ranks the combined
// list by relevance to the query. The cap is three times the per-source
// limit so a strong match on a minor site is not crowded out.
func (s *Service) MultiSearch(ctx context.Context, query string, limit int) (*SearchResult, error) {
	limit = clampLimit(limit)

	result, err := s.Search(ctx, SearchOptions{Query: query, Type: models.TypeAll, Limit: limit})
	if err != nil {
		return nil, err
	}

	result.Items = rank.Results(query, result.Items)
	if max := limit * 3; len(result.Items) > max {
		result.Items = result.Items[:max]
	}
	return result, nil
}

// Details fetches full metadata for one item from a single source.
func (s *Service) Details(ctx context.Context, source, contentID string, contentType models.ContentType) (*models.ContentDetails, error) {
	sc, ok := s.registry.Get(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingSource, source)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := sc.Details(ctx, contentID, contentType)
	if err != nil {
		return nil, sourceErr(source, err)
	}
	details, err := normalizeDetails(raw, source)
	if err != nil {
		return nil, sourceErr(source, err)
	}
	return details, nil
}

// EpisodeSources resolves the playable sources for one episode from a
// single source. For movies the adapter treats the content id itself as
// the episode.
func (s *Service) EpisodeSources(ctx context.Context, source, contentID, episodeID string) ([]models.VideoSource, error) {
	sc, ok := s.registry.Get(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingSource, source)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := sc.EpisodeSources(ctx, contentID, episodeID)
	if err != nil {
		return nil, sourceErr(source, err)
	}
	sources := make([]models.VideoSource, 0, len(raw))
	for _, r := range raw {
		sources = append(sources, Classify(r))
	}
	return sources, nil
}

// DownloadLinks fetches direct download links from a source. Sources
// without download support return an empty list, not an error.
func (s *Service) DownloadLinks(ctx context.Context, source, contentID, episodeID string) ([]models.DownloadLink, error) {
	sc, ok := s.registry.Get(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingSource, source)
	}
	dl, ok := sc.(DownloadLinker)
	if !ok {
		return []models.DownloadLink{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	links, err := dl.DownloadLinks(ctx, contentID, episodeID)
	if err != nil {
		return nil, sourceErr(source, err)
	}
	return links, nil
}

// Sources lists the registered sources, optionally filtered by the
// content type they serve.
func (s *Service) Sources(contentType models.ContentType) []SourceInfo {
	return s.registry.Infos(contentType)
}

func (s *Service) candidates(opts SearchOptions) ([]Scraper, error) {
	if opts.Source != "" {
		sc, ok := s.registry.Get(opts.Source)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoMatchingSource, opts.Source)
		}
		if opts.Type != "" && opts.Type != models.TypeAll && !sc.Info().Serves(opts.Type) {
			return nil, fmt.Errorf("%w: %s does not serve %s", ErrNoMatchingSource, opts.Source, opts.Type)
		}
		return []Scraper{sc}, nil
	}

	if opts.Type == "" {
		opts.Type = models.TypeAll
	}
	candidates := s.registry.ForType(opts.Type)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no source serves %s", ErrNoMatchingSource, opts.Type)
	}
	return candidates, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	}
	return limit
}

func shortID() string {
	return uuid.NewString()[:8]
}
