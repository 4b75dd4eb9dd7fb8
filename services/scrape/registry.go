package scrape

import (
	"unistream/models"

	"github.com/samber/lo"
)

// Registry is the static source table built once at startup. It is read-only
// after construction: adding a source is a deploy-time change, not a runtime
// one, so no locking is needed.
type Registry struct {
	keys    []string
	entries map[string]Scraper
}

// NewRegistry builds a registry from the given scrapers, preserving their
// order. A nil scraper or a duplicate key is skipped.
func NewRegistry(scrapers ...Scraper) *Registry {
	r := &Registry{entries: make(map[string]Scraper, len(scrapers))}
	for _, sc := range scrapers {
		if sc == nil {
			continue
		}
		key := sc.Key()
		if _, dup := r.entries[key]; dup {
			continue
		}
		r.keys = append(r.keys, key)
		r.entries[key] = sc
	}
	return r
}

// Get returns the scraper registered under key.
func (r *Registry) Get(key string) (Scraper, bool) {
	sc, ok := r.entries[key]
	return sc, ok
}

// Keys returns all registered source keys in registration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// All returns every registered scraper in registration order.
func (r *Registry) All() []Scraper {
	return lo.Map(r.keys, func(key string, _ int) Scraper {
		return r.entries[key]
	})
}

// ForType returns the scrapers whose declared content types include t.
func (r *Registry) ForType(t models.ContentType) []Scraper {
	return lo.Filter(r.All(), func(sc Scraper, _ int) bool {
		return sc.Info().Serves(t)
	})
}

// Infos lists declared metadata for every source, optionally filtered by
// content type (TypeAll or empty returns everything).
func (r *Registry) Infos(t models.ContentType) []SourceInfo {
	infos := make([]SourceInfo, 0, len(r.keys))
	for _, sc := range r.All() {
		info := sc.Info()
		if t != "" && !info.Serves(t) {
			continue
		}
		infos = append(infos, info)
	}
	return infos
}
