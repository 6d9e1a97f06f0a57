package fetcher

import (
	"context"
	"fmt"
)

// PageFetcher drives one rendered search-results session for a category and
// returns the inline image payload strings found on the page, at most limit.
// Implementations must release the session on every exit path.
type PageFetcher interface {
	Name() string
	Fetch(ctx context.Context, category string, limit int) ([]string, error)
}

// Registry keeps a mapping from fetcher names to their implementations so
// the rendering technology stays swappable.
type Registry struct {
	fetchers map[string]PageFetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[string]PageFetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(f PageFetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]PageFetcher{}
	}
	r.fetchers[f.Name()] = f
}

// Resolve returns a fetcher by name or an error if it is absent.
func (r *Registry) Resolve(name string) (PageFetcher, error) {
	if f, ok := r.fetchers[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("fetcher %s is not registered", name)
}
