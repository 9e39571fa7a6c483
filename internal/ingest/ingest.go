package ingest

import (
	"context"
	"fmt"
	"time"

	"NewsCurator/internal/domain"
)

// Options bounds an ingestion pass to an inclusive publish-date window.
// Either side may be nil, meaning unbounded.
type Options struct {
	From *time.Time
	To   *time.Time
}

// InWindow reports whether t falls inside the window, inclusive on both
// sides.
func (o Options) InWindow(t time.Time) bool {
	if o.From != nil && t.Before(*o.From) {
		return false
	}
	if o.To != nil && t.After(*o.To) {
		return false
	}
	return true
}

// Result is one adapter invocation's outcome. Err carries a feed-level
// failure as a string; it stays inside the result and never aborts sibling
// adapters.
type Result struct {
	Source     domain.Source
	FeedURL    string
	Raw        int
	Candidates []domain.Candidate
	Err        string
}

// SearchProvider executes one provider-specific news-search query.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) ([]domain.Candidate, error)
}

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]SearchProvider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]SearchProvider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(provider SearchProvider) {
	if r.providers == nil {
		r.providers = map[string]SearchProvider{}
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (SearchProvider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("search provider %s is not registered", name)
}
