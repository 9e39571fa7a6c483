package newsapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ingest"
	"NewsCurator/internal/keyword"
)

// DefaultQueryBudget caps the outbound query string length.
const DefaultQueryBudget = 490

// removedTitle is a provider convention marking retracted content.
const removedTitle = "[Removed]"

// Adapter runs one budget-constrained search against a configured provider
// and locally re-validates everything the provider returns. Provider recall
// is broader than precise, so every candidate is re-checked against the
// full keyword list and the requested date window.
type Adapter struct {
	provider ingest.SearchProvider
	budget   int
	logger   *slog.Logger
}

// NewAdapter wires a provider; a nil provider means the adapter is disabled
// (no API key configured), which is a valid idle state.
func NewAdapter(provider ingest.SearchProvider, budget int, logger *slog.Logger) *Adapter {
	if budget <= 0 {
		budget = DefaultQueryBudget
	}
	return &Adapter{provider: provider, budget: budget, logger: logger}
}

// Enabled reports whether a provider is configured.
func (a *Adapter) Enabled() bool {
	return a != nil && a.provider != nil
}

// Fetch executes the search and filters the response. A disabled adapter
// returns an empty result with no error.
func (a *Adapter) Fetch(ctx context.Context, opts ingest.Options, keywords []string) ingest.Result {
	result := ingest.Result{Source: domain.SourceNewsAPI}
	if !a.Enabled() {
		return result
	}

	query, included := BuildQuery(keywords, a.budget)
	if included < len(keywords) {
		a.log(slog.LevelInfo, "keyword budget reached, query truncated",
			"included", included, "total", len(keywords))
	}
	if query == "" {
		return result
	}

	candidates, err := a.provider.Search(ctx, query, opts)
	if err != nil {
		result.Err = fmt.Sprintf("search provider %s: %v", a.provider.Name(), err)
		a.log(slog.LevelWarn, "search failed", "provider", a.provider.Name(), "error", err)
		return result
	}

	result.Raw = len(candidates)
	for _, candidate := range candidates {
		if candidate.Title == "" || candidate.URL == "" || candidate.Title == removedTitle {
			continue
		}
		// Re-validate against the full keyword list, not just the subset
		// that fit in the query, and against the window even though the
		// query asked for it.
		if !keyword.HasMatch(candidate.Title+" "+candidate.Snippet, keywords) {
			continue
		}
		if !opts.InWindow(candidate.PublishedAt) {
			continue
		}
		result.Candidates = append(result.Candidates, candidate)
	}

	return result
}

// BuildQuery quotes each keyword as an exact phrase and joins with " OR ",
// greedily including keywords in input order until the next addition would
// exceed the budget. Returns the query and how many keywords made it in.
func BuildQuery(keywords []string, budget int) (string, int) {
	var parts []string
	length := 0
	included := 0

	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		phrase := `"` + kw + `"`

		next := length + len(phrase)
		if len(parts) > 0 {
			next += len(" OR ")
		}
		if next > budget {
			break
		}

		parts = append(parts, phrase)
		length = next
		included++
	}

	return strings.Join(parts, " OR "), included
}

func (a *Adapter) log(level slog.Level, msg string, args ...any) {
	if a.logger != nil {
		a.logger.Log(context.Background(), level, msg, args...)
	}
}
