// Package googlesearch enriches thin topics with web search results using
// the Google Custom Search JSON API.
package googlesearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure Enricher implements the interface.
var _ driven.Enricher = (*Enricher)(nil)

const (
	collaboratorName = "googlesearch"

	// defaultResultCount is how many search results feed the supplement.
	defaultResultCount = 3

	// maxResultCount is the API's per-request ceiling.
	maxResultCount = 10

	// defaultRequestsPerMinute keeps well under the free-tier daily quota
	// when a whole document's thin topics are enriched in one pass.
	defaultRequestsPerMinute = 30
)

// Config holds Google Custom Search configuration.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// SearchEngineID is the programmable search engine cx value (required).
	SearchEngineID string

	// ResultCount is how many results to fold into the supplement.
	// Defaults to 3, capped at 10.
	ResultCount int

	// RequestsPerMinute throttles outbound requests. Defaults to 30.
	RequestsPerMinute int

	// Endpoint overrides the API base URL. Used in tests.
	Endpoint string
}

// Enricher supplements thin topics with material from web search.
type Enricher struct {
	svc         *customsearch.Service
	engineID    string
	resultCount int
	limiter     *rate.Limiter
}

// NewEnricher creates a Google Custom Search enricher.
func NewEnricher(ctx context.Context, cfg Config) (*Enricher, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.SearchEngineID == "" {
		return nil, errors.New("search engine ID is required")
	}
	if cfg.ResultCount <= 0 {
		cfg.ResultCount = defaultResultCount
	}
	if cfg.ResultCount > maxResultCount {
		cfg.ResultCount = maxResultCount
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating search service: %w", err)
	}

	return &Enricher{
		svc:         svc,
		engineID:    cfg.SearchEngineID,
		resultCount: cfg.ResultCount,
		limiter:     rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
	}, nil
}

// Supplement searches for the topic and returns a digest of the top results.
// The summary narrows the query so ambiguous topic names resolve to the
// document's subject area.
func (e *Enricher) Supplement(ctx context.Context, topicName, topicSummary string) (string, error) {
	if strings.TrimSpace(topicName) == "" {
		return "", domain.NewCollaboratorError(collaboratorName, "supplement", false,
			errors.New("topic name is empty"))
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return "", domain.NewCollaboratorError(collaboratorName, "supplement", true,
			fmt.Errorf("rate limiter: %w", err))
	}

	resp, err := e.svc.Cse.List().
		Cx(e.engineID).
		Q(buildQuery(topicName, topicSummary)).
		Num(int64(e.resultCount)).
		Context(ctx).
		Do()
	if err != nil {
		return "", domain.NewCollaboratorError(collaboratorName, "supplement",
			retriableSearchError(err), fmt.Errorf("search request: %w", err))
	}

	digest := digestResults(resp.Items)
	if digest == "" {
		return "", domain.NewCollaboratorError(collaboratorName, "supplement", false,
			fmt.Errorf("no results for %q", topicName))
	}

	return digest, nil
}

// buildQuery combines the topic name with a few summary keywords to
// disambiguate short names. The whole query is kept short so the engine
// matches on the name rather than the summary prose.
func buildQuery(topicName, topicSummary string) string {
	query := topicName

	words := strings.Fields(topicSummary)
	if len(words) > 8 {
		words = words[:8]
	}
	if len(words) > 0 {
		query += " " + strings.Join(words, " ")
	}

	return query
}

// digestResults folds result snippets into a plain-text supplement.
// Results without a snippet contribute their title alone.
func digestResults(items []*customsearch.Result) string {
	var parts []string //nolint:prealloc // empty items are skipped

	for _, item := range items {
		if item == nil {
			continue
		}

		snippet := strings.TrimSpace(item.Snippet)
		title := strings.TrimSpace(item.Title)

		switch {
		case snippet != "" && title != "":
			parts = append(parts, title+": "+normaliseSnippet(snippet))
		case snippet != "":
			parts = append(parts, normaliseSnippet(snippet))
		case title != "":
			parts = append(parts, title)
		}
	}

	return strings.Join(parts, "\n\n")
}

// normaliseSnippet collapses the hard line breaks and ellipsis runs the
// search API embeds in snippets.
func normaliseSnippet(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\xc2\xa0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// retriableSearchError classifies an API error: quota and server-side
// failures are retriable, bad requests and auth failures are not.
func retriableSearchError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	// Transport-level failure.
	return true
}
