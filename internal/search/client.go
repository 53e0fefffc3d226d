// Package search provides the web-search client used by trend
// collection, backed by the Google Custom Search API.
package search

import (
	"context"
	"log"
	"sync"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ymori/ideascout/internal/agenterr"
)

// DefaultResultCount is the number of organic results requested per query.
const DefaultResultCount = 5

// batchConcurrency bounds parallel queries inside BatchSearch.
const batchConcurrency = 5

// Result is one organic search result.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

// Response holds the organic results for one query.
type Response struct {
	Query   string   `json:"query"`
	Organic []Result `json:"organic"`
}

// Options configures a search call.
type Options struct {
	Num    int64  // result count; 0 means DefaultResultCount
	Locale string // interface language, e.g. "ja"; empty means no restriction
}

// Client is the web-search collaborator contract. An empty organic
// result set is surfaced as a DataQualityError, not an empty response.
type Client interface {
	Search(ctx context.Context, query string, opts Options) (*Response, error)
	// BatchSearch runs several queries with per-query isolated failure:
	// one failing query never fails the others. Failed queries are
	// absent from the returned map.
	BatchSearch(ctx context.Context, queries []string, opts Options) map[string]*Response
}

// GoogleClient implements Client on the Custom Search JSON API.
type GoogleClient struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleClient creates a search client for the given engine ID.
func NewGoogleClient(ctx context.Context, apiKey, cx string) (*GoogleClient, error) {
	if apiKey == "" || cx == "" {
		return nil, agenterr.NewAPIError("search API key or engine ID is not configured", "MISSING_API_KEY", 500, nil)
	}
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, agenterr.NewAPIError("failed to create search service: "+err.Error(), "SEARCH_CLIENT_ERROR", 500, nil)
	}
	return &GoogleClient{svc: svc, cx: cx}, nil
}

// Search runs one query and returns its organic results.
func (c *GoogleClient) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	num := opts.Num
	if num <= 0 {
		num = DefaultResultCount
	}

	call := c.svc.Cse.List().Context(ctx).Cx(c.cx).Q(query).Num(num)
	if opts.Locale != "" {
		call = call.Hl(opts.Locale)
	}

	resp, err := call.Do()
	if err != nil {
		statusCode := 0
		if gerr, ok := err.(*googleapi.Error); ok {
			statusCode = gerr.Code
		}
		return nil, agenterr.NewAPIError(
			"search request failed: "+err.Error(),
			"SEARCH_API_ERROR",
			statusCode,
			map[string]any{"query": query},
		)
	}

	if len(resp.Items) == 0 {
		return nil, &agenterr.DataQualityError{
			Message: "no search results found for query: " + query,
			Source:  "search",
			Details: map[string]any{"query": query},
		}
	}

	out := &Response{Query: query, Organic: make([]Result, 0, len(resp.Items))}
	for _, item := range resp.Items {
		out.Organic = append(out.Organic, Result{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
			Date:    extractSnippetDate(item.Snippet),
		})
	}
	return out, nil
}

// BatchSearch runs queries concurrently (bounded) and collects the
// successes. Failures are logged and skipped.
func (c *GoogleClient) BatchSearch(ctx context.Context, queries []string, opts Options) map[string]*Response {
	results := make(map[string]*Response, len(queries))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)

	for _, query := range queries {
		query := query
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			resp, err := c.Search(ctx, query, opts)
			if err != nil {
				log.Printf("search failed for query %q: %v", query, err)
				return
			}
			mu.Lock()
			results[query] = resp
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}
