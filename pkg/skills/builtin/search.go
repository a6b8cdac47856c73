package builtin

import (
	"context"
	"fmt"

	"github.com/jllopis/skillkit/pkg/skills"
)

const (
	defaultMaxResults = 5
	maxSearchResults  = 10
)

// SearchResult is one simulated search hit.
type SearchResult struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

// WebSearch returns canned results for a query. It performs no network I/O.
func WebSearch() skills.Skill {
	return skills.MustNew(skills.Definition{
		Name:        "web_search",
		Description: "Simulates web search functionality (returns mock results)",
		Category:    "search",
		Tags:        []string{"web", "search", "information"},
		Parameters: []skills.ParameterSpec{
			skills.Param("query", skills.TypeString, "The search query"),
			skills.Optional("max_results", skills.TypeInteger, "Maximum number of results to return", defaultMaxResults),
		},
	}, search)
}

func search(_ context.Context, args skills.Args) (any, error) {
	query, err := args.String("query")
	if err != nil {
		return skills.Fail("Search error: %v", err), nil
	}
	limit := defaultMaxResults
	if _, ok := args["max_results"]; ok {
		limit, err = args.Int("max_results")
		if err != nil {
			return skills.Fail("Search error: %v", err), nil
		}
	}
	limit = min(limit, maxSearchResults)

	results := make([]SearchResult, 0, max(limit, 0))
	for i := 1; i <= limit; i++ {
		results = append(results, SearchResult{
			Title:   fmt.Sprintf("Result %d for '%s'", i, query),
			URL:     fmt.Sprintf("https://example.com/result%d", i),
			Snippet: fmt.Sprintf("This is a mock search result snippet for query: %s", query),
		})
	}

	return skills.Succeed(results, map[string]any{
		"query":        query,
		"result_count": len(results),
		"simulated":    true,
	}), nil
}
