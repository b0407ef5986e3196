// Package tavily is a minimal client for the Tavily search REST API. The
// include_answer mode returns a synthesized answer, so callers need no extra
// model call to summarize results.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL       = "https://api.tavily.com"
	maxResponseSizeBytes = 1 << 20
)

type Config struct {
	APIKey  string        `envconfig:"API_KEY" split_words:"true"`
	BaseURL string        `split_words:"true"`
	Timeout time.Duration `split_words:"true" default:"15s"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("tavily api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type searchRequest struct {
	Query         string `json:"query"`
	IncludeAnswer string `json:"include_answer,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
	SearchDepth   string `json:"search_depth,omitempty"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		URL string `json:"url"`
	} `json:"results"`
}

// SearchResult is the subset of a Tavily response the skills need.
type SearchResult struct {
	Answer    string
	SourceURL string
}

// Search runs a query and returns the synthesized answer plus the first
// source URL. Both fields may be empty when Tavily has nothing useful.
func (c *Client) Search(ctx context.Context, query string) (SearchResult, error) {
	body, err := json.Marshal(searchRequest{
		Query:         query,
		IncludeAnswer: "advanced",
		MaxResults:    3,
		SearchDepth:   "basic",
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return SearchResult{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return SearchResult{}, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return SearchResult{}, fmt.Errorf("tavily http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return SearchResult{}, fmt.Errorf("decode search response: %w", err)
	}

	result := SearchResult{Answer: strings.TrimSpace(parsed.Answer)}
	if len(parsed.Results) > 0 {
		result.SourceURL = parsed.Results[0].URL
	}
	return result, nil
}
