// Package github is the GraphQL transport for statscard. It issues the
// handful of queries the generator needs and counts calls per query
// name so a run can report its API usage.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// DefaultEndpoint is the GitHub GraphQL API endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// ErrRateLimited signals GitHub's anti-abuse limit (HTTP 403). Walks
// treat it like any other failure - fatal, no retry - but the message
// the user sees names the cause.
var ErrRateLimited = errors.New("rate limited by GitHub's anti-abuse limit")

// QueryError is a non-200, non-403 GraphQL response.
type QueryError struct {
	Query      string
	StatusCode int
	Body       string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q failed with status %d: %s", e.Query, e.StatusCode, e.Body)
}

// Client talks to the GitHub GraphQL API. The zero value is not usable;
// use NewClient.
type Client struct {
	// Endpoint can be pointed at a test server.
	Endpoint string

	// HTTPClient defaults to a 30s-timeout client.
	HTTPClient *http.Client

	token string

	mu          sync.Mutex
	queryCounts map[string]int
}

// NewClient returns a client authenticating with the given token.
func NewClient(token string) *Client {
	return &Client{
		Endpoint:    DefaultEndpoint,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		token:       token,
		queryCounts: make(map[string]int),
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// execute posts one GraphQL query and decodes its data into out.
// name identifies the query in counters and error messages.
func (c *Client) execute(ctx context.Context, name, query string, variables map[string]any, out any) error {
	c.countQuery(name)

	if variables == nil {
		variables = map[string]any{}
	}
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encoding query %q: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request for query %q: %w", name, err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("query %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("query %q: %w", name, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &QueryError{Query: name, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}

	var envelope graphQLEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response for query %q: %w", name, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		if len(envelope.Errors) > 0 {
			return fmt.Errorf("query %q: %s", name, envelope.Errors[0].Message)
		}
		return fmt.Errorf("query %q: empty response", name)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decoding data for query %q: %w", name, err)
	}
	return nil
}

func (c *Client) countQuery(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queryCounts[name]++
}

// QueryCount is one entry of the per-query call tally.
type QueryCount struct {
	Name  string
	Count int
}

// QueryCounts returns the per-query call tally, sorted by name.
func (c *Client) QueryCounts() []QueryCount {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make([]QueryCount, 0, len(c.queryCounts))
	for name, count := range c.queryCounts {
		counts = append(counts, QueryCount{Name: name, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Name < counts[j].Name })
	return counts
}

// TotalQueries returns the total number of API calls made.
func (c *Client) TotalQueries() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, count := range c.queryCounts {
		total += count
	}
	return total
}
