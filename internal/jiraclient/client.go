// Package jiraclient is the Jira Cloud REST API v3 client the Extractor
// uses to page through a project's issues (spec §4.1). It follows the
// teacher's api.Client shape: a rate-limited http.Client wrapper with one
// low-level request method and typed methods built on top of it.
package jiraclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client talks to a single Jira Cloud site over basic auth (email + API
// token), matching the teacher's single-API-key Client.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
}

// Options configures a Client beyond the required site URL and credentials.
type Options struct {
	// RateLimit caps sustained requests/sec; Burst allows short bursts above
	// it. Defaults mirror the teacher's conservative Linear budget.
	RateLimit  rate.Limit
	Burst      int
	MaxRetries uint64
}

func defaultOptions() Options {
	return Options{RateLimit: rate.Limit(5), Burst: 10, MaxRetries: 5}
}

// New builds a Client for a Jira Cloud site (baseURL like
// "https://yourcompany.atlassian.net").
func New(baseURL, email, apiToken string, opts ...Options) *Client {
	o := defaultOptions()
	if len(opts) > 0 {
		o = opts[0]
		if o.RateLimit == 0 {
			o.RateLimit = defaultOptions().RateLimit
		}
		if o.Burst == 0 {
			o.Burst = defaultOptions().Burst
		}
		if o.MaxRetries == 0 {
			o.MaxRetries = defaultOptions().MaxRetries
		}
	}
	return &Client{
		baseURL:    baseURL,
		email:      email,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(o.RateLimit, o.Burst),
		maxRetries: o.MaxRetries,
	}
}

// SearchResult is one page of the JQL search endpoint's response, trimmed to
// the fields the Extractor stages (spec §3 JiraIssue, §6 "GET
// /rest/api/3/search/jql... -> {issues:[…], maxResults:<n>}").
type SearchResult struct {
	Issues     []json.RawMessage `json:"issues"`
	MaxResults int               `json:"maxResults"`
}

// Search calls GET /rest/api/3/search/jql for one page, retrying transient
// transport failures with bounded exponential backoff (spec §9 "Jira API
// calls are retried with bounded backoff on 5xx/429/network error; 4xx other
// than 429 is not retried").
func (c *Client) Search(ctx context.Context, jql string, maxResults int) (SearchResult, error) {
	var result SearchResult
	err := c.doWithRetry(ctx, func() error {
		req, err := c.newSearchRequest(ctx, jql, maxResults)
		if err != nil {
			return backoff.Permanent(err)
		}
		return c.doJSON(req, &result)
	})
	return result, err
}

func (c *Client) newSearchRequest(ctx context.Context, jql string, maxResults int) (*http.Request, error) {
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("fields", "*all")
	q.Set("expand", "renderedFields")
	q.Set("fieldsByKeys", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/api/3/search/jql?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.email, c.apiToken)
	return req, nil
}

// doWithRetry wraps fn in the shared retry policy (spec §9: bounded
// exponential backoff, capped attempts, no retry on non-429 4xx).
func (c *Client) doWithRetry(ctx context.Context, fn func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err != nil && attempt > 1 {
			log.Printf("[jira] retry %d after error: %v", attempt-1, err)
		}
		return err
	}, policy)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return backoff.Permanent(fmt.Errorf("rate limit wait cancelled: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jira request failed: %w", err) // network error: retryable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read jira response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("jira API error (status %d): %s", resp.StatusCode, truncate(body))
	case resp.StatusCode >= 400:
		return backoff.Permanent(fmt.Errorf("jira API error (status %d): %s", resp.StatusCode, truncate(body)))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("parse jira response: %w", err))
		}
	}
	return nil
}

func truncate(b []byte) string {
	const max = 500
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
