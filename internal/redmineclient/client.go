// Package redmineclient is the Redmine REST client the Pusher uses to
// create issues (spec §4.3). Like jiraclient, it follows the teacher's
// rate-limited single-client shape with bounded retries for transport
// errors.
package redmineclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client talks to a single Redmine instance over an API key, optionally
// routed through an "Extended API" path prefix (spec §6 redmine.extended_api).
type Client struct {
	baseURL        string
	apiKey         string
	extendedPrefix string // e.g. "extended_api"; "" means extended API disabled
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     uint64
}

// Options configures a Client beyond the required site URL and API key.
type Options struct {
	ExtendedAPIPrefix string
	RateLimit         rate.Limit
	Burst             int
	MaxRetries        uint64
}

func defaultOptions() Options {
	return Options{RateLimit: rate.Limit(5), Burst: 10, MaxRetries: 5}
}

// New builds a Client for a Redmine instance.
func New(baseURL, apiKey string, opts ...Options) *Client {
	o := defaultOptions()
	if len(opts) > 0 {
		o.ExtendedAPIPrefix = opts[0].ExtendedAPIPrefix
		if opts[0].RateLimit != 0 {
			o.RateLimit = opts[0].RateLimit
		}
		if opts[0].Burst != 0 {
			o.Burst = opts[0].Burst
		}
		if opts[0].MaxRetries != 0 {
			o.MaxRetries = opts[0].MaxRetries
		}
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		extendedPrefix: strings.Trim(o.ExtendedAPIPrefix, "/"),
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(o.RateLimit, o.Burst),
		maxRetries:     o.MaxRetries,
	}
}

// CreatedIssue is the subset of Redmine's issue-create response the Pusher
// needs (spec §4.3 step 3 "on HTTP 2xx with body.issue.id").
type CreatedIssue struct {
	ID int64 `json:"id"`
}

type createIssueResponse struct {
	Issue CreatedIssue `json:"issue"`
}

// APIError carries the HTTP status and truncated body of a non-2xx Redmine
// response, so callers can persist it verbatim as mapping-row notes (spec
// §8 "notes = truncated body (≤300 chars)").
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("redmine API error (status %d): %s", e.StatusCode, e.Body)
}

// IssuesPath returns the POST target for issue creation: "issues.json",
// optionally prefixed by the configured extended-API prefix (spec §4.3
// "Path selection... no leading slash").
func (c *Client) IssuesPath() string {
	if c.extendedPrefix == "" {
		return "issues.json"
	}
	return c.extendedPrefix + "/issues.json"
}

// CreateIssue posts the built payload to POST /issues.json?notify=false, or
// its extended-API-prefixed equivalent when extended API is enabled (spec
// §6, §4.3), retrying transient transport failures with bounded backoff.
func (c *Client) CreateIssue(ctx context.Context, payload any) (CreatedIssue, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return CreatedIssue{}, fmt.Errorf("marshal redmine payload: %w", err)
	}

	var result createIssueResponse
	err = c.doWithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.IssuesPath()+"?notify=false", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build create-issue request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Redmine-API-Key", c.apiKey)
		return c.doJSON(req, &result)
	})
	return result.Issue, err
}

// ProbeExtendedAPI performs the pre-push health check (spec §4.3 "before
// any POSTs, GET the prefixed issues.json; require a response header
// X-Redmine-Extended-API; abort the phase if missing").
func (c *Client) ProbeExtendedAPI(ctx context.Context) error {
	prefix := c.extendedPrefix
	if prefix == "" {
		prefix = "extended_api"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/issues.json", c.baseURL, prefix), nil)
	if err != nil {
		return fmt.Errorf("build extended-api probe request: %w", err)
	}
	req.Header.Set("X-Redmine-API-Key", c.apiKey)

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("extended-api probe failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.Header.Get("X-Redmine-Extended-API") == "" {
		return fmt.Errorf("extended-api probe: missing X-Redmine-Extended-API response header")
	}
	return nil
}

func (c *Client) doWithRetry(ctx context.Context, fn func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err != nil && attempt > 1 {
			log.Printf("[redmine] retry %d after error: %v", attempt-1, err)
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
		return fmt.Errorf("redmine request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read redmine response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncate(body, 300)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return apiErr // retryable
		}
		return backoff.Permanent(apiErr)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("parse redmine response: %w", err))
		}
	}
	return nil
}

func truncate(b []byte, max int) string {
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
