// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit/github_primary_ratelimit"

	"github.com/ericfisherdev/formbff/internal/domain/model"
	"github.com/ericfisherdev/formbff/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com/"
	// DefaultUserAgent identifies this service to GitHub.
	DefaultUserAgent = "formbff"
	// DefaultTimeout bounds every proxied call.
	DefaultTimeout = 10 * time.Second
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client implements driven.GitHubClient. It holds no credentials of its own;
// every call is made with the caller's token.
type Client struct {
	gh      *gh.Client
	timeout time.Duration
}

// NewClient creates a GitHub proxy client with the following transport stack:
//  1. net/http default transport (no response cache; every call reaches GitHub)
//  2. go-github-ratelimit primary limiter (detects exhausted quotas)
//  3. go-github (GitHub REST API client, token attached per request)
func NewClient(opts Options) (*Client, error) {
	return NewClientWithHTTPClient(&http.Client{Transport: NewTransport(http.DefaultTransport)}, opts)
}

// NewTransport wraps base with the primary rate limit detector.
//
// Quotas belong to the caller's token, not to this process, so the limiter
// never refuses a request locally: an exhausted quota surfaces as a
// RateLimitReachedError for that one call and is relayed as GitHub's status.
// The secondary limiter is not used because it sleeps and retries.
func NewTransport(base http.RoundTripper) http.RoundTripper {
	return github_ratelimit.NewPrimaryLimiter(base,
		github_primary_ratelimit.WithBypassLimit(),
		github_primary_ratelimit.WithLimitDetectedCallback(func(cb *github_primary_ratelimit.CallbackContext) {
			slog.Warn("github primary rate limit reached",
				"category", cb.Category,
				"reset", cb.ResetTime,
			)
		}),
	)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	// go-github resolves relative paths and requires a trailing slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	client := gh.NewClient(httpClient)
	client.BaseURL = u
	client.UserAgent = opts.UserAgent

	return &Client{
		gh:      client,
		timeout: opts.Timeout,
	}, nil
}

// FetchUser returns the authenticated user's profile exactly as GitHub sent it.
func (c *Client) FetchUser(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "user")
}

// FetchRepos returns the authenticated user's repositories exactly as GitHub
// sent them. Query parameters are forwarded without interpretation.
func (c *Client) FetchRepos(ctx context.Context, token string, opts model.RepoListOptions) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("page", opts.Page)
	q.Set("per_page", opts.PerPage)
	q.Set("sort", opts.Sort)
	q.Set("direction", opts.Direction)

	return c.get(ctx, token, "user/repos?"+q.Encode())
}

func (c *Client) get(ctx context.Context, token, path string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client := c.gh.WithAuthToken(token)

	req, err := client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}

	var payload json.RawMessage
	resp, err := client.Do(ctx, req, &payload)
	if err != nil {
		return nil, classifyError(resp, err)
	}

	logRateLimit(resp, path)

	return payload, nil
}

// logRateLimit logs the remaining GitHub API quota for the caller's token at
// debug level. Rate limit state is tracked per token by GitHub, so it is
// informational only.
func logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)
}
