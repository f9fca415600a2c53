package driven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfisherdev/formbff/internal/domain/model"
)

var (
	// ErrUpstreamTimeout indicates the GitHub call did not complete before the
	// client-side deadline.
	ErrUpstreamTimeout = errors.New("github request timed out")

	// ErrUpstreamUnreachable indicates a DNS or connection failure reaching GitHub.
	ErrUpstreamUnreachable = errors.New("github api unreachable")
)

// UpstreamError is returned when GitHub answered with an HTTP error status.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github api returned %d: %s", e.Status, e.Message)
}

// GitHubClient defines the driven port for the GitHub user-info proxy.
// Payloads are returned undecoded so they can be relayed verbatim.
// Errors are *UpstreamError, ErrUpstreamTimeout, ErrUpstreamUnreachable, or
// anything else for unclassified failures.
type GitHubClient interface {
	FetchUser(ctx context.Context, token string) (json.RawMessage, error)
	FetchRepos(ctx context.Context, token string, opts model.RepoListOptions) (json.RawMessage, error)
}
