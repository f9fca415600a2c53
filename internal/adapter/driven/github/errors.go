package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit/github_primary_ratelimit"
	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/formbff/internal/domain/port/driven"
)

// classifyError maps a go-github failure onto the port's error taxonomy:
// an HTTP error status from GitHub, a client-side timeout, a DNS or
// connection failure, or an unclassified error returned unchanged.
func classifyError(resp *gh.Response, err error) error {
	if status, message, ok := upstreamStatus(resp, err); ok {
		return &driven.UpstreamError{Status: status, Message: message}
	}

	if isTimeout(err) {
		return fmt.Errorf("%w: %v", driven.ErrUpstreamTimeout, err)
	}

	if isUnreachable(err) {
		return fmt.Errorf("%w: %v", driven.ErrUpstreamUnreachable, err)
	}

	return err
}

// upstreamStatus extracts the status code and GitHub's message when GitHub
// itself rejected the request.
func upstreamStatus(resp *gh.Response, err error) (int, string, bool) {
	var (
		limitErr *github_primary_ratelimit.RateLimitReachedError
		rateErr  *gh.RateLimitError
		abuseErr *gh.AbuseRateLimitError
		errResp  *gh.ErrorResponse
		tfaErr   *gh.TwoFactorAuthError
	)

	switch {
	case errors.As(err, &limitErr):
		return statusOf(limitErr.Response, http.StatusForbidden), messageOr(bodyMessage(limitErr.Response)), true
	case errors.As(err, &rateErr):
		return statusOf(rateErr.Response, http.StatusForbidden), messageOr(rateErr.Message), true
	case errors.As(err, &abuseErr):
		return statusOf(abuseErr.Response, http.StatusForbidden), messageOr(abuseErr.Message), true
	case errors.As(err, &errResp):
		return statusOf(errResp.Response, http.StatusBadGateway), messageOr(errResp.Message), true
	case errors.As(err, &tfaErr):
		return statusOf(tfaErr.Response, http.StatusUnauthorized), messageOr(tfaErr.Message), true
	}

	if resp != nil && resp.Response != nil && resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, messageOr(""), true
	}

	return 0, "", false
}

func statusOf(resp *http.Response, fallback int) int {
	if resp == nil {
		return fallback
	}
	return resp.StatusCode
}

// bodyMessage reads the "message" field of a GitHub error body that never
// reached go-github's response checking. The body is closed.
func bodyMessage(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	defer resp.Body.Close()

	var body struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || json.Unmarshal(data, &body) != nil {
		return ""
	}
	return body.Message
}

func messageOr(message string) string {
	if message == "" {
		return "unknown error"
	}
	return message
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
