package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ericfisherdev/formbff/internal/domain/model"
	"github.com/ericfisherdev/formbff/internal/domain/port/driven"
)

// Repository listing defaults applied when the query omits a parameter.
const (
	defaultReposPage      = "1"
	defaultReposPerPage   = "30"
	defaultReposSort      = "updated"
	defaultReposDirection = "desc"
)

// GitHubUser relays the authenticated GitHub user's profile.
func (h *Handler) GitHubUser(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}

	payload, err := h.github.FetchUser(r.Context(), token)
	h.relayUpstream(w, "user", payload, err, "fetched github user")
}

// GitHubRepos relays the authenticated GitHub user's repositories.
func (h *Handler) GitHubRepos(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := model.RepoListOptions{
		Page:      queryOr(q, "page", defaultReposPage),
		PerPage:   queryOr(q, "per_page", defaultReposPerPage),
		Sort:      queryOr(q, "sort", defaultReposSort),
		Direction: queryOr(q, "direction", defaultReposDirection),
	}

	payload, err := h.github.FetchRepos(r.Context(), token, opts)
	h.relayUpstream(w, "repos", payload, err, "fetched github repositories")
}

// relayUpstream writes the GitHub payload or maps the adapter error onto the
// response status, and records the outcome.
func (h *Handler) relayUpstream(w http.ResponseWriter, endpoint string, payload json.RawMessage, err error, message string) {
	if err == nil {
		h.metrics.ObserveUpstream(endpoint, "ok")
		writeSuccess(w, http.StatusOK, payload, message)
		return
	}

	var upstream *driven.UpstreamError
	switch {
	case errors.As(err, &upstream):
		h.metrics.ObserveUpstream(endpoint, "upstream_error")
		h.logger.Warn("github api error", "endpoint", endpoint, "status", upstream.Status, "message", upstream.Message)
		writeFailure(w, upstream.Status, "github api error: "+upstream.Message, upstreamErrorDetail{
			Status:  upstream.Status,
			Message: upstream.Message,
		})
	case errors.Is(err, driven.ErrUpstreamTimeout):
		h.metrics.ObserveUpstream(endpoint, "timeout")
		h.logger.Warn("github request timed out", "endpoint", endpoint, "error", err)
		writeError(w, http.StatusRequestTimeout, "request timed out, check network connectivity")
	case errors.Is(err, driven.ErrUpstreamUnreachable):
		h.metrics.ObserveUpstream(endpoint, "unreachable")
		h.logger.Warn("github api unreachable", "endpoint", endpoint, "error", err)
		writeError(w, http.StatusServiceUnavailable, "unable to reach github api, check network connectivity")
	default:
		h.metrics.ObserveUpstream(endpoint, "error")
		h.logger.Error("github proxy failed", "endpoint", endpoint, "error", err)
		writeFailure(w, http.StatusInternalServerError, "internal server error", err.Error())
	}
}

// bearerToken extracts the caller's credential from the Authorization header.
// A value without the "Bearer " prefix is forwarded as-is. On failure it
// writes a 401 and returns false.
func bearerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		writeError(w, http.StatusUnauthorized, "missing authorization header")
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" || token == "Bearer" {
		writeError(w, http.StatusUnauthorized, "invalid token format")
		return "", false
	}

	return token, true
}

// queryOr returns the key's value, or fallback only when the key is absent.
// An explicitly empty value is forwarded as-is.
func queryOr(q url.Values, key, fallback string) string {
	if !q.Has(key) {
		return fallback
	}
	return q.Get(key)
}
