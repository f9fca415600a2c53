// Command healthcheck checks the running server's /api/health endpoint and
// exits 0 when it answers 200. It is meant for container HEALTHCHECK lines.
package main

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

// defaultAddr matches the server's FORMBFF_LISTEN_ADDR default.
const defaultAddr = "127.0.0.1:3001"

func main() {
	target := healthURL(os.Getenv("FORMBFF_LISTEN_ADDR"))
	if err := checkHealth(target, 2*time.Second); err != nil {
		os.Exit(1)
	}
}

// healthURL turns a listen address into the URL to dial. Wildcard
// hosts are rewritten to loopback because a wildcard is not dialable.
func healthURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		host, port, _ = net.SplitHostPort(defaultAddr)
	}

	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}

	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: "/api/health"}
	return u.String()
}

type statusError int

func (e statusError) Error() string {
	return "unexpected status " + http.StatusText(int(e))
}

// checkHealth issues one GET against target and fails on anything but 200.
func checkHealth(target string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode)
	}
	return nil
}
