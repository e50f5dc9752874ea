// Package provider implements the remote pattern-based word-lookup
// client: an HTTP GET against a configurable endpoint.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client fetches words matching a pattern from an external lookup
// service.
type Client interface {
	Fetch(ctx context.Context, pattern string, max int) ([]string, error)
}

// OnelookClient is an HTTP-backed Client using '?' as the pattern
// wildcard, matching the external service's convention.
type OnelookClient struct {
	Endpoint string
	HTTP     *http.Client
}

// NewOnelookClient returns a client against endpoint with a sane default
// timeout.
func NewOnelookClient(endpoint string) *OnelookClient {
	return &OnelookClient{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Fetch performs `GET endpoint?pattern=...&max=...`. A non-2xx response
// or transport error is returned as an error; callers treat provider
// failures as soft (log, empty result, continue).
func (c *OnelookClient) Fetch(ctx context.Context, pattern string, max int) ([]string, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("provider: invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("pattern", pattern)
	q.Set("max", strconv.Itoa(max))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("provider: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider: non-2xx status %d", resp.StatusCode)
	}

	var words []string
	if err := json.NewDecoder(resp.Body).Decode(&words); err != nil {
		return nil, fmt.Errorf("provider: decode response: %w", err)
	}
	return words, nil
}

// ToWildcardPattern converts a slot pattern (using unknownChar for blanks)
// into the provider's '?' wildcard convention.
func ToWildcardPattern(pattern string, unknownChar rune) string {
	out := []rune(pattern)
	for i, r := range out {
		if r == unknownChar {
			out[i] = '?'
		}
	}
	return string(out)
}
