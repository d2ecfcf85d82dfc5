package imdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marquee/internal/services"
)

// Suggestion is one entry from the IMDb suggestion API.
type Suggestion struct {
	ID    string `json:"id"`
	Title string `json:"l"`
	Year  int    `json:"y"`
	Kind  string `json:"q"`
}

// IsTitle reports whether the suggestion refers to a title rather than a
// person or keyword. Title ids start with "tt".
func (s Suggestion) IsTitle() bool {
	return strings.HasPrefix(s.ID, "tt")
}

type suggestResponse struct {
	Entries []Suggestion `json:"d"`
}

// Suggester looks up IMDb title ids by name.
type Suggester interface {
	Suggest(ctx context.Context, title string) ([]Suggestion, error)
}

// Client queries the IMDb suggestion API. The service is unauthenticated and
// keys requests by the first character of the query.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Suggester = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an IMDb suggestion client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "imdb", "new", "base url required", nil)
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Suggest returns title suggestions for a query, filtered to title records.
func (c *Client) Suggest(ctx context.Context, title string) ([]Suggestion, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrPermanent, "imdb", "suggest", "title must not be empty", nil)
	}

	slug := querySlug(title)
	endpoint, err := url.Parse(fmt.Sprintf("%s/suggestion/%s/%s.json", c.baseURL, slug[:1], slug))
	if err != nil {
		return nil, services.Wrap(services.ErrPermanent, "imdb", "suggest", "parse url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrPermanent, "imdb", "suggest", "build request", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "imdb", "suggest",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "imdb", "suggest",
			fmt.Sprintf("returned 404 (latency=%v)", latency), nil)
	default:
		return nil, services.Wrap(services.ErrPermanent, "imdb", "suggest",
			fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrPartialData, "imdb", "suggest", "decode response", err)
	}

	titles := make([]Suggestion, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		if entry.IsTitle() {
			titles = append(titles, entry)
		}
	}
	return titles, nil
}

// querySlug lowercases the title and strips everything the suggestion
// endpoint cannot carry in its path segment.
func querySlug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}
