package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marquee/internal/services"
)

// MediaType values accepted by the detail endpoints.
const (
	MediaMovie = "movie"
	MediaTV    = "tv"
)

// API defines the TMDB operations used by the enrichment engine.
type API interface {
	SearchMulti(ctx context.Context, query string) (*SearchResponse, error)
	Details(ctx context.Context, mediaType string, id int64) (*Details, error)
	ExternalIDs(ctx context.Context, mediaType string, id int64) (*ExternalIDs, error)
	Images(ctx context.Context, mediaType string, id int64) (*ImagesResponse, error)
	Credits(ctx context.Context, mediaType string, id int64) (*CreditsResponse, error)
	Videos(ctx context.Context, mediaType string, id int64) (*VideosResponse, error)
	FindByIMDBID(ctx context.Context, imdbID string) (*FindResponse, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

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

// WithTimeout overrides the per-call network timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchMulti performs a TMDB multi search across movies and TV shows.
func (c *Client) SearchMulti(ctx context.Context, query string) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrPermanent, "tmdb", "search", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", query)

	var payload SearchResponse
	if err := c.get(ctx, "/search/multi", params, true, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Details fetches full movie or TV metadata by TMDB ID.
func (c *Client) Details(ctx context.Context, mediaType string, id int64) (*Details, error) {
	if err := checkMedia(mediaType, id); err != nil {
		return nil, err
	}
	var payload Details
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", mediaType, id), nil, true, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ExternalIDs fetches cross-reference identifiers (IMDb and friends) by TMDB ID.
func (c *Client) ExternalIDs(ctx context.Context, mediaType string, id int64) (*ExternalIDs, error) {
	if err := checkMedia(mediaType, id); err != nil {
		return nil, err
	}
	var payload ExternalIDs
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/external_ids", mediaType, id), nil, false, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Images fetches every poster and backdrop for a title. No language filter is
// applied on the request so the selector sees the full candidate set.
func (c *Client) Images(ctx context.Context, mediaType string, id int64) (*ImagesResponse, error) {
	if err := checkMedia(mediaType, id); err != nil {
		return nil, err
	}
	var payload ImagesResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/images", mediaType, id), nil, false, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Credits fetches cast and crew by TMDB ID.
func (c *Client) Credits(ctx context.Context, mediaType string, id int64) (*CreditsResponse, error) {
	if err := checkMedia(mediaType, id); err != nil {
		return nil, err
	}
	var payload CreditsResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/credits", mediaType, id), nil, false, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Videos fetches trailers and other clips by TMDB ID.
func (c *Client) Videos(ctx context.Context, mediaType string, id int64) (*VideosResponse, error) {
	if err := checkMedia(mediaType, id); err != nil {
		return nil, err
	}
	var payload VideosResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/videos", mediaType, id), nil, true, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FindByIMDBID recovers TMDB records from an IMDb cross-reference id.
func (c *Client) FindByIMDBID(ctx context.Context, imdbID string) (*FindResponse, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, services.Wrap(services.ErrPermanent, "tmdb", "find", "imdb id must not be empty", nil)
	}
	params := url.Values{}
	params.Set("external_source", "imdb_id")

	var payload FindResponse
	if err := c.get(ctx, "/find/"+url.PathEscape(imdbID), params, false, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func checkMedia(mediaType string, id int64) error {
	if mediaType != MediaMovie && mediaType != MediaTV {
		return services.Wrap(services.ErrPermanent, "tmdb", "request", fmt.Sprintf("unsupported media type %q", mediaType), nil)
	}
	if id <= 0 {
		return services.Wrap(services.ErrPermanent, "tmdb", "request", "id must be positive", nil)
	}
	return nil
}

// get executes one API call and decodes the JSON payload, classifying
// failures into the transient/not-found/permanent taxonomy.
func (c *Client) get(ctx context.Context, path string, params url.Values, localized bool, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrPermanent, "tmdb", "request", "parse url", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if localized && c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrPermanent, "tmdb", "request", "build request", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		// Timeouts and connection failures are worth retrying.
		return services.Wrap(services.ErrTransient, "tmdb", path,
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "tmdb", path,
			fmt.Sprintf("returned 404 (latency=%v)", latency), nil)
	default:
		return services.Wrap(services.ErrPermanent, "tmdb", path,
			fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrPartialData, "tmdb", path, "decode response", err)
	}
	return nil
}

// IsDecodeFailure reports whether the error came from a malformed payload
// rather than the network or the provider; callers skip the affected field
// and keep the rest of the response path alive.
func IsDecodeFailure(err error) bool {
	return errors.Is(err, services.ErrPartialData)
}
