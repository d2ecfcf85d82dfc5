// Package fallback recovers artwork from the page an item was scraped from
// when no aggregator supplies a poster. Site-sourced artwork ranks below
// every provider in the trust ladder, so it only ever fills gaps.
package fallback

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/catalog"
	"marquee/internal/services"
)

// PosterSource fetches one poster URL for an item, or an empty string when
// the source offers none.
type PosterSource interface {
	PosterURL(ctx context.Context, item *catalog.Item) (string, error)
}

// SitePoster extracts the og:image of the item's source page.
type SitePoster struct {
	userAgent  string
	httpClient *http.Client
}

var _ PosterSource = (*SitePoster)(nil)

// Option configures a SitePoster.
type Option func(*SitePoster)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *SitePoster) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewSitePoster creates a site poster source.
func NewSitePoster(userAgent string, opts ...Option) *SitePoster {
	source := &SitePoster{
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(source)
	}
	return source
}

// PosterURL fetches the item's source page and returns its og:image URL.
// Items without a source URL yield an empty string without a network call.
func (s *SitePoster) PosterURL(ctx context.Context, item *catalog.Item) (string, error) {
	pageURL := strings.TrimSpace(item.SourceURL)
	if pageURL == "" {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrPermanent, "site", "poster", "build request", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "site", "poster", "execute request", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return "", services.Wrap(services.ErrNotFound, "site", "poster",
			"source page returned 404", nil)
	default:
		return "", services.Wrap(services.ErrPermanent, "site", "poster",
			fmt.Sprintf("source page returned %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrPartialData, "site", "poster", "parse page", err)
	}

	var imageURL string
	doc.Find(`meta[property="og:image"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if content, ok := sel.Attr("content"); ok {
			imageURL = strings.TrimSpace(content)
		}
		return imageURL == ""
	})
	return imageURL, nil
}
