// Package scraper reads offer landing pages.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const defaultMaxTitleLen = 120

// Scraper extracts page titles from offer links.
type Scraper struct {
	httpClient  *http.Client
	maxTitleLen int
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.httpClient.Timeout = d
	}
}

// WithMaxTitleLength sets the maximum title length in runes.
func WithMaxTitleLength(n int) Option {
	return func(s *Scraper) {
		s.maxTitleLen = n
	}
}

// NewScraper creates a new page scraper.
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxTitleLen: defaultMaxTitleLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Title returns the readable title of the page at rawURL. Offer links are
// redirects, so the title comes from the final page.
func (s *Scraper) Title(ctx context.Context, rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; PetOffersBot/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, resp.Request.URL)
	if err != nil {
		return "", fmt.Errorf("parse content: %w", err)
	}

	title := strings.Join(strings.Fields(article.Title), " ")
	if title == "" {
		return "", fmt.Errorf("page has no title")
	}

	if r := []rune(title); len(r) > s.maxTitleLen {
		title = strings.TrimSpace(string(r[:s.maxTitleLen])) + "…"
	}
	return title, nil
}
