package crawler

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"moneyhunter/dealworker/helpers"
	apperr "moneyhunter/dealworker/pkg/errors"
	"moneyhunter/dealworker/services/cache"
)

// BaseCrawler provides common functionality for all crawlers
type BaseCrawler struct {
	URL       string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	BaseURL   string
	Provider  string
	Label     string
	Interval  time.Duration

	priceRe *regexp.Regexp
	baseRef *url.URL

	// sawItems flips once the list selector has matched at least once;
	// after that, an empty match is selector drift, not a quiet page
	sawItems bool
}

// GetProvider returns the source identifier
func (c *BaseCrawler) GetProvider() string {
	return c.Provider
}

// GetLabel returns the alert header label
func (c *BaseCrawler) GetLabel() string {
	return c.Label
}

// PollInterval returns the source's scheduling interval
func (c *BaseCrawler) PollInterval() time.Duration {
	return c.Interval
}

// fetchWithCache fetches the source page with rate limiting
func (c *BaseCrawler) fetchWithCache(ctx context.Context) (io.Reader, error) {
	// Check if the source is currently rate limited
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return nil, apperr.NewRateLimit(c.Provider, fmt.Sprintf("%d", int(c.BlockTime/time.Second)))
		}
	}

	utf8Body, err := helpers.FetchWithBrowserHeaders(ctx, c.Provider, c.URL)
	if err != nil {
		if apperr.IsRateLimit(err) && c.CacheSvc != nil && c.CacheKey != "" {
			// Remember the block so the next ticks skip the source entirely
			c.CacheSvc.Set(c.CacheKey, []byte(fmt.Sprintf("%d", int(c.BlockTime/time.Second))), c.BlockTime)
		}
		return nil, err
	}

	return utf8Body, nil
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, apperr.NewParsing(c.Provider, "HTML parse failed", err)
	}
	return doc, nil
}

// ResolveURL resolves an href against the source's base URL. Relative and
// protocol-relative links are joined; absolute links pass through.
func (c *BaseCrawler) ResolveURL(href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", apperr.NewValidation(c.Provider, fmt.Sprintf("malformed href %q", href))
	}

	if c.baseRef == nil {
		return ref.String(), nil
	}
	return c.baseRef.ResolveReference(ref).String(), nil
}

// ExtractPrice scans the title for the source's currency pattern.
// A capture group wins over the whole match; no match means no price.
func (c *BaseCrawler) ExtractPrice(title string) string {
	if c.priceRe == nil {
		return ""
	}

	match := c.priceRe.FindStringSubmatch(title)
	if match == nil {
		return ""
	}
	if len(match) > 1 && match[1] != "" {
		return strings.TrimSpace(match[1])
	}
	return strings.Trim(match[0], "([]) ")
}
