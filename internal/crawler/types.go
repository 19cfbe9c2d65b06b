package crawler

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Listing represents a single candidate scraped from one source page.
// Titles are already cleaned, links absolute and prices extracted; a
// Listing only lives until the end of the run that produced it.
type Listing struct {
	SourceID string
	Title    string
	Link     string
	Price    string
}

// Crawler interface defines the contract for all source implementations
type Crawler interface {
	// FetchListings retrieves candidate listings from a source page
	FetchListings(ctx context.Context) ([]Listing, error)

	// GetProvider returns the source identifier (persisted as source_id)
	GetProvider() string

	// GetLabel returns the human-readable label used in alert headers
	GetLabel() string

	// PollInterval returns the source's scheduling interval
	PollInterval() time.Duration
}

// ElementHandler extracts a single value from a list-item selection.
// Handlers are tried in order; the first non-empty result wins.
type ElementHandler func(*goquery.Selection) string

// Selectors contains CSS selectors for the elements of a source page
type Selectors struct {
	ListItem    string
	Title       string
	Link        string
	PriceRegex  string
	ClassFilter string

	// Optional fallback chains for sources whose markup needs more than
	// a single selector
	TitleHandlers []ElementHandler
	LinkHandlers  []ElementHandler
	PriceHandlers []ElementHandler
}

// Config contains the static, process-lifetime configuration of one source
type Config struct {
	URL          string
	CacheKey     string
	BlockTime    int
	BaseURL      string
	Provider     string
	Label        string
	PollInterval time.Duration
	Selectors    Selectors
}
