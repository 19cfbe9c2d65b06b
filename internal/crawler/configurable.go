package crawler

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"moneyhunter/dealworker/helpers"
	apperr "moneyhunter/dealworker/pkg/errors"
	"moneyhunter/dealworker/services/cache"
)

// Column widths of the deals table; longer values never reach the store
const (
	maxTitleLen = 500
	maxURLLen   = 1000
	maxPriceLen = 100
)

// ConfigurableCrawler is a crawler driven entirely by per-source selectors.
// One extraction strategy per source, same candidate shape out.
type ConfigurableCrawler struct {
	BaseCrawler
	Selectors Selectors
}

// NewConfigurableCrawler creates a new configurable crawler
func NewConfigurableCrawler(config Config, cacheSvc cache.CacheService) *ConfigurableCrawler {
	var priceRe *regexp.Regexp
	if config.Selectors.PriceRegex != "" {
		priceRe = regexp.MustCompile(config.Selectors.PriceRegex)
	}

	// Base URL comes from static configuration; a bad one is a programming error
	var baseRef *url.URL
	if config.BaseURL != "" {
		baseRef, _ = url.Parse(config.BaseURL)
	}

	return &ConfigurableCrawler{
		BaseCrawler: BaseCrawler{
			URL:       config.URL,
			CacheKey:  config.CacheKey,
			CacheSvc:  cacheSvc,
			BlockTime: time.Duration(config.BlockTime) * time.Second,
			BaseURL:   config.BaseURL,
			Provider:  config.Provider,
			Label:     config.Label,
			Interval:  config.PollInterval,
			priceRe:   priceRe,
			baseRef:   baseRef,
		},
		Selectors: config.Selectors,
	}
}

// FetchListings fetches the source page and extracts candidate listings
func (c *ConfigurableCrawler) FetchListings(ctx context.Context) ([]Listing, error) {
	utf8Body, err := c.fetchWithCache(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := c.createDocument(utf8Body)
	if err != nil {
		return nil, err
	}

	return c.extract(doc)
}

// extract walks the list container and processes each item, tracking
// whether the selector has ever matched so an empty page can be told apart
// from a drifted layout.
func (c *ConfigurableCrawler) extract(doc *goquery.Document) ([]Listing, error) {
	selections := doc.Find(c.Selectors.ListItem)
	if selections.Length() == 0 {
		if c.sawItems {
			// The page loaded but the layout no longer matches
			return nil, apperr.NewSelectorDrift(c.Provider, c.Selectors.ListItem)
		}
		return nil, nil
	}
	c.sawItems = true

	var listings []Listing
	selections.Each(func(_ int, s *goquery.Selection) {
		if listing := c.processListing(s); listing != nil {
			listings = append(listings, *listing)
		}
	})

	return listings, nil
}

// applyHandlers applies a series of handlers to a selection
func (c *ConfigurableCrawler) applyHandlers(s *goquery.Selection, handlers []ElementHandler) string {
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if result := handler(s); result != "" {
			return result
		}
	}
	return ""
}

// defaultTitleHandler prefers the title attribute over the element text
func (c *ConfigurableCrawler) defaultTitleHandler(s *goquery.Selection) string {
	titleSel := s.Find(c.Selectors.Title)
	if titleSel.Length() == 0 {
		return ""
	}

	if titleAttr, exists := titleSel.Attr("title"); exists && titleAttr != "" {
		return titleAttr
	}
	return titleSel.Text()
}

// defaultLinkHandler extracts the href of the configured link selector
func (c *ConfigurableCrawler) defaultLinkHandler(s *goquery.Selection) string {
	linkSel := s.Find(c.Selectors.Link)
	if linkSel.Length() == 0 {
		return ""
	}

	href, exists := linkSel.Attr("href")
	if !exists {
		return ""
	}
	return strings.TrimSpace(href)
}

// processListing extracts a single candidate from a list item.
// Any missing or malformed field drops the item, never the page.
func (c *ConfigurableCrawler) processListing(s *goquery.Selection) *Listing {
	if c.Selectors.ClassFilter != "" && s.HasClass(c.Selectors.ClassFilter) {
		return nil
	}

	// Title
	var title string
	if len(c.Selectors.TitleHandlers) > 0 {
		title = c.applyHandlers(s, c.Selectors.TitleHandlers)
	} else {
		title = c.defaultTitleHandler(s)
	}

	title = CleanTitle(title)
	if title == "" {
		return nil
	}

	// Link
	var href string
	if len(c.Selectors.LinkHandlers) > 0 {
		href = c.applyHandlers(s, c.Selectors.LinkHandlers)
	} else {
		href = c.defaultLinkHandler(s)
	}

	link, err := c.ResolveURL(href)
	if err != nil || link == "" {
		return nil
	}
	if len(link) > maxURLLen {
		return nil
	}

	// Price: structured field first, then the title fallback
	var price string
	if len(c.Selectors.PriceHandlers) > 0 {
		price = c.applyHandlers(s, c.Selectors.PriceHandlers)
	}
	if price == "" {
		price = c.ExtractPrice(title)
	}

	return &Listing{
		SourceID: c.Provider,
		Title:    helpers.TruncateRunes(title, maxTitleLen),
		Link:     link,
		Price:    helpers.TruncateRunes(price, maxPriceLen),
	}
}
