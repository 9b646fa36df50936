// Package marketplace is the Scrape Session Manager (spec §4.2): one
// long-lived browser allocator (a fresh browser per fetch), fetches
// serialized one at a time, card
// extraction turned into normalized Listings. Grounded on
// scraper/airbnb/airbnb.go's chromedp allocator/context setup, with
// the search URL and card selectors adapted from
// original_source/app/services/ebay_scraper.py's sold-listings query.
package marketplace

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// rawCard mirrors the JS-side extraction shape; parseCard turns it
// directly into a models.Listing.
type rawCard struct {
	Title        string `json:"title"`
	Price        string `json:"price"`
	Condition    string `json:"condition"`
	SoldDateText string `json:"soldDateText"`
	URL          string `json:"url"`
}

// driver is the browser automation contract Scrape Session Manager
// consumes, per spec §4.2: open(), navigate_and_extract(query), close().
type driver interface {
	Open(ctx context.Context) error
	NavigateAndExtract(ctx context.Context, query string, limit int) ([]rawCard, error)
	Close() error
}

// chromedpDriver implements driver against a real browser via chromedp.
type chromedpDriver struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	headless    bool
}

func newChromedpDriver(headless bool) *chromedpDriver {
	return &chromedpDriver{headless: headless}
}

func (d *chromedpDriver) Open(ctx context.Context) error {
	chromeBin := findChromeBinary()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	d.allocCtx = allocCtx
	d.cancelAlloc = cancel
	return nil
}

func (d *chromedpDriver) Close() error {
	if d.cancelAlloc != nil {
		d.cancelAlloc()
	}
	return nil
}

// searchURL builds a sold-listings search URL in the shape of
// ebay_scraper.py's query: free-text or UPC query term, sold +
// completed filters, sorted by most recently sold.
func searchURL(query string) string {
	q := url.QueryEscape(query)
	return fmt.Sprintf(
		"https://www.ebay.com/sch/i.html?_nkw=%s&_sacat=0&LH_Sold=1&LH_Complete=1&_sop=12&_ipg=60",
		q,
	)
}

// NavigateAndExtract loads the search results page, scrolls once to
// trigger lazy-loaded cards, then extracts up to limit structured
// cards via an in-page script.
func (d *chromedpDriver) NavigateAndExtract(ctx context.Context, query string, limit int) ([]rawCard, error) {
	taskCtx, cancel := chromedp.NewContext(d.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()

	// The task context derives from the allocator, not from ctx, so
	// carry the caller's fetch deadline over explicitly.
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		taskCtx, cancelDeadline = context.WithDeadline(taskCtx, deadline)
		defer cancelDeadline()
	}

	var cards []rawCard
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(searchURL(query)),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(1*time.Second),
		chromedp.Evaluate(extractScript(limit), &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("navigate and extract: %w", err)
	}
	return cards, nil
}

// extractScript pulls title/price/condition/sold-date/url out of
// eBay's sold-listings card markup (li.s-card), the structure
// ebay_scraper.py's regex extraction targets, re-expressed as a DOM
// query since chromedp evaluates in-page.
func extractScript(limit int) string {
	return fmt.Sprintf(`
		(function() {
			var results = [];
			var limit = %d;
			var cards = document.querySelectorAll('li.s-card, li[class*="s-item"]');

			for (var i = 0; i < cards.length && results.length < limit; i++) {
				var card = cards[i];

				var titleEl = card.querySelector('.su-styled-text, .s-item__title');
				var title = titleEl ? titleEl.innerText.trim() : '';
				if (!title) continue;

				var priceEl = card.querySelector('.s-card__price, .s-item__price');
				var price = priceEl ? priceEl.innerText.trim() : '';

				var condEl = card.querySelector('.su-styled-text.secondary, .SECONDARY_INFO');
				var condition = condEl ? condEl.innerText.trim() : '';

				var dateEl = card.querySelector('.s-card__caption, .s-item__title--tagblock');
				var soldDateText = dateEl ? dateEl.innerText.trim() : '';

				var linkEl = card.querySelector('a.su-link, a.s-item__link');
				var url = linkEl ? linkEl.href : '';
				if (!url) continue;

				results.push({
					title: title,
					price: price,
					condition: condition,
					soldDateText: soldDateText,
					url: url
				});
			}

			return results;
		})()
	`, limit)
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
