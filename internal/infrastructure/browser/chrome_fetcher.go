package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"

	"CheeseAgent/internal/config"
	"CheeseAgent/internal/fetcher"
)

const searchBaseURL = "https://www.google.com/search?"

// ChromeFetcher renders an image-search results page in headless Chrome and
// extracts the inline data-URI payloads embedded for thumbnails. One isolated
// browser context is opened per Fetch call and torn down on every exit path.
type ChromeFetcher struct {
	waitTimeout time.Duration
	scrollCount int
	scrollDelay time.Duration
	logger      *slog.Logger
}

var _ fetcher.PageFetcher = (*ChromeFetcher)(nil)

// NewChromeFetcher builds a fetcher from browser configuration.
func NewChromeFetcher(cfg config.BrowserConfig, log *slog.Logger) *ChromeFetcher {
	scrolls := cfg.ScrollCount
	if scrolls <= 0 {
		scrolls = 3
	}
	return &ChromeFetcher{
		waitTimeout: cfg.WaitTimeout(),
		scrollCount: scrolls,
		scrollDelay: cfg.ScrollDelay(),
		logger:      log,
	}
}

// Name identifies the fetcher inside the registry.
func (f *ChromeFetcher) Name() string {
	return "chrome"
}

// Fetch navigates to the category search page, waits for image elements,
// triggers lazy loading with a fixed number of scrolls, and returns the
// inline payload strings found in the snapshot.
func (f *ChromeFetcher) Fetch(ctx context.Context, category string, limit int) ([]string, error) {
	searchURL := buildSearchURL(category)
	f.debug("fetch category page", "category", category, "url", searchURL)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(searchURL)); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", searchURL, err)
	}

	waitCtx, cancelWait := context.WithTimeout(browserCtx, f.waitTimeout)
	defer cancelWait()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady("g-img img", chromedp.ByQuery)); err != nil {
		f.warn("no image elements appeared within wait window", "category", category, "error", err)
		return nil, nil
	}

	actions := make([]chromedp.Action, 0, f.scrollCount*2+1)
	for i := 0; i < f.scrollCount; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight);`, nil),
			chromedp.Sleep(f.scrollDelay),
		)
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, fmt.Errorf("snapshot page: %w", err)
	}

	payloads, err := extractPayloads(html, limit)
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		f.warn("no inline image payloads found on page", "category", category)
		return nil, nil
	}

	f.debug("extracted inline payloads", "category", category, "count", len(payloads))
	return payloads, nil
}

func buildSearchURL(category string) string {
	params := url.Values{}
	params.Set("q", category+" cheese")
	params.Set("tbm", "isch")
	params.Set("as_st", "y")
	params.Set("imgtype", "photo")
	params.Set("tbs", "sur:cl")
	return searchBaseURL + params.Encode()
}

func (f *ChromeFetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *ChromeFetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
