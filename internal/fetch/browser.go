package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserOptions configures the Playwright-backed fetcher.
type BrowserOptions struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
}

func DefaultBrowserOptions() *BrowserOptions {
	return &BrowserOptions{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Locale:         "en-GB",
	}
}

// BrowserFetcher renders pages in headless Chromium so retailers that build
// their listings client-side still yield extractable HTML.
type BrowserFetcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	timeout time.Duration
	logger  *slog.Logger
}

func NewBrowserFetcher(opts *BrowserOptions, logger *slog.Logger) (*BrowserFetcher, error) {
	if opts == nil {
		opts = DefaultBrowserOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: &opts.UserAgent,
		Locale:    &opts.Locale,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	return &BrowserFetcher{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		timeout: opts.Timeout,
		logger:  logger.With("component", "browser_fetcher"),
	}, nil
}

// FetchHTML navigates a fresh page to url and returns the rendered content.
// Each fetch gets its own page so retailer tasks can share one browser.
func (b *BrowserFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := b.context.NewPage()
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	page.SetDefaultTimeout(float64(b.timeout.Milliseconds()))

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(b.timeout.Milliseconds())),
	}); err != nil {
		return "", fmt.Errorf("navigate to %s: %w", url, err)
	}

	// Nudge lazy-loaded product grids into the DOM.
	if _, err := page.Evaluate(`window.scrollBy(0, window.innerHeight * 2)`); err != nil {
		b.logger.Debug("scroll failed", "url", url, "error", err)
	}

	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read content of %s: %w", url, err)
	}

	return content, nil
}

func (b *BrowserFetcher) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}
