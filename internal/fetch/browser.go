package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// Shorter pages are most likely client-rendered.
const MinContentLength = 500

// BrowserTimeout bounds a full headless render.
const BrowserTimeout = 30 * time.Second

// ShouldUseBrowser reports whether the extracted text is too short to be a real posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in headless Chrome and returns the rendered HTML.
// Chrome or Chromium must be installed.
func WithBrowser(ctx context.Context, url string, timeout time.Duration) (string, error) {
	slog.Debug("starting headless browser", "url", url)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to populate the posting.
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	slog.Debug("rendered page", "url", url, "bytes", len(html))
	return html, nil
}

// BrowserSimple renders url with BrowserTimeout.
func BrowserSimple(ctx context.Context, url string) (string, error) {
	return WithBrowser(ctx, url, BrowserTimeout)
}
