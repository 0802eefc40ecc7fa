package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/cv-analyzer/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions tunes IngestFromURL.
type URLOptions struct {
	// UseBrowser renders the page in a headless browser when the plain HTTP
	// response yields too little text.
	UseBrowser bool
	Fetch      *fetch.Options
	// Render replaces fetch.BrowserSimple; tests use it to avoid launching Chrome.
	Render func(ctx context.Context, url string) (string, error)
}

// IngestFromURL fetches a job posting, extracts its main text using
// platform-specific selectors and returns the cleaned text with metadata.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	platform := fetch.DetectPlatform(urlStr)
	log := slog.With("url", urlStr, "platform", string(platform))
	log.Debug("fetching job posting")

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	log.Debug("fetched html", "bytes", len(result.HTML))

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	textContent, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	log.Debug("extracted text", "chars", len(textContent))

	rendered := false
	if opts.UseBrowser && fetch.ShouldUseBrowser(textContent) {
		log.Debug("content too short, rendering in browser", "chars", len(textContent), "min", fetch.MinContentLength)

		render := opts.Render
		if render == nil {
			render = fetch.BrowserSimple
		}
		browserHTML, browserErr := render(ctx, urlStr)
		if browserErr != nil {
			// Keep the HTTP content.
			log.Warn("browser rendering failed", "error", browserErr)
		} else if text, err := fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...); err != nil {
			log.Warn("browser content extraction failed", "error", err)
		} else {
			textContent = text
			rendered = true
			log.Debug("browser extracted text", "chars", len(textContent))
		}
	}

	cleanedText := CleanText(textContent)
	if cleanedText == "" {
		return "", nil, fmt.Errorf("%w: no text found at %s", ErrContentExtractionFailed, urlStr)
	}

	metadata := NewMetadata(cleanedText, urlStr)
	metadata.Platform = string(platform)
	metadata.Rendered = rendered

	return cleanedText, metadata, nil
}
