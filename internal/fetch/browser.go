package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// DefaultBrowserTimeout bounds a whole headless render.
const DefaultBrowserTimeout = 30 * time.Second

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, logger zerolog.Logger) (string, error) {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	logger.Debug().Str("url", url).Msg("starting headless browser")

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
		// job cards are injected after load
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.Debug().Int("bytes", len(html)).Msg("browser rendered page")
	return html, nil
}

// RenderFunc renders a URL to HTML; WithBrowser satisfies it
type RenderFunc func(ctx context.Context, url string, timeout time.Duration, logger zerolog.Logger) (string, error)

// BrowserFallback fetches over HTTP and re-renders in a headless browser when the
// server answers with a non-2xx status.
type BrowserFallback struct {
	Next    Fetcher
	Render  RenderFunc
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Fetch implements Fetcher
func (b *BrowserFallback) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	result, err := b.Next.Fetch(ctx, urlStr)
	if err == nil {
		return result, nil
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode == 0 {
		return result, err
	}

	render := b.Render
	if render == nil {
		render = WithBrowser
	}

	b.Logger.Info().Int("status", fetchErr.StatusCode).Str("url", urlStr).Msg("falling back to headless browser")
	html, renderErr := render(ctx, urlStr, b.Timeout, b.Logger)
	if renderErr != nil {
		return result, fmt.Errorf("%w (browser fallback: %v)", err, renderErr)
	}

	return &Result{URL: urlStr, HTML: html, ContentType: "text/html", StatusCode: 200}, nil
}
