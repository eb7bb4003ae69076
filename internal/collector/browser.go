package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"oddscli/internal/config"
)

// PageFetcher returns the rendered text of a web page
type PageFetcher interface {
	PageText(ctx context.Context, url string) (string, error)
}

// BrowserFetcher renders pages in a shared headless browser, one tab per page, paced by a
// rate limiter.
type BrowserFetcher struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc

	limiter     *rate.Limiter
	pageTimeout time.Duration
	renderWait  time.Duration
	logger      *slog.Logger
}

// NewBrowserFetcher starts the browser. Close must be called to stop it.
func NewBrowserFetcher(cfg config.CollectorConfig, logger *slog.Logger) (*BrowserFetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// the first Run launches the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &BrowserFetcher{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		pageTimeout:   cfg.PageTimeout,
		renderWait:    cfg.RenderWait,
		logger:        logger.With(slog.String("component", "browser_fetcher")),
	}, nil
}

// PageText navigates to url in a new tab and returns the text content of the body.
func (b *BrowserFetcher) PageText(ctx context.Context, url string) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.pageTimeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	start := time.Now()
	var text string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Sleep(b.renderWait),
		chromedp.Text("body", &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}

	b.logger.DebugContext(ctx, "Page rendered",
		slog.String("url", url),
		slog.Int("chars", len(text)),
		slog.Duration("duration", time.Since(start)))
	return text, nil
}

// Close stops the browser
func (b *BrowserFetcher) Close() {
	b.cancelBrowser()
	b.cancelAlloc()
}
