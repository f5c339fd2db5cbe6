package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/mizutanik/refurbwatch/internal/config"
)

// ChromeRenderer renders the storefront page with JavaScript enabled using
// headless Chrome. The browser is launched per render; a watcher run needs at
// most one.
type ChromeRenderer struct {
	userAgent      string
	acceptLanguage string
	timeout        time.Duration
	logger         *zap.Logger
}

// NewChromeRenderer creates a renderer using the provided configuration.
func NewChromeRenderer(httpCfg config.HTTPConfig, renderCfg config.RenderConfig, logger *zap.Logger) *ChromeRenderer {
	return &ChromeRenderer{
		userAgent:      httpCfg.UserAgent,
		acceptLanguage: httpCfg.AcceptLanguage,
		timeout:        renderCfg.Timeout(),
		logger:         logger,
	}
}

// Render navigates to rawURL, waits for the DOM to settle, and returns the
// rendered markup as a Page.
func (r *ChromeRenderer) Render(ctx context.Context, rawURL string) (Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(r.userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTask()

	headers := network.Headers{}
	if r.acceptLanguage != "" {
		headers["Accept-Language"] = r.acceptLanguage
	}

	start := time.Now()
	var html string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return Page{}, fmt.Errorf("chromedp run: %w", err)
	}

	r.logger.Debug("rendered page via headless chrome",
		zap.String("url", rawURL),
		zap.Int("bytes", len(html)),
	)

	// Navigation succeeded and the DOM was captured; CDP does not surface
	// the status code on this path.
	return Page{
		URL:        rawURL,
		FinalURL:   rawURL,
		StatusCode: http.StatusOK,
		Body:       []byte(html),
		Duration:   time.Since(start),
		Rendered:   true,
	}, nil
}
