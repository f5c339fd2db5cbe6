package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/mizutanik/refurbwatch/internal/config"
)

// Client fetches the storefront page using a Colly collector configured with
// browser-like headers.
type Client struct {
	baseCollector  *colly.Collector
	acceptLanguage string
	acceptEncoding string
	logger         *zap.Logger
}

// NewClient constructs a configured Colly-based fetcher.
func NewClient(cfg config.HTTPConfig, logger *zap.Logger) (*Client, error) {
	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true
	// One fixed page per run; skip the extra robots.txt round trip.
	base.IgnoreRobotsTxt = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout(),
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout())

	return &Client{
		baseCollector:  base,
		acceptLanguage: cfg.AcceptLanguage,
		acceptEncoding: cfg.AcceptEncoding,
		logger:         logger,
	}, nil
}

// Fetch performs one GET against rawURL. A 2xx response yields the page body;
// anything else returns a *Error. No retries are attempted.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Page, error) {
	collector := c.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	start := time.Now()

	collector.OnRequest(func(r *colly.Request) {
		if c.acceptLanguage != "" {
			r.Headers.Set("Accept-Language", c.acceptLanguage)
		}
		if c.acceptEncoding != "" {
			r.Headers.Set("Accept-Encoding", c.acceptEncoding)
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			for k, v := range *r.Headers {
				cp := make([]string, len(v))
				copy(cp, v)
				headers[k] = cp
			}
		}
		page := Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte{}, r.Body...),
			Duration:   time.Since(start),
		}
		send(fetchResult{page: page})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		ferr := &Error{URL: rawURL, Err: err}
		if r != nil {
			ferr.StatusCode = r.StatusCode
		}
		send(fetchResult{err: ferr})
	})

	if err := collector.Visit(rawURL); err != nil {
		// OnError has usually fired already and carries the status code;
		// prefer that over the bare Visit error.
		select {
		case res := <-resultCh:
			if res.err != nil {
				return Page{}, res.err
			}
		default:
		}
		return Page{}, &Error{URL: rawURL, Err: err}
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Page{}, &Error{URL: rawURL, Err: err}
		}
		return res.page, res.err
	default:
		return Page{}, &Error{URL: rawURL, Err: errors.New("colly fetch produced no result")}
	}
}

type fetchResult struct {
	page Page
	err  error
}
