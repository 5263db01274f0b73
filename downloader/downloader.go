// Package downloader fetches remote images for the file writer.
package downloader

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/gocolly/colly/v2"
)

// Downloader fetches image bytes through a colly collector configured with
// the run's timeout, user agent and TLS policy. It never retries.
type Downloader struct {
	collector *colly.Collector
	Metrics   *Metrics

	requestCount int64
	errorCount   int64
}

// New builds a Downloader from cfg.
func New(cfg *config.Config, metrics *Metrics) *Downloader {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(0),
	)
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(cfg.ImageTimeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ImageTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: !cfg.StrictSSL},
	})

	return &Downloader{
		collector: collector,
		Metrics:   metrics,
	}
}

// WithTransport replaces the HTTP transport, e.g. with a mock in tests.
func (d *Downloader) WithTransport(rt http.RoundTripper) {
	d.collector.WithTransport(rt)
}

// Fetch downloads rawURL and returns the body. Failures are classified into
// the error types in this package.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := d.collector.Clone()

	var (
		body     []byte
		status   int
		fetchErr error
	)
	start := time.Now()

	c.OnRequest(func(r *colly.Request) {
		atomic.AddInt64(&d.requestCount, 1)
		d.Metrics.IncRequest("started")
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	err := c.Visit(rawURL)
	d.Metrics.ObserveDuration(time.Since(start))
	if err == nil {
		err = fetchErr
	}
	if err != nil || status >= http.StatusBadRequest {
		classified := classifyError(rawURL, err, status)
		atomic.AddInt64(&d.errorCount, 1)
		d.Metrics.IncRequest("failed")
		d.Metrics.IncError(ErrorLabel(classified))
		slog.Debug("image request failed",
			slog.String("url", rawURL),
			slog.Int("status", status),
			slog.String("category", ErrorLabel(classified)),
			slog.Any("error", err),
		)
		return nil, classified
	}
	if len(body) == 0 {
		d.Metrics.IncRequest("failed")
		d.Metrics.IncError("empty_body")
		return nil, ErrEmptyBody{URL: rawURL}
	}

	d.Metrics.IncRequest("completed")
	d.Metrics.AddBytes(len(body))
	return body, nil
}

// Stats reports the number of requests issued and failed.
func (d *Downloader) Stats() (requests, failures int) {
	return int(atomic.LoadInt64(&d.requestCount)), int(atomic.LoadInt64(&d.errorCount))
}
