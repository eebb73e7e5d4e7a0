package audit

import (
	"time"

	"github.com/kaanbobac/digital-tester-twin/internal/fetch"
	"github.com/kaanbobac/digital-tester-twin/internal/logger"
	"github.com/kaanbobac/digital-tester-twin/internal/metrics"
	"github.com/kaanbobac/digital-tester-twin/internal/screenshot"
	"github.com/kaanbobac/digital-tester-twin/internal/session"
)

// Option configures an Auditor.
type Option func(*Auditor)

// WithConfig replaces the whole configuration.
func WithConfig(cfg *Config) Option {
	return func(a *Auditor) {
		if cfg != nil {
			a.cfg = cfg
		}
	}
}

// WithPageBudget overrides the page visit cap.
func WithPageBudget(n int) Option {
	return func(a *Auditor) { a.cfg.PageBudget = n }
}

// WithFetchTimeout overrides the per-fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Auditor) { a.cfg.FetchTimeout = d }
}

// WithCrawlDelay overrides the pause between fetches.
func WithCrawlDelay(d time.Duration) Option {
	return func(a *Auditor) { a.cfg.CrawlDelay = d }
}

// WithUserAgent overrides the client identity header.
func WithUserAgent(ua string) Option {
	return func(a *Auditor) { a.cfg.UserAgent = ua }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(a *Auditor) { a.log = log }
}

// WithStore sets the session store shared with the API server.
func WithStore(st *session.Store) Option {
	return func(a *Auditor) { a.store = st }
}

// WithClient sets the fetch client. Used in tests to inject transports.
func WithClient(c *fetch.Client) Option {
	return func(a *Auditor) { a.client = c }
}

// WithCapturer sets the screenshot capturer.
func WithCapturer(c screenshot.Capturer) Option {
	return func(a *Auditor) { a.capturer = c }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(a *Auditor) { a.metrics = m }
}
