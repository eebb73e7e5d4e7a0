// Package fetch provides the HTTP client used to retrieve pages for analysis.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kaanbobac/digital-tester-twin/internal/errors"
	"github.com/kaanbobac/digital-tester-twin/internal/metrics"
)

// DefaultUserAgent identifies the auditor to target sites.
const DefaultUserAgent = "Mozilla/5.0 (compatible; SiteAuditor/1.0; +https://siteauditor.example/bot)"

// maxBodySize caps how much of a response body is read (5MB).
const maxBodySize = 5 * 1024 * 1024

// Client retrieves pages with a fixed identity header set and a hard timeout.
// It performs no content-type filtering; callers decide what to do with
// non-HTML responses.
type Client struct {
	client    *http.Client
	userAgent string
	metrics   *metrics.Collector
}

// Config holds configuration for the fetch client.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	Metrics   *metrics.Collector

	// Transport overrides the default transport. Used in tests.
	Transport http.RoundTripper
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   10 * time.Second,
		UserAgent: DefaultUserAgent,
	}
}

// NewClient creates a new fetch client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		}
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		metrics:   cfg.Metrics,
	}
}

// Result contains the outcome of a single page fetch.
type Result struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        string
	Duration    time.Duration
}

// IsHTML reports whether the response declared an HTML content type.
func (r *Result) IsHTML() bool {
	return strings.Contains(r.ContentType, "text/html")
}

// Get performs a single GET request. Transport failures come back as
// classified *errors.FetchError values.
func (c *Client) Get(ctx context.Context, targetURL string) (*Result, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, errors.New(errors.Unknown, targetURL, "request_creation", "failed to create request", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")

	if c.metrics != nil {
		c.metrics.RecordRequest()
	}

	resp, err := c.client.Do(req)
	if err != nil {
		fetchErr := errors.Categorize(err, targetURL)
		if c.metrics != nil {
			c.metrics.RecordError(fetchErr.Type.String())
		}
		return nil, fetchErr
	}
	defer resp.Body.Close()

	result := &Result{
		URL:         targetURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		fetchErr := errors.Categorize(err, targetURL)
		if c.metrics != nil {
			c.metrics.RecordError(fetchErr.Type.String())
		}
		return nil, fetchErr
	}
	result.Body = string(body)
	result.Duration = time.Since(start)

	if c.metrics != nil {
		c.metrics.RecordStatusCode(resp.StatusCode)
		c.metrics.RecordResponseTime(result.Duration)
	}

	return result, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
