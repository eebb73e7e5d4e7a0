// Package metrics provides metrics collection for the site auditor.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects and aggregates crawl metrics.
type Collector struct {
	requestsTotal   atomic.Int64
	errorsTotal     atomic.Int64
	pagesCrawled    atomic.Int64
	pagesDiscovered atomic.Int64
	issuesFound     atomic.Int64

	responseTimesSum atomic.Int64 // milliseconds
	responseTimesNum atomic.Int64

	// Error breakdown
	errorCounts map[string]*atomic.Int64
	errorMu     sync.RWMutex

	// Status code breakdown
	statusCodes map[int]*atomic.Int64
	statusMu    sync.RWMutex

	startTime time.Time
}

// New creates a new metrics collector.
func New() *Collector {
	return &Collector{
		errorCounts: make(map[string]*atomic.Int64),
		statusCodes: make(map[int]*atomic.Int64),
		startTime:   time.Now(),
	}
}

// RecordRequest records an HTTP request.
func (c *Collector) RecordRequest() {
	c.requestsTotal.Add(1)
}

// RecordError records an error by type string.
func (c *Collector) RecordError(errorType string) {
	c.errorsTotal.Add(1)

	c.errorMu.Lock()
	if c.errorCounts[errorType] == nil {
		c.errorCounts[errorType] = &atomic.Int64{}
	}
	c.errorCounts[errorType].Add(1)
	c.errorMu.Unlock()
}

// RecordStatusCode records an HTTP status code.
func (c *Collector) RecordStatusCode(code int) {
	c.statusMu.Lock()
	if c.statusCodes[code] == nil {
		c.statusCodes[code] = &atomic.Int64{}
	}
	c.statusCodes[code].Add(1)
	c.statusMu.Unlock()
}

// RecordResponseTime records a response time.
func (c *Collector) RecordResponseTime(d time.Duration) {
	c.responseTimesSum.Add(d.Milliseconds())
	c.responseTimesNum.Add(1)
}

// RecordPageCrawled records a completed page crawl.
func (c *Collector) RecordPageCrawled() {
	c.pagesCrawled.Add(1)
}

// RecordPageDiscovered records a frontier discovery.
func (c *Collector) RecordPageDiscovered() {
	c.pagesDiscovered.Add(1)
}

// RecordIssues records detected issues.
func (c *Collector) RecordIssues(n int) {
	c.issuesFound.Add(int64(n))
}

// Stats is a point-in-time snapshot of collected metrics.
type Stats struct {
	RequestsTotal   int64
	ErrorsTotal     int64
	PagesCrawled    int64
	PagesDiscovered int64
	IssuesFound     int64
	AvgResponseMs   int64
	ErrorCounts     map[string]int64
	StatusCodes     map[int]int64
	Uptime          time.Duration
}

// Snapshot returns a consistent snapshot of the collected metrics.
func (c *Collector) Snapshot() Stats {
	s := Stats{
		RequestsTotal:   c.requestsTotal.Load(),
		ErrorsTotal:     c.errorsTotal.Load(),
		PagesCrawled:    c.pagesCrawled.Load(),
		PagesDiscovered: c.pagesDiscovered.Load(),
		IssuesFound:     c.issuesFound.Load(),
		ErrorCounts:     make(map[string]int64),
		StatusCodes:     make(map[int]int64),
		Uptime:          time.Since(c.startTime),
	}

	if n := c.responseTimesNum.Load(); n > 0 {
		s.AvgResponseMs = c.responseTimesSum.Load() / n
	}

	c.errorMu.RLock()
	for k, v := range c.errorCounts {
		s.ErrorCounts[k] = v.Load()
	}
	c.errorMu.RUnlock()

	c.statusMu.RLock()
	for k, v := range c.statusCodes {
		s.StatusCodes[k] = v.Load()
	}
	c.statusMu.RUnlock()

	return s
}
