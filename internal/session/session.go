// Package session holds the state of one running or finished site test.
// Sessions live in an in-memory store and are polled by clients while the
// crawl runs, so every read hands out a deep copy.
package session

import (
	"time"

	"github.com/kaanbobac/digital-tester-twin/internal/inspect"
)

// Status of a test session.
type Status string

const (
	StatusCrawling  Status = "crawling"
	StatusAnalyzing Status = "analyzing"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// DiscoveryMethod records how a URL entered the crawl.
type DiscoveryMethod string

const (
	DiscoveryInitial  DiscoveryMethod = "initial"
	DiscoveryHTMLLink DiscoveryMethod = "html_link"
	DiscoveryMetaTag  DiscoveryMethod = "meta_tag"
	DiscoveryRedirect DiscoveryMethod = "redirect"
)

// DiscoveryEvent is one entry in the crawl path: which page was visited,
// where the crawler came from, and through which link.
type DiscoveryEvent struct {
	URL            string          `json:"url"`
	DiscoveredFrom string          `json:"discoveredFrom"`
	LinkText       string          `json:"linkText"`
	Method         DiscoveryMethod `json:"discoveryMethod"`
	Depth          int             `json:"depth"`
	Timestamp      time.Time       `json:"timestamp"`
}

// PageLink is one sampled outbound link on a page.
type PageLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// PageRecord is the per-page result: fetch outcome, extracted features,
// findings, and the provenance of the visit.
type PageRecord struct {
	URL            string            `json:"url"`
	Title          string            `json:"title"`
	StatusCode     int               `json:"statusCode"`
	LoadTime       int64             `json:"loadTime"`
	Timestamp      time.Time         `json:"timestamp"`
	Screenshot     string            `json:"screenshot,omitempty"`
	Links          []PageLink        `json:"links"`
	Errors         []string          `json:"errors"`
	Findings       []inspect.Finding `json:"findings"`
	DiscoveredFrom string            `json:"discoveredFrom"`
	LinkText       string            `json:"linkText"`
	Method         DiscoveryMethod   `json:"discoveryMethod"`
	Depth          int               `json:"depth"`
}

// Action is one narrated step shown in the live activity feed.
type Action struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	URL         string    `json:"url,omitempty"`
	TargetURL   string    `json:"targetUrl,omitempty"`
	Status      string    `json:"status"`
	Details     string    `json:"details,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Session is the full state of one test.
type Session struct {
	TestID      string           `json:"testId"`
	BaseURL     string           `json:"baseUrl"`
	Status      Status           `json:"status"`
	Progress    int              `json:"progress"`
	PagesFound  int              `json:"pagesFound"`
	CurrentPage string           `json:"currentPage"`
	Message     string           `json:"message,omitempty"`
	CrawlPath   []DiscoveryEvent `json:"crawlPath"`
	Pages       []PageRecord     `json:"pages"`
	Actions     []Action         `json:"actions"`
	StartTime   time.Time        `json:"startTime"`
	EndTime     time.Time        `json:"endTime"`
}

// Clone returns a deep copy safe to hand to readers while the crawl keeps
// mutating the original.
func (s *Session) Clone() *Session {
	cp := *s
	cp.CrawlPath = append([]DiscoveryEvent(nil), s.CrawlPath...)
	cp.Actions = append([]Action(nil), s.Actions...)
	cp.Pages = make([]PageRecord, len(s.Pages))
	for i, p := range s.Pages {
		pc := p
		pc.Links = append([]PageLink(nil), p.Links...)
		pc.Errors = append([]string(nil), p.Errors...)
		pc.Findings = append([]inspect.Finding(nil), p.Findings...)
		cp.Pages[i] = pc
	}
	return &cp
}

// SuccessfulPages counts pages that loaded with a 2xx or 3xx status.
func (s *Session) SuccessfulPages() int {
	n := 0
	for _, p := range s.Pages {
		if p.StatusCode >= 200 && p.StatusCode < 400 {
			n++
		}
	}
	return n
}
