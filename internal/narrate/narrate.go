// Package narrate turns crawl events into the human-readable action feed
// shown to polling clients. Narration is derived from structured events and
// never parsed back, so the wording here is presentation only.
package narrate

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaanbobac/digital-tester-twin/internal/session"
)

const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

func newAction(typ, description, status string) session.Action {
	return session.Action{
		ID:          uuid.NewString(),
		Type:        typ,
		Description: description,
		Status:      status,
		Timestamp:   time.Now(),
	}
}

// Navigate describes the crawler moving to a page, phrased by how the page
// was discovered.
func Navigate(target, from, linkText string, method session.DiscoveryMethod) session.Action {
	var desc string
	switch method {
	case session.DiscoveryInitial:
		desc = "Navigating to starting URL"
	case session.DiscoveryMetaTag:
		desc = "Following page reference found in meta tags"
	case session.DiscoveryRedirect:
		desc = "Following redirect"
	default:
		desc = fmt.Sprintf("Clicking link %q", linkText)
	}
	a := newAction("navigate", desc, StatusSuccess)
	a.URL = from
	a.TargetURL = target
	return a
}

// PageLoaded reports the fetch outcome for a page.
func PageLoaded(url string, statusCode int, loadTime time.Duration) session.Action {
	status := StatusSuccess
	if statusCode >= 400 {
		status = StatusWarning
	}
	a := newAction("check", fmt.Sprintf("Page loaded with status %d", statusCode), status)
	a.URL = url
	a.Details = fmt.Sprintf("%dms", loadTime.Milliseconds())
	return a
}

// PageFailed reports a page that could not be fetched at all.
func PageFailed(url, reason string) session.Action {
	a := newAction("navigate", "Page failed to load", StatusError)
	a.URL = url
	a.Details = reason
	return a
}

// LinksFound reports how many new pages a page contributed to the crawl.
func LinksFound(url string, count int) session.Action {
	a := newAction("click", fmt.Sprintf("Found %d clickable links", count), StatusSuccess)
	a.URL = url
	a.Details = fmt.Sprintf("Discovered %d new pages to test", count)
	return a
}

// InteractiveElements reports the page's buttons and fillable forms.
func InteractiveElements(url string, buttons, forms int) session.Action {
	a := newAction("click", "Testing interactive elements", StatusSuccess)
	a.URL = url
	a.Details = fmt.Sprintf("Found %d buttons and %d forms", buttons, forms)
	return a
}

// Analyzed reports the issue scan for one page.
func Analyzed(url string, findings int) session.Action {
	desc := "Analyzed page structure, no issues found"
	status := StatusSuccess
	if findings > 0 {
		desc = fmt.Sprintf("Analyzed page structure, found %d potential issues", findings)
		status = StatusWarning
	}
	a := newAction("analyze", desc, status)
	a.URL = url
	return a
}

// Screenshot reports a capture of one page.
func Screenshot(url string) session.Action {
	a := newAction("scroll", "Scrolling page and capturing screenshot", StatusSuccess)
	a.URL = url
	return a
}

// CrawlFinished closes the feed with the page total.
func CrawlFinished(pages int) session.Action {
	return newAction("check", fmt.Sprintf("Crawl complete, tested %d pages", pages), StatusSuccess)
}
