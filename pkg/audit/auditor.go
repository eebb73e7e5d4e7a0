// Package audit runs website tests: a breadth-first same-origin crawl with
// per-page issue analysis, reported through a shared session store.
package audit

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/kaanbobac/digital-tester-twin/internal/errors"
	"github.com/kaanbobac/digital-tester-twin/internal/fetch"
	"github.com/kaanbobac/digital-tester-twin/internal/frontier"
	"github.com/kaanbobac/digital-tester-twin/internal/inspect"
	"github.com/kaanbobac/digital-tester-twin/internal/logger"
	"github.com/kaanbobac/digital-tester-twin/internal/metrics"
	"github.com/kaanbobac/digital-tester-twin/internal/narrate"
	"github.com/kaanbobac/digital-tester-twin/internal/page"
	"github.com/kaanbobac/digital-tester-twin/internal/screenshot"
	"github.com/kaanbobac/digital-tester-twin/internal/session"
)

// NoSuccessMessage is reported when not a single page could be fetched.
const NoSuccessMessage = "Could not access any pages on this website. The site may have bot protection or CORS restrictions."

// Progress checkpoints after the crawl phase. During the crawl, progress
// advances from 0 to 50 proportionally to visited pages.
const (
	progressAnalyzing   = 60
	progressScreenshots = 90
	progressComplete    = 100
)

// Auditor runs tests against target sites.
type Auditor struct {
	cfg      *Config
	log      *logger.Logger
	store    *session.Store
	client   *fetch.Client
	capturer screenshot.Capturer
	metrics  *metrics.Collector
}

// New creates an auditor. Unset dependencies get working defaults.
func New(opts ...Option) *Auditor {
	a := &Auditor{
		cfg: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.NewDefault().WithComponent("auditor")
	}
	if a.store == nil {
		a.store = session.NewStore()
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	if a.client == nil {
		a.client = fetch.NewClient(fetch.Config{
			Timeout:   a.cfg.FetchTimeout,
			UserAgent: a.cfg.UserAgent,
			Metrics:   a.metrics,
		})
	}
	if a.capturer == nil {
		a.capturer = screenshot.NewPlaceholder()
	}
	return a
}

// Store returns the session store the auditor writes into.
func (a *Auditor) Store() *session.Store { return a.store }

// Metrics returns the metrics collector.
func (a *Auditor) Metrics() *metrics.Collector { return a.metrics }

// Start registers a new session and runs the test in the background.
// It returns the session snapshot immediately.
func (a *Auditor) Start(ctx context.Context, testID, rawURL string) *session.Session {
	s := a.store.Create(testID, rawURL)
	go a.Run(ctx, testID, rawURL)
	return s
}

// Run executes a full test synchronously: crawl, analysis, screenshots,
// completion. The session must already exist in the store. Run never
// returns an error; failures are recorded on the session.
func (a *Auditor) Run(ctx context.Context, testID, rawURL string) {
	log := a.log.WithSession(testID)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("test panicked: %v", r)
			a.fail(testID, "Internal error while testing the website.")
		}
	}()

	base, err := url.Parse(rawURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		a.fail(testID, "Invalid URL. Please provide a full http or https address.")
		return
	}

	log.Infof("starting test of %s", rawURL)
	a.crawl(ctx, testID, base, log)

	snap, ok := a.store.Get(testID)
	if !ok {
		return
	}
	if snap.Status == session.StatusError {
		return
	}
	if snap.SuccessfulPages() == 0 {
		log.Warn("no pages could be fetched")
		a.fail(testID, NoSuccessMessage)
		return
	}

	a.store.Update(testID, func(s *session.Session) {
		s.Status = session.StatusAnalyzing
		s.Progress = progressAnalyzing
		s.CurrentPage = ""
		s.Actions = append(s.Actions, narrate.CrawlFinished(len(s.Pages)))
	})

	a.captureScreenshots(ctx, testID)

	a.store.Update(testID, func(s *session.Session) {
		s.Progress = progressScreenshots
	})

	a.store.Update(testID, func(s *session.Session) {
		s.Status = session.StatusComplete
		s.Progress = progressComplete
		if s.EndTime.IsZero() {
			s.EndTime = time.Now()
		}
	})
	stats := a.metrics.Snapshot()
	log.Infof("test complete: %d pages, %d requests, %d issues, avg response %dms",
		snap.PagesFound, stats.RequestsTotal, stats.IssuesFound, stats.AvgResponseMs)
}

// crawl visits pages breadth-first until the budget is spent or the
// frontier drains.
func (a *Auditor) crawl(ctx context.Context, testID string, base *url.URL, log *logger.Logger) {
	fr := frontier.New()
	visited := frontier.NewVisited(a.cfg.PageBudget * 50)
	// rate.Every(0) is Inf, so a zero delay disables pacing.
	pacer := rate.NewLimiter(rate.Every(a.cfg.CrawlDelay), 1)

	seed := *base
	seed.Fragment = ""
	seedDiscovery := &frontier.Discovery{
		URL:       seed.String(),
		From:      "initial",
		LinkText:  "Starting URL",
		Method:    string(session.DiscoveryInitial),
		Depth:     0,
		Timestamp: time.Now(),
	}
	fr.Push(seedDiscovery)
	// The crawl path records every enqueue, not every dequeue; discoveries
	// still queued at budget exhaustion stay visible in the provenance trail.
	a.store.Update(testID, func(s *session.Session) {
		s.CrawlPath = append(s.CrawlPath, pathEvent(seedDiscovery))
	})

	count := 0
	for count < a.cfg.PageBudget {
		if ctx.Err() != nil {
			a.fail(testID, "Test cancelled before completion.")
			return
		}
		d, ok := fr.Pop()
		if !ok {
			break
		}
		// Already-visited URLs are skipped without consuming budget.
		if !visited.Add(d.URL) {
			continue
		}
		count++

		progress := count * 50 / a.cfg.PageBudget
		a.store.Update(testID, func(s *session.Session) {
			s.CurrentPage = d.URL
			s.PagesFound = count
			s.Progress = progress
			s.Actions = append(s.Actions, narrate.Navigate(d.URL, d.From, d.LinkText, session.DiscoveryMethod(d.Method)))
		})

		if err := pacer.Wait(ctx); err != nil {
			a.fail(testID, "Test cancelled before completion.")
			return
		}

		rec, actions, discovered := a.visit(ctx, d, base, fr, visited)
		a.store.Update(testID, func(s *session.Session) {
			s.Pages = append(s.Pages, rec)
			s.Actions = append(s.Actions, actions...)
			s.CrawlPath = append(s.CrawlPath, discovered...)
		})
		a.metrics.RecordPageCrawled()
		log.CrawlEvent(d.URL, d.Depth, rec.StatusCode, time.Duration(rec.LoadTime)*time.Millisecond)
	}
}

// visit fetches one page, analyzes it, and feeds new discoveries into the
// frontier. It never fails the crawl; fetch problems become part of the
// page record. Followed redirects come back as extra crawl-path events.
func (a *Auditor) visit(ctx context.Context, d *frontier.Discovery, base *url.URL, fr *frontier.Frontier, visited *frontier.Visited) (session.PageRecord, []session.Action, []session.DiscoveryEvent) {
	rec := session.PageRecord{
		URL:            d.URL,
		Links:          []session.PageLink{},
		Errors:         []string{},
		Findings:       []inspect.Finding{},
		DiscoveredFrom: d.From,
		LinkText:       d.LinkText,
		Method:         session.DiscoveryMethod(d.Method),
		Depth:          d.Depth,
		Timestamp:      time.Now(),
	}

	fctx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	res, err := a.client.Get(fctx, d.URL)
	if err != nil {
		rec.StatusCode = 0
		rec.Title = "Error"
		rec.LoadTime = time.Since(start).Milliseconds()
		rec.Errors = append(rec.Errors, errors.PageMessage(err))
		return rec, []session.Action{narrate.PageFailed(d.URL, errors.PageMessage(err))}, nil
	}

	rec.StatusCode = res.StatusCode
	rec.LoadTime = res.Duration.Milliseconds()

	if !res.IsHTML() {
		rec.Title = "Non-HTML Content"
		rec.Errors = append(rec.Errors, fmt.Sprintf("Content type is %s, expected HTML", res.ContentType))
		return rec, []session.Action{narrate.PageLoaded(d.URL, res.StatusCode, res.Duration)}, nil
	}

	// Resolve relative links against where the server actually left us, and
	// record followed redirects so the final URL is never refetched.
	var discovered []session.DiscoveryEvent
	redirected := false
	pageBase, perr := url.Parse(d.URL)
	if perr != nil {
		pageBase = base
	}
	if res.FinalURL != "" && res.FinalURL != d.URL {
		if fu, perr := url.Parse(res.FinalURL); perr == nil {
			pageBase = fu
			visited.Add(res.FinalURL)
			redirected = true
			discovered = append(discovered, session.DiscoveryEvent{
				URL:            res.FinalURL,
				DiscoveredFrom: d.URL,
				LinkText:       d.LinkText,
				Method:         session.DiscoveryRedirect,
				Depth:          d.Depth,
				Timestamp:      time.Now(),
			})
		}
	}

	enqueue := func(nd *frontier.Discovery) {
		if visited.Has(nd.URL) {
			return
		}
		if fr.Push(nd) {
			a.metrics.RecordPageDiscovered()
			discovered = append(discovered, pathEvent(nd))
		}
	}

	rec.Title = "Untitled"
	var structure page.Structure
	newLinks := 0
	feats, xerr := page.Extract(res.Body, pageBase, base)
	if xerr == nil {
		rec.Title = feats.Title
		structure = feats.Structure
		for _, l := range feats.Links {
			if len(rec.Links) < a.cfg.LinkSample {
				rec.Links = append(rec.Links, session.PageLink{URL: l.URL, Text: l.Text})
			}
			enqueue(&frontier.Discovery{
				URL:       l.URL,
				From:      d.URL,
				LinkText:  l.Text,
				Method:    string(session.DiscoveryHTMLLink),
				Depth:     d.Depth + 1,
				Timestamp: time.Now(),
			})
		}
		newLinks = len(discovered)
		if redirected {
			newLinks--
		}
		for _, ref := range feats.MetaRefs {
			enqueue(&frontier.Discovery{
				URL:       ref,
				From:      d.URL,
				LinkText:  "(meta tag)",
				Method:    string(session.DiscoveryMetaTag),
				Depth:     d.Depth + 1,
				Timestamp: time.Now(),
			})
		}
	}

	if herr := errors.CategorizeHTTPStatus(res.StatusCode, d.URL); herr != nil {
		rec.Errors = append(rec.Errors, fmt.Sprintf("HTTP %d error", errors.GetStatusCode(herr)))
		a.metrics.RecordError(herr.Type.String())
	}

	rec.Findings = inspect.Inspect(res.Body, res.StatusCode)
	a.metrics.RecordIssues(len(rec.Findings))

	actions := []session.Action{
		narrate.PageLoaded(d.URL, res.StatusCode, res.Duration),
	}
	if newLinks > 0 {
		actions = append(actions, narrate.LinksFound(d.URL, newLinks))
	}
	actions = append(actions, narrate.Analyzed(d.URL, len(rec.Findings)))
	if structure.Buttons > 0 || len(structure.Forms) > 0 {
		actions = append(actions, narrate.InteractiveElements(d.URL, structure.Buttons, len(structure.Forms)))
	}
	if redirected {
		actions = append([]session.Action{
			narrate.Navigate(res.FinalURL, d.URL, d.LinkText, session.DiscoveryRedirect),
		}, actions...)
	}
	return rec, actions, discovered
}

// pathEvent converts a frontier discovery into its crawl-path record.
func pathEvent(d *frontier.Discovery) session.DiscoveryEvent {
	return session.DiscoveryEvent{
		URL:            d.URL,
		DiscoveredFrom: d.From,
		LinkText:       d.LinkText,
		Method:         session.DiscoveryMethod(d.Method),
		Depth:          d.Depth,
		Timestamp:      d.Timestamp,
	}
}

// captureScreenshots attaches preview captures to the first pages. Capture
// failures are logged and skipped; they never fail the test.
func (a *Auditor) captureScreenshots(ctx context.Context, testID string) {
	snap, ok := a.store.Get(testID)
	if !ok {
		return
	}
	limit := a.cfg.ScreenshotPages
	if limit > len(snap.Pages) {
		limit = len(snap.Pages)
	}
	for i := 0; i < limit; i++ {
		p := snap.Pages[i]
		shot, err := a.capturer.Capture(ctx, p.URL, p.Title)
		if err != nil {
			a.log.WithSession(testID).WithURL(p.URL).WithError(err).Warn("screenshot capture failed")
			continue
		}
		idx := i
		a.store.Update(testID, func(s *session.Session) {
			if idx < len(s.Pages) {
				s.Pages[idx].Screenshot = shot
			}
			s.Actions = append(s.Actions, narrate.Screenshot(p.URL))
		})
	}
}

// fail marks the session as errored, keeping whatever partial data exists.
func (a *Auditor) fail(testID, message string) {
	a.store.Update(testID, func(s *session.Session) {
		s.Status = session.StatusError
		s.Message = message
		s.Progress = progressComplete
		if s.EndTime.IsZero() {
			s.EndTime = time.Now()
		}
	})
}
