// Package report aggregates a finished session into the final test report:
// a flat issue list with severity and category rollups and a plain-language
// summary.
package report

import (
	"fmt"

	"github.com/kaanbobac/digital-tester-twin/internal/inspect"
	"github.com/kaanbobac/digital-tester-twin/internal/session"
)

// Issue is one reported problem tied to the page it was found on.
type Issue struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Severity         inspect.Severity `json:"severity"`
	Category         inspect.Category `json:"category"`
	PageURL          string           `json:"pageUrl"`
	PageTitle        string           `json:"pageTitle"`
	Recommendation   string           `json:"recommendation,omitempty"`
	AffectedElements string           `json:"affectedElements,omitempty"`
}

// SeverityCounts is the issue rollup by severity. Fixed fields keep the
// JSON shape stable even when a bucket is empty.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// CategoryCounts is the issue rollup by category.
type CategoryCounts struct {
	Functionality int `json:"functionality"`
	Accessibility int `json:"accessibility"`
	Performance   int `json:"performance"`
	SEO           int `json:"seo"`
	UX            int `json:"ux"`
	Security      int `json:"security"`
}

// Report is the final aggregated result of a test.
type Report struct {
	TestID           string         `json:"testId"`
	BaseURL          string         `json:"baseUrl"`
	TotalPages       int            `json:"totalPages"`
	TotalIssues      int            `json:"totalIssues"`
	IssuesBySeverity SeverityCounts `json:"issuesBySeverity"`
	IssuesByCategory CategoryCounts `json:"issuesByCategory"`
	Issues           []Issue        `json:"issues"`
	Summary          string         `json:"summary"`
	TestDuration     int64          `json:"testDuration"`
}

// Build aggregates a completed session. Sessions still running, or ended in
// error, cannot be reported.
func Build(s *session.Session) (*Report, error) {
	if s.Status != session.StatusComplete {
		return nil, fmt.Errorf("report: session %s is %s, not complete", s.TestID, s.Status)
	}

	r := &Report{
		TestID:     s.TestID,
		BaseURL:    s.BaseURL,
		TotalPages: len(s.Pages),
		Issues:     []Issue{},
	}
	if !s.EndTime.IsZero() {
		r.TestDuration = s.EndTime.Sub(s.StartTime).Milliseconds()
	}

	n := 0
	addIssue := func(i Issue) {
		i.ID = fmt.Sprintf("issue_%d", n)
		n++
		r.Issues = append(r.Issues, i)
		r.countIssue(i)
	}

	for _, p := range s.Pages {
		if p.StatusCode == 0 {
			addIssue(Issue{
				Title:          "Page Failed to Load",
				Description:    "Unable to fetch the page content. This could indicate network issues or server problems.",
				Severity:       inspect.SeverityCritical,
				Category:       inspect.CategoryFunctionality,
				PageURL:        p.URL,
				PageTitle:      p.Title,
				Recommendation: "Check server configuration and ensure the page is accessible.",
			})
		}
		for _, f := range p.Findings {
			addIssue(Issue{
				Title:            f.Title,
				Description:      f.Detail,
				Severity:         f.Severity,
				Category:         f.Category,
				PageURL:          p.URL,
				PageTitle:        p.Title,
				Recommendation:   f.Recommendation,
				AffectedElements: f.AffectedElements,
			})
		}
		if p.StatusCode == 200 && len(p.Links) == 0 {
			addIssue(Issue{
				Title:          "No Internal Links Found",
				Description:    "Page has no internal links, which may indicate poor navigation or a dead-end page.",
				Severity:       inspect.SeverityLow,
				Category:       inspect.CategoryUX,
				PageURL:        p.URL,
				PageTitle:      p.Title,
				Recommendation: "Add navigation links to help users explore your site and improve SEO.",
			})
		}
	}

	r.TotalIssues = len(r.Issues)
	r.Summary = summarize(r)
	return r, nil
}

func (r *Report) countIssue(i Issue) {
	switch i.Severity {
	case inspect.SeverityCritical:
		r.IssuesBySeverity.Critical++
	case inspect.SeverityHigh:
		r.IssuesBySeverity.High++
	case inspect.SeverityMedium:
		r.IssuesBySeverity.Medium++
	case inspect.SeverityLow:
		r.IssuesBySeverity.Low++
	}
	switch i.Category {
	case inspect.CategoryFunctionality:
		r.IssuesByCategory.Functionality++
	case inspect.CategoryAccessibility:
		r.IssuesByCategory.Accessibility++
	case inspect.CategoryPerformance:
		r.IssuesByCategory.Performance++
	case inspect.CategorySEO:
		r.IssuesByCategory.SEO++
	case inspect.CategoryUX:
		r.IssuesByCategory.UX++
	case inspect.CategorySecurity:
		r.IssuesByCategory.Security++
	}
}

func summarize(r *Report) string {
	if r.TotalIssues == 0 {
		return fmt.Sprintf("Great news! We tested %d pages and found no significant issues. Your website appears to be in excellent shape.", r.TotalPages)
	}
	if c := r.IssuesBySeverity.Critical; c > 0 {
		return fmt.Sprintf("We found %d issues across %d pages, including %d critical %s that require immediate attention. Focus on resolving critical issues first to ensure your website functions properly.",
			r.TotalIssues, r.TotalPages, c, plural(c, "issue", "issues"))
	}
	if h := r.IssuesBySeverity.High; h > 0 {
		return fmt.Sprintf("We found %d issues across %d pages, including %d high-priority %s. Addressing these will significantly improve your website's quality and user experience.",
			r.TotalIssues, r.TotalPages, h, plural(h, "issue", "issues"))
	}
	return fmt.Sprintf("We found %d minor issues across %d pages. While none are critical, addressing these will help polish your website and improve the overall user experience.",
		r.TotalIssues, r.TotalPages)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
