package narrate

import (
	"testing"
	"time"

	"github.com/kaanbobac/digital-tester-twin/internal/session"
)

func TestNavigateDescriptions(t *testing.T) {
	tests := []struct {
		method session.DiscoveryMethod
		want   string
	}{
		{session.DiscoveryInitial, "Navigating to starting URL"},
		{session.DiscoveryMetaTag, "Following page reference found in meta tags"},
		{session.DiscoveryRedirect, "Following redirect"},
		{session.DiscoveryHTMLLink, `Clicking link "About us"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			a := Navigate("https://example.com/about", "https://example.com/", "About us", tt.method)
			if a.Description != tt.want {
				t.Errorf("description = %q, want %q", a.Description, tt.want)
			}
			if a.ID == "" {
				t.Error("action id not set")
			}
			if a.TargetURL != "https://example.com/about" {
				t.Errorf("targetUrl = %q", a.TargetURL)
			}
		})
	}
}

func TestPageLoadedStatus(t *testing.T) {
	ok := PageLoaded("https://example.com/", 200, 120*time.Millisecond)
	if ok.Status != StatusSuccess {
		t.Errorf("200 status = %s, want success", ok.Status)
	}
	if ok.Details != "120ms" {
		t.Errorf("details = %q, want 120ms", ok.Details)
	}
	bad := PageLoaded("https://example.com/missing", 404, time.Millisecond)
	if bad.Status != StatusWarning {
		t.Errorf("404 status = %s, want warning", bad.Status)
	}
}

func TestAnalyzed(t *testing.T) {
	clean := Analyzed("https://example.com/", 0)
	if clean.Status != StatusSuccess {
		t.Errorf("clean status = %s", clean.Status)
	}
	dirty := Analyzed("https://example.com/", 3)
	if dirty.Status != StatusWarning || dirty.Description != "Analyzed page structure, found 3 potential issues" {
		t.Errorf("dirty = %s / %q", dirty.Status, dirty.Description)
	}
}

func TestLinksFound(t *testing.T) {
	a := LinksFound("https://example.com/", 7)
	if a.Description != "Found 7 clickable links" {
		t.Errorf("description = %q", a.Description)
	}
	if a.Details != "Discovered 7 new pages to test" {
		t.Errorf("details = %q", a.Details)
	}
	if a.Type != "click" || a.Status != StatusSuccess {
		t.Errorf("type/status = %s/%s", a.Type, a.Status)
	}
}

func TestInteractiveElements(t *testing.T) {
	a := InteractiveElements("https://example.com/", 2, 1)
	if a.Description != "Testing interactive elements" {
		t.Errorf("description = %q", a.Description)
	}
	if a.Details != "Found 2 buttons and 1 forms" {
		t.Errorf("details = %q", a.Details)
	}
}

func TestUniqueIDs(t *testing.T) {
	a := CrawlFinished(5)
	b := CrawlFinished(5)
	if a.ID == b.ID {
		t.Error("actions should carry unique ids")
	}
}
