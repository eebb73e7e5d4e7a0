// Package page extracts crawl-relevant features from fetched HTML: the
// title, same-origin outbound links with their anchor text, and candidate
// URLs referenced from meta tags.
package page

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	linkTextLimit = 50
	noTextLabel   = "(no text)"
)

// Link is one same-origin outbound link found on a page.
type Link struct {
	URL  string
	Text string
}

// Form summarizes one form's fillable controls: the types of its
// non-hidden, non-submit inputs and whether it carries a submit control.
type Form struct {
	Inputs    []string
	HasSubmit bool
}

// Structure counts the interactive and content elements on a page.
type Structure struct {
	Buttons  int
	Forms    []Form
	Images   []string
	Headings []string
}

// Features is what the extractor pulls from one page.
type Features struct {
	Title     string
	Links     []Link
	MetaRefs  []string
	Structure Structure
}

// Asset and machine-endpoint URLs that are never worth visiting.
var assetExtRe = regexp.MustCompile(`(?i)\.(css|js|jpg|jpeg|png|gif|svg|woff|woff2|ttf|ico|xml|json)$`)

// Extract parses rawHTML and returns the page features. Links are resolved
// against pageURL, restricted to origin's scheme and host, stripped of
// fragments, and filtered for crawlability. Duplicate targets are kept once,
// first anchor text wins.
func Extract(rawHTML string, pageURL, origin *url.URL) (*Features, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	f := &Features{Title: "Untitled"}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		f.Title = t
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u := resolveSameOrigin(href, pageURL, origin)
		if u == nil || !Crawlable(u) {
			return
		}
		link := u.String()
		if seen[link] {
			return
		}
		seen[link] = true
		f.Links = append(f.Links, Link{URL: link, Text: LinkText(s.Text())})
	})

	// Head link tags point at alternate pages, canonicals, and pagination;
	// worth visiting when they look like pages rather than assets.
	metaSeen := make(map[string]bool)
	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		u := resolveSameOrigin(s.AttrOr("href", ""), pageURL, origin)
		if u == nil || !metaRefKeep(u) || !Crawlable(u) {
			return
		}
		ref := u.String()
		if metaSeen[ref] || seen[ref] {
			return
		}
		metaSeen[ref] = true
		f.MetaRefs = append(f.MetaRefs, ref)
	})

	f.Structure = extractStructure(doc)

	return f, nil
}

// extractStructure collects the interactive element summary used for the
// action narration: buttons, fillable forms, image sources, heading texts.
func extractStructure(doc *goquery.Document) Structure {
	var st Structure

	st.Buttons = doc.Find("button").Length()
	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		if strings.EqualFold(s.AttrOr("type", ""), "button") {
			st.Buttons++
		}
	})

	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		var form Form
		s.Find("input").Each(func(_ int, in *goquery.Selection) {
			t := strings.ToLower(in.AttrOr("type", ""))
			switch t {
			case "submit":
				form.HasSubmit = true
			case "", "hidden":
			default:
				form.Inputs = append(form.Inputs, t)
			}
		})
		s.Find("button").Each(func(_ int, b *goquery.Selection) {
			if strings.EqualFold(b.AttrOr("type", ""), "submit") {
				form.HasSubmit = true
			}
		})
		// Forms with nothing to fill in are not worth narrating.
		if len(form.Inputs) > 0 {
			st.Forms = append(st.Forms, form)
		}
	})

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src := s.AttrOr("src", ""); src != "" {
			st.Images = append(st.Images, src)
		}
	})

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			st.Headings = append(st.Headings, t)
		}
	})

	return st
}

// LinkText normalizes anchor text for display: trimmed, capped at 50
// characters, with a placeholder for empty anchors.
func LinkText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return noTextLabel
	}
	if r := []rune(s); len(r) > linkTextLimit {
		return string(r[:linkTextLimit])
	}
	return s
}

// Crawlable reports whether a URL is worth fetching as a page. Static
// assets, feeds, and machine endpoints are skipped.
func Crawlable(u *url.URL) bool {
	path := u.Path
	if assetExtRe.MatchString(path) {
		return false
	}
	if strings.Contains(path, "/wp-json/oembed/") {
		return false
	}
	if strings.Contains(path, "/feed/") || strings.HasSuffix(path, "/feed") {
		return false
	}
	if strings.HasSuffix(path, "/xmlrpc.php") {
		return false
	}
	if strings.Contains(u.RawQuery, "format=xml") {
		return false
	}
	return true
}

// metaRefKeep accepts meta-tag URLs that plausibly point at pages rather
// than assets: .html, .htm, .php, or no extension at all.
func metaRefKeep(u *url.URL) bool {
	seg := u.Path
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	dot := strings.LastIndex(seg, ".")
	if dot < 0 {
		return true
	}
	switch strings.ToLower(seg[dot+1:]) {
	case "html", "htm", "php":
		return true
	}
	return false
}

// resolveSameOrigin resolves ref against pageURL and returns it with the
// fragment stripped, or nil if it is unusable or leaves origin.
func resolveSameOrigin(ref string, pageURL, origin *url.URL) *url.URL {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return nil
	}
	lower := strings.ToLower(ref)
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return nil
		}
	}
	u, err := pageURL.Parse(ref)
	if err != nil {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	if !SameOrigin(u, origin) {
		return nil
	}
	u.Fragment = ""
	return u
}

// SameOrigin reports whether two URLs share scheme, host, and port.
// Default ports are treated as equal to their explicit form.
func SameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && originHost(a) == originHost(b)
}

// originHost lowercases the host:port pair and drops redundant default ports.
func originHost(u *url.URL) string {
	host := strings.ToLower(u.Host)
	switch u.Scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}
	return host
}
