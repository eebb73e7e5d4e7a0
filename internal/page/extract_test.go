package page

import (
	"net/url"
	"strings"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return u
}

// === Title extraction ===

func TestExtractTitle(t *testing.T) {
	base := mustParse(t, "https://example.com/")
	tests := []struct {
		name string
		html string
		want string
	}{
		{"normal title", `<html><head><title>  My Page  </title></head><body></body></html>`, "My Page"},
		{"missing title", `<html><head></head><body></body></html>`, "Untitled"},
		{"empty title", `<html><head><title>   </title></head><body></body></html>`, "Untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Extract(tt.html, base, base)
			if err != nil {
				t.Fatal(err)
			}
			if f.Title != tt.want {
				t.Errorf("title = %q, want %q", f.Title, tt.want)
			}
		})
	}
}

// === Link extraction ===

func TestExtractLinks(t *testing.T) {
	base := mustParse(t, "https://example.com/blog/")
	html := `<html><head><title>T</title></head><body>
	<a href="/about">About</a>
	<a href="post-1">First post</a>
	<a href="https://example.com/contact#team">Contact</a>
	<a href="https://other.example.org/away">External</a>
	<a href="mailto:hi@example.com">Mail</a>
	<a href="tel:+123">Call</a>
	<a href="javascript:void(0)">JS</a>
	<a href="#section">Anchor</a>
	<a href="/styles/site.css">Styles</a>
	<a href="/about">About again</a>
	</body></html>`
	f, err := Extract(html, base, base)
	if err != nil {
		t.Fatal(err)
	}

	want := []Link{
		{URL: "https://example.com/about", Text: "About"},
		{URL: "https://example.com/blog/post-1", Text: "First post"},
		{URL: "https://example.com/contact", Text: "Contact"},
	}
	if len(f.Links) != len(want) {
		t.Fatalf("got %d links, want %d: %+v", len(f.Links), len(want), f.Links)
	}
	for i, w := range want {
		if f.Links[i] != w {
			t.Errorf("link %d = %+v, want %+v", i, f.Links[i], w)
		}
	}
}

func TestExtractResolvesAgainstPageURL(t *testing.T) {
	origin := mustParse(t, "https://example.com/")
	pageURL := mustParse(t, "https://example.com/docs/")
	html := `<html><head><title>Docs</title></head><body>
	<a href="guide.html">Guide</a>
	<a href="../pricing">Pricing</a>
	</body></html>`
	f, err := Extract(html, pageURL, origin)
	if err != nil {
		t.Fatal(err)
	}

	want := []Link{
		{URL: "https://example.com/docs/guide.html", Text: "Guide"},
		{URL: "https://example.com/pricing", Text: "Pricing"},
	}
	if len(f.Links) != len(want) {
		t.Fatalf("got %d links, want %d: %+v", len(f.Links), len(want), f.Links)
	}
	for i, w := range want {
		if f.Links[i] != w {
			t.Errorf("link %d = %+v, want %+v", i, f.Links[i], w)
		}
	}
}

// === Origin comparison ===

func TestExtractOriginFiltering(t *testing.T) {
	origin := mustParse(t, "http://127.0.0.1:8080/")
	html := `<html><head><title>T</title></head><body>
	<a href="http://127.0.0.1:8080/kept">Kept</a>
	<a href="http://127.0.0.1:9090/other-port">Other port</a>
	<a href="https://127.0.0.1:8080/other-scheme">Other scheme</a>
	</body></html>`
	f, err := Extract(html, origin, origin)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Links) != 1 || f.Links[0].URL != "http://127.0.0.1:8080/kept" {
		t.Errorf("links = %+v, want only the same-port same-scheme link", f.Links)
	}
}

func TestSameOrigin(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"https://example.com/", "https://example.com/about", true},
		{"https://Example.COM/", "https://example.com/", true},
		{"https://example.com/", "http://example.com/", false},
		{"http://example.com:8080/", "http://example.com:9090/", false},
		{"http://example.com:80/", "http://example.com/", true},
		{"https://example.com:443/", "https://example.com/", true},
		{"https://example.com/", "https://sub.example.com/", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, b := mustParse(t, tt.a), mustParse(t, tt.b)
			if got := SameOrigin(a, b); got != tt.want {
				t.Errorf("SameOrigin(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestExtractMetaRefs(t *testing.T) {
	base := mustParse(t, "https://example.com/")
	html := `<html><head><title>T</title>
	<link rel="alternate" href="https://example.com/landing">
	<link rel="next" href="/chapter-2.html">
	<link rel="stylesheet" href="/site.css">
	<link rel="icon" href="/favicon.ico">
	<link rel="alternate" href="https://other.example.org/page">
	</head><body><a href="/landing">Landing</a></body></html>`
	f, err := Extract(html, base, base)
	if err != nil {
		t.Fatal(err)
	}

	// /landing already appears as an anchor; assets and foreign origins are
	// dropped, so only the .html ref remains.
	want := []string{"https://example.com/chapter-2.html"}
	if len(f.MetaRefs) != 1 || f.MetaRefs[0] != want[0] {
		t.Errorf("metaRefs = %v, want %v", f.MetaRefs, want)
	}
}

// === Structure extraction ===

func TestExtractStructure(t *testing.T) {
	base := mustParse(t, "https://example.com/")
	html := `<html><head><title>T</title></head><body>
	<h1>Welcome</h1>
	<h2>  Features  </h2>
	<h3></h3>
	<button>Go</button>
	<button type="submit">Send</button>
	<input type="button" value="Click">
	<img src="/hero.png"><img src="/team.jpg"><img alt="no src">
	<form action="/signup">
		<input type="hidden" name="csrf">
		<input type="email" name="email">
		<input type="password" name="pw">
		<input type="submit" value="Sign up">
	</form>
	<form action="/empty">
		<input type="hidden" name="only-hidden">
	</form>
	<form action="/search">
		<input type="text" name="q">
		<button type="submit">Search</button>
	</form>
	</body></html>`
	f, err := Extract(html, base, base)
	if err != nil {
		t.Fatal(err)
	}
	st := f.Structure

	if st.Buttons != 4 {
		t.Errorf("buttons = %d, want 4", st.Buttons)
	}
	if got := []string{"Welcome", "Features"}; len(st.Headings) != 2 || st.Headings[0] != got[0] || st.Headings[1] != got[1] {
		t.Errorf("headings = %v, want %v", st.Headings, got)
	}
	if got := []string{"/hero.png", "/team.jpg"}; len(st.Images) != 2 || st.Images[0] != got[0] || st.Images[1] != got[1] {
		t.Errorf("images = %v, want %v", st.Images, got)
	}
	if len(st.Forms) != 2 {
		t.Fatalf("forms = %+v, want 2 (hidden-only form skipped)", st.Forms)
	}
	signup := st.Forms[0]
	if len(signup.Inputs) != 2 || signup.Inputs[0] != "email" || signup.Inputs[1] != "password" {
		t.Errorf("signup inputs = %v, want [email password]", signup.Inputs)
	}
	if !signup.HasSubmit {
		t.Error("signup form should report a submit control")
	}
	search := st.Forms[1]
	if len(search.Inputs) != 1 || search.Inputs[0] != "text" {
		t.Errorf("search inputs = %v, want [text]", search.Inputs)
	}
	if !search.HasSubmit {
		t.Error("search form should detect its submit button")
	}
}

// === Link text normalization ===

func TestLinkText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trimmed", "  About us  ", "About us"},
		{"collapsed whitespace", "About\n\t  us", "About us"},
		{"empty", "   ", "(no text)"},
		{"capped at fifty", strings.Repeat("a", 60), strings.Repeat("a", 50)},
		{"exactly fifty", strings.Repeat("b", 50), strings.Repeat("b", 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinkText(tt.in); got != tt.want {
				t.Errorf("LinkText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// === Crawlability filter ===

func TestCrawlable(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/", true},
		{"https://example.com/about", true},
		{"https://example.com/post.html", true},
		{"https://example.com/app.js", false},
		{"https://example.com/site.CSS", false},
		{"https://example.com/logo.svg", false},
		{"https://example.com/font.woff2", false},
		{"https://example.com/data.json", false},
		{"https://example.com/sitemap.xml", false},
		{"https://example.com/wp-json/oembed/1.0/embed", false},
		{"https://example.com/blog/feed/", false},
		{"https://example.com/feed", false},
		{"https://example.com/feedback", true},
		{"https://example.com/xmlrpc.php", false},
		{"https://example.com/page?format=xml", false},
		{"https://example.com/page?q=1", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			if err != nil {
				t.Fatal(err)
			}
			if got := Crawlable(u); got != tt.want {
				t.Errorf("Crawlable(%s) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
