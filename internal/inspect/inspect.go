// Package inspect runs rule-based checks against fetched HTML and emits
// structured findings. Selector-level checks go through goquery; the raw
// markup is also scanned once with the html tokenizer for attribute-level
// counts that selectors cannot express cheaply.
package inspect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Check thresholds. Counts at or below a limit are considered normal.
const (
	inlineStyleLimit      = 10
	smallFontPx           = 12
	largeInlineScriptSize = 10000
	externalScriptLimit   = 15
	syncScriptLimit       = 3
	stylesheetLimit       = 5
	undimensionedImgLimit = 3
	domSizeLimit          = 1500
	inlineEventLimit      = 5
	softBodyScan          = 5000
	metaDescMin           = 120
	metaDescMax           = 160
)

var fontSizeRe = regexp.MustCompile(`font-size:\s*([0-9]+)px`)

// Inspect runs every check against the page markup and returns the findings
// in a stable order. statusCode drives the HTTP error and soft-404 checks.
func Inspect(rawHTML string, statusCode int) []Finding {
	var findings []Finding

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		doc = nil
	}
	scan := scanMarkup(rawHTML)

	findings = appendFunctionality(findings, doc, rawHTML, scan, statusCode)
	if doc != nil {
		findings = appendAccessibility(findings, doc)
		findings = appendSEO(findings, doc)
		findings = appendUX(findings, doc, rawHTML)
		findings = appendPerformance(findings, doc, scan)
		findings = appendSecurity(findings, doc, scan)
	}
	return findings
}

// === Functionality ===

func appendFunctionality(findings []Finding, doc *goquery.Document, rawHTML string, scan markupScan, statusCode int) []Finding {
	if statusCode >= 400 {
		sev := SeverityHigh
		rec := "Fix broken links pointing at this URL or redirect it to a valid page."
		if statusCode >= 500 {
			sev = SeverityCritical
			rec = "Investigate server-side errors and ensure the page loads correctly."
		}
		findings = append(findings, Finding{
			Code:           "http-error",
			Title:          fmt.Sprintf("HTTP %d Error", statusCode),
			Detail:         fmt.Sprintf("Page returned HTTP status code %d, indicating the page is not accessible.", statusCode),
			Severity:       sev,
			Category:       CategoryFunctionality,
			Recommendation: rec,
		})
	}

	if statusCode == 200 && isSoft404(doc, rawHTML) {
		findings = append(findings, Finding{
			Code:           "soft-404",
			Title:          "Soft 404 Page",
			Detail:         "Page returns 200 but appears to show error content",
			Severity:       SeverityHigh,
			Category:       CategoryFunctionality,
			Recommendation: "Return a real 404 status for missing pages and fix the links that lead here.",
		})
	}

	if doc == nil {
		return findings
	}

	if n := doc.Find("a:not([href])").Length(); n > 0 {
		findings = append(findings, Finding{
			Code:           "link-missing-href",
			Title:          "Links Missing Href",
			Detail:         fmt.Sprintf("%d links missing href attribute", n),
			Severity:       SeverityMedium,
			Category:       CategoryFunctionality,
			Recommendation: "Give every anchor a valid href or replace it with a button element.",
			AffectedElements: "Links",
		})
	}
	if n := doc.Find("form:not([action])").Length(); n > 0 {
		findings = append(findings, Finding{
			Code:           "form-missing-action",
			Title:          "Forms Missing Action",
			Detail:         fmt.Sprintf("%d forms missing action attribute", n),
			Severity:       SeverityMedium,
			Category:       CategoryFunctionality,
			Recommendation: "Set an explicit action URL on every form.",
			AffectedElements: "Forms",
		})
	}
	if n := doc.Find("button:not([type])").Length(); n > 0 {
		findings = append(findings, Finding{
			Code:           "button-missing-type",
			Title:          "Buttons Missing Type",
			Detail:         fmt.Sprintf("%d buttons missing type attribute", n),
			Severity:       SeverityLow,
			Category:       CategoryFunctionality,
			Recommendation: "Add type=\"button\" or type=\"submit\" to every button to avoid accidental form submits.",
			AffectedElements: "Buttons",
		})
	}
	if n := doc.Find("input:not([type])").Length(); n > 0 {
		findings = append(findings, Finding{
			Code:           "input-missing-type",
			Title:          "Inputs Missing Type",
			Detail:         fmt.Sprintf("%d inputs missing type attribute", n),
			Severity:       SeverityLow,
			Category:       CategoryFunctionality,
			Recommendation: "Declare an explicit type on every input element.",
			AffectedElements: "Forms",
		})
	}
	if n := doc.Find("font, center, marquee, blink, strike, big, tt").Length(); n > 0 {
		findings = append(findings, Finding{
			Code:           "deprecated-tags",
			Title:          "Deprecated HTML Tags",
			Detail:         fmt.Sprintf("%d deprecated HTML tags found", n),
			Severity:       SeverityLow,
			Category:       CategoryFunctionality,
			Recommendation: "Replace deprecated tags with semantic markup styled via CSS.",
		})
	}
	if scan.brokenImgSrc > 0 {
		findings = append(findings, Finding{
			Code:           "broken-image-src",
			Title:          "Broken Image Sources",
			Detail:         "Potentially broken image sources detected",
			Severity:       SeverityMedium,
			Category:       CategoryFunctionality,
			Recommendation: "Fix image source URLs to point at valid image files.",
			AffectedElements: "Images",
		})
	}
	if strings.Contains(rawHTML, "Uncaught") || strings.Contains(rawHTML, "TypeError") || strings.Contains(rawHTML, "ReferenceError") {
		findings = append(findings, Finding{
			Code:           "js-error-text",
			Title:          "JavaScript Error Text",
			Detail:         "JavaScript error messages found in page source",
			Severity:       SeverityHigh,
			Category:       CategoryFunctionality,
			Recommendation: "Review the browser console and fix JavaScript errors.",
		})
	}
	invalidSrc := false
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if strings.Contains(src, "undefined") || strings.Contains(src, "null") {
			invalidSrc = true
			return false
		}
		return true
	})
	if invalidSrc {
		findings = append(findings, Finding{
			Code:           "invalid-script-src",
			Title:          "Invalid Script Source",
			Detail:         "Script tag with invalid source detected",
			Severity:       SeverityHigh,
			Category:       CategoryFunctionality,
			Recommendation: "Fix script tag sources to point at valid JavaScript files.",
		})
	}
	return findings
}

// isSoft404 mirrors the crawl-time heuristic: an error-looking title, or an
// error heading near the top of the body, on a page that returned 200.
func isSoft404(doc *goquery.Document, rawHTML string) bool {
	title := ""
	if doc != nil {
		title = strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	}
	if strings.Contains(title, "404") && strings.Contains(title, "not found") {
		return true
	}
	if title == "404" || title == "not found" {
		return true
	}
	body := rawHTML
	if i := strings.Index(strings.ToLower(rawHTML), "<body"); i >= 0 {
		body = rawHTML[i:]
	}
	if len(body) > softBodyScan {
		body = body[:softBodyScan]
	}
	return strings.Contains(body, "<h1>404</h1>") || strings.Contains(body, "<h1>Not Found</h1>")
}

// === Accessibility ===

func appendAccessibility(findings []Finding, doc *goquery.Document) []Finding {
	if n := doc.Find("img:not([alt])").Length(); n > 0 {
		findings = append(findings, Finding{
			Code:           "img-missing-alt",
			Title:          "Missing Image Alt Text",
			Detail:         fmt.Sprintf("%d images missing alt text", n),
			Severity:       SeverityMedium,
			Category:       CategoryAccessibility,
			Recommendation: "Add descriptive alt text to all images for screen reader users and SEO benefits.",
			AffectedElements: "Images",
		})
	}
	inputs := doc.Find("input").Length()
	labels := doc.Find("label").Length()
	if inputs > 0 && inputs > labels {
		findings = append(findings, Finding{
			Code:           "input-label-mismatch",
			Title:          "Inputs Without Labels",
			Detail:         fmt.Sprintf("%d form inputs may be missing labels", inputs-labels),
			Severity:       SeverityMedium,
			Category:       CategoryAccessibility,
			Recommendation: "Associate every input with a label element or aria-label.",
			AffectedElements: "Forms",
		})
	}
	unlabeled := 0
	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("aria-label"); ok {
			return
		}
		if strings.TrimSpace(s.Text()) == "" {
			unlabeled++
		}
	})
	if unlabeled > 0 {
		findings = append(findings, Finding{
			Code:           "button-missing-label",
			Title:          "Buttons Without Accessible Labels",
			Detail:         fmt.Sprintf("%d buttons may be missing accessible labels", unlabeled),
			Severity:       SeverityMedium,
			Category:       CategoryAccessibility,
			Recommendation: "Give icon-only buttons an aria-label or visible text.",
			AffectedElements: "Buttons",
		})
	}
	switch h1s := doc.Find("h1").Length(); {
	case h1s == 0:
		findings = append(findings, Finding{
			Code:           "h1-missing",
			Title:          "Missing H1 Heading",
			Detail:         "Missing H1 heading",
			Severity:       SeverityMedium,
			Category:       CategoryAccessibility,
			Recommendation: "Add a single H1 heading describing the page content.",
		})
	case h1s > 1:
		findings = append(findings, Finding{
			Code:           "h1-multiple",
			Title:          "Multiple H1 Headings",
			Detail:         fmt.Sprintf("Multiple H1 headings found (%d) - should only have one per page", h1s),
			Severity:       SeverityLow,
			Category:       CategoryAccessibility,
			Recommendation: "Keep one H1 per page and demote the rest to H2.",
		})
	}
	if doc.Find("html[lang]").Length() == 0 {
		findings = append(findings, Finding{
			Code:           "html-missing-lang",
			Title:          "Missing Language Attribute",
			Detail:         "Missing language attribute on HTML tag",
			Severity:       SeverityMedium,
			Category:       CategoryAccessibility,
			Recommendation: "Add a lang attribute to the html element.",
		})
	}
	return findings
}

// === SEO ===

func appendSEO(findings []Finding, doc *goquery.Document) []Finding {
	if strings.TrimSpace(doc.Find("title").First().Text()) == "" {
		findings = append(findings, Finding{
			Code:           "title-missing",
			Title:          "Missing Page Title",
			Detail:         "Page is missing a title tag, which is crucial for SEO and user experience.",
			Severity:       SeverityHigh,
			Category:       CategorySEO,
			Recommendation: "Add a descriptive, unique title tag to every page (50-60 characters recommended).",
		})
	}
	desc := doc.Find(`meta[name="description"]`).First()
	if desc.Length() == 0 {
		findings = append(findings, Finding{
			Code:           "meta-description-missing",
			Title:          "Missing Meta Description",
			Detail:         "Missing meta description",
			Severity:       SeverityMedium,
			Category:       CategorySEO,
			Recommendation: "Add a meta description of 120-160 characters summarizing the page.",
		})
	} else if content, ok := desc.Attr("content"); ok && content != "" {
		// Empty content gets no length finding.
		switch n := len(content); {
		case n < metaDescMin:
			findings = append(findings, Finding{
				Code:           "meta-description-length",
				Title:          "Meta Description Too Short",
				Detail:         fmt.Sprintf("Meta description too short (%d chars, recommended 120-160)", n),
				Severity:       SeverityLow,
				Category:       CategorySEO,
				Recommendation: "Expand the meta description to 120-160 characters.",
			})
		case n > metaDescMax:
			findings = append(findings, Finding{
				Code:           "meta-description-length",
				Title:          "Meta Description Too Long",
				Detail:         fmt.Sprintf("Meta description too long (%d chars, recommended 120-160)", n),
				Severity:       SeverityLow,
				Category:       CategorySEO,
				Recommendation: "Trim the meta description to 120-160 characters.",
			})
		}
	}
	ogTitle := doc.Find(`meta[property="og:title"]`).Length() > 0
	ogDesc := doc.Find(`meta[property="og:description"]`).Length() > 0
	ogImage := doc.Find(`meta[property="og:image"]`).Length() > 0
	if !ogTitle || !ogDesc || !ogImage {
		findings = append(findings, Finding{
			Code:           "og-tags-missing",
			Title:          "Missing Open Graph Tags",
			Detail:         "Missing Open Graph tags for social media sharing",
			Severity:       SeverityLow,
			Category:       CategorySEO,
			Recommendation: "Add og:title, og:description and og:image meta tags.",
		})
	}
	if doc.Find(`link[rel="canonical"]`).Length() == 0 {
		findings = append(findings, Finding{
			Code:           "canonical-missing",
			Title:          "Missing Canonical URL",
			Detail:         "Missing canonical URL",
			Severity:       SeverityLow,
			Category:       CategorySEO,
			Recommendation: "Add a rel=\"canonical\" link to prevent duplicate content issues.",
		})
	}
	return findings
}

// === UX ===

func appendUX(findings []Finding, doc *goquery.Document, rawHTML string) []Finding {
	if doc.Find(`meta[name="viewport"]`).Length() == 0 {
		findings = append(findings, Finding{
			Code:           "viewport-missing",
			Title:          "Missing Viewport Meta Tag",
			Detail:         "Missing viewport meta tag (mobile responsiveness issue)",
			Severity:       SeverityHigh,
			Category:       CategoryUX,
			Recommendation: "Add <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"> to the head.",
		})
	}
	small := 0
	for _, m := range fontSizeRe.FindAllStringSubmatch(rawHTML, -1) {
		if px, err := strconv.Atoi(m[1]); err == nil && px < smallFontPx {
			small++
		}
	}
	if small > 0 {
		findings = append(findings, Finding{
			Code:           "small-font",
			Title:          "Very Small Text",
			Detail:         fmt.Sprintf("%d instances of very small text (< 12px) detected", small),
			Severity:       SeverityLow,
			Category:       CategoryUX,
			Recommendation: "Keep body text at 12px or larger for readability.",
		})
	}
	empty := 0
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() == 0 && strings.TrimSpace(s.Text()) == "" {
			empty++
		}
	})
	if empty > 0 {
		findings = append(findings, Finding{
			Code:           "empty-links",
			Title:          "Empty Links",
			Detail:         fmt.Sprintf("%d empty links found", empty),
			Severity:       SeverityMedium,
			Category:       CategoryUX,
			Recommendation: "Remove empty links or add meaningful content and labels.",
			AffectedElements: "Links",
		})
	}
	return findings
}

// === Performance ===

func appendPerformance(findings []Finding, doc *goquery.Document, scan markupScan) []Finding {
	if scan.styleAttrs > inlineStyleLimit {
		findings = append(findings, Finding{
			Code:           "inline-styles-excessive",
			Title:          "Excessive Inline Styles",
			Detail:         fmt.Sprintf("Excessive inline styles detected (%d instances)", scan.styleAttrs),
			Severity:       SeverityLow,
			Category:       CategoryPerformance,
			Recommendation: "Move inline styles to CSS files for better maintainability and caching.",
		})
	}
	largeInline := 0
	doc.Find("script:not([src])").Each(func(_ int, s *goquery.Selection) {
		if len(s.Text()) > largeInlineScriptSize {
			largeInline++
		}
	})
	if largeInline > 0 {
		findings = append(findings, Finding{
			Code:           "large-inline-scripts",
			Title:          "Large Inline Scripts",
			Detail:         fmt.Sprintf("%d large inline scripts detected", largeInline),
			Severity:       SeverityMedium,
			Category:       CategoryPerformance,
			Recommendation: "Move large scripts to external files so they can be cached.",
		})
	}
	if n := doc.Find("script[src]").Length(); n > externalScriptLimit {
		findings = append(findings, Finding{
			Code:           "external-scripts-excessive",
			Title:          "Too Many External Scripts",
			Detail:         fmt.Sprintf("%d external scripts loaded", n),
			Severity:       SeverityLow,
			Category:       CategoryPerformance,
			Recommendation: "Bundle scripts or remove unused ones to cut request overhead.",
		})
	}
	if n := doc.Find("script[src]:not([async]):not([defer])").Length(); n > syncScriptLimit {
		findings = append(findings, Finding{
			Code:           "scripts-no-async-defer",
			Title:          "Scripts Without Async or Defer",
			Detail:         fmt.Sprintf("%d scripts without async/defer attributes", n),
			Severity:       SeverityLow,
			Category:       CategoryPerformance,
			Recommendation: "Load non-critical scripts with async or defer.",
		})
	}
	blocking := 0
	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, s *goquery.Selection) {
		if media, _ := s.Attr("media"); media != "print" {
			blocking++
		}
	})
	if blocking > stylesheetLimit {
		findings = append(findings, Finding{
			Code:           "render-blocking-css",
			Title:          "Render-Blocking Stylesheets",
			Detail:         fmt.Sprintf("%d render-blocking stylesheets", blocking),
			Severity:       SeverityLow,
			Category:       CategoryPerformance,
			Recommendation: "Combine stylesheets or inline critical CSS.",
		})
	}
	undimensioned := 0
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		_, hasW := s.Attr("width")
		_, hasH := s.Attr("height")
		if !hasW && !hasH {
			undimensioned++
		}
	})
	if undimensioned > undimensionedImgLimit {
		findings = append(findings, Finding{
			Code:           "img-missing-dimensions",
			Title:          "Images Without Dimensions",
			Detail:         fmt.Sprintf("%d images without width/height attributes", undimensioned),
			Severity:       SeverityLow,
			Category:       CategoryPerformance,
			Recommendation: "Set explicit width and height to avoid layout shift.",
			AffectedElements: "Images",
		})
	}
	if scan.totalTags > domSizeLimit {
		findings = append(findings, Finding{
			Code:           "dom-size-large",
			Title:          "Large DOM Size",
			Detail:         fmt.Sprintf("Large DOM size detected (%d elements)", scan.totalTags),
			Severity:       SeverityMedium,
			Category:       CategoryPerformance,
			Recommendation: "Simplify the page structure to reduce render and memory cost.",
		})
	}
	if n := doc.Find("head script[src]:not([async]):not([defer])").Length(); n > 0 {
		findings = append(findings, Finding{
			Code:           "sync-scripts-in-head",
			Title:          "Synchronous Scripts In Head",
			Detail:         fmt.Sprintf("%d synchronous scripts in document head", n),
			Severity:       SeverityMedium,
			Category:       CategoryPerformance,
			Recommendation: "Load head scripts with async or defer, or move them before </body>.",
		})
	}
	return findings
}

// === Security ===

func appendSecurity(findings []Finding, doc *goquery.Document, scan markupScan) []Finding {
	if scan.httpResources > 0 {
		findings = append(findings, Finding{
			Code:           "mixed-content",
			Title:          "Mixed Content",
			Detail:         fmt.Sprintf("%d resources loaded over insecure HTTP", scan.httpResources),
			Severity:       SeverityHigh,
			Category:       CategorySecurity,
			Recommendation: "Serve all page resources over HTTPS.",
		})
	}
	if scan.inlineEvents > inlineEventLimit {
		findings = append(findings, Finding{
			Code:           "inline-event-handlers",
			Title:          "Inline Event Handlers",
			Detail:         fmt.Sprintf("%d inline event handlers detected (potential XSS risk)", scan.inlineEvents),
			Severity:       SeverityMedium,
			Category:       CategorySecurity,
			Recommendation: "Attach event listeners from scripts instead of inline attributes.",
		})
	}
	if n := doc.Find(`input[type="password"]:not([autocomplete])`).Length(); n > 0 {
		findings = append(findings, Finding{
			Code:           "password-no-autocomplete",
			Title:          "Password Fields Without Autocomplete",
			Detail:         fmt.Sprintf("%d password fields without autocomplete attribute", n),
			Severity:       SeverityLow,
			Category:       CategorySecurity,
			Recommendation: "Set autocomplete=\"current-password\" or \"new-password\" on password inputs.",
			AffectedElements: "Forms",
		})
	}
	if n := doc.Find(`form[action^="http://"]`).Length(); n > 0 {
		findings = append(findings, Finding{
			Code:           "form-insecure-action",
			Title:          "Forms Submitting Over HTTP",
			Detail:         fmt.Sprintf("%d forms submitting to an insecure HTTP endpoint", n),
			Severity:       SeverityHigh,
			Category:       CategorySecurity,
			Recommendation: "Submit all forms over HTTPS.",
			AffectedElements: "Forms",
		})
	}
	return findings
}

// === Raw markup scan ===

// markupScan holds attribute-level counts gathered in a single tokenizer
// pass over the raw markup.
type markupScan struct {
	totalTags     int
	styleAttrs    int
	inlineEvents  int
	httpResources int
	brokenImgSrc  int
}

var inlineEventAttrs = map[string]bool{
	"onclick":     true,
	"onload":      true,
	"onerror":     true,
	"onmouseover": true,
}

func scanMarkup(rawHTML string) markupScan {
	var s markupScan
	tz := html.NewTokenizer(strings.NewReader(rawHTML))
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return s
		case html.StartTagToken, html.SelfClosingTagToken:
			s.totalTags++
			name, hasAttr := tz.TagName()
			isImg := string(name) == "img"
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = tz.TagAttr()
				k := string(key)
				v := string(val)
				switch {
				case k == "style":
					s.styleAttrs++
				case inlineEventAttrs[k]:
					s.inlineEvents++
				}
				if k == "src" || k == "href" {
					if strings.HasPrefix(v, "http://") {
						s.httpResources++
					}
				}
				if isImg && k == "src" {
					if strings.HasPrefix(v, "data:image/svg+xml") || strings.HasPrefix(v, "#") || strings.HasPrefix(v, "javascript:") {
						s.brokenImgSrc++
					}
				}
			}
		case html.EndTagToken:
			s.totalTags++
		}
	}
}
