// Package screenshot produces a preview image reference for tested pages.
// Rendering real screenshots needs a browser; the default capturer emits a
// placeholder image URL built from the page title, which the report viewer
// resolves client side.
package screenshot

import (
	"context"
	"fmt"
	"net/url"
)

// Capturer produces an image reference for a page.
type Capturer interface {
	Capture(ctx context.Context, pageURL, title string) (string, error)
}

// Placeholder generates placeholder image URLs without touching the page.
type Placeholder struct {
	Width  int
	Height int
}

// NewPlaceholder returns a capturer with the standard preview dimensions.
func NewPlaceholder() *Placeholder {
	return &Placeholder{Width: 1200, Height: 600}
}

// Capture returns a placeholder URL describing the page.
func (p *Placeholder) Capture(_ context.Context, _ string, title string) (string, error) {
	query := url.QueryEscape(fmt.Sprintf("Screenshot of %s", title))
	return fmt.Sprintf("/placeholder.svg?height=%d&width=%d&query=%s", p.Height, p.Width, query), nil
}
