// Package render abstracts the page-rendering capability the scrapers
// depend on. Rendering javascript-heavy storefronts is an external
// concern: anything that can produce a final DOM snapshot and the
// cookies a real browser visit would have can back the interface.
package render

import (
	"context"
	"net/url"
)

// Snapshot is the outcome of rendering one URL.
type Snapshot struct {
	HTML     string
	FinalURL string
	// CookieHeader is the "name=value; name2=value2" form of the
	// cookies held after the page settled, ready for a Cookie header.
	CookieHeader string
}

type Renderer interface {
	Render(ctx context.Context, url string) (Snapshot, error)
}

// FormPoster is implemented by renderers that can also submit a
// form-encoded POST on the same session. Zone selection endpoints are
// the main user: the storefront expects the selection as a form POST,
// and the resulting cookies have to land in the same jar later renders
// read from.
type FormPoster interface {
	PostForm(ctx context.Context, url string, form url.Values) error
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(ctx context.Context, url string) (Snapshot, error)

func (f RendererFunc) Render(ctx context.Context, url string) (Snapshot, error) {
	return f(ctx, url)
}
