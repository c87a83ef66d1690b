package render

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

// HTTPRenderer fetches pages over plain HTTP through the API client
// transport. Pages that need script execution should use a
// browser-backed Renderer instead; the storefronts here ship their
// product markup server side, so a fetch is enough. It also satisfies
// FormPoster so zone-selection endpoints can be driven on the same
// cookie jar the renders use.
type HTTPRenderer struct {
	client *resty.Client
}

func NewHTTPRenderer(tracerName string) (*HTTPRenderer, error) {
	client, err := NewAPIClient("", tracerName)
	if err != nil {
		return nil, err
	}
	client.SetHeader("accept", "text/html,application/xhtml+xml")
	return &HTTPRenderer{client: client}, nil
}

func (r *HTTPRenderer) Render(ctx context.Context, pageURL string) (Snapshot, error) {
	res, err := r.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return Snapshot{}, fmt.Errorf("render %q: %w", pageURL, err)
	}
	if res.IsError() {
		return Snapshot{}, fmt.Errorf("render %q: status %d", pageURL, res.StatusCode())
	}

	finalURL := pageURL
	if raw := res.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}

	var cookies []string
	if raw := res.RawResponse; raw != nil && raw.Request != nil {
		if jar := r.client.GetClient().Jar; jar != nil {
			for _, cookie := range jar.Cookies(raw.Request.URL) {
				cookies = append(cookies, cookie.Name+"="+cookie.Value)
			}
		}
	}

	return Snapshot{
		HTML:         res.String(),
		FinalURL:     finalURL,
		CookieHeader: strings.Join(cookies, "; "),
	}, nil
}

func (r *HTTPRenderer) PostForm(ctx context.Context, postURL string, form url.Values) error {
	res, err := r.client.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		Post(postURL)
	if err != nil {
		return fmt.Errorf("post %q: %w", postURL, err)
	}
	if res.IsError() {
		return fmt.Errorf("post %q: status %d", postURL, res.StatusCode())
	}
	return nil
}
