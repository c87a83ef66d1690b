package cruzverde

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/render"
	"medisearch-backend/lib/session"
)

var tracer = otel.Tracer("scrapers/cruzverde")

const invalidSessionMarker = "INVALID_SESSION"

// Client talks to the product-service API. All calls share one session
// manager, so a cookie expiring mid-batch costs one renewal for the
// whole batch, not one per request.
type Client struct {
	http     *resty.Client
	apiBase  string
	sessions *session.Manager
}

type ClientOptions struct {
	Http     *resty.Client
	Renderer render.Renderer
	// APIBaseURL overrides the production endpoint, mainly for tests
	APIBaseURL string
}

func NewClient(opts ClientOptions) *Client {
	apiBase := opts.APIBaseURL
	if apiBase == "" {
		apiBase = APIBaseURL
	}

	acquire := func(ctx context.Context) (string, error) {
		snapshot, err := opts.Renderer.Render(ctx, sessionSeedURL)
		if err != nil {
			return "", err
		}
		if snapshot.CookieHeader == "" {
			return "", fmt.Errorf("render of %s produced no cookies", sessionSeedURL)
		}
		return snapshot.CookieHeader, nil
	}

	return &Client{
		http:     opts.Http,
		apiBase:  apiBase,
		sessions: session.NewManager(catalog.SourceCruzVerde, acquire),
	}
}

// get runs one authenticated API call under the renew-once policy.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.sessions.Do(ctx, func(ctx context.Context, cred session.Credential) error {
		res, err := c.http.R().
			SetContext(ctx).
			SetHeader("Origin", BaseURL).
			SetHeader("Referer", BaseURL+"/").
			SetHeader("Cookie", cred.RawValue).
			Get(url)
		if err != nil {
			return err
		}
		if res.StatusCode() == http.StatusUnauthorized ||
			strings.Contains(res.String(), invalidSessionMarker) {
			return fmt.Errorf("%s: %w", url, session.ErrExpired)
		}
		if res.IsError() {
			return fmt.Errorf("%s: status %d", url, res.StatusCode())
		}
		body = res.Body()
		return nil
	})
	return body, err
}

// FetchProduct pulls the raw field bag for one product id.
func (c *Client) FetchProduct(ctx context.Context, localID string) (catalog.RawFields, error) {
	ctx, span := tracer.Start(ctx, "cruzverde:FetchProduct")
	defer span.End()

	url := fmt.Sprintf("%s/product-service/products/detail/%s?inventoryId=", c.apiBase, localID)
	body, err := c.get(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch product detail")
		return catalog.RawFields{}, err
	}
	return Extract(body), nil
}

// FetchZoneStock asks the detail endpoint for the same product keyed by
// an inventory zone, which scopes the stock field to that zone.
func (c *Client) FetchZoneStock(ctx context.Context, localID, zoneID string) (*int, error) {
	ctx, span := tracer.Start(ctx, "cruzverde:FetchZoneStock")
	defer span.End()

	url := fmt.Sprintf("%s/product-service/products/detail/%s?inventoryId=%s", c.apiBase, localID, zoneID)
	body, err := c.get(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch zone stock")
		return nil, err
	}

	raw := Extract(body)
	if raw.Empty() {
		return nil, fmt.Errorf("cruzverde detail for %s came back unreadable", localID)
	}
	return stockFromPayload(body), nil
}
