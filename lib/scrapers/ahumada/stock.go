package ahumada

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"medisearch-backend/lib/render"
	"medisearch-backend/lib/stock"
	"medisearch-backend/lib/zones"
)

var tracer = otel.Tracer("scrapers/ahumada")

const saveZonePath = "/on/demandware.store/Sites-ahumada-cl-Site/default/Stores-SaveZone"

// StockLocator answers availability for a zone. The storefront only
// exposes a single online-stock flag per product once a zone is
// selected, so the result is one aggregate record, not a branch list.
type StockLocator struct {
	renderer render.Renderer
	zones    zones.Table
}

func NewStockLocator(renderer render.Renderer, table zones.Table) *StockLocator {
	return &StockLocator{renderer: renderer, zones: table}
}

func (l *StockLocator) Locate(ctx context.Context, ref stock.ProductRef, commune string) ([]stock.Record, error) {
	ctx, span := tracer.Start(ctx, "ahumada:Locate")
	defer span.End()

	zone, err := l.zones.Lookup(commune)
	if err != nil {
		span.SetStatus(codes.Error, "commune did not resolve to a zone")
		return nil, err
	}

	// selecting the zone establishes it on the session, after which the
	// product page reflects that zone's stock. The storefront expects a
	// form-encoded POST of the state/city pair; renderers without form
	// support fall back to the same endpoint with query params, which
	// demandware also accepts
	if poster, ok := l.renderer.(render.FormPoster); ok {
		err = poster.PostForm(ctx, BaseURL+saveZonePath, url.Values{
			"state": {zone.Region},
			"city":  {zone.Commune},
		})
	} else {
		saveZoneURL := fmt.Sprintf("%s%s?state=%s&city=%s",
			BaseURL, saveZonePath, url.QueryEscape(zone.Region), url.QueryEscape(zone.Commune))
		_, err = l.renderer.Render(ctx, saveZoneURL)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to select zone")
		return nil, fmt.Errorf("select ahumada zone %q: %w", zone.ZoneID, err)
	}

	snapshot, err := l.renderer.Render(ctx, ref.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to render product page")
		return nil, fmt.Errorf("render %s: %w", ref.URL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot.HTML))
	if err != nil {
		return nil, err
	}

	if doc.Find(".no-stock-message").Length() > 0 {
		// unavailable entries are dropped; the empty list reads as
		// out of stock
		return nil, nil
	}
	return []stock.Record{{
		Branch:    fmt.Sprintf("%s / %s (online)", zone.Region, zone.Commune),
		Available: true,
	}}, nil
}
