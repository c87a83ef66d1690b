package cruzverde

import (
	"context"
	"fmt"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/stock"
	"medisearch-backend/lib/zones"
)

// StockLocator resolves a commune to an inventory zone and asks the
// detail API for that zone's aggregate quantity. The API reports one
// number for the whole zone, not a branch list.
type StockLocator struct {
	client *Client
	zones  zones.Table
}

func NewStockLocator(client *Client, table zones.Table) *StockLocator {
	return &StockLocator{client: client, zones: table}
}

func (l *StockLocator) Locate(ctx context.Context, ref stock.ProductRef, commune string) ([]stock.Record, error) {
	zone, err := l.zones.Lookup(commune)
	if err != nil {
		return nil, err
	}

	localID := ref.LocalID
	if localID == "" {
		localID = catalog.ParseLocalID(ref.URL)
	}
	if localID == "" {
		return nil, fmt.Errorf("could not derive a cruzverde product id from %q", ref.URL)
	}

	quantity, err := l.client.FetchZoneStock(ctx, localID, zone.ZoneID)
	if err != nil {
		return nil, err
	}
	if quantity == nil {
		return nil, fmt.Errorf("zone %s answered without a stock field for %q", zone.ZoneID, localID)
	}
	if *quantity <= 0 {
		// non-positive entries are dropped; the empty list reads as
		// out of stock
		return nil, nil
	}

	return []stock.Record{{
		Branch:      fmt.Sprintf("%s / %s", zone.Region, zone.Commune),
		Quantity:    *quantity,
		HasQuantity: true,
		Available:   true,
	}}, nil
}
