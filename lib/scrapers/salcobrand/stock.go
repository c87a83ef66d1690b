package salcobrand

import (
	"context"
	"fmt"

	"medisearch-backend/lib/stock"
	"medisearch-backend/lib/zones"
)

// StockLocator resolves per-branch stock through the store_stock
// endpoint. Zone ids map to the endpoint's state_id.
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

	sku := ref.LocalID
	if sku == "" {
		sku = SKUFromURL(ref.URL)
	}
	if sku == "" {
		return nil, fmt.Errorf("no sku for %q", ref.URL)
	}

	byBranch, err := l.client.FetchStoreStock(ctx, zone.ZoneID, sku)
	if err != nil {
		return nil, err
	}

	// the client already drops branches without positive stock, so an
	// empty list here reads as out of stock
	records := make([]stock.Record, 0, len(byBranch))
	for branch, quantity := range byBranch {
		records = append(records, stock.Record{
			Branch:      branch,
			Quantity:    quantity,
			HasQuantity: true,
			Available:   true,
		})
	}
	return records, nil
}
