package salcobrand

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/render"
)

type ClientOptions struct {
	// Http is the resty client requests go through. When nil a
	// browser-impersonating client against BaseURL is created.
	Http *resty.Client
	// BaseURL overrides the production storefront host.
	BaseURL string
}

// Client talks to the salcobrand storefront API. The endpoints are
// anonymous so there is no session to manage.
type Client struct {
	http    *resty.Client
	baseURL string
}

func NewClient(options ClientOptions) (*Client, error) {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	httpClient := options.Http
	if httpClient == nil {
		var err error
		httpClient, err = render.NewAPIClient(baseURL, "lib/scrapers/salcobrand")
		if err != nil {
			return nil, err
		}
	}
	return &Client{http: httpClient, baseURL: baseURL}, nil
}

// FetchProduct pulls one product payload by catalog id.
func (c *Client) FetchProduct(ctx context.Context, localID string) (catalog.RawFields, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/api/v2/products/%s", c.baseURL, localID))
	if err != nil {
		return catalog.RawFields{}, fmt.Errorf("fetch product %q: %w", localID, err)
	}
	if res.StatusCode() != http.StatusOK {
		return catalog.RawFields{}, fmt.Errorf("fetch product %q: status %d", localID, res.StatusCode())
	}
	raw := Extract(res.Body())
	if raw.Empty() {
		return catalog.RawFields{}, fmt.Errorf("fetch product %q: unrecognized payload", localID)
	}
	return raw, nil
}

// storePayload is one branch entry in the store_stock response.
type storePayload struct {
	Name   string                 `json:"name"`
	Stocks map[string]json.Number `json:"stocks"`
}

// FetchStoreStock lists per-branch stock of one sku inside a state.
// The endpoint returns every branch of the state; branches whose stock
// map omits the sku, or reports none of it, are dropped. An empty map
// means no branch in the state has the product.
func (c *Client) FetchStoreStock(ctx context.Context, stateID string, sku string) (map[string]int, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("state_id", stateID).
		SetQueryParam("sku", sku).
		Get(c.baseURL + "/api/v2/products/store_stock")
	if err != nil {
		return nil, fmt.Errorf("fetch store stock sku=%q state=%q: %w", sku, stateID, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch store stock sku=%q state=%q: status %d", sku, stateID, res.StatusCode())
	}

	var stores []storePayload
	if err := json.Unmarshal(res.Body(), &stores); err != nil {
		return nil, fmt.Errorf("decode store stock sku=%q: %w", sku, err)
	}

	byBranch := map[string]int{}
	for _, store := range stores {
		quantity, ok := store.Stocks[sku]
		if !ok {
			continue
		}
		count, err := quantity.Int64()
		if err != nil || count <= 0 {
			continue
		}
		byBranch[store.Name] = int(count)
	}
	return byBranch, nil
}
