// Package cruzverde scrapes cruzverde.cl through its product-service
// REST API. The API wants a browser-established cookie session and
// rejects stale ones with an INVALID_SESSION marker, so every call goes
// through the session manager's renew-once policy.
package cruzverde

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/textutil"
)

const (
	BaseURL    = "https://www.cruzverde.cl"
	APIBaseURL = "https://api.cruzverde.cl"

	// any rendered product page works for establishing the session
	sessionSeedURL = BaseURL + "/ibuprofeno-600-mg-20-comprimidos/273362.html"
)

// detailPayload mirrors the product-service detail response.
type detailPayload struct {
	ProductData struct {
		ID     json.Number `json:"id"`
		Name   string      `json:"name"`
		Reason string      `json:"reason"`

		// `price` is the list price; the sale price lives in the
		// prices map when there is one
		Price  float64            `json:"price"`
		Prices map[string]float64 `json:"prices"`

		ImageGroups []struct {
			Images []struct {
				Link string `json:"link"`
			} `json:"images"`
		} `json:"imageGroups"`

		Prescription     bool   `json:"prescription"`
		Laboratory       string `json:"laboratory"`
		Brand            string `json:"brand"`
		ActiveIngredient string `json:"activeIngredient"`
		PageDescription  string `json:"pageDescription"`

		Stock *int `json:"stock"`
	} `json:"productData"`
}

const salePriceKey = "price-sale-cl"

// Extract decodes one product detail payload into the raw field bag.
// An undecodable payload yields an empty bag.
func Extract(payload []byte) catalog.RawFields {
	var detail detailPayload
	if err := json.Unmarshal(payload, &detail); err != nil {
		return catalog.RawFields{}
	}
	data := detail.ProductData
	if data.Name == "" && data.ID.String() == "" {
		return catalog.RawFields{}
	}

	raw := catalog.RawFields{
		Name:             data.Name,
		LocalID:          data.ID.String(),
		Laboratory:       data.Laboratory,
		Brand:            data.Brand,
		ActiveIngredient: data.ActiveIngredient,
		Description:      data.PageDescription,
		PrescriptionHint: data.Prescription,
	}
	raw.FinalURL = BuildProductURL(data.Name, raw.LocalID)

	if len(data.ImageGroups) > 0 && len(data.ImageGroups[0].Images) > 0 {
		raw.ImageURL = data.ImageGroups[0].Images[0].Link
	}

	// the economically consistent reading: the sale price, when below
	// the list price, is the offer
	if data.Price > 0 {
		normal := int(data.Price)
		raw.Normal = &normal
		raw.Offer = &normal
	}
	if sale, ok := data.Prices[salePriceKey]; ok && sale > 0 {
		offer := int(sale)
		raw.Offer = &offer
	}

	if data.Stock != nil {
		if *data.Stock > 0 {
			raw.StockText = "disponible"
		} else {
			raw.StockText = "sin stock"
		}
	}

	return raw
}

func stockFromPayload(payload []byte) *int {
	var detail detailPayload
	if err := json.Unmarshal(payload, &detail); err != nil {
		return nil
	}
	return detail.ProductData.Stock
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// BuildProductURL rebuilds the canonical product page URL from the
// product name and id, the way the storefront slugs them.
func BuildProductURL(name, localID string) string {
	if localID == "" {
		return ""
	}
	slug := slugCleanup.ReplaceAllString(textutil.Normalize(name), "-")
	slug = strings.Trim(slug, "-")
	return fmt.Sprintf("%s/%s/%s.html", BaseURL, slug, localID)
}
