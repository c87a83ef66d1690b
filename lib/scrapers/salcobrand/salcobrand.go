// Package salcobrand scrapes salcobrand.cl. Product data comes from
// the public api/v2 catalog endpoint; a rendered page with the embedded
// tracker JSON works as a fallback when the API has no record. Stock is
// per-branch through the store_stock endpoint.
package salcobrand

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/textutil"
)

const (
	BaseURL = "https://salcobrand.cl"
)

// productPayload mirrors the api/v2 product response.
type productPayload struct {
	ID               json.Number `json:"id"`
	Name             string      `json:"name"`
	URL              string      `json:"url"`
	Brand            string      `json:"brand"`
	Price            float64     `json:"price"`
	ShortDescription string      `json:"short_description"`
	Description      string      `json:"description"`
	ActiveIngredient string      `json:"active_ingredient"`

	Badge struct {
		RawFinalPrice float64 `json:"raw_final_price"`
	} `json:"badge"`

	Images []struct {
		OriginalURL string `json:"original_url"`
	} `json:"images"`
}

// Extract decodes one api/v2 product payload into the raw field bag.
// An undecodable payload yields an empty bag.
func Extract(payload []byte) catalog.RawFields {
	var product productPayload
	if err := json.Unmarshal(payload, &product); err != nil {
		return catalog.RawFields{}
	}
	if product.Name == "" && product.ID.String() == "" {
		return catalog.RawFields{}
	}

	raw := catalog.RawFields{
		Name:             product.Name,
		LocalID:          product.ID.String(),
		FinalURL:         FixProductURL(product.URL),
		Brand:            product.Brand,
		Laboratory:       product.Brand,
		ActiveIngredient: product.ActiveIngredient,
		Description:      product.Description,
		FormText:         product.ShortDescription,
		Concentration:    product.ShortDescription,
	}

	if len(product.Images) > 0 {
		raw.ImageURL = product.Images[0].OriginalURL
	}

	if product.Price > 0 {
		offer := int(product.Price)
		raw.Offer = &offer
	}
	if product.Badge.RawFinalPrice > 0 {
		normal := int(product.Badge.RawFinalPrice)
		raw.Normal = &normal
	}

	// the catalog payload carries no explicit flag; the description
	// mentioning receta is what the storefront itself keys off
	raw.PrescriptionHint = strings.Contains(textutil.Normalize(product.Description), "receta")

	return raw
}

var trackerRegex = regexp.MustCompile(`(?s)var product_traker_data\s*=\s*(\{.*?\});`)

// trailing // comments show up in the tracker blob; anchoring on
// whitespace keeps the // of https URLs inside string values intact
var lineCommentRegex = regexp.MustCompile(`(?m)(^|\s)//.*$`)

// trackerData is the embedded per-page analytics blob the DOM variant
// reads prices from.
type trackerData struct {
	Price      json.Number `json:"price"`
	OldPrice   json.Number `json:"oldPrice"`
	PictureURL string      `json:"pictureUrl"`
	Vendor     string      `json:"vendor"`
	Params     struct {
		SaleType string `json:"saleType"`
	} `json:"params"`
}

// ExtractHTML pulls the raw field bag out of a rendered product page,
// for products the catalog API does not serve. A page without the
// product name anchor yields an empty bag.
func ExtractHTML(html string, pageURL string) catalog.RawFields {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return catalog.RawFields{}
	}

	nameNode := doc.Find("h1.product-name")
	if nameNode.Length() == 0 {
		return catalog.RawFields{}
	}

	raw := catalog.RawFields{
		Name:     strings.TrimSpace(nameNode.First().Text()),
		FinalURL: FixProductURL(pageURL),
		LocalID:  SKUFromURL(pageURL),
	}
	raw.Description = doc.Find(`meta[name="description"]`).AttrOr("content", "")

	pageText := textutil.Normalize(doc.Text())
	raw.Bioequivalent = strings.Contains(pageText, "bioequivalente")

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		groups := trackerRegex.FindStringSubmatch(s.Text())
		if len(groups) < 2 {
			return true
		}
		blob := lineCommentRegex.ReplaceAllString(groups[1], "$1")

		var tracker trackerData
		if err := json.Unmarshal([]byte(blob), &tracker); err != nil {
			return true
		}

		if price, err := tracker.Price.Float64(); err == nil && price > 0 {
			offer := int(price)
			raw.Offer = &offer
		}
		if oldPrice, err := tracker.OldPrice.Float64(); err == nil && oldPrice > 0 {
			normal := int(oldPrice)
			raw.Normal = &normal
		}
		raw.ImageURL = tracker.PictureURL
		raw.Laboratory = tracker.Vendor
		raw.Brand = tracker.Vendor
		raw.PrescriptionHint = tracker.Params.SaleType != "not_drug"
		return false
	})

	return raw
}

// FixProductURL inserts the /products/ path segment the api payloads
// leave out of their canonical URLs.
func FixProductURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "/products/") {
		return raw
	}
	return strings.Replace(raw, BaseURL+"/", BaseURL+"/products/", 1)
}

// SKUFromURL pulls the sku out of a product URL's default_sku query
// parameter, the way the storefront links its own products.
func SKUFromURL(productURL string) string {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("default_sku")
}
