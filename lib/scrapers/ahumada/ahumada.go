// Package ahumada scrapes farmaciasahumada.cl, a DOM-rendered
// storefront. Prices come from two places on the page: the JSON-LD
// offer block for the current price and the struck-through del/span
// value for the list price.
package ahumada

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/textutil"
)

const BaseURL = "https://www.farmaciasahumada.cl"

// spec-table row labels, compared after normalization so accent
// variants collapse
const (
	specActiveIngredient = "principio activo"
	specLaboratory       = "laboratorio"
	specBrand            = "marca"
	specForm             = "forma farmaceutica"
	specConcentration    = "concentracion"
)

// Extract pulls the raw field bag out of one rendered product page. It
// never fails: a page without the product name anchor yields an empty
// bag so the pipeline can still emit a partial record.
func Extract(html string, pageURL string) catalog.RawFields {
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
		ImageURL: doc.Find(`meta[property="og:image"]`).AttrOr("content", ""),
		FinalURL: doc.Find(`meta[property="og:url"]`).AttrOr("content", pageURL),
	}
	raw.LocalID = catalog.ParseLocalID(raw.FinalURL)
	if raw.LocalID == "" {
		raw.LocalID = catalog.ParseLocalID(pageURL)
	}

	if details := doc.Find("#product-details"); details.Length() > 0 {
		raw.Description = strings.TrimSpace(details.First().Text())
	}

	raw.Offer = jsonLdOfferPrice(doc)
	raw.Normal = struckThroughPrice(doc)

	pageText := textutil.Normalize(doc.Text())
	raw.PrescriptionHint = strings.Contains(pageText, "receta")
	if strings.Contains(pageText, "disponible") {
		raw.StockText = "disponible"
	}

	raw.Specs = specTable(doc)
	raw.ActiveIngredient = specValue(raw.Specs, specActiveIngredient)
	raw.Laboratory = specValue(raw.Specs, specLaboratory)
	raw.Brand = specValue(raw.Specs, specBrand)
	raw.FormText = specValue(raw.Specs, specForm)
	raw.Concentration = specValue(raw.Specs, specConcentration)

	return raw
}

// jsonLdOfferPrice reads the current price from the page's embedded
// JSON-LD product block.
func jsonLdOfferPrice(doc *goquery.Document) *int {
	var price *int
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		// the price is a bare number on some pages and a quoted string
		// on others
		var block struct {
			Offers struct {
				Price any `json:"price"`
			} `json:"offers"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &block); err != nil {
			return true
		}

		var value float64
		switch v := block.Offers.Price.(type) {
		case float64:
			value = v
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return true
			}
			value = parsed
		default:
			return true
		}

		n := int(value)
		price = &n
		return false
	})
	return price
}

// struckThroughPrice reads the "was" price from the del/span pair the
// storefront renders for discounted products.
func struckThroughPrice(doc *goquery.Document) *int {
	content, ok := doc.Find("del span.value").First().Attr("content")
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return nil
	}
	n := int(value)
	return &n
}

func specTable(doc *goquery.Document) map[string]string {
	rows := doc.Find("#product-attribute-specs-table tr")
	if rows.Length() == 0 {
		return nil
	}
	specs := map[string]string{}
	rows.Each(func(_ int, row *goquery.Selection) {
		key := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())
		if key != "" && value != "" {
			specs[key] = value
		}
	})
	return specs
}

// specValue looks a row up by its normalized label, so "Concentración"
// and "Concentracion" both resolve.
func specValue(specs map[string]string, normalizedKey string) string {
	for key, value := range specs {
		if textutil.Normalize(key) == normalizedKey {
			return value
		}
	}
	return ""
}
