package catalog

import (
	"strings"

	"medisearch-backend/lib/dictionary"
	"medisearch-backend/lib/htmlutil"
	"medisearch-backend/lib/textutil"
)

// Normalizer turns raw field bags into canonical products using the
// shared reference dictionaries. It is a pure transform: the same bag
// and dictionaries always produce the same record.
type Normalizer struct {
	Dictionaries dictionary.Set
}

// outOfStockMarkers are checked before the availability markers so a
// page saying "producto sin stock, antes disponible" reads as out of
// stock.
var outOfStockMarkers = []string{"sin stock", "agotado", "no disponible"}
var availableMarkers = []string{"disponible", "in stock", "instock"}

func parseStockText(text string) StockState {
	normalized := textutil.Normalize(text)
	if normalized == "" {
		return StockUnknown
	}
	for _, marker := range outOfStockMarkers {
		if strings.Contains(normalized, marker) {
			return StockOutOfStock
		}
	}
	for _, marker := range availableMarkers {
		if strings.Contains(normalized, marker) {
			return StockAvailable
		}
	}
	return StockUnknown
}

// Normalize produces the canonical record for one raw field bag. A
// missing or unparseable field yields the zero value for that attribute
// only; the record itself is always produced.
func (n Normalizer) Normalize(source SourceID, category, subcategory string, raw RawFields) Product {
	product := Product{
		Source:      source,
		LocalID:     raw.LocalID,
		Category:    category,
		Subcategory: subcategory,

		Name:     textutil.Clean(raw.Name),
		URL:      raw.FinalURL,
		ImageURL: raw.ImageURL,

		PrescriptionRequired: raw.PrescriptionHint,
		Bioequivalent:        raw.Bioequivalent,
		Stock:                parseStockText(raw.StockText),

		Description: htmlutil.FlattenFragment(raw.Description),
	}

	product.OfferPrice, product.NormalPrice, product.DiscountPercent =
		ResolvePrice(raw.Offer, raw.Normal)

	product.Laboratory = n.resolveLaboratory(raw.Laboratory)
	product.Brand = textutil.Clean(raw.Brand)
	if product.Brand == "" {
		product.Brand = textutil.Clean(raw.Laboratory)
	}

	// the name alone frequently lacks the form word, so the combined
	// name+form+description text is the matching surface
	formSurface := strings.Join([]string{raw.FormText, raw.Name, product.Description}, " ")
	if form, hit := n.Dictionaries.Forms.Match(formSurface); hit {
		product.PharmaceuticalForm = form
	} else if raw.FormText != "" {
		product.PharmaceuticalForm = textutil.Normalize(raw.FormText)
	}

	product.ActiveIngredients = splitIngredients(raw.ActiveIngredient)

	doseSurface := raw.Concentration
	if doseSurface == "" {
		doseSurface = raw.Name
	}
	doseSurface = CanonicalizeUnits(doseSurface, n.Dictionaries.Units)
	product.MeasurementAmount, product.MeasurementUnit = ParseDose(doseSurface)

	product.UnitsPerPackage = ParseUnitCount(raw.Name, n.Dictionaries.Forms)

	return product
}

// resolveLaboratory maps the free-form vendor string onto the canonical
// laboratory name, falling back to the accent-stripped raw value, and
// title-cases the result for display.
func (n Normalizer) resolveLaboratory(raw string) string {
	resolved, hit := n.Dictionaries.Laboratories.Match(raw)
	if !hit {
		resolved = textutil.Normalize(raw)
	}
	if resolved == "" {
		return ""
	}
	return textutil.TitleCase(resolved)
}

// splitIngredients splits the hyphen-delimited active ingredient string
// into an ordered list, preserving the source order.
func splitIngredients(raw string) []string {
	cleaned := textutil.Clean(raw)
	if cleaned == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(cleaned, "-") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
