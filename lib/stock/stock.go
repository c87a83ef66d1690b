// Package stock resolves real-time, per-location availability. Each
// source speaks one of two shapes: a single aggregate available flag
// for a whole zone, or a per-branch list with quantities. Both are kept
// as-is in Record; Summarize reduces either shape to a tri-state when
// the caller only wants one answer.
package stock

import (
	"context"
	"fmt"

	"medisearch-backend/lib/catalog"
)

// ProductRef identifies the product whose stock is being checked.
// LocalID may be empty when only the URL is known; locators that need
// it derive it from the URL.
type ProductRef struct {
	Source  catalog.SourceID
	URL     string
	LocalID string
}

// Record is one branch's (or one zone's) availability. HasQuantity
// distinguishes "5 units" from a bare available flag.
type Record struct {
	Branch      string
	Quantity    int
	HasQuantity bool
	Available   bool
}

// Summarize reduces records to a tri-state. Locators drop branches
// without positive stock, so an empty set from a successful Locate
// means out of stock. Unknown is the caller's mapping for the error
// path, where no answer was obtained at all.
func Summarize(records []Record) catalog.StockState {
	for _, r := range records {
		if r.Available || (r.HasQuantity && r.Quantity > 0) {
			return catalog.StockAvailable
		}
	}
	return catalog.StockOutOfStock
}

// Locator answers stock queries for one source.
type Locator interface {
	Locate(ctx context.Context, ref ProductRef, commune string) ([]Record, error)
}

// Registry dispatches a stock query to the right source's locator. The
// source is derived once from the reference, not per call.
type Registry struct {
	locators map[catalog.SourceID]Locator
}

func NewRegistry() *Registry {
	return &Registry{locators: map[catalog.SourceID]Locator{}}
}

func (r *Registry) Register(source catalog.SourceID, locator Locator) {
	r.locators[source] = locator
}

// Locate resolves the source from the reference URL when unset, then
// delegates to that source's locator.
func (r *Registry) Locate(ctx context.Context, ref ProductRef, commune string) ([]Record, error) {
	if ref.Source == "" {
		source, err := catalog.DetectSource(ref.URL)
		if err != nil {
			return nil, err
		}
		ref.Source = source
	}
	locator, ok := r.locators[ref.Source]
	if !ok {
		return nil, fmt.Errorf("no stock locator registered for source %q", ref.Source)
	}
	return locator.Locate(ctx, ref, commune)
}
