package catalog

import "math"

// spurious "was/now" pairs under this discount fraction are rendering
// artifacts, not real price cuts
const discountNoiseThreshold = 0.03

// ResolvePrice derives the displayed offer price, the list price and
// the discount percent from the two raw price signals.
//
// A missing list price, or a list price at or below the offer, means
// there is no discount: the list price is dropped entirely. A computed
// discount under 3% is collapsed to the lower of the two prices, since
// the sources occasionally render two near-identical prices as an
// offer/normal pair.
func ResolvePrice(offer, normal *int) (offerPrice, normalPrice *int, discountPercent int) {
	if offer == nil {
		offer = normal
		normal = nil
	}
	if offer == nil {
		return nil, nil, 0
	}
	if normal == nil || *normal <= *offer {
		return offer, nil, 0
	}

	fraction := 1 - float64(*offer)/float64(*normal)
	if fraction < discountNoiseThreshold {
		lower := *offer
		if *normal < lower {
			lower = *normal
		}
		return &lower, nil, 0
	}

	return offer, normal, int(math.Round(fraction * 100))
}
