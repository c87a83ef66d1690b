// Package catalog defines the canonical product schema every retail
// source converges to, and the transforms that take a source adapter's
// raw field bag into it.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// SourceID names one of the supported retail sources. It is derived
// once when a URL enters the system, never re-derived per call.
type SourceID string

const (
	SourceAhumada    SourceID = "ahumada"
	SourceCruzVerde  SourceID = "cruzverde"
	SourceSalcobrand SourceID = "salcobrand"
)

var sourceHosts = []struct {
	host string
	id   SourceID
}{
	{host: "farmaciasahumada.cl", id: SourceAhumada},
	{host: "cruzverde.cl", id: SourceCruzVerde},
	{host: "salcobrand.cl", id: SourceSalcobrand},
}

var ErrUnknownSource = fmt.Errorf("url does not belong to a known source")

// DetectSource maps a product URL onto its SourceID.
func DetectSource(url string) (SourceID, error) {
	for _, s := range sourceHosts {
		if strings.Contains(url, s.host) {
			return s.id, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownSource, url)
}

type StockState int

const (
	StockUnknown StockState = iota
	StockAvailable
	StockOutOfStock
)

func (s StockState) String() string {
	switch s {
	case StockAvailable:
		return "available"
	case StockOutOfStock:
		return "out_of_stock"
	}
	return "unknown"
}

// Product is the canonical, source-agnostic record. Identity is
// (Source, LocalID); LocalID is only unique within one source. Records
// are immutable once emitted, a re-scrape produces a new record.
type Product struct {
	Source  SourceID
	LocalID string

	Name        string
	URL         string
	ImageURL    string
	Category    string
	Subcategory string

	// prices are in the source's minor currency unit; nil means the
	// signal was absent, which is distinct from zero
	OfferPrice      *int
	NormalPrice     *int
	DiscountPercent int

	PrescriptionRequired bool
	Stock                StockState
	Bioequivalent        bool

	Brand              string
	Laboratory         string
	ActiveIngredients  []string
	MeasurementAmount  string
	MeasurementUnit    string
	UnitsPerPackage    *int
	PharmaceuticalForm string
	Description        string
}

// RawFields is the loosely-typed bag a source adapter extracts from a
// rendered page or API payload. Empty strings and nil pointers mean
// "not found"; the field normalizer decides what to do about that.
// Adapters fill this in without doing any dictionary matching or price
// arithmetic.
type RawFields struct {
	Name        string
	LocalID     string
	FinalURL    string
	ImageURL    string
	Description string

	Offer  *int
	Normal *int

	StockText        string
	PrescriptionHint bool
	Bioequivalent    bool

	Laboratory       string
	Brand            string
	ActiveIngredient string
	Concentration    string
	FormText         string
	Specs            map[string]string
}

// Empty reports whether the adapter found nothing at all, which happens
// when the required page anchor was missing.
func (r RawFields) Empty() bool {
	return r.Name == "" && r.LocalID == "" && r.Offer == nil && r.Normal == nil &&
		len(r.Specs) == 0 && r.Description == ""
}

var localIdRegex = regexp.MustCompile(`[-/](\d+)\.html`)

// ParseLocalID pulls the numeric product id out of a product URL of the
// form ".../<slug>-<digits>.html" or ".../<slug>/<digits>.html".
func ParseLocalID(url string) string {
	groups := localIdRegex.FindStringSubmatch(url)
	if len(groups) < 2 {
		return ""
	}
	return groups[1]
}
