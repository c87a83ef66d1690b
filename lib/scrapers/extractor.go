// Package scrapers wires the per-source adapters into the pipeline's
// Extractor contract. One Extractor owns one render resource plus the
// shared API clients, so a worker's page loads never interleave with
// another worker's.
package scrapers

import (
	"context"
	"fmt"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/pipeline"
	"medisearch-backend/lib/render"
	"medisearch-backend/lib/scrapers/ahumada"
	"medisearch-backend/lib/scrapers/cruzverde"
	"medisearch-backend/lib/scrapers/salcobrand"
)

type Extractor struct {
	normalizer catalog.Normalizer
	renderer   render.Renderer
	cruzverde  *cruzverde.Client
	salcobrand *salcobrand.Client
	closer     func()
}

type ExtractorOptions struct {
	Normalizer catalog.Normalizer
	// Renderer is this extractor's private browsing resource.
	Renderer render.Renderer
	// CruzVerde and Salcobrand API clients are shared across workers;
	// the cruzverde session manager serializes renewal between them.
	CruzVerde  *cruzverde.Client
	Salcobrand *salcobrand.Client
	// Closer releases the render resource at batch end. Optional.
	Closer func()
}

func NewExtractor(options ExtractorOptions) *Extractor {
	return &Extractor{
		normalizer: options.Normalizer,
		renderer:   options.Renderer,
		cruzverde:  options.CruzVerde,
		salcobrand: options.Salcobrand,
		closer:     options.Closer,
	}
}

// Extract produces the canonical record for one task, dispatching on
// the task's source. An adapter that cannot find its anchor yields an
// error alongside the partial record built from whatever was found.
func (e *Extractor) Extract(ctx context.Context, task pipeline.Task) (catalog.Product, error) {
	source := task.Source
	if source == "" {
		detected, err := catalog.DetectSource(task.URL)
		if err != nil {
			return catalog.Product{}, err
		}
		source = detected
	}

	var raw catalog.RawFields
	var err error
	switch source {
	case catalog.SourceAhumada:
		raw, err = e.extractAhumada(ctx, task)
	case catalog.SourceCruzVerde:
		raw, err = e.extractCruzVerde(ctx, task)
	case catalog.SourceSalcobrand:
		raw, err = e.extractSalcobrand(ctx, task)
	default:
		return catalog.Product{}, fmt.Errorf("no adapter for source %q", source)
	}

	product := e.normalizer.Normalize(source, task.Category, task.Subcategory, raw)
	if err != nil {
		return product, err
	}
	if raw.Empty() {
		return product, fmt.Errorf("%s: no product data at %q", source, task.URL)
	}
	return product, nil
}

func (e *Extractor) extractAhumada(ctx context.Context, task pipeline.Task) (catalog.RawFields, error) {
	snapshot, err := e.renderer.Render(ctx, task.URL)
	if err != nil {
		return catalog.RawFields{}, fmt.Errorf("render %q: %w", task.URL, err)
	}
	pageURL := snapshot.FinalURL
	if pageURL == "" {
		pageURL = task.URL
	}
	return ahumada.Extract(snapshot.HTML, pageURL), nil
}

func (e *Extractor) extractCruzVerde(ctx context.Context, task pipeline.Task) (catalog.RawFields, error) {
	localID := task.LocalID
	if localID == "" {
		localID = catalog.ParseLocalID(task.URL)
	}
	if localID == "" {
		return catalog.RawFields{}, fmt.Errorf("no product id in %q", task.URL)
	}
	return e.cruzverde.FetchProduct(ctx, localID)
}

// extractSalcobrand prefers the catalog API and falls back on the
// rendered page for products the API does not serve.
func (e *Extractor) extractSalcobrand(ctx context.Context, task pipeline.Task) (catalog.RawFields, error) {
	localID := task.LocalID
	if localID == "" {
		localID = salcobrand.SKUFromURL(task.URL)
	}

	if localID != "" {
		raw, err := e.salcobrand.FetchProduct(ctx, localID)
		if err == nil {
			return raw, nil
		}
	}

	snapshot, err := e.renderer.Render(ctx, task.URL)
	if err != nil {
		return catalog.RawFields{}, fmt.Errorf("render %q: %w", task.URL, err)
	}
	pageURL := snapshot.FinalURL
	if pageURL == "" {
		pageURL = task.URL
	}
	return salcobrand.ExtractHTML(snapshot.HTML, pageURL), nil
}

func (e *Extractor) Close() {
	if e.closer != nil {
		e.closer()
	}
}
