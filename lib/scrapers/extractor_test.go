package scrapers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/dictionary"
	"medisearch-backend/lib/pipeline"
	"medisearch-backend/lib/render"
	"medisearch-backend/lib/scrapers/salcobrand"
)

type pageRenderer map[string]string

func (r pageRenderer) Render(ctx context.Context, url string) (render.Snapshot, error) {
	html, ok := r[url]
	if !ok {
		return render.Snapshot{}, fmt.Errorf("no page for %q", url)
	}
	return render.Snapshot{HTML: html, FinalURL: url}, nil
}

func testExtractorNormalizer() catalog.Normalizer {
	return catalog.Normalizer{
		Dictionaries: dictionary.Set{
			Forms: dictionary.Dictionary{Entries: []dictionary.Entry{
				{Canonical: "tableta", Synonyms: []string{"comprimido"}},
			}},
		},
	}
}

func TestExtractDispatchesAhumada(t *testing.T) {
	pageURL := "https://www.farmaciasahumada.cl/paracetamol-500-mg-83412.html"
	renderer := pageRenderer{
		pageURL: `<html><body>
			<h1 class="product-name">Paracetamol 500 mg Comprimidos</h1>
		</body></html>`,
	}

	extractor := NewExtractor(ExtractorOptions{
		Normalizer: testExtractorNormalizer(),
		Renderer:   renderer,
	})

	product, err := extractor.Extract(context.Background(), pipeline.Task{
		Category: "dolor",
		URL:      pageURL,
	})
	require.NoError(t, err)
	require.Equal(t, catalog.SourceAhumada, product.Source)
	require.Equal(t, "Paracetamol 500 mg Comprimidos", product.Name)
	require.Equal(t, "tableta", product.PharmaceuticalForm)
	require.Equal(t, "dolor", product.Category)
}

func TestExtractSalcobrandFallsBackToPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := salcobrand.NewClient(salcobrand.ClientOptions{
		Http: resty.New(), BaseURL: server.URL,
	})
	require.NoError(t, err)

	pageURL := "https://salcobrand.cl/products/ibuprofeno-400?default_sku=31870"
	renderer := pageRenderer{
		pageURL: `<html><body>
			<h1 class="product-name">Ibuprofeno 400 mg</h1>
			<script>var product_traker_data = {"price": 2590, "params": {"saleType": "not_drug"}};</script>
		</body></html>`,
	}

	extractor := NewExtractor(ExtractorOptions{
		Normalizer: testExtractorNormalizer(),
		Renderer:   renderer,
		Salcobrand: client,
	})

	product, err := extractor.Extract(context.Background(), pipeline.Task{
		Source: catalog.SourceSalcobrand,
		URL:    pageURL,
	})
	require.NoError(t, err)
	require.Equal(t, "Ibuprofeno 400 mg", product.Name)
	require.Equal(t, "31870", product.LocalID)
	require.NotNil(t, product.OfferPrice)
	require.Equal(t, 2590, *product.OfferPrice)
}

func TestExtractUnknownSource(t *testing.T) {
	extractor := NewExtractor(ExtractorOptions{Normalizer: testExtractorNormalizer()})
	_, err := extractor.Extract(context.Background(), pipeline.Task{
		URL: "https://example.com/product",
	})
	require.Error(t, err)
}
