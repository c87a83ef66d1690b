package ahumada

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"medisearch-backend/lib/render"
	"medisearch-backend/lib/stock"
	"medisearch-backend/lib/zones"
)

const productPage = `<!DOCTYPE html>
<html><head>
<meta property="og:image" content="https://cdn.example/deltius.jpg">
<meta property="og:url" content="https://www.farmaciasahumada.cl/deltius-50000-ui-90716.html">
<script type="application/ld+json">
{"@type":"Product","offers":{"price":"7990.00","priceCurrency":"CLP"}}
</script>
</head>
<body>
<h1 class="product-name">Deltius 50.000 UI Solución Oral x 4 Ampollas</h1>
<div class="prices">
  <span class="sales"><span class="value" content="7990">$7.990</span></span>
  <del><span class="value" content="9990">$9.990</span></del>
</div>
<p>Producto disponible para despacho. Venta bajo receta médica.</p>
<div id="product-details">Colecalciferol en solución oral bebible.</div>
<table id="product-attribute-specs-table">
  <tr><th>Principio Activo</th><td>Colecalciferol</td></tr>
  <tr><th>Laboratorio</th><td>Laboratorios Italfarmaco</td></tr>
  <tr><th>Marca</th><td>Deltius</td></tr>
  <tr><th>Forma Farmacéutica</th><td>Solución Oral</td></tr>
  <tr><th>Concentración</th><td>50000 UI</td></tr>
</table>
</body></html>`

func TestExtract(t *testing.T) {
	raw := Extract(productPage, "https://www.farmaciasahumada.cl/deltius-50000-ui-90716.html")

	require.Equal(t, "Deltius 50.000 UI Solución Oral x 4 Ampollas", raw.Name)
	require.Equal(t, "90716", raw.LocalID)
	require.Equal(t, "https://cdn.example/deltius.jpg", raw.ImageURL)

	require.NotNil(t, raw.Offer)
	require.Equal(t, 7990, *raw.Offer)
	require.NotNil(t, raw.Normal)
	require.Equal(t, 9990, *raw.Normal)

	require.True(t, raw.PrescriptionHint)
	require.Equal(t, "disponible", raw.StockText)

	require.Equal(t, "Colecalciferol", raw.ActiveIngredient)
	require.Equal(t, "Laboratorios Italfarmaco", raw.Laboratory)
	require.Equal(t, "Deltius", raw.Brand)
	require.Equal(t, "Solución Oral", raw.FormText)
	require.Equal(t, "50000 UI", raw.Concentration)
	require.Equal(t, "Colecalciferol en solución oral bebible.", raw.Description)
}

func TestExtractMissingAnchor(t *testing.T) {
	// no h1.product-name: the adapter reports an empty bag instead of
	// failing, so the pipeline can emit a partial record
	raw := Extract(`<html><body><div>404 not found</div></body></html>`, "https://www.farmaciasahumada.cl/x-1.html")
	require.True(t, raw.Empty())
}

func TestExtractNoPrices(t *testing.T) {
	page := `<html><body><h1 class="product-name">Algo</h1></body></html>`
	raw := Extract(page, "https://www.farmaciasahumada.cl/algo-55.html")
	require.Equal(t, "Algo", raw.Name)
	require.Equal(t, "55", raw.LocalID)
	require.Nil(t, raw.Offer)
	require.Nil(t, raw.Normal)
}

type fakeRenderer struct {
	pages map[string]string
}

func (f fakeRenderer) Render(ctx context.Context, url string) (render.Snapshot, error) {
	return render.Snapshot{HTML: f.pages[url], FinalURL: url}, nil
}

func TestStockLocator(t *testing.T) {
	table := zones.NewTable([]zones.Zone{
		{Region: "Metropolitana", Commune: "Las Condes", ZoneID: "zona-oriente"},
	})

	productURL := "https://www.farmaciasahumada.cl/deltius-50000-ui-90716.html"
	renderer := fakeRenderer{pages: map[string]string{
		productURL: `<html><body><h1 class="product-name">Deltius</h1></body></html>`,
	}}

	locator := NewStockLocator(renderer, table)
	records, err := locator.Locate(context.Background(), stock.ProductRef{URL: productURL}, "las condes")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].Available)
	require.False(t, records[0].HasQuantity)

	_, err = locator.Locate(context.Background(), stock.ProductRef{URL: productURL}, "Chonchi")
	require.ErrorIs(t, err, zones.ErrNotFound)
}

func TestStockLocatorOutOfStock(t *testing.T) {
	table := zones.NewTable([]zones.Zone{
		{Region: "Metropolitana", Commune: "Las Condes", ZoneID: "zona-oriente"},
	})
	productURL := "https://www.farmaciasahumada.cl/deltius-50000-ui-90716.html"
	renderer := fakeRenderer{pages: map[string]string{
		productURL: `<html><body><div class="no-stock-message">Producto sin stock</div></body></html>`,
	}}

	locator := NewStockLocator(renderer, table)
	records, err := locator.Locate(context.Background(), stock.ProductRef{URL: productURL}, "Las Condes")
	require.NoError(t, err)
	// the no-stock marker drops the aggregate record entirely
	require.Empty(t, records)
}

// formRenderer records the zone-selection POST the way a session-backed
// renderer would receive it.
type formRenderer struct {
	fakeRenderer
	postURL  string
	postForm url.Values
}

func (f *formRenderer) PostForm(ctx context.Context, url string, form url.Values) error {
	f.postURL = url
	f.postForm = form
	return nil
}

func TestStockLocatorPostsZoneForm(t *testing.T) {
	table := zones.NewTable([]zones.Zone{
		{Region: "Metropolitana", Commune: "Las Condes", ZoneID: "zona-oriente"},
	})
	productURL := "https://www.farmaciasahumada.cl/deltius-50000-ui-90716.html"
	renderer := &formRenderer{fakeRenderer: fakeRenderer{pages: map[string]string{
		productURL: `<html><body><h1 class="product-name">Deltius</h1></body></html>`,
	}}}

	locator := NewStockLocator(renderer, table)
	records, err := locator.Locate(context.Background(), stock.ProductRef{URL: productURL}, "Las Condes")
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.Equal(t, BaseURL+saveZonePath, renderer.postURL)
	require.Equal(t, url.Values{
		"state": {"Metropolitana"},
		"city":  {"Las Condes"},
	}, renderer.postForm)
}
