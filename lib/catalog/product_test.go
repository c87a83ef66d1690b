package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectSource(t *testing.T) {
	testCases := []struct {
		url      string
		expected SourceID
	}{
		{url: "https://www.farmaciasahumada.cl/deltius-50000-ui-90716.html", expected: SourceAhumada},
		{url: "https://www.cruzverde.cl/ibuprofeno-600-mg-20-comprimidos/273362.html", expected: SourceCruzVerde},
		{url: "https://salcobrand.cl/products/paracetamol?default_sku=12345", expected: SourceSalcobrand},
	}
	for _, test := range testCases {
		got, err := DetectSource(test.url)
		require.NoError(t, err)
		require.Equal(t, test.expected, got)
	}

	_, err := DetectSource("https://example.com/producto/123.html")
	require.ErrorIs(t, err, ErrUnknownSource)
}

func TestParseLocalID(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
	}{
		{url: "https://www.farmaciasahumada.cl/deltius-50000-ui-90716.html", expected: "90716"},
		{url: "https://www.cruzverde.cl/ibuprofeno-600-mg/273362.html", expected: "273362"},
		{url: "https://salcobrand.cl/products/paracetamol", expected: ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, ParseLocalID(test.url), "url %q", test.url)
	}
}
