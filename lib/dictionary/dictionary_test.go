package dictionary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var forms = Dictionary{Entries: []Entry{
	{Canonical: "tableta", Synonyms: []string{"comprimido"}},
	{Canonical: "capsula", Synonyms: []string{"capsulas blandas"}},
	{Canonical: "jarabe", Synonyms: []string{"solucion oral"}},
}}

func TestMatch(t *testing.T) {
	testCases := []struct {
		input     string
		expected  string
		expectHit bool
	}{
		{input: "comprimidos recubiertos", expected: "tableta", expectHit: true},
		{input: "Comprimidos Recubiertos", expected: "tableta", expectHit: true},
		{input: "CÁPSULA blanda", expected: "capsula", expectHit: true},
		{input: "deltius solución oral x 4 ampollas", expected: "jarabe", expectHit: true},
		{input: "crema dermica", expectHit: false},
		{input: "", expectHit: false},
	}

	for _, test := range testCases {
		got, hit := forms.Match(test.input)
		require.Equal(t, test.expectHit, hit, "input %q", test.input)
		if test.expectHit {
			require.Equal(t, test.expected, got, "input %q", test.input)
		}
	}
}

func TestMatchAccentInsensitive(t *testing.T) {
	labs := Dictionary{Entries: []Entry{
		{Canonical: "ibuprofeno", Synonyms: nil},
	}}
	for _, input := range []string{"Ibuprofeno", "ibuprofeno", "IBUPROFÉNO 600"} {
		got, hit := labs.Match(input)
		require.True(t, hit, "input %q", input)
		require.Equal(t, "ibuprofeno", got)
	}
}

func TestMatchDeclarationOrderWins(t *testing.T) {
	// both entries match, the first declared one must win regardless of
	// match length or position
	overlapping := Dictionary{Entries: []Entry{
		{Canonical: "gel", Synonyms: nil},
		{Canonical: "gel dental", Synonyms: nil},
	}}
	got, hit := overlapping.Match("gel dental con fluor")
	require.True(t, hit)
	require.Equal(t, "gel", got)
}

func TestParsePreservesOrder(t *testing.T) {
	data := []byte(`[
		{"name": "b", "synonyms": ["z"]},
		{"name": "a", "synonyms": []}
	]`)
	dict, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Canonical: "b", Synonyms: []string{"z"}},
		{Canonical: "a", Synonyms: []string{}},
	}, dict.Entries)
}
