package zones

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var table = NewTable([]Zone{
	{Region: "Metropolitana", Commune: "Las Condes", ZoneID: "12"},
	{Region: "Metropolitana", Commune: "Ñuñoa", ZoneID: "17"},
	{Region: "Valparaíso", Commune: "Viña del Mar", ZoneID: "31"},
})

func TestLookup(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "Las Condes", expected: "12"},
		{input: "las condes", expected: "12"},
		{input: " LAS  CONDES ", expected: "12"},
		{input: "nunoa", expected: "17"},
		{input: "viña del mar", expected: "31"},
	}
	for _, test := range testCases {
		zone, err := table.Lookup(test.input)
		require.NoError(t, err, "input %q", test.input)
		require.Equal(t, test.expected, zone.ZoneID, "input %q", test.input)
	}
}

func TestLookupNotFound(t *testing.T) {
	_, err := table.Lookup("Chonchi")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = table.Lookup("")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookupSuggestsNearMiss(t *testing.T) {
	// a near-typo still fails (resolution is exact) but names the
	// closest commune in the error
	_, err := table.Lookup("Las Cndes")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "Las Condes")
}

func TestParse(t *testing.T) {
	parsed, err := Parse([]byte(`[
		{"region": "Metropolitana", "commune": "Providencia", "zoneId": "4"}
	]`))
	require.NoError(t, err)
	zone, err := parsed.Lookup("providencia")
	require.NoError(t, err)
	require.Equal(t, "4", zone.ZoneID)
	require.Equal(t, "Metropolitana", zone.Region)
}
