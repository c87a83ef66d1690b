package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestResolvePrice(t *testing.T) {
	testCases := []struct {
		name string

		offer  *int
		normal *int

		expectedOffer    *int
		expectedNormal   *int
		expectedDiscount int
	}{
		{
			name:             "real discount",
			offer:            intp(7000),
			normal:           intp(10000),
			expectedOffer:    intp(7000),
			expectedNormal:   intp(10000),
			expectedDiscount: 30,
		},
		{
			name:             "no list price signal",
			offer:            intp(4990),
			normal:           nil,
			expectedOffer:    intp(4990),
			expectedNormal:   nil,
			expectedDiscount: 0,
		},
		{
			name:             "list price equal to offer",
			offer:            intp(4990),
			normal:           intp(4990),
			expectedOffer:    intp(4990),
			expectedNormal:   nil,
			expectedDiscount: 0,
		},
		{
			name:             "list price below offer",
			offer:            intp(5000),
			normal:           intp(4500),
			expectedOffer:    intp(5000),
			expectedNormal:   nil,
			expectedDiscount: 0,
		},
		{
			name:             "sub 3 percent difference is rendering noise",
			offer:            intp(19900),
			normal:           intp(20000),
			expectedOffer:    intp(19900),
			expectedNormal:   nil,
			expectedDiscount: 0,
		},
		{
			name:             "exactly 3 percent is a real discount",
			offer:            intp(9700),
			normal:           intp(10000),
			expectedOffer:    intp(9700),
			expectedNormal:   intp(10000),
			expectedDiscount: 3,
		},
		{
			name:             "only normal signal present",
			offer:            nil,
			normal:           intp(2490),
			expectedOffer:    intp(2490),
			expectedNormal:   nil,
			expectedDiscount: 0,
		},
		{
			name:             "both absent",
			offer:            nil,
			normal:           nil,
			expectedOffer:    nil,
			expectedNormal:   nil,
			expectedDiscount: 0,
		},
		{
			name:             "rounding",
			offer:            intp(1990),
			normal:           intp(2490),
			expectedOffer:    intp(1990),
			expectedNormal:   intp(2490),
			expectedDiscount: 20,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			offer, normal, discount := ResolvePrice(test.offer, test.normal)
			require.Equal(t, test.expectedOffer, offer)
			require.Equal(t, test.expectedNormal, normal)
			require.Equal(t, test.expectedDiscount, discount)
		})
	}
}
