package geocoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"expands abbreviations", "123 N Main St", "123 north main street"},
		{"drops unit designator", "500 W Garvey Ave #E", "500 west garvey avenue"},
		{"unit with space", "12 Elm Dr # 204, Monterey Park", "12 elm drive , monterey park"},
		{"collapses whitespace", "  1839   S  Valley  Blvd  ", "1839 south valley boulevard"},
		{"drops periods", "10 E. Las Tunas Dr.", "10 east las tunas drive"},
		{"leaves full words", "1 Street Avenue", "1 street avenue"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.address))
		})
	}
}

func TestNormalizeAddressIdempotent(t *testing.T) {
	inputs := []string{
		"123 N Main St",
		"500 W Garvey Ave #E, Monterey Park, CA 91754",
		"10 E. Las Tunas Dr..",
		"Apt. 4, 77 NE Pkwy.",
		"  Ste 100   Hwy 1 ",
	}

	for _, in := range inputs {
		once := NormalizeAddress(in)
		assert.Equal(t, once, NormalizeAddress(once), "input %q", in)
	}
}

func TestNormalizeAddressSharesKeyAcrossSpellings(t *testing.T) {
	assert.Equal(t,
		NormalizeAddress("500 West Garvey Avenue"),
		NormalizeAddress("500 W. Garvey Ave #E"),
	)
}
