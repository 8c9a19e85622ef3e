package cli

import (
	"testing"

	"github.com/pscheid92/blace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Pixel
	}{
		{"red", domain.Pixel{R: 255}},
		{" White ", domain.White},
		{"black", domain.Pixel{}},
		{"#ff8800", domain.Pixel{R: 255, G: 136}},
		{"00FF7f", domain.Pixel{G: 255, B: 127}},
		{"255,136,0", domain.Pixel{R: 255, G: 136}},
		{"1, 2, 3", domain.Pixel{R: 1, G: 2, B: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "purple-ish", "#fff", "#gg0000", "256,0,0", "1,2", "-1,0,0", "a,b,c"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseColor(in)
			assert.Error(t, err)
		})
	}
}

func TestFormatColor(t *testing.T) {
	assert.Equal(t, "#ffffff", FormatColor(domain.White))
	assert.Equal(t, "#0a0b0c", FormatColor(domain.Pixel{R: 10, G: 11, B: 12}))
}
