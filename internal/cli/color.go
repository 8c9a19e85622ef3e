package cli

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pscheid92/blace/internal/domain"
)

var namedColors = map[string]domain.Pixel{
	"white":   domain.White,
	"black":   {},
	"red":     {R: 255},
	"green":   {G: 255},
	"blue":    {B: 255},
	"yellow":  {R: 255, G: 255},
	"cyan":    {G: 255, B: 255},
	"magenta": {R: 255, B: 255},
}

// ParseColor accepts a color name, a hex triplet ("#ff8800" or "ff8800") or
// decimal components ("255,136,0").
func ParseColor(s string) (domain.Pixel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if p, ok := namedColors[s]; ok {
		return p, nil
	}
	if strings.Contains(s, ",") {
		return parseComponents(s)
	}
	return parseHex(s)
}

func parseHex(s string) (domain.Pixel, error) {
	raw := strings.TrimPrefix(s, "#")
	if len(raw) != 6 {
		return domain.Pixel{}, fmt.Errorf("invalid color %q: expected a name, #rrggbb or r,g,b", s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return domain.Pixel{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return domain.Pixel{R: b[0], G: b[1], B: b[2]}, nil
}

func parseComponents(s string) (domain.Pixel, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return domain.Pixel{}, fmt.Errorf("invalid color %q: expected three components", s)
	}

	var rgb [3]uint8
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return domain.Pixel{}, fmt.Errorf("invalid color component %q: must be 0-255", part)
		}
		rgb[i] = uint8(v)
	}
	return domain.Pixel{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// FormatColor renders a pixel as #rrggbb.
func FormatColor(p domain.Pixel) string {
	return fmt.Sprintf("#%02x%02x%02x", p.R, p.G, p.B)
}
