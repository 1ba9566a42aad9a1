package pixel

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Key identifies an RGB triple. The red, green and blue components are packed
// into the low 24 bits as 0x00RRGGBB, so distinct triples never collide.
type Key uint32

// Encode returns the key for the (r, g, b) triple.
func Encode(r, g, b uint8) Key {
	return Key(r)<<16 | Key(g)<<8 | Key(b)
}

// RGB decodes the key back into its triple.
func (k Key) RGB() RGB {
	return RGB{R: uint8(k >> 16), G: uint8(k >> 8), B: uint8(k)}
}

func (k Key) String() string {
	return k.RGB().String()
}

// RGB is an opaque 24-bit color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

var _ color.Color = RGB{}

// Key returns the color key for c.
func (c RGB) Key() Key {
	return Encode(c.R, c.G, c.B)
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," + strconv.Itoa(int(c.B))
}

// ParseHex parses a color in #rgb or #rrggbb notation. The leading # is optional.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return RGB{}, fmt.Errorf("pixel: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("pixel: invalid hex color %q: %w", s, err)
	}
	return Key(v).RGB(), nil
}
