// Package filter restricts RGBA pixel buffers to a subset of palette colors.
package filter

import (
	"github.com/BeatGlow/overlay/pixel"
)

// MaxColors is the number of palette entries honoured by Filter. Further entries are ignored.
const MaxColors = 64

// Palette lists the colors that remain visible after filtering.
type Palette []pixel.RGB

// Limit returns the palette truncated to MaxColors entries.
func (p Palette) Limit() Palette {
	if len(p) > MaxColors {
		return p[:MaxColors]
	}
	return p
}

// Set returns the membership set of the first MaxColors entries.
func (p Palette) Set() map[pixel.Key]struct{} {
	p = p.Limit()
	set := make(map[pixel.Key]struct{}, len(p))
	for _, c := range p {
		set[c.Key()] = struct{}{}
	}
	return set
}

// ParsePalette parses a list of #rrggbb colors.
func ParsePalette(colors []string) (Palette, error) {
	p := make(Palette, 0, len(colors))
	for _, s := range colors {
		c, err := pixel.ParseHex(s)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	return p, nil
}

// Dimensions resolves the area of src to process. Zero width and height mean the
// whole buffer is a single scanline.
func Dimensions(src []byte, width, height int) (int, int, error) {
	if err := pixel.Validate(src); err != nil {
		return 0, 0, err
	}
	if width == 0 && height == 0 {
		return len(src) / pixel.BytesPerPixel, 1, nil
	}
	if err := pixel.ValidateDimensions(src, width, height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// Filter returns a copy of src in which every pixel whose color is not in the palette
// has its alpha forced to zero. The color channels of hidden pixels are kept. An empty
// palette keeps every pixel.
//
// Only the first width*height pixels are processed; trailing bytes of the returned buffer
// are left zero. src is never modified.
func Filter(src []byte, palette Palette, width, height int) ([]byte, error) {
	w, h, err := Dimensions(src, width, height)
	if err != nil {
		return nil, err
	}
	if len(palette) == 0 {
		return append(make([]byte, 0, len(src)), src...), nil
	}

	var (
		set = palette.Set()
		dst = make([]byte, len(src))
		n   = w * h * pixel.BytesPerPixel
	)
	for i := 0; i < n; i += pixel.BytesPerPixel {
		s := src[i : i+4 : i+4]
		d := dst[i : i+4 : i+4]
		d[0], d[1], d[2] = s[0], s[1], s[2]
		if _, ok := set[pixel.Encode(s[0], s[1], s[2])]; ok {
			d[3] = s[3]
		}
	}
	return dst, nil
}
