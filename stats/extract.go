// Package stats counts target image pixels per color and merges those counts across images.
package stats

import (
	"image"

	"github.com/BeatGlow/overlay/pixel"
)

// Totals maps a color to the number of visible (alpha != 0) pixels of that color in one image.
// A Totals value is treated as immutable once returned.
type Totals map[pixel.Key]int

// Sum returns the number of counted pixels.
func (t Totals) Sum() int {
	var n int
	for _, v := range t {
		n += v
	}
	return n
}

// Extract counts the visible pixels of an R,G,B,A buffer per color. Fully transparent
// pixels are not part of the artwork and are skipped. It also returns the number of
// counted pixels.
//
// An empty or all-transparent buffer yields an empty map and zero.
func Extract(pix []byte) (Totals, int, error) {
	if err := pixel.Validate(pix); err != nil {
		return nil, 0, err
	}
	totals := make(Totals)
	return totals, count(totals, pix), nil
}

// ExtractImage counts the visible pixels of a decoded image.
func ExtractImage(img image.Image) (Totals, int) {
	b := pixel.FromImage(img)
	totals := make(Totals)

	var (
		n int
		w = b.Rect.Dx() * pixel.BytesPerPixel
	)
	for y := b.Rect.Min.Y; y < b.Rect.Max.Y; y++ {
		i := b.PixOffset(b.Rect.Min.X, y)
		n += count(totals, b.Pix[i:i+w])
	}
	return totals, n
}

func count(totals Totals, pix []byte) (n int) {
	for i := 0; i+3 < len(pix); i += pixel.BytesPerPixel {
		s := pix[i : i+4 : i+4]
		if s[3] == 0 {
			continue
		}
		totals[pixel.Encode(s[0], s[1], s[2])]++
		n++
	}
	return
}
