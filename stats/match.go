package stats

import (
	"image"

	"github.com/BeatGlow/overlay/pixel"
)

// Match compares a target image with a canvas snapshot and counts, per color, the
// visible target pixels whose canvas pixel is visible and has exactly the same RGB value.
// The target pixel at (x, y) is compared with the canvas pixel at (x, y) + offset; pixels
// that fall outside the canvas are not matched.
func Match(target, canvas *pixel.Buffer, offset image.Point) Counts {
	out := make(Counts)
	r := target.Bounds().Intersect(canvas.Bounds().Sub(offset))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			want, ok := target.KeyAt(x, y)
			if !ok {
				continue
			}
			if have, ok := canvas.KeyAt(x+offset.X, y+offset.Y); ok && have == want {
				out[want]++
			}
		}
	}
	return out
}

// Add accumulates other into c.
func (c Counts) Add(other Counts) {
	for k, v := range other {
		c[k] += v
	}
}
