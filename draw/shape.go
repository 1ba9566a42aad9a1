package draw

import (
	"image"
	"image/color"
)

// HorizontalLine draws a line between (x,y) and (x+w,y).
func HorizontalLine(dst Image, x, y, w int, c color.Color) {
	for i := x; i < x+w; i++ {
		dst.Set(i, y, c)
	}
}

// VerticalLine draws a line between (x,y) and (x,y+h).
func VerticalLine(dst Image, x, y, h int, c color.Color) {
	for i := y; i < y+h; i++ {
		dst.Set(x, i, c)
	}
}

// Rectangle draws the one pixel outline of r.
func Rectangle(dst Image, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	w, h := r.Dx(), r.Dy()
	HorizontalLine(dst, r.Min.X, r.Min.Y, w, c)
	HorizontalLine(dst, r.Min.X, r.Max.Y-1, w, c)
	VerticalLine(dst, r.Min.X, r.Min.Y, h, c)
	VerticalLine(dst, r.Max.X-1, r.Min.Y, h, c)
}

// Swatch draws a filled color sample with an outline.
func Swatch(dst Image, r image.Rectangle, fill, outline color.Color) {
	Box(dst, r, fill)
	Rectangle(dst, r, outline)
}

// ProgressBar draws an outlined bar filled proportionally to done/total. A zero total
// draws an empty bar.
func ProgressBar(dst Image, r image.Rectangle, done, total int, fill, outline color.Color) {
	Rectangle(dst, r, outline)
	inner := r.Inset(1)
	if total <= 0 || done <= 0 || inner.Empty() {
		return
	}
	if done > total {
		done = total
	}
	inner.Max.X = inner.Min.X + inner.Dx()*done/total
	Box(dst, inner, fill)
}
