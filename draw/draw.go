// Package draw provides the drawing primitives used to render statistics sheets.
package draw

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Image is an alias for [golang.org/x/image/draw.Image].
type Image = draw.Image

// Op is an alias for [golang.org/x/image/draw.Op].
type Op = draw.Op

const (
	// Over specifies ``(src in mask) over dst''.
	Over = draw.Over

	// Src specifies ``src in mask''.
	Src = draw.Src
)

// Scale draws src scaled into r with nearest neighbour sampling, keeping hard pixel edges.
func Scale(dst Image, r image.Rectangle, src image.Image, op Op) {
	draw.NearestNeighbor.Scale(dst, r, src, src.Bounds(), op, nil)
}

// Box draws a filled rectangle.
func Box(dst Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}
