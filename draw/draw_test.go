package draw

import (
	"image"
	"image/color"
	"testing"
)

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.RGBA{R: 0xff, A: 0xff}
)

func TestRectangle(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	Rectangle(dst, image.Rect(1, 1, 5, 4), white)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			edge := (x == 1 || x == 4) && y >= 1 && y <= 3 || (y == 1 || y == 3) && x >= 1 && x <= 4
			if v := dst.RGBAAt(x, y) == white; v != edge {
				t.Errorf("pixel (%d,%d) set=%t, expected %t", x, y, v, edge)
			}
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		Done, Total int
		Filled      int
	}{
		{0, 10, 0},
		{5, 10, 4},
		{10, 10, 8},
		{20, 10, 8},
		{3, 0, 0},
	}
	for _, test := range tests {
		t.Run("", func(it *testing.T) {
			dst := image.NewRGBA(image.Rect(0, 0, 10, 3))
			ProgressBar(dst, dst.Bounds(), test.Done, test.Total, red, black)

			var filled int
			for x := 1; x < 9; x++ {
				if dst.RGBAAt(x, 1) == red {
					filled++
				}
			}
			if filled != test.Filled {
				it.Errorf("%d/%d: expected %d filled pixels, got %d", test.Done, test.Total, test.Filled, filled)
			}
			if dst.RGBAAt(0, 0) != black {
				it.Error("expected outline")
			}
		})
	}
}

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, red)
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	Scale(dst, dst.Bounds(), src, Src)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if dst.RGBAAt(x, y) != red {
				t.Fatalf("pixel (%d,%d) not scaled", x, y)
			}
		}
	}
}
