package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// BytesPerPixel is the size of one R,G,B,A pixel.
const BytesPerPixel = 4

// Errors
var (
	ErrPartialPixel = errors.New("pixel: buffer length is not a multiple of 4")
	ErrDimensions   = errors.New("pixel: dimensions exceed buffer")
)

// ValidationError reports a malformed buffer or dimension argument.
type ValidationError struct {
	// Field names the offending argument.
	Field string

	// Err is one of the sentinel errors of this package.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v (%s)", e.Err, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks that pix holds whole pixels only.
func Validate(pix []byte) error {
	if len(pix)%BytesPerPixel != 0 {
		return &ValidationError{
			Field: fmt.Sprintf("len=%d", len(pix)),
			Err:   ErrPartialPixel,
		}
	}
	return nil
}

// ValidateDimensions checks that a w×h area fits in pix without computing w*h, which
// could overflow.
func ValidateDimensions(pix []byte, w, h int) error {
	if w < 0 || h < 0 || (w > 0 && h > len(pix)/BytesPerPixel/w) {
		return &ValidationError{
			Field: fmt.Sprintf("%dx%d", w, h),
			Err:   ErrDimensions,
		}
	}
	return nil
}

// Image is a drawable image that can be cleared and filled.
type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Buffer holds non-premultiplied R,G,B,A pixels, the layout produced by canvas pixel readback.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

// NewBuffer allocates a transparent w×h buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, w*h*BytesPerPixel),
		Stride: w * BytesPerPixel,
	}
}

// WrapBuffer uses pix as the backing store of a w×h buffer without copying.
func WrapBuffer(pix []byte, w, h int) (*Buffer, error) {
	if err := Validate(pix); err != nil {
		return nil, err
	}
	if err := ValidateDimensions(pix, w, h); err != nil {
		return nil, err
	}
	return &Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    pix,
		Stride: w * BytesPerPixel,
	}, nil
}

// FromImage converts any image to a Buffer anchored at the origin. Images that already
// use the same memory layout are wrapped, not copied.
func FromImage(src image.Image) *Buffer {
	r := src.Bounds()
	if i, ok := src.(*image.NRGBA); ok && r.Min == (image.Point{}) && i.Stride == r.Dx()*BytesPerPixel {
		return &Buffer{Rect: r, Pix: i.Pix[:r.Dy()*i.Stride], Stride: i.Stride}
	}
	if b, ok := src.(*Buffer); ok && r.Min == (image.Point{}) {
		return b
	}
	b := NewBuffer(r.Dx(), r.Dy())
	draw.Copy(b, image.Point{}, src, r, draw.Src, nil)
	return b
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) ColorModel() color.Model {
	return color.NRGBAModel
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Buffer) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*BytesPerPixel
}

func (p *Buffer) At(x, y int) color.Color {
	return p.NRGBAAt(x, y)
}

// NRGBAAt returns the pixel at (x, y), or transparent black outside the bounds.
func (p *Buffer) NRGBAAt(x, y int) color.NRGBA {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.NRGBA{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+4 : i+4]
	return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// KeyAt returns the color key at (x, y) and whether that pixel is visible (alpha != 0).
func (p *Buffer) KeyAt(x, y int) (Key, bool) {
	c := p.NRGBAAt(x, y)
	return Encode(c.R, c.G, c.B), c.A != 0
}

func (p *Buffer) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	i := p.PixOffset(x, y)
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	s := p.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = nc.R, nc.G, nc.B, nc.A
}

func (p *Buffer) Clear() {
	clear(p.Pix)
}

func (p *Buffer) Fill(c color.Color) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	value := [4]byte{nc.R, nc.G, nc.B, nc.A}
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		row := p.Pix[p.PixOffset(p.Rect.Min.X, y):p.PixOffset(p.Rect.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			copy(row[i:], value[:])
		}
	}
}

// SubImage returns the part of the buffer visible through r, sharing pixels.
func (p *Buffer) SubImage(r image.Rectangle) *Buffer {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return &Buffer{}
	}
	i := p.PixOffset(r.Min.X, r.Min.Y)
	return &Buffer{
		Rect:   r,
		Pix:    p.Pix[i:],
		Stride: p.Stride,
	}
}

// Interface checks.
var (
	_ Image = (*Buffer)(nil)
)
