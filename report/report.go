// Package report renders color statistics as an image: one row per color with a swatch,
// the remaining and total pixel counts and a progress bar.
package report

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/BeatGlow/overlay/draw"
	"github.com/BeatGlow/overlay/stats"
)

// Options control the report layout.
type Options struct {
	// Width of the image in pixels.
	Width int

	// RowHeight in pixels.
	RowHeight int

	// FontSize in points at 72 DPI.
	FontSize float64

	// Language used to format numbers.
	Language language.Tag

	// Background color, Foreground is used for text and outlines.
	Background, Foreground color.Color

	// Preview is drawn above the rows, scaled up with hard pixel edges. Optional.
	Preview image.Image

	// PreviewScale is the preview magnification. Zero fits the preview to the width.
	PreviewScale int
}

// DefaultOptions are used for zero fields of Options.
var DefaultOptions = Options{
	Width:      360,
	RowHeight:  24,
	FontSize:   12,
	Language:   language.English,
	Background: color.White,
	Foreground: color.Black,
}

var (
	regularOnce sync.Once
	regular     *truetype.Font
	regularErr  error
)

func regularFont() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = truetype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultOptions.Width
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultOptions.RowHeight
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultOptions.FontSize
	}
	if o.Language == language.Und {
		o.Language = DefaultOptions.Language
	}
	if o.Background == nil {
		o.Background = DefaultOptions.Background
	}
	if o.Foreground == nil {
		o.Foreground = DefaultOptions.Foreground
	}
	return o
}

// previewRect returns where the preview goes, or an empty rectangle without one.
func (o Options) previewRect() image.Rectangle {
	if o.Preview == nil || o.Preview.Bounds().Empty() {
		return image.Rectangle{}
	}
	size := o.Preview.Bounds().Size()
	scale := o.PreviewScale
	if scale <= 0 {
		scale = max(1, (o.Width-8)/size.X)
	}
	return image.Rect(4, 4, 4+size.X*scale, 4+size.Y*scale)
}

// Lines returns the text rows of the report: a summary followed by one line per color,
// most remaining first. An empty map yields a single "no statistics" line.
func Lines(m stats.Map, tag language.Tag) []string {
	p := message.NewPrinter(tag)
	if len(m) == 0 {
		return []string{"no statistics"}
	}
	sum := m.Sum()
	lines := []string{p.Sprintf("%d colors, %d of %d pixels left", len(m), sum.Remaining(), sum.Total)}
	for _, e := range m.Sorted() {
		lines = append(lines, p.Sprintf("%s  %d / %d", e.Key.RGB().Hex(), e.Remaining(), e.Total))
	}
	return lines
}

// Render draws the statistics.
func Render(m stats.Map, options Options) (*image.RGBA, error) {
	o := options.withDefaults()
	f, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("report: parse font: %w", err)
	}

	var (
		lines   = Lines(m, o.Language)
		entries = m.Sorted()
		rh      = o.RowHeight
		preview = o.previewRect()
		top     = 0
	)
	if !preview.Empty() {
		top = preview.Max.Y + 4
	}
	var (
		dst = image.NewRGBA(image.Rect(0, 0, o.Width, top+rh*len(lines)))
		fg  = image.NewUniform(o.Foreground)
	)
	draw.Box(dst, dst.Bounds(), o.Background)
	if !preview.Empty() {
		draw.Scale(dst, preview, o.Preview, draw.Over)
	}

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(o.FontSize)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetSrc(fg)
	c.SetHinting(font.HintingFull)

	baseline := (rh + int(o.FontSize)) / 2
	for i, line := range lines {
		y := top + i*rh
		x := 4
		if i > 0 && len(entries) > 0 {
			e := entries[i-1]
			swatch := image.Rect(4, y+4, 4+rh-8, y+rh-4)
			draw.Swatch(dst, swatch, e.Key.RGB(), o.Foreground)
			x = swatch.Max.X + 6

			bar := image.Rect(o.Width*2/3, y+rh/2-4, o.Width-4, y+rh/2+4)
			draw.ProgressBar(dst, bar, e.Matched, e.Total, e.Key.RGB(), o.Foreground)
		}
		if _, err = c.DrawString(line, freetype.Pt(x, y+baseline)); err != nil {
			return nil, fmt.Errorf("report: draw text: %w", err)
		}
	}
	return dst, nil
}
