package gallery

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/BeatGlow/overlay/pixel"
	"github.com/BeatGlow/overlay/stats"
	"github.com/BeatGlow/overlay/tile"
)

// Image is a decoded gallery entry.
type Image struct {
	Entry

	// Buffer holds the decoded pixels.
	Buffer *pixel.Buffer

	// Digest identifies the pixel content.
	Digest string

	// Totals are the per color pixel counts.
	Totals stats.Totals

	// Matched counts the pixels already present on the loaded canvas snapshots.
	Matched stats.Counts
}

// Source returns the image as an aggregation source.
func (i *Image) Source() stats.Source {
	src := stats.Source{
		Anchor: stats.Anchor{
			ID:       i.Key,
			Enabled:  i.IsEnabled(),
			Position: i.Position,
		},
		Totals: i.Totals,
	}
	if i.Matched != nil {
		src.Matched = i.Matched
	}
	return src
}

// Sources converts images to aggregation sources.
func Sources(images []*Image) []stats.Source {
	out := make([]stats.Source, len(images))
	for j, i := range images {
		out[j] = i.Source()
	}
	return out
}

// Loader decodes gallery images.
type Loader struct {
	// Cache for totals, optional.
	Cache *Cache

	// Logger, optional.
	Logger *slog.Logger
}

func (l *Loader) log() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}

// Load decodes all images of the manifest, counts their totals (or takes them from the
// cache) and matches them against the canvas snapshots.
func (l *Loader) Load(ctx context.Context, m *Manifest) ([]*Image, error) {
	canvas, err := l.loadCanvas(ctx, m)
	if err != nil {
		return nil, err
	}

	images := make([]*Image, 0, len(m.Images))
	for _, e := range m.Images {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		i, err := l.loadImage(ctx, m, e)
		if err != nil {
			return nil, fmt.Errorf("image %q: %w", e.Key, err)
		}
		if origin, ok := e.Origin(m.TileSize); ok && len(canvas) > 0 {
			i.Matched = make(stats.Counts)
			for _, c := range canvas {
				i.Matched.Add(stats.Match(i.Buffer, c.buffer, origin.Sub(c.origin)))
			}
		}
		images = append(images, i)
	}
	return images, nil
}

func (l *Loader) loadImage(ctx context.Context, m *Manifest, e Entry) (*Image, error) {
	b, format, err := DecodeImage(m.Resolve(e.Path))
	if err != nil {
		return nil, err
	}
	i := &Image{Entry: e, Buffer: b, Digest: Digest(b)}

	if l.Cache != nil {
		t, ok, err := l.Cache.Totals(ctx, e.Key, i.Digest)
		if err != nil {
			l.log().Warn("totals cache read failed", "image", e.Key, "error", err)
		} else if ok {
			i.Totals = t
			l.log().Debug("totals cache hit", "image", e.Key, "colors", len(t))
			return i, nil
		}
	}

	var n int
	i.Totals, n = stats.ExtractImage(b)
	l.log().Debug("counted image",
		"image", e.Key,
		"format", format,
		"size", b.Bounds().Size(),
		"pixels", n,
		"colors", len(i.Totals))

	if l.Cache != nil {
		if err = l.Cache.Store(ctx, e.Key, i.Digest, i.Totals); err != nil {
			return nil, err
		}
	}
	return i, nil
}

type canvasTile struct {
	origin image.Point
	buffer *pixel.Buffer
}

func (l *Loader) loadCanvas(ctx context.Context, m *Manifest) ([]canvasTile, error) {
	tiles := make([]canvasTile, 0, len(m.Canvas))
	for _, c := range m.Canvas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pos, err := tile.ParseKey(c.Tile)
		if err != nil {
			return nil, err
		}
		b, _, err := DecodeImage(m.Resolve(c.Path))
		if err != nil {
			return nil, fmt.Errorf("canvas tile %s: %w", c.Tile, err)
		}
		tiles = append(tiles, canvasTile{
			origin: image.Pt(pos.X*m.TileSize, pos.Y*m.TileSize),
			buffer: b,
		})
	}
	return tiles, nil
}
