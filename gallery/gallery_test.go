package gallery

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/BeatGlow/overlay/pixel"
	"github.com/BeatGlow/overlay/stats"
	"github.com/BeatGlow/overlay/tile"
)

var (
	red   = pixel.Encode(255, 0, 0)
	green = pixel.Encode(0, 255, 0)
)

func testWritePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err = png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func testWriteFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallery.yaml")
	testWriteFile(t, path, `
tile_size: 100
images:
  - key: castle
    path: castle.png
    position: {tlx: 3, tly: 4}
    offset: {x: 10, y: 20}
  - key: hidden
    path: /abs/hidden.png
    enabled: false
visible_tiles: ["3,4"]
palette: ["#ff0000"]
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.TileSize != 100 || len(m.Images) != 2 {
		t.Fatalf("unexpected manifest %+v", m)
	}

	castle := m.Images[0]
	if !castle.IsEnabled() {
		t.Error("expected images to be enabled by default")
	}
	if castle.Position == nil || *castle.Position != (tile.Coord{X: 3, Y: 4}) {
		t.Errorf("unexpected position %v", castle.Position)
	}
	if v, ok := castle.Origin(m.TileSize); !ok || v != image.Pt(310, 420) {
		t.Errorf("unexpected origin %v", v)
	}
	if v := m.Resolve(castle.Path); v != filepath.Join(dir, "castle.png") {
		t.Errorf("unexpected resolved path %q", v)
	}

	hidden := m.Images[1]
	if hidden.IsEnabled() {
		t.Error("expected hidden image to be disabled")
	}
	if _, ok := hidden.Origin(m.TileSize); ok {
		t.Error("expected no origin without position")
	}
	if v := m.Resolve(hidden.Path); v != "/abs/hidden.png" {
		t.Errorf("unexpected resolved path %q", v)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.yaml")
	testWriteFile(t, path, "images: []\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.TileSize != DefaultManifest().TileSize {
		t.Errorf("expected default tile size, got %d", m.TileSize)
	}
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		Name string
		YAML string
		Want string
	}{
		{"tile-size", "tile_size: 0", "tile_size"},
		{"key", "images: [{path: a.png}]", "key is required"},
		{"path", "images: [{key: a}]", "path is required"},
		{"duplicate", "images: [{key: a, path: a.png}, {key: a, path: b.png}]", "duplicate key"},
		{"visible", "visible_tiles: [nope]", "visible_tiles[0]"},
		{"canvas", "canvas: [{tile: '1,1'}]", "canvas[0]: path"},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			path := filepath.Join(it.TempDir(), "gallery.yaml")
			testWriteFile(it, path, test.YAML)
			_, err := LoadManifest(path)
			if err == nil || !strings.Contains(err.Error(), test.Want) {
				it.Errorf("expected error containing %q, got %v", test.Want, err)
			}
		})
	}
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	c, err := OpenCache(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, ok, err := c.Totals(ctx, "a", "d1"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%t err=%v", ok, err)
	}

	want := stats.Totals{red: 100, green: 3, pixel.Encode(1, 2, 3): 1 << 20}
	if err = c.Store(ctx, "a", "d1", want); err != nil {
		t.Fatal(err)
	}
	v, ok, err := c.Totals(ctx, "a", "d1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%t err=%v", ok, err)
	}
	if !maps.Equal(v, want) {
		t.Errorf("expected %v, got %v", want, v)
	}

	// Changed content invalidates the entry.
	if _, ok, _ = c.Totals(ctx, "a", "d2"); ok {
		t.Error("expected digest mismatch to miss")
	}
	if err = c.Store(ctx, "a", "d2", stats.Totals{}); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ = c.Totals(ctx, "a", "d2"); !ok || len(v) != 0 {
		t.Errorf("expected replaced empty entry, got %v", v)
	}
}

func TestCacheCorrupt(t *testing.T) {
	ctx := context.Background()
	c, err := OpenCache(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err = c.db.ExecContext(ctx,
		"INSERT INTO totals VALUES ('bad', 'd', 0, ?, 0)", []byte("not zstd")); err != nil {
		t.Fatal(err)
	}
	if _, _, err = c.Totals(ctx, "bad", "d"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestTotalsEncoding(t *testing.T) {
	want := stats.Totals{red: 1, green: 2}
	v, err := decodeTotals(encodeTotals(want))
	if err != nil {
		t.Fatal(err)
	}
	if !maps.Equal(v, want) {
		t.Errorf("expected %v, got %v", want, v)
	}
	// One color whose count does not fit an int.
	huge := binary.AppendUvarint([]byte{1, 5}, 1<<63)

	for _, bad := range [][]byte{nil, {2, 1}, append(encodeTotals(want), 0), huge} {
		if _, err = decodeTotals(bad); err == nil {
			t.Errorf("expected error decoding %v", bad)
		}
	}
}

func TestDigest(t *testing.T) {
	a := pixel.NewBuffer(2, 2)
	b := pixel.NewBuffer(2, 2)
	if Digest(a) != Digest(b) {
		t.Error("expected equal digests")
	}
	b.Set(1, 1, color.NRGBA{A: 1})
	if Digest(a) == Digest(b) {
		t.Error("expected content change to change digest")
	}
	if Digest(pixel.NewBuffer(1, 4)) == Digest(a) {
		t.Error("expected dimensions to change digest")
	}
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	testWritePNG(t, filepath.Join(dir, "red.png"), 10, 10, color.NRGBA{R: 255, A: 255})
	testWritePNG(t, filepath.Join(dir, "green.png"), 4, 1, color.NRGBA{G: 255, A: 255})

	// The canvas tile already holds the top 3 rows of the red image.
	canvas := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 3; y++ {
		for x := 0; x < 10; x++ {
			canvas.SetNRGBA(50+x, 60+y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		t.Fatal(err)
	}
	testWriteFile(t, filepath.Join(dir, "canvas-1-0.png"), buf.String())

	path := filepath.Join(dir, "gallery.yaml")
	testWriteFile(t, path, `
tile_size: 100
images:
  - key: red
    path: red.png
    position: {tlx: 1, tly: 0}
    offset: {x: 50, y: 60}
  - key: green
    path: green.png
    position: {tlx: 5, tly: 5}
canvas:
  - tile: "1,0"
    path: canvas-1-0.png
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}

	cache, err := OpenCache(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	l := &Loader{Cache: cache}
	images, err := l.Load(ctx, m)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}

	got := stats.Aggregate(Sources(images), tile.NewSet("1,0"))
	if want := (stats.Map{red: {Matched: 30, Total: 100}}); !maps.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// The second load is served from the cache.
	if _, ok, _ := cache.Totals(ctx, "red", images[0].Digest); !ok {
		t.Error("expected totals to be cached")
	}
	again, err := l.Load(ctx, m)
	if err != nil {
		t.Fatal(err)
	}
	if !maps.Equal(again[0].Totals, images[0].Totals) {
		t.Error("expected cached totals to match")
	}
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	m := DefaultManifest()
	m.dir = dir
	m.Images = []Entry{{Key: "missing", Path: "missing.png"}}

	if _, err := new(Loader).Load(context.Background(), m); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("expected missing image error, got %v", err)
	}

	testWriteFile(t, filepath.Join(dir, "junk.png"), "not an image")
	m.Images = []Entry{{Key: "junk", Path: "junk.png"}}
	if _, err := new(Loader).Load(context.Background(), m); err == nil {
		t.Error("expected decode error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := new(Loader).Load(ctx, m); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// Guards the assumption that the cache blobs are plain zstd frames.
func TestCacheBlobIsZstd(t *testing.T) {
	ctx := context.Background()
	c, err := OpenCache(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err = c.Store(ctx, "a", "d", stats.Totals{red: 1}); err != nil {
		t.Fatal(err)
	}

	var data []byte
	if err = c.db.QueryRowContext(ctx, "SELECT data FROM totals").Scan(&data); err != nil {
		t.Fatal(err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	if _, err = dec.DecodeAll(data, nil); err != nil {
		t.Errorf("expected a zstd frame, got %v", err)
	}
}
