package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/BeatGlow/overlay"
	"github.com/BeatGlow/overlay/filter"
	"github.com/BeatGlow/overlay/gallery"
	"github.com/BeatGlow/overlay/pixel"
	"github.com/BeatGlow/overlay/report"
	"github.com/BeatGlow/overlay/tile"
)

func main() {
	tilesFlag := flag.String("tiles", "", "Extra visible tiles, as x,y pairs separated by ;")
	paletteFlag := flag.String("palette", "", "Overlay palette, comma separated #rrggbb colors (overrides manifest)")
	overlayFlag := flag.String("overlay", "", "Write palette filtered overlays to this directory")
	reportFlag := flag.String("report", "", "Write a statistics report PNG to this file")
	previewFlag := flag.String("preview", "", "Key of the image shown at the top of the report")
	cacheFlag := flag.String("cache", "", "Totals cache database (overrides manifest)")
	langFlag := flag.String("lang", "en", "Language used to format numbers")
	debugFlag := flag.Bool("debug", overlay.Debug(), "Enable debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <manifest.yaml>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	overlay.SetLogger(logger)

	tag, err := language.Parse(*langFlag)
	if err != nil {
		fatal(fmt.Errorf("invalid language %q: %w", *langFlag, err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, config{
		manifest: flag.Arg(0),
		tiles:    *tilesFlag,
		palette:  *paletteFlag,
		overlay:  *overlayFlag,
		report:   *reportFlag,
		preview:  *previewFlag,
		cache:    *cacheFlag,
		lang:     tag,
		logger:   logger,
	})
	stop()
	if err != nil {
		fatal(err)
	}
}

type config struct {
	manifest string
	tiles    string
	palette  string
	overlay  string
	report   string
	preview  string
	cache    string
	lang     language.Tag
	logger   *slog.Logger
}

func run(ctx context.Context, cfg config) error {
	m, err := gallery.LoadManifest(cfg.manifest)
	if err != nil {
		return err
	}

	loader := &gallery.Loader{Logger: cfg.logger}
	if path := firstNonEmpty(cfg.cache, m.Resolve(m.Cache)); path != "" {
		if loader.Cache, err = gallery.OpenCache(path); err != nil {
			return err
		}
		defer loader.Cache.Close()
	}

	images, err := loader.Load(ctx, m)
	if err != nil {
		return err
	}

	session := overlay.NewSession(overlay.WithLogger(cfg.logger))
	defer session.Close()

	visible := m.VisibleTiles
	if cfg.tiles != "" {
		visible = append(visible, strings.Split(cfg.tiles, ";")...)
	}
	for _, k := range visible {
		c, err := tile.ParseKey(k)
		if err != nil {
			return err
		}
		session.RecordTile(c.X, c.Y)
	}

	result := session.Stats(gallery.Sources(images))

	p := message.NewPrinter(cfg.lang)
	if len(result) == 0 {
		p.Println("no statistics: no enabled image is anchored on a visible tile")
	}
	for _, e := range result.Sorted() {
		p.Printf("%-8s %s  remaining %d of %d\n", e.Key.RGB().Hex(), e.Key, e.Remaining(), e.Total)
	}
	if sum := result.Sum(); sum.Total > 0 {
		p.Printf("total    %d of %d pixels placed (%.1f%%)\n", sum.Matched, sum.Total, 100*float64(sum.Matched)/float64(sum.Total))
	}

	if cfg.report != "" {
		o := report.Options{Language: cfg.lang}
		if cfg.preview != "" {
			i := findImage(images, cfg.preview)
			if i == nil {
				return fmt.Errorf("preview: no image %q in manifest", cfg.preview)
			}
			o.Preview = i.Buffer
		}
		img, err := report.Render(result, o)
		if err != nil {
			return err
		}
		if err = writePNG(cfg.report, img); err != nil {
			return err
		}
	}

	if cfg.overlay != "" {
		colors := m.Palette
		if cfg.palette != "" {
			colors = strings.Split(cfg.palette, ",")
		}
		palette, err := filter.ParsePalette(colors)
		if err != nil {
			return err
		}
		if len(palette) > filter.MaxColors {
			cfg.logger.Warn("palette truncated", "colors", len(palette), "max", filter.MaxColors)
		}
		if err = os.MkdirAll(cfg.overlay, 0o755); err != nil {
			return err
		}
		for _, i := range images {
			b := i.Buffer
			pix, err := session.Filter(b.Pix, palette, b.Rect.Dx(), b.Rect.Dy())
			if err != nil {
				return fmt.Errorf("filter %s: %w", i.Key, err)
			}
			out, err := pixel.WrapBuffer(pix, b.Rect.Dx(), b.Rect.Dy())
			if err != nil {
				return err
			}
			if err = writePNG(filepath.Join(cfg.overlay, i.Key+".png"), out); err != nil {
				return err
			}
		}
	}
	return nil
}

func findImage(images []*gallery.Image, key string) *gallery.Image {
	for _, i := range images {
		if i.Key == key {
			return i
		}
	}
	return nil
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
