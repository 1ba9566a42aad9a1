package overlay

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/BeatGlow/overlay/filter"
	"github.com/BeatGlow/overlay/stats"
	"github.com/BeatGlow/overlay/tile"
)

// Session holds the state of one overlay session: the tiles seen so far and the
// optional filter accelerator. Sessions are independent; several may run side by side.
type Session struct {
	id    string
	tiles *tile.Registry
	accel Accelerator
	log   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session identifier used in log records. By default a random UUID is used.
func WithID(id string) Option { return func(s *Session) { s.id = id } }

// WithLogger sets the session logger. By default the package [Logger] is used.
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.log = l } }

// WithAccelerator sets a hardware palette filter, tried before the CPU filter.
func WithAccelerator(a Accelerator) Option { return func(s *Session) { s.accel = a } }

// NewSession returns a session without any seen tiles.
func NewSession(options ...Option) *Session {
	s := &Session{tiles: tile.NewRegistry()}
	for _, option := range options {
		option(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.log == nil {
		s.log = Logger()
	}
	s.log = s.log.With("session", s.id)
	if s.accel != nil {
		propagateLogger(s.accel, s.log)
		s.log.Info("session created", "accelerator", s.accel.Name())
	} else {
		s.log.Info("session created", "accelerator", "cpu")
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// RecordTile notes that the tile at (x, y) became visible on the canvas.
func (s *Session) RecordTile(x, y int) {
	if s.tiles.Record(x, y) {
		s.log.Debug("tile visible", "tile", tile.MakeKey(x, y), "tiles", s.tiles.Len())
	}
}

// VisibleTiles returns a snapshot of all tiles seen in this session.
func (s *Session) VisibleTiles() tile.Set {
	return s.tiles.Snapshot()
}

// Stats aggregates the statistics of the sources anchored on tiles seen in this session.
func (s *Session) Stats(sources []stats.Source) stats.Map {
	visible := s.tiles.Snapshot()
	m := stats.Aggregate(sources, visible)
	if s.log.Enabled(context.Background(), slog.LevelDebug) {
		var participants int
		for _, src := range sources {
			if src.Participates(visible) {
				participants++
			}
		}
		s.log.Debug("aggregated stats",
			"sources", len(sources),
			"participants", participants,
			"tiles", len(visible),
			"colors", len(m))
	}
	return m
}

// Filter hides the pixels of src whose color is not in the palette; see [filter.Filter].
// A width and height of zero treat src as a single scanline.
func (s *Session) Filter(src []byte, palette filter.Palette, width, height int) ([]byte, error) {
	dst, err := s.filterColors(src, palette, width, height)
	if err != nil {
		return nil, err
	}
	s.log.Debug("filtered pixels", "bytes", len(src), "palette", len(palette))
	return dst, nil
}

// Close releases the accelerator, if any.
func (s *Session) Close() error {
	if s.accel == nil {
		return nil
	}
	return s.accel.Close()
}
