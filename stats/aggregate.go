package stats

import (
	"sort"

	"github.com/BeatGlow/overlay/pixel"
	"github.com/BeatGlow/overlay/tile"
)

// Anchor ties a target image to the tile it is drawn on.
type Anchor struct {
	// ID identifies the image in the gallery.
	ID string

	// Enabled is the draw toggle; disabled images never contribute.
	Enabled bool

	// Position is the anchor tile, nil if the image was never placed.
	Position *tile.Coord
}

// Tile returns the anchor tile key and whether the image has a position.
func (a Anchor) Tile() (tile.Key, bool) {
	if a.Position == nil {
		return "", false
	}
	return a.Position.Key(), true
}

// MatchedProvider reports how many pixels of a color are already reproduced on the canvas.
type MatchedProvider interface {
	Matched(pixel.Key) int
}

// MatchedFunc adapts a function to a MatchedProvider.
type MatchedFunc func(pixel.Key) int

func (f MatchedFunc) Matched(k pixel.Key) int {
	return f(k)
}

// Counts is a per color pixel count that doubles as a MatchedProvider.
type Counts map[pixel.Key]int

func (c Counts) Matched(k pixel.Key) int {
	return c[k]
}

// Source is one target image offered for aggregation.
type Source struct {
	Anchor

	// Totals are the image's precomputed per color pixel counts.
	Totals Totals

	// Matched supplies matched counts for this image, nil means none matched.
	Matched MatchedProvider
}

// ColorStats holds the merged counts for one color.
type ColorStats struct {
	Matched int
	Total   int
}

// Remaining is the number of pixels that still need to be placed.
func (s ColorStats) Remaining() int {
	return s.Total - s.Matched
}

// Map holds per color statistics. An empty map means there is nothing to report.
type Map map[pixel.Key]ColorStats

// Entry is one row of a sorted Map.
type Entry struct {
	Key pixel.Key
	ColorStats
}

// Sorted returns the entries with the most remaining pixels first, ties ordered by key.
func (m Map) Sorted() []Entry {
	entries := make([]Entry, 0, len(m))
	for k, v := range m {
		entries = append(entries, Entry{Key: k, ColorStats: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		ri, rj := entries[i].Remaining(), entries[j].Remaining()
		if ri != rj {
			return ri > rj
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Sum returns the statistics over all colors.
func (m Map) Sum() ColorStats {
	var s ColorStats
	for _, v := range m {
		s.Matched += v.Matched
		s.Total += v.Total
	}
	return s
}

// Participates reports whether the source takes part in an aggregation over visible.
func (s Source) Participates(visible tile.Set) bool {
	if !s.Enabled {
		return false
	}
	k, ok := s.Tile()
	return ok && visible.Has(k)
}

// Aggregate merges the totals of all enabled sources anchored on a visible tile. Totals of
// different images are summed, never capped or deduplicated. Matched counts are taken from
// each participating source's provider for the colors present in that source.
//
// Colors without pixels are not part of the result. If no source participates the
// result is an empty, non-nil Map.
func Aggregate(sources []Source, visible tile.Set) Map {
	out := make(Map)
	for _, src := range sources {
		if !src.Participates(visible) {
			continue
		}
		for k, n := range src.Totals {
			if n <= 0 {
				continue
			}
			s := out[k]
			s.Total += n
			if src.Matched != nil {
				s.Matched += src.Matched.Matched(k)
			}
			out[k] = s
		}
	}
	return out
}
