// Package tile identifies canvas tiles and tracks which of them have been seen.
package tile

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrKey is returned for keys that are not of the form "x,y".
var ErrKey = errors.New("tile: malformed key")

// Key identifies a tile by its top-left grid coordinate, formatted as "x,y".
type Key string

// Coord is a tile position in the canvas tile grid.
type Coord struct {
	X int `yaml:"tlx"`
	Y int `yaml:"tly"`
}

// Key returns the "x,y" key of the tile.
func (c Coord) Key() Key {
	return MakeKey(c.X, c.Y)
}

func (c Coord) String() string {
	return string(c.Key())
}

// MakeKey returns the key for the tile at (x, y).
func MakeKey(x, y int) Key {
	return Key(strconv.Itoa(x) + "," + strconv.Itoa(y))
}

// ParseKey parses an "x,y" key.
func ParseKey(s string) (Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("%w: %q", ErrKey, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Coord{}, fmt.Errorf("%w: %q", ErrKey, s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Coord{}, fmt.Errorf("%w: %q", ErrKey, s)
	}
	return Coord{X: x, Y: y}, nil
}

// Coord parses the key.
func (k Key) Coord() (Coord, error) {
	return ParseKey(string(k))
}

// Set is a set of tile keys.
type Set map[Key]struct{}

// NewSet returns a set holding keys.
func NewSet(keys ...Key) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether k is a member of s. A nil set has no members.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Keys returns the members of s in lexical order.
func (s Set) Keys() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
