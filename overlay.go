// Package overlay reconciles target images with a tile based raster canvas.
//
// A [Session] owns the set of tiles seen so far and turns a gallery of target
// images into per color statistics ("how many pixels of this color are left to
// place") and palette filtered overlay buffers.
//
// The heavy lifting lives in the sub packages:
//
//   - [github.com/BeatGlow/overlay/pixel]: color keys and RGBA buffers
//   - [github.com/BeatGlow/overlay/tile]: tile keys and the seen tile registry
//   - [github.com/BeatGlow/overlay/stats]: per image totals and aggregation
//   - [github.com/BeatGlow/overlay/filter]: CPU palette filter
package overlay

import (
	"errors"
	"os"
)

var debug bool

func init() {
	debug = os.Getenv("OVERLAY_DEBUG") != ""
}

// Debug reports whether OVERLAY_DEBUG is set in the environment.
func Debug() bool {
	return debug
}

// Errors
var (
	// ErrFallbackToCPU indicates the accelerator cannot handle the request.
	// The caller should transparently fall back to the CPU filter.
	ErrFallbackToCPU = errors.New("overlay: falling back to CPU filter")
)
