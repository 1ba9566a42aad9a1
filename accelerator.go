package overlay

import (
	"errors"
	"log/slog"

	"github.com/BeatGlow/overlay/filter"
)

// Accelerator is an optional hardware backed palette filter.
//
// When a session has an accelerator, [Session.Filter] tries it first. If it
// returns [ErrFallbackToCPU] or any other error, the CPU filter is used instead.
type Accelerator interface {
	// Name returns the accelerator name (e.g. "wgpu").
	Name() string

	// FilterColors writes the filtered pixels of src into dst, which has the same
	// length as src. The palette holds at most [filter.MaxColors] entries and the
	// dimensions are already validated.
	FilterColors(dst, src []byte, palette filter.Palette, width, height int) error

	// Close releases the accelerator resources.
	Close() error
}

// loggerSetter is implemented by accelerators that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func propagateLogger(a Accelerator, l *slog.Logger) {
	if ls, ok := a.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

// filterColors runs the accelerator if there is one and falls back to the CPU filter.
func (s *Session) filterColors(src []byte, palette filter.Palette, width, height int) ([]byte, error) {
	w, h, err := filter.Dimensions(src, width, height)
	if err != nil {
		return nil, err
	}
	if s.accel == nil || len(palette) == 0 {
		return filter.Filter(src, palette, w, h)
	}

	dst := make([]byte, len(src))
	err = s.accel.FilterColors(dst, src, palette.Limit(), w, h)
	if err == nil {
		return dst, nil
	}
	if errors.Is(err, ErrFallbackToCPU) {
		s.log.Debug("accelerator declined filter", "accelerator", s.accel.Name())
	} else {
		s.log.Warn("accelerator failed, using CPU filter", "accelerator", s.accel.Name(), "error", err)
	}
	return filter.Filter(src, palette, w, h)
}
