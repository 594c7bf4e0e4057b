// Package artifact captures per-run visual snapshots from the solver
// session and accumulates them into per-channel frame sequences for the
// report's animations. Capture is read-only with respect to solve state:
// it issues plot and raster-export commands, never loads or solves.
package artifact

import (
	"fmt"
	"path/filepath"

	"fesweep/internal/solver"

	"go.uber.org/zap"
)

// Channel is one named visualization output (field magnitude, per-axis
// component, deformed shape, mesh view). Render issues the plot command
// for it; the capturer pairs that with a raster export.
type Channel struct {
	Name   string
	Render func(s solver.Session) error
}

// Set accumulates captured image paths per channel, preserving both
// channel registration order and run order within a channel.
type Set struct {
	order  []string
	frames map[string][]string
}

// NewSet returns an empty artifact set.
func NewSet() *Set {
	return &Set{frames: make(map[string][]string)}
}

// Add appends one frame to a channel.
func (s *Set) Add(channel, path string) {
	if _, ok := s.frames[channel]; !ok {
		s.order = append(s.order, channel)
	}
	s.frames[channel] = append(s.frames[channel], path)
}

// Channels lists channels in first-seen order.
func (s *Set) Channels() []string { return append([]string(nil), s.order...) }

// Frames returns the ordered frame paths of a channel.
func (s *Set) Frames(channel string) []string {
	return append([]string(nil), s.frames[channel]...)
}

// Len reports the total number of captured frames.
func (s *Set) Len() int {
	n := 0
	for _, f := range s.frames {
		n += len(f)
	}
	return n
}

// Capturer writes per-run snapshots below OutDir, named by channel and
// zero-padded run index.
type Capturer struct {
	OutDir string
	Log    *zap.Logger
}

// Capture renders each channel and exports it to
// <OutDir>/<channel>_run_<NNN>.png. Channel failures are independent: a
// failed channel logs a warning and is absent from the returned map,
// the remaining channels still capture. Never fails the run.
func (c *Capturer) Capture(s solver.Session, runNumber int, channels []Channel) map[string]string {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	out := make(map[string]string, len(channels))
	for _, ch := range channels {
		path := filepath.Join(c.OutDir, fmt.Sprintf("%s_run_%03d.png", ch.Name, runNumber))
		if err := ch.Render(s); err != nil {
			log.Warn("artifact channel unavailable",
				zap.String("channel", ch.Name),
				zap.Int("run", runNumber),
				zap.Error(err))
			continue
		}
		if err := s.ExportRaster(path); err != nil {
			log.Warn("artifact export failed",
				zap.String("channel", ch.Name),
				zap.Int("run", runNumber),
				zap.Error(err))
			continue
		}
		out[ch.Name] = path
	}
	return out
}
