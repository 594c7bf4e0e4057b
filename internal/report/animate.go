package report

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"

	"fesweep/internal/artifact"

	"go.uber.org/zap"
)

// animations encodes each artifact channel's ordered frames into a
// looping GIF named <channel>_evolution.gif. A channel with a single
// frame still gets its (static) animation, matching the one-run sweep
// case. Channels fail independently.
func (a *Assembler) animations(set *artifact.Set) map[string]string {
	out := make(map[string]string)
	for _, channel := range set.Channels() {
		frames := set.Frames(channel)
		if len(frames) == 0 {
			continue
		}
		path := filepath.Join(a.OutDir, channel+"_evolution.gif")
		if err := a.encodeGIF(frames, path); err != nil {
			a.Log.Warn("animation skipped",
				zap.String("channel", channel),
				zap.Error(err))
			continue
		}
		out[channel] = path
		a.Log.Debug("animation encoded",
			zap.String("channel", channel),
			zap.Int("frames", len(frames)))
	}
	return out
}

func (a *Assembler) encodeGIF(framePaths []string, path string) error {
	delay := int(a.FrameDelay.Milliseconds() / 10) // gif delay unit is 10ms
	if delay < 1 {
		delay = 1
	}
	anim := &gif.GIF{LoopCount: 0}
	for _, fp := range framePaths {
		img, err := readPNG(fp)
		if err != nil {
			return fmt.Errorf("frame %s: %w", filepath.Base(fp), err)
		}
		bounds := img.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, img, bounds.Min)
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, anim)
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
