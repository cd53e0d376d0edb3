//go:build !windows

package collagelib

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Spans every monitor's wallpaper across one image covering the whole X
// screen. Assumes the wallpapers were already generated at each monitor's
// resolution. Monitors without a wallpaper are left black.
func combineImages(monitors []*Monitor, wallpapers map[int]string, outFile string) error {
	if len(monitors) == 0 {
		return fmt.Errorf("No monitors to combine")
	}

	width := 0
	height := 0

	for _, m := range monitors {
		if m.left+m.Width > width {
			width = m.left + m.Width
		}
		if m.top+m.Height > height {
			height = m.top + m.Height
		}
	}

	canvas := imaging.New(width, height, color.Black)

	for i, m := range monitors {
		w, ok := wallpapers[i]
		if !ok {
			continue
		}

		img, err := imaging.Open(w)
		if err != nil {
			return err
		}
		canvas = imaging.Paste(canvas, img, image.Pt(m.left, m.top))
	}

	return imaging.Save(canvas, outFile)
}
