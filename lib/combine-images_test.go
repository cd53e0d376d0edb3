//go:build !windows

package collagelib

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineImages(t *testing.T) {
	dir := t.TempDir()
	left := writeSolid(t, dir, "left.png", 40, 30, red)
	right := writeSolid(t, dir, "right.png", 20, 20, blue)

	monitors := []*Monitor{
		{Width: 40, Height: 30, left: 0, top: 0},
		{Width: 20, Height: 20, left: 40, top: 10},
		// No wallpaper yet
		{Width: 10, Height: 10, left: 60, top: 0},
	}
	out := filepath.Join(dir, "spanned.bmp")

	require.NoError(t, combineImages(monitors, map[int]string{0: left, 1: right}, out))

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, 70, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	assertColour(t, img, 10, 10, red)
	assertColour(t, img, 50, 20, blue)
	assertColour(t, img, 50, 5, color.NRGBA{A: 255})
	assertColour(t, img, 65, 5, color.NRGBA{A: 255})
}

func TestCombineImagesNoMonitors(t *testing.T) {
	assert.Error(t, combineImages(nil, nil, filepath.Join(t.TempDir(), "x.bmp")))
}

func TestFehArgs(t *testing.T) {
	args := fehArgs(3, map[int]string{0: "/a.jpg", 2: "/c.jpg", 5: "/gone.jpg"}, "/blank.png")
	assert.Equal(t, []string{"--no-fehbg", "--bg-center", "/a.jpg", "/blank.png", "/c.jpg"}, args)
}

func TestTrimDisplay(t *testing.T) {
	assert.Equal(t, ":0", trimDisplay(":0.1"))
	assert.Equal(t, ":12", trimDisplay(":12"))
	assert.Equal(t, "host:0", trimDisplay("host:0"))
}
