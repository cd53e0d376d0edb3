package collagelib

import (
	"bytes"
	"context"
	stdlog "log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalog(t *testing.T) {
	dir := t.TempDir()
	a := writeSolid(t, dir, "a.png", 30, 20, red)
	b := writeSolid(t, dir, "b.jpg", 10, 40, blue)
	notImage := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("not an image"), 0644))
	missing := filepath.Join(dir, "missing.png")

	monitors := []MonitorSpec{
		{Index: 0, Wallpapers: []string{a, notImage, b}},
		{Index: 3, Wallpapers: []string{b, missing}},
		{Index: 1, Wallpapers: []string{notImage}},
	}

	var logs bytes.Buffer
	stdlog.SetOutput(&logs)
	defer stdlog.SetOutput(os.Stderr)

	res, err := BuildCatalog(context.Background(), monitors, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Catalog.Len())
	img, ok := res.Catalog.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, SourceImage{Path: a, Width: 30, Height: 20, Type: PNG}, img)
	img, ok = res.Catalog.Lookup(b)
	require.True(t, ok)
	assert.Equal(t, JPEG, img.Type)
	assert.Equal(t, Dimensions{Width: 10, Height: 40}, img.Dimensions())

	require.Len(t, res.Monitors, 3)
	assert.Equal(t, 0, res.Monitors[0].Index)
	assert.Equal(t, []string{a, b}, res.Monitors[0].Wallpapers)
	assert.Equal(t, 3, res.Monitors[1].Index)
	assert.Equal(t, []string{b}, res.Monitors[1].Wallpapers)
	assert.Empty(t, res.Monitors[2].Wallpapers)

	assert.Equal(t, []string{missing, notImage}, res.Excluded)
	assert.Contains(t, logs.String(), "["+missing+"] could not be read or identified")
	assert.Contains(t, logs.String(), "["+notImage+"] could not be read or identified")
	// Reported by the caller, which decides whether to skip the monitor
	assert.NotContains(t, logs.String(), "no usable wallpapers")

	// The input is left alone
	assert.Len(t, monitors[0].Wallpapers, 3)
}

func TestBuildCatalogCancelled(t *testing.T) {
	dir := t.TempDir()
	a := writeSolid(t, dir, "a.png", 3, 2, red)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildCatalog(ctx, []MonitorSpec{{Wallpapers: []string{a}}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildCatalogEmpty(t *testing.T) {
	res, err := BuildCatalog(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Catalog.Len())
	assert.Empty(t, res.Excluded)
}
