package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	lib "github.com/awused/collage-wallpapers/lib"
	"github.com/stretchr/testify/assert"
)

type fixedBackend struct {
	resolutions map[int][2]int
}

func (b fixedBackend) SetWallpaper(int, string) error {
	return errors.New("Not supported")
}

func (b fixedBackend) Resolution(index int) (int, int, error) {
	r, ok := b.resolutions[index]
	if !ok {
		return 0, 0, errors.New("Not connected")
	}
	return r[0], r[1], nil
}

func testCatalog() *lib.CatalogResult {
	return &lib.CatalogResult{
		Catalog: lib.NewCatalog(
			lib.SourceImage{Path: "/a.jpg", Width: 1000, Height: 1500, Type: lib.JPEG},
			lib.SourceImage{Path: "/b.png", Width: 800, Height: 1080, Type: lib.PNG},
		),
		Monitors: []lib.MonitorSpec{
			{Index: 0, Wallpapers: []string{"/a.jpg", "/b.png"}},
			{Index: 1, Wallpapers: []string{"/a.jpg"}, TransitionDelay: 5 * time.Minute},
			{Index: 4},
		},
		Excluded: []string{"/notes.txt"},
	}
}

func TestWriteReport(t *testing.T) {
	var out bytes.Buffer
	backend := fixedBackend{resolutions: map[int][2]int{0: {1920, 1080}}}

	usable := writeReport(&out, testCatalog(), 30*time.Minute, backend, lib.NewRand(1))
	assert.Equal(t, 2, usable)

	s := out.String()
	assert.Contains(t, s, "1 files could not be used:\n  /notes.txt\n")
	assert.Contains(t, s, "Monitor 0: 2 wallpapers, changes every 30m0s, 1920x1080\n")
	// Both fit whatever the order
	assert.Contains(t, s, "  /a.jpg (1000x1500) at ")
	assert.Contains(t, s, "  /b.png (800x1080) at ")
	assert.Contains(t, s, "Monitor 1: 1 wallpapers, changes every 5m0s\n  Resolution unavailable: Not connected\n")
	assert.Contains(t, s, "Monitor 4: 0 wallpapers, changes every 30m0s\n")
}

func TestWriteReportWithoutBackend(t *testing.T) {
	var out bytes.Buffer

	usable := writeReport(&out, testCatalog(), time.Hour, nil, lib.NewRand(1))
	assert.Equal(t, 2, usable)
	assert.Contains(t, out.String(), "Monitor 0: 2 wallpapers, changes every 1h0m0s\n")
	assert.NotContains(t, out.String(), " at ")
}
