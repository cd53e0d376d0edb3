package collagelib

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awused/collage-wallpapers/util/log"
)

const filePrefix = "collage_wallpaper"

const timestampFormat = "20060102-150405"

// WorkDir is the directory generated collages are written to. Files are named
// <prefix>_m<monitor>_<timestamp>.<ext> so each monitor only ever touches its
// own files.
type WorkDir struct {
	Path string
	now  func() time.Time
}

// OpenWorkDir creates path if it doesn't already exist.
func OpenWorkDir(path string) (*WorkDir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(abs)
	if os.IsNotExist(err) {
		if err = os.MkdirAll(abs, 0755); err != nil {
			return nil, fmt.Errorf("Error creating TempDirectory [%s]: %w", abs, err)
		}
		log.Debugf("Created temp directory: %s", abs)
	} else if err != nil {
		return nil, err
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("TempDirectory [%s] is not a directory", abs)
	}

	return &WorkDir{Path: abs, now: time.Now}, nil
}

func monitorPrefix(index int) string {
	return fmt.Sprintf("%s_m%d_", filePrefix, index)
}

// NextFile returns an unused path for a new collage for the monitor. Files
// generated within the same second get a numeric suffix.
func (w *WorkDir) NextFile(index int, ext string) (string, error) {
	base := monitorPrefix(index) + w.now().Format(timestampFormat)
	name := base + "." + ext

	for n := 1; ; n++ {
		p := filepath.Join(w.Path, name)
		_, err := os.Lstat(p)
		if os.IsNotExist(err) {
			return p, nil
		}
		if err != nil {
			return "", err
		}
		name = fmt.Sprintf("%s-%d.%s", base, n, ext)
	}
}

// PurgeMonitor removes every file generated for the monitor except keep.
// Other monitors' files are never touched, they may be mid-write.
func (w *WorkDir) PurgeMonitor(index int, keep string) error {
	return w.purge(monitorPrefix(index), keep)
}

// PurgeAll removes every generated file, including ones left behind by
// earlier runs. Only call this before any pipeline has started.
func (w *WorkDir) PurgeAll() error {
	return w.purge(filePrefix+"_", "")
}

func (w *WorkDir) purge(prefix, keep string) error {
	entries, err := os.ReadDir(w.Path)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}

		p := filepath.Join(w.Path, e.Name())
		if p == keep {
			continue
		}

		log.Debugf("Removing item: %s", p)
		if err = os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// CountFiles returns how many generated files the monitor currently has.
func (w *WorkDir) CountFiles(index int) (int, error) {
	entries, err := os.ReadDir(w.Path)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), monitorPrefix(index)) {
			n++
		}
	}
	return n, nil
}
