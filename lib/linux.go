//go:build !windows

package collagelib

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/awused/collage-wallpapers/util/log"
	"github.com/disintegration/imaging"
)

const dbusAddress = "DBUS_SESSION_BUS_ADDRESS"

func setDBUSAddress() error {
	dbus := os.Getenv(dbusAddress)
	if dbus == "" {
		// For now just assume we're dealing with per-user dbus sessions
		user, err := user.Current()
		if err != nil {
			return nil
		}
		uid := user.Uid
		if uid == "" {
			return errors.New("No $UID set")
		}
		return os.Setenv(dbusAddress, "unix:path=/run/user/"+uid+"/bus")
	}

	return nil
}

// BMP takes a lot of space but PNG takes non-trivial CPU time
const spannedFormat = "bmp"

// Not matched by any monitor's prefix, but still removed by PurgeAll
const spannedPrefix = filePrefix + "_spanned_"

const blankFile = filePrefix + "_blank.png"

// X11 wallpapers are set for every monitor at once, so the backend remembers
// the last wallpaper of each monitor.
type x11Backend struct {
	display string
	workDir *WorkDir

	mu         sync.Mutex
	wallpapers map[int]string
	spanned    string
	blank      string
}

// NewBackend connects to the desktop of the current user.
func NewBackend(wd *WorkDir) (Backend, error) {
	display, err := findDisplay()
	if err != nil {
		return nil, err
	}

	os.Setenv("DISPLAY", display)

	// Per-User DBUS session
	if err = setDBUSAddress(); err != nil {
		return nil, err
	}

	log.Debugf("Using X display %s", display)
	return &x11Backend{
		display:    display,
		workDir:    wd,
		wallpapers: make(map[int]string),
	}, nil
}

func (b *x11Backend) monitor(index int) (*Monitor, []*Monitor, environment, error) {
	monitors, env, err := queryMonitors(b.display)
	if err != nil {
		return nil, nil, env, err
	}

	if index < 0 || index >= len(monitors) {
		return nil, nil, env, fmt.Errorf(
			"Monitor %d is not connected, %d monitors detected", index, len(monitors))
	}
	return monitors[index], monitors, env, nil
}

func (b *x11Backend) Resolution(index int) (int, int, error) {
	m, _, _, err := b.monitor(index)
	if err != nil {
		return 0, 0, err
	}
	return m.Width, m.Height, nil
}

func (b *x11Backend) SetWallpaper(index int, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, monitors, env, err := b.monitor(index)
	if err != nil {
		return err
	}

	b.wallpapers[index] = path

	if env == gnome {
		return b.setGnomeWallpaper(monitors)
	}

	return b.setFehWallpapers(monitors)
}

func (b *x11Backend) setGnomeWallpaper(monitors []*Monitor) error {
	f, err := os.CreateTemp(b.workDir.Path, spannedPrefix+"*."+spannedFormat)
	if err != nil {
		return err
	}
	wallpaper := f.Name()
	if err = f.Close(); err != nil {
		return err
	}

	if err = combineImages(monitors, b.wallpapers, wallpaper); err != nil {
		_ = os.Remove(wallpaper)
		return err
	}

	_, err = runBash(`
		gsettings set org.gnome.desktop.background picture-options spanned
		gsettings set org.gnome.desktop.background picture-uri "file://` + wallpaper + `"
	`)
	if err != nil {
		_ = os.Remove(wallpaper)
		return err
	}

	// Only remove files we own
	old := b.spanned
	b.spanned = wallpaper
	if old != "" && filepath.Dir(old) == b.workDir.Path {
		// This could have already been removed, bury any errors
		_ = os.Remove(old)
	}

	return nil
}

func (b *x11Backend) setFehWallpapers(monitors []*Monitor) error {
	if b.blank == "" {
		b.blank = filepath.Join(b.workDir.Path, blankFile)
		err := imaging.Save(imaging.New(1, 1, color.Black), b.blank)
		if err != nil {
			b.blank = ""
			return err
		}
	}

	cmd := exec.Command("feh", fehArgs(len(monitors), b.wallpapers, b.blank)...)
	cmd.SysProcAttr = sysProcAttr
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("Error running feh: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// feh takes one file per monitor in order, monitors without a wallpaper yet
// get a black placeholder.
func fehArgs(monitors int, wallpapers map[int]string, blank string) []string {
	args := []string{"--no-fehbg", "--bg-center"}

	for i := 0; i < monitors; i++ {
		if w, ok := wallpapers[i]; ok {
			args = append(args, w)
		} else {
			args = append(args, blank)
		}
	}
	return args
}

// No-op
func AttachParentConsole() {}

func runBash(cmd string) (string, error) {
	// See http://redsymbol.net/articles/unofficial-bash-strict-mode/
	command := `
		set -euo pipefail
		IFS=$'\n\t'
		` + cmd + "\n"

	bash := exec.Command("/usr/bin/env", "bash")
	bash.Stdin = strings.NewReader(command)
	bash.Stderr = os.Stderr

	bashOut, err := bash.Output()
	return string(bashOut), err
}
