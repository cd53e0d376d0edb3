//go:build !windows

package collagelib

import (
	"errors"
	"io"
	"os"
	"regexp"
	"strings"
	"syscall"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/awused/collage-wallpapers/util/log"
)

type environment int

const (
	gnome environment = iota
	i3
	unknown
)

func (e environment) String() string {
	switch e {
	case gnome:
		return "gnome"
	case i3:
		return "i3"
	}
	return "unknown"
}

// Monitor is one active CRTC, in X screen coordinates.
type Monitor struct {
	Width  int
	Height int
	left   int
	top    int
}

var sysProcAttr = &syscall.SysProcAttr{}

func init() {
	// Stop polluting stdout
	xgb.Logger.SetOutput(io.Discard)
	xgbutil.Logger.SetOutput(io.Discard)
}

// Assumes a display ID of the form ":[0-9]+"
// True if it's definitely a local X session
func testXSession(display string) bool {
	_, err := os.Stat("/tmp/.X11-unix/X" + strings.TrimLeft(display, ":"))
	return err == nil
}

var displayRE = regexp.MustCompile(`^:[0-9]+`)

// Trims individual screens out of an X11 DISPLAY variable
func trimDisplay(display string) string {
	trimmed := displayRE.FindString(display)
	if trimmed != "" {
		return trimmed
	}
	return display
}

// Finds the X display of the current user. Only the first one is used.
func findDisplay() (string, error) {
	// If $DISPLAY is set we just check to see if it's an X session
	d := trimDisplay(os.Getenv("DISPLAY"))
	if d != "" {
		if testXSession(d) {
			return d, nil
		}
		return "", errors.New(
			"$DISPLAY refers to a non-X session. Wayland is not supported")
	}

	displays, err := runBash(
		`w "$USER" | { grep ' :[0-9]*' || test $? = 1; } | awk '{print $2}'`)
	if err != nil {
		return "", err
	}

	for _, d := range strings.Split(strings.TrimSpace(displays), "\n") {
		if d != "" && testXSession(d) {
			return d, nil
		}
	}

	return "", errors.New("No X session found")
}

// Queries the window manager and every active CRTC of display. Disabled
// outputs have a CRTC with no size and are skipped.
func queryMonitors(display string) ([]*Monitor, environment, error) {
	X, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, unknown, err
	}
	Xgb := X.Conn()
	defer Xgb.Close()

	env := unknown
	wm, err := ewmh.GetEwmhWM(X)
	if err != nil {
		log.Debugf("Unable to determine window manager: %v", err)
	} else {
		wm = strings.ToLower(wm)
		if strings.Contains(wm, "gnome") {
			env = gnome
		} else if wm == "i3" {
			env = i3
		} else {
			// Feh probably works
			log.Debugf("Encountered unknown WM/DE: %s", wm)
		}
	}

	if err = randr.Init(Xgb); err != nil {
		return nil, env, err
	}

	root := xproto.Setup(Xgb).DefaultScreen(Xgb).Root

	resources, err := randr.GetScreenResources(Xgb, root).Reply()
	if err != nil {
		return nil, env, err
	}

	monitors := []*Monitor{}
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(Xgb, crtc, 0).Reply()
		if err != nil {
			return nil, env, err
		}
		if info.Width == 0 || info.Height == 0 {
			continue
		}

		monitors = append(monitors, &Monitor{
			Width:  int(info.Width),
			Height: int(info.Height),
			left:   int(info.X),
			top:    int(info.Y),
		})
	}

	return monitors, env, nil
}
