package collagelib

// Backend talks to the desktop environment. Implementations must be safe to
// call from every monitor's pipeline at once.
type Backend interface {
	// SetWallpaper installs path as the wallpaper of the monitor.
	SetWallpaper(index int, path string) error
	// Resolution is queried before every generation, monitors can be
	// reconfigured at any time.
	Resolution(index int) (width, height int, err error)
}
