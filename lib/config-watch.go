package collagelib

import (
	"context"
	"path/filepath"
	"time"

	"github.com/awused/collage-wallpapers/util/log"
	"github.com/fsnotify/fsnotify"
)

// Editors tend to produce a burst of events for a single save
const reloadDebounce = 250 * time.Millisecond

// ReloadSchedule re-reads the config at path, or the default config when path
// is empty, and applies its delays to s. Nothing else is reloaded.
func ReloadSchedule(path string, s *Schedule) error {
	c, err := LoadConfig(path)
	if err != nil {
		return err
	}

	s.Update(c.GlobalDelay(), c.MonitorSpecs())
	log.Printf("Reloaded transition delays, default is now %s", c.GlobalDelay())
	return nil
}

// ConfigWatcher reports changes to a single config file.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewConfigWatcher starts watching path. The parent directory is watched
// since editors usually replace the file instead of writing to it.
func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err = w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	return &ConfigWatcher{path: abs, watcher: w}, nil
}

// Run calls reload after the file changes until ctx is cancelled. The watcher
// is closed when Run returns.
func (cw *ConfigWatcher) Run(ctx context.Context, reload func()) {
	defer cw.watcher.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			log.Debugf("Config changed: %s", ev)
			pending = time.After(reloadDebounce)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] Error watching config file: %v", err)
		case <-pending:
			pending = nil
			reload()
		}
	}
}
