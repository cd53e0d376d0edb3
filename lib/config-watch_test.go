package collagelib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchedConfig = `
TransitionDelay = %d
[[Monitors]]
Wallpapers = ["a"]
[[Monitors]]
Wallpapers = ["b"]
TransitionDelay = 7
`

func writeConfig(t *testing.T, p string, minutes int) {
	data := []byte(fmt.Sprintf(watchedConfig, minutes))
	require.NoError(t, os.WriteFile(p, data, 0644))
}

func TestReloadSchedule(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, p, 20)

	s := NewSchedule(30*time.Minute, nil)
	require.NoError(t, ReloadSchedule(p, s))

	assert.Equal(t, 20*time.Minute, s.Delay(0))
	assert.Equal(t, 7*time.Minute, s.Delay(1))

	// Broken configs leave the schedule alone
	require.NoError(t, os.WriteFile(p, []byte("TransitionDelay = "), 0644))
	assert.Error(t, ReloadSchedule(p, s))
	assert.Equal(t, 20*time.Minute, s.Delay(0))
}

func TestConfigWatcher(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.toml")
	writeConfig(t, p, 20)

	cw, err := NewConfigWatcher(p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 16)
	done := make(chan struct{})
	go func() {
		cw.Run(ctx, func() { reloaded <- struct{}{} })
		close(done)
	}()

	// Unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0644))
	writeConfig(t, p, 5)

	select {
	case <-reloaded:
	case <-time.After(testTimeout):
		t.Fatal("Timed out waiting for a reload")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("Watcher did not stop")
	}
}
