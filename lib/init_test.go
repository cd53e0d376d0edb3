package collagelib

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	c, err := ParseConfig(`
[[Monitors]]
Wallpapers = ["/a.jpg", "/b.png"]
`)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, c.GlobalDelay())
	assert.Equal(t, OutputOptions{Type: JPEG, JPEGQuality: 95}, c.Output())
	assert.Equal(t, runtime.NumCPU(), c.GenerationWorkers)
	assert.Equal(t, filepath.Join(os.TempDir(), "collage-wallpapers"), c.TempDirectory)

	specs := c.MonitorSpecs()
	require.Len(t, specs, 1)
	assert.Equal(t, MonitorSpec{Index: 0, Wallpapers: []string{"/a.jpg", "/b.png"}}, specs[0])
}

func TestParseConfig(t *testing.T) {
	tmp := t.TempDir()
	c, err := ParseConfig(fmt.Sprintf(`
TransitionDelay = 5
TempDirectory = %q
OutputFormat = "PNG"
GenerationWorkers = 3
Debug = true

[[Monitors]]
Wallpapers = ["/a.jpg"]
TransitionDelay = 10
`, tmp))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, c.GlobalDelay())
	assert.Equal(t, PNG, c.Output().Type)
	assert.Equal(t, 3, c.GenerationWorkers)
	assert.Equal(t, tmp, c.TempDirectory)
	assert.True(t, c.Debug)
	assert.Equal(t, 10*time.Minute, c.MonitorSpecs()[0].TransitionDelay)
}

func TestAssignIndices(t *testing.T) {
	c, err := ParseConfig(`
[[Monitors]]
Wallpapers = ["a"]
Index = 2

[[Monitors]]
Wallpapers = ["b"]

[[Monitors]]
Wallpapers = ["c"]
Index = 5

[[Monitors]]
Wallpapers = ["d"]
`)
	require.NoError(t, err)

	specs := c.MonitorSpecs()
	require.Len(t, specs, 4)

	got := map[int]string{}
	for _, s := range specs {
		got[s.Index] = s.Wallpapers[0]
	}
	assert.Equal(t, map[int]string{0: "b", 1: "d", 2: "a", 5: "c"}, got)

	// Ordered by index
	for i := 1; i < len(specs); i++ {
		assert.Less(t, specs[i-1].Index, specs[i].Index)
	}
}

func TestAssignIndicesSkipsExplicitZero(t *testing.T) {
	c, err := ParseConfig(`
[[Monitors]]
Wallpapers = ["a"]

[[Monitors]]
Wallpapers = ["b"]
Index = 0
`)
	require.NoError(t, err)

	specs := c.MonitorSpecs()
	assert.Equal(t, 0, specs[0].Index)
	assert.Equal(t, "b", specs[0].Wallpapers[0])
	assert.Equal(t, 1, specs[1].Index)
	assert.Equal(t, "a", specs[1].Wallpapers[0])
}

func TestParseConfigErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	tests := map[string]string{
		"no monitors": `TransitionDelay = 5`,
		"empty wallpapers": `
[[Monitors]]
Wallpapers = []`,
		"empty path": `
[[Monitors]]
Wallpapers = [""]`,
		"duplicate index": `
[[Monitors]]
Wallpapers = ["a"]
Index = 1
[[Monitors]]
Wallpapers = ["b"]
Index = 1`,
		"negative index": `
[[Monitors]]
Wallpapers = ["a"]
Index = -1`,
		"zero delay": `
TransitionDelay = 0
[[Monitors]]
Wallpapers = ["a"]`,
		"negative monitor delay": `
[[Monitors]]
Wallpapers = ["a"]
TransitionDelay = -3`,
		"output format": `
OutputFormat = "gif"
[[Monitors]]
Wallpapers = ["a"]`,
		"jpeg quality": `
JPEGQuality = 101
[[Monitors]]
Wallpapers = ["a"]`,
		"workers": `
GenerationWorkers = -1
[[Monitors]]
Wallpapers = ["a"]`,
		"temp directory is a file": fmt.Sprintf(`
TempDirectory = %q
[[Monitors]]
Wallpapers = ["a"]`, file),
		"malformed": `[[Monitors]`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := ParseConfig(data)
			assert.Nil(t, c)
			require.Error(t, err)

			var ce *ConfigError
			assert.True(t, errors.As(err, &ce))
		})
	}
}

func TestExpandWallpapers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"a.jpg", "sub/b.png", "sub/c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	single := filepath.Join(t.TempDir(), "single.jpg")
	missing := filepath.Join(dir, "missing.jpg")

	got, err := ExpandWallpapers([]string{dir, single, missing})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "sub", "b.png"),
		filepath.Join(dir, "sub", "c.txt"),
		single,
		missing,
	}, got)
}

func TestLoadConfigFromPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(`
TransitionDelay = 12
[[Monitors]]
Wallpapers = ["a"]
`), 0644))

	c, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Minute, c.GlobalDelay())

	_, err = LoadConfig(p + ".missing")
	var ce *ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestInit(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(`
[[Monitors]]
Wallpapers = ["a"]
`), 0644))

	c, err := Init(p)
	require.NoError(t, err)

	got, err := GetConfig()
	require.NoError(t, err)
	assert.Same(t, c, got)
}
