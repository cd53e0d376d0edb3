package collagelib

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/awused/awconf"
	"github.com/awused/collage-wallpapers/util/log"
)

const configName = "collage-wallpapers"

const (
	defaultTransitionMinutes = 30
	defaultJPEGQuality       = 95
)

type MonitorConfig struct {
	// Files or directories, directories are searched recursively
	Wallpapers []string
	// Minutes, overrides the global TransitionDelay
	TransitionDelay *int64
	Index           *int
}

type Config struct {
	// Minutes between wallpaper changes
	TransitionDelay *int64
	// Generated collages are written here
	TempDirectory string
	// jpg, png or bmp
	OutputFormat      string
	JPEGQuality       int
	GenerationWorkers int
	LogFile           string
	Debug             bool
	Monitors          []MonitorConfig
}

// MonitorSpec is a validated monitor entry with its index resolved.
type MonitorSpec struct {
	Index      int
	Wallpapers []string
	// Zero means the global delay applies
	TransitionDelay time.Duration
}

// ConfigError reports a missing or malformed field in the config file.
type ConfigError struct {
	msg string
	err error
}

func (e *ConfigError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *ConfigError) Unwrap() error {
	return e.err
}

func configErrorf(format string, a ...interface{}) error {
	return &ConfigError{msg: fmt.Sprintf(format, a...)}
}

var conf *Config

func GetConfig() (*Config, error) {
	if conf != nil {
		return conf, nil
	}

	return nil, fmt.Errorf("Init never called")
}

// Init loads and validates the config. When path is empty the config is
// located by awconf.
func Init(path string) (*Config, error) {
	c, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	conf = c
	return c, nil
}

// LoadConfig reads a config without replacing the one returned by GetConfig.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		c := &Config{}
		if err := awconf.LoadConfig(configName, c); err != nil {
			return nil, &ConfigError{msg: "Failed to load config", err: err}
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{msg: fmt.Sprintf("Failed to read config file [%s]", path), err: err}
	}

	return ParseConfig(string(data))
}

// ParseConfig decodes and validates TOML config data.
func ParseConfig(data string) (*Config, error) {
	c := &Config{}
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, &ConfigError{msg: "Failed to parse config", err: err}
	}

	for _, k := range md.Undecoded() {
		log.Printf("[WARN] Unknown config key [%s]", k.String())
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.TransitionDelay == nil {
		d := int64(defaultTransitionMinutes)
		c.TransitionDelay = &d
	} else if *c.TransitionDelay <= 0 {
		return configErrorf("TransitionDelay must be greater than 0")
	}

	if c.TempDirectory == "" {
		c.TempDirectory = filepath.Join(os.TempDir(), configName)
	}

	fi, err := os.Stat(c.TempDirectory)
	if err == nil && !fi.IsDir() {
		return configErrorf("TempDirectory [%s] is not a directory", c.TempDirectory)
	} else if err != nil && !os.IsNotExist(err) {
		return configErrorf(
			"Error calling os.Stat on TempDirectory [%s]: %s", c.TempDirectory, err)
	}

	if c.OutputFormat == "" {
		c.OutputFormat = "jpg"
	}
	if _, err := outputType(c.OutputFormat); err != nil {
		return err
	}

	if c.JPEGQuality == 0 {
		c.JPEGQuality = defaultJPEGQuality
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return configErrorf("JPEGQuality must be between 1 and 100")
	}

	if c.GenerationWorkers == 0 {
		c.GenerationWorkers = runtime.NumCPU()
	}
	if c.GenerationWorkers < 0 {
		return configErrorf("GenerationWorkers must be greater than 0")
	}

	if len(c.Monitors) == 0 {
		return configErrorf("Config missing Monitors")
	}

	for i := range c.Monitors {
		m := &c.Monitors[i]

		if len(m.Wallpapers) == 0 {
			return configErrorf("Monitors[%d] is missing Wallpapers", i)
		}

		if m.TransitionDelay != nil && *m.TransitionDelay <= 0 {
			return configErrorf("Monitors[%d].TransitionDelay must be greater than 0", i)
		}

		if m.Index != nil && *m.Index < 0 {
			return configErrorf("Monitors[%d].Index must not be negative", i)
		}

		expanded, err := ExpandWallpapers(m.Wallpapers)
		if err != nil {
			return &ConfigError{msg: fmt.Sprintf("Monitors[%d] has unreadable Wallpapers", i), err: err}
		}
		m.Wallpapers = expanded
	}

	return assignIndices(c.Monitors)
}

func outputType(format string) (ImageType, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	}
	return UnknownType, configErrorf("Unsupported OutputFormat [%s]", format)
}

// ExpandWallpapers replaces directories with every regular file beneath
// them. Anything else, including paths that don't exist, is passed through to
// be rejected later when the catalog is built.
func ExpandWallpapers(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		if p == "" {
			return nil, fmt.Errorf("Empty path present in Wallpapers")
		}

		fi, err := os.Stat(p)
		if err != nil || !fi.IsDir() {
			out = append(out, p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Monitors with an explicit index keep it. The rest take the lowest unused
// indices, counting up from 0.
func assignIndices(monitors []MonitorConfig) error {
	used := make(map[int]bool)
	for i, m := range monitors {
		if m.Index == nil {
			continue
		}
		if used[*m.Index] {
			return configErrorf("Monitors[%d] has duplicate Index %d", i, *m.Index)
		}
		used[*m.Index] = true
	}

	next := 0
	for i := range monitors {
		if monitors[i].Index != nil {
			continue
		}
		for used[next] {
			next++
		}

		idx := next
		monitors[i].Index = &idx
		used[idx] = true
	}
	return nil
}

// GlobalDelay is the transition delay for monitors without their own.
func (c *Config) GlobalDelay() time.Duration {
	return time.Duration(*c.TransitionDelay) * time.Minute
}

// Output describes the format of generated collages.
func (c *Config) Output() OutputOptions {
	// Already validated
	t, _ := outputType(c.OutputFormat)
	return OutputOptions{Type: t, JPEGQuality: c.JPEGQuality}
}

// MonitorSpecs returns every monitor ordered by index. Only valid after the
// config has been validated.
func (c *Config) MonitorSpecs() []MonitorSpec {
	specs := make([]MonitorSpec, 0, len(c.Monitors))
	for _, m := range c.Monitors {
		s := MonitorSpec{
			Index:      *m.Index,
			Wallpapers: append([]string(nil), m.Wallpapers...),
		}
		if m.TransitionDelay != nil {
			s.TransitionDelay = time.Duration(*m.TransitionDelay) * time.Minute
		}
		specs = append(specs, s)
	}

	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Index < specs[j].Index
	})
	return specs
}
