// Package config loads mandelzoom settings from defaults, an optional
// TOML file and command line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/palette"
	"github.com/marben/mandelzoom/session"
)

// Frontends.
const (
	FrontendTerminal = "terminal"
	FrontendWeb      = "web"
)

// Config is the full set of recognised options.
type Config struct {
	// Preset names a landmark region. When set it replaces Region.
	Preset string        `toml:"preset"`
	Region mandel.Region `toml:"region"`

	Width   int `toml:"width"`
	Height  int `toml:"height"`
	MaxIter int `toml:"max_iter"`
	Growth  int `toml:"growth"`

	EscapeRadius float64 `toml:"escape_radius"`
	Palette      string  `toml:"palette"`

	Workers  int `toml:"workers"`
	TileSize int `toml:"tile"`

	SelectTimeout time.Duration `toml:"select_timeout"`

	Frontend string `toml:"frontend"`
	Addr     string `toml:"addr"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Region:       mandel.FullView,
		Width:        1536,
		Height:       1024,
		MaxIter:      20,
		Growth:       session.DefaultGrowth,
		EscapeRadius: mandel.DefaultEscapeRadius,
		Palette:      palette.Default,
		TileSize:     mandel.DefaultTileSize,
		Frontend:     FrontendTerminal,
		Addr:         ":8080",
		LogLevel:     "info",
	}
}

// Load decodes a TOML file over c. Unknown keys are an error.
func (c *Config) Load(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Parse builds a Config from args (without the program name):
// defaults, then the file named by -config, then explicitly set flags.
func Parse(name string, args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "TOML config file")
	fl := cfg
	fs.StringVar(&fl.Preset, "preset", "", "landmark region: "+strings.Join(mandel.LandmarkNames(), ", "))
	fs.Float64Var(&fl.Region.Xmin, "xmin", fl.Region.Xmin, "lower real bound")
	fs.Float64Var(&fl.Region.Xmax, "xmax", fl.Region.Xmax, "upper real bound")
	fs.Float64Var(&fl.Region.Ymin, "ymin", fl.Region.Ymin, "lower imaginary bound")
	fs.Float64Var(&fl.Region.Ymax, "ymax", fl.Region.Ymax, "upper imaginary bound")
	fs.IntVar(&fl.Width, "width", fl.Width, "grid width in pixels")
	fs.IntVar(&fl.Height, "height", fl.Height, "grid height in pixels")
	fs.IntVar(&fl.MaxIter, "maxiter", fl.MaxIter, "initial iteration cap")
	fs.IntVar(&fl.Growth, "growth", fl.Growth, "iteration cap multiplier per zoom")
	fs.Float64Var(&fl.EscapeRadius, "radius", fl.EscapeRadius, "escape radius")
	fs.StringVar(&fl.Palette, "palette", fl.Palette, "palette: "+strings.Join(palette.Names(), ", "))
	fs.IntVar(&fl.Workers, "workers", fl.Workers, "sampler goroutines (0 = GOMAXPROCS)")
	fs.IntVar(&fl.TileSize, "tile", fl.TileSize, "sampler tile size")
	fs.DurationVar(&fl.SelectTimeout, "timeout", fl.SelectTimeout, "selection timeout (0 = wait forever)")
	fs.StringVar(&fl.Frontend, "frontend", fl.Frontend, "frontend: terminal or web")
	fs.StringVar(&fl.Addr, "addr", fl.Addr, "listen address for the web frontend")
	fs.StringVar(&fl.LogFile, "log", fl.LogFile, "log file (empty disables logging)")
	fs.StringVar(&fl.LogLevel, "loglevel", fl.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		if err := cfg.Load(*path); err != nil {
			return Config{}, err
		}
	}

	// flags win over the file, but only when given on the command line
	var presetFlag, boundsFlag bool
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "preset":
			cfg.Preset = fl.Preset
			presetFlag = true
		case "xmin":
			cfg.Region.Xmin = fl.Region.Xmin
			boundsFlag = true
		case "xmax":
			cfg.Region.Xmax = fl.Region.Xmax
			boundsFlag = true
		case "ymin":
			cfg.Region.Ymin = fl.Region.Ymin
			boundsFlag = true
		case "ymax":
			cfg.Region.Ymax = fl.Region.Ymax
			boundsFlag = true
		case "width":
			cfg.Width = fl.Width
		case "height":
			cfg.Height = fl.Height
		case "maxiter":
			cfg.MaxIter = fl.MaxIter
		case "growth":
			cfg.Growth = fl.Growth
		case "radius":
			cfg.EscapeRadius = fl.EscapeRadius
		case "palette":
			cfg.Palette = fl.Palette
		case "workers":
			cfg.Workers = fl.Workers
		case "tile":
			cfg.TileSize = fl.TileSize
		case "timeout":
			cfg.SelectTimeout = fl.SelectTimeout
		case "frontend":
			cfg.Frontend = fl.Frontend
		case "addr":
			cfg.Addr = fl.Addr
		case "log":
			cfg.LogFile = fl.LogFile
		case "loglevel":
			cfg.LogLevel = fl.LogLevel
		}
	})

	// explicit bounds replace a preset from the file, but not one from the
	// command line
	if boundsFlag {
		if presetFlag {
			return Config{}, errors.New("-preset conflicts with -xmin, -xmax, -ymin and -ymax")
		}
		cfg.Preset = ""
	}

	if err := cfg.resolvePreset(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolvePreset() error {
	if c.Preset == "" {
		return nil
	}
	r, ok := mandel.Landmark(c.Preset)
	if !ok {
		return fmt.Errorf("unknown preset %q (known: %s)", c.Preset, strings.Join(mandel.LandmarkNames(), ", "))
	}
	c.Region = r
	return nil
}

// Validate reports every invalid option at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Region.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := mandel.ValidateSize(c.Width, c.Height); err != nil {
		errs = append(errs, err)
	}
	if err := mandel.ValidateIterationCap(c.MaxIter); err != nil {
		errs = append(errs, err)
	}
	if c.Growth < 1 {
		errs = append(errs, fmt.Errorf("growth must be at least 1, got %d", c.Growth))
	}
	if !(c.EscapeRadius >= 2) {
		errs = append(errs, fmt.Errorf("escape radius must be at least 2, got %g", c.EscapeRadius))
	}
	if _, err := palette.New(c.Palette); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("tile size must be positive, got %d", c.TileSize))
	}
	if c.SelectTimeout < 0 {
		errs = append(errs, fmt.Errorf("select timeout must not be negative, got %s", c.SelectTimeout))
	}
	if c.Frontend != FrontendTerminal && c.Frontend != FrontendWeb {
		errs = append(errs, fmt.Errorf("unknown frontend %q", c.Frontend))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// Sampler returns a sampler configured from c.
func (c Config) Sampler() *mandel.Sampler {
	return &mandel.Sampler{
		Workers:   c.Workers,
		TileSize:  c.TileSize,
		Evaluator: mandel.Evaluator{Radius: c.EscapeRadius},
	}
}

// Session returns the session parameters of c.
func (c Config) Session() session.Config {
	return session.Config{
		Region:        c.Region,
		Width:         c.Width,
		Height:        c.Height,
		MaxIter:       c.MaxIter,
		Growth:        c.Growth,
		SelectTimeout: c.SelectTimeout,
	}
}
