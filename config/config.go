// Package config loads converter settings from a TOML file, the
// PBRTCONV_FLAGS environment variable and command line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/parser"
	"github.com/df07/pbrt-scene/scene"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "~/.pbrtconv.toml"

// EnvFlags names the environment variable holding extra flags
const EnvFlags = "PBRTCONV_FLAGS"

// Config holds the converter settings
type Config struct {
	Silent       bool     `toml:"silent"`
	DirHierarchy bool     `toml:"dir_hierarchy"`
	SwapAxis     []string `toml:"swap_axis"`
	AutoFlat     bool     `toml:"auto_flat"`
	AutoEdge     float64  `toml:"auto_edge"`
	NoConvert    bool     `toml:"no_convert"`
	MaxRepeats   int      `toml:"max_repeats"`
	Output       string   `toml:"output"`
	Format       string   `toml:"format"`
	Preview      string   `toml:"preview"`
	PreviewWidth int      `toml:"preview_width"`
	Watch        bool     `toml:"watch"`

	Server ServerConfig `toml:"server"`
}

// ServerConfig holds the settings of the HTTP service
type ServerConfig struct {
	Port int `toml:"port"`
	// Root allows Include for posted scenes, confined to this directory
	Root string `toml:"root"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		AutoEdge:     360,
		MaxRepeats:   diag.DefaultMaxRepeats,
		Format:       "text",
		PreviewWidth: 320,
		Server:       ServerConfig{Port: 8080},
	}
}

// LoadFile merges the TOML file at path into c. Unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand config path %s: %w", path, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config %s: %s", expanded, strict.String())
		}
		return fmt.Errorf("config %s: %w", expanded, err)
	}
	return nil
}

// axisList is a flag.Value accepting axis letters separated by spaces
// or commas. The first use replaces the configured list, later uses append.
type axisList struct {
	axes *[]string
	set  bool
}

func (a *axisList) String() string {
	if a == nil || a.axes == nil {
		return ""
	}
	return strings.Join(*a.axes, " ")
}

func (a *axisList) Set(v string) error {
	if !a.set {
		*a.axes = nil
		a.set = true
	}
	*a.axes = append(*a.axes, strings.FieldsFunc(v, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})...)
	return nil
}

// BindFlags registers the converter flags on fs, writing into c
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Silent, "silent", c.Silent, "Suppress warnings and infos")
	fs.BoolVar(&c.DirHierarchy, "dirhierarchy", c.DirHierarchy, "Resolve paths relative to each included file")
	fs.Var(&axisList{axes: &c.SwapAxis}, "swapaxis", `Swap axis pairs after parsing, e.g. "x z"`)
	fs.BoolVar(&c.AutoFlat, "autoflat", c.AutoFlat, "Build flat normals for meshes without normals")
	fs.Float64Var(&c.AutoEdge, "autoedge", c.AutoEdge, "Split mesh vertices at edges sharper than this angle in degrees")
	fs.BoolVar(&c.NoConvert, "noconvert", c.NoConvert, "Only parse, skip axis swap, preview and export")
	fs.IntVar(&c.MaxRepeats, "maxrepeats", c.MaxRepeats, "Print each diagnostic at most this many times")
	fs.StringVar(&c.Format, "format", c.Format, "Summary format: text, json or yaml")
	fs.StringVar(&c.Output, "output", c.Output, "Write the summary to this file")
	fs.StringVar(&c.Preview, "preview", c.Preview, "Render a preview PNG to this file")
	fs.IntVar(&c.PreviewWidth, "previewwidth", c.PreviewWidth, "Preview width in pixels")
	fs.BoolVar(&c.Watch, "watch", c.Watch, "Parse again whenever the scene changes")
}

// BindServerFlags registers the HTTP service flags on fs
func (c *Config) BindServerFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Server.Port, "port", c.Server.Port, "Port to serve on")
	fs.StringVar(&c.Server.Root, "root", c.Server.Root, "Directory posted scenes may Include from")
}

// Load builds the configuration for a program: defaults, then the config
// file, then the flags in PBRTCONV_FLAGS, then args. It returns the
// remaining positional arguments.
func Load(name string, args []string, getenv func(string) string, bind func(*Config, *flag.FlagSet)) (*Config, []string, error) {
	cfg := Default()

	path, explicit := findConfigFlag(args)
	if !explicit {
		path = DefaultPath
	}
	if err := cfg.LoadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, err
		}
	}

	envArgs, err := shellwords.Parse(getenv(EnvFlags))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split %s: %w", EnvFlags, err)
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.String("config", path, "Config file")
	bind(&cfg, flags)

	rest, err := parseInterspersed(flags, append(envArgs, args...))
	if err != nil {
		return nil, nil, err
	}
	return &cfg, rest, nil
}

// findConfigFlag looks for --config before the flag set exists
func findConfigFlag(args []string) (string, bool) {
	for i, a := range args {
		name := strings.TrimLeft(a, "-")
		if !strings.HasPrefix(a, "-") {
			continue
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1], true
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v, true
		}
	}
	return "", false
}

// parseInterspersed parses flags that may appear after positional
// arguments
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// AxisSwap composes the configured axis swaps in order
func (c *Config) AxisSwap() geom.Matrix {
	m := geom.Identity()
	for i := 0; i+1 < len(c.SwapAxis); i += 2 {
		a1, ok1 := axisIndex(c.SwapAxis[i])
		a2, ok2 := axisIndex(c.SwapAxis[i+1])
		if ok1 && ok2 && a1 != a2 {
			m = m.Mul(geom.SwapAxes(a1, a2))
		}
	}
	return m
}

func axisIndex(s string) (int, bool) {
	switch strings.ToLower(s) {
	case "x":
		return 0, true
	case "y":
		return 1, true
	case "z":
		return 2, true
	}
	return 0, false
}

// SinkOptions returns the diagnostics options for c
func (c *Config) SinkOptions() []diag.Option {
	return []diag.Option{diag.WithSilent(c.Silent), diag.WithMaxRepeats(c.MaxRepeats)}
}

// Env returns a parse context configured from c
func (c *Config) Env(reporter diag.Reporter) *parser.Env {
	env := parser.NewEnv(reporter)
	env.DirHierarchy = c.DirHierarchy
	env.AutoFlat = c.AutoFlat
	env.AutoEdge = float32(c.AutoEdge)
	return env
}

// Convert runs the post-parse stage on ro: the axis swap, unless
// conversion is turned off
func (c *Config) Convert(ro *scene.RenderOptions, reporter diag.Reporter) {
	if c.NoConvert {
		return
	}
	m := c.AxisSwap()
	if m.IsIdentity() {
		return
	}
	reporter.Infof("swapping axis")
	ro.SwapAxes(m)
}
