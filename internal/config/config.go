// Package config loads compiler settings from a milan.yaml file.
package config

import (
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"milan/internal/codegen"
)

// FileName is the name of the settings file looked up next to a source file.
const FileName = "milan.yaml"

// Config holds the settings that shape a compilation. Command-line flags
// override whatever a file sets.
type Config struct {
	// Format of the emitted program: "listing" or "yaml".
	Format string `yaml:"format"`

	// Output path. Empty derives it from the source file name; "-" means
	// standard output.
	Output string `yaml:"output"`

	// ScratchShift leaves a gap between the variables and the scratch region.
	ScratchShift int `yaml:"scratchShift"`

	// Warnings controls whether warnings are printed.
	Warnings bool `yaml:"warnings"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Format:   codegen.Listing.String(),
		Warnings: true,
	}
}

// Parse decodes a settings document on top of the defaults. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the settings file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read configuration %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	glog.V(1).Infof("loaded configuration from %s", path)
	return cfg, nil
}

// Discover loads dir/milan.yaml if it exists and falls back to the defaults
// otherwise. It returns the path it loaded, or "" for the defaults.
func Discover(dir string) (*Config, string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			glog.V(3).Infof("no %s in %s; using defaults", FileName, dir)
			return Default(), "", nil
		}
		return nil, "", errors.Wrapf(err, "cannot stat %s", path)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Validate checks values that the YAML decoder cannot.
func (c *Config) Validate() error {
	if _, err := codegen.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.ScratchShift < 0 {
		return errors.Errorf("scratchShift must not be negative, got %d", c.ScratchShift)
	}
	return nil
}

// Options converts the settings to code-generation options.
func (c *Config) Options() (*codegen.Options, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	format, _ := codegen.ParseFormat(c.Format)
	return &codegen.Options{
		Format:       format,
		ScratchShift: c.ScratchShift,
		Verbose:      bool(glog.V(4)),
	}, nil
}
