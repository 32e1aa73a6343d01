// Package config loads slicer settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/frames"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/kernel/polycurve"
	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/program"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root of the settings file.
type Config struct {
	Kernel  Kernel  `yaml:"kernel"`
	Frames  Frames  `yaml:"frames"`
	Machine Machine `yaml:"machine"`
	Program Program `yaml:"program"`
	Output  Output  `yaml:"output"`
}

// Kernel tunes the geometry kernel.
type Kernel struct {
	Tolerance   float64 `yaml:"tolerance" validate:"gt=0"`
	KinkAngle   float64 `yaml:"kink_angle" validate:"gt=0,lt=180"`
	Segments    int     `yaml:"segments" validate:"gte=8"`
	SpanSamples int     `yaml:"span_samples" validate:"gte=2"`
}

// Frames holds the curvature reduction constants.
type Frames struct {
	Keep      int     `yaml:"keep" validate:"gte=0"`
	Threshold float64 `yaml:"threshold" validate:"gte=0"`
}

// Machine holds the limits checked by job validation.
type Machine struct {
	MaxHotEnd   float64 `yaml:"max_hot_end" validate:"gt=0"`
	MaxBed      float64 `yaml:"max_bed" validate:"gt=0"`
	MaxFeedRate float64 `yaml:"max_feed_rate" validate:"gt=0"`
}

// Program configures the program header.
type Program struct {
	Version string `yaml:"version" validate:"required"`
}

// Output configures where programs are written.
type Output struct {
	Dir       string `yaml:"dir"`
	Extension string `yaml:"extension" validate:"required,startswith=."`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Kernel: Kernel{
			Tolerance:   polycurve.DefaultTolerance,
			KinkAngle:   polycurve.DefaultKinkAngle,
			Segments:    polycurve.DefaultArcSegments,
			SpanSamples: polycurve.DefaultSpanSamples,
		},
		Frames: Frames{
			Keep:      frames.DefaultKeep,
			Threshold: frames.DefaultThreshold,
		},
		Machine: Machine{
			MaxHotEnd:   300,
			MaxBed:      120,
			MaxFeedRate: 12000,
		},
		Program: Program{Version: program.DefaultVersion},
		Output:  Output{Extension: ".gcode"},
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w: %w", kernel.ErrConfiguration, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("config: %s: %w", strings.Join(msgs, "; "), kernel.ErrConfiguration)
}

// Parse reads YAML over the defaults and validates the result. Keys
// missing from data keep their default values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w: %w", kernel.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the file at path. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal writes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// KernelOptions returns the polycurve options for c.
func (c Config) KernelOptions() []polycurve.Option {
	return []polycurve.Option{
		polycurve.WithTolerance(c.Kernel.Tolerance),
		polycurve.WithKinkAngle(c.Kernel.KinkAngle),
		polycurve.WithArcSegments(c.Kernel.Segments),
		polycurve.WithSpanSamples(c.Kernel.SpanSamples),
	}
}

// NewKernel returns a kernel configured by c.
func (c Config) NewKernel() *polycurve.Kernel {
	return polycurve.New(c.KernelOptions()...)
}

// Reduction returns the frame reduction constants.
func (c Config) Reduction() frames.Reduction {
	return frames.Reduction{Keep: c.Frames.Keep, Threshold: c.Frames.Threshold}
}

// OutputPath returns the program path for the job script at src. An
// explicit dir wins over output.dir; with neither the program is written
// next to src.
func (c Config) OutputPath(dir, src string) string {
	if dir == "" {
		dir = c.Output.Dir
	}
	if dir == "" {
		dir = filepath.Dir(src)
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + c.Output.Extension
	return filepath.Join(dir, base)
}
