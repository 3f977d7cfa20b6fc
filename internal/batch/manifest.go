package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/hsiuhsiu/rips-go/pkg/rips"
)

// Manifest is a batch of jobs sharing one libvips initialization.
type Manifest struct {
	Concurrency int        `yaml:"concurrency"`
	Init        InitConfig `yaml:"init"`
	Jobs        []Job      `yaml:"jobs"`

	// Dir is the directory relative job paths are resolved against.
	Dir string `yaml:"-"`
}

// InitConfig maps to rips.InitOptions.
type InitConfig struct {
	Name       string `yaml:"name"`
	LeakChecks *bool  `yaml:"leak_checks"`
}

// Options returns the rips init options described by c.
func (c InitConfig) Options() rips.InitOptions {
	var opts rips.InitOptions
	if c.Name != "" {
		opts = opts.WithName(c.Name)
	}
	if c.LeakChecks != nil {
		opts = opts.WithLeakChecks(*c.LeakChecks)
	}
	return opts
}

// Job transforms one input file into one output file.
type Job struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Steps  []Step `yaml:"steps"`
}

// Step is a single operation. Exactly one field must be set.
type Step struct {
	Resize *ResizeStep `yaml:"resize,omitempty"`
	Crop   *CropStep   `yaml:"crop,omitempty"`
	Rotate *Angle      `yaml:"rotate,omitempty"`
}

// ResizeStep resizes to a target size, or by Scale when no size is given.
type ResizeStep struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Scale  float64 `yaml:"scale"`
	Kernel string  `yaml:"kernel"`
}

// CropStep extracts a rectangle.
type CropStep struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Angle wraps rips.Angle for YAML: both 90 and "d90" are accepted.
type Angle rips.Angle

// UnmarshalYAML implements yaml.Unmarshaler for Angle.
func (a *Angle) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := rips.ParseAngle(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*a = Angle(parsed)
	return nil
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest and fills in defaults.
func (m *Manifest) Validate() error {
	if m.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", m.Concurrency)
	}
	if m.Concurrency == 0 {
		m.Concurrency = runtime.GOMAXPROCS(0)
	}
	if len(m.Jobs) == 0 {
		return errors.New("manifest has no jobs")
	}

	var errs []error
	for i, job := range m.Jobs {
		if job.Input == "" {
			errs = append(errs, fmt.Errorf("job %d: input is required", i))
		}
		if job.Output == "" {
			errs = append(errs, fmt.Errorf("job %d: output is required", i))
		}
		for j, step := range job.Steps {
			if err := step.validate(); err != nil {
				errs = append(errs, fmt.Errorf("job %d step %d: %w", i, j, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (s Step) validate() error {
	set := 0
	if s.Resize != nil {
		set++
		if _, err := s.Resize.kernel(); err != nil {
			return err
		}
		if s.Resize.Width < 0 || s.Resize.Height < 0 || s.Resize.Scale < 0 {
			return errors.New("resize dimensions must not be negative")
		}
	}
	if s.Crop != nil {
		set++
		if s.Crop.Width <= 0 || s.Crop.Height <= 0 {
			return errors.New("crop width and height must be positive")
		}
	}
	if s.Rotate != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of resize, crop or rotate must be set, got %d", set)
	}
	return nil
}

func (r ResizeStep) kernel() ([]rips.ResizeOption, error) {
	if r.Kernel == "" {
		return nil, nil
	}
	k, err := rips.ParseKernel(r.Kernel)
	if err != nil {
		return nil, err
	}
	return []rips.ResizeOption{rips.WithKernel(k)}, nil
}

// resolve returns p relative to the manifest directory.
func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}
