package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mastercactapus/planarity/coord"
	"github.com/mastercactapus/planarity/planarity"
	"github.com/mastercactapus/planarity/table"
)

// Config holds analysis settings. Pointer fields distinguish "not set"
// from zero; the Get* methods supply defaults.
type Config struct {
	// Mode is "wheels" for four-height tables or "levels" for
	// two-sensor Level1/Level2 tables.
	Mode *string `json:"mode,omitempty"`

	HalfTrack     *float64 `json:"half_track,omitempty"`
	HalfWheelbase *float64 `json:"half_wheelbase,omitempty"`

	CollinearTolerance *float64 `json:"collinear_tolerance,omitempty"`
	RelativeTolerance  *bool    `json:"relative_tolerance,omitempty"`
	VerticalTolerance  *float64 `json:"vertical_tolerance,omitempty"`

	Scale  *float64 `json:"scale,omitempty"`
	Offset *float64 `json:"offset,omitempty"`

	// Calibration is a JSON file of zero-offset measurements.
	Calibration *string `json:"calibration,omitempty"`

	// CalibrationZero is the reading of a correctly zeroed sensor;
	// measurements are re-based on it before interpolating.
	CalibrationZero *float64 `json:"calibration_zero,omitempty"`

	ErrorPolicy *string `json:"error_policy,omitempty"`
	Workers     *int    `json:"workers,omitempty"`

	// Aggregate bins rows by travelled distance before evaluating.
	Aggregate *bool    `json:"aggregate,omitempty"`
	Interval  *float64 `json:"interval,omitempty"`
	Method    *string  `json:"method,omitempty"`
	EMASpan   *int     `json:"ema_span,omitempty"`

	Columns table.Columns `json:"columns,omitempty"`
}

const (
	ModeWheels = "wheels"
	ModeLevels = "levels"
)

// Load reads a Config from a JSON file. Fields omitted from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) GetMode() string {
	if c.Mode == nil || *c.Mode == "" {
		return ModeWheels
	}
	return *c.Mode
}

func (c *Config) GetGeometry() planarity.Geometry {
	g := planarity.DefaultGeometry
	if c.HalfTrack != nil {
		g.HalfTrack = *c.HalfTrack
	}
	if c.HalfWheelbase != nil {
		g.HalfWheelbase = *c.HalfWheelbase
	}
	return g
}

func (c *Config) GetTolerance() coord.Tolerance {
	t := coord.DefaultTolerance
	if c.CollinearTolerance != nil {
		t.Collinear = *c.CollinearTolerance
	}
	if c.RelativeTolerance != nil {
		t.Relative = *c.RelativeTolerance
	}
	if c.VerticalTolerance != nil {
		t.Vertical = *c.VerticalTolerance
	}
	return t
}

func (c *Config) GetCorrection() planarity.Correction {
	corr := planarity.Correction{Scale: 1}
	if c.Scale != nil {
		corr.Scale = *c.Scale
	}
	if c.Offset != nil {
		corr.Offset = *c.Offset
	}
	return corr
}

func (c *Config) GetCalibration() string {
	if c.Calibration == nil {
		return ""
	}
	return *c.Calibration
}

func (c *Config) GetCalibrationZero() float64 {
	if c.CalibrationZero == nil {
		return 0
	}
	return *c.CalibrationZero
}

func (c *Config) GetErrorPolicy() planarity.ErrorPolicy {
	p, _ := planarity.ParseErrorPolicy(deref(c.ErrorPolicy))
	return p
}

func (c *Config) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

func (c *Config) GetAggregate() bool {
	return c.Aggregate != nil && *c.Aggregate
}

func (c *Config) GetAggregateOptions() planarity.AggregateOptions {
	opt := planarity.DefaultAggregateOptions
	if c.Interval != nil {
		opt.Interval = *c.Interval
	}
	if c.Method != nil {
		opt.Method = planarity.Method(*c.Method)
	}
	if c.EMASpan != nil {
		opt.EMASpan = *c.EMASpan
	}
	return opt
}

func (c *Config) GetColumns() table.Columns {
	return c.Columns.WithDefaults()
}

// Validate checks every set field.
func (c *Config) Validate() error {
	var errs []error
	switch c.GetMode() {
	case ModeWheels, ModeLevels:
	default:
		errs = append(errs, fmt.Errorf("mode must be %q or %q, got %q", ModeWheels, ModeLevels, c.GetMode()))
	}

	g := c.GetGeometry()
	if g.HalfTrack <= 0 || g.HalfWheelbase <= 0 {
		errs = append(errs, fmt.Errorf("half_track and half_wheelbase must be positive, got %g and %g", g.HalfTrack, g.HalfWheelbase))
	}

	t := c.GetTolerance()
	if t.Collinear < 0 || t.Vertical < 0 {
		errs = append(errs, errors.New("tolerances must not be negative"))
	}

	if _, err := planarity.ParseErrorPolicy(deref(c.ErrorPolicy)); err != nil {
		errs = append(errs, err)
	}
	if c.Workers != nil && *c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", *c.Workers))
	}

	if c.GetAggregate() || c.GetMode() == ModeLevels {
		if err := c.GetAggregateOptions().Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// EvaluatorConfig builds the evaluator settings; the calibration
// offsetter is loaded separately.
func (c *Config) EvaluatorConfig() planarity.Config {
	return planarity.Config{
		Geometry:   c.GetGeometry(),
		Tolerance:  c.GetTolerance(),
		Correction: c.GetCorrection(),
		Policy:     c.GetErrorPolicy(),
		Workers:    c.GetWorkers(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Helper functions to create pointers
func PtrFloat64(v float64) *float64 { return &v }
func PtrBool(v bool) *bool          { return &v }
func PtrString(v string) *string    { return &v }
func PtrInt(v int) *int             { return &v }
