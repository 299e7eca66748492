package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/raj-open/herz-sub000/internal/critical"
	"github.com/raj-open/herz-sub000/internal/eps"
	"github.com/raj-open/herz-sub000/internal/onb"
	"github.com/raj-open/herz-sub000/internal/points"
)

const (
	DefaultDegree          = 8
	DefaultGapSigma        = 3.0
	DefaultPeakWindow      = 5
	DefaultPeakMinDistance = 0
	DefaultQuantity        = "pressure"
	DefaultTimeColumn      = "time"
	DefaultLogLevel        = "info"
	DefaultDataDir         = "data"
)

var (
	ErrInvalid     = errors.New("config: invalid value")
	ErrUnknownKind = errors.New("config: unknown kind")
)

// Config holds the analysis settings. Cycles are cut at troughs by default
// so that each holds exactly one maximum.
type Config struct {
	Accuracy        float64           `yaml:"accuracy"`
	Degree          int               `yaml:"degree"`
	RemoveGaps      bool              `yaml:"remove_gaps"`
	GapSigma        float64           `yaml:"gap_sigma"`
	PeakWindow      int               `yaml:"peak_window"`
	PeakMinDistance int               `yaml:"peak_min_distance"`
	Troughs         bool              `yaml:"troughs"`
	Quantity        string            `yaml:"quantity"`
	TimeColumn      string            `yaml:"time_column"`
	Workers         int               `yaml:"workers"`
	LogLevel        string            `yaml:"log_level"`
	LogJSON         bool              `yaml:"log_json"`
	DataDir         string            `yaml:"data_dir"`
	Points          []PointConfig     `yaml:"points"`
	ExtraConditions []ConditionConfig `yaml:"extra_conditions"`
}

type PointConfig struct {
	Name       string   `yaml:"name"`
	Derivative int      `yaml:"derivative"`
	Kinds      []string `yaml:"kinds"`
	After      []string `yaml:"after,omitempty"`
}

// ConditionConfig forces the given derivative of the normalised fit to
// vanish at time s ∈ [0, 1].
type ConditionConfig struct {
	Derivative int     `yaml:"derivative"`
	Time       float64 `yaml:"time"`
}

func DefaultConfig() *Config {
	return &Config{
		Accuracy:        eps.DefaultAccuracy,
		Degree:          DefaultDegree,
		RemoveGaps:      true,
		GapSigma:        DefaultGapSigma,
		PeakWindow:      DefaultPeakWindow,
		PeakMinDistance: DefaultPeakMinDistance,
		Troughs:         true,
		Quantity:        DefaultQuantity,
		TimeColumn:      DefaultTimeColumn,
		LogLevel:        DefaultLogLevel,
		DataDir:         DefaultDataDir,
		Points:          GetPreset(DefaultQuantity),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Accuracy <= 0 {
		return fmt.Errorf("%w: accuracy %g", ErrInvalid, c.Accuracy)
	}
	if c.Degree < 0 {
		return fmt.Errorf("%w: degree %d", ErrInvalid, c.Degree)
	}
	if c.GapSigma <= 0 {
		return fmt.Errorf("%w: gap_sigma %g", ErrInvalid, c.GapSigma)
	}
	if c.PeakWindow < 1 || c.PeakMinDistance < 0 {
		return fmt.Errorf("%w: peak window %d, min distance %d", ErrInvalid, c.PeakWindow, c.PeakMinDistance)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for _, ec := range c.ExtraConditions {
		if ec.Derivative < 0 || ec.Time < 0 || ec.Time > 1 {
			return fmt.Errorf("%w: condition %+v", ErrInvalid, ec)
		}
	}
	_, err := c.Definitions()
	return err
}

// Definitions converts the configured points into recognizer definitions.
func (c *Config) Definitions() ([]points.Definition, error) {
	defs := make([]points.Definition, 0, len(c.Points))
	for _, p := range c.Points {
		var kinds critical.Kind
		for _, name := range p.Kinds {
			k, ok := critical.ParseKind(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q in point %s", ErrUnknownKind, name, p.Name)
			}
			kinds |= k
		}
		defs = append(defs, points.Definition{
			Name:       p.Name,
			Derivative: p.Derivative,
			Kinds:      kinds,
			After:      p.After,
		})
	}
	return defs, nil
}

// Conditions returns the default fit conditions followed by the extra ones.
func (c *Config) Conditions() []onb.Condition {
	conds := onb.DefaultConditions()
	for _, ec := range c.ExtraConditions {
		conds = append(conds, onb.DerivativeCondition{Order: ec.Derivative, Time: ec.Time})
	}
	return conds
}
