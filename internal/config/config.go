package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSimulationLibrary = "SWEEP"
	DefaultMargin            = 0.04
	DefaultFixedTimeStep     = 1.0 / 60.0
	DefaultMaxSubSteps       = 10
	DefaultSleepThreshold    = 0.05
	DefaultDeactivationTime  = 2.0
)

// PhysicsConfig is the resolved physics configuration referenced at scene-load time.
type PhysicsConfig struct {
	SimulationLibrary string     `yaml:"simulation_library"`
	Gravity           mgl32.Vec3 `yaml:"gravity,flow"`
	DefaultMargin     float32    `yaml:"default_margin"`
	FixedTimeStep     float64    `yaml:"fixed_timestep"`
	MaxSubSteps       int        `yaml:"max_substeps"`
	SleepThreshold    float32    `yaml:"sleep_threshold"`
	DeactivationTime  float64    `yaml:"deactivation_time"`
}

func DefaultPhysicsConfig() *PhysicsConfig {
	return &PhysicsConfig{
		SimulationLibrary: DefaultSimulationLibrary,
		Gravity:           mgl32.Vec3{0, -9.81, 0},
		DefaultMargin:     DefaultMargin,
		FixedTimeStep:     DefaultFixedTimeStep,
		MaxSubSteps:       DefaultMaxSubSteps,
		SleepThreshold:    DefaultSleepThreshold,
		DeactivationTime:  DefaultDeactivationTime,
	}
}

// Validate reports the first option that cannot drive a backend.
func (c *PhysicsConfig) Validate() error {
	if strings.TrimSpace(c.SimulationLibrary) == "" {
		return fmt.Errorf("simulation_library must be set")
	}
	for i, g := range c.Gravity {
		if math.IsNaN(float64(g)) || math.IsInf(float64(g), 0) {
			return fmt.Errorf("gravity[%d] is not finite", i)
		}
	}
	if c.DefaultMargin < 0 || math.IsNaN(float64(c.DefaultMargin)) {
		return fmt.Errorf("default_margin must be non-negative, got %v", c.DefaultMargin)
	}
	if !(c.FixedTimeStep > 0) || math.IsInf(c.FixedTimeStep, 1) {
		return fmt.Errorf("fixed_timestep must be positive, got %v", c.FixedTimeStep)
	}
	if c.MaxSubSteps < 1 {
		return fmt.Errorf("max_substeps must be at least 1, got %d", c.MaxSubSteps)
	}
	if c.SleepThreshold < 0 {
		return fmt.Errorf("sleep_threshold must be non-negative, got %v", c.SleepThreshold)
	}
	if c.DeactivationTime < 0 {
		return fmt.Errorf("deactivation_time must be non-negative, got %v", c.DeactivationTime)
	}
	return nil
}

func Load(path string) (*PhysicsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a physics config on top of the defaults, so omitted keys keep their default values.
func Parse(data []byte) (*PhysicsConfig, error) {
	cfg := DefaultPhysicsConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid physics config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *PhysicsConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
