package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 0.1
	DefaultDuration   = 10.0
	DefaultCount      = 7
	DefaultSpacing    = 2.0
	DefaultBaseHeight = 2.0
)

// Scenario describes a repeatable simulation run: the scene, the object template
// to instantiate, how many copies to stack and how long to step.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Scene       string  `yaml:"scene"`
	Object      string  `yaml:"object"`
	Count       int     `yaml:"count"`
	BaseHeight  float32 `yaml:"base_height"`
	Spacing     float32 `yaml:"spacing"`
	// Rotation holds euler angles in radians applied X first, then Y, then Z.
	Rotation       [3]float32    `yaml:"rotation,flow"`
	Join           bool          `yaml:"join"`
	UseBoundingBox bool          `yaml:"use_bounding_box"`
	Margin         float32       `yaml:"margin"`
	Mass           float32       `yaml:"mass"`
	Friction       float32       `yaml:"friction"`
	Restitution    float32       `yaml:"restitution"`
	Jitter         float32       `yaml:"jitter"`
	Seed           int64         `yaml:"seed"`
	Dt             float64       `yaml:"dt"`
	Duration       float64       `yaml:"duration"`
	Physics        PhysicsConfig `yaml:"physics"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:       "stack",
		Scene:      "plane:20,20",
		Object:     "slabs:4:0.5,0.5,0.5",
		Count:      DefaultCount,
		BaseHeight: DefaultBaseHeight,
		Spacing:    DefaultSpacing,
		Rotation:   [3]float32{-1.56, -0.25, 0},
		Join:       true,
		Margin:     DefaultMargin,
		Mass:       1.0,
		Friction:   0.5,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Physics:    *DefaultPhysicsConfig(),
	}
}

func (s *Scenario) Validate() error {
	if s.Object == "" {
		return fmt.Errorf("scenario %q: object must be set", s.Name)
	}
	if s.Count < 0 {
		return fmt.Errorf("scenario %q: count must be non-negative, got %d", s.Name, s.Count)
	}
	if !(s.Dt > 0) || math.IsInf(s.Dt, 1) {
		return fmt.Errorf("scenario %q: dt must be positive, got %v", s.Name, s.Dt)
	}
	if !(s.Duration > 0) || math.IsInf(s.Duration, 1) {
		return fmt.Errorf("scenario %q: duration must be positive, got %v", s.Name, s.Duration)
	}
	if s.Margin < 0 {
		return fmt.Errorf("scenario %q: margin must be non-negative, got %v", s.Name, s.Margin)
	}
	if err := s.Physics.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return nil
}

// Clone returns a deep copy; presets are shared package values and must not be mutated.
func (s *Scenario) Clone() *Scenario {
	c := *s
	return &c
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := DefaultScenario()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func SaveScenario(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
