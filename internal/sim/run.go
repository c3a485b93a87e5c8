package sim

import (
	"context"
	"fmt"
	"math"
)

// Run steps the manager for cfg.Duration in increments of cfg.Dt, recording
// world time and the active object count after every step.
func (m *Manager) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Times:     make([]float64, 0, steps+1),
		Active:    make([]int, 0, steps+1),
		Metrics:   make(map[string]float64),
		SettledAt: -1,
	}

	for _, mt := range m.metrics {
		mt.Reset()
	}

	result.Times = append(result.Times, m.time)
	result.Active = append(result.Active, m.CheckActiveObjects())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := m.StepPhysics(cfg.Dt); err != nil {
			return result, err
		}
		result.StepsTaken++

		active := m.CheckActiveObjects()
		result.Times = append(result.Times, m.time)
		result.Active = append(result.Active, active)

		if active == 0 && result.SettledAt < 0 && m.objects.Len() > 0 {
			result.SettledAt = m.time
			if cfg.StopWhenSettled {
				break
			}
		}
	}

	for _, mt := range m.metrics {
		result.Metrics[mt.Name()] = mt.Value()
	}
	result.Final = m.Frame().Objects
	return result, nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 1) {
		return fmt.Errorf("dt must be positive and finite, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 1) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
