package resources

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/metrics"
	"github.com/san-kum/physim/internal/sim"
	"github.com/san-kum/physim/internal/templates"
)

// ObjectTemplate is the handle scenario objects are registered under.
const ObjectTemplate = "object"

// Experiment is one scenario turned into a populated physics manager.
type Experiment struct {
	scenario  *config.Scenario
	resources *Manager
	manager   *sim.Manager
	ids       []int
	log       *slog.Logger
}

func NewExperiment(s *config.Scenario, logger *slog.Logger) (*Experiment, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	res, err := New(&s.Physics, logger)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return &Experiment{scenario: s.Clone(), resources: res, log: logger}, nil
}

// Setup builds the world with the scenario's own seed and attaches ms.
func (e *Experiment) Setup(ms []sim.Metric) error {
	m, ids, err := e.resources.Populate(e.scenario, e.scenario.Seed)
	if err != nil {
		return err
	}
	for _, mt := range ms {
		m.AddMetric(mt)
	}
	e.manager = m
	e.ids = ids
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.manager == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.manager.Run(ctx, RunConfig(e.scenario))
}

func RunConfig(s *config.Scenario) sim.Config {
	return sim.Config{Dt: s.Dt, Duration: s.Duration}
}

// Manager returns the underlying physics manager for adding observers.
func (e *Experiment) Manager() *sim.Manager { return e.manager }

func (e *Experiment) ObjectIDs() []int { return e.ids }

func (e *Experiment) Scenario() *config.Scenario { return e.scenario }

// Ensemble runs n copies of the scenario with seeds seed, seed+1, ... in
// parallel. Only jittered placement depends on the seed.
func (e *Experiment) Ensemble(n int) *sim.Ensemble {
	build := func(seed int64) (*sim.Manager, error) {
		m, _, err := e.resources.Populate(e.scenario, seed)
		if err != nil {
			return nil, err
		}
		for _, mt := range metrics.Default() {
			m.AddMetric(mt)
		}
		return m, nil
	}
	return sim.NewEnsemble(build, n, e.scenario.Seed)
}

// Populate creates a physics manager for s: it loads the scene, registers
// the scenario's object template and stacks Count copies starting at
// BaseHeight, Spacing apart along y. Jitter offsets x and z uniformly by up
// to ±Jitter using seed.
func (r *Manager) Populate(s *config.Scenario, seed int64) (*sim.Manager, []int, error) {
	r.templates.Register(ObjectTemplate, ScenarioAttributes(s))

	m, err := r.NewPhysicsManager()
	if err != nil {
		return nil, nil, err
	}
	if err := r.LoadScene(m, s.Scene); err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	rot := mgl32.AnglesToQuat(s.Rotation[0], s.Rotation[1], s.Rotation[2], mgl32.XYZ)

	ids := make([]int, 0, s.Count)
	for i := 0; i < s.Count; i++ {
		id, err := m.AddObject(ObjectTemplate, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %q object %d: %w", s.Name, i, err)
		}
		pos := mgl32.Vec3{0, s.BaseHeight + float32(i)*s.Spacing, 0}
		if s.Jitter > 0 {
			pos[0] += (rng.Float32()*2 - 1) * s.Jitter
			pos[2] += (rng.Float32()*2 - 1) * s.Jitter
		}
		if err := m.SetRotation(id, rot); err != nil {
			return nil, nil, err
		}
		if err := m.SetTranslation(id, pos); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
	}
	r.log.Info("scenario populated", "scenario", s.Name, "objects", len(ids), "seed", seed)
	return m, ids, nil
}

// ScenarioAttributes derives the object template a scenario instantiates.
func ScenarioAttributes(s *config.Scenario) templates.Attributes {
	a := templates.DefaultAttributes(s.Object, s.Margin)
	a.JoinCollisionMeshes = s.Join
	a.UseBoundingBoxForCollision = s.UseBoundingBox
	a.Mass = s.Mass
	a.Friction = s.Friction
	a.Restitution = s.Restitution
	return a
}
