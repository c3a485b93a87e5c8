// Package resources wires the physics stack together: it owns the asset
// library, the template registry and the shape cache shared by every
// physics manager it creates, and it turns scenarios into populated worlds.
package resources

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/physim/internal/assets"
	"github.com/san-kum/physim/internal/backend"
	"github.com/san-kum/physim/internal/collision"
	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/scene"
	"github.com/san-kum/physim/internal/sim"
	"github.com/san-kum/physim/internal/templates"
)

type Manager struct {
	physics   config.PhysicsConfig
	assets    *assets.Library
	templates *templates.Registry
	shapes    *collision.Builder
	log       *slog.Logger
}

// New validates cfg and returns an empty resource manager. A nil logger
// means slog.Default().
func New(cfg *config.PhysicsConfig, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		cfg = config.DefaultPhysicsConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("physics config: %w", err)
	}
	if _, err := backend.ParseLibrary(cfg.SimulationLibrary); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		physics:   *cfg,
		assets:    assets.NewLibrary(),
		templates: templates.NewRegistry(cfg.DefaultMargin),
		shapes:    collision.NewBuilder(),
		log:       logger,
	}, nil
}

func (r *Manager) Physics() config.PhysicsConfig    { return r.physics }
func (r *Manager) Assets() *assets.Library          { return r.assets }
func (r *Manager) Templates() *templates.Registry   { return r.templates }
func (r *Manager) ShapeBuilder() *collision.Builder { return r.shapes }

// NewPhysicsManager creates a manager over a fresh backend and scene graph.
// All managers from one resource manager share assets, templates and the
// shape cache.
func (r *Manager) NewPhysicsManager() (*sim.Manager, error) {
	b, err := backend.FromConfig(&r.physics, r.log)
	if err != nil {
		return nil, err
	}
	m := sim.NewManager(b, r.assets, r.templates, scene.NewGraph(),
		sim.WithLogger(r.log),
		sim.WithShapeBuilder(r.shapes),
	)
	r.log.Debug("physics manager created", "library", b.Library())
	return m, nil
}

// LoadScene adds the scene asset as static geometry of m using the
// configured default margin. "NONE" loads nothing.
func (r *Manager) LoadScene(m *sim.Manager, handle string) error {
	if _, err := m.AddStaticGeometry(handle, r.physics.DefaultMargin, backend.IdentityTransform()); err != nil {
		return err
	}
	r.log.Info("scene loaded", "scene", handle)
	return nil
}

// LoadObject registers a default template for an asset path. The geometry
// is loaded first so a broken asset never becomes a template.
func (r *Manager) LoadObject(path string) (*templates.Attributes, error) {
	if r.templates.Has(path) {
		return r.templates.Get(path)
	}
	if _, err := r.assets.LoadGeometry(path); err != nil {
		return nil, fmt.Errorf("load object %q: %w", path, err)
	}
	return r.templates.LoadFromPath(path)
}
