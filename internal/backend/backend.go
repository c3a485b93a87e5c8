package backend

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/collision"
	"github.com/san-kum/physim/internal/config"
)

// Library identifies a dynamics implementation.
type Library int

const (
	// LibraryNone tracks bodies but never simulates them.
	LibraryNone Library = iota
	// LibrarySweep is the bundled swept-AABB rigid body engine.
	LibrarySweep
)

func (l Library) String() string {
	switch l {
	case LibraryNone:
		return "NONE"
	case LibrarySweep:
		return "SWEEP"
	}
	return fmt.Sprintf("Library(%d)", int(l))
}

func ParseLibrary(name string) (Library, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NONE":
		return LibraryNone, nil
	case "SWEEP":
		return LibrarySweep, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLibrary, name)
}

// BodyHandle refers to a body inside one backend. The zero handle is never issued.
type BodyHandle int

type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

type MassProperties struct {
	// Mass <= 0 creates an immovable body.
	Mass          float32
	Inertia       mgl32.Vec3
	Friction      float32
	Restitution   float32
	LinearDamping float32
}

// Settings are the resolved options a backend is created with.
type Settings struct {
	Gravity          mgl32.Vec3
	FixedTimeStep    float64
	MaxSubSteps      int
	SleepThreshold   float32
	DeactivationTime float64
	Logger           *slog.Logger
}

func DefaultSettings() Settings {
	return SettingsFromConfig(config.DefaultPhysicsConfig())
}

func SettingsFromConfig(cfg *config.PhysicsConfig) Settings {
	return Settings{
		Gravity:          cfg.Gravity,
		FixedTimeStep:    cfg.FixedTimeStep,
		MaxSubSteps:      cfg.MaxSubSteps,
		SleepThreshold:   cfg.SleepThreshold,
		DeactivationTime: cfg.DeactivationTime,
	}
}

// Backend is the uniform surface over the available dynamics engines.
// Implementations are not safe for concurrent use.
//
// Methods taking a BodyHandle expect a live handle; callers track liveness.
// Stale handles are ignored by setters and yield zero values from getters.
type Backend interface {
	Library() Library

	// StepSimulation advances the world by dt seconds. A fatal error leaves
	// the world poisoned and every later step returns the same error.
	StepSimulation(dt float64) error

	CreateBody(shape *collision.Shape, start Transform, mass MassProperties) (BodyHandle, error)
	CreateStaticBody(shape *collision.Shape, start Transform) (BodyHandle, error)
	RemoveBody(h BodyHandle)
	NumBodies() int

	// SetTransform teleports a body, zeroing its velocity and waking it.
	SetTransform(h BodyHandle, translation mgl32.Vec3, rotation mgl32.Quat)
	Transform(h BodyHandle) Transform

	ApplyForce(h BodyHandle, force, relPos mgl32.Vec3)
	ApplyImpulse(h BodyHandle, impulse, relPos mgl32.Vec3)
	LinearVelocity(h BodyHandle) mgl32.Vec3
	SetLinearVelocity(h BodyHandle, v mgl32.Vec3)

	// ContactTest reports whether the body overlaps or touches any other
	// body at the current state.
	ContactTest(h BodyHandle) bool
	CountActiveBodies() int
	IsActive(h BodyHandle) bool

	// CollisionShapeBounds is the margin-inflated AABB of the body's shape
	// placed at its current pose.
	CollisionShapeBounds(h BodyHandle) cube.BBox

	SetGravity(g mgl32.Vec3)
	Gravity() mgl32.Vec3

	// Reset zeroes time, velocities, forces and sleep state and wakes every
	// body. Bodies keep their handles and poses.
	Reset()
}

// New creates a backend of the given library.
func New(lib Library, s Settings) (Backend, error) {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	switch lib {
	case LibraryNone:
		return newNoneWorld(s), nil
	case LibrarySweep:
		if s.FixedTimeStep <= 0 || s.MaxSubSteps < 1 {
			return nil, fmt.Errorf("backend %s: fixed timestep and max substeps must be positive", lib)
		}
		return newSweepWorld(s), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownLibrary, lib)
}

// FromConfig selects the backend named by cfg.SimulationLibrary.
func FromConfig(cfg *config.PhysicsConfig, logger *slog.Logger) (Backend, error) {
	lib, err := ParseLibrary(cfg.SimulationLibrary)
	if err != nil {
		return nil, err
	}
	s := SettingsFromConfig(cfg)
	s.Logger = logger
	return New(lib, s)
}
