// Package backend provides the dynamics engines behind the physics manager.
//
// Two libraries are available:
//
//   - NONE: bodies are tracked so transforms and bounds can be queried, but
//     stepping never moves them, nothing is active and nothing is in contact
//   - SWEEP: linear rigid body dynamics with gravity, damping, forces,
//     per-axis swept AABB collision against every other body part, ground
//     friction, restitution and sleeping
//
// Select one by name:
//
//	b, err := backend.FromConfig(cfg, slog.Default())
//	h, err := b.CreateBody(shape, backend.IdentityTransform(), backend.MassProperties{Mass: 1})
//	err = b.StepSimulation(0.1)
//
// Orientation is kinematic in SWEEP: rotations are set through SetTransform
// and never integrated.
package backend
