package config

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

var Presets = map[string]*Scenario{
	"stack": {
		Name: "stack", Description: "seven boxes built from four slabs, joined collision meshes",
		Scene: "plane:20,20", Object: "slabs:4:0.5,0.5,0.5", Count: 7, BaseHeight: 2, Spacing: 2,
		Rotation: [3]float32{-1.56, -0.25, 0}, Join: true, Margin: 0.04, Mass: 1, Friction: 0.5,
		Dt: 0.1, Duration: 10, Physics: *DefaultPhysicsConfig(),
	},
	"stack-unjoined": {
		Name: "stack-unjoined", Description: "same stack with one convex hull per slab",
		Scene: "plane:20,20", Object: "slabs:4:0.5,0.5,0.5", Count: 7, BaseHeight: 2, Spacing: 2,
		Rotation: [3]float32{-1.56, -0.25, 0}, Join: false, Margin: 0.04, Mass: 1, Friction: 0.5,
		Dt: 0.1, Duration: 10, Physics: *DefaultPhysicsConfig(),
	},
	"drop": {
		Name: "drop", Description: "a single bouncy box dropped from ten meters",
		Scene: "plane:20,20", Object: "box:1,1,1", Count: 1, BaseHeight: 10, Spacing: 0,
		Join: true, Margin: 0.04, Mass: 2, Friction: 0.3, Restitution: 0.4,
		Dt: 0.05, Duration: 8, Physics: *DefaultPhysicsConfig(),
	},
	"scatter": {
		Name: "scatter", Description: "twelve boxes with jittered placement",
		Scene: "plane:20,20", Object: "box:0.5,0.5,0.5", Count: 12, BaseHeight: 1.5, Spacing: 1.5,
		Join: true, Margin: 0.04, Mass: 1, Friction: 0.6, Jitter: 0.4, Seed: 7,
		Dt: 0.05, Duration: 10, Physics: *DefaultPhysicsConfig(),
	},
	"zero-g": {
		Name: "zero-g", Description: "boxes floating without gravity",
		Scene: "NONE", Object: "box:0.5,0.5,0.5", Count: 3, BaseHeight: 2, Spacing: 2,
		Join: true, Margin: 0.04, Mass: 1,
		Dt: 0.1, Duration: 5, Physics: zeroGravity(),
	},
	"none": {
		Name: "none", Description: "the seven-box stack with no dynamics backend",
		Scene: "plane:20,20", Object: "slabs:4:0.5,0.5,0.5", Count: 7, BaseHeight: 2, Spacing: 2,
		Rotation: [3]float32{-1.56, -0.25, 0}, Join: true, Margin: 0.04, Mass: 1,
		Dt: 0.1, Duration: 10, Physics: noBackend(),
	},
}

func zeroGravity() PhysicsConfig {
	cfg := DefaultPhysicsConfig()
	cfg.Gravity = mgl32.Vec3{}
	return *cfg
}

func noBackend() PhysicsConfig {
	cfg := DefaultPhysicsConfig()
	cfg.SimulationLibrary = "NONE"
	return *cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scenario {
	s, ok := Presets[name]
	if !ok {
		return nil
	}
	return s.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
