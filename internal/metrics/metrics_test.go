package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/sim"
)

func frame(t float64, active int, objs ...sim.ObjectState) *sim.Frame {
	return &sim.Frame{Time: t, Active: active, Objects: objs}
}

func TestEnergy(t *testing.T) {
	m := NewEnergy()

	f := frame(0.1, 2,
		sim.ObjectState{Mass: 2, Velocity: mgl32.Vec3{3, 0, 4}},
		sim.ObjectState{Mass: 0, Velocity: mgl32.Vec3{100, 0, 0}},
	)
	m.Observe(f)
	if math.Abs(m.Value()-25) > 1e-4 {
		t.Errorf("expected energy 25, got %f", m.Value())
	}

	m.Observe(frame(0.2, 0, sim.ObjectState{Mass: 2}))
	if math.Abs(m.Value()-12.5) > 1e-4 {
		t.Errorf("expected mean energy 12.5, got %f", m.Value())
	}
	if m.Last() != 0 {
		t.Errorf("expected last energy 0, got %f", m.Last())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestStability(t *testing.T) {
	m := NewStability(10)
	if m.Value() != 1 {
		t.Error("expected full stability before any sample")
	}
	m.Observe(frame(0, 1, sim.ObjectState{Translation: mgl32.Vec3{1, 2, 3}}))
	m.Observe(frame(0, 1, sim.ObjectState{Translation: mgl32.Vec3{0, -11, 0}}))
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestSettleTime(t *testing.T) {
	m := NewSettleTime()
	obj := sim.ObjectState{ID: 1}

	m.Observe(frame(0.1, 1, obj))
	if m.Value() != -1 {
		t.Errorf("expected -1 before settling, got %f", m.Value())
	}
	m.Observe(frame(0.2, 0))
	if m.Value() != -1 {
		t.Error("an empty world does not count as settled")
	}
	m.Observe(frame(0.3, 0, obj))
	m.Observe(frame(0.4, 0, obj))
	if m.Value() != 0.3 {
		t.Errorf("expected 0.3, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != -1 {
		t.Error("reset did not clear settle time")
	}
}
