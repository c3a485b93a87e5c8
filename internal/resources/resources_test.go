package resources

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/assets"
	"github.com/san-kum/physim/internal/backend"
	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/metrics"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := config.DefaultPhysicsConfig()
	cfg.SimulationLibrary = "bullet"
	if _, err := New(cfg, quiet); !errors.Is(err, backend.ErrUnknownLibrary) {
		t.Errorf("expected ErrUnknownLibrary, got %v", err)
	}

	cfg = config.DefaultPhysicsConfig()
	cfg.MaxSubSteps = 0
	if _, err := New(cfg, quiet); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadObject(t *testing.T) {
	r, err := New(nil, quiet)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "crate.yaml")
	if err := assets.SaveMeshFile(path, assets.BoxMesh("crate", mgl32.Vec3{1, 1, 1})); err != nil {
		t.Fatal(err)
	}

	a, err := r.LoadObject(path)
	if err != nil {
		t.Fatal(err)
	}
	if a.RenderAsset != path || a.Margin != config.DefaultMargin {
		t.Errorf("unexpected template %+v", a)
	}
	again, _ := r.LoadObject(path)
	if again != a {
		t.Error("second load registered a new template")
	}

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := r.LoadObject(missing); err == nil {
		t.Error("expected error for missing asset")
	}
	if r.Templates().Has(missing) {
		t.Error("broken asset became a template")
	}
}

func TestPopulate_Stack(t *testing.T) {
	s := config.GetPreset("stack")
	r, err := New(&s.Physics, quiet)
	if err != nil {
		t.Fatal(err)
	}
	m, ids, err := r.Populate(s, s.Seed)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 7 || m.NumObjects() != 7 {
		t.Fatalf("expected 7 objects, got %d", len(ids))
	}
	want := mgl32.AnglesToQuat(-1.56, -0.25, 0, mgl32.XYZ)
	for i, id := range ids {
		pos, _ := m.Translation(id)
		if !pos.ApproxEqualThreshold(mgl32.Vec3{0, 2 + 2*float32(i), 0}, 1e-5) {
			t.Errorf("object %d at %v", i, pos)
		}
		rot, _ := m.Rotation(id)
		if math.Abs(float64(rot.Dot(want))) < 1-1e-5 {
			t.Errorf("object %d rotation %v", i, rot)
		}
	}
	if m.PhysicsSimulationLibrary() != backend.LibrarySweep {
		t.Errorf("library = %v", m.PhysicsSimulationLibrary())
	}
	obj, _ := m.Object(ids[0])
	if obj.Shape.NumParts() != 1 {
		t.Errorf("joined stack built %d parts", obj.Shape.NumParts())
	}
}

func TestPopulate_JitterIsSeeded(t *testing.T) {
	s := config.GetPreset("scatter")
	positions := func(seed int64) []mgl32.Vec3 {
		r, err := New(&s.Physics, quiet)
		if err != nil {
			t.Fatal(err)
		}
		m, ids, err := r.Populate(s, seed)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]mgl32.Vec3, len(ids))
		for i, id := range ids {
			out[i], _ = m.Translation(id)
		}
		return out
	}

	a, b, c := positions(7), positions(7), positions(8)
	differs := false
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("same seed gave %v and %v", a[i], b[i])
		}
		if a[i] != c[i] {
			differs = true
		}
		if absf(a[i].X()) > s.Jitter || absf(a[i].Z()) > s.Jitter {
			t.Errorf("jitter out of range: %v", a[i])
		}
	}
	if !differs {
		t.Error("different seeds gave identical placement")
	}
}

func TestPopulate_EmptyScene(t *testing.T) {
	s := config.GetPreset("zero-g")
	r, _ := New(&s.Physics, quiet)
	m, ids, err := r.Populate(s, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Backend().NumBodies() != len(ids) {
		t.Errorf("NONE scene added static bodies: %d bodies, %d objects", m.Backend().NumBodies(), len(ids))
	}
}

func TestExperiment(t *testing.T) {
	s := config.GetPreset("drop")
	s.Duration = 2

	e, err := NewExperiment(s, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
	if err := e.Setup(metrics.Default()); err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 40 {
		t.Errorf("expected 40 steps, got %d", res.StepsTaken)
	}
	if _, ok := res.Metrics["kinetic_energy"]; !ok {
		t.Errorf("missing kinetic_energy metric: %v", res.Metrics)
	}
	pos, _ := e.Manager().Translation(e.ObjectIDs()[0])
	if pos.Y() >= 10 {
		t.Errorf("box did not fall: %v", pos)
	}
}

func TestExperiment_Ensemble(t *testing.T) {
	s := config.GetPreset("scatter")
	s.Duration = 0.5

	e, err := NewExperiment(s, quiet)
	if err != nil {
		t.Fatal(err)
	}
	results, err := e.Ensemble(3).Run(context.Background(), RunConfig(s))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if len(res.Final) != s.Count {
			t.Errorf("run %d finished with %d objects", i, len(res.Final))
		}
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
