package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/backend"
	"github.com/san-kum/physim/internal/collision"
	"github.com/san-kum/physim/internal/templates"
)

func TestAddRemoveObject(t *testing.T) {
	m := newTestManager(backend.LibrarySweep)
	keep := addAt(m, boxTemplate, 5)

	nodes := m.Graph().NumNodes()
	bodies := m.Backend().NumBodies()

	id, err := m.AddObject(boxTemplate, nil)
	if err != nil {
		t.Fatal(err)
	}
	if id <= keep {
		t.Errorf("ids must increase: %d after %d", id, keep)
	}
	if err := m.RemoveObject(id); err != nil {
		t.Fatal(err)
	}

	if got := m.ObjectIDs(); len(got) != 1 || got[0] != keep {
		t.Errorf("live ids = %v, want [%d]", got, keep)
	}
	if m.Graph().NumNodes() != nodes {
		t.Errorf("node leaked: %d vs %d", m.Graph().NumNodes(), nodes)
	}
	if m.Backend().NumBodies() != bodies {
		t.Errorf("body leaked: %d vs %d", m.Backend().NumBodies(), bodies)
	}

	next, _ := m.AddObject(boxTemplate, nil)
	if next == id {
		t.Error("removed id was reused")
	}
}

func TestUnknownHandlesDoNotMutate(t *testing.T) {
	m := newTestManager(backend.LibrarySweep)
	id := addAt(m, boxTemplate, 5)
	must(m.RemoveObject(id))

	nodes, bodies, objects := m.Graph().NumNodes(), m.Backend().NumBodies(), m.NumObjects()

	if _, err := m.AddObject("missing", nil); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("AddObject: expected ErrUnknownTemplate, got %v", err)
	}

	calls := map[string]error{
		"RemoveObject":   m.RemoveObject(id),
		"SetTranslation": m.SetTranslation(id, mgl32.Vec3{1, 2, 3}),
		"SetRotation":    m.SetRotation(id, mgl32.QuatIdent()),
		"ApplyForce":     m.ApplyForce(id, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}),
	}
	_, calls["ContactTest"] = m.ContactTest(id)
	_, calls["CollisionShapeBounds"] = m.CollisionShapeBounds(id)
	_, calls["Translation"] = m.Translation(id)

	for name, err := range calls {
		if !errors.Is(err, ErrUnknownObject) {
			t.Errorf("%s: expected ErrUnknownObject, got %v", name, err)
		}
	}

	if m.Graph().NumNodes() != nodes || m.Backend().NumBodies() != bodies || m.NumObjects() != objects {
		t.Error("failed calls mutated manager state")
	}
}

func TestAddObject_GeometryErrorIsAtomic(t *testing.T) {
	m := newTestManager(backend.LibrarySweep)

	flat := templates.DefaultAttributes("plane:1,1", testMargin)
	m.Templates().Register("flat", flat)
	missing := templates.DefaultAttributes("nowhere.yaml", testMargin)
	m.Templates().Register("missing", missing)

	nodes, bodies := m.Graph().NumNodes(), m.Backend().NumBodies()

	if _, err := m.AddObject("flat", nil); !errors.Is(err, collision.ErrGeometry) {
		t.Errorf("expected ErrGeometry, got %v", err)
	}
	if _, err := m.AddObject("missing", nil); err == nil {
		t.Error("expected an asset error")
	}
	if m.Graph().NumNodes() != nodes || m.Backend().NumBodies() != bodies || m.NumObjects() != 0 {
		t.Error("failed instantiation left partial state")
	}
}

func TestTemplateMutationAfterInstantiation(t *testing.T) {
	m := newTestManager(backend.LibraryNone)
	first := addAt(m, stackTemplate, 5)

	tmpl, _ := m.Templates().Get(stackTemplate)
	tmpl.Margin = 0.5
	second := addAt(m, stackTemplate, 5)

	a, _ := m.CollisionShapeBounds(first)
	b, _ := m.CollisionShapeBounds(second)
	if math.Abs(float64(a.Max().Y()-5.54)) > 1e-4 {
		t.Errorf("existing object changed: max y %v", a.Max().Y())
	}
	if math.Abs(float64(b.Max().Y()-6.0)) > 1e-4 {
		t.Errorf("new object ignored template edit: max y %v", b.Max().Y())
	}
}

func TestWorldTimeAccumulates(t *testing.T) {
	for _, lib := range []backend.Library{backend.LibraryNone, backend.LibrarySweep} {
		t.Run(lib.String(), func(t *testing.T) {
			m := newTestManager(lib)
			addStack(m, boxTemplate)

			dts := []float64{0.1, 0.05, 0, -1, math.NaN(), 0.25, 1.0 / 60}
			want := 0.0
			for _, dt := range dts {
				if err := m.StepPhysics(dt); err != nil {
					t.Fatalf("dt=%v: %v", dt, err)
				}
				if dt > 0 {
					want += dt
				}
			}

			if err := m.StepPhysics(math.Inf(1)); !errors.Is(err, ErrInvalidTimeStep) {
				t.Errorf("infinite dt: expected ErrInvalidTimeStep, got %v", err)
			}
			if err := m.StepPhysics(0.1); err != nil {
				t.Fatalf("world unusable after a rejected dt: %v", err)
			}
			want += 0.1

			if math.Abs(m.WorldTime()-want) > 1e-12 {
				t.Errorf("world time = %v, want %v", m.WorldTime(), want)
			}
			if m.Steps() != 5 {
				t.Errorf("expected 5 steps, got %d", m.Steps())
			}
		})
	}
}

func TestNodesFollowBodies(t *testing.T) {
	m := newTestManager(backend.LibrarySweep)
	id := addAt(m, boxTemplate, 5)

	node, _ := m.Node(id)
	if got := node.AbsoluteTranslation(); !got.ApproxEqual(mgl32.Vec3{0, 5, 0}) {
		t.Errorf("node not synced on SetTranslation: %v", got)
	}

	rot := mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0})
	must(m.SetRotation(id, rot))
	if got := node.AbsoluteRotation(); math.Abs(float64(got.Dot(rot))) < 1-1e-5 {
		t.Errorf("node not synced on SetRotation: %v", got)
	}

	for i := 0; i < 5; i++ {
		must(m.StepPhysics(0.1))
	}
	pos, _ := m.Translation(id)
	if pos.Y() >= 5 {
		t.Errorf("box did not fall: %v", pos)
	}
	if got := node.AbsoluteTranslation(); !got.ApproxEqualThreshold(pos, 1e-5) {
		t.Errorf("node %v does not match body %v", got, pos)
	}
}

func TestAddObjectUnderParent(t *testing.T) {
	m := newTestManager(backend.LibraryNone)
	parent, _ := m.Graph().Root().CreateChild()
	parent.SetTranslation(mgl32.Vec3{3, 4, 5})

	id, err := m.AddObject(boxTemplate, parent)
	if err != nil {
		t.Fatal(err)
	}
	pos, _ := m.Translation(id)
	if pos != (mgl32.Vec3{3, 4, 5}) {
		t.Errorf("object not created at parent pose: %v", pos)
	}
	node, _ := m.Node(id)
	if node.Parent() != parent {
		t.Error("node not attached under parent")
	}
}

func TestResetKeepsObjects(t *testing.T) {
	m := newTestManager(backend.LibrarySweep)
	ids := addStack(m, stackTemplate)
	for i := 0; i < 100; i++ {
		must(m.StepPhysics(0.1))
	}
	before, _ := m.Translation(ids[3])

	m.Reset()

	if m.WorldTime() != 0 {
		t.Errorf("world time = %v after reset", m.WorldTime())
	}
	if m.NumObjects() != len(ids) {
		t.Errorf("reset dropped objects: %d", m.NumObjects())
	}
	after, err := m.Translation(ids[3])
	if err != nil || after != before {
		t.Errorf("object moved or vanished on reset: %v (%v)", after, err)
	}
	if m.CheckActiveObjects() != len(ids) {
		t.Errorf("reset should wake every object, %d active", m.CheckActiveObjects())
	}
	if _, err := m.ContactTest(ids[0]); err != nil {
		t.Errorf("ids invalid after reset: %v", err)
	}
}

func TestBackendFatalIsReported(t *testing.T) {
	m := newTestManager(backend.LibrarySweep)
	id := addAt(m, boxTemplate, 5)
	must(m.ApplyForce(id, mgl32.Vec3{0, float32(math.NaN()), 0}, mgl32.Vec3{}))

	err := m.StepPhysics(0.1)
	if !errors.Is(err, backend.ErrBackendFatal) {
		t.Fatalf("expected ErrBackendFatal, got %v", err)
	}
	if m.WorldTime() != 0 {
		t.Errorf("failed step advanced time to %v", m.WorldTime())
	}
	if err := m.StepPhysics(0.1); !errors.Is(err, backend.ErrBackendFatal) {
		t.Errorf("expected the world to stay poisoned, got %v", err)
	}
}

type countingObserver struct {
	frames []*Frame
}

func (c *countingObserver) OnStep(f *Frame) { c.frames = append(c.frames, f) }

func TestRunRecordsAndNotifies(t *testing.T) {
	m := newTestManager(backend.LibrarySweep)
	addStack(m, stackTemplate)

	obs := &countingObserver{}
	m.AddObserver(obs)

	res, err := m.Run(context.Background(), Config{Dt: 0.1, Duration: 10})
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 100 || len(res.Times) != 101 || len(res.Active) != 101 {
		t.Errorf("steps=%d times=%d active=%d", res.StepsTaken, len(res.Times), len(res.Active))
	}
	if len(obs.frames) != 100 {
		t.Errorf("observer saw %d frames", len(obs.frames))
	}
	last := obs.frames[len(obs.frames)-1]
	if len(last.Objects) != 7 || math.Abs(last.Time-m.WorldTime()) > 1e-9 {
		t.Errorf("unexpected final frame %+v", last)
	}
	if res.SettledAt < 0 || res.Active[len(res.Active)-1] != 0 {
		t.Errorf("stack did not settle: settledAt=%v", res.SettledAt)
	}
	if len(res.Final) != 7 {
		t.Errorf("final state has %d objects", len(res.Final))
	}
}

func TestRunStopWhenSettled(t *testing.T) {
	m := newTestManager(backend.LibrarySweep)
	addAt(m, boxTemplate, 1.08)

	res, err := m.Run(context.Background(), Config{Dt: 0.1, Duration: 30, StopWhenSettled: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken >= 300 {
		t.Errorf("run did not stop early: %d steps", res.StepsTaken)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	m := newTestManager(backend.LibraryNone)
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"NaN dt", Config{Dt: math.NaN(), Duration: 1.0}},
		{"infinite dt", Config{Dt: math.Inf(1), Duration: 1.0}},
		{"infinite duration", Config{Dt: 0.1, Duration: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	m := newTestManager(backend.LibraryNone)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Run(ctx, Config{Dt: 0.1, Duration: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEnsemble(t *testing.T) {
	build := func(seed int64) (*Manager, error) {
		m := newTestManager(backend.LibrarySweep)
		addAt(m, boxTemplate, 2+float32(seed))
		return m, nil
	}
	results, err := NewEnsemble(build, 4, 0).Run(context.Background(), Config{Dt: 0.1, Duration: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 20 {
			t.Errorf("run %d took %d steps", i, r.StepsTaken)
		}
	}
}
