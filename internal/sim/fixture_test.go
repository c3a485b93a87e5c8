package sim

import (
	"io"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/assets"
	"github.com/san-kum/physim/internal/backend"
	"github.com/san-kum/physim/internal/scene"
	"github.com/san-kum/physim/internal/templates"
)

const (
	boxTemplate     = "box"
	stackTemplate   = "stack"
	looseTemplate   = "stack-unjoined"
	testMargin      = float32(0.04)
	slabStackHandle = "slabs:4:0.5,0.5,0.5"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestManager builds a manager over a ground plane at y=0 with a unit
// box template and joined/unjoined slab stack templates. Fixture failures
// panic so the helpers serve both plain tests and specs.
func newTestManager(lib backend.Library) *Manager {
	b, err := backend.New(lib, backend.DefaultSettings())
	must(err)

	reg := templates.NewRegistry(testMargin)
	box := templates.DefaultAttributes("box:1,1,1", testMargin)
	reg.Register(boxTemplate, box)

	stack := templates.DefaultAttributes(slabStackHandle, testMargin)
	stack.JoinCollisionMeshes = true
	reg.Register(stackTemplate, stack)

	loose := stack
	loose.JoinCollisionMeshes = false
	reg.Register(looseTemplate, loose)

	m := NewManager(b, assets.NewLibrary(), reg, scene.NewGraph(), WithLogger(quietLogger))
	_, err = m.AddStaticGeometry("plane:20,20", testMargin, backend.IdentityTransform())
	must(err)
	return m
}

// addAt instantiates handle and teleports it to (0, y, 0).
func addAt(m *Manager, handle string, y float32) int {
	id, err := m.AddObject(handle, nil)
	must(err)
	must(m.SetTranslation(id, mgl32.Vec3{0, y, 0}))
	return id
}

// addStack places seven copies of handle two units apart starting at y=2.
func addStack(m *Manager, handle string) []int {
	ids := make([]int, 0, 7)
	for i := 0; i < 7; i++ {
		ids = append(ids, addAt(m, handle, 2+2*float32(i)))
	}
	return ids
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
