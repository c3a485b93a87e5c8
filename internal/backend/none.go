package backend

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/collision"
)

// noneWorld satisfies Backend without simulating anything.
type noneWorld struct {
	*bodyTable
}

func newNoneWorld(s Settings) *noneWorld {
	return &noneWorld{bodyTable: newBodyTable(s.Gravity)}
}

func (w *noneWorld) Library() Library { return LibraryNone }

func (w *noneWorld) StepSimulation(float64) error { return nil }

func (w *noneWorld) CreateBody(shape *collision.Shape, start Transform, mass MassProperties) (BodyHandle, error) {
	return w.add(shape, start, mass, false)
}

func (w *noneWorld) CreateStaticBody(shape *collision.Shape, start Transform) (BodyHandle, error) {
	return w.add(shape, start, MassProperties{}, true)
}

func (w *noneWorld) RemoveBody(h BodyHandle) {
	w.remove(h)
}

func (w *noneWorld) SetTransform(h BodyHandle, translation mgl32.Vec3, rotation mgl32.Quat) {
	if b := w.get(h); b != nil {
		b.place(translation, normalized(rotation))
	}
}

func (w *noneWorld) ApplyForce(BodyHandle, mgl32.Vec3, mgl32.Vec3)   {}
func (w *noneWorld) ApplyImpulse(BodyHandle, mgl32.Vec3, mgl32.Vec3) {}
func (w *noneWorld) SetLinearVelocity(BodyHandle, mgl32.Vec3)        {}

func (w *noneWorld) ContactTest(BodyHandle) bool { return false }
func (w *noneWorld) CountActiveBodies() int      { return 0 }
func (w *noneWorld) IsActive(BodyHandle) bool    { return false }
func (w *noneWorld) Reset()                      {}
