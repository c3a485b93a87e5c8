package backend

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/collision"
)

// contactSlop lets bodies resting exactly on each other count as touching.
const contactSlop = 1e-4

type body struct {
	handle BodyHandle
	shape  *collision.Shape
	static bool
	mass   MassProperties

	invMass float32
	pos     mgl32.Vec3
	rot     mgl32.Quat
	vel     mgl32.Vec3
	force   mgl32.Vec3

	// parts holds each shape part's bounds at rot, centred on the origin.
	parts []cube.BBox

	asleep   bool
	idleTime float64
}

func (b *body) place(pos mgl32.Vec3, rot mgl32.Quat) {
	b.pos = pos
	if rot != b.rot || b.parts == nil {
		b.rot = rot
		b.parts = b.shape.PartBounds(mgl32.Vec3{}, rot)
	}
}

func (b *body) partBounds() []cube.BBox {
	out := make([]cube.BBox, len(b.parts))
	for i, p := range b.parts {
		out[i] = p.Translate(b.pos)
	}
	return out
}

func (b *body) bounds() cube.BBox {
	return collision.Union(b.partBounds())
}

func (b *body) dynamic() bool {
	return !b.static
}

func (b *body) wake() {
	b.asleep = false
	b.idleTime = 0
}

// bodyTable is the body bookkeeping shared by every library. Iteration
// follows creation order.
type bodyTable struct {
	bodies  *orderedmap.OrderedMap[BodyHandle, *body]
	next    BodyHandle
	gravity mgl32.Vec3
}

func newBodyTable(gravity mgl32.Vec3) *bodyTable {
	return &bodyTable{
		bodies:  orderedmap.NewOrderedMap[BodyHandle, *body](),
		gravity: gravity,
	}
}

func (t *bodyTable) add(shape *collision.Shape, start Transform, mass MassProperties, static bool) (BodyHandle, error) {
	if shape == nil {
		return 0, ErrNilShape
	}
	if mass.Mass <= 0 {
		static = true
	}
	t.next++
	b := &body{
		handle: t.next,
		shape:  shape,
		static: static,
		mass:   mass,
	}
	if !static {
		b.invMass = 1 / mass.Mass
	}
	b.place(start.Translation, normalized(start.Rotation))
	t.bodies.Set(b.handle, b)
	return b.handle, nil
}

func (t *bodyTable) get(h BodyHandle) *body {
	b, _ := t.bodies.Get(h)
	return b
}

func (t *bodyTable) each(fn func(b *body)) {
	for el := t.bodies.Front(); el != nil; el = el.Next() {
		fn(el.Value)
	}
}

func (t *bodyTable) remove(h BodyHandle) *body {
	b := t.get(h)
	if b == nil {
		return nil
	}
	t.bodies.Delete(h)
	return b
}

func (t *bodyTable) NumBodies() int {
	return t.bodies.Len()
}

func (t *bodyTable) Transform(h BodyHandle) Transform {
	b := t.get(h)
	if b == nil {
		return IdentityTransform()
	}
	return Transform{Translation: b.pos, Rotation: b.rot}
}

func (t *bodyTable) LinearVelocity(h BodyHandle) mgl32.Vec3 {
	if b := t.get(h); b != nil {
		return b.vel
	}
	return mgl32.Vec3{}
}

func (t *bodyTable) CollisionShapeBounds(h BodyHandle) cube.BBox {
	if b := t.get(h); b != nil {
		return b.bounds()
	}
	return cube.BBox{}
}

func (t *bodyTable) SetGravity(g mgl32.Vec3) {
	t.gravity = g
}

func (t *bodyTable) Gravity() mgl32.Vec3 {
	return t.gravity
}

// touching reports whether b overlaps or rests against another body.
func (t *bodyTable) touching(b *body) bool {
	own := b.partBounds()
	for i := range own {
		own[i] = own[i].Grow(contactSlop)
	}
	hit := false
	t.each(func(o *body) {
		if hit || o == b {
			return
		}
		for _, ob := range o.partBounds() {
			for _, p := range own {
				if p.IntersectsWith(ob) {
					hit = true
					return
				}
			}
		}
	})
	return hit
}

// wakeAround wakes every dynamic body touching bb.
func (t *bodyTable) wakeAround(bb cube.BBox, except *body) {
	bb = bb.Grow(contactSlop)
	t.each(func(o *body) {
		if o == except || o.static || !o.asleep {
			return
		}
		if bb.IntersectsWith(o.bounds()) {
			o.wake()
		}
	})
}

func normalized(q mgl32.Quat) mgl32.Quat {
	if q.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}
