package backend

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/collision"
)

// bounceThreshold is the impact speed below which restitution is ignored.
const bounceThreshold = 1.0

var axisOrder = [3]int{1, 0, 2}

type sweepWorld struct {
	*bodyTable
	settings Settings
	log      *slog.Logger

	time  float64
	steps int
	fatal error
}

func newSweepWorld(s Settings) *sweepWorld {
	return &sweepWorld{
		bodyTable: newBodyTable(s.Gravity),
		settings:  s,
		log:       s.Logger,
	}
}

func (w *sweepWorld) Library() Library { return LibrarySweep }

func (w *sweepWorld) CreateBody(shape *collision.Shape, start Transform, mass MassProperties) (BodyHandle, error) {
	return w.add(shape, start, mass, false)
}

func (w *sweepWorld) CreateStaticBody(shape *collision.Shape, start Transform) (BodyHandle, error) {
	return w.add(shape, start, MassProperties{}, true)
}

func (w *sweepWorld) RemoveBody(h BodyHandle) {
	if b := w.remove(h); b != nil {
		w.wakeAround(b.bounds(), b)
	}
}

func (w *sweepWorld) SetTransform(h BodyHandle, translation mgl32.Vec3, rotation mgl32.Quat) {
	b := w.get(h)
	if b == nil {
		return
	}
	old := b.bounds()
	b.place(translation, normalized(rotation))
	b.vel = mgl32.Vec3{}
	b.wake()
	w.wakeAround(old, b)
	w.wakeAround(b.bounds(), b)
}

// ApplyForce accumulates a force for the next step. Without angular
// dynamics the application point only matters through the force itself.
func (w *sweepWorld) ApplyForce(h BodyHandle, force, _ mgl32.Vec3) {
	if b := w.get(h); b != nil && b.dynamic() {
		b.force = b.force.Add(force)
		b.wake()
	}
}

func (w *sweepWorld) ApplyImpulse(h BodyHandle, impulse, _ mgl32.Vec3) {
	if b := w.get(h); b != nil && b.dynamic() {
		b.vel = b.vel.Add(impulse.Mul(b.invMass))
		b.wake()
	}
}

func (w *sweepWorld) SetLinearVelocity(h BodyHandle, v mgl32.Vec3) {
	if b := w.get(h); b != nil && b.dynamic() {
		b.vel = v
		b.wake()
	}
}

func (w *sweepWorld) ContactTest(h BodyHandle) bool {
	b := w.get(h)
	if b == nil {
		return false
	}
	return w.touching(b)
}

func (w *sweepWorld) CountActiveBodies() int {
	n := 0
	w.each(func(b *body) {
		if b.dynamic() && !b.asleep {
			n++
		}
	})
	return n
}

func (w *sweepWorld) IsActive(h BodyHandle) bool {
	b := w.get(h)
	return b != nil && b.dynamic() && !b.asleep
}

func (w *sweepWorld) Reset() {
	w.time = 0
	w.steps = 0
	w.each(func(b *body) {
		b.vel = mgl32.Vec3{}
		b.force = mgl32.Vec3{}
		b.wake()
	})
}

func (w *sweepWorld) StepSimulation(dt float64) error {
	if w.fatal != nil {
		return w.fatal
	}
	if math.IsInf(dt, 1) {
		return ErrInvalidTimeStep
	}
	if !(dt > 0) {
		return nil
	}

	n := int(math.Ceil(dt/w.settings.FixedTimeStep - 1e-9))
	n = max(1, min(n, w.settings.MaxSubSteps))
	h := dt / float64(n)

	for i := 0; i < n; i++ {
		if err := w.substep(h); err != nil {
			w.fatal = err
			w.log.Error("backend world poisoned", "library", LibrarySweep.String(), "error", err)
			return err
		}
	}
	w.time += dt
	return nil
}

func (w *sweepWorld) substep(h float64) error {
	hf := float32(h)
	w.steps++

	var moving []*body
	w.each(func(b *body) {
		if b.static || b.asleep {
			return
		}
		accel := w.gravity.Add(b.force.Mul(b.invMass))
		b.vel = b.vel.Add(accel.Mul(hf))
		if b.mass.LinearDamping > 0 {
			b.vel = b.vel.Mul(1 / (1 + b.mass.LinearDamping*hf))
		}
		b.force = mgl32.Vec3{}
		moving = append(moving, b)
	})
	for _, b := range moving {
		if err := w.checkFinite(b); err != nil {
			return err
		}
	}

	// Lower bodies settle first so bodies above clip against their new pose.
	sort.SliceStable(moving, func(i, j int) bool {
		return moving[i].bounds().Min().Y() < moving[j].bounds().Min().Y()
	})

	for _, b := range moving {
		old := b.bounds()
		if w.move(b, hf) {
			// Bodies resting on or against b lose their support.
			w.wakeAround(old, b)
			w.wakeAround(b.bounds(), b)
		}
		if err := w.checkFinite(b); err != nil {
			return err
		}
		w.updateSleep(b, h)
	}
	return nil
}

// move advances b by its velocity, clipped against every other collidable.
// It reports whether b changed position.
func (w *sweepWorld) move(b *body, h float32) bool {
	want := b.vel.Mul(h)
	parts := b.partBounds()
	obstacles := w.obstacles(b, collision.Union(parts).Extend(want))

	var applied mgl32.Vec3
	var clipped [3]bool
	var depth float32
	for _, axis := range axisOrder {
		var d mgl32.Vec3
		d[axis] = want[axis]
		got, pen := clipAxis(parts, obstacles, d)
		applied = applied.Add(got)
		depth = math32.Max(depth, pen)
		if got[axis] != want[axis] {
			clipped[axis] = true
		}
	}
	if depth > 0 {
		w.log.Debug("overlap resolved", "body", int(b.handle), "depth", depth, "step", w.steps)
	}
	b.pos = b.pos.Add(applied)

	grounded := clipped[1] && b.vel.Y() < 0
	for axis, hit := range clipped {
		if !hit {
			continue
		}
		v := b.vel[axis]
		if b.mass.Restitution > 0 && math32.Abs(v) > bounceThreshold {
			b.vel[axis] = -v * b.mass.Restitution
		} else {
			b.vel[axis] = 0
		}
	}
	if grounded && b.mass.Friction > 0 {
		w.applyFriction(b, h)
	}
	return applied != (mgl32.Vec3{})
}

// applyFriction slows horizontal motion of a body resting on something.
func (w *sweepWorld) applyFriction(b *body, h float32) {
	horiz := mgl32.Vec3{b.vel.X(), 0, b.vel.Z()}
	speed := horiz.Len()
	if speed == 0 {
		return
	}
	drop := b.mass.Friction * w.gravity.Len() * h
	if drop >= speed {
		b.vel[0], b.vel[2] = 0, 0
		return
	}
	scale := (speed - drop) / speed
	b.vel[0] *= scale
	b.vel[2] *= scale
}

func (w *sweepWorld) obstacles(self *body, region cube.BBox) []cube.BBox {
	region = region.Grow(clipEpsilon)
	var out []cube.BBox
	w.each(func(o *body) {
		if o == self {
			return
		}
		for _, bb := range o.partBounds() {
			if region.IntersectsWith(bb) {
				out = append(out, bb)
			}
		}
	})
	return out
}

func (w *sweepWorld) updateSleep(b *body, h float64) {
	if b.vel.Len() >= w.settings.SleepThreshold {
		b.idleTime = 0
		return
	}
	b.idleTime += h
	if b.idleTime >= w.settings.DeactivationTime {
		b.asleep = true
		b.vel = mgl32.Vec3{}
		w.log.Debug("body asleep", "body", int(b.handle), "t", w.time)
	}
}

func (w *sweepWorld) checkFinite(b *body) error {
	for i := 0; i < 3; i++ {
		if !finite(b.pos[i]) || !finite(b.vel[i]) {
			return &BackendFatalError{
				Step:   w.steps,
				Time:   w.time,
				Body:   b.handle,
				Reason: fmt.Sprintf("non-finite state pos=%v vel=%v", b.pos, b.vel),
			}
		}
	}
	return nil
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
