// Package sim implements the physics manager: it owns the live simulated
// objects, binds each object's backend body to its scene node, advances
// simulation time and answers activity and contact queries.
//
// A Manager is not safe for concurrent use. Independent managers may run in
// parallel, see Ensemble.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/assets"
	"github.com/san-kum/physim/internal/backend"
	"github.com/san-kum/physim/internal/collision"
	"github.com/san-kum/physim/internal/scene"
	"github.com/san-kum/physim/internal/templates"
)

var (
	ErrUnknownObject = errors.New("physim: unknown object")

	ErrUnknownTemplate = templates.ErrUnknownTemplate

	ErrInvalidTimeStep = backend.ErrInvalidTimeStep
)

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithShapeBuilder shares a shape cache between managers.
func WithShapeBuilder(b *collision.Builder) Option {
	return func(m *Manager) { m.shapes = b }
}

type Manager struct {
	backend   backend.Backend
	assets    assets.Provider
	templates *templates.Registry
	graph     *scene.Graph
	shapes    *collision.Builder
	log       *slog.Logger

	objects *orderedmap.OrderedMap[int, *Object]
	static  []backend.BodyHandle
	nextID  int

	time  float64
	steps int

	observers []Observer
	metrics   []Metric
}

func NewManager(b backend.Backend, provider assets.Provider, reg *templates.Registry, graph *scene.Graph, opts ...Option) *Manager {
	m := &Manager{
		backend:   b,
		assets:    provider,
		templates: reg,
		graph:     graph,
		objects:   orderedmap.NewOrderedMap[int, *Object](),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	if m.shapes == nil {
		m.shapes = collision.NewBuilder()
	}
	return m
}

func (m *Manager) Backend() backend.Backend       { return m.backend }
func (m *Manager) Templates() *templates.Registry { return m.templates }
func (m *Manager) Graph() *scene.Graph            { return m.graph }

func (m *Manager) AddObserver(o Observer) { m.observers = append(m.observers, o) }
func (m *Manager) AddMetric(mt Metric)    { m.metrics = append(m.metrics, mt) }

// AddStaticGeometry loads handle as immovable environment geometry. The
// empty scene yields no body and no error.
func (m *Manager) AddStaticGeometry(handle string, margin float32, at backend.Transform) (int, error) {
	mesh, err := m.assets.LoadGeometry(handle)
	if err != nil {
		return 0, fmt.Errorf("load scene %q: %w", handle, err)
	}
	if len(mesh.SubMeshes) == 0 {
		m.log.Debug("scene has no collision geometry", "scene", handle)
		return 0, nil
	}
	shape, err := m.shapes.BuildStatic(mesh, margin)
	if err != nil {
		return 0, err
	}
	h, err := m.backend.CreateStaticBody(shape, at)
	if err != nil {
		return 0, err
	}
	m.static = append(m.static, h)
	m.log.Debug("static geometry added", "scene", handle, "parts", shape.NumParts())
	return len(m.static), nil
}

// AddObject instantiates the template registered under handle as a child of
// parent, or of the scene root when parent is nil. The object starts at the
// parent's absolute pose. On failure nothing is created.
func (m *Manager) AddObject(handle string, parent *scene.Node) (int, error) {
	attrs, err := m.templates.Snapshot(handle)
	if err != nil {
		return 0, err
	}
	mesh, err := m.assets.LoadGeometry(attrs.CollisionMesh())
	if err != nil {
		return 0, fmt.Errorf("template %q: %w", handle, err)
	}
	shape, err := m.shapes.Build(mesh, collision.Options{
		Margin:         attrs.Margin,
		Join:           attrs.JoinCollisionMeshes,
		UseBoundingBox: attrs.UseBoundingBoxForCollision,
		Scale:          attrs.Scale,
	})
	if err != nil {
		return 0, fmt.Errorf("template %q: %w", handle, err)
	}

	if parent == nil {
		parent = m.graph.Root()
	}
	if !parent.Attached() {
		return 0, fmt.Errorf("template %q: %w", handle, scene.ErrDetached)
	}
	pos, rot := parent.AbsoluteTransformation()
	body, err := m.backend.CreateBody(shape, backend.Transform{Translation: pos, Rotation: rot}, backend.MassProperties{
		Mass:          attrs.Mass,
		Inertia:       attrs.Inertia,
		Friction:      attrs.Friction,
		Restitution:   attrs.Restitution,
		LinearDamping: attrs.LinearDamping,
	})
	if err != nil {
		return 0, fmt.Errorf("template %q: %w", handle, err)
	}
	node, err := parent.CreateChild()
	if err != nil {
		m.backend.RemoveBody(body)
		return 0, fmt.Errorf("template %q: %w", handle, err)
	}

	m.nextID++
	obj := &Object{ID: m.nextID, Template: attrs, Shape: shape, Node: node, Body: body}
	m.objects.Set(obj.ID, obj)
	m.log.Debug("object added", "id", obj.ID, "template", handle, "parts", shape.NumParts())
	return obj.ID, nil
}

// RemoveObject destroys the object's body and scene node.
func (m *Manager) RemoveObject(id int) error {
	obj, err := m.lookup(id)
	if err != nil {
		return err
	}
	m.backend.RemoveBody(obj.Body)
	obj.Node.Remove()
	m.objects.Delete(id)
	m.log.Debug("object removed", "id", id)
	return nil
}

func (m *Manager) lookup(id int) (*Object, error) {
	obj, ok := m.objects.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownObject, id)
	}
	return obj, nil
}

func (m *Manager) Object(id int) (*Object, error) {
	return m.lookup(id)
}

func (m *Manager) Node(id int) (*scene.Node, error) {
	obj, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return obj.Node, nil
}

// ObjectIDs lists live ids in creation order.
func (m *Manager) ObjectIDs() []int {
	return m.objects.Keys()
}

func (m *Manager) NumObjects() int {
	return m.objects.Len()
}

// SetTranslation teleports the object and updates its node immediately.
func (m *Manager) SetTranslation(id int, t mgl32.Vec3) error {
	obj, err := m.lookup(id)
	if err != nil {
		return err
	}
	rot := m.backend.Transform(obj.Body).Rotation
	m.place(obj, t, rot)
	return nil
}

func (m *Manager) SetRotation(id int, r mgl32.Quat) error {
	obj, err := m.lookup(id)
	if err != nil {
		return err
	}
	pos := m.backend.Transform(obj.Body).Translation
	m.place(obj, pos, r)
	return nil
}

func (m *Manager) place(obj *Object, t mgl32.Vec3, r mgl32.Quat) {
	m.backend.SetTransform(obj.Body, t, r)
	cur := m.backend.Transform(obj.Body)
	obj.Node.SetAbsoluteTransform(cur.Translation, cur.Rotation)
}

func (m *Manager) Translation(id int) (mgl32.Vec3, error) {
	obj, err := m.lookup(id)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return m.backend.Transform(obj.Body).Translation, nil
}

func (m *Manager) Rotation(id int) (mgl32.Quat, error) {
	obj, err := m.lookup(id)
	if err != nil {
		return mgl32.QuatIdent(), err
	}
	return m.backend.Transform(obj.Body).Rotation, nil
}

func (m *Manager) ApplyForce(id int, force, relPos mgl32.Vec3) error {
	obj, err := m.lookup(id)
	if err != nil {
		return err
	}
	m.backend.ApplyForce(obj.Body, force, relPos)
	return nil
}

func (m *Manager) ApplyImpulse(id int, impulse, relPos mgl32.Vec3) error {
	obj, err := m.lookup(id)
	if err != nil {
		return err
	}
	m.backend.ApplyImpulse(obj.Body, impulse, relPos)
	return nil
}

func (m *Manager) LinearVelocity(id int) (mgl32.Vec3, error) {
	obj, err := m.lookup(id)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return m.backend.LinearVelocity(obj.Body), nil
}

func (m *Manager) SetLinearVelocity(id int, v mgl32.Vec3) error {
	obj, err := m.lookup(id)
	if err != nil {
		return err
	}
	m.backend.SetLinearVelocity(obj.Body, v)
	return nil
}

// StepPhysics advances the world by dt and copies every body pose into its
// scene node. A non-positive or NaN dt is a no-op and an infinite dt is
// rejected. A backend fatal error leaves world time untouched; the manager
// must then be discarded.
func (m *Manager) StepPhysics(dt float64) error {
	if math.IsInf(dt, 1) {
		return fmt.Errorf("step physics: %w", ErrInvalidTimeStep)
	}
	if !(dt > 0) {
		return nil
	}
	if err := m.backend.StepSimulation(dt); err != nil {
		m.log.Error("physics step failed", "time", m.time, "dt", dt, "error", err)
		return fmt.Errorf("step physics: %w", err)
	}
	m.time += dt
	m.steps++
	m.syncNodes()

	if len(m.observers) == 0 && len(m.metrics) == 0 {
		return nil
	}
	f := m.Frame()
	for _, mt := range m.metrics {
		mt.Observe(f)
	}
	for _, o := range m.observers {
		o.OnStep(f)
	}
	return nil
}

func (m *Manager) syncNodes() {
	for el := m.objects.Front(); el != nil; el = el.Next() {
		obj := el.Value
		t := m.backend.Transform(obj.Body)
		obj.Node.SetAbsoluteTransform(t.Translation, t.Rotation)
	}
}

func (m *Manager) WorldTime() float64 {
	return m.time
}

func (m *Manager) Steps() int {
	return m.steps
}

// Reset zeroes world time and backend state. Live objects survive with
// their ids and current poses; every body is woken with zero velocity.
func (m *Manager) Reset() {
	m.backend.Reset()
	m.time = 0
	m.steps = 0
	for _, mt := range m.metrics {
		mt.Reset()
	}
	m.syncNodes()
	m.log.Info("world reset", "objects", m.objects.Len())
}

func (m *Manager) CheckActiveObjects() int {
	return m.backend.CountActiveBodies()
}

func (m *Manager) IsActive(id int) (bool, error) {
	obj, err := m.lookup(id)
	if err != nil {
		return false, err
	}
	return m.backend.IsActive(obj.Body), nil
}

func (m *Manager) ContactTest(id int) (bool, error) {
	obj, err := m.lookup(id)
	if err != nil {
		return false, err
	}
	return m.backend.ContactTest(obj.Body), nil
}

func (m *Manager) PhysicsSimulationLibrary() backend.Library {
	return m.backend.Library()
}

// CollisionShapeBounds returns the object's margin-inflated AABB in the
// scene frame.
func (m *Manager) CollisionShapeBounds(id int) (cube.BBox, error) {
	obj, err := m.lookup(id)
	if err != nil {
		return cube.BBox{}, err
	}
	return m.backend.CollisionShapeBounds(obj.Body), nil
}

// SceneBounds is the union of every live object's bounds. It is the zero
// box when no object is live.
func (m *Manager) SceneBounds() cube.BBox {
	bbs := make([]cube.BBox, 0, m.objects.Len())
	for el := m.objects.Front(); el != nil; el = el.Next() {
		bbs = append(bbs, m.backend.CollisionShapeBounds(el.Value.Body))
	}
	return collision.Union(bbs)
}

// Frame snapshots the current world state.
func (m *Manager) Frame() *Frame {
	f := &Frame{
		Step:    m.steps,
		Time:    m.time,
		Active:  m.backend.CountActiveBodies(),
		Objects: make([]ObjectState, 0, m.objects.Len()),
	}
	for el := m.objects.Front(); el != nil; el = el.Next() {
		obj := el.Value
		t := m.backend.Transform(obj.Body)
		f.Objects = append(f.Objects, ObjectState{
			ID:          obj.ID,
			Translation: t.Translation,
			Rotation:    t.Rotation,
			Velocity:    m.backend.LinearVelocity(obj.Body),
			Mass:        obj.Template.Mass,
			Active:      m.backend.IsActive(obj.Body),
		})
	}
	return f
}
