package sim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/backend"
	"github.com/san-kum/physim/internal/collision"
	"github.com/san-kum/physim/internal/scene"
	"github.com/san-kum/physim/internal/templates"
)

// Object is one live simulated rigid body. It owns exactly one scene node
// and one backend body for as long as it is registered with a Manager.
type Object struct {
	ID int
	// Template is the snapshot the object was created from.
	Template templates.Attributes
	Shape    *collision.Shape
	Node     *scene.Node
	Body     backend.BodyHandle
}

// ObjectState is the pose and motion of an object after a step.
type ObjectState struct {
	ID          int        `json:"id"`
	Translation mgl32.Vec3 `json:"translation"`
	Rotation    mgl32.Quat `json:"rotation"`
	Velocity    mgl32.Vec3 `json:"velocity"`
	Mass        float32    `json:"mass"`
	Active      bool       `json:"active"`
}

// Frame is a snapshot of the world handed to observers and metrics.
type Frame struct {
	Step    int
	Time    float64
	Active  int
	Objects []ObjectState
}

type Observer interface {
	OnStep(f *Frame)
}

type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f *Frame)

func (fn ObserverFunc) OnStep(f *Frame) { fn(f) }

type Config struct {
	Dt       float64
	Duration float64
	// StopWhenSettled ends a run early once no object is active.
	StopWhenSettled bool
}

type Result struct {
	Times      []float64
	Active     []int
	Metrics    map[string]float64
	StepsTaken int
	// SettledAt is the first time no object was active, or -1.
	SettledAt float64
	Final     []ObjectState
}
