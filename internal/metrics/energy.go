package metrics

import "github.com/san-kum/physim/internal/sim"

// Energy averages the total linear kinetic energy over observed frames.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
	last        float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f *sim.Frame) {
	e.last = KineticEnergy(f)
	e.totalEnergy += e.last
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

// Last is the energy of the most recent frame.
func (e *Energy) Last() float64 { return e.last }

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.last = 0
	e.samples = 0
}

// KineticEnergy sums ½mv² over every object with positive mass.
func KineticEnergy(f *sim.Frame) float64 {
	total := 0.0
	for _, o := range f.Objects {
		if o.Mass <= 0 {
			continue
		}
		v := float64(o.Velocity.Len())
		total += 0.5 * float64(o.Mass) * v * v
	}
	return total
}
