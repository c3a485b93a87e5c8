package metrics

import (
	"math"

	"github.com/san-kum/physim/internal/sim"
)

// Stability is the fraction of frames in which every object stayed within
// threshold of the origin on each axis.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f *sim.Frame) {
	s.samples++
	for _, o := range f.Objects {
		if escaped(o, s.threshold) {
			s.violations++
			break
		}
	}
}

func escaped(o sim.ObjectState, threshold float64) bool {
	for _, c := range o.Translation {
		if math.Abs(float64(c)) > threshold {
			return true
		}
	}
	return false
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
