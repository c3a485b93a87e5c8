package metrics

import "github.com/san-kum/physim/internal/sim"

// SettleTime records the first world time at which no object was active.
// Its value is -1 until that happens.
type SettleTime struct {
	name    string
	settled float64
}

func NewSettleTime() *SettleTime {
	return &SettleTime{name: "settle_time", settled: -1}
}

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(f *sim.Frame) {
	if s.settled < 0 && f.Active == 0 && len(f.Objects) > 0 {
		s.settled = f.Time
	}
}

func (s *SettleTime) Value() float64 { return s.settled }

func (s *SettleTime) Reset() { s.settled = -1 }

// Default is the metric set attached to every CLI run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewStability(100),
		NewSettleTime(),
	}
}
