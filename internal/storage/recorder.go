package storage

import (
	"fmt"
	"strconv"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/san-kum/physim/internal/sim"
)

// Recorder is a sim.Observer that keeps every frame it sees in memory so
// a run can be written out afterwards.
type Recorder struct {
	frames []*sim.Frame
	// object id -> column offset, in first-seen order
	columns *orderedmap.OrderedMap[int, int]
}

func NewRecorder() *Recorder {
	return &Recorder{columns: orderedmap.NewOrderedMap[int, int]()}
}

func (r *Recorder) OnStep(f *sim.Frame) {
	r.Record(f)
}

// Record adds f. Use it for the initial frame, before any step runs.
func (r *Recorder) Record(f *sim.Frame) {
	for _, o := range f.Objects {
		if _, ok := r.columns.Get(o.ID); !ok {
			r.columns.Set(o.ID, r.columns.Len()*3)
		}
	}
	r.frames = append(r.frames, f)
}

func (r *Recorder) Len() int { return len(r.frames) }

func (r *Recorder) Frames() []*sim.Frame { return r.frames }

func (r *Recorder) Header() []string {
	header := []string{"time", "active"}
	for _, id := range r.columns.Keys() {
		header = append(header,
			fmt.Sprintf("o%d_x", id),
			fmt.Sprintf("o%d_y", id),
			fmt.Sprintf("o%d_z", id),
		)
	}
	return header
}

// Rows formats every frame in Header order.
func (r *Recorder) Rows() [][]string {
	width := r.columns.Len() * 3
	rows := make([][]string, 0, len(r.frames))
	for _, f := range r.frames {
		row := make([]string, 2+width)
		row[0] = strconv.FormatFloat(f.Time, 'f', 6, 64)
		row[1] = strconv.Itoa(f.Active)
		for _, o := range f.Objects {
			off, _ := r.columns.Get(o.ID)
			for k := 0; k < 3; k++ {
				row[2+off+k] = strconv.FormatFloat(float64(o.Translation[k]), 'f', 6, 32)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Heights returns the y position of object id in every recorded frame,
// using NaN where the object was absent.
func (r *Recorder) Heights(id int) []float64 {
	out := make([]float64, len(r.frames))
	for i, f := range r.frames {
		out[i] = nan
		for _, o := range f.Objects {
			if o.ID == id {
				out[i] = float64(o.Translation.Y())
				break
			}
		}
	}
	return out
}
