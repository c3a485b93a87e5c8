package viz

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits Target and projects world points onto a canvas. ViewSize
// is how many world units fit across the shorter canvas side at zoom 1.
type Camera struct {
	Target     mgl32.Vec3
	Distance   float32
	Near       float32
	ViewSize   float32
	Yaw, Pitch float32
	Zoom       float32
}

func NewCamera(target mgl32.Vec3) *Camera {
	return &Camera{
		Target:   target,
		Distance: 60,
		Near:     0.1,
		ViewSize: 24,
		Pitch:    0.35,
		Zoom:     1,
	}
}

func (c *Camera) Orbit(yaw, pitch float32) {
	c.Yaw += yaw
	c.Pitch = mgl32.Clamp(c.Pitch+pitch, -1.5, 1.5)
}

func (c *Camera) ZoomIn()  { c.Zoom = math32.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math32.Max(0.1, c.Zoom/1.2) }

// Frame points the camera at the center of bb.
func (c *Camera) Frame(bb cube.BBox) {
	c.Target = bb.Min().Add(bb.Max()).Mul(0.5)
}

// Project converts a world point to canvas sub-pixel coordinates.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p mgl32.Vec3, sw, sh int) (int, int, float32, bool) {
	rot := mgl32.AnglesToQuat(c.Pitch, c.Yaw, 0, mgl32.XYZ)
	v := rot.Rotate(p.Sub(c.Target))
	if v.Z() >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - v.Z())
	minDim := float32(sh)
	if float32(sw) < minDim {
		minDim = float32(sw)
	}
	ppu := minDim / c.ViewSize * c.Zoom
	sx := int(v.X()*scale*ppu) + sw/2
	sy := int(-v.Y()*scale*ppu) + sh/2
	return sx, sy, v.Z(), sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End mgl32.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0)} }

func (w *Wireframe) AddEdge(s, e mgl32.Vec3) {
	w.Edges = append(w.Edges, Edge{s, e})
}

func (w *Wireframe) Clear() { w.Edges = w.Edges[:0] }

var boxEdges = [12][2]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}, {4, 5}, {5, 7}, {7, 6}, {6, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}

// AddBox adds the twelve edges of bb.
func (w *Wireframe) AddBox(bb cube.BBox) {
	lo, hi := bb.Min(), bb.Max()
	var corners [8]mgl32.Vec3
	for i := range corners {
		corners[i] = lo
		if i&1 != 0 {
			corners[i][0] = hi[0]
		}
		if i&2 != 0 {
			corners[i][1] = hi[1]
		}
		if i&4 != 0 {
			corners[i][2] = hi[2]
		}
	}
	for _, e := range boxEdges {
		w.AddEdge(corners[e[0]], corners[e[1]])
	}
}

// AddGrid adds a square grid of the given half size on the y=0 plane.
func (w *Wireframe) AddGrid(half float32, lines int) {
	if lines < 2 {
		lines = 2
	}
	step := 2 * half / float32(lines-1)
	for i := 0; i < lines; i++ {
		o := -half + float32(i)*step
		w.AddEdge(mgl32.Vec3{o, 0, -half}, mgl32.Vec3{o, 0, half})
		w.AddEdge(mgl32.Vec3{-half, 0, o}, mgl32.Vec3{half, 0, o})
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float32
}

// Render3D draws the wireframe to the canvas back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.PixelSize()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}
