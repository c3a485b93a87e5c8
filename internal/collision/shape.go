// Package collision builds collision shapes from mesh descriptions.
//
// A Shape is a compound of convex parts. Each part is either the convex hull
// of a point cloud or a box, and is inflated by the shape's margin when its
// bounds are taken. Unjoined construction yields one part per sub-mesh,
// joined construction a single part holding every vertex, so both enclose
// the same outer extent.
package collision

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

type PartKind int

const (
	PartHull PartKind = iota
	PartBox
)

func (k PartKind) String() string {
	if k == PartBox {
		return "box"
	}
	return "hull"
}

// Part is one convex piece of a shape in the shape's local frame. Box parts
// carry their eight corners in Points.
type Part struct {
	Kind   PartKind
	Name   string
	Points []mgl32.Vec3
}

// Shape is immutable once built and may be shared between bodies.
type Shape struct {
	Parts  []Part
	Margin float32
	Joined bool
	Static bool

	key   uint64
	local cube.BBox
}

func (s *Shape) Key() uint64 {
	return s.key
}

func (s *Shape) NumParts() int {
	return len(s.Parts)
}

// LocalBounds is the margin-inflated AABB of the shape in its own frame.
func (s *Shape) LocalBounds() cube.BBox {
	return s.local
}

// PartBounds returns the margin-inflated world AABB of every part placed at
// the given pose.
func (s *Shape) PartBounds(pos mgl32.Vec3, rot mgl32.Quat) []cube.BBox {
	out := make([]cube.BBox, len(s.Parts))
	for i, p := range s.Parts {
		out[i] = pointBounds(p.Points, rot).Translate(pos).Grow(s.Margin)
	}
	return out
}

// WorldBounds returns the union of PartBounds.
func (s *Shape) WorldBounds(pos mgl32.Vec3, rot mgl32.Quat) cube.BBox {
	return Union(s.PartBounds(pos, rot))
}

// Union returns the smallest box enclosing every box in bbs.
func Union(bbs []cube.BBox) cube.BBox {
	if len(bbs) == 0 {
		return cube.BBox{}
	}
	lo, hi := bbs[0].Min(), bbs[0].Max()
	for _, bb := range bbs[1:] {
		bmin, bmax := bb.Min(), bb.Max()
		for i := 0; i < 3; i++ {
			lo[i] = math32.Min(lo[i], bmin[i])
			hi[i] = math32.Max(hi[i], bmax[i])
		}
	}
	return cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}

// pointBounds rotates pts about the origin and returns their AABB.
func pointBounds(pts []mgl32.Vec3, rot mgl32.Quat) cube.BBox {
	if len(pts) == 0 {
		return cube.BBox{}
	}
	identity := rot == mgl32.QuatIdent()
	first := pts[0]
	if !identity {
		first = rot.Rotate(first)
	}
	lo, hi := first, first
	for _, p := range pts[1:] {
		if !identity {
			p = rot.Rotate(p)
		}
		for i := 0; i < 3; i++ {
			lo[i] = math32.Min(lo[i], p[i])
			hi[i] = math32.Max(hi[i], p[i])
		}
	}
	return cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}
