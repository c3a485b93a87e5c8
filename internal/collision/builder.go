package collision

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/assets"
	"github.com/zeebo/xxh3"
)

// Options control how a mesh is turned into a shape.
type Options struct {
	Margin float32
	// Join merges every sub-mesh into a single hull.
	Join bool
	// UseBoundingBox replaces the mesh with one box equal to its local AABB.
	UseBoundingBox bool
	// Scale is applied to every vertex. The zero value means unit scale.
	Scale mgl32.Vec3
}

func (o Options) scale() mgl32.Vec3 {
	if o.Scale == (mgl32.Vec3{}) {
		return mgl32.Vec3{1, 1, 1}
	}
	return o.Scale
}

// minExtent is the smallest hull thickness accepted for dynamic shapes.
const minExtent = 1e-5

// Builder constructs shapes and caches them by content. It is safe for
// concurrent use.
type Builder struct {
	mu     sync.Mutex
	cache  map[uint64]*Shape
	hits   int
	misses int
}

func NewBuilder() *Builder {
	return &Builder{cache: make(map[uint64]*Shape)}
}

// Build creates a dynamic shape. Every part must enclose a volume.
func (b *Builder) Build(mesh *assets.MeshDescription, opts Options) (*Shape, error) {
	return b.build(mesh, opts, false)
}

// BuildStatic creates environment geometry. Flat parts such as a ground
// plane are allowed.
func (b *Builder) BuildStatic(mesh *assets.MeshDescription, margin float32) (*Shape, error) {
	return b.build(mesh, Options{Margin: margin}, true)
}

// Stats reports cache hits and misses.
func (b *Builder) Stats() (hits, misses int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits, b.misses
}

func (b *Builder) build(mesh *assets.MeshDescription, opts Options, static bool) (*Shape, error) {
	if mesh == nil {
		return nil, geometryErrorf("", "nil mesh")
	}
	if err := validate(mesh, opts); err != nil {
		return nil, err
	}

	key := Key(mesh, opts, static)
	b.mu.Lock()
	if s, ok := b.cache[key]; ok {
		b.hits++
		b.mu.Unlock()
		return s, nil
	}
	b.mu.Unlock()

	s, err := construct(mesh, opts, static)
	if err != nil {
		return nil, err
	}
	s.key = key

	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.cache[key]; ok {
		b.hits++
		return existing, nil
	}
	b.cache[key] = s
	b.misses++
	return s, nil
}

func validate(mesh *assets.MeshDescription, opts Options) error {
	if math32.IsNaN(opts.Margin) || math32.IsInf(opts.Margin, 0) || opts.Margin < 0 {
		return geometryErrorf(mesh.Handle, "margin must be finite and non-negative, got %v", opts.Margin)
	}
	for i, s := range opts.Scale {
		if math32.IsNaN(s) || math32.IsInf(s, 0) || s < 0 {
			return geometryErrorf(mesh.Handle, "scale component %d is invalid: %v", i, s)
		}
	}
	if len(mesh.SubMeshes) == 0 {
		return geometryErrorf(mesh.Handle, "no sub-meshes")
	}
	for _, sm := range mesh.SubMeshes {
		if len(sm.Vertices) == 0 {
			return geometryErrorf(mesh.Handle, "sub-mesh %q has no vertices", sm.Name)
		}
		for _, v := range sm.Vertices {
			for _, c := range v {
				if math32.IsNaN(c) || math32.IsInf(c, 0) {
					return geometryErrorf(mesh.Handle, "sub-mesh %q has a non-finite vertex %v", sm.Name, v)
				}
			}
		}
	}
	return nil
}

func construct(mesh *assets.MeshDescription, opts Options, static bool) (*Shape, error) {
	scale := opts.scale()
	s := &Shape{Margin: opts.Margin, Joined: opts.Join, Static: static}

	switch {
	case opts.UseBoundingBox:
		pts := boxCorners(scaledBounds(mesh, scale))
		if !static && !hasVolume(pts) {
			return nil, geometryErrorf(mesh.Handle, "bounding box has no volume")
		}
		s.Parts = []Part{{Kind: PartBox, Name: "bounds", Points: pts}}
	case opts.Join:
		var pts []mgl32.Vec3
		for _, sm := range mesh.SubMeshes {
			for _, v := range sm.Vertices {
				pts = append(pts, mulVec(v, scale))
			}
		}
		if !static && !hasVolume(pts) {
			return nil, geometryErrorf(mesh.Handle, "joined hull is degenerate")
		}
		s.Parts = []Part{{Kind: PartHull, Name: "joined", Points: pts}}
	default:
		for _, sm := range mesh.SubMeshes {
			pts := make([]mgl32.Vec3, len(sm.Vertices))
			for i, v := range sm.Vertices {
				pts[i] = mulVec(v, scale)
			}
			if !static && !hasVolume(pts) {
				return nil, geometryErrorf(mesh.Handle, "hull for sub-mesh %q is degenerate", sm.Name)
			}
			s.Parts = append(s.Parts, Part{Kind: PartHull, Name: sm.Name, Points: pts})
		}
	}

	s.local = s.WorldBounds(mgl32.Vec3{}, mgl32.QuatIdent())
	return s, nil
}

// hasVolume reports whether pts span three dimensions. It grows a
// tetrahedron from extreme points: the farthest point from the first, the
// farthest from that line, then the farthest from that plane.
func hasVolume(pts []mgl32.Vec3) bool {
	if len(pts) < 4 {
		return false
	}
	a := pts[0]
	b, d := farthest(pts, func(p mgl32.Vec3) float32 { return p.Sub(a).Len() })
	if d < minExtent {
		return false
	}
	ab := b.Sub(a).Normalize()
	c, d := farthest(pts, func(p mgl32.Vec3) float32 { return ab.Cross(p.Sub(a)).Len() })
	if d < minExtent {
		return false
	}
	n := ab.Cross(c.Sub(a)).Normalize()
	_, d = farthest(pts, func(p mgl32.Vec3) float32 { return math32.Abs(n.Dot(p.Sub(a))) })
	return d >= minExtent
}

func farthest(pts []mgl32.Vec3, dist func(mgl32.Vec3) float32) (mgl32.Vec3, float32) {
	best, bestD := pts[0], float32(-1)
	for _, p := range pts {
		if d := dist(p); d > bestD {
			best, bestD = p, d
		}
	}
	return best, bestD
}

func scaledBounds(mesh *assets.MeshDescription, scale mgl32.Vec3) [2]mgl32.Vec3 {
	bb := mesh.Bounds()
	lo, hi := mulVec(bb.Min(), scale), mulVec(bb.Max(), scale)
	return [2]mgl32.Vec3{lo, hi}
}

func boxCorners(b [2]mgl32.Vec3) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, 0, 8)
	for _, x := range []float32{b[0][0], b[1][0]} {
		for _, y := range []float32{b[0][1], b[1][1]} {
			for _, z := range []float32{b[0][2], b[1][2]} {
				pts = append(pts, mgl32.Vec3{x, y, z})
			}
		}
	}
	return pts
}

func mulVec(v, s mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0] * s[0], v[1] * s[1], v[2] * s[2]}
}

// Key hashes everything that affects the built shape.
func Key(mesh *assets.MeshDescription, opts Options, static bool) uint64 {
	h := xxh3.New()
	_, _ = h.WriteString(mesh.Handle)

	var buf [4]byte
	putFloat := func(f float32) {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
		_, _ = h.Write(buf[:])
	}
	putFlag := func(v bool) {
		if v {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}

	putFloat(opts.Margin)
	putFlag(opts.Join)
	putFlag(opts.UseBoundingBox)
	putFlag(static)
	for _, s := range opts.scale() {
		putFloat(s)
	}
	for _, sm := range mesh.SubMeshes {
		binary.LittleEndian.PutUint32(buf[:], uint32(len(sm.Vertices)))
		_, _ = h.Write(buf[:])
		for _, v := range sm.Vertices {
			putFloat(v[0])
			putFloat(v[1])
			putFloat(v[2])
		}
	}
	return h.Sum64()
}
