// Package assets provides the geometry side of asset loading: mesh
// descriptions consumed by collision shape construction, asset classification
// by path, and a small library that resolves handles to meshes.
//
// Three kinds of handle resolve to geometry:
//
//   - primitive handles such as "box:1,1,1", "slabs:4:0.5,0.5,0.5" and "plane:20,20"
//   - YAML mesh files (".yaml" / ".yml")
//   - the reserved handle "NONE", an empty scene with no sub-meshes
//
// Render formats (".glb", ".gltf") are recognized but not parsed.
package assets

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// SubMesh is one disjoint piece of a mesh.
type SubMesh struct {
	Name     string
	Vertices []mgl32.Vec3
	Indices  []uint32
}

// MeshDescription is the geometric description of an asset.
type MeshDescription struct {
	Handle    string
	SubMeshes []SubMesh
}

func (m *MeshDescription) NumVertices() int {
	n := 0
	for _, sm := range m.SubMeshes {
		n += len(sm.Vertices)
	}
	return n
}

// Bounds returns the local axis-aligned bounds of every vertex in the mesh.
// An empty mesh yields a zero box.
func (m *MeshDescription) Bounds() cube.BBox {
	first := true
	var lo, hi mgl32.Vec3
	for _, sm := range m.SubMeshes {
		for _, v := range sm.Vertices {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				lo[i] = min(lo[i], v[i])
				hi[i] = max(hi[i], v[i])
			}
		}
	}
	return cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}

// Clone returns a deep copy that shares no vertex storage with m.
func (m *MeshDescription) Clone() *MeshDescription {
	c := &MeshDescription{Handle: m.Handle, SubMeshes: make([]SubMesh, len(m.SubMeshes))}
	for i, sm := range m.SubMeshes {
		c.SubMeshes[i] = SubMesh{
			Name:     sm.Name,
			Vertices: append([]mgl32.Vec3(nil), sm.Vertices...),
			Indices:  append([]uint32(nil), sm.Indices...),
		}
	}
	return c
}

var boxIndices = []uint32{
	0, 1, 3, 0, 3, 2, // -x
	4, 6, 7, 4, 7, 5, // +x
	0, 4, 5, 0, 5, 1, // -y
	2, 3, 7, 2, 7, 6, // +y
	0, 2, 6, 0, 6, 4, // -z
	1, 5, 7, 1, 7, 3, // +z
}

// BoxSubMesh returns the eight corners of an axis-aligned box.
func BoxSubMesh(name string, center, halfExtents mgl32.Vec3) SubMesh {
	verts := make([]mgl32.Vec3, 0, 8)
	for _, sx := range []float32{-1, 1} {
		for _, sy := range []float32{-1, 1} {
			for _, sz := range []float32{-1, 1} {
				verts = append(verts, mgl32.Vec3{
					center[0] + sx*halfExtents[0],
					center[1] + sy*halfExtents[1],
					center[2] + sz*halfExtents[2],
				})
			}
		}
	}
	return SubMesh{Name: name, Vertices: verts, Indices: append([]uint32(nil), boxIndices...)}
}

func BoxMesh(handle string, halfExtents mgl32.Vec3) *MeshDescription {
	return &MeshDescription{
		Handle:    handle,
		SubMeshes: []SubMesh{BoxSubMesh("box", mgl32.Vec3{}, halfExtents)},
	}
}

// SlabMesh splits a box into n abutting slabs stacked along Y. Together the
// slabs cover exactly the volume of BoxMesh(handle, halfExtents).
func SlabMesh(handle string, n int, halfExtents mgl32.Vec3) *MeshDescription {
	m := &MeshDescription{Handle: handle}
	if n <= 0 {
		return m
	}
	slabHalf := halfExtents[1] / float32(n)
	for i := 0; i < n; i++ {
		cy := -halfExtents[1] + slabHalf*float32(2*i+1)
		m.SubMeshes = append(m.SubMeshes, BoxSubMesh(
			"slab",
			mgl32.Vec3{0, cy, 0},
			mgl32.Vec3{halfExtents[0], slabHalf, halfExtents[2]},
		))
	}
	return m
}

// PlaneMesh is a flat quad on y=0, used as ground geometry.
func PlaneMesh(handle string, halfX, halfZ float32) *MeshDescription {
	return &MeshDescription{
		Handle: handle,
		SubMeshes: []SubMesh{{
			Name: "plane",
			Vertices: []mgl32.Vec3{
				{-halfX, 0, -halfZ},
				{halfX, 0, -halfZ},
				{halfX, 0, halfZ},
				{-halfX, 0, halfZ},
			},
			Indices: []uint32{0, 2, 1, 0, 3, 2},
		}},
	}
}
