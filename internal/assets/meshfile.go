package assets

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// meshFile is the on-disk YAML layout of a mesh asset. A sub-mesh either
// lists its vertices or describes a box.
type meshFile struct {
	Name      string        `yaml:"name"`
	SubMeshes []subMeshFile `yaml:"submeshes"`
}

type subMeshFile struct {
	Name     string       `yaml:"name"`
	Vertices [][3]float32 `yaml:"vertices,flow"`
	Indices  []uint32     `yaml:"indices,flow"`
	Box      *boxFile     `yaml:"box"`
}

type boxFile struct {
	Center      [3]float32 `yaml:"center,flow"`
	HalfExtents [3]float32 `yaml:"half_extents,flow"`
}

func LoadMeshFile(path string) (*MeshDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mesh, err := ParseMesh(path, data)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", path, err)
	}
	return mesh, nil
}

func ParseMesh(handle string, data []byte) (*MeshDescription, error) {
	var f meshFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	mesh := &MeshDescription{Handle: handle}
	for i, sm := range f.SubMeshes {
		name := sm.Name
		if name == "" {
			name = fmt.Sprintf("submesh%d", i)
		}
		if sm.Box != nil {
			if len(sm.Vertices) > 0 {
				return nil, fmt.Errorf("submesh %s: box and vertices are exclusive", name)
			}
			mesh.SubMeshes = append(mesh.SubMeshes, BoxSubMesh(name, sm.Box.Center, sm.Box.HalfExtents))
			continue
		}
		verts := make([]mgl32.Vec3, len(sm.Vertices))
		for j, v := range sm.Vertices {
			verts[j] = v
		}
		for _, idx := range sm.Indices {
			if int(idx) >= len(verts) {
				return nil, fmt.Errorf("submesh %s: index %d out of range", name, idx)
			}
		}
		mesh.SubMeshes = append(mesh.SubMeshes, SubMesh{Name: name, Vertices: verts, Indices: sm.Indices})
	}
	return mesh, nil
}

func SaveMeshFile(path string, mesh *MeshDescription) error {
	f := meshFile{Name: mesh.Handle}
	for _, sm := range mesh.SubMeshes {
		out := subMeshFile{Name: sm.Name, Indices: sm.Indices}
		for _, v := range sm.Vertices {
			out.Vertices = append(out.Vertices, v)
		}
		f.SubMeshes = append(f.SubMeshes, out)
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
