package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Type
	}{
		{"NONE", TypeEmpty},
		{"", TypeEmpty},
		{"box:1,1,1", TypePrimitive},
		{"slabs:4:0.5,0.5,0.5", TypePrimitive},
		{"plane:10,10", TypePrimitive},
		{"data/objects/crate.yaml", TypeMeshFile},
		{"data/objects/crate.YML", TypeMeshFile},
		{"data/scenes/plane.glb", TypeGLTF},
		{"data/scenes/plane.gltf", TypeGLTF},
		{"data/readme.txt", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FromPath(tt.path).Type; got != tt.want {
				t.Errorf("FromPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParsePrimitive(t *testing.T) {
	box, err := ParsePrimitive("box:1,2,3")
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	if len(box.SubMeshes) != 1 || len(box.SubMeshes[0].Vertices) != 8 {
		t.Fatalf("unexpected box mesh: %+v", box)
	}
	b := box.Bounds()
	if b.Min() != (mgl32.Vec3{-1, -2, -3}) || b.Max() != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("box bounds = %v..%v", b.Min(), b.Max())
	}

	slabs, err := ParsePrimitive("slabs:4:0.5,0.5,0.5")
	if err != nil {
		t.Fatalf("slabs: %v", err)
	}
	if len(slabs.SubMeshes) != 4 {
		t.Fatalf("expected 4 slabs, got %d", len(slabs.SubMeshes))
	}
	sb := slabs.Bounds()
	if !sb.Min().ApproxEqual(mgl32.Vec3{-0.5, -0.5, -0.5}) || !sb.Max().ApproxEqual(mgl32.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("slab bounds = %v..%v", sb.Min(), sb.Max())
	}

	plane, err := ParsePrimitive("plane:5,6")
	if err != nil {
		t.Fatalf("plane: %v", err)
	}
	pb := plane.Bounds()
	if pb.Min().Y() != 0 || pb.Max().Y() != 0 || pb.Max().Z() != 6 {
		t.Errorf("plane bounds = %v..%v", pb.Min(), pb.Max())
	}
}

func TestParsePrimitive_Invalid(t *testing.T) {
	for _, handle := range []string{"box:1,1", "box:a,b,c", "box:0,1,1", "slabs:0:1,1,1", "slabs:1,1,1", "cone:1,1", "plane:1"} {
		t.Run(handle, func(t *testing.T) {
			if _, err := ParsePrimitive(handle); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSlabMeshAbuts(t *testing.T) {
	m := SlabMesh("s", 3, mgl32.Vec3{1, 1.5, 1})
	for i := 1; i < len(m.SubMeshes); i++ {
		prevTop := subMeshMaxY(m.SubMeshes[i-1])
		bottom := subMeshMinY(m.SubMeshes[i])
		if absf(prevTop-bottom) > 1e-6 {
			t.Errorf("slab %d does not abut: %v vs %v", i, prevTop, bottom)
		}
	}
}

func TestLibrary_CachesLoads(t *testing.T) {
	lib := NewLibrary()

	a, err := lib.LoadGeometry("box:1,1,1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := lib.LoadGeometry("box:1,1,1")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected the cached mesh on second load")
	}
	if lib.Loads() != 1 {
		t.Errorf("expected 1 load, got %d", lib.Loads())
	}
}

func TestLibrary_Errors(t *testing.T) {
	lib := NewLibrary()

	if _, err := lib.LoadGeometry("scene.glb"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := lib.LoadGeometry("notes.txt"); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("expected ErrUnknownAsset, got %v", err)
	}

	empty, err := lib.LoadGeometry("NONE")
	if err != nil {
		t.Fatalf("empty scene: %v", err)
	}
	if len(empty.SubMeshes) != 0 {
		t.Errorf("expected no sub-meshes, got %d", len(empty.SubMeshes))
	}
}

func TestLibrary_Add(t *testing.T) {
	lib := NewLibrary()
	lib.Add("crate", BoxMesh("ignored", mgl32.Vec3{1, 1, 1}))

	m, err := lib.LoadGeometry("crate")
	if err != nil {
		t.Fatal(err)
	}
	if m.Handle != "crate" {
		t.Errorf("expected handle crate, got %s", m.Handle)
	}
}

func TestMeshFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested.yaml")
	data := `name: nested
submeshes:
  - name: base
    box:
      center: [0, -0.5, 0]
      half_extents: [1, 0.5, 1]
  - name: top
    vertices:
      - [-1, 0, -1]
      - [1, 0, -1]
      - [1, 1, 1]
      - [-1, 1, 1]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	lib := NewLibrary()
	m, err := lib.LoadGeometry(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.SubMeshes) != 2 {
		t.Fatalf("expected 2 sub-meshes, got %d", len(m.SubMeshes))
	}
	if m.SubMeshes[0].Name != "base" || len(m.SubMeshes[0].Vertices) != 8 {
		t.Errorf("unexpected base sub-mesh %+v", m.SubMeshes[0])
	}
	b := m.Bounds()
	if b.Min() != (mgl32.Vec3{-1, -1, -1}) || b.Max() != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("bounds = %v..%v", b.Min(), b.Max())
	}

	out := filepath.Join(dir, "copy.yaml")
	if err := SaveMeshFile(out, m); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := LoadMeshFile(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.NumVertices() != m.NumVertices() {
		t.Errorf("vertex count changed: %d vs %d", again.NumVertices(), m.NumVertices())
	}
}

func TestParseMesh_BadIndex(t *testing.T) {
	data := "submeshes:\n  - vertices: [[0,0,0],[1,0,0],[0,1,0]]\n    indices: [0, 1, 5]\n"
	if _, err := ParseMesh("bad", []byte(data)); err == nil {
		t.Error("expected error for out of range index")
	}
}

func TestClone(t *testing.T) {
	m := BoxMesh("b", mgl32.Vec3{1, 1, 1})
	c := m.Clone()
	c.SubMeshes[0].Vertices[0] = mgl32.Vec3{9, 9, 9}
	if m.SubMeshes[0].Vertices[0] == c.SubMeshes[0].Vertices[0] {
		t.Error("clone shares vertex storage")
	}
}

func subMeshMinY(sm SubMesh) float32 {
	y := sm.Vertices[0].Y()
	for _, v := range sm.Vertices {
		y = min(y, v.Y())
	}
	return y
}

func subMeshMaxY(sm SubMesh) float32 {
	y := sm.Vertices[0].Y()
	for _, v := range sm.Vertices {
		y = max(y, v.Y())
	}
	return y
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
