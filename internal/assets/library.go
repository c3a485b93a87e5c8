package assets

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownAsset      = errors.New("assets: unknown asset")
	ErrUnsupportedFormat = errors.New("assets: unsupported asset format")
)

// Provider resolves a handle to geometry usable for collision shape construction.
type Provider interface {
	LoadGeometry(handle string) (*MeshDescription, error)
}

// Library is a Provider that parses each asset once and serves later
// lookups from memory. Meshes handed out are shared and must be treated
// as read-only.
type Library struct {
	mu     sync.RWMutex
	meshes map[string]*MeshDescription
	loads  int
}

func NewLibrary() *Library {
	return &Library{meshes: make(map[string]*MeshDescription)}
}

// Add registers mesh under handle, replacing any earlier entry.
func (l *Library) Add(handle string, mesh *MeshDescription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	mesh.Handle = handle
	l.meshes[handle] = mesh
}

func (l *Library) Has(handle string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.meshes[handle]
	return ok
}

// Loads reports how many times an asset was parsed rather than served from memory.
func (l *Library) Loads() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loads
}

func (l *Library) LoadGeometry(handle string) (*MeshDescription, error) {
	l.mu.RLock()
	mesh, ok := l.meshes[handle]
	l.mu.RUnlock()
	if ok {
		return mesh, nil
	}

	mesh, err := load(FromPath(handle))
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.meshes[handle]; ok {
		return existing, nil
	}
	l.meshes[handle] = mesh
	l.loads++
	return mesh, nil
}

func load(info AssetInfo) (*MeshDescription, error) {
	switch info.Type {
	case TypeEmpty:
		return &MeshDescription{Handle: info.Path}, nil
	case TypePrimitive:
		return ParsePrimitive(info.Path)
	case TypeMeshFile:
		return LoadMeshFile(info.Path)
	case TypeGLTF:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, info.Path, info.Type)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, info.Path)
}
