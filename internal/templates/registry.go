// Package templates stores reusable object attribute templates keyed by
// handle. The registry holds the canonical mutable copy; objects are
// instantiated from a value snapshot so later edits never reach them.
package templates

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/physim/internal/assets"
)

var ErrUnknownTemplate = errors.New("physim: unknown object template")

// Attributes describe how to instantiate a simulated object.
type Attributes struct {
	Handle string `yaml:"handle" json:"handle"`
	// RenderAsset is the visual mesh handle.
	RenderAsset string `yaml:"render_asset" json:"render_asset"`
	// CollisionAsset defaults to RenderAsset when empty.
	CollisionAsset string `yaml:"collision_asset" json:"collision_asset,omitempty"`

	Margin                     float32 `yaml:"margin" json:"margin"`
	JoinCollisionMeshes        bool    `yaml:"join_collision_meshes" json:"join_collision_meshes"`
	UseBoundingBoxForCollision bool    `yaml:"use_bounding_box_for_collision" json:"use_bounding_box_for_collision"`

	Mass          float32    `yaml:"mass" json:"mass"`
	Inertia       mgl32.Vec3 `yaml:"inertia,flow" json:"inertia"`
	Friction      float32    `yaml:"friction" json:"friction"`
	Restitution   float32    `yaml:"restitution" json:"restitution"`
	LinearDamping float32    `yaml:"linear_damping" json:"linear_damping"`
	Scale         mgl32.Vec3 `yaml:"scale,flow" json:"scale"`
}

func DefaultAttributes(handle string, margin float32) Attributes {
	return Attributes{
		Handle:      handle,
		RenderAsset: handle,
		Margin:      margin,
		Mass:        1,
		Inertia:     mgl32.Vec3{1, 1, 1},
		Friction:    0.5,
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// CollisionMesh returns the asset used to build the collision shape.
func (a Attributes) CollisionMesh() string {
	if a.CollisionAsset != "" {
		return a.CollisionAsset
	}
	return a.RenderAsset
}

type Registry struct {
	mu            sync.RWMutex
	templates     map[string]*Attributes
	defaultMargin float32
}

// NewRegistry creates an empty registry. Templates created by LoadFromPath
// start with defaultMargin.
func NewRegistry(defaultMargin float32) *Registry {
	return &Registry{
		templates:     make(map[string]*Attributes),
		defaultMargin: defaultMargin,
	}
}

// Register stores attrs under handle, replacing any earlier template.
func (r *Registry) Register(handle string, attrs Attributes) {
	attrs.Handle = handle
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[handle] = &attrs
}

// Get returns the registry's own copy. Edits affect later instantiations
// only; they are not synchronized with concurrent readers.
func (r *Registry) Get(handle string) (*Attributes, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.templates[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, handle)
	}
	return a, nil
}

// Snapshot returns a value copy of the template.
func (r *Registry) Snapshot(handle string) (Attributes, error) {
	a, err := r.Get(handle)
	if err != nil {
		return Attributes{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *a, nil
}

func (r *Registry) Has(handle string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[handle]
	return ok
}

func (r *Registry) Remove(handle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[handle]; !ok {
		return false
	}
	delete(r.templates, handle)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}

// Handles lists registered handles in sorted order.
func (r *Registry) Handles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFromPath registers a default template for an asset path the first
// time it is seen and returns the registered template on later calls.
func (r *Registry) LoadFromPath(path string) (*Attributes, error) {
	info := assets.FromPath(path)
	switch info.Type {
	case assets.TypeUnknown:
		return nil, fmt.Errorf("%w: %s", assets.ErrUnknownAsset, path)
	case assets.TypeEmpty:
		return nil, fmt.Errorf("template %q: the empty scene has no geometry", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.templates[path]; ok {
		return a, nil
	}
	a := DefaultAttributes(path, r.defaultMargin)
	r.templates[path] = &a
	return &a, nil
}
