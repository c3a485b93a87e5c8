package collision

import (
	"errors"
	"fmt"
)

// ErrGeometry is returned, wrapped in a GeometryError, for any mesh that
// cannot be turned into a collision shape.
var ErrGeometry = errors.New("physim: invalid collision geometry")

type GeometryError struct {
	Mesh   string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%v: mesh %q: %s", ErrGeometry, e.Mesh, e.Reason)
}

func (e *GeometryError) Unwrap() error {
	return ErrGeometry
}

func geometryErrorf(mesh, format string, args ...any) error {
	return &GeometryError{Mesh: mesh, Reason: fmt.Sprintf(format, args...)}
}
