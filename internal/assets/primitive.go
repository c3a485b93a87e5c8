package assets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ParsePrimitive builds the mesh named by a primitive handle:
//
//	box:HX,HY,HZ           one box with the given half extents
//	slabs:N:HX,HY,HZ       the same box split into N abutting slabs along Y
//	plane:HX,HZ            a flat ground quad on y=0
func ParsePrimitive(handle string) (*MeshDescription, error) {
	kind, args, ok := strings.Cut(handle, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a primitive", ErrUnknownAsset, handle)
	}

	switch kind {
	case "box":
		he, err := parseFloats(args, 3)
		if err != nil {
			return nil, fmt.Errorf("primitive %q: %w", handle, err)
		}
		return BoxMesh(handle, mgl32.Vec3{he[0], he[1], he[2]}), nil
	case "slabs":
		countStr, rest, ok := strings.Cut(args, ":")
		if !ok {
			return nil, fmt.Errorf("primitive %q: expected slabs:N:HX,HY,HZ", handle)
		}
		n, err := strconv.Atoi(countStr)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("primitive %q: invalid slab count %q", handle, countStr)
		}
		he, err := parseFloats(rest, 3)
		if err != nil {
			return nil, fmt.Errorf("primitive %q: %w", handle, err)
		}
		return SlabMesh(handle, n, mgl32.Vec3{he[0], he[1], he[2]}), nil
	case "plane":
		he, err := parseFloats(args, 2)
		if err != nil {
			return nil, fmt.Errorf("primitive %q: %w", handle, err)
		}
		return PlaneMesh(handle, he[0], he[1]), nil
	}
	return nil, fmt.Errorf("%w: unknown primitive %q", ErrUnknownAsset, kind)
}

func parseFloats(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(parts))
	}
	out := make([]float32, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("value %d must be positive, got %v", i, v)
		}
		out[i] = float32(v)
	}
	return out, nil
}
