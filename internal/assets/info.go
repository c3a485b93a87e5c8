package assets

import (
	"path/filepath"
	"strings"
)

// Type classifies an asset by its path.
type Type int

const (
	TypeUnknown Type = iota
	// TypeEmpty is the reserved "NONE" scene: valid, but without geometry.
	TypeEmpty
	TypePrimitive
	TypeMeshFile
	TypeGLTF
)

func (t Type) String() string {
	switch t {
	case TypeEmpty:
		return "empty"
	case TypePrimitive:
		return "primitive"
	case TypeMeshFile:
		return "mesh"
	case TypeGLTF:
		return "gltf"
	default:
		return "unknown"
	}
}

const EmptySceneHandle = "NONE"

type AssetInfo struct {
	Type Type
	Path string
}

var primitivePrefixes = []string{"box:", "slabs:", "plane:"}

// FromPath classifies an asset by file path, extension or primitive prefix.
func FromPath(path string) AssetInfo {
	if path == EmptySceneHandle || path == "" {
		return AssetInfo{Type: TypeEmpty, Path: path}
	}
	for _, prefix := range primitivePrefixes {
		if strings.HasPrefix(path, prefix) {
			return AssetInfo{Type: TypePrimitive, Path: path}
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return AssetInfo{Type: TypeMeshFile, Path: path}
	case ".glb", ".gltf":
		return AssetInfo{Type: TypeGLTF, Path: path}
	}
	return AssetInfo{Type: TypeUnknown, Path: path}
}
