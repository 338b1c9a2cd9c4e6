package builder

import (
	"github.com/pkg/errors"

	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/math32"
)

// 文件格式常量
const (
	MESH_FILE_MAGIC   = 0x5343544D // "SCTM"
	MESH_FILE_VERSION = 1
)

// ErrInvalidMesh is returned by Validate and by Load on corrupt files.
var ErrInvalidMesh = errors.New("invalid mesh data")

// FileHeader is the fixed prefix of a saved mesh.
type FileHeader struct {
	Magic   uint32
	Version uint32
}

// MeshData is one rebuilt tube mesh. Vertices are relative to the tree
// origin; Triangles holds three vertex indices per face.
type MeshData struct {
	Vertices  []math32.Vector3 `json:"vertices"`
	Normals   []math32.Vector3 `json:"normals"`
	Triangles []int            `json:"triangles"`
	Bounds    geometry.AABB    `json:"bounds"`

	// RadialSubdivisions is the ring vertex count the mesh was built with.
	RadialSubdivisions int `json:"radial_subdivisions"`
}

// GetVertexCount returns the number of vertices.
func (md *MeshData) GetVertexCount() int {
	return len(md.Vertices)
}

// GetTriangleCount returns the number of faces.
func (md *MeshData) GetTriangleCount() int {
	return len(md.Triangles) / 3
}

// GetDataSize is the uncompressed payload size in bytes.
func (md *MeshData) GetDataSize() int {
	size := 8 + 4 + 4*6 + 4*3 // header, radial subdivisions, bounds, counts
	size += len(md.Vertices) * 12
	size += len(md.Normals) * 12
	size += len(md.Triangles) * 4
	return size
}

// Triangle returns face i as geometry.
func (md *MeshData) Triangle(i int) geometry.Triangle {
	return geometry.Triangle{
		A: md.Vertices[md.Triangles[3*i]],
		B: md.Vertices[md.Triangles[3*i+1]],
		C: md.Vertices[md.Triangles[3*i+2]],
	}
}

// Validate checks index ranges and buffer sizes.
func (md *MeshData) Validate() error {
	if len(md.Triangles)%3 != 0 {
		return errors.Wrapf(ErrInvalidMesh, "triangle index count %d is not a multiple of 3", len(md.Triangles))
	}
	if len(md.Normals) != 0 && len(md.Normals) != len(md.Vertices) {
		return errors.Wrapf(ErrInvalidMesh, "normal count %d does not match vertex count %d", len(md.Normals), len(md.Vertices))
	}
	if md.RadialSubdivisions > 0 && len(md.Vertices)%md.RadialSubdivisions != 0 {
		return errors.Wrapf(ErrInvalidMesh, "vertex count %d is not a whole number of rings of %d",
			len(md.Vertices), md.RadialSubdivisions)
	}
	for i, idx := range md.Triangles {
		if idx < 0 || idx >= len(md.Vertices) {
			return errors.Wrapf(ErrInvalidMesh, "triangle index %d out of range: %d", i, idx)
		}
	}
	return nil
}
