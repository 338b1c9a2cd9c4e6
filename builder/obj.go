package builder

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// WriteOBJ writes md as a Wavefront OBJ with per-vertex normals. OBJ indices
// are one-based.
func WriteOBJ(w io.Writer, md *MeshData) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# sctree mesh: %d vertices, %d triangles\n", md.GetVertexCount(), md.GetTriangleCount())
	for _, v := range md.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	hasNormals := len(md.Normals) == len(md.Vertices)
	if hasNormals {
		for _, n := range md.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
		}
	}
	for f := 0; f < md.GetTriangleCount(); f++ {
		a, b, c := md.Triangles[3*f]+1, md.Triangles[3*f+1]+1, md.Triangles[3*f+2]+1
		if hasNormals {
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		} else {
			fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
		}
	}
	return errors.Wrap(bw.Flush(), "failed to write obj")
}

// SaveOBJ writes md to filename as OBJ.
func SaveOBJ(md *MeshData, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create obj file")
	}
	if err := WriteOBJ(f, md); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to close obj file")
}
