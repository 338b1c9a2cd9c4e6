package builder

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/math32"
)

var useGzip = true

// maxMeshSize caps the decoded size of a mesh stream.
var maxMeshSize int64 = 1 << 30

// UseGzip toggles compression for Save and Load.
func UseGzip(use bool) {
	useGzip = use
}

// Load reads a mesh written by Save.
func Load(filename string) (*MeshData, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return Decode(content)
}

// Decode parses a saved mesh from memory.
func Decode(content []byte) (*MeshData, error) {
	if useGzip {
		var err error
		if content, err = Decompress(content); err != nil {
			return nil, err
		}
	}
	return parse(bytes.NewReader(content))
}

// ReadFrom parses an uncompressed mesh stream. Streams larger than the
// decode limit are rejected.
func ReadFrom(r io.Reader) (*MeshData, error) {
	content, err := readLimited(r)
	if err != nil {
		return nil, err
	}
	return parse(bytes.NewReader(content))
}

func readLimited(r io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, maxMeshSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mesh")
	}
	if int64(len(content)) > maxMeshSize {
		return nil, errors.Wrapf(ErrInvalidMesh, "mesh exceeds %d bytes", maxMeshSize)
	}
	return content, nil
}

// checkCount rejects a count whose payload is longer than what is left.
func checkCount(r *bytes.Reader, what string, count uint32, size int) error {
	if int64(count)*int64(size) > int64(r.Len()) {
		return errors.Wrapf(ErrInvalidMesh, "%s count %d exceeds remaining %d bytes", what, count, r.Len())
	}
	return nil
}

func parse(r *bytes.Reader) (*MeshData, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	if header.Magic != MESH_FILE_MAGIC {
		return nil, errors.Wrap(ErrInvalidMesh, "magic number mismatch")
	}
	if header.Version != MESH_FILE_VERSION {
		return nil, errors.Wrapf(ErrInvalidMesh, "unsupported file version: %d", header.Version)
	}

	md := &MeshData{}
	var k uint32
	if err := binary.Read(r, binary.LittleEndian, &k); err != nil {
		return nil, errors.Wrap(err, "failed to read radial subdivisions")
	}
	md.RadialSubdivisions = int(k)

	if err := binary.Read(r, binary.LittleEndian, &md.Bounds); err != nil {
		return nil, errors.Wrap(err, "failed to read bounds")
	}

	var vertexCount, normalCount, indexCount uint32
	for _, c := range []*uint32{&vertexCount, &normalCount, &indexCount} {
		if err := binary.Read(r, binary.LittleEndian, c); err != nil {
			return nil, errors.Wrap(err, "failed to read counts")
		}
	}

	if err := checkCount(r, "vertex", vertexCount, 12); err != nil {
		return nil, err
	}
	md.Vertices = make([]math32.Vector3, vertexCount)
	if err := binary.Read(r, binary.LittleEndian, md.Vertices); err != nil {
		return nil, errors.Wrap(err, "failed to read vertices")
	}
	if err := checkCount(r, "normal", normalCount, 12); err != nil {
		return nil, err
	}
	md.Normals = make([]math32.Vector3, normalCount)
	if err := binary.Read(r, binary.LittleEndian, md.Normals); err != nil {
		return nil, errors.Wrap(err, "failed to read normals")
	}

	if err := checkCount(r, "index", indexCount, 4); err != nil {
		return nil, err
	}
	indices := make([]uint32, indexCount)
	if err := binary.Read(r, binary.LittleEndian, indices); err != nil {
		return nil, errors.Wrap(err, "failed to read triangles")
	}
	md.Triangles = make([]int, indexCount)
	for i, idx := range indices {
		md.Triangles[i] = int(idx)
	}

	if err := md.Validate(); err != nil {
		return nil, err
	}
	return md, nil
}

// Save writes md to filename, gzip-compressed unless disabled with UseGzip.
func Save(md *MeshData, filename string) error {
	content, err := Encode(md)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return errors.Wrap(err, "failed to write file")
	}
	return nil
}

// Encode serializes md the way Save stores it.
func Encode(md *MeshData) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := WriteTo(buf, md); err != nil {
		return nil, err
	}
	content := buf.Bytes()
	if useGzip {
		return Compress(content)
	}
	return content, nil
}

// WriteTo writes the uncompressed mesh stream.
func WriteTo(w io.Writer, md *MeshData) error {
	if err := md.Validate(); err != nil {
		return err
	}

	header := FileHeader{
		Magic:   MESH_FILE_MAGIC,
		Version: MESH_FILE_VERSION,
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(md.RadialSubdivisions)); err != nil {
		return errors.Wrap(err, "failed to write radial subdivisions")
	}
	if err := binary.Write(w, binary.LittleEndian, md.Bounds); err != nil {
		return errors.Wrap(err, "failed to write bounds")
	}

	counts := []uint32{uint32(len(md.Vertices)), uint32(len(md.Normals)), uint32(len(md.Triangles))}
	if err := binary.Write(w, binary.LittleEndian, counts); err != nil {
		return errors.Wrap(err, "failed to write counts")
	}
	if err := binary.Write(w, binary.LittleEndian, md.Vertices); err != nil {
		return errors.Wrap(err, "failed to write vertices")
	}
	if err := binary.Write(w, binary.LittleEndian, md.Normals); err != nil {
		return errors.Wrap(err, "failed to write normals")
	}

	indices := make([]uint32, len(md.Triangles))
	for i, idx := range md.Triangles {
		indices[i] = uint32(idx)
	}
	if err := binary.Write(w, binary.LittleEndian, indices); err != nil {
		return errors.Wrap(err, "failed to write triangles")
	}
	return nil
}

// Decompress gunzips content, refusing output past the decode limit.
func Decompress(content []byte) ([]byte, error) {
	gzipReader, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open gzip stream")
	}
	defer gzipReader.Close()

	decompressed, err := readLimited(gzipReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress")
	}
	return decompressed, nil
}

// Compress gzips content.
func Compress(content []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	gzipWriter := gzip.NewWriter(buf)
	if _, err := gzipWriter.Write(content); err != nil {
		return nil, errors.Wrap(err, "failed to compress")
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to compress")
	}
	return buf.Bytes(), nil
}

// MeshFileInfo summarizes a saved mesh.
type MeshFileInfo struct {
	Filename      string        `json:"filename"`
	FileSize      int64         `json:"file_size"`
	Version       uint32        `json:"version"`
	Bounds        geometry.AABB `json:"bounds"`
	VertexCount   int           `json:"vertex_count"`
	TriangleCount int           `json:"triangle_count"`
	DataSize      int           `json:"data_size"`
	ModTime       time.Time     `json:"mod_time"`
}

// GetFileInfo loads filename and reports its header and sizes.
func GetFileInfo(filename string) (*MeshFileInfo, error) {
	stat, err := os.Stat(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get file info")
	}
	md, err := Load(filename)
	if err != nil {
		return nil, err
	}
	return &MeshFileInfo{
		Filename:      filename,
		FileSize:      stat.Size(),
		Version:       MESH_FILE_VERSION,
		Bounds:        md.Bounds,
		VertexCount:   md.GetVertexCount(),
		TriangleCount: md.GetTriangleCount(),
		DataSize:      md.GetDataSize(),
		ModTime:       stat.ModTime(),
	}, nil
}
