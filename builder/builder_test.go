package builder

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o0olele/sctree-go/math32"
	"github.com/o0olele/sctree-go/nodebase"
)

// vertical trunk root -> 1 -> 2 plus a side branch root -> 3
func smallSkeleton() *nodebase.Skeleton {
	s := nodebase.NewSkeleton()
	root := s.Add(nodebase.NewNode(math32.Zero, math32.Up, nodebase.NoParent))
	a := s.Add(nodebase.NewNode(math32.Vec3(0, 1, 0), math32.Up, root))
	s.Add(nodebase.NewNode(math32.Vec3(0, 2, 0), math32.Up, a))
	s.Add(nodebase.NewNode(math32.Vec3(1, 1, 0), math32.Vec3(1, 1, 0).Normalize(), root))
	for i := range s.Nodes {
		s.Nodes[i].IsGrowing = false
		s.PropagateDepth(i)
	}
	return s
}

func ringCenter(md *MeshData, node, k int) math32.Vector3 {
	var c math32.Vector3
	for j := 0; j < k; j++ {
		c = c.Add(md.Vertices[node*k+j])
	}
	return c.Div(float32(k))
}

func TestBuildTopology(t *testing.T) {
	tests := []struct {
		name  string
		k     int
		skel  func() *nodebase.Skeleton
		roots int
	}{
		{"single root", 5, func() *nodebase.Skeleton {
			s := nodebase.NewSkeleton()
			s.Add(nodebase.NewNode(math32.Zero, math32.Up, nodebase.NoParent))
			return s
		}, 1},
		{"branching", 5, smallSkeleton, 1},
		{"triangle rings", 3, smallSkeleton, 1},
		{"two roots", 8, func() *nodebase.Skeleton {
			s := smallSkeleton()
			r := s.Add(nodebase.NewNode(math32.Vec3(4, 0, 0), math32.Up, nodebase.NoParent))
			s.Add(nodebase.NewNode(math32.Vec3(4, 1, 0), math32.Up, r))
			return s
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skel := tt.skel()
			md := NewMeshBuilder(tt.k, 0.2, math32.Zero).Build(skel, 1)
			n := skel.Len()

			assert.Len(t, md.Vertices, n*tt.k)
			assert.Len(t, md.Normals, n*tt.k)
			assert.Len(t, md.Triangles, (n-tt.roots)*6*tt.k)
			for _, idx := range md.Triangles {
				assert.True(t, idx >= 0 && idx < n*tt.k)
			}
			require.NoError(t, md.Validate())
			for i := 0; i < n; i++ {
				assert.Equal(t, i*tt.k, skel.Get(i).VertexStart)
			}
		})
	}
}

func TestBuildWinding(t *testing.T) {
	md := NewMeshBuilder(5, 0.2, math32.Zero).Build(smallSkeleton(), 1)
	// node 1 against the root ring
	assert.Equal(t, []int{5, 0, 6, 6, 0, 1}, md.Triangles[:6])
	// last slice wraps to the first ring vertex
	assert.Equal(t, []int{9, 4, 5, 5, 4, 0}, md.Triangles[24:30])
}

func TestBuildRingGeometry(t *testing.T) {
	skel := smallSkeleton()
	origin := math32.Vec3(10, 0, -3)
	for i := range skel.Nodes {
		skel.Nodes[i].Position = skel.Nodes[i].Position.Add(origin)
	}
	md := NewMeshBuilder(6, 0.2, origin).Build(skel, 1)

	for i, node := range skel.Nodes {
		center := ringCenter(md, i, 6)
		assert.InDelta(t, 0, center.Distance(node.Position.Sub(origin)), 1e-5, "node %d", i)
		for j := 0; j < 6; j++ {
			offset := md.Vertices[i*6+j].Sub(center)
			assert.InDelta(t, node.Radius, offset.Length(), 1e-5)
			assert.InDelta(t, 0, offset.Dot(node.Direction), 1e-5, "ring is perpendicular to the direction")
		}
	}
	assert.InDelta(t, 0.2+math32.Pow(2, 1.1)/500, skel.Get(0).Radius, 1e-6)
}

func TestBuildInterpolatesGrowingNodes(t *testing.T) {
	skel := smallSkeleton()
	skel.Get(2).IsGrowing = true
	mb := NewMeshBuilder(5, 0.2, math32.Zero)

	md := mb.Build(skel, 0.25)
	assert.InDelta(t, 0, ringCenter(md, 2, 5).Distance(math32.Vec3(0, 1.25, 0)), 1e-5)
	assert.InDelta(t, 0, ringCenter(md, 3, 5).Distance(math32.Vec3(1, 1, 0)), 1e-5, "settled nodes ignore t")

	md = mb.Build(skel, 7)
	assert.InDelta(t, 0, ringCenter(md, 2, 5).Distance(math32.Vec3(0, 2, 0)), 1e-5, "t is clamped")

	skel.Get(0).IsGrowing = true
	md = mb.Build(skel, 0)
	assert.InDelta(t, 0, ringCenter(md, 0, 5).Length(), 1e-5, "roots never interpolate")
}

func TestBuildNormalsPointOutward(t *testing.T) {
	skel := smallSkeleton()
	md := NewMeshBuilder(8, 0.2, math32.Zero).Build(skel, 1)
	// nodes 1 and 2 only join straight vertical tubes
	for _, i := range []int{1, 2} {
		center := ringCenter(md, i, 8)
		for j := 0; j < 8; j++ {
			v := i*8 + j
			assert.InDelta(t, 1, md.Normals[v].Length(), 1e-5)
			assert.Greater(t, md.Normals[v].Dot(md.Vertices[v].Sub(center)), float32(0), "vertex %d", v)
		}
	}
}

func TestBuildBounds(t *testing.T) {
	md := NewMeshBuilder(5, 0.2, math32.Zero).Build(smallSkeleton(), 1)
	for _, v := range md.Vertices {
		assert.True(t, md.Bounds.Contains(v))
	}
	assert.Greater(t, md.Bounds.Max.Y, float32(2))
}

func TestBuildBadParentPanics(t *testing.T) {
	skel := &nodebase.Skeleton{Nodes: []nodebase.Node{
		nodebase.NewNode(math32.Zero, math32.Up, 1),
		nodebase.NewNode(math32.Up, math32.Up, nodebase.NoParent),
	}}
	assert.Panics(t, func() { NewMeshBuilder(5, 0.2, math32.Zero).Build(skel, 1) })
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	rng := math32.NewRand(3)
	skel := nodebase.NewSkeleton()
	skel.Add(nodebase.NewNode(math32.Zero, math32.Up, nodebase.NoParent))
	for i := 1; i < parallelThreshold+500; i++ {
		parent := rng.Intn(i)
		dir := math32.RandomUnitVector(rng)
		node := nodebase.NewNode(skel.Get(parent).Position.Add(dir.Mul(0.2)), dir, parent)
		node.IsGrowing = i%3 == 0
		skel.PropagateDepth(skel.Add(node))
	}

	serial := NewMeshBuilder(5, 0.2, math32.Zero)
	serial.SetParallel(false)
	want := serial.Build(skel, 0.5)
	got := NewMeshBuilder(5, 0.2, math32.Zero).Build(skel, 0.5)
	assert.Equal(t, want, got)
}

func TestSaveLoad(t *testing.T) {
	md := NewMeshBuilder(5, 0.2, math32.Zero).Build(smallSkeleton(), 1)
	path := filepath.Join(t.TempDir(), "tree.bin")

	require.NoError(t, Save(md, path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, md, loaded)

	info, err := GetFileInfo(path)
	require.NoError(t, err)
	assert.Equal(t, md.GetVertexCount(), info.VertexCount)
	assert.Equal(t, md.GetTriangleCount(), info.TriangleCount)
}

func TestReadFromRejectsCorruptData(t *testing.T) {
	md := NewMeshBuilder(5, 0.2, math32.Zero).Build(smallSkeleton(), 1)
	buf := bytes.NewBuffer(nil)
	require.NoError(t, WriteTo(buf, md))
	raw := buf.Bytes()

	bad := append([]byte(nil), raw...)
	bad[0] ^= 0xff
	_, err := ReadFrom(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrInvalidMesh)

	_, err = ReadFrom(bytes.NewReader(raw[:len(raw)-3]))
	assert.Error(t, err)

	_, err = Decode(raw)
	assert.Error(t, err, "uncompressed data is not a gzip stream")
}

func TestReadFromRejectsOversizedCounts(t *testing.T) {
	md := NewMeshBuilder(5, 0.2, math32.Zero).Build(smallSkeleton(), 1)
	buf := bytes.NewBuffer(nil)
	require.NoError(t, WriteTo(buf, md))
	raw := buf.Bytes()

	// header, ring size and bounds come before the three counts
	const countsAt = 8 + 4 + 24
	require.Equal(t, uint32(len(md.Vertices)), binary.LittleEndian.Uint32(raw[countsAt:]))

	for i, what := range []string{"vertex", "normal", "index"} {
		bad := append([]byte(nil), raw...)
		binary.LittleEndian.PutUint32(bad[countsAt+4*i:], math.MaxUint32)
		_, err := ReadFrom(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrInvalidMesh, what)
		assert.Contains(t, err.Error(), what+" count", what)
	}
}

func TestDecodeRejectsOversizedStream(t *testing.T) {
	md := NewMeshBuilder(5, 0.2, math32.Zero).Build(smallSkeleton(), 1)
	content, err := Encode(md)
	require.NoError(t, err)

	limit := maxMeshSize
	maxMeshSize = 64
	defer func() { maxMeshSize = limit }()

	_, err = Decode(content)
	assert.ErrorIs(t, err, ErrInvalidMesh)
	_, err = ReadFrom(bytes.NewReader(make([]byte, 65)))
	assert.ErrorIs(t, err, ErrInvalidMesh)
}

func TestWriteToRejectsInvalidMesh(t *testing.T) {
	md := &MeshData{Vertices: make([]math32.Vector3, 3), Triangles: []int{0, 1, 3}}
	assert.ErrorIs(t, WriteTo(bytes.NewBuffer(nil), md), ErrInvalidMesh)
}

func TestWriteOBJ(t *testing.T) {
	md := NewMeshBuilder(5, 0.2, math32.Zero).Build(smallSkeleton(), 1)
	var sb strings.Builder
	require.NoError(t, WriteOBJ(&sb, md))

	counts := map[string]int{}
	var faces []string
	for _, line := range strings.Split(strings.TrimSpace(sb.String()), "\n") {
		kind := strings.Fields(line)[0]
		counts[kind]++
		if kind == "f" {
			faces = append(faces, line)
		}
	}
	assert.Equal(t, 20, counts["v"])
	assert.Equal(t, 20, counts["vn"])
	assert.Equal(t, 3*2*5, counts["f"])
	assert.Equal(t, "f 6//6 1//1 7//7", faces[0])
}
