package octree

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/math32"
)

func randomPoints(seed uint64, n int, extent float32) []math32.Vector3 {
	rng := math32.NewRand(seed)
	pts := make([]math32.Vector3, n)
	for i := range pts {
		pts[i] = math32.Vec3(
			math32.Range(rng, -extent, extent),
			math32.Range(rng, -extent, extent),
			math32.Range(rng, -extent, extent),
		)
	}
	return pts
}

func bruteForce(pts []math32.Vector3, r geometry.BoundingBox) []int {
	var ids []int
	for i, p := range pts {
		if r.Contains(p) {
			ids = append(ids, i)
		}
	}
	return ids
}

func sorted(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}

func TestInsertOutOfBounds(t *testing.T) {
	tree := NewOctree(geometry.NewCube(math32.Zero, 1), 4, 0)
	assert.False(t, tree.Insert(0, math32.Vec3(2, 0, 0)))
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 1, tree.NodeCount())
	assert.True(t, tree.Insert(1, math32.Vec3(1, 1, 1)), "boundary is inclusive")
}

func TestDefaults(t *testing.T) {
	tree := NewOctree(geometry.NewCube(math32.Zero, 1), 0, 0)
	assert.Equal(t, DefaultCapacity, tree.capacity)
	assert.Equal(t, uint8(DefaultMaxDepth), tree.maxDepth)
}

func TestSubdivisionCompleteness(t *testing.T) {
	boundary := geometry.NewCube(math32.Zero, 4)
	tree := NewOctree(boundary, 4, 0)
	pts := []math32.Vector3{
		{X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: 1},
		{X: 1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: -1},
	}
	for i, p := range pts[:4] {
		require.True(t, tree.Insert(i, p))
	}
	require.True(t, tree.nodes[0].IsLeaf())
	assert.Len(t, tree.nodes[0].Items, 4)

	require.True(t, tree.Insert(4, pts[4]))
	root := tree.nodes[0]
	assert.False(t, root.IsLeaf())
	assert.Empty(t, root.Items, "points are redistributed on split")
	assert.Equal(t, 9, tree.NodeCount())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, sorted(tree.Query(boundary)))
}

func TestQuerySoundness(t *testing.T) {
	pts := randomPoints(11, 600, 10)
	tree := NewOctree(geometry.NewCube(math32.Zero, 10), 4, 0)
	for i, p := range pts {
		require.True(t, tree.Insert(i, p))
	}

	rng := math32.NewRand(12)
	for q := 0; q < 200; q++ {
		r := geometry.NewBoundingBox(
			math32.Vec3(math32.Range(rng, -10, 10), math32.Range(rng, -10, 10), math32.Range(rng, -10, 10)),
			math32.Vec3(math32.Range(rng, 0, 4), math32.Range(rng, 0, 4), math32.Range(rng, 0, 4)),
		)
		require.Equal(t, bruteForce(pts, r), sorted(tree.Query(r)), "query %d", q)
	}
}

func TestQueryOrderIndependent(t *testing.T) {
	pts := randomPoints(5, 300, 3)
	r := geometry.NewBoundingBox(math32.Vec3(0.5, -0.5, 0), math32.Vec3(1.5, 2, 1))

	forward := NewOctree(geometry.NewCube(math32.Zero, 3), 4, 0)
	for i, p := range pts {
		forward.Insert(i, p)
	}
	backward := NewOctree(geometry.NewCube(math32.Zero, 3), 4, 0)
	for i := len(pts) - 1; i >= 0; i-- {
		backward.Insert(i, pts[i])
	}

	assert.Equal(t, sorted(forward.Query(r)), sorted(backward.Query(r)))
	assert.Equal(t, bruteForce(pts, r), sorted(forward.Query(r)))
}

func TestQueryPointOnSharedFace(t *testing.T) {
	tree := NewOctree(geometry.NewCube(math32.Zero, 2), 1, 0)
	tree.Insert(0, math32.Vec3(0, 0.5, 0.5))
	tree.Insert(1, math32.Vec3(-1, -1, -1))

	// the range only touches the (+,+,+) octant on its x=0 face, where the
	// first point lies
	r := geometry.NewBoundingBox(math32.Vec3(-0.5, 0.5, 0.5), math32.Vec3(0.5, 0.25, 0.25))
	require.False(t, tree.nodes[tree.nodes[0].Children[7]].Bounds.Intersects(r))
	assert.Equal(t, []int{0}, tree.Query(r))
}

func TestQueryFindsPointsOnSplitPlanes(t *testing.T) {
	rng := math32.NewRand(31)
	for trial := 0; trial < 50; trial++ {
		center := math32.Vec3(math32.Range(rng, -3, 3), math32.Range(rng, -3, 3), math32.Range(rng, -3, 3))
		half := math32.Range(rng, 0.5, 7)
		tree := NewOctree(geometry.NewCube(center, half), 2, 0)

		var pts []math32.Vector3
		for _, p := range randomPoints(uint64(trial), 40, half*0.9) {
			p = p.Add(center)
			require.True(t, tree.Insert(len(pts), p))
			pts = append(pts, p)
		}

		// put points exactly on the planes every internal node split at
		var planes []math32.Vector3
		for i := range tree.nodes {
			if !tree.nodes[i].IsLeaf() {
				planes = append(planes, tree.nodes[i].Bounds.Center)
			}
		}
		require.NotEmpty(t, planes)
		for i, c := range planes {
			other := pts[i%len(pts)]
			for _, p := range []math32.Vector3{
				c,
				math32.Vec3(c.X, other.Y, other.Z),
				math32.Vec3(other.X, c.Y, other.Z),
				math32.Vec3(other.X, other.Y, c.Z),
			} {
				require.True(t, tree.Insert(len(pts), p))
				pts = append(pts, p)
			}
		}

		for id, p := range pts {
			require.Contains(t, tree.Query(geometry.NewCube(p, 0)), id, "trial %d point %v", trial, p)
			nearest, _, ok := tree.Nearest(p, 0)
			require.True(t, ok, "trial %d point %v", trial, p)
			assert.Equal(t, p, pts[nearest])
		}
	}
}

func TestCoincidentPointsBounded(t *testing.T) {
	tree := NewOctree(geometry.NewCube(math32.Zero, 1), 2, 6)
	p := math32.Vec3(0.3, 0.3, 0.3)
	for i := 0; i < 50; i++ {
		require.True(t, tree.Insert(i, p))
	}
	assert.Equal(t, uint8(6), tree.Depth())
	assert.Len(t, tree.Query(geometry.NewCube(p, 0.01)), 50)
}

func TestNearest(t *testing.T) {
	tree := NewOctree(geometry.NewCube(math32.Zero, 5), 2, 0)
	tree.Insert(10, math32.Vec3(0, 0, 0))
	tree.Insert(11, math32.Vec3(0.5, 0, 0))
	tree.Insert(12, math32.Vec3(0, 0.3, 0))
	tree.Insert(13, math32.Vec3(3, 3, 3))

	id, dist, ok := tree.Nearest(math32.Vec3(0, 0.4, 0), 0.8)
	require.True(t, ok)
	assert.Equal(t, 12, id)
	assert.InDelta(t, 0.1, dist, 1e-5)

	_, _, ok = tree.Nearest(math32.Vec3(-4, -4, -4), 0.8)
	assert.False(t, ok)

	// inclusive at the limit
	id, _, ok = tree.Nearest(math32.Vec3(4, 3, 3), 1)
	require.True(t, ok)
	assert.Equal(t, 13, id)
}

func TestNearestMatchesBruteForce(t *testing.T) {
	pts := randomPoints(21, 400, 5)
	tree := NewOctree(geometry.NewCube(math32.Zero, 5), 4, 0)
	for i, p := range pts {
		tree.Insert(i, p)
	}
	for _, q := range randomPoints(22, 100, 5) {
		want, wantOK := -1, false
		var best float32
		for i, p := range pts {
			d := q.Distance(p)
			if d <= 0.8 && (!wantOK || d < best) {
				want, best, wantOK = i, d, true
			}
		}
		got, _, ok := tree.Nearest(q, 0.8)
		require.Equal(t, wantOK, ok)
		if ok {
			assert.InDelta(t, best, q.Distance(pts[got]), 1e-6)
			assert.Equal(t, want, got)
		}
	}
}

func TestAnyWithinIsStrict(t *testing.T) {
	tree := NewOctree(geometry.NewCube(math32.Zero, 5), 4, 0)
	tree.Insert(0, math32.Vec3(0.4, 0, 0))

	assert.False(t, tree.AnyWithin(math32.Zero, 0.4))
	assert.True(t, tree.AnyWithin(math32.Zero, 0.41))
}

func TestToJSON(t *testing.T) {
	tree := NewOctree(geometry.NewCube(math32.Zero, 2), 1, 0)
	tree.Insert(0, math32.Vec3(1, 1, 1))
	tree.Insert(1, math32.Vec3(-1, -1, -1))

	data, err := tree.ToJSON()
	require.NoError(t, err)

	var export OctreeExport
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, 2, export.Points)
	assert.False(t, export.Root.IsLeaf)
	require.Len(t, export.Root.Children, 8)
	assert.Equal(t, 1, export.Root.Children[0].Points[0].ID)
	assert.Equal(t, 0, export.Root.Children[7].Points[0].ID)
}
