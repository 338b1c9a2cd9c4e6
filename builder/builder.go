package builder

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/math32"
	"github.com/o0olele/sctree-go/nodebase"
)

// parallelThreshold is the node count below which rings are built on the
// calling goroutine.
const parallelThreshold = 2048

// MeshBuilder turns a skeleton into a tube mesh: one vertex ring per node,
// each ring stitched to its parent's.
type MeshBuilder struct {
	radialSubdivisions int
	baseRadius         float32
	origin             math32.Vector3
	useParallel        bool

	// unit ring in the XZ plane, reused across builds
	ring []math32.Vector3
}

// NewMeshBuilder creates a builder emitting k vertices per ring. Vertices
// are stored relative to origin.
func NewMeshBuilder(k int, baseRadius float32, origin math32.Vector3) *MeshBuilder {
	if k < 3 {
		k = 3
	}
	mb := &MeshBuilder{
		radialSubdivisions: k,
		baseRadius:         baseRadius,
		origin:             origin,
		useParallel:        true,
		ring:               make([]math32.Vector3, k),
	}
	for i := range mb.ring {
		alpha := float32(i) * 2 * math32.Pi / float32(k)
		mb.ring[i] = math32.Vec3(math32.Cos(alpha), 0, math32.Sin(alpha))
	}
	return mb
}

// SetParallel 设置是否并行生成顶点环
func (mb *MeshBuilder) SetParallel(parallel bool) {
	mb.useParallel = parallel
}

// RadialSubdivisions returns the ring vertex count.
func (mb *MeshBuilder) RadialSubdivisions() int {
	return mb.radialSubdivisions
}

// Build rebuilds the mesh for skel. t in [0,1] places the ring of every
// growing node between its parent and its final position. Build updates
// each node's Radius and VertexStart.
func (mb *MeshBuilder) Build(skel *nodebase.Skeleton, t float32) *MeshData {
	t = math32.Clamp(t, 0, 1)
	k := mb.radialSubdivisions
	n := skel.Len()

	md := &MeshData{
		Vertices:           make([]math32.Vector3, n*k),
		Normals:            make([]math32.Vector3, n*k),
		Triangles:          make([]int, 0, (n-skel.Roots())*6*k),
		RadialSubdivisions: k,
	}

	for i := 0; i < n; i++ {
		node := skel.Get(i)
		if node.HasParent() && (node.Parent < 0 || node.Parent >= i) {
			panic(fmt.Sprintf("builder: node %d has parent %d that is not an earlier node", i, node.Parent))
		}
	}

	if mb.useParallel && n >= parallelThreshold {
		workers := runtime.NumCPU()
		chunk := (n + workers - 1) / workers
		var wg sync.WaitGroup
		for lo := 0; lo < n; lo += chunk {
			hi := math32.Min(lo+chunk, n)
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				mb.buildRings(skel, md, t, lo, hi)
			}(lo, hi)
		}
		wg.Wait()
	} else {
		mb.buildRings(skel, md, t, 0, n)
	}

	for i := 0; i < n; i++ {
		node := skel.Get(i)
		if !node.HasParent() {
			continue
		}
		cur, par := node.VertexStart, skel.Get(node.Parent).VertexStart
		for j := 0; j < k; j++ {
			next := (j + 1) % k
			md.Triangles = append(md.Triangles,
				cur+j, par+j, cur+next,
				cur+next, par+j, par+next,
			)
		}
	}

	mb.computeNormals(md)
	md.Bounds = geometry.AABBFromPoints(md.Vertices)
	return md
}

func (mb *MeshBuilder) buildRings(skel *nodebase.Skeleton, md *MeshData, t float32, lo, hi int) {
	k := mb.radialSubdivisions
	for i := lo; i < hi; i++ {
		node := skel.Get(i)
		node.VertexStart = i * k
		node.UpdateRadius(mb.baseRadius)

		center := node.Position
		if node.HasParent() && node.IsGrowing {
			center = skel.Get(node.Parent).Position.Lerp(node.Position, t)
		}
		center = center.Sub(mb.origin)

		rot := math32.FromToRotation(math32.Up, node.Direction)
		for j, unit := range mb.ring {
			offset := rot.Rotate(unit)
			md.Vertices[node.VertexStart+j] = center.Add(offset.Mul(node.Radius))
			// outward fallback for vertices whose faces all collapsed
			md.Normals[node.VertexStart+j] = offset
		}
	}
}

// computeNormals smooths area-weighted face normals onto the vertices. The
// ring stitching winds faces clockwise seen from outside, so face normals are
// flipped to point away from the branch axis.
func (mb *MeshBuilder) computeNormals(md *MeshData) {
	acc := make([]math32.Vector3, len(md.Vertices))
	for f := 0; f < md.GetTriangleCount(); f++ {
		w := md.Triangle(f).WeightedNormal().Mul(-1)
		for _, idx := range md.Triangles[3*f : 3*f+3] {
			acc[idx] = acc[idx].Add(w)
		}
	}
	for i, v := range acc {
		if nv, ok := v.TryNormalize(); ok {
			md.Normals[i] = nv
		}
	}
}
