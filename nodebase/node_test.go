package nodebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o0olele/sctree-go/math32"
)

func TestGrowthDirectionWithoutAttractors(t *testing.T) {
	dir := math32.Vec3(0.1234567, 0.9876543, -0.0001)
	n := NewNode(math32.Vec3(1, 2, 3), dir, NoParent)
	rng := math32.NewRand(1)
	fresh := math32.NewRand(1)

	got, err := n.GrowthDirection(rng, DefaultJitter)
	require.NoError(t, err)
	assert.Equal(t, dir, got, "returned bit for bit")
	assert.Equal(t, fresh.Uint64(), rng.Uint64(), "no randomness consumed")
}

func TestGrowthDirectionNormalized(t *testing.T) {
	rng := math32.NewRand(9)
	for i := 0; i < 200; i++ {
		n := NewNode(math32.RandomUnitVector(rng).Mul(3), math32.Up, NoParent)
		for k := 0; k <= i%5; k++ {
			n.Attractors = append(n.Attractors, math32.RandomUnitVector(rng).Mul(math32.Range(rng, 0.1, 0.8)).Add(n.Position))
		}
		dir, err := n.GrowthDirection(rng, DefaultJitter)
		require.NoError(t, err)
		assert.InDelta(t, 1, dir.Length(), 1e-5)
	}
}

func TestGrowthDirectionPointsAtAttractor(t *testing.T) {
	n := NewNode(math32.Zero, math32.Up, NoParent)
	n.Attractors = []math32.Vector3{{X: 0.6}}
	dir, err := n.GrowthDirection(math32.NewRand(4), DefaultJitter)
	require.NoError(t, err)
	assert.Greater(t, dir.X, float32(0.9))
}

func TestGrowthDirectionDegenerate(t *testing.T) {
	prev := math32.Vec3(0, 0, 1)
	n := NewNode(math32.Zero, prev, NoParent)
	n.Attractors = []math32.Vector3{{X: 0.5}, {X: -0.5}}

	dir, err := n.GrowthDirection(math32.NewRand(1), 0)
	assert.ErrorIs(t, err, ErrDegenerateDirection)
	assert.Equal(t, prev, dir)
}

func TestUpdateRadius(t *testing.T) {
	n := NewNode(math32.Zero, math32.Up, NoParent)
	n.UpdateRadius(0.2)
	assert.Equal(t, float32(0.2), n.Radius)

	n.Depth = 100
	n.UpdateRadius(0.2)
	assert.InDelta(t, 0.2+math32.Pow(100, 1.1)/500, n.Radius, 1e-6)
	assert.Greater(t, n.Radius, float32(0.4))
}

func chain(s *Skeleton, from, length int) int {
	last := from
	for i := 0; i < length; i++ {
		last = s.Add(NewNode(math32.Zero, math32.Up, last))
		s.PropagateDepth(last)
	}
	return last
}

func TestPropagateDepth(t *testing.T) {
	s := NewSkeleton()
	root := s.Add(NewNode(math32.Zero, math32.Up, NoParent))
	tip := chain(s, root, 4)

	assert.Equal(t, 4, s.Get(root).Depth)
	assert.Equal(t, 0, s.Get(tip).Depth)
	assert.Equal(t, 1, s.Get(tip-1).Depth)

	// a short side branch off node 1 leaves the deeper ancestors alone
	side := chain(s, 1, 2)
	assert.Equal(t, 3, s.Get(1).Depth)
	assert.Equal(t, 4, s.Get(root).Depth)
	assert.Equal(t, 0, s.Get(side).Depth)

	// a long side branch deepens everything above it
	chain(s, 1, 6)
	assert.Equal(t, 6, s.Get(1).Depth)
	assert.Equal(t, 7, s.Get(root).Depth)
}

func TestSkeleton(t *testing.T) {
	s := NewSkeleton()
	root := s.Add(NewNode(math32.Zero, math32.Up, NoParent))
	s.Get(root).IsTrunk = true
	tip := chain(s, root, 3)
	s.Add(NewNode(math32.Vec3(5, 0, 0), math32.Up, NoParent))

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 2, s.Roots())
	idx, count := s.Trunk()
	assert.Equal(t, root, idx)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, s.TrunkCount())
	assert.Equal(t, []int{3, 2, 1, 0}, s.PathToRoot(tip))

	s.Get(tip).Attractors = append(s.Get(tip).Attractors, math32.Up)
	s.ClearAttractors()
	assert.Empty(t, s.Get(tip).Attractors)

	assert.Panics(t, func() { s.Add(NewNode(math32.Zero, math32.Up, 99)) })
}
