package growth

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/o0olele/sctree-go/builder"
	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/math32"
	"github.com/o0olele/sctree-go/nodebase"
	"github.com/o0olele/sctree-go/octree"
)

// ErrInvalidTick is returned for negative or NaN time steps.
var ErrInvalidTick = errors.New("invalid tick duration")

// Grower runs the space colonization loop: every cycle binds attractors to
// their nearest node, grows one child per attracted node plus the trunk tip,
// then drops attractors that a node has reached. It is not safe for
// concurrent use.
type Grower struct {
	params Params
	log    *logrus.Entry
	rng    *rand.Rand

	// initial is the generated set, indexed by attractor ID.
	initial    []Attractor
	attractors []Attractor
	live       math32.Bitmap
	active     []int

	// attractorTree indexes initial and is never modified after New.
	attractorTree *octree.Octree
	nodeTree      *octree.Octree
	skel          *nodebase.Skeleton
	pending       []nodebase.Node

	region geometry.BoundingBox
	mesher *builder.MeshBuilder
	mesh   *builder.MeshData

	accumulator float64
	cycles      int
	state       State
	degenerate  int
	outside     int
	pruned      int
	discarded   int
}

// New validates params, scatters the attractors and plants the root below
// the crown.
func New(params Params, opts ...Option) (*Grower, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	g := &Grower{
		params: params,
		skel:   nodebase.NewSkeleton(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logrus.StandardLogger().WithField("component", "growth")
	}
	if g.rng == nil {
		g.rng = math32.NewRand(params.Seed)
	}

	crown := geometry.NewCube(params.Origin, params.CrownRadius+params.AttractionRadius)
	g.initial = GenerateAttractors(g.rng, params.AttractorCount, params.Origin, params.CrownRadius, params.Distribution)
	g.attractors = append([]Attractor(nil), g.initial...)
	g.live = math32.NewBitmap(len(g.initial))
	g.attractorTree = octree.NewOctree(crown, params.OctreeCapacity, params.OctreeMaxDepth)
	for _, a := range g.initial {
		g.live.Set(uint32(a.ID))
		if !g.attractorTree.Insert(a.ID, a.Position) {
			g.log.WithField("position", a.Position).Warn("attractor outside the crown bounds")
		}
	}

	reach := 2 * (params.CrownRadius + params.TrunkStartOffset + params.AttractionRadius)
	g.nodeTree = octree.NewOctree(geometry.NewCube(params.Origin, reach), params.OctreeCapacity, params.OctreeMaxDepth)

	g.region = crown
	if params.Region != nil {
		g.region = params.Region.Box()
	}

	root := nodebase.NewNode(params.RootPosition(), math32.Up, nodebase.NoParent)
	root.IsTrunk = true
	g.addNode(root)

	g.mesher = builder.NewMeshBuilder(params.RadialSubdivisions, params.BaseBranchRadius, params.Origin)
	g.rebuild()

	g.log.WithFields(logrus.Fields{
		"attractors":   len(g.initial),
		"distribution": params.Distribution,
		"seed":         params.Seed,
		"root":         params.RootPosition(),
	}).Info("grower initialized")
	return g, nil
}

// Tick advances simulated time by dt seconds. A growth cycle runs whenever
// the accumulated time reaches the growth interval; the mesh is rebuilt on
// every call so the newest segments can be drawn part-way grown. Once the
// grower is terminal the last mesh is returned unchanged.
func (g *Grower) Tick(dt float64) (*builder.MeshData, error) {
	if math.IsNaN(dt) || dt < 0 {
		return g.mesh, errors.Wrapf(ErrInvalidTick, "dt %v", dt)
	}
	if g.state.Terminal() {
		return g.mesh, nil
	}
	if len(g.attractors) == 0 {
		g.terminate(Depleted)
		g.rebuild()
		return g.mesh, nil
	}

	g.accumulator += dt
	if g.accumulator >= g.params.GrowthInterval {
		g.cycle()
		g.accumulator = 0
	}
	g.rebuild()
	return g.mesh, nil
}

// Step runs one growth cycle immediately and rebuilds the mesh.
func (g *Grower) Step() State {
	g.advance()
	g.rebuild()
	return g.state
}

// RunToCompletion cycles until the grower is terminal or maxCycles cycles
// ran. A non-positive maxCycles means no limit. It returns the number of
// cycles run.
func (g *Grower) RunToCompletion(maxCycles int) int {
	ran := 0
	for !g.state.Terminal() && (maxCycles <= 0 || ran < maxCycles) {
		g.advance()
		ran++
	}
	g.rebuild()
	return ran
}

func (g *Grower) advance() {
	if g.state.Terminal() {
		return
	}
	if len(g.attractors) == 0 {
		g.terminate(Depleted)
		return
	}
	g.cycle()
	g.accumulator = 0
}

func (g *Grower) cycle() {
	if g.params.MaxNodes > 0 && g.skel.Len() >= g.params.MaxNodes {
		g.terminate(NodeBudget)
		return
	}

	g.associate()
	grown := g.grow()
	pruned := g.prune()
	g.pruned += pruned
	g.cycles++

	g.log.WithFields(logrus.Fields{
		"cycle":      g.cycles,
		"active":     len(g.active),
		"grown":      grown,
		"pruned":     pruned,
		"nodes":      g.skel.Len(),
		"attractors": len(g.attractors),
	}).Debug("growth cycle")

	switch {
	case len(g.attractors) == 0:
		g.terminate(Depleted)
	case g.stalled():
		g.log.WithField("discarded", len(g.attractors)).Info("remaining attractors are out of reach")
		g.discarded += len(g.attractors)
		g.attractors = g.attractors[:0]
		g.live.Reset()
		g.terminate(Stalled)
	case g.params.MaxNodes > 0 && g.skel.Len() >= g.params.MaxNodes:
		g.terminate(NodeBudget)
	}
}

// associate binds every live attractor inside the region to the closest
// node within the attraction radius.
func (g *Grower) associate() {
	g.skel.ClearAttractors()
	g.active = g.active[:0]
	g.attractorTree.Visit(g.region, func(e octree.Entry) bool {
		if !g.live.Contains(uint32(e.ID)) {
			return true
		}
		id, _, ok := g.nodeTree.Nearest(e.Position, g.params.AttractionRadius)
		if !ok {
			return true
		}
		node := g.skel.Get(id)
		node.Attractors = append(node.Attractors, e.Position)
		g.active = append(g.active, e.ID)
		return true
	})
}

// grow gives every attracted node and the trunk tip one child. Children are
// appended after the pass so this cycle's nodes are not revisited.
func (g *Grower) grow() int {
	g.pending = g.pending[:0]
	for i := 0; i < g.skel.Len(); i++ {
		node := g.skel.Get(i)
		node.IsGrowing = false
		if len(node.Attractors) == 0 && !node.IsTrunk {
			continue
		}

		dir, err := node.GrowthDirection(g.rng, g.params.Jitter)
		if err != nil {
			g.degenerate++
			g.log.WithError(err).WithField("node", i).Debug("keeping previous direction")
		}
		child := nodebase.NewNode(node.Position.Add(dir.Mul(g.params.BranchLength)), dir, i)
		if node.IsTrunk {
			node.IsTrunk = false
			child.IsTrunk = true
		}
		g.pending = append(g.pending, child)
	}
	for _, child := range g.pending {
		g.addNode(child)
	}
	return len(g.pending)
}

// prune drops attractors that some node came strictly closer to than the
// prune distance, shifting the list in place from the back.
func (g *Grower) prune() int {
	removed := 0
	for i := len(g.attractors) - 1; i >= 0; i-- {
		a := g.attractors[i]
		if !g.nodeTree.AnyWithin(a.Position, g.params.PruneDistance) {
			continue
		}
		g.live.Remove(uint32(a.ID))
		g.attractors = append(g.attractors[:i], g.attractors[i+1:]...)
		removed++
	}
	return removed
}

// stalled reports whether no remaining attractor can ever be bound: none is
// within the attraction radius of a node and the trunk tip is heading away
// from all of them.
func (g *Grower) stalled() bool {
	for _, a := range g.attractors {
		if _, _, ok := g.nodeTree.Nearest(a.Position, g.params.AttractionRadius); ok {
			return false
		}
	}
	tip, _ := g.skel.Trunk()
	if tip < 0 {
		return true
	}
	node := g.skel.Get(tip)
	bounds := geometry.AABBFromPoints(attractorPositions(g.attractors)).ExpandByScalar(g.params.AttractionRadius)
	_, _, hit := geometry.RayAABB(node.Position, node.Direction, bounds)
	return !hit
}

func (g *Grower) addNode(node nodebase.Node) int {
	idx := g.skel.Add(node)
	if !g.nodeTree.Insert(idx, node.Position) {
		g.outside++
		g.log.WithFields(logrus.Fields{
			"node":     idx,
			"position": node.Position,
		}).Warn("node outside the node octree bounds")
	}
	g.skel.PropagateDepth(idx)
	return idx
}

func (g *Grower) terminate(reason State) {
	g.state = reason
	for i := range g.skel.Nodes {
		g.skel.Nodes[i].IsGrowing = false
	}
	g.skel.ClearAttractors()
	g.active = g.active[:0]
	g.accumulator = 0
	g.log.WithFields(logrus.Fields{
		"reason": reason,
		"cycles": g.cycles,
		"nodes":  g.skel.Len(),
	}).Info("growth finished")
}

func (g *Grower) rebuild() {
	t := float32(g.accumulator / g.params.GrowthInterval)
	g.mesh = g.mesher.Build(g.skel, t)
}

// SetRegion limits association to attractors inside box.
func (g *Grower) SetRegion(box geometry.BoundingBox) error {
	if err := box.Validate(); err != nil {
		return err
	}
	g.region = box
	return nil
}

// SetRegionSphere limits association to the cube enclosing a sphere.
func (g *Grower) SetRegionSphere(center math32.Vector3, radius float32) error {
	if radius <= 0 {
		return errors.Wrapf(geometry.ErrInvalidBox, "region radius %v", radius)
	}
	return g.SetRegion(RegionParams{Center: center, Radius: radius}.Box())
}

// ClearRegion restores association over the whole crown.
func (g *Grower) ClearRegion() {
	g.region = g.attractorTree.Bounds()
}

// Region returns the current region of interest.
func (g *Grower) Region() geometry.BoundingBox {
	return g.region
}

// Params returns the parameters the grower was built with.
func (g *Grower) Params() Params {
	return g.params
}

// State returns Running or the terminal reason.
func (g *Grower) State() State {
	return g.state
}

// Mesh returns the mesh built by the last Tick, Step or RunToCompletion.
func (g *Grower) Mesh() *builder.MeshData {
	return g.mesh
}

// Cycles returns the number of growth cycles run.
func (g *Grower) Cycles() int {
	return g.cycles
}
