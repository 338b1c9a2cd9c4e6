package growth

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/o0olele/sctree-go/math32"
	"github.com/o0olele/sctree-go/nodebase"
	"github.com/o0olele/sctree-go/octree"
)

// ErrInvalidParams wraps every parameter validation failure.
var ErrInvalidParams = errors.New("invalid growth parameters")

// Distribution selects how attractors fill the crown sphere.
type Distribution string

const (
	// DistributionShell pushes points towards the crown surface with
	// d = sin(u·π/2)^0.8.
	DistributionShell Distribution = "shell"
	// DistributionUniform spreads points evenly through the sphere volume.
	DistributionUniform Distribution = "uniform"
)

// RegionParams is a spherical region of interest as written in config
// files.
type RegionParams struct {
	Center math32.Vector3 `json:"center" toml:"center" yaml:"center"`
	Radius float32        `json:"radius" toml:"radius" yaml:"radius"`
}

// Params configures a Grower.
type Params struct {
	AttractorCount     int          `json:"attractor_count" toml:"attractor_count" yaml:"attractor_count"`
	BranchLength       float32      `json:"branch_length" toml:"branch_length" yaml:"branch_length"`
	CrownRadius        float32      `json:"crown_radius" toml:"crown_radius" yaml:"crown_radius"`
	AttractionRadius   float32      `json:"attraction_radius" toml:"attraction_radius" yaml:"attraction_radius"`
	GrowthInterval     float64      `json:"growth_interval" toml:"growth_interval" yaml:"growth_interval"`
	PruneDistance      float32      `json:"prune_distance" toml:"prune_distance" yaml:"prune_distance"`
	RadialSubdivisions int          `json:"radial_subdivisions" toml:"radial_subdivisions" yaml:"radial_subdivisions"`
	BaseBranchRadius   float32      `json:"base_branch_radius" toml:"base_branch_radius" yaml:"base_branch_radius"`
	TrunkStartOffset   float32      `json:"trunk_start_offset" toml:"trunk_start_offset" yaml:"trunk_start_offset"`
	Jitter             float32      `json:"jitter" toml:"jitter" yaml:"jitter"`
	Distribution       Distribution `json:"distribution" toml:"distribution" yaml:"distribution"`
	Seed               uint64       `json:"seed" toml:"seed" yaml:"seed"`

	Origin math32.Vector3 `json:"origin" toml:"origin" yaml:"origin"`
	// Region limits association to a sphere. Nil means the whole crown.
	Region *RegionParams `json:"region,omitempty" toml:"region,omitempty" yaml:"region,omitempty"`

	OctreeCapacity int   `json:"octree_capacity" toml:"octree_capacity" yaml:"octree_capacity"`
	OctreeMaxDepth uint8 `json:"octree_max_depth" toml:"octree_max_depth" yaml:"octree_max_depth"`
	// MaxNodes stops the run once the skeleton reaches it. Zero disables.
	MaxNodes int `json:"max_nodes" toml:"max_nodes" yaml:"max_nodes"`
}

// DefaultParams returns the stock tree.
func DefaultParams() Params {
	return Params{
		AttractorCount:     400,
		BranchLength:       0.2,
		CrownRadius:        5,
		AttractionRadius:   0.8,
		GrowthInterval:     1,
		PruneDistance:      0.4,
		RadialSubdivisions: 5,
		BaseBranchRadius:   0.2,
		TrunkStartOffset:   2,
		Jitter:             nodebase.DefaultJitter,
		Distribution:       DistributionShell,
		Seed:               1,
		OctreeCapacity:     octree.DefaultCapacity,
		OctreeMaxDepth:     octree.DefaultMaxDepth,
		MaxNodes:           20000,
	}
}

// Validate reports the first unusable field.
func (p Params) Validate() error {
	switch {
	case p.AttractorCount < 0:
		return errors.Wrapf(ErrInvalidParams, "attractor_count %d is negative", p.AttractorCount)
	case p.BranchLength <= 0:
		return errors.Wrapf(ErrInvalidParams, "branch_length %v must be positive", p.BranchLength)
	case p.CrownRadius <= 0:
		return errors.Wrapf(ErrInvalidParams, "crown_radius %v must be positive", p.CrownRadius)
	case p.AttractionRadius <= 0:
		return errors.Wrapf(ErrInvalidParams, "attraction_radius %v must be positive", p.AttractionRadius)
	case p.GrowthInterval <= 0:
		return errors.Wrapf(ErrInvalidParams, "growth_interval %v must be positive", p.GrowthInterval)
	case p.PruneDistance <= 0:
		return errors.Wrapf(ErrInvalidParams, "prune_distance %v must be positive", p.PruneDistance)
	case p.PruneDistance >= p.AttractionRadius:
		return errors.Wrapf(ErrInvalidParams, "prune_distance %v must be below attraction_radius %v",
			p.PruneDistance, p.AttractionRadius)
	case p.RadialSubdivisions < 3:
		return errors.Wrapf(ErrInvalidParams, "radial_subdivisions %d must be at least 3", p.RadialSubdivisions)
	case p.BaseBranchRadius <= 0:
		return errors.Wrapf(ErrInvalidParams, "base_branch_radius %v must be positive", p.BaseBranchRadius)
	case p.TrunkStartOffset < 0:
		return errors.Wrapf(ErrInvalidParams, "trunk_start_offset %v is negative", p.TrunkStartOffset)
	case p.Jitter < 0:
		return errors.Wrapf(ErrInvalidParams, "jitter %v is negative", p.Jitter)
	case p.Distribution != DistributionShell && p.Distribution != DistributionUniform:
		return errors.Wrapf(ErrInvalidParams, "unknown distribution %q", p.Distribution)
	case !p.Origin.IsFinite():
		return errors.Wrapf(ErrInvalidParams, "origin %v is not finite", p.Origin)
	case p.OctreeCapacity < 1:
		return errors.Wrapf(ErrInvalidParams, "octree_capacity %d must be positive", p.OctreeCapacity)
	case p.MaxNodes < 0:
		return errors.Wrapf(ErrInvalidParams, "max_nodes %d is negative", p.MaxNodes)
	}
	if p.Region != nil && (p.Region.Radius <= 0 || !p.Region.Center.IsFinite()) {
		return errors.Wrapf(ErrInvalidParams, "region radius %v must be positive", p.Region.Radius)
	}
	return nil
}

// RootPosition is where the trunk starts, below the crown.
func (p Params) RootPosition() math32.Vector3 {
	return p.Origin.Add(math32.Vec3(0, -(p.CrownRadius + p.TrunkStartOffset), 0))
}

// Option customizes a Grower.
type Option func(g *Grower)

// WithLogger replaces the default logger.
func WithLogger(log *logrus.Entry) Option {
	return func(g *Grower) {
		g.log = log
	}
}

// WithRand replaces the generator seeded from Params.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(g *Grower) {
		g.rng = rng
	}
}
