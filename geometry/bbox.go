package geometry

import (
	"github.com/pkg/errors"

	"github.com/o0olele/sctree-go/math32"
)

// ErrInvalidBox is returned by Validate for a negative or non-finite extent.
var ErrInvalidBox = errors.New("invalid bounding box")

// BoundingBox is an axis-aligned box given by its center and per-axis half
// extents. Each half extent is symmetric around the center.
type BoundingBox struct {
	Center     math32.Vector3 `json:"center"`
	HalfExtent math32.Vector3 `json:"half_extent"`
}

// NewBoundingBox returns a box with independent half extents per axis.
func NewBoundingBox(center, halfExtent math32.Vector3) BoundingBox {
	return BoundingBox{Center: center, HalfExtent: halfExtent}
}

// NewCube returns a box with the same half extent on every axis.
func NewCube(center math32.Vector3, half float32) BoundingBox {
	return BoundingBox{Center: center, HalfExtent: math32.Vec3(half, half, half)}
}

// Validate checks that every half extent is finite and non-negative.
func (b BoundingBox) Validate() error {
	if !b.Center.IsFinite() || !b.HalfExtent.IsFinite() {
		return errors.Wrapf(ErrInvalidBox, "non-finite box %v ± %v", b.Center, b.HalfExtent)
	}
	if b.HalfExtent.X < 0 || b.HalfExtent.Y < 0 || b.HalfExtent.Z < 0 {
		return errors.Wrapf(ErrInvalidBox, "negative half extent %v", b.HalfExtent)
	}
	return nil
}

// Contains is an inclusive per-axis range test.
func (b BoundingBox) Contains(p math32.Vector3) bool {
	return p.X >= b.Center.X-b.HalfExtent.X && p.X <= b.Center.X+b.HalfExtent.X &&
		p.Y >= b.Center.Y-b.HalfExtent.Y && p.Y <= b.Center.Y+b.HalfExtent.Y &&
		p.Z >= b.Center.Z-b.HalfExtent.Z && p.Z <= b.Center.Z+b.HalfExtent.Z
}

// Intersects reports whether the projections of both boxes overlap on all
// three axes. Boxes that only touch do not intersect.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	d := b.Center.Sub(other.Center).Abs()
	s := b.HalfExtent.Add(other.HalfExtent)
	return d.X-s.X < 0 && d.Y-s.Y < 0 && d.Z-s.Z < 0
}

// Octant returns the i-th of the eight boxes obtained by halving every axis.
// Bit 0 of i selects +X, bit 1 +Y and bit 2 +Z.
func (b BoundingBox) Octant(i int) BoundingBox {
	h := b.HalfExtent.Mul(0.5)
	c := b.Center
	if i&1 != 0 {
		c.X += h.X
	} else {
		c.X -= h.X
	}
	if i&2 != 0 {
		c.Y += h.Y
	} else {
		c.Y -= h.Y
	}
	if i&4 != 0 {
		c.Z += h.Z
	} else {
		c.Z -= h.Z
	}
	return BoundingBox{Center: c, HalfExtent: h}
}

// AABB converts to min/max form.
func (b BoundingBox) AABB() AABB {
	return AABB{Min: b.Center.Sub(b.HalfExtent), Max: b.Center.Add(b.HalfExtent)}
}
