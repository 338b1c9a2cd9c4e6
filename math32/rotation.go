package math32

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Rotation is a unit quaternion.
type Rotation struct {
	q mgl32.Quat
}

// FromToRotation returns the shortest rotation taking direction from onto
// direction to. Both inputs are normalized first; a zero input yields the
// identity.
func FromToRotation(from, to Vector3) Rotation {
	f, okf := from.TryNormalize()
	t, okt := to.TryNormalize()
	if !okf || !okt {
		return Rotation{mgl32.QuatIdent()}
	}
	return Rotation{mgl32.QuatBetweenVectors(f.Mgl(), t.Mgl())}
}

// Rotate applies the rotation to v.
func (r Rotation) Rotate(v Vector3) Vector3 {
	return FromMgl(r.q.Rotate(v.Mgl()))
}
