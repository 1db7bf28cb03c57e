// Package solver places dual contouring vertices by solving small
// least-squares systems of plane constraints.
package solver

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// singularEpsilon is the determinant magnitude at or below which a 3x3
// system is treated as singular.
const singularEpsilon = 1e-12

// ErrSingularSystem is returned when the system matrix is (near) singular.
var ErrSingularSystem = errors.New("solver: singular system")

// Constraint is one plane n·v = Offset.
type Constraint struct {
	Normal mgl64.Vec3
	Offset float64
}

// SolveMatrix3 solves m·v = b by Cramer's rule.
func SolveMatrix3(m mgl64.Mat3, b mgl64.Vec3) (mgl64.Vec3, error) {
	det := m.Det()
	if math.Abs(det) <= singularEpsilon {
		return mgl64.Vec3{}, ErrSingularSystem
	}

	c0, c1, c2 := m.Col(0), m.Col(1), m.Col(2)
	return mgl64.Vec3{
		mgl64.Mat3FromCols(b, c1, c2).Det() / det,
		mgl64.Mat3FromCols(c0, b, c2).Det() / det,
		mgl64.Mat3FromCols(c0, c1, b).Det() / det,
	}, nil
}

// LeastSquares returns the point minimizing Σ (nᵢ·v − offsetᵢ)².
//
// Exactly three constraints are solved directly; more are reduced to the
// normal equations AᵗA·v = Aᵗb first. Fewer than three always fail.
// The result is not clamped.
func LeastSquares(constraints []Constraint) (mgl64.Vec3, error) {
	switch n := len(constraints); {
	case n < 3:
		return mgl64.Vec3{}, ErrSingularSystem
	case n == 3:
		a := mgl64.Mat3FromRows(constraints[0].Normal, constraints[1].Normal, constraints[2].Normal)
		b := mgl64.Vec3{constraints[0].Offset, constraints[1].Offset, constraints[2].Offset}
		return SolveMatrix3(a, b)
	}

	ata, atb := NormalEquations(constraints)
	return SolveMatrix3(ata, atb)
}

// NormalEquations accumulates AᵗA and Aᵗb over all constraints.
func NormalEquations(constraints []Constraint) (mgl64.Mat3, mgl64.Vec3) {
	var ata mgl64.Mat3
	var atb mgl64.Vec3
	for _, c := range constraints {
		n := c.Normal
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				// mgl64.Mat3 is column-major: element (row i, col j) at j*3+i.
				ata[j*3+i] += n[i] * n[j]
			}
			atb[i] += n[i] * c.Offset
		}
	}
	return ata, atb
}
