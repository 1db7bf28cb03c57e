package solver

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

func planesThrough(p mgl64.Vec3, normals ...mgl64.Vec3) []Constraint {
	cs := make([]Constraint, len(normals))
	for i, n := range normals {
		cs[i] = Constraint{Normal: n, Offset: n.Dot(p)}
	}
	return cs
}

func TestLeastSquaresThreePlanesExact(t *testing.T) {
	tests := []struct {
		name    string
		point   mgl64.Vec3
		normals []mgl64.Vec3
	}{
		{"axis aligned", mgl64.Vec3{1, 2, 3}, []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
		{"skewed", mgl64.Vec3{-4.5, 0.25, 7}, []mgl64.Vec3{{1, 1, 0}, {0, 1, 1}, {1, 0, 1}}},
		{"non unit", mgl64.Vec3{0.1, -0.2, 0.3}, []mgl64.Vec3{{2, 0.5, 0}, {0.3, -3, 1}, {0, 0.2, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LeastSquares(planesThrough(tt.point, tt.normals...))
			if err != nil {
				t.Fatalf("LeastSquares: %v", err)
			}
			if !got.ApproxEqualThreshold(tt.point, 1e-9) {
				t.Fatalf("got %v, want %v", got, tt.point)
			}
		})
	}
}

func TestLeastSquaresRandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		p := mgl64.Vec3{rng.Float64()*20 - 10, rng.Float64()*20 - 10, rng.Float64()*20 - 10}
		var normals []mgl64.Vec3
		for len(normals) < 3 {
			normals = append(normals, mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Normalize())
		}
		m := mgl64.Mat3FromRows(normals[0], normals[1], normals[2])
		if math.Abs(m.Det()) < 1e-3 {
			continue
		}
		got, err := LeastSquares(planesThrough(p, normals...))
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if !got.ApproxEqualThreshold(p, 1e-6) {
			t.Fatalf("iteration %d: got %v, want %v", i, got, p)
		}
	}
}

func TestLeastSquaresSingular(t *testing.T) {
	parallel := planesThrough(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})
	if _, err := LeastSquares(parallel); !errors.Is(err, ErrSingularSystem) {
		t.Fatalf("expected ErrSingularSystem for parallel planes, got %v", err)
	}

	coplanar := planesThrough(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 1, 0}, mgl64.Vec3{1, -1, 0})
	if _, err := LeastSquares(coplanar); !errors.Is(err, ErrSingularSystem) {
		t.Fatalf("expected ErrSingularSystem for coplanar normals, got %v", err)
	}

	if _, err := LeastSquares(nil); !errors.Is(err, ErrSingularSystem) {
		t.Fatalf("expected ErrSingularSystem for empty input, got %v", err)
	}
}

// TestLeastSquaresMatchesQR cross-checks the normal-equation path against a
// QR least-squares solve of the overdetermined system.
func TestLeastSquaresMatchesQR(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const k = 9
	cs := make([]Constraint, k)
	a := mat.NewDense(k, 3, nil)
	b := mat.NewVecDense(k, nil)
	for i := range cs {
		n := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		off := rng.NormFloat64() * 3
		cs[i] = Constraint{Normal: n, Offset: off}
		a.SetRow(i, n[:])
		b.SetVec(i, off)
	}

	got, err := LeastSquares(cs)
	if err != nil {
		t.Fatalf("LeastSquares: %v", err)
	}

	var want mat.VecDense
	if err := want.SolveVec(a, b); err != nil {
		t.Fatalf("QR solve: %v", err)
	}
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want.AtVec(i)) > 1e-8 {
			t.Fatalf("component %d: got %v, QR gives %v", i, got[i], want.AtVec(i))
		}
	}
}

func TestNormalEquationsSymmetric(t *testing.T) {
	cs := []Constraint{
		{Normal: mgl64.Vec3{1, 2, 3}, Offset: 1},
		{Normal: mgl64.Vec3{-1, 0.5, 2}, Offset: -2},
	}
	ata, atb := NormalEquations(cs)
	if ata.At(0, 1) != ata.At(1, 0) || ata.At(0, 2) != ata.At(2, 0) || ata.At(1, 2) != ata.At(2, 1) {
		t.Fatalf("AᵗA not symmetric: %v", ata)
	}
	if ata.At(0, 1) != 1*2+(-1)*0.5 {
		t.Fatalf("AᵗA(0,1) = %v", ata.At(0, 1))
	}
	if atb[2] != 3*1+2*(-2) {
		t.Fatalf("Aᵗb[2] = %v", atb[2])
	}
}

func BenchmarkLeastSquares(b *testing.B) {
	cs := planesThrough(mgl64.Vec3{0.3, 0.6, 0.2},
		mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1},
		mgl64.Vec3{0.05, 0, 0}, mgl64.Vec3{0, 0.05, 0}, mgl64.Vec3{0, 0, 0.05})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = LeastSquares(cs)
	}
}
