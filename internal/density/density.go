// Package density defines the signed distance fields sampled by the mesher.
//
// Negative distance is inside solid, zero or positive is outside. Every field
// in this package is pure: the same point always produces the same sample.
package density

import (
	"github.com/go-gl/mathgl/mgl32"
)

// IsoSample is one grid point of a distance field.
type IsoSample struct {
	Distance float32
	Normal   mgl32.Vec3
}

// Inside reports whether the sample lies in solid.
func (s IsoSample) Inside() bool {
	return s.Distance < 0
}

// Field evaluates distance and normal at a world position.
type Field interface {
	Sample(p mgl32.Vec3) IsoSample
}

// FieldFunc adapts a plain function to Field.
type FieldFunc func(p mgl32.Vec3) IsoSample

// Sample implements Field.
func (f FieldFunc) Sample(p mgl32.Vec3) IsoSample {
	return f(p)
}

// DistanceFunc is a scalar distance field without normals.
type DistanceFunc func(p mgl32.Vec3) float32

// Gradient estimates the normalized gradient of fn at p by central differences.
// A zero gradient yields +Y so callers always get a usable normal.
func Gradient(fn DistanceFunc, p mgl32.Vec3, h float32) mgl32.Vec3 {
	dx := fn(mgl32.Vec3{p[0] + h, p[1], p[2]}) - fn(mgl32.Vec3{p[0] - h, p[1], p[2]})
	dy := fn(mgl32.Vec3{p[0], p[1] + h, p[2]}) - fn(mgl32.Vec3{p[0], p[1] - h, p[2]})
	dz := fn(mgl32.Vec3{p[0], p[1], p[2] + h}) - fn(mgl32.Vec3{p[0], p[1], p[2] - h})
	return safeNormalize(mgl32.Vec3{dx, dy, dz})
}

// FromDistance builds a Field whose normals come from Gradient.
func FromDistance(fn DistanceFunc, h float32) Field {
	return FieldFunc(func(p mgl32.Vec3) IsoSample {
		return IsoSample{Distance: fn(p), Normal: Gradient(fn, p, h)}
	})
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Mul(1 / l)
}
