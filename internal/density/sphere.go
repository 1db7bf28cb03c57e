package density

import "github.com/go-gl/mathgl/mgl32"

// Sphere is an exact sphere distance field.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Sample implements Field.
func (s Sphere) Sample(p mgl32.Vec3) IsoSample {
	v := p.Sub(s.Center)
	return IsoSample{Distance: v.Len() - s.Radius, Normal: safeNormalize(v)}
}

// Plane is the half space below Height along +Y.
type Plane struct {
	Height float32
}

// Sample implements Field.
func (pl Plane) Sample(p mgl32.Vec3) IsoSample {
	return IsoSample{Distance: p[1] - pl.Height, Normal: mgl32.Vec3{0, 1, 0}}
}

// Negate flips inside and outside of a field.
func Negate(f Field) Field {
	return FieldFunc(func(p mgl32.Vec3) IsoSample {
		s := f.Sample(p)
		return IsoSample{Distance: -s.Distance, Normal: s.Normal.Mul(-1)}
	})
}
