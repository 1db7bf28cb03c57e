package density

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
)

// SDF3Field samples an sdfx solid. Normals come from central differences.
type SDF3Field struct {
	s    sdf.SDF3
	step float32
}

// NewSDF3Field wraps s; step is the central difference spacing.
func NewSDF3Field(s sdf.SDF3, step float32) *SDF3Field {
	if step <= 0 {
		step = 1e-3
	}
	return &SDF3Field{s: s, step: step}
}

// Distance evaluates the wrapped solid.
func (f *SDF3Field) Distance(p mgl32.Vec3) float32 {
	return float32(f.s.Evaluate(v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}))
}

// Sample implements Field.
func (f *SDF3Field) Sample(p mgl32.Vec3) IsoSample {
	return IsoSample{Distance: f.Distance(p), Normal: Gradient(f.Distance, p, f.step)}
}

// Bounds returns the solid's bounding box.
func (f *SDF3Field) Bounds() (min, max mgl32.Vec3) {
	bb := f.s.BoundingBox()
	min = mgl32.Vec3{float32(bb.Min.X), float32(bb.Min.Y), float32(bb.Min.Z)}
	max = mgl32.Vec3{float32(bb.Max.X), float32(bb.Max.Y), float32(bb.Max.Z)}
	return min, max
}

// NewSolid builds a box, cylinder or sphere centred on center. size holds
// the box extents; a cylinder uses size[1] as height and size[0] as radius,
// a sphere size[0] as radius.
func NewSolid(shape string, size mgl32.Vec3, round float32, center mgl32.Vec3, step float32) (*SDF3Field, error) {
	var (
		s   sdf.SDF3
		err error
	)
	switch shape {
	case "box":
		s, err = sdf.Box3D(v3.Vec{X: float64(size[0]), Y: float64(size[1]), Z: float64(size[2])}, float64(round))
	case "cylinder":
		s, err = sdf.Cylinder3D(float64(size[1]), float64(size[0]), float64(round))
		if err == nil {
			// sdfx cylinders run along Z
			s = sdf.Transform3D(s, sdf.RotateX(sdf.DtoR(90)))
		}
	case "sphere":
		s, err = sdf.Sphere3D(float64(size[0]))
	default:
		return nil, fmt.Errorf("density: unknown solid %q", shape)
	}
	if err != nil {
		return nil, fmt.Errorf("density: %s: %w", shape, err)
	}
	m := sdf.Translate3d(v3.Vec{X: float64(center[0]), Y: float64(center[1]), Z: float64(center[2])})
	return NewSDF3Field(sdf.Transform3D(s, m), step), nil
}
