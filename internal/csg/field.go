package csg

import (
	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/density"
)

// Field is a base field with operations folded in, oldest first.
type Field struct {
	Base density.Field
	Ops  []Operation
}

// Sample implements density.Field.
func (f Field) Sample(p mgl32.Vec3) density.IsoSample {
	s := f.Base.Sample(p)
	for _, op := range f.Ops {
		s = op.Apply(s, p)
	}
	return s
}
