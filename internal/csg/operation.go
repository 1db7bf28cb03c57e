// Package csg combines user edits with the base density field.
package csg

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/density"
)

// Shape is the primitive an operation stamps into the field.
type Shape int32

const (
	Box Shape = iota
	Sphere
	Octahedron
)

var shapeNames = [...]string{"box", "sphere", "octahedron"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int32(s))
	}
	return shapeNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(shapeNames) {
		return nil, fmt.Errorf("csg: unknown shape %d", int32(s))
	}
	return []byte(shapeNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range shapeNames {
		if n == name {
			*s = Shape(i)
			return nil
		}
	}
	return fmt.Errorf("csg: unknown shape %q", name)
}

// Kind is how an operation combines with the field underneath it.
type Kind int32

const (
	// Union adds the shape as solid.
	Union Kind = iota
	// Subtraction carves the shape out.
	Subtraction
	// Difference keeps only the part of the field inside the shape.
	Difference
)

var kindNames = [...]string{"union", "subtraction", "difference"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("csg: unknown kind %d", int32(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("csg: unknown kind %q", name)
}

// Operation is one user edit. Operations are values and never change after
// creation.
type Operation struct {
	Position mgl32.Vec3 `yaml:"position"`
	Radius   float32    `yaml:"radius"`
	Shape    Shape      `yaml:"shape"`
	Kind     Kind       `yaml:"kind"`
}

const (
	octahedronScale = 0.57735027
	normalStep      = 1e-3
)

// Distance returns the shape's signed distance at p.
func (op Operation) Distance(p mgl32.Vec3) float32 {
	q := p.Sub(op.Position)
	switch op.Shape {
	case Sphere:
		return q.Len() - op.Radius
	case Octahedron:
		return (abs32(q[0]) + abs32(q[1]) + abs32(q[2]) - op.Radius) * octahedronScale
	default:
		d := mgl32.Vec3{abs32(q[0]) - op.Radius, abs32(q[1]) - op.Radius, abs32(q[2]) - op.Radius}
		outside := mgl32.Vec3{max(d[0], 0), max(d[1], 0), max(d[2], 0)}.Len()
		inside := min(max(d[0], d[1], d[2]), 0)
		return outside + inside
	}
}

// Sample returns the shape's distance and normal at p.
func (op Operation) Sample(p mgl32.Vec3) density.IsoSample {
	if op.Shape == Sphere {
		return density.Sphere{Center: op.Position, Radius: op.Radius}.Sample(p)
	}
	return density.IsoSample{
		Distance: op.Distance(p),
		Normal:   density.Gradient(op.Distance, p, normalStep),
	}
}

// Apply folds the operation into a base sample taken at p.
func (op Operation) Apply(base density.IsoSample, p mgl32.Vec3) density.IsoSample {
	s := op.Sample(p)
	switch op.Kind {
	case Union:
		if s.Distance < base.Distance {
			return s
		}
	case Subtraction:
		if -s.Distance > base.Distance {
			return density.IsoSample{Distance: -s.Distance, Normal: s.Normal.Mul(-1)}
		}
	case Difference:
		if s.Distance > base.Distance {
			return s
		}
	}
	return base
}

// Global reports whether the operation changes the field outside its
// bounds. A Difference clears everything outside the shape.
func (op Operation) Global() bool {
	return op.Kind == Difference
}

// Bounds returns the axis-aligned box the operation can influence. It is
// meaningless for global operations.
func (op Operation) Bounds() (lo, hi mgl32.Vec3) {
	r := mgl32.Vec3{op.Radius, op.Radius, op.Radius}
	return op.Position.Sub(r), op.Position.Add(r)
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
