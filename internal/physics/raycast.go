// Package physics answers point and ray queries against a density field.
package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/density"
	"dcterrain/internal/profiling"
)

const (
	MinReachDistance = 0.5
	MaxReachDistance = 200.0

	// Smallest march step, so Lipschitz-violating noise still terminates
	minStep = 0.05
	// Distance below which the ray counts as touching the surface
	hitEpsilon = 0.01
)

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	Position mgl32.Vec3 // First point at or inside the surface
	Normal   mgl32.Vec3
	Distance float32
	Hit      bool
}

// Raycast marches from start along direction until the field turns solid.
// Steps follow the sampled distance, so exact SDFs converge quickly.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, f density.Field) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	dir := direction.Normalize()

	dist := minDist
	for dist <= maxDist {
		pos := start.Add(dir.Mul(dist))
		s := f.Sample(pos)
		if s.Distance <= hitEpsilon {
			return RaycastResult{Position: pos, Normal: s.Normal, Distance: dist, Hit: true}
		}
		step := s.Distance
		if step < minStep {
			step = minStep
		}
		dist += step
	}
	return RaycastResult{}
}

// FindGroundLevel returns the height of the highest surface crossing below
// top at (x, z), or fallback if the column is open down to bottom.
func FindGroundLevel(x, z, top, bottom, fallback float32, f density.Field) float32 {
	res := Raycast(mgl32.Vec3{x, top, z}, mgl32.Vec3{0, -1, 0}, 0, top-bottom, f)
	if !res.Hit {
		return fallback
	}
	return res.Position.Y()
}
