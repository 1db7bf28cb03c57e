package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/density"
)

func TestRaycast(t *testing.T) {
	sphere := density.Sphere{Center: mgl32.Vec3{0, 0, -20}, Radius: 5}

	tests := []struct {
		name      string
		start     mgl32.Vec3
		dir       mgl32.Vec3
		wantHit   bool
		wantDist  float32
		wantPoint mgl32.Vec3
	}{
		{"straight at sphere", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, true, 15, mgl32.Vec3{0, 0, -15}},
		{"unnormalized direction", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -3}, true, 15, mgl32.Vec3{0, 0, -15}},
		{"away from sphere", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1}, false, 0, mgl32.Vec3{}},
		{"passing beside", mgl32.Vec3{10, 0, 0}, mgl32.Vec3{0, 0, -1}, false, 0, mgl32.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Raycast(tt.start, tt.dir, 0, 100, sphere)
			if res.Hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", res.Hit, tt.wantHit)
			}
			if !tt.wantHit {
				return
			}
			if math.Abs(float64(res.Distance-tt.wantDist)) > 0.05 {
				t.Errorf("distance = %v, want %v", res.Distance, tt.wantDist)
			}
			if !res.Position.ApproxEqualThreshold(tt.wantPoint, 0.05) {
				t.Errorf("position = %v, want %v", res.Position, tt.wantPoint)
			}
			if res.Normal.Z() < 0.99 {
				t.Errorf("normal = %v, want +Z", res.Normal)
			}
		})
	}
}

func TestRaycastRespectsMinDistance(t *testing.T) {
	// Starting inside solid ground: only distances past minDist count.
	plane := density.Plane{Height: 0}
	res := Raycast(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 1, 0}, 2, 10, plane)
	if res.Hit {
		t.Errorf("hit at %v, want miss above the ground", res.Position)
	}
}

func TestFindGroundLevel(t *testing.T) {
	plane := density.Plane{Height: 12}
	if got := FindGroundLevel(3, -7, 100, -100, 0, plane); math.Abs(float64(got-12)) > 0.05 {
		t.Errorf("ground = %v, want 12", got)
	}
	if got := FindGroundLevel(0, 0, 100, 50, -1, plane); got != -1 {
		t.Errorf("ground above bottom = %v, want fallback", got)
	}
}
