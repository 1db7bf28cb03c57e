package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func camFrustum() Frustum {
	c := NewCamera(800, 600, mgl32.Vec3{0, 0, 0}) // looking down -Z
	return NewFrustum(c.ProjectionMatrix().Mul4(c.ViewMatrix()))
}

func TestCameraFacesNegativeZ(t *testing.T) {
	c := NewCamera(800, 600, mgl32.Vec3{})
	if !c.Front().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("front = %v", c.Front())
	}
	c.Move(2, 0, 1)
	if !c.Position.ApproxEqualThreshold(mgl32.Vec3{0, 1, -2}, 1e-5) {
		t.Errorf("position = %v", c.Position)
	}
}

func TestMousePitchClamped(t *testing.T) {
	c := NewCamera(800, 600, mgl32.Vec3{})
	c.HandleMouseMovement(0, 0)
	c.HandleMouseMovement(0, -5000)
	if c.Pitch != 89 {
		t.Errorf("pitch = %v", c.Pitch)
	}
}

func TestFrustumCulling(t *testing.T) {
	f := camFrustum()
	tests := []struct {
		name     string
		min, max mgl32.Vec3
		want     bool
	}{
		{"ahead", mgl32.Vec3{-1, -1, -20}, mgl32.Vec3{1, 1, -10}, true},
		{"behind", mgl32.Vec3{-1, -1, 10}, mgl32.Vec3{1, 1, 20}, false},
		{"far left", mgl32.Vec3{-500, -1, -20}, mgl32.Vec3{-400, 1, -10}, false},
		{"beyond far plane", mgl32.Vec3{-1, -1, -9500}, mgl32.Vec3{1, 1, -9000}, false},
		{"enclosing", mgl32.Vec3{-100, -100, -100}, mgl32.Vec3{100, 100, 100}, true},
	}
	for _, tt := range tests {
		if got := f.IntersectsAABB(tt.min, tt.max); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestInfoLogTrimsPadding(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("0:3(1): error: syntax error\n\x00\x00"), "0:3(1): error: syntax error"},
		{[]byte("\x00"), ""},
		{[]byte("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := infoLog(tt.in); got != tt.want {
			t.Errorf("infoLog(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
