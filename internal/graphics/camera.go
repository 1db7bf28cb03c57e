package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying perspective camera
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float64 // degrees
	Pitch       float64 // degrees
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	firstMouse bool
	lastX      float64
	lastY      float64
}

func NewCamera(width, height int, position mgl32.Vec3) *Camera {
	return &Camera{
		Position:    position,
		Yaw:         -90,
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.5,
		FarPlane:    8000.0,
		firstMouse:  true,
	}
}

// HandleMouseMovement turns the camera by the cursor delta
func (c *Camera) HandleMouseMovement(xpos, ypos float64) {
	if c.firstMouse {
		c.lastX = xpos
		c.lastY = ypos
		c.firstMouse = false
		return
	}

	xoffset := xpos - c.lastX
	yoffset := c.lastY - ypos
	c.lastX = xpos
	c.lastY = ypos

	sensitivity := 0.1
	c.Yaw += xoffset * sensitivity
	c.Pitch += yoffset * sensitivity

	// Constrain pitch
	if c.Pitch > 89.0 {
		c.Pitch = 89.0
	}
	if c.Pitch < -89.0 {
		c.Pitch = -89.0
	}
}

// ResetMouse makes the next cursor event only record its position
func (c *Camera) ResetMouse() {
	c.firstMouse = true
}

func (c *Camera) Front() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(c.Yaw))
	pt := mgl32.DegToRad(float32(c.Pitch))
	fx := float32(math.Cos(float64(y)) * math.Cos(float64(pt)))
	fy := float32(math.Sin(float64(pt)))
	fz := float32(math.Sin(float64(y)) * math.Cos(float64(pt)))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Move translates the camera along its local axes
func (c *Camera) Move(forward, right, up float32) {
	c.Position = c.Position.
		Add(c.Front().Mul(forward)).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}
