// Package camera provides the viewer's perspective camera, bounds fitting
// and damped orbit controls.
package camera

import (
	gomath "math"

	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// Perspective is a look-at camera with a vertical field of view in degrees.
type Perspective struct {
	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3

	FOV    float32
	Aspect float32
	Near   float32
	Far    float32
}

// NewPerspective returns a camera at +Z looking at the origin.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	return &Perspective{
		Position: math.Vec3{X: 0, Y: 0, Z: 5},
		Up:       math.Vec3{X: 0, Y: 1, Z: 0},
		FOV:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

// SetViewport updates the aspect ratio from a drawable size.
func (c *Perspective) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// ViewMatrix returns the world-to-view transform.
func (c *Perspective) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the clip-space projection.
func (c *Perspective) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FOVRadians(), c.Aspect, c.Near, c.Far)
}

// FOVRadians returns the vertical field of view in radians.
func (c *Perspective) FOVRadians() float32 {
	return c.FOV * gomath.Pi / 180
}

// Orientation returns the rotation that points the camera's -Z at Target.
func (c *Perspective) Orientation() math.Quat {
	return math.QuatLookRotation(c.Position, c.Target, c.Up)
}

// LookDistance returns the distance from Position to Target.
func (c *Perspective) LookDistance() float32 {
	return c.Position.Distance(c.Target)
}

// SetPose moves the camera and points it at target.
func (c *Perspective) SetPose(position, target math.Vec3) {
	c.Position = position
	c.Target = target
}

// FitClipPlanes scales near/far to the size of the framed object so small
// and large models both avoid depth fighting.
func (c *Perspective) FitClipPlanes(distance, radius float32) {
	if distance <= 0 || radius <= 0 {
		return
	}
	c.Near = max(radius*0.01, 0.01)
	c.Far = (distance + radius) * 20
}
