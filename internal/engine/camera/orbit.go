package camera

import (
	gomath "math"

	"github.com/charmbracelet/harmonica"

	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

const settleEpsilon = 1e-4

// OrbitOptions configures OrbitControls.
type OrbitOptions struct {
	FPS          int
	Frequency    float64
	DampingRatio float64
	RotateSpeed  float32
	ZoomSpeed    float32
}

// axis is one damped spherical coordinate.
type axis struct {
	pos, vel, goal float64
}

func (a *axis) snap(v float64) {
	a.pos, a.goal, a.vel = v, v, 0
}

func (a *axis) settled() bool {
	return gomath.Abs(a.goal-a.pos) < settleEpsilon && gomath.Abs(a.vel) < settleEpsilon
}

// OrbitControls rotates and zooms a camera around a pivot. Drag and zoom
// move goal values; Update eases the camera toward them with critically
// damped springs.
type OrbitControls struct {
	Pivot   math.Vec3
	Enabled bool

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	RotateSpeed float32
	ZoomSpeed   float32

	yaw, pitch, distance axis
	spring               harmonica.Spring
}

// NewOrbitControls creates enabled controls. Springs step once per call to
// Update at opts.FPS.
func NewOrbitControls(opts OrbitOptions) *OrbitControls {
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	return &OrbitControls{
		Enabled:     true,
		MinDistance: 0.01,
		MaxDistance: 1e6,
		MinPitch:    -0.2,
		MaxPitch:    gomath.Pi/2 - 0.01,
		RotateSpeed: opts.RotateSpeed,
		ZoomSpeed:   opts.ZoomSpeed,
		spring:      harmonica.NewSpring(harmonica.FPS(fps), opts.Frequency, opts.DampingRatio),
	}
}

// SyncFrom adopts the camera's current pose as both position and goal,
// orbiting around the camera's look-at.
func (o *OrbitControls) SyncFrom(cam *Perspective) {
	o.Pivot = cam.Target
	off := cam.Position.Sub(cam.Target)
	d := off.Length()
	if d == 0 {
		o.distance.snap(0)
		return
	}
	horiz := gomath.Hypot(float64(off.X), float64(off.Z))
	pitch := gomath.Atan2(float64(off.Y), horiz)
	yaw := gomath.Atan2(float64(off.X), float64(off.Z))
	o.yaw.snap(yaw)
	o.pitch.snap(pitch)
	o.distance.snap(float64(d))
}

// Drag rotates the goal by a pointer delta in pixels.
func (o *OrbitControls) Drag(dx, dy float32) {
	if !o.Enabled {
		return
	}
	o.yaw.goal -= float64(dx * o.RotateSpeed)
	lo := min(float64(o.MinPitch), o.pitch.pos)
	hi := max(float64(o.MaxPitch), o.pitch.pos)
	o.pitch.goal = clamp(o.pitch.goal+float64(dy*o.RotateSpeed), lo, hi)
}

// Zoom scales the goal distance; positive delta moves closer.
func (o *OrbitControls) Zoom(delta float32) {
	if !o.Enabled {
		return
	}
	lo := min(float64(o.MinDistance), o.distance.pos)
	hi := max(float64(o.MaxDistance), o.distance.pos)
	g := o.distance.goal * (1 - float64(delta*o.ZoomSpeed))
	o.distance.goal = clamp(g, lo, hi)
}

// Update advances the springs by one frame and writes the pose into cam.
// It does nothing while the controls are disabled. The return value reports
// whether the camera is still moving.
func (o *OrbitControls) Update(cam *Perspective) bool {
	if !o.Enabled {
		return false
	}
	for _, a := range []*axis{&o.yaw, &o.pitch, &o.distance} {
		a.pos, a.vel = o.spring.Update(a.pos, a.vel, a.goal)
	}
	cam.SetPose(o.Pivot.Add(o.offset()), o.Pivot)
	return !(o.yaw.settled() && o.pitch.settled() && o.distance.settled())
}

// Distance returns the current (damped) distance from the pivot.
func (o *OrbitControls) Distance() float32 {
	return float32(o.distance.pos)
}

func (o *OrbitControls) offset() math.Vec3 {
	cp := gomath.Cos(o.pitch.pos)
	return math.Vec3{
		X: float32(o.distance.pos * cp * gomath.Sin(o.yaw.pos)),
		Y: float32(o.distance.pos * gomath.Sin(o.pitch.pos)),
		Z: float32(o.distance.pos * cp * gomath.Cos(o.yaw.pos)),
	}
}

func clamp(v, lo, hi float64) float64 {
	return gomath.Max(lo, gomath.Min(hi, v))
}
