// Package director drives timed, eased camera transitions between poses.
package director

import (
	"time"

	"github.com/Mingwen111/3d-car-viewer/internal/engine/camera"
	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

var worldUp = math.Vec3{X: 0, Y: 1, Z: 0}

// Pose is a camera position and the point it looks at.
type Pose struct {
	Position math.Vec3
	LookAt   math.Vec3
}

// Director moves a camera from its current pose to a target pose over a
// fixed duration. While a transition is active the director owns the camera.
type Director struct {
	// Clock supplies the start time of new transitions. Nil means time.Now.
	Clock func() time.Time

	cam      *camera.Perspective
	onDone   func(Pose)
	active   bool
	started  time.Time
	duration time.Duration

	from, to         Pose
	fromTarget       math.Vec3
	fromUp           math.Vec3
	fromRot, toRot   math.Quat
	fromDist, toDist float32
	lookAt           math.Vec3
}

// New returns an idle director for cam.
func New(cam *camera.Perspective) *Director {
	return &Director{cam: cam}
}

// OnComplete registers fn to run once when a transition reaches its target.
func (d *Director) OnComplete(fn func(Pose)) {
	d.onDone = fn
}

// Active reports whether a transition is in flight.
func (d *Director) Active() bool {
	return d.active
}

// LookAt returns the interpolated look-at point of the current transition,
// or the camera target when idle.
func (d *Director) LookAt() math.Vec3 {
	if !d.active {
		return d.cam.Target
	}
	return d.lookAt
}

// MoveTo starts a transition from the camera's current pose to position,
// looking at lookAt. A transition already in flight is superseded and the
// new one starts from wherever the camera is now.
func (d *Director) MoveTo(position, lookAt math.Vec3, duration time.Duration) {
	d.from = Pose{Position: d.cam.Position, LookAt: d.LookAt()}
	d.to = Pose{Position: position, LookAt: lookAt}
	d.fromTarget = d.cam.Target
	d.fromUp = d.cam.Up
	d.fromRot = d.cam.Orientation()
	d.toRot = math.QuatLookRotation(position, lookAt, worldUp)
	d.fromDist = d.cam.LookDistance()
	d.toDist = position.Distance(lookAt)
	d.lookAt = d.from.LookAt
	d.duration = duration
	d.started = d.now()
	d.active = true
}

// Update samples the transition at now and writes the pose into the camera.
// It returns true on the update that completes the transition.
func (d *Director) Update(now time.Time) bool {
	if !d.active {
		return false
	}

	p := 1.0
	if d.duration > 0 {
		p = float64(now.Sub(d.started)) / float64(d.duration)
		p = min(max(p, 0), 1)
	}

	if p >= 1 {
		d.cam.Position = d.to.Position
		d.cam.Target = d.to.LookAt
		d.cam.Up = worldUp
		d.lookAt = d.to.LookAt
		d.active = false
		if d.onDone != nil {
			d.onDone(d.to)
		}
		return true
	}

	e := float32(Ease(p))
	if e == 0 {
		// Leave the camera exactly where the transition found it.
		d.cam.Position = d.from.Position
		d.cam.Target = d.fromTarget
		d.cam.Up = d.fromUp
		d.lookAt = d.from.LookAt
		return false
	}
	pos := d.from.Position.Lerp(d.to.Position, e)
	rot := d.fromRot.Slerp(d.toRot, e)
	dist := d.fromDist + (d.toDist-d.fromDist)*e

	d.lookAt = d.from.LookAt.Lerp(d.to.LookAt, e)
	d.cam.Position = pos
	d.cam.Target = pos.Add(rot.Forward().Scale(dist))
	d.cam.Up = rot.Up()
	return false
}

func (d *Director) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}
