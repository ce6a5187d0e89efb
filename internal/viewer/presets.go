package viewer

import (
	"fmt"

	"github.com/Mingwen111/3d-car-viewer/internal/engine/camera"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/director"
	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// Preset names a canned viewpoint.
type Preset string

const (
	PresetTop    Preset = "top"
	PresetSide   Preset = "side"
	PresetDriver Preset = "driver"
)

// Presets lists the viewpoints in button order.
var Presets = []Preset{PresetTop, PresetSide, PresetDriver}

// topOffsetZ keeps the top view off the pole of the look-at basis.
const topOffsetZ = 0.001

// PresetPose derives the pose for p from the model bounds. The model is
// assumed to face +Z with +Y up.
func PresetPose(p Preset, bounds math.AABB, fovDeg, margin float32) (director.Pose, error) {
	c := bounds.Center()
	s := bounds.Size()
	d := camera.FitDistance(bounds, fovDeg, margin)

	switch p {
	case PresetTop:
		return director.Pose{
			Position: c.Add(math.Vec3{X: 0, Y: d, Z: topOffsetZ}),
			LookAt:   c,
		}, nil
	case PresetSide:
		return director.Pose{
			Position: c.Add(math.Vec3{X: d, Y: 0.1 * s.Y, Z: 0}),
			LookAt:   c,
		}, nil
	case PresetDriver:
		eye := c.Add(math.Vec3{X: 0.18 * s.X, Y: 0.25 * s.Y, Z: -0.05 * s.Z})
		return director.Pose{
			Position: eye,
			LookAt:   eye.Add(math.Vec3{X: 0, Y: -0.05 * s.Y, Z: s.Z}),
		}, nil
	}
	return director.Pose{}, fmt.Errorf("unknown preset %q", p)
}
