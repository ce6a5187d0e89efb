// Package lighting describes the light rig used to show a model.
package lighting

import (
	"math"

	pmath "github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// SunDirection converts an azimuth around Y and an elevation above the
// horizon, both in degrees, into a unit vector pointing towards the light.
func SunDirection(azimuth, elevation float32) pmath.Vec3 {
	az := float64(azimuth) * math.Pi / 180
	el := float64(elevation) * math.Pi / 180
	return pmath.Vec3{
		X: float32(math.Cos(el) * math.Sin(az)),
		Y: float32(math.Sin(el)),
		Z: float32(math.Cos(el) * math.Cos(az)),
	}
}
