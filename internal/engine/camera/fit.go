package camera

import (
	gomath "math"

	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// Fit margin bounds applied by FitDistance.
const (
	MinFitMargin = 1.5
	MaxFitMargin = 2.0
)

// fitDirection is the default three-quarter front view, before normalization.
var fitDirection = math.Vec3{X: 1, Y: 0.5, Z: 1}

// FitDistance returns the distance at which the largest dimension of bounds
// fills the vertical field of view, multiplied by margin. The margin is
// clamped to [MinFitMargin, MaxFitMargin]. Empty or flat bounds are treated
// as a unit cube.
func FitDistance(bounds math.AABB, fovDeg, margin float32) float32 {
	maxDim := bounds.MaxDimension()
	if maxDim <= 0 {
		maxDim = 1
	}
	margin = min(max(margin, MinFitMargin), MaxFitMargin)
	halfFOV := float64(fovDeg) * gomath.Pi / 360
	return float32(float64(maxDim/2)/gomath.Tan(halfFOV)) * margin
}

// Fit returns the initial camera position and look-at for bounds.
func Fit(bounds math.AABB, fovDeg, margin float32) (position, lookAt math.Vec3) {
	lookAt = bounds.Center()
	if bounds.IsEmpty() {
		lookAt = math.Vec3{}
	}
	d := FitDistance(bounds, fovDeg, margin)
	return lookAt.Add(fitDirection.Normalize().Scale(d)), lookAt
}
