package shadow

import (
	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// DirectionalLightMatrix returns the view-projection of an orthographic
// shadow camera for a directional light. lightDir points towards the light.
// The frustum is a cube around the bounding sphere of bounds, padded so
// the model's silhouette never touches the map edge. receiverPad extends
// the box to include a ground plane below the model.
func DirectionalLightMatrix(lightDir math.Vec3, bounds math.AABB, receiverPad float32) math.Mat4 {
	center := bounds.Center()
	radius := bounds.Radius()*(1+receiverPad) + 0.01

	dist := radius * 2
	eye := center.Add(lightDir.Normalize().Scale(dist))

	up := math.Vec3{X: 0, Y: 1, Z: 0}
	if abs32(lightDir.Normalize().Y) > 0.99 {
		up = math.Vec3{X: 0, Y: 0, Z: 1}
	}
	view := math.LookAt(eye, center, up)

	half := radius * 1.1
	proj := math.Ortho(-half, half, -half, half, 0.01, dist+half)
	return proj.Mul(view)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
