package lighting

import pmath "github.com/Mingwen111/3d-car-viewer/pkg/math"

// Directional is a light infinitely far away.
type Directional struct {
	// Direction points from the scene towards the light.
	Direction  pmath.Vec3
	Color      [3]float32
	Intensity  float32
	CastShadow bool
}

// Hemisphere blends a sky color from above with a ground color from below.
type Hemisphere struct {
	Sky       [3]float32
	Ground    [3]float32
	Intensity float32
}

// Rig is the full set of lights applied to a scene.
type Rig struct {
	Ambient    [3]float32
	Hemisphere Hemisphere
	Sun        Directional
	Fill       Directional
	Points     []PointLight
}

// StudioRig returns a neutral three-point setup sized to bounds: a
// shadow-casting key light high in front, a cool fill from the opposite side
// and a pair of warm point lights grazing the flanks to pick out body lines.
func StudioRig(bounds pmath.AABB) Rig {
	c := bounds.Center()
	s := bounds.Size()
	r := bounds.Radius()
	if bounds.IsEmpty() || r == 0 {
		c, s, r = pmath.Vec3{}, pmath.Vec3{X: 1, Y: 1, Z: 1}, 1
	}

	flank := func(side float32) PointLight {
		return PointLight{
			Position:  c.Add(pmath.Vec3{X: side * s.X, Y: s.Y, Z: 0}),
			Color:     [3]float32{1, 0.96, 0.9},
			Range:     r * 4,
			Intensity: 0.6,
		}
	}

	return Rig{
		Ambient: [3]float32{0.12, 0.12, 0.13},
		Hemisphere: Hemisphere{
			Sky:       [3]float32{0.85, 0.9, 1},
			Ground:    [3]float32{0.25, 0.22, 0.2},
			Intensity: 0.6,
		},
		Sun: Directional{
			Direction:  SunDirection(35, 55),
			Color:      [3]float32{1, 0.98, 0.94},
			Intensity:  2.2,
			CastShadow: true,
		},
		Fill: Directional{
			Direction: SunDirection(215, 25),
			Color:     [3]float32{0.75, 0.82, 1},
			Intensity: 0.5,
		},
		Points: []PointLight{flank(1.5), flank(-1.5)},
	}
}
