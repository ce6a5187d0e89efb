package scene

import "strings"

// AlphaMode mirrors the glTF alpha modes.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

// Material is a metallic-roughness surface description.
type Material struct {
	Name        string
	BaseColor   [4]float32
	Emissive    [3]float32
	Metallic    float32
	Roughness   float32
	AlphaMode   AlphaMode
	AlphaCutoff float32
	DoubleSided bool
}

// DefaultMaterial is used for primitives without a material.
func DefaultMaterial() Material {
	return Material{
		Name:        "default",
		BaseColor:   [4]float32{0.8, 0.8, 0.8, 1},
		Metallic:    0,
		Roughness:   0.6,
		AlphaCutoff: 0.5,
	}
}

// Translucent reports whether the material needs blending.
func (m Material) Translucent() bool {
	return m.AlphaMode == AlphaBlend && m.BaseColor[3] < 1
}

// Car material tuning thresholds.
const (
	glassOpacity      = 0.35
	glassRoughness    = 0.05
	paintMaxRoughness = 0.35
	paintMinRoughness = 0.12
	chromeRoughness   = 0.15
)

// TuneForCar adjusts materials by name so exported car models read well
// under the studio rig: glass becomes translucent and glossy, body paint
// gets a clear-coat sheen, and chrome trim becomes a mirror-like metal.
func (m *Material) TuneForCar() {
	name := strings.ToLower(m.Name)
	switch {
	case containsAny(name, "glass", "window", "windshield", "lens"):
		m.AlphaMode = AlphaBlend
		m.BaseColor[3] = min(m.BaseColor[3], glassOpacity)
		m.Roughness = glassRoughness
		m.Metallic = 0
		m.DoubleSided = true
	case containsAny(name, "paint", "body", "carpaint"):
		m.Roughness = min(max(m.Roughness, paintMinRoughness), paintMaxRoughness)
	case containsAny(name, "chrome", "rim", "metal"):
		m.Metallic = 1
		m.Roughness = min(m.Roughness, chromeRoughness)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
