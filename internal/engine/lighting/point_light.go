package lighting

import pmath "github.com/Mingwen111/3d-car-viewer/pkg/math"

// MaxPointLights is the size of the point light arrays in the shader.
const MaxPointLights = 8

// PointLight is an omni light with linear falloff to zero at Range.
type PointLight struct {
	Position  pmath.Vec3
	Color     [3]float32
	Range     float32
	Intensity float32
}

// PointLightBuffer packs point lights into fixed-size arrays for upload.
type PointLightBuffer struct {
	Lights []PointLight
}

// NewPointLightBuffer creates an empty buffer.
func NewPointLightBuffer() *PointLightBuffer {
	return &PointLightBuffer{Lights: make([]PointLight, 0, MaxPointLights)}
}

// Count returns the number of lights that will be uploaded.
func (b *PointLightBuffer) Count() int {
	return len(b.Lights)
}

// SetLights replaces the buffer contents, dropping lights past
// MaxPointLights and clamping colors to [0,1].
func (b *PointLightBuffer) SetLights(lights []PointLight) {
	b.Lights = b.Lights[:0]
	for _, l := range lights {
		if len(b.Lights) == MaxPointLights {
			break
		}
		for i := range l.Color {
			l.Color[i] = min(max(l.Color[i], 0), 1)
		}
		if l.Range <= 0 {
			l.Range = 1
		}
		b.Lights = append(b.Lights, l)
	}
}

// Positions returns xyz triples padded to MaxPointLights.
func (b *PointLightBuffer) Positions() []float32 {
	out := make([]float32, MaxPointLights*3)
	for i, l := range b.Lights {
		out[i*3+0] = l.Position.X
		out[i*3+1] = l.Position.Y
		out[i*3+2] = l.Position.Z
	}
	return out
}

// Colors returns rgb triples premultiplied by intensity.
func (b *PointLightBuffer) Colors() []float32 {
	out := make([]float32, MaxPointLights*3)
	for i, l := range b.Lights {
		out[i*3+0] = l.Color[0] * l.Intensity
		out[i*3+1] = l.Color[1] * l.Intensity
		out[i*3+2] = l.Color[2] * l.Intensity
	}
	return out
}

// Ranges returns per-light falloff distances.
func (b *PointLightBuffer) Ranges() []float32 {
	out := make([]float32, MaxPointLights)
	for i, l := range b.Lights {
		out[i] = l.Range
	}
	return out
}
