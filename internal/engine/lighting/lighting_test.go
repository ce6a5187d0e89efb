package lighting

import (
	gomath "math"
	"testing"

	pmath "github.com/Mingwen111/3d-car-viewer/pkg/math"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		az, el float32
		want   pmath.Vec3
	}{
		{0, 0, pmath.Vec3{X: 0, Y: 0, Z: 1}},
		{90, 0, pmath.Vec3{X: 1, Y: 0, Z: 0}},
		{0, 90, pmath.Vec3{X: 0, Y: 1, Z: 0}},
	}
	for _, tt := range tests {
		got := SunDirection(tt.az, tt.el)
		if got.Sub(tt.want).Length() > 1e-5 {
			t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.az, tt.el, got, tt.want)
		}
		if l := got.Length(); gomath.Abs(float64(l)-1) > 1e-5 {
			t.Errorf("SunDirection(%v, %v) length %v", tt.az, tt.el, l)
		}
	}
}

func TestPointLightBufferPacking(t *testing.T) {
	b := NewPointLightBuffer()
	lights := make([]PointLight, MaxPointLights+3)
	for i := range lights {
		lights[i] = PointLight{
			Position:  pmath.Vec3{X: float32(i)},
			Color:     [3]float32{2, -1, 0.5},
			Intensity: 2,
		}
	}
	b.SetLights(lights)

	if b.Count() != MaxPointLights {
		t.Fatalf("Count() = %d, want %d", b.Count(), MaxPointLights)
	}
	if got := b.Lights[0].Color; got != [3]float32{1, 0, 0.5} {
		t.Errorf("color not clamped: %v", got)
	}
	if b.Lights[0].Range != 1 {
		t.Errorf("zero range should default to 1, got %v", b.Lights[0].Range)
	}
	pos := b.Positions()
	if len(pos) != MaxPointLights*3 || pos[3] != 1 {
		t.Errorf("Positions() = %v", pos[:6])
	}
	if col := b.Colors(); col[0] != 2 || col[2] != 1 {
		t.Errorf("Colors() not premultiplied: %v", col[:3])
	}
}

func TestStudioRig(t *testing.T) {
	bounds := pmath.AABB{Min: pmath.Vec3{X: -1, Y: 0, Z: -2}, Max: pmath.Vec3{X: 1, Y: 1.4, Z: 2}}
	rig := StudioRig(bounds)

	if !rig.Sun.CastShadow {
		t.Error("key light should cast shadows")
	}
	if rig.Sun.Direction.Y <= 0 {
		t.Errorf("key light should come from above, got %v", rig.Sun.Direction)
	}
	if len(rig.Points) != 2 {
		t.Fatalf("expected two flank lights, got %d", len(rig.Points))
	}
	if rig.Points[0].Position.X <= bounds.Max.X || rig.Points[1].Position.X >= bounds.Min.X {
		t.Errorf("flank lights should sit outside the body: %v %v", rig.Points[0].Position, rig.Points[1].Position)
	}

	empty := StudioRig(pmath.EmptyAABB())
	if empty.Points[0].Range <= 0 {
		t.Error("empty bounds should still yield usable ranges")
	}
}
