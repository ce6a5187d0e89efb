package scene

import (
	"errors"
	"testing"

	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

func box(t *testing.T, name string, min, max math.Vec3) *Mesh {
	t.Helper()
	pos := []math.Vec3{
		min,
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
		max,
	}
	m, err := NewMesh(name, pos, nil, []uint32{0, 1, 2, 0, 2, 3}, DefaultMaterial())
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	return m
}

func TestNodeBoundsAppliesTransforms(t *testing.T) {
	root := NewNode("root")
	child := NewNode("wheel")
	child.Local = math.Translate(10, 0, 0)
	child.Mesh = box(t, "wheel", math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})
	body := NewNode("body")
	body.Mesh = box(t, "body", math.Vec3{}, math.Vec3{X: 2, Y: 1, Z: 4})
	root.Add(body, child)

	b := root.Bounds()
	if b.Min != (math.Vec3{X: 0, Y: -1, Z: -1}) || b.Max != (math.Vec3{X: 11, Y: 1, Z: 4}) {
		t.Errorf("Bounds() = %+v", b)
	}

	child.Visible = false
	b = root.Bounds()
	if b.Max.X != 2 {
		t.Errorf("hidden node should not contribute, got %+v", b)
	}
}

func TestSceneBackgroundRestore(t *testing.T) {
	s := New(RGB(0, 0, 0))
	bg := s.Background

	restore := s.WithoutBackground()
	if s.Background != nil {
		t.Fatal("background should be cleared")
	}
	if s.ClearColor().A != 0 {
		t.Error("cleared background should clear to transparent")
	}
	restore()
	if s.Background != bg {
		t.Errorf("background not restored: %v", s.Background)
	}
}

func TestSetModelRelightsAndBumpsVersion(t *testing.T) {
	s := New(nil)
	model := NewNode("car")
	model.Mesh = box(t, "body", math.Vec3{X: -1, Y: 0, Z: -2}, math.Vec3{X: 1, Y: 1, Z: 2})

	s.SetModel(model)
	if s.Version != 1 {
		t.Errorf("Version = %d, want 1", s.Version)
	}
	if s.Root.Find("car") == nil {
		t.Error("model not attached to root")
	}
	if got := s.Bounds().Size(); got != (math.Vec3{X: 2, Y: 1, Z: 4}) {
		t.Errorf("scene size = %v", got)
	}
	if p := s.Lights.Points[0].Position; p.X <= 1 {
		t.Errorf("lights not sized to model: %v", p)
	}
}

func TestDrawListSplitsTranslucent(t *testing.T) {
	root := NewNode("root")
	body := NewNode("body")
	body.Mesh = box(t, "body", math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})

	near := NewNode("glass-near")
	near.Mesh = box(t, "glass", math.Vec3{Z: 4}, math.Vec3{X: 1, Y: 1, Z: 5})
	near.Mesh.Material = Material{Name: "Glass", BaseColor: [4]float32{1, 1, 1, 1}}
	near.Mesh.Material.TuneForCar()

	far := NewNode("glass-far")
	far.Mesh = box(t, "glass", math.Vec3{Z: -5}, math.Vec3{X: 1, Y: 1, Z: -4})
	far.Mesh.Material = near.Mesh.Material

	root.Add(body, near, far)
	s := &Scene{Root: root}

	opaque, translucent := s.DrawList(math.Vec3{Z: 10})
	if len(opaque) != 1 || len(translucent) != 2 {
		t.Fatalf("opaque=%d translucent=%d", len(opaque), len(translucent))
	}
	if translucent[0].Node != far {
		t.Error("translucent items should be drawn back to front")
	}
}

func TestMeshValidate(t *testing.T) {
	_, err := NewMesh("bad", []math.Vec3{{}, {}, {}}, nil, []uint32{0, 1, 5}, DefaultMaterial())
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
	_, err = NewMesh("short", []math.Vec3{{}, {}}, nil, []uint32{0, 1}, DefaultMaterial())
	if err == nil {
		t.Error("expected error for non-triangle index count")
	}
}

func TestComputeNormals(t *testing.T) {
	// Two triangles folded along the X axis.
	pos := []math.Vec3{{X: 0}, {X: 1}, {Y: 1}, {Z: -1}}
	m, err := NewMesh("fold", pos, nil, []uint32{0, 1, 2, 0, 3, 1}, DefaultMaterial())
	if err != nil {
		t.Fatal(err)
	}

	m.ComputeNormals(true)
	if len(m.Normals) != 4 {
		t.Fatalf("smooth normals len = %d", len(m.Normals))
	}
	if n := m.Normals[2]; n.Sub(math.Vec3{Z: 1}).Length() > 1e-5 {
		t.Errorf("unshared vertex normal = %v, want +Z", n)
	}
	if l := m.Normals[0].Length(); l < 0.999 || l > 1.001 {
		t.Errorf("shared normal not unit: %v", l)
	}

	m.ComputeNormals(false)
	if len(m.Positions) != 6 || len(m.Normals) != 6 || len(m.Indices) != 6 {
		t.Fatalf("flat split: %d positions %d normals %d indices", len(m.Positions), len(m.Normals), len(m.Indices))
	}
	if m.Normals[0] != m.Normals[2] {
		t.Error("flat normals should be equal within a face")
	}
	if got := len(m.Interleaved()); got != 36 {
		t.Errorf("Interleaved() len = %d, want 36", got)
	}
}

func TestTuneForCar(t *testing.T) {
	tests := []struct {
		name      string
		in        Material
		translucent bool
		metallic  float32
		roughMax  float32
	}{
		{"glass", Material{Name: "Front_Windshield", BaseColor: [4]float32{1, 1, 1, 1}, Roughness: 0.8}, true, 0, glassRoughness},
		{"paint", Material{Name: "CarPaint_Red", BaseColor: [4]float32{1, 0, 0, 1}, Roughness: 0.9}, false, 0, paintMaxRoughness},
		{"chrome", Material{Name: "rim_chrome", BaseColor: [4]float32{1, 1, 1, 1}, Roughness: 0.5}, false, 1, chromeRoughness},
		{"tire", Material{Name: "tire", BaseColor: [4]float32{0, 0, 0, 1}, Roughness: 0.9}, false, 0, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.in
			m.TuneForCar()
			if m.Translucent() != tt.translucent {
				t.Errorf("Translucent() = %v", m.Translucent())
			}
			if m.Metallic != tt.metallic {
				t.Errorf("Metallic = %v, want %v", m.Metallic, tt.metallic)
			}
			if m.Roughness > tt.roughMax {
				t.Errorf("Roughness = %v, want <= %v", m.Roughness, tt.roughMax)
			}
		})
	}
}
