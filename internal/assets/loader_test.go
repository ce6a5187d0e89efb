package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Mingwen111/3d-car-viewer/internal/engine/scene"
)

// writeBox saves a GLB with one 2x1x4 box-ish triangle fan and a glass
// material, translated by +1 on X.
func writeBox(t *testing.T, dir string) string {
	t.Helper()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{
		{-1, 0, -2}, {1, 0, -2}, {1, 1, 2}, {-1, 1, 2},
	})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})

	doc.Materials = []*gltf.Material{{
		Name: "Windshield_Glass",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{0.2, 0.2, 0.2, 1},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(0.5),
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "Body",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: uint32(pos)},
			Indices:    gltf.Index(uint32(idx)),
			Material:   gltf.Index(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "Car", Mesh: gltf.Index(0), Translation: [3]float32{1, 0, 0}}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(dir, "car.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func drain(t *testing.T, ch <-chan Event) (progress []float64, final Event) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return progress, final
			}
			switch e := ev.(type) {
			case Progress:
				if final != nil {
					t.Fatalf("progress after terminal event")
				}
				progress = append(progress, e.Ratio)
			case Loaded, Failed:
				if final != nil {
					t.Fatalf("second terminal event %#v", ev)
				}
				final = ev
			}
		case <-timeout:
			t.Fatal("load did not finish")
		}
	}
}

func TestLoadGLB(t *testing.T) {
	path := writeBox(t, t.TempDir())
	l := NewLoader(true)

	progress, final := drain(t, l.Load(context.Background(), path))

	loaded, ok := final.(Loaded)
	if !ok {
		t.Fatalf("final event = %#v, want Loaded", final)
	}
	for i, r := range progress {
		if r < 0 || r > 1 {
			t.Errorf("progress[%d] = %v, out of range", i, r)
		}
		if i > 0 && r < progress[i-1] {
			t.Errorf("progress went backwards: %v", progress)
		}
	}

	size := loaded.Bounds.Size()
	if size.X != 2 || size.Y != 1 || size.Z != 4 {
		t.Errorf("bounds size = %+v, want (2,1,4)", size)
	}
	if c := loaded.Bounds.Center(); c.X != 1 {
		t.Errorf("center.X = %v, want node translation applied", c.X)
	}

	car := loaded.Root.Find("Car")
	if car == nil || car.Mesh == nil {
		t.Fatal("node Car with mesh not found")
	}
	m := car.Mesh
	if len(m.Normals) != len(m.Positions) {
		t.Errorf("normals not computed: %d for %d positions", len(m.Normals), len(m.Positions))
	}
	if m.Material.AlphaMode != scene.AlphaBlend || !m.Material.Translucent() {
		t.Errorf("glass material not tuned: %+v", m.Material)
	}
	if !m.CastShadow || !m.ReceiveShadow {
		t.Error("meshes should cast and receive shadows")
	}
}

func TestLoadRereadsFile(t *testing.T) {
	path := writeBox(t, t.TempDir())
	l := NewLoader(false)

	if _, final := drain(t, l.Load(context.Background(), path)); final == nil {
		t.Fatal("no terminal event")
	} else if _, ok := final.(Loaded); !ok {
		t.Fatalf("first load = %#v, want Loaded", final)
	}

	if err := os.WriteFile(path, []byte("not a model"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, final := drain(t, l.Load(context.Background(), path)); final == nil {
		t.Fatal("no terminal event")
	} else if _, ok := final.(Failed); !ok {
		t.Fatalf("second load = %#v, want Failed from the rewritten file", final)
	}
}

func TestLoadMissingFile(t *testing.T) {
	l := NewLoader(true)
	_, final := drain(t, l.Load(context.Background(), filepath.Join(t.TempDir(), "nope.glb")))

	failed, ok := final.(Failed)
	if !ok {
		t.Fatalf("final event = %#v, want Failed", final)
	}
	if !strings.Contains(failed.Message, "opening model") {
		t.Errorf("message = %q", failed.Message)
	}
}

func TestLoadGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.glb")
	if err := os.WriteFile(path, []byte("not a model"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, final := drain(t, NewLoader(true).Load(context.Background(), path))
	if _, ok := final.(Failed); !ok {
		t.Fatalf("final event = %#v, want Failed", final)
	}
}
