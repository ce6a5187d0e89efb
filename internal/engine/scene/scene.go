// Package scene holds the node graph, materials and lights that make up
// what the renderer draws. It has no GL dependencies.
package scene

import (
	"github.com/Mingwen111/3d-car-viewer/internal/engine/lighting"
	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// RGB returns an opaque color.
func RGB(r, g, b float32) *Color {
	return &Color{R: r, G: g, B: b, A: 1}
}

// Scene is the root of everything drawn in a frame.
type Scene struct {
	Root   *Node
	Lights lighting.Rig

	// Background is the clear color; nil clears to fully transparent.
	Background *Color

	// Version increases whenever Root is replaced so GPU caches can rebuild.
	Version uint64
}

// New returns an empty scene with the given background.
func New(background *Color) *Scene {
	return &Scene{
		Root:       NewNode("root"),
		Lights:     lighting.StudioRig(math.EmptyAABB()),
		Background: background,
	}
}

// SetModel replaces the scene contents with model and relights it for the
// model's bounds.
func (s *Scene) SetModel(model *Node) {
	root := NewNode("root")
	if model != nil {
		root.Add(model)
	}
	s.Root = root
	s.Lights = lighting.StudioRig(s.Bounds())
	s.Version++
}

// Bounds returns the world-space bounds of every mesh in the scene.
func (s *Scene) Bounds() math.AABB {
	if s.Root == nil {
		return math.EmptyAABB()
	}
	return s.Root.Bounds()
}

// ClearColor returns the color the frame is cleared to.
func (s *Scene) ClearColor() Color {
	if s.Background == nil {
		return Color{}
	}
	return *s.Background
}

// WithoutBackground clears the background and returns a function that
// restores it. Callers defer the restore so it runs on every path.
func (s *Scene) WithoutBackground() (restore func()) {
	prev := s.Background
	s.Background = nil
	return func() { s.Background = prev }
}

// DrawItem is one mesh with its world transform.
type DrawItem struct {
	Node  *Node
	Mesh  *Mesh
	World math.Mat4
}

// DrawList flattens the graph into opaque and translucent items. Translucent
// items are sorted back to front from eye.
func (s *Scene) DrawList(eye math.Vec3) (opaque, translucent []DrawItem) {
	if s.Root == nil {
		return nil, nil
	}
	s.Root.Walk(func(n *Node, world math.Mat4) {
		if n.Mesh == nil {
			return
		}
		item := DrawItem{Node: n, Mesh: n.Mesh, World: world}
		if n.Mesh.Material.Translucent() {
			translucent = append(translucent, item)
		} else {
			opaque = append(opaque, item)
		}
	})
	sortBackToFront(translucent, eye)
	return opaque, translucent
}
