package scene

import (
	"sort"

	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// Node is an element of the scene graph with a transform relative to its
// parent.
type Node struct {
	Name     string
	Local    math.Mat4
	Mesh     *Mesh
	Children []*Node
	Visible  bool
}

// NewNode returns a visible node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Local: math.Identity(), Visible: true}
}

// Add appends children to n.
func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Walk visits n and its visible descendants depth first with their world
// transforms.
func (n *Node) Walk(fn func(node *Node, world math.Mat4)) {
	n.walk(math.Identity(), fn)
}

func (n *Node) walk(parent math.Mat4, fn func(*Node, math.Mat4)) {
	if !n.Visible {
		return
	}
	world := parent.Mul(n.Local)
	fn(n, world)
	for _, c := range n.Children {
		c.walk(world, fn)
	}
}

// Bounds returns the world-space box around every mesh under n.
func (n *Node) Bounds() math.AABB {
	b := math.EmptyAABB()
	n.Walk(func(node *Node, world math.Mat4) {
		if node.Mesh != nil {
			b = b.Union(node.Mesh.Bounds.Transform(world))
		}
	})
	return b
}

// Find returns the first node named name, or nil.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// CountMeshes returns the number of meshes and triangles under n.
func (n *Node) CountMeshes() (meshes, triangles int) {
	n.Walk(func(node *Node, _ math.Mat4) {
		if node.Mesh != nil {
			meshes++
			triangles += node.Mesh.TriangleCount()
		}
	})
	return meshes, triangles
}

func sortBackToFront(items []DrawItem, eye math.Vec3) {
	depth := func(it DrawItem) float32 {
		c := it.Mesh.Bounds.Transform(it.World).Center()
		return c.Sub(eye).Dot(c.Sub(eye))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return depth(items[i]) > depth(items[j])
	})
}
