package assets

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Mingwen111/3d-car-viewer/internal/engine/scene"
	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// errNoPositions marks a primitive without a POSITION attribute.
var errNoPositions = errors.New("primitive has no positions")

// decodeModel parses a glTF or GLB stream into a node tree. External
// buffers are resolved relative to dir.
func decodeModel(r io.Reader, dir string, smoothNormals bool) (*scene.Node, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(r, os.DirFS(dir)).Decode(doc); err != nil {
		return nil, err
	}

	b := &builder{doc: doc, smooth: smoothNormals, materials: make(map[uint32]scene.Material)}
	root := scene.NewNode("model")
	for _, idx := range b.rootNodes() {
		n, err := b.node(idx, 0)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	return root, nil
}

// maxDepth guards against cyclic node references.
const maxDepth = 64

type builder struct {
	doc       *gltf.Document
	smooth    bool
	materials map[uint32]scene.Material
}

// rootNodes returns the nodes of the default scene, or every parentless
// node when the document has no scenes.
func (b *builder) rootNodes() []uint32 {
	if len(b.doc.Scenes) > 0 {
		s := uint32(0)
		if b.doc.Scene != nil && int(*b.doc.Scene) < len(b.doc.Scenes) {
			s = *b.doc.Scene
		}
		return b.doc.Scenes[s].Nodes
	}

	child := make(map[uint32]bool)
	for _, n := range b.doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []uint32
	for i := range b.doc.Nodes {
		if !child[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func (b *builder) node(idx uint32, depth int) (*scene.Node, error) {
	if int(idx) >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", idx)
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("node hierarchy deeper than %d", maxDepth)
	}
	src := b.doc.Nodes[idx]

	n := scene.NewNode(src.Name)
	n.Local = localTransform(src)

	if src.Mesh != nil {
		meshes, err := b.mesh(*src.Mesh)
		if err != nil {
			return nil, err
		}
		if len(meshes) == 1 {
			n.Mesh = meshes[0]
		} else {
			for _, m := range meshes {
				child := scene.NewNode(m.Name)
				child.Mesh = m
				n.Add(child)
			}
		}
	}

	for _, c := range src.Children {
		child, err := b.node(c, depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

// localTransform prefers an explicit matrix over TRS.
func localTransform(n *gltf.Node) math.Mat4 {
	m := n.MatrixOrDefault()
	if m != gltf.DefaultMatrix {
		return math.Mat4(m)
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return math.FromTRS(
		math.Vec3From(t),
		math.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]},
		math.Vec3From(s),
	)
}

func (b *builder) mesh(idx uint32) ([]*scene.Mesh, error) {
	if int(idx) >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", idx)
	}
	src := b.doc.Meshes[idx]

	var out []*scene.Mesh
	for i, p := range src.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		name := src.Name
		if len(src.Primitives) > 1 {
			name = fmt.Sprintf("%s#%d", src.Name, i)
		}
		m, err := b.primitive(name, p)
		if errors.Is(err, errNoPositions) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", src.Name, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (b *builder) primitive(name string, p *gltf.Primitive) (*scene.Mesh, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, errNoPositions
	}
	raw, err := modeler.ReadPosition(b.doc, b.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	positions := toVec3s(raw)

	var normals []math.Vec3
	if nIdx, ok := p.Attributes[gltf.NORMAL]; ok {
		rawN, err := modeler.ReadNormal(b.doc, b.doc.Accessors[nIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		if len(rawN) == len(raw) {
			normals = toVec3s(rawN)
		}
	}

	var indices []uint32
	if p.Indices != nil {
		indices, err = modeler.ReadIndices(b.doc, b.doc.Accessors[*p.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	}

	mat := scene.DefaultMaterial()
	if p.Material != nil {
		mat = b.material(*p.Material)
	}

	m, err := scene.NewMesh(name, positions, normals, indices, mat)
	if err != nil {
		return nil, err
	}
	if normals == nil {
		m.ComputeNormals(b.smooth)
	}
	return m, nil
}

// material converts and tunes a glTF material, memoized by index.
func (b *builder) material(idx uint32) scene.Material {
	if m, ok := b.materials[idx]; ok {
		return m
	}
	mat := scene.DefaultMaterial()
	if int(idx) < len(b.doc.Materials) {
		src := b.doc.Materials[idx]
		mat.Name = src.Name
		if pbr := src.PBRMetallicRoughness; pbr != nil {
			mat.BaseColor = pbr.BaseColorFactorOrDefault()
			mat.Metallic = pbr.MetallicFactorOrDefault()
			mat.Roughness = pbr.RoughnessFactorOrDefault()
		}
		mat.Emissive = src.EmissiveFactor
		switch src.AlphaMode {
		case gltf.AlphaMask:
			mat.AlphaMode = scene.AlphaMask
		case gltf.AlphaBlend:
			mat.AlphaMode = scene.AlphaBlend
		}
		mat.AlphaCutoff = src.AlphaCutoffOrDefault()
		mat.DoubleSided = src.DoubleSided
	}
	mat.TuneForCar()
	b.materials[idx] = mat
	return mat
}

func toVec3s(in [][3]float32) []math.Vec3 {
	out := make([]math.Vec3, len(in))
	for i, v := range in {
		out[i] = math.Vec3From(v)
	}
	return out
}
