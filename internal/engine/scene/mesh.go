package scene

import (
	"errors"
	"fmt"

	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// Mesh is indexed triangle geometry with one material.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32
	Material  Material
	Bounds    math.AABB

	CastShadow    bool
	ReceiveShadow bool
}

// NewMesh builds a mesh and computes its bounds. Nil indices mean the
// positions are a plain triangle list.
func NewMesh(name string, positions, normals []math.Vec3, indices []uint32, mat Material) (*Mesh, error) {
	if indices == nil {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	m := &Mesh{
		Name:          name,
		Positions:     positions,
		Normals:       normals,
		Indices:       indices,
		Material:      mat,
		CastShadow:    true,
		ReceiveShadow: true,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.Bounds = math.EmptyAABB()
	for _, p := range positions {
		m.Bounds = m.Bounds.Extend(p)
	}
	return m, nil
}

// Validate checks index ranges and attribute lengths.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: %d indices is not a triangle list", m.Name, len(m.Indices))
	}
	if m.Normals != nil && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("mesh %q: %d normals for %d positions", m.Name, len(m.Normals), len(m.Positions))
	}
	n := uint32(len(m.Positions))
	for _, i := range m.Indices {
		if i >= n {
			return fmt.Errorf("mesh %q: %w (%d >= %d)", m.Name, ErrIndexRange, i, n)
		}
	}
	return nil
}

// ErrIndexRange reports an index past the end of the vertex arrays.
var ErrIndexRange = errors.New("index out of range")

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// ComputeNormals fills Normals from face geometry. Smooth normals average
// the faces sharing a vertex weighted by area; flat normals split shared
// vertices so every face gets its own.
func (m *Mesh) ComputeNormals(smooth bool) {
	if smooth {
		m.smoothNormals()
		return
	}
	m.flatNormals()
}

func (m *Mesh) smoothNormals() {
	normals := make([]math.Vec3, len(m.Positions))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		// Unnormalized cross product weights by triangle area.
		n := m.Positions[b].Sub(m.Positions[a]).Cross(m.Positions[c].Sub(m.Positions[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
}

func (m *Mesh) flatNormals() {
	positions := make([]math.Vec3, 0, len(m.Indices))
	normals := make([]math.Vec3, 0, len(m.Indices))
	indices := make([]uint32, 0, len(m.Indices))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		pa, pb, pc := m.Positions[m.Indices[t]], m.Positions[m.Indices[t+1]], m.Positions[m.Indices[t+2]]
		n := pb.Sub(pa).Cross(pc.Sub(pa)).Normalize()
		base := uint32(len(positions))
		positions = append(positions, pa, pb, pc)
		normals = append(normals, n, n, n)
		indices = append(indices, base, base+1, base+2)
	}
	m.Positions, m.Normals, m.Indices = positions, normals, indices
}

// Interleaved returns position and normal pairs as a flat vertex buffer.
func (m *Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Positions)*6)
	for i, p := range m.Positions {
		var n math.Vec3
		if i < len(m.Normals) {
			n = m.Normals[i]
		}
		out = append(out, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
	}
	return out
}
