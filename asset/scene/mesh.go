package scene

import (
	"math"

	"github.com/achilleasa/meshimport/types"
)

// A vertex index and the weight a bone exerts on it.
type VertexWeight struct {
	Vertex uint32
	Weight float32
}

// A named set of weighted vertices. Groups produced by the compiler are
// named after the numeric bone index used by the mesh file.
type VertexGroup struct {
	Name    string
	Weights []VertexWeight

	// Lookup of vertex index to its position in Weights.
	index map[uint32]int
}

// Create a new empty vertex group.
func NewVertexGroup(name string) *VertexGroup {
	return &VertexGroup{
		Name:  name,
		index: make(map[uint32]int),
	}
}

// Set the weight for a vertex. If the vertex is already a member of the
// group its weight is replaced.
func (g *VertexGroup) Set(vertex uint32, weight float32) {
	if g.index == nil {
		g.index = make(map[uint32]int)
		for pos, vw := range g.Weights {
			g.index[vw.Vertex] = pos
		}
	}

	if pos, exists := g.index[vertex]; exists {
		g.Weights[pos].Weight = weight
		return
	}

	g.index[vertex] = len(g.Weights)
	g.Weights = append(g.Weights, VertexWeight{Vertex: vertex, Weight: weight})
}

// Get the weight of a vertex and whether it belongs to the group.
func (g *VertexGroup) Weight(vertex uint32) (float32, bool) {
	if g.index != nil {
		if pos, exists := g.index[vertex]; exists {
			return g.Weights[pos].Weight, true
		}
		return 0, false
	}
	for _, vw := range g.Weights {
		if vw.Vertex == vertex {
			return vw.Weight, true
		}
	}
	return 0, false
}

// The face and vertex ranges contributed by one mesh fragment.
type FragmentRange struct {
	FirstFace   int
	FaceCount   int
	FirstVertex int
	VertexCount int
}

// An assembled mesh built from all fragments of a mesh file.
type Mesh struct {
	Name string

	Positions []types.Vec3
	Faces     [][3]uint32

	// Per-corner attributes indexed by face*3 + corner.
	CornerUVs     []types.Vec2
	CornerNormals []types.Vec3

	// Vertex groups in order of first reference.
	VertexGroups []*VertexGroup

	// The ranges contributed by each merged fragment, in file order.
	Fragments []FragmentRange

	// True if at least one fragment carried skin data.
	Skinned bool

	// The bone count declared by the mesh file header (0 if absent).
	DeclaredBoneCount int
}

// Create a new empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name: name,
	}
}

// Get the uv coordinates for a face corner.
func (m *Mesh) CornerUV(face, corner int) types.Vec2 {
	return m.CornerUVs[face*3+corner]
}

// Get the split normal for a face corner.
func (m *Mesh) CornerNormal(face, corner int) types.Vec3 {
	return m.CornerNormals[face*3+corner]
}

// Lookup a vertex group by name.
func (m *Mesh) Group(name string) *VertexGroup {
	for _, g := range m.VertexGroups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Lookup a vertex group by name, creating it if it does not exist.
func (m *Mesh) GroupOrCreate(name string) *VertexGroup {
	if g := m.Group(name); g != nil {
		return g
	}
	g := NewVertexGroup(name)
	m.VertexGroups = append(m.VertexGroups, g)
	return g
}

// Get the mesh axis aligned bounding box.
func (m *Mesh) BBox() [2]types.Vec3 {
	if len(m.Positions) == 0 {
		return [2]types.Vec3{}
	}

	bbox := [2]types.Vec3{
		{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for _, p := range m.Positions {
		bbox[0] = types.MinVec3(bbox[0], p)
		bbox[1] = types.MaxVec3(bbox[1], p)
	}
	return bbox
}
