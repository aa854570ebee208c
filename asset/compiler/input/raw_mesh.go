package input

import "github.com/achilleasa/meshimport/types"

// Skin weights and the bone indices they refer to. Both are always present
// together.
type SkinData struct {
	Weights     types.Vec4
	BoneIndices [4]int
}

// A single parsed vertex row.
type RawVertex struct {
	Position types.Vec3
	Normal   types.Vec3

	// Texture coordinates with the v coordinate already flipped.
	UV types.Vec2

	// Skin data; nil for unskinned rows.
	Skin *SkinData

	// The 4-tuple between the normal and the uv groups (vertex color in
	// most exports).
	Color *types.Vec4

	// Optional trailing 4-tuple.
	Extra *types.Vec4
}

// A mesh fragment as read from one index block and the vertex block that
// follows it.
type RawMeshFragment struct {
	Indices  []uint32
	Vertices []RawVertex

	// True if the vertices carry skin data.
	Skinned bool

	// Source file and line number of the vertex block header.
	File string
	Line int
}

// Returns true if the fragment carries no geometry.
func (f *RawMeshFragment) IsEmpty() bool {
	return len(f.Indices) == 0 || len(f.Vertices) == 0
}

// Returns the first index that points past the vertex list or -1 if all
// indices are valid.
func (f *RawMeshFragment) FirstInvalidIndex() int {
	for pos, index := range f.Indices {
		if int(index) >= len(f.Vertices) {
			return pos
		}
	}
	return -1
}
