package compiler

import (
	"strconv"
	"time"

	"github.com/achilleasa/meshimport/asset"
	"github.com/achilleasa/meshimport/asset/compiler/input"
	"github.com/achilleasa/meshimport/asset/scene"
	"github.com/achilleasa/meshimport/log"
)

type meshCompiler struct {
	fragments []*input.RawMeshFragment
	mesh      *scene.Mesh
	logger    log.Logger

	// A map of group names to vertex groups. This cache avoids a linear
	// group lookup for every skinned vertex.
	groupCache map[string]*scene.VertexGroup

	diagnostics asset.Diagnostics
}

// Compile the raw fragments produced by a mesh reader into a single mesh.
// Fragments are merged in order; each fragment's indices are re-based by the
// number of vertices contributed by the fragments before it.
//
// Fragments that carry no geometry or reference missing vertices are dropped
// and reported in the returned diagnostics. Compile fails with
// asset.ErrEmptyMeshResult if no fragment survives.
func Compile(name string, fragments []*input.RawMeshFragment) (*scene.Mesh, asset.Diagnostics, error) {
	compiler := &meshCompiler{
		fragments:  fragments,
		mesh:       scene.NewMesh(name),
		logger:     log.New("mesh compiler"),
		groupCache: make(map[string]*scene.VertexGroup),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling mesh %q from %d fragment(s)", name, len(fragments))

	for _, frag := range fragments {
		if !compiler.validate(frag) {
			continue
		}
		compiler.merge(frag)
	}

	if len(compiler.mesh.Fragments) == 0 {
		return nil, compiler.diagnostics, asset.ErrEmptyMeshResult
	}

	compiler.logger.Noticef(
		"compiled mesh %q (%d vertices, %d faces, %d vertex groups) in %d ms",
		name, len(compiler.mesh.Positions), len(compiler.mesh.Faces), len(compiler.mesh.VertexGroups),
		time.Since(start).Nanoseconds()/1e6,
	)
	return compiler.mesh, compiler.diagnostics, nil
}

// Check whether a fragment can be merged, recording a diagnostic for
// fragments that must be dropped.
func (mc *meshCompiler) validate(frag *input.RawMeshFragment) bool {
	if frag.IsEmpty() {
		missing := "indices"
		if len(frag.Vertices) == 0 {
			missing = "vertices"
		}
		mc.diagnostics.Add(asset.ErrStructure, frag.File, frag.Line, "dropping fragment without %s", missing)
		return false
	}

	if pos := frag.FirstInvalidIndex(); pos >= 0 {
		mc.diagnostics.Add(asset.ErrStructure, frag.File, frag.Line,
			"dropping fragment: index %d at position %d references a missing vertex (fragment has %d vertices)",
			frag.Indices[pos], pos, len(frag.Vertices),
		)
		return false
	}
	return true
}

// Append the geometry of a validated fragment to the mesh.
func (mc *meshCompiler) merge(frag *input.RawMeshFragment) {
	mesh := mc.mesh
	vertexOffset := uint32(len(mesh.Positions))

	if rem := len(frag.Indices) % 3; rem != 0 {
		mc.diagnostics.Add(asset.ErrStructure, frag.File, frag.Line,
			"index count %d is not a multiple of 3; discarding %d trailing index(es)", len(frag.Indices), rem,
		)
	}

	fragRange := scene.FragmentRange{
		FirstFace:   len(mesh.Faces),
		FirstVertex: len(mesh.Positions),
		VertexCount: len(frag.Vertices),
	}

	for _, v := range frag.Vertices {
		mesh.Positions = append(mesh.Positions, v.Position)
	}

	faceCount := len(frag.Indices) / 3
	for face := 0; face < faceCount; face++ {
		var tri [3]uint32
		for corner := 0; corner < 3; corner++ {
			local := frag.Indices[face*3+corner]
			tri[corner] = local + vertexOffset
			mesh.CornerUVs = append(mesh.CornerUVs, frag.Vertices[local].UV)
			mesh.CornerNormals = append(mesh.CornerNormals, frag.Vertices[local].Normal)
		}
		mesh.Faces = append(mesh.Faces, tri)
	}
	fragRange.FaceCount = faceCount

	if frag.Skinned {
		mesh.Skinned = true
		for local, v := range frag.Vertices {
			if v.Skin != nil {
				mc.assignWeights(vertexOffset+uint32(local), v.Skin)
			}
		}
	}

	mesh.Fragments = append(mesh.Fragments, fragRange)
	mc.logger.Debugf("merged fragment from line %d: %d vertices, %d faces", frag.Line, fragRange.VertexCount, fragRange.FaceCount)
}

// Add a vertex to the groups named after its bone indices. Only positive
// weights are recorded; a repeated (vertex, bone) pair replaces the
// previous weight.
func (mc *meshCompiler) assignWeights(vertex uint32, skin *input.SkinData) {
	for slot, boneIndex := range skin.BoneIndices {
		group := mc.group(strconv.Itoa(boneIndex))
		if weight := skin.Weights[slot]; weight > 0 {
			group.Set(vertex, weight)
		}
	}
}

func (mc *meshCompiler) group(name string) *scene.VertexGroup {
	if group, exists := mc.groupCache[name]; exists {
		return group
	}
	group := mc.mesh.GroupOrCreate(name)
	mc.groupCache[name] = group
	return group
}
