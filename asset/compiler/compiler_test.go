package compiler

import (
	"errors"
	"reflect"
	"testing"

	"github.com/achilleasa/meshimport/asset"
	"github.com/achilleasa/meshimport/asset/compiler/input"
	"github.com/achilleasa/meshimport/types"
)

func plainVertices(count int) []input.RawVertex {
	vertices := make([]input.RawVertex, count)
	for i := range vertices {
		vertices[i] = input.RawVertex{
			Position: types.Vec3{float32(i), 0, 0},
			Normal:   types.Vec3{0, 1, 0},
			UV:       types.Vec2{float32(i) * 0.1, 0.5},
		}
	}
	return vertices
}

func skinnedVertex(weights types.Vec4, bones [4]int) input.RawVertex {
	return input.RawVertex{
		Skin: &input.SkinData{Weights: weights, BoneIndices: bones},
	}
}

func TestCompileFaceCount(t *testing.T) {
	type spec struct {
		indices     []uint32
		expFaces    int
		expWarnings int
	}
	specs := []spec{
		{[]uint32{0, 1, 2}, 1, 0},
		{[]uint32{0, 1, 2, 2, 1, 3}, 2, 0},
		{[]uint32{0, 1, 2, 3}, 1, 1},
		{[]uint32{0, 1, 2, 3, 2}, 1, 1},
		{[]uint32{0, 1}, 0, 1},
	}

	for idx, s := range specs {
		frag := &input.RawMeshFragment{Indices: s.indices, Vertices: plainVertices(4)}
		mesh, diag, err := Compile("test", []*input.RawMeshFragment{frag})
		if err != nil {
			t.Fatalf("[spec %d] %v", idx, err)
		}
		if len(mesh.Faces) != s.expFaces {
			t.Fatalf("[spec %d] expected %d faces; got %d", idx, s.expFaces, len(mesh.Faces))
		}
		if expCount := len(s.indices) - len(s.indices)%3; len(mesh.Faces)*3 != expCount {
			t.Fatalf("[spec %d] expected faces to cover %d indices; got %d", idx, expCount, len(mesh.Faces)*3)
		}
		if got := diag.Count(asset.ErrStructure); got != s.expWarnings {
			t.Fatalf("[spec %d] expected %d warnings; got %d", idx, s.expWarnings, got)
		}
		if len(mesh.CornerUVs) != len(mesh.Faces)*3 || len(mesh.CornerNormals) != len(mesh.Faces)*3 {
			t.Fatalf("[spec %d] expected %d corner attributes; got %d uvs and %d normals", idx, len(mesh.Faces)*3, len(mesh.CornerUVs), len(mesh.CornerNormals))
		}
	}
}

func TestCompileRebasesFragmentIndices(t *testing.T) {
	fragments := []*input.RawMeshFragment{
		{Indices: []uint32{0, 1, 2}, Vertices: plainVertices(3)},
		{Indices: []uint32{0, 1, 2, 2, 1, 3}, Vertices: plainVertices(4)},
	}

	mesh, diag, err := Compile("merged", fragments)
	if err != nil {
		t.Fatal(err)
	}
	if len(diag) != 0 {
		t.Fatalf("expected no diagnostics; got:\n%s", diag)
	}

	expFaces := [][3]uint32{{0, 1, 2}, {3, 4, 5}, {5, 4, 6}}
	if !reflect.DeepEqual(mesh.Faces, expFaces) {
		t.Fatalf("expected faces %v; got %v", expFaces, mesh.Faces)
	}
	if len(mesh.Positions) != 7 {
		t.Fatalf("expected 7 positions; got %d", len(mesh.Positions))
	}

	expRanges := []struct{ firstFace, faceCount, firstVertex, vertexCount int }{
		{0, 1, 0, 3},
		{1, 2, 3, 4},
	}
	if len(mesh.Fragments) != len(expRanges) {
		t.Fatalf("expected %d fragment ranges; got %d", len(expRanges), len(mesh.Fragments))
	}
	for idx, exp := range expRanges {
		r := mesh.Fragments[idx]
		if r.FirstFace != exp.firstFace || r.FaceCount != exp.faceCount || r.FirstVertex != exp.firstVertex || r.VertexCount != exp.vertexCount {
			t.Fatalf("[range %d] expected %+v; got %+v", idx, exp, r)
		}
	}
}

func TestCompileCornerAttributes(t *testing.T) {
	vertices := plainVertices(3)
	vertices[2].Normal = types.Vec3{0, 0, 1}

	frag := &input.RawMeshFragment{Indices: []uint32{2, 0, 1}, Vertices: vertices}
	mesh, _, err := Compile("corners", []*input.RawMeshFragment{frag})
	if err != nil {
		t.Fatal(err)
	}

	if got := mesh.CornerUV(0, 0); got != vertices[2].UV {
		t.Fatalf("expected corner 0 uv to be %v; got %v", vertices[2].UV, got)
	}
	if got := mesh.CornerNormal(0, 0); got != vertices[2].Normal {
		t.Fatalf("expected corner 0 normal to be %v; got %v", vertices[2].Normal, got)
	}
	if got := mesh.CornerUV(0, 2); got != vertices[1].UV {
		t.Fatalf("expected corner 2 uv to be %v; got %v", vertices[1].UV, got)
	}
}

func TestCompileVertexGroups(t *testing.T) {
	frag := &input.RawMeshFragment{
		Indices: []uint32{0, 1, 2},
		Vertices: []input.RawVertex{
			skinnedVertex(types.Vec4{0.75, 0.25, 0, 0}, [4]int{3, 1, 0, 0}),
			skinnedVertex(types.Vec4{1, 0, 0, 0}, [4]int{1, 0, 0, 0}),
			// Same bone referenced twice; the later weight replaces the earlier one.
			skinnedVertex(types.Vec4{0.4, 0.6, 0, -0.5}, [4]int{3, 3, 2, 5}),
		},
		Skinned: true,
	}

	mesh, _, err := Compile("skinned", []*input.RawMeshFragment{frag})
	if err != nil {
		t.Fatal(err)
	}
	if !mesh.Skinned {
		t.Fatal("expected mesh to be skinned")
	}

	var groupNames []string
	for _, g := range mesh.VertexGroups {
		groupNames = append(groupNames, g.Name)
		for _, vw := range g.Weights {
			if vw.Weight <= 0 {
				t.Fatalf("expected group %q to contain only positive weights; got %v", g.Name, vw)
			}
		}
	}
	expNames := []string{"3", "1", "0", "2", "5"}
	if !reflect.DeepEqual(groupNames, expNames) {
		t.Fatalf("expected groups %v; got %v", expNames, groupNames)
	}

	type spec struct {
		group     string
		vertex    uint32
		expWeight float32
		expMember bool
	}
	specs := []spec{
		{"3", 0, 0.75, true},
		{"3", 2, 0.6, true},
		{"1", 0, 0.25, true},
		{"1", 1, 1, true},
		{"0", 0, 0, false},
		{"2", 2, 0, false},
		{"5", 2, 0, false},
	}
	for idx, s := range specs {
		weight, member := mesh.Group(s.group).Weight(s.vertex)
		if member != s.expMember || weight != s.expWeight {
			t.Fatalf("[spec %d] expected vertex %d in group %q to have weight %v (member: %t); got %v (member: %t)", idx, s.vertex, s.group, s.expWeight, s.expMember, weight, member)
		}
	}

	if got := len(mesh.Group("3").Weights); got != 2 {
		t.Fatalf("expected group 3 to contain 2 entries; got %d", got)
	}
}

func TestCompileDropsInvalidFragments(t *testing.T) {
	fragments := []*input.RawMeshFragment{
		{Vertices: plainVertices(3), Line: 10},
		{Indices: []uint32{0, 1, 2}, Line: 20},
		{Indices: []uint32{0, 1, 7}, Vertices: plainVertices(3), Line: 30},
		{Indices: []uint32{0, 1, 2}, Vertices: plainVertices(3), Line: 40},
	}

	mesh, diag, err := Compile("partial", fragments)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Fragments) != 1 || len(mesh.Positions) != 3 {
		t.Fatalf("expected only the last fragment to be merged; got %d fragments and %d positions", len(mesh.Fragments), len(mesh.Positions))
	}

	expLines := []int{10, 20, 30}
	if len(diag) != len(expLines) {
		t.Fatalf("expected %d diagnostics; got:\n%s", len(expLines), diag)
	}
	for idx, d := range diag {
		if d.Line != expLines[idx] {
			t.Fatalf("[diag %d] expected line %d; got %d", idx, expLines[idx], d.Line)
		}
	}
}

func TestCompileEmptyResult(t *testing.T) {
	specs := [][]*input.RawMeshFragment{
		nil,
		{{Vertices: plainVertices(3)}},
	}

	for idx, fragments := range specs {
		mesh, _, err := Compile("empty", fragments)
		if !errors.Is(err, asset.ErrEmptyMeshResult) {
			t.Fatalf("[spec %d] expected ErrEmptyMeshResult; got %v", idx, err)
		}
		if mesh != nil {
			t.Fatalf("[spec %d] expected a nil mesh", idx)
		}
	}
}

func TestCompileKeepsDegenerateFaces(t *testing.T) {
	frag := &input.RawMeshFragment{Indices: []uint32{0, 0, 1}, Vertices: plainVertices(2)}
	mesh, _, err := Compile("degenerate", []*input.RawMeshFragment{frag})
	if err != nil {
		t.Fatal(err)
	}
	if exp := [][3]uint32{{0, 0, 1}}; !reflect.DeepEqual(mesh.Faces, exp) {
		t.Fatalf("expected faces %v; got %v", exp, mesh.Faces)
	}
}
