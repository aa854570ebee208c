package writer

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/achilleasa/meshimport/asset/scene"
	"github.com/achilleasa/meshimport/asset/scene/sink"
	"github.com/achilleasa/meshimport/types"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

func testScene() *scene.Scene {
	mesh := scene.NewMesh("body")
	mesh.Positions = []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	mesh.Faces = [][3]uint32{{0, 1, 2}, {2, 1, 3}}
	mesh.CornerUVs = make([]types.Vec2, 6)
	mesh.CornerNormals = make([]types.Vec3, 6)
	for i := range mesh.CornerNormals {
		mesh.CornerNormals[i] = types.Vec3{0, 0, 1}
	}
	mesh.Skinned = true
	mesh.GroupOrCreate("0").Set(0, 1)
	mesh.GroupOrCreate("1").Set(1, 0.5)
	mesh.GroupOrCreate("0").Set(1, 0.5)
	mesh.GroupOrCreate("9").Set(2, 1)

	skel := scene.NewSkeleton("body")
	root := scene.NewBone("root", "0")
	child := scene.NewBone("child", "1")
	child.LocalOffset = types.Vec3{0, 2, 0}
	root.AddChild(child)
	skel.Roots = []*scene.Bone{root}

	return scene.Bind(mesh, skel)
}

func TestWriteGlb(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "body.glb")
	if err := WriteScene(testScene(), filename); err != nil {
		t.Fatal(err)
	}

	doc, err := gltf.Open(filename)
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Meshes) != 1 || len(doc.Skins) != 1 {
		t.Fatalf("expected 1 mesh and 1 skin; got %d and %d", len(doc.Meshes), len(doc.Skins))
	}
	if len(doc.Nodes) != 3 {
		t.Fatalf("expected 3 nodes (2 joints and 1 mesh); got %d", len(doc.Nodes))
	}
	if len(doc.Skins[0].Joints) != 2 {
		t.Fatalf("expected 2 joints; got %d", len(doc.Skins[0].Joints))
	}

	prim := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{gltf.POSITION, gltf.NORMAL, gltf.TEXCOORD_0, gltf.JOINTS_0, gltf.WEIGHTS_0} {
		accessor, found := prim.Attributes[attr]
		if !found {
			t.Fatalf("expected primitive to define %s", attr)
		}
		if count := doc.Accessors[accessor].Count; count != 6 {
			t.Fatalf("expected %s accessor to contain 6 elements (one per face corner); got %d", attr, count)
		}
	}
}

func TestWriteGltfWithoutSkeleton(t *testing.T) {
	sc := testScene()
	sc = scene.Bind(sc.Mesh, nil)

	filename := filepath.Join(t.TempDir(), "body.gltf")
	if err := WriteScene(sc, filename); err != nil {
		t.Fatal(err)
	}

	doc, err := gltf.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Skins) != 0 || len(doc.Nodes) != 1 {
		t.Fatalf("expected a single unskinned node; got %d nodes and %d skins", len(doc.Nodes), len(doc.Skins))
	}
	if _, found := doc.Meshes[0].Primitives[0].Attributes[gltf.JOINTS_0]; found {
		t.Fatal("expected unskinned primitive to omit joints")
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	err := WriteScene(testScene(), filepath.Join(t.TempDir(), "body.obj"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat; got %v", err)
	}
}

func TestInfluences(t *testing.T) {
	rec := sink.NewRecorder()
	if err := sink.Emit(testScene(), rec); err != nil {
		t.Fatal(err)
	}

	w := newGltfWriter("unused.glb", true)
	joints, weights := w.influences(rec.Meshes[0], rec.Skeletons[0], []uint32{0, 1, 2, 3})

	type spec struct {
		expJoints  [4]uint16
		expWeights [4]float32
	}
	specs := []spec{
		{[4]uint16{0}, [4]float32{1}},
		// Equal weights are ordered by joint index.
		{[4]uint16{0, 1}, [4]float32{0.5, 0.5}},
		// Group 9 has no matching joint.
		{[4]uint16{0}, [4]float32{1}},
		{[4]uint16{0}, [4]float32{1}},
	}
	for idx, s := range specs {
		if joints[idx] != s.expJoints || weights[idx] != s.expWeights {
			t.Fatalf("[spec %d] expected joints %v with weights %v; got %v with %v", idx, s.expJoints, s.expWeights, joints[idx], weights[idx])
		}
	}
}

func TestInfluencesKeepsStrongest(t *testing.T) {
	mesh := &sink.RecordedMesh{}
	skel := &sink.RecordedSkeleton{}
	for idx, weight := range []float32{0.1, 0.4, 0.05, 0.3, 0.15} {
		name := string(rune('a' + idx))
		skel.Bones = append(skel.Bones, sink.RecordedBone{Name: name, Parent: -1})
		mesh.Groups = append(mesh.Groups, &sink.RecordedGroup{Name: name, Weights: map[uint32]float32{0: weight}})
	}

	w := newGltfWriter("unused.glb", true)
	joints, weights := w.influences(mesh, skel, []uint32{0})

	if exp := [4]uint16{1, 3, 4, 0}; joints[0] != exp {
		t.Fatalf("expected joints %v; got %v", exp, joints[0])
	}
	var sum float32
	for _, weight := range weights[0] {
		sum += weight
	}
	if math.Abs(float64(sum-1)) > 1e-5 {
		t.Fatalf("expected weights to be normalized; got %v (sum %v)", weights[0], sum)
	}
}

func TestColumns(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	cols := columns(m)
	if cols[3] != [4]float32{1, 2, 3, 1} {
		t.Fatalf("expected translation in the last column; got %v", cols[3])
	}
}
