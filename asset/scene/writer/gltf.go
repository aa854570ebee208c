package writer

import (
	"fmt"
	"sort"
	"time"

	"github.com/achilleasa/meshimport/asset/scene"
	"github.com/achilleasa/meshimport/asset/scene/sink"
	"github.com/achilleasa/meshimport/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// glTF allows up to 4 joint influences per vertex in a single JOINTS_0 /
// WEIGHTS_0 attribute pair.
const maxInfluences = 4

type gltfWriter struct {
	logger   log.Logger
	filename string
	binary   bool

	doc *gltf.Document

	// Skin index for each recorded skeleton or -1 if the skeleton has no bones.
	skins []int
}

// Create a new glTF writer. If binary is true, a .glb container is written.
func newGltfWriter(filename string, binary bool) *gltfWriter {
	return &gltfWriter{
		logger:   log.New("gltf writer"),
		filename: filename,
		binary:   binary,
	}
}

// Write scene to a glTF file.
func (w *gltfWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef(`writing scene to "%s"`, w.filename)
	start := time.Now()

	rec := sink.NewRecorder()
	if err := sink.Emit(sc, rec); err != nil {
		return err
	}

	w.doc = gltf.NewDocument()
	w.doc.Asset.Generator = "meshimport"
	w.skins = w.skins[:0]

	for _, skel := range rec.Skeletons {
		w.writeSkeleton(skel)
	}
	for _, mesh := range rec.Meshes {
		w.writeMesh(mesh, rec)
	}

	var err error
	if w.binary {
		err = gltf.SaveBinary(w.doc, w.filename)
	} else {
		// Keep the .gltf self-contained.
		for _, buf := range w.doc.Buffers {
			if buf.URI == "" {
				buf.EmbeddedResource()
			}
		}
		err = gltf.Save(w.doc, w.filename)
	}
	if err != nil {
		return fmt.Errorf("writer: could not save %q: %w", w.filename, err)
	}

	w.logger.Noticef("wrote %d node(s) in %d ms", len(w.doc.Nodes), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Add a node per bone and a skin with the inverse bind matrices of the bind pose.
func (w *gltfWriter) writeSkeleton(skel *sink.RecordedSkeleton) {
	if len(skel.Bones) == 0 {
		w.logger.Warningf("skeleton %q has no bones; skipping skin", skel.Name)
		w.skins = append(w.skins, -1)
		return
	}

	joints := make([]int, len(skel.Bones))
	inverseBind := make([][4][4]float32, len(skel.Bones))

	for idx, bone := range skel.Bones {
		rot := bone.Rotation.Unit()

		node := &gltf.Node{
			Name:        bone.Name,
			Translation: [3]float64{float64(bone.LocalOffset[0]), float64(bone.LocalOffset[1]), float64(bone.LocalOffset[2])},
			Rotation:    [4]float64{float64(rot.V[0]), float64(rot.V[1]), float64(rot.V[2]), float64(rot.W)},
			Scale:       [3]float64{float64(bone.Scale[0]), float64(bone.Scale[1]), float64(bone.Scale[2])},
		}
		joints[idx] = len(w.doc.Nodes)
		w.doc.Nodes = append(w.doc.Nodes, node)

		if bone.Parent < 0 {
			w.doc.Scenes[0].Nodes = append(w.doc.Scenes[0].Nodes, joints[idx])
		} else {
			parentNode := w.doc.Nodes[joints[bone.Parent]]
			parentNode.Children = append(parentNode.Children, joints[idx])
		}
		inverseBind[idx] = columns(bone.BindPose.Inv())
	}

	ibmAccessor := modeler.WriteAccessor(w.doc, gltf.TargetNone, inverseBind)
	w.doc.Skins = append(w.doc.Skins, &gltf.Skin{
		Name:                skel.Name,
		InverseBindMatrices: gltf.Index(ibmAccessor),
		Joints:              joints,
		Skeleton:            gltf.Index(joints[0]),
	})
	w.skins = append(w.skins, len(w.doc.Skins)-1)
}

// Add a mesh node. glTF stores attributes per vertex so every face corner
// becomes a separate vertex carrying the corner uv and normal.
func (w *gltfWriter) writeMesh(mesh *sink.RecordedMesh, rec *sink.Recorder) {
	if len(mesh.Faces) == 0 {
		w.logger.Warningf("mesh %q has no faces; skipping", mesh.Name)
		return
	}

	cornerCount := len(mesh.Faces) * 3
	positions := make([][3]float32, 0, cornerCount)
	normals := make([][3]float32, 0, cornerCount)
	uvs := make([][2]float32, 0, cornerCount)
	indices := make([]uint32, 0, cornerCount)
	sourceVertex := make([]uint32, 0, cornerCount)

	for face, tri := range mesh.Faces {
		for corner, vertex := range tri {
			p := mesh.Positions[vertex]
			n := mesh.CornerNormals[face*3+corner]
			// Texture space origin is at the top-left corner.
			uv := mesh.CornerUVs[face*3+corner].FlipV()

			indices = append(indices, uint32(len(positions)))
			positions = append(positions, [3]float32{p[0], p[1], p[2]})
			normals = append(normals, [3]float32{n[0], n[1], n[2]})
			uvs = append(uvs, [2]float32{uv[0], uv[1]})
			sourceVertex = append(sourceVertex, vertex)
		}
	}

	prim := &gltf.Primitive{
		Indices: gltf.Index(modeler.WriteIndices(w.doc, indices)),
		Attributes: map[string]int{
			gltf.POSITION:   modeler.WritePosition(w.doc, positions),
			gltf.NORMAL:     modeler.WriteNormal(w.doc, normals),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(w.doc, uvs),
		},
	}

	node := &gltf.Node{Name: mesh.Name}
	if mesh.Skeleton >= 0 && w.skins[mesh.Skeleton] >= 0 {
		skinIndex := w.skins[mesh.Skeleton]
		joints, weights := w.influences(mesh, rec.Skeletons[mesh.Skeleton], sourceVertex)
		prim.Attributes[gltf.JOINTS_0] = modeler.WriteJoints(w.doc, joints)
		prim.Attributes[gltf.WEIGHTS_0] = modeler.WriteWeights(w.doc, weights)
		node.Skin = gltf.Index(skinIndex)
	}

	w.doc.Meshes = append(w.doc.Meshes, &gltf.Mesh{
		Name:       mesh.Name,
		Primitives: []*gltf.Primitive{prim},
	})
	node.Mesh = gltf.Index(len(w.doc.Meshes) - 1)
	w.doc.Nodes = append(w.doc.Nodes, node)
	w.doc.Scenes[0].Nodes = append(w.doc.Scenes[0].Nodes, len(w.doc.Nodes)-1)
}

type influence struct {
	joint  uint16
	weight float32
}

// Build the JOINTS_0 and WEIGHTS_0 attributes. Vertex groups are matched to
// joints by bone name; groups without a matching bone are ignored. Each
// vertex keeps its strongest influences and their weights are normalized.
// Vertices without influences are attached to the first joint.
func (w *gltfWriter) influences(mesh *sink.RecordedMesh, skel *sink.RecordedSkeleton, sourceVertex []uint32) ([][4]uint16, [][4]float32) {
	jointByName := make(map[string]uint16, len(skel.Bones))
	for idx := len(skel.Bones) - 1; idx >= 0; idx-- {
		jointByName[skel.Bones[idx].Name] = uint16(idx)
	}

	perVertex := make(map[uint32][]influence)
	unmatched := 0
	for _, group := range mesh.Groups {
		joint, found := jointByName[group.Name]
		if !found {
			unmatched++
			continue
		}
		for vertex, weight := range group.Weights {
			perVertex[vertex] = append(perVertex[vertex], influence{joint, weight})
		}
	}
	if unmatched > 0 {
		w.logger.Warningf("mesh %q: ignoring %d vertex group(s) without a matching joint", mesh.Name, unmatched)
	}

	joints := make([][4]uint16, len(sourceVertex))
	weights := make([][4]float32, len(sourceVertex))
	for idx, vertex := range sourceVertex {
		list := perVertex[vertex]
		if len(list) == 0 {
			weights[idx][0] = 1
			continue
		}

		sort.SliceStable(list, func(i, j int) bool {
			if list[i].weight != list[j].weight {
				return list[i].weight > list[j].weight
			}
			return list[i].joint < list[j].joint
		})
		if len(list) > maxInfluences {
			list = list[:maxInfluences]
		}

		var sum float32
		for _, inf := range list {
			sum += inf.weight
		}
		for slot, inf := range list {
			joints[idx][slot] = inf.joint
			weights[idx][slot] = inf.weight / sum
		}
	}
	return joints, weights
}

// Convert a column-major matrix into an array of columns.
func columns(m mgl32.Mat4) [4][4]float32 {
	var out [4][4]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col][row] = m[col*4+row]
		}
	}
	return out
}
