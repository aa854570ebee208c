package sink

import (
	"fmt"

	"github.com/achilleasa/meshimport/types"
	"github.com/go-gl/mathgl/mgl32"
)

// A RecordedMesh holds the mesh data received by a Recorder.
type RecordedMesh struct {
	Name          string
	Positions     []types.Vec3
	Faces         [][3]uint32
	CornerUVs     []types.Vec2
	CornerNormals []types.Vec3
	Groups        []*RecordedGroup

	// Index of the bound skeleton or -1.
	Skeleton int
}

// A RecordedGroup holds a vertex group received by a Recorder.
type RecordedGroup struct {
	Name    string
	Weights map[uint32]float32
}

// A RecordedBone holds a bone received by a Recorder. Parent is the index
// of the parent bone in the skeleton bone list or -1 for roots.
type RecordedBone struct {
	Name        string
	Parent      int
	Rotation    types.Quat
	LocalOffset types.Vec3
	Scale       types.Vec3
	BindPose    mgl32.Mat4
}

// A RecordedSkeleton holds the bones received by a Recorder in the order
// they were added.
type RecordedSkeleton struct {
	Name  string
	Bones []RecordedBone
}

// Recorder is an in-memory Sink. Handles are indices into its slices.
type Recorder struct {
	Meshes    []*RecordedMesh
	Skeletons []*RecordedSkeleton

	groups []*RecordedGroup

	// Maps bone handles to their skeleton and position within it.
	bones []boneRef
}

type boneRef struct {
	skeleton int
	index    int
}

// Create a new empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) mesh(handle MeshHandle) (*RecordedMesh, error) {
	if handle < 0 || int(handle) >= len(r.Meshes) {
		return nil, fmt.Errorf("%w: mesh %d", ErrInvalidHandle, handle)
	}
	return r.Meshes[handle], nil
}

func (r *Recorder) CreateMesh(name string, positions []types.Vec3, faces [][3]uint32) (MeshHandle, error) {
	for _, face := range faces {
		for _, index := range face {
			if int(index) >= len(positions) {
				return -1, fmt.Errorf("sink: mesh %q: face references missing vertex %d", name, index)
			}
		}
	}

	r.Meshes = append(r.Meshes, &RecordedMesh{
		Name:          name,
		Positions:     append([]types.Vec3{}, positions...),
		Faces:         append([][3]uint32{}, faces...),
		CornerUVs:     make([]types.Vec2, len(faces)*3),
		CornerNormals: make([]types.Vec3, len(faces)*3),
		Skeleton:      -1,
	})
	return MeshHandle(len(r.Meshes) - 1), nil
}

func (r *Recorder) cornerIndex(mesh *RecordedMesh, face, corner int) (int, error) {
	if face < 0 || face >= len(mesh.Faces) || corner < 0 || corner > 2 {
		return -1, fmt.Errorf("sink: mesh %q: invalid face corner (%d, %d)", mesh.Name, face, corner)
	}
	return face*3 + corner, nil
}

func (r *Recorder) SetCornerUV(handle MeshHandle, face, corner int, uv types.Vec2) error {
	mesh, err := r.mesh(handle)
	if err != nil {
		return err
	}
	index, err := r.cornerIndex(mesh, face, corner)
	if err != nil {
		return err
	}
	mesh.CornerUVs[index] = uv
	return nil
}

func (r *Recorder) SetCornerNormal(handle MeshHandle, face, corner int, normal types.Vec3) error {
	mesh, err := r.mesh(handle)
	if err != nil {
		return err
	}
	index, err := r.cornerIndex(mesh, face, corner)
	if err != nil {
		return err
	}
	mesh.CornerNormals[index] = normal
	return nil
}

func (r *Recorder) CreateVertexGroup(handle MeshHandle, name string) (GroupHandle, error) {
	mesh, err := r.mesh(handle)
	if err != nil {
		return -1, err
	}

	group := &RecordedGroup{Name: name, Weights: make(map[uint32]float32)}
	mesh.Groups = append(mesh.Groups, group)
	r.groups = append(r.groups, group)
	return GroupHandle(len(r.groups) - 1), nil
}

func (r *Recorder) AssignWeight(handle GroupHandle, vertex uint32, weight float32) error {
	if handle < 0 || int(handle) >= len(r.groups) {
		return fmt.Errorf("%w: group %d", ErrInvalidHandle, handle)
	}
	r.groups[handle].Weights[vertex] = weight
	return nil
}

func (r *Recorder) CreateSkeleton(name string) (SkeletonHandle, error) {
	r.Skeletons = append(r.Skeletons, &RecordedSkeleton{Name: name})
	return SkeletonHandle(len(r.Skeletons) - 1), nil
}

func (r *Recorder) AddBone(handle SkeletonHandle, parent BoneHandle, name string, rotation types.Quat, offset, scale types.Vec3, bindPose mgl32.Mat4) (BoneHandle, error) {
	if handle < 0 || int(handle) >= len(r.Skeletons) {
		return -1, fmt.Errorf("%w: skeleton %d", ErrInvalidHandle, handle)
	}
	skel := r.Skeletons[handle]

	parentIndex := -1
	if parent != NoBone {
		if parent < 0 || int(parent) >= len(r.bones) || r.bones[parent].skeleton != int(handle) {
			return -1, fmt.Errorf("%w: bone %d", ErrInvalidHandle, parent)
		}
		parentIndex = r.bones[parent].index
	}

	skel.Bones = append(skel.Bones, RecordedBone{
		Name:        name,
		Parent:      parentIndex,
		Rotation:    rotation,
		LocalOffset: offset,
		Scale:       scale,
		BindPose:    bindPose,
	})
	r.bones = append(r.bones, boneRef{skeleton: int(handle), index: len(skel.Bones) - 1})
	return BoneHandle(len(r.bones) - 1), nil
}

func (r *Recorder) Bind(meshHandle MeshHandle, skelHandle SkeletonHandle) error {
	mesh, err := r.mesh(meshHandle)
	if err != nil {
		return err
	}
	if skelHandle < 0 || int(skelHandle) >= len(r.Skeletons) {
		return fmt.Errorf("%w: skeleton %d", ErrInvalidHandle, skelHandle)
	}
	mesh.Skeleton = int(skelHandle)
	return nil
}
