// Package sink defines the interface used to hand a bound scene to a host
// application or exporter.
package sink

import (
	"errors"

	"github.com/achilleasa/meshimport/asset/scene"
	"github.com/achilleasa/meshimport/types"
	"github.com/go-gl/mathgl/mgl32"
)

// Opaque handles returned by a Sink.
type (
	MeshHandle     int
	GroupHandle    int
	SkeletonHandle int
	BoneHandle     int
)

// NoBone is passed to AddBone for root bones.
const NoBone BoneHandle = -1

// ErrInvalidHandle is returned by sinks when they receive a handle they did
// not create.
var ErrInvalidHandle = errors.New("sink: invalid handle")

// The Sink interface is implemented by scene consumers. Emit calls CreateMesh
// and CreateSkeleton once per scene and all other methods once per mesh
// element. AddBone receives the local transform of the bone and its world
// transform in the bind pose.
type Sink interface {
	CreateMesh(name string, positions []types.Vec3, faces [][3]uint32) (MeshHandle, error)
	SetCornerUV(mesh MeshHandle, face, corner int, uv types.Vec2) error
	SetCornerNormal(mesh MeshHandle, face, corner int, normal types.Vec3) error
	CreateVertexGroup(mesh MeshHandle, name string) (GroupHandle, error)
	AssignWeight(group GroupHandle, vertex uint32, weight float32) error

	CreateSkeleton(name string) (SkeletonHandle, error)
	AddBone(skeleton SkeletonHandle, parent BoneHandle, name string, rotation types.Quat, offset, scale types.Vec3, bindPose mgl32.Mat4) (BoneHandle, error)

	Bind(mesh MeshHandle, skeleton SkeletonHandle) error
}

// Emit a scene to a sink. Vertex groups bound to a bone are created under
// the bone name; unbound groups keep their original name. Bones are added in
// depth-first order so parents always precede their children.
func Emit(sc *scene.Scene, s Sink) error {
	var (
		meshHandle MeshHandle
		skelHandle SkeletonHandle
		err        error
	)

	if sc.Mesh != nil {
		if meshHandle, err = emitMesh(sc, s); err != nil {
			return err
		}
	}

	if sc.Skeleton != nil {
		if skelHandle, err = emitSkeleton(sc.Skeleton, s); err != nil {
			return err
		}
	}

	if sc.Mesh != nil && sc.Skeleton != nil {
		return s.Bind(meshHandle, skelHandle)
	}
	return nil
}

func emitMesh(sc *scene.Scene, s Sink) (MeshHandle, error) {
	mesh := sc.Mesh
	handle, err := s.CreateMesh(mesh.Name, mesh.Positions, mesh.Faces)
	if err != nil {
		return handle, err
	}

	for face := range mesh.Faces {
		for corner := 0; corner < 3; corner++ {
			if err = s.SetCornerUV(handle, face, corner, mesh.CornerUV(face, corner)); err != nil {
				return handle, err
			}
			if err = s.SetCornerNormal(handle, face, corner, mesh.CornerNormal(face, corner)); err != nil {
				return handle, err
			}
		}
	}

	for _, group := range mesh.VertexGroups {
		name := group.Name
		if binding, found := sc.Binding(group.Name); found && binding.Bound() {
			name = binding.Bone.Name
		}

		groupHandle, err := s.CreateVertexGroup(handle, name)
		if err != nil {
			return handle, err
		}
		for _, vw := range group.Weights {
			if err = s.AssignWeight(groupHandle, vw.Vertex, vw.Weight); err != nil {
				return handle, err
			}
		}
	}

	return handle, nil
}

func emitSkeleton(skel *scene.Skeleton, s Sink) (SkeletonHandle, error) {
	handle, err := s.CreateSkeleton(skel.Name)
	if err != nil {
		return handle, err
	}

	world := skel.WorldTransforms()
	boneHandles := make(map[*scene.Bone]BoneHandle)
	skel.Walk(func(bone *scene.Bone, _ int) bool {
		if err != nil {
			return false
		}

		parent := NoBone
		if bone.Parent != nil {
			parent = boneHandles[bone.Parent]
		}

		var boneHandle BoneHandle
		boneHandle, err = s.AddBone(handle, parent, bone.Name, bone.Rotation, bone.LocalOffset, bone.Scale, world[bone])
		if err != nil {
			return false
		}
		boneHandles[bone] = boneHandle
		return true
	})

	return handle, err
}
