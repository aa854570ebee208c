package scene

import (
	"github.com/achilleasa/meshimport/types"
	"github.com/go-gl/mathgl/mgl32"
)

// A skeleton bone. Transforms are local (relative to the parent bone).
type Bone struct {
	Name string

	// Identifier used by the source file; not guaranteed to be unique or sequential.
	ID string

	Rotation    types.Quat
	LocalOffset types.Vec3
	Scale       types.Vec3

	// Optional properties; MirrorBoneID and DeclaredChildren are -1 when absent.
	MirrorBoneID     int
	Flags            []string
	DeclaredChildren int

	Parent   *Bone
	Children []*Bone
}

// Create a bone with an identity local transform.
func NewBone(name, id string) *Bone {
	return &Bone{
		Name:             name,
		ID:               id,
		Rotation:         types.QuatIdent(),
		Scale:            types.Vec3{1, 1, 1},
		MirrorBoneID:     -1,
		DeclaredChildren: -1,
	}
}

// Append a child bone.
func (b *Bone) AddChild(child *Bone) {
	child.Parent = b
	b.Children = append(b.Children, child)
}

// Get the local transform: translate(offset) * rotate * scale.
func (b *Bone) LocalTransform() mgl32.Mat4 {
	return mgl32.Translate3D(b.LocalOffset[0], b.LocalOffset[1], b.LocalOffset[2]).
		Mul4(b.Rotation.Unit().Mat4()).
		Mul4(mgl32.Scale3D(b.Scale[0], b.Scale[1], b.Scale[2]))
}

// A skeleton parsed from a .skel file.
type Skeleton struct {
	Name  string
	Roots []*Bone

	// Bone count declared by the file; may differ from the parsed count.
	BoneCount int

	// Opaque checksum copied from the file.
	DataCRC uint32
}

// Create a new empty skeleton.
func NewSkeleton(name string) *Skeleton {
	return &Skeleton{
		Name: name,
	}
}

// Visit all bones in depth-first order. The visitor receives the bone
// depth (roots have depth 1). Returning false skips the bone's children.
func (s *Skeleton) Walk(visitor func(bone *Bone, depth int) bool) {
	type frame struct {
		bone  *Bone
		depth int
	}

	stack := make([]frame, 0, len(s.Roots))
	for i := len(s.Roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{s.Roots[i], 1})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visitor(top.bone, top.depth) {
			continue
		}
		for i := len(top.bone.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{top.bone.Children[i], top.depth + 1})
		}
	}
}

// Get all bones in depth-first order.
func (s *Skeleton) Bones() []*Bone {
	var bones []*Bone
	s.Walk(func(b *Bone, _ int) bool {
		bones = append(bones, b)
		return true
	})
	return bones
}

// Get the depth of the deepest bone chain.
func (s *Skeleton) Depth() int {
	maxDepth := 0
	s.Walk(func(_ *Bone, depth int) bool {
		if depth > maxDepth {
			maxDepth = depth
		}
		return true
	})
	return maxDepth
}

// Find the first bone (depth-first) with the given name.
func (s *Skeleton) Find(name string) *Bone {
	return s.find(func(b *Bone) bool { return b.Name == name })
}

// Find the first bone (depth-first) with the given identifier.
func (s *Skeleton) FindByID(id string) *Bone {
	return s.find(func(b *Bone) bool { return b.ID == id })
}

func (s *Skeleton) find(match func(*Bone) bool) *Bone {
	var found *Bone
	s.Walk(func(b *Bone, _ int) bool {
		if found == nil && match(b) {
			found = b
		}
		return found == nil
	})
	return found
}

// Calculate the world (bind pose) transform of every bone by accumulating
// parent transforms.
func (s *Skeleton) WorldTransforms() map[*Bone]mgl32.Mat4 {
	world := make(map[*Bone]mgl32.Mat4)
	s.Walk(func(b *Bone, _ int) bool {
		parent := mgl32.Ident4()
		if b.Parent != nil {
			parent = world[b.Parent]
		}
		world[b] = parent.Mul4(b.LocalTransform())
		return true
	})
	return world
}
