package reader

import (
	"math"

	"github.com/achilleasa/meshimport/asset"
	"github.com/achilleasa/meshimport/asset/format"
	"github.com/achilleasa/meshimport/asset/scene"
	"github.com/achilleasa/meshimport/log"
	"github.com/achilleasa/meshimport/types"
)

// The skeletonParser builds a bone tree from the classified lines of a .skel
// file using an explicit frame stack. Each open bracket pushes a frame; a
// frame either belongs to a bone or is anonymous (e.g. a Children block).
type skeletonParser struct {
	logger log.Logger
	file   string

	skeleton *scene.Skeleton

	// Open frames; nil entries are anonymous frames.
	frames []*scene.Bone

	// The most recent bone header whose bracket has not been opened yet.
	pending *scene.Bone

	parsedBones int

	diagnostics asset.Diagnostics
}

func newSkeletonParser(name, file string) *skeletonParser {
	skel := scene.NewSkeleton(name)
	skel.BoneCount = -1
	return &skeletonParser{
		logger:   log.New("skeleton reader"),
		file:     file,
		skeleton: skel,
	}
}

// Get the innermost open bone frame or nil if no bone frame is open.
func (p *skeletonParser) parentBone() *scene.Bone {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i] != nil {
			return p.frames[i]
		}
	}
	return nil
}

// Get the bone that receives property lines.
func (p *skeletonParser) targetBone(lineNum int, kind format.Kind) *scene.Bone {
	if p.pending != nil {
		return p.pending
	}
	if bone := p.parentBone(); bone != nil {
		return bone
	}
	p.diagnostics.Add(asset.ErrStructure, p.file, lineNum, "%s outside of a bone definition", kind)
	return nil
}

// Process the next classified line.
func (p *skeletonParser) feed(lineNum int, line format.Line) {
	switch line.Kind {
	case format.BoneHeader:
		bone := scene.NewBone(line.Name, line.ID)
		if parent := p.parentBone(); parent != nil {
			parent.AddChild(bone)
		} else {
			p.skeleton.Roots = append(p.skeleton.Roots, bone)
		}
		p.parsedBones++

		p.pending = nil
		if line.Opens {
			p.frames = append(p.frames, bone)
		} else {
			p.pending = bone
		}
	case format.OpenBracket:
		for i := int64(0); i < line.Int; i++ {
			p.frames = append(p.frames, p.pending)
			p.pending = nil
		}
	case format.CloseBracket:
		p.pending = nil
		for i := int64(0); i < line.Int; i++ {
			if len(p.frames) == 0 {
				p.diagnostics.Add(asset.ErrUnbalancedBrackets, p.file, lineNum, "closing bracket without a matching opening bracket")
				break
			}
			p.frames = p.frames[:len(p.frames)-1]
		}
	case format.DataCrc:
		if line.Int < 0 || line.Int > math.MaxUint32 {
			p.diagnostics.Add(asset.ErrStructure, p.file, lineNum, "DataCRC %d does not fit in 32 bits", line.Int)
		}
		p.skeleton.DataCRC = uint32(line.Int)
	case format.NumBones:
		p.skeleton.BoneCount = int(line.Int)
	case format.RotationQuaternion:
		if bone := p.targetBone(lineNum, line.Kind); bone != nil {
			bone.Rotation = types.QuatWXYZ(line.Floats[0], line.Floats[1], line.Floats[2], line.Floats[3])
		}
	case format.LocalOffset:
		if bone := p.targetBone(lineNum, line.Kind); bone != nil {
			bone.LocalOffset = types.Vec3{line.Floats[0], line.Floats[1], line.Floats[2]}
		}
	case format.Scale:
		if bone := p.targetBone(lineNum, line.Kind); bone != nil {
			bone.Scale = types.Vec3{line.Floats[0], line.Floats[1], line.Floats[2]}
		}
	case format.MirrorBoneId:
		if bone := p.targetBone(lineNum, line.Kind); bone != nil {
			bone.MirrorBoneID = int(line.Int)
		}
	case format.Flags:
		if bone := p.targetBone(lineNum, line.Kind); bone != nil {
			bone.Flags = line.Tokens
		}
	case format.ChildrenDecl:
		if bone := p.targetBone(lineNum, line.Kind); bone != nil {
			bone.DeclaredChildren = int(line.Int)
		}
	case format.Unrecognized:
		if line.Keyword == "" {
			return
		}
		p.diagnostics.Add(asset.ErrMalformedDataRow, p.file, lineNum, "could not parse %s line", line.Keyword)
		if line.Keyword == "Bone" {
			// Collect the properties and children of the broken bone in a
			// detached bone so they do not end up on its parent.
			p.pending = scene.NewBone("", "")
		}
	}
}

// Verify the tree once the input is exhausted and return the skeleton.
func (p *skeletonParser) finish(lineNum int) *scene.Skeleton {
	if len(p.frames) != 0 {
		p.diagnostics.Add(asset.ErrUnbalancedBrackets, p.file, lineNum, "end of input with %d unclosed bracket(s)", len(p.frames))
		p.frames = nil
	}
	p.pending = nil

	if p.skeleton.BoneCount >= 0 && p.skeleton.BoneCount != p.parsedBones {
		p.diagnostics.Add(asset.ErrStructure, p.file, 0, "skeleton declares %d bones; parsed %d", p.skeleton.BoneCount, p.parsedBones)
	}

	p.skeleton.Walk(func(bone *scene.Bone, _ int) bool {
		if bone.DeclaredChildren >= 0 && bone.DeclaredChildren != len(bone.Children) {
			p.diagnostics.Add(asset.ErrStructure, p.file, 0, "bone %q declares %d children; parsed %d", bone.Name, bone.DeclaredChildren, len(bone.Children))
		}
		return true
	})

	return p.skeleton
}
