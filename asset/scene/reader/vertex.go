package reader

import (
	"fmt"
	"math"

	"github.com/achilleasa/meshimport/asset/compiler/input"
	"github.com/achilleasa/meshimport/asset/format"
	"github.com/achilleasa/meshimport/types"
)

// Group sizes of the two vertex row shapes, excluding the optional trailing
// 4-tuple.
var (
	plainRowShape   = []int{3, 3, 4, 2}
	skinnedRowShape = []int{3, 4, 4, 3, 4, 2}
)

const trailingGroupSize = 4

// A vertexGrammar is the row grammar that is active for a vertex block. It
// is selected from the first well-formed row and applied to every row of
// the block.
type vertexGrammar struct {
	skinned          bool
	boneIndicesFirst bool
}

func (g vertexGrammar) shape() []int {
	if g.skinned {
		return skinnedRowShape
	}
	return plainRowShape
}

func (g vertexGrammar) String() string {
	switch {
	case !g.skinned:
		return "plain"
	case g.boneIndicesFirst:
		return "skinned (bone indices first)"
	}
	return "skinned (weights first)"
}

// Select the row grammar for a block given its first row.
func selectGrammar(groups []format.Group, layout VertexLayout) (vertexGrammar, error) {
	var g vertexGrammar
	switch len(groups) {
	case len(plainRowShape), len(plainRowShape) + 1:
	case len(skinnedRowShape), len(skinnedRowShape) + 1:
		g.skinned = true
	default:
		return g, fmt.Errorf("expected %d-%d slash separated groups; got %d", len(plainRowShape), len(skinnedRowShape)+1, len(groups))
	}

	if err := g.checkShape(groups); err != nil {
		return g, err
	}

	if g.skinned {
		switch layout {
		case LayoutWeightsFirst:
		case LayoutBoneIndicesFirst:
			g.boneIndicesFirst = true
		default:
			g.boneIndicesFirst = detectBoneIndicesFirst(groups[1], groups[2])
		}
	}
	return g, nil
}

// Guess the skin group order from the first skinned row. Bone indices are
// integer literals while weights usually are not; when both groups look
// integral the group whose values sum to 1 is taken to hold the weights.
func detectBoneIndicesFirst(first, second format.Group) bool {
	switch {
	case first.Integral && !second.Integral:
		return true
	case second.Integral && !first.Integral:
		return false
	case looksLikeWeights(second) && !looksLikeWeights(first):
		return true
	}
	return false
}

func looksLikeWeights(g format.Group) bool {
	var sum float32
	for _, v := range g.Values {
		if v < 0 || v > 1 {
			return false
		}
		sum += v
	}
	return math.Abs(float64(sum-1)) <= 0.01
}

// Verify that a row matches the grammar shape, allowing for the optional
// trailing group.
func (g vertexGrammar) checkShape(groups []format.Group) error {
	shape := g.shape()
	if len(groups) != len(shape) && len(groups) != len(shape)+1 {
		return fmt.Errorf("expected %d or %d groups for a %s row; got %d", len(shape), len(shape)+1, g, len(groups))
	}

	for idx, group := range groups {
		expSize := trailingGroupSize
		if idx < len(shape) {
			expSize = shape[idx]
		}
		if len(group.Values) != expSize {
			return fmt.Errorf("expected group %d to contain %d values; got %d", idx+1, expSize, len(group.Values))
		}
	}
	return nil
}

// Parse a vertex row. The v texture coordinate is flipped.
func (g vertexGrammar) parse(groups []format.Group) (input.RawVertex, error) {
	var v input.RawVertex
	if err := g.checkShape(groups); err != nil {
		return v, err
	}

	next := 0
	take := func() format.Group {
		group := groups[next]
		next++
		return group
	}

	v.Position = vec3(take())

	if g.skinned {
		weightGroup, boneGroup := take(), take()
		if g.boneIndicesFirst {
			weightGroup, boneGroup = boneGroup, weightGroup
		}
		if !boneGroup.Integral {
			return v, fmt.Errorf("expected integer bone indices; got %v", boneGroup.Values)
		}

		skin := &input.SkinData{Weights: vec4(weightGroup)}
		for idx, bone := range boneGroup.Values {
			skin.BoneIndices[idx] = int(bone)
		}
		v.Skin = skin
	}

	v.Normal = vec3(take())
	color := vec4(take())
	v.Color = &color
	uv := take()
	v.UV = types.Vec2{uv.Values[0], uv.Values[1]}.FlipV()

	if next < len(groups) {
		extra := vec4(take())
		v.Extra = &extra
	}
	return v, nil
}

func vec3(g format.Group) types.Vec3 {
	return types.Vec3{g.Values[0], g.Values[1], g.Values[2]}
}

func vec4(g format.Group) types.Vec4 {
	return types.Vec4{g.Values[0], g.Values[1], g.Values[2], g.Values[3]}
}
