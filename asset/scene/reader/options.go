package reader

import "fmt"

// VertexLayout selects the order of the weight and bone index groups in
// skinned vertex rows. The file format carries no version field that
// distinguishes the two orders.
type VertexLayout uint8

const (
	// Detect the order once per vertex block from the first skinned row.
	LayoutAuto VertexLayout = iota

	// pos / weights / bone indices / normal / color / uv [/ extra]
	LayoutWeightsFirst

	// pos / bone indices / weights / normal / color / uv [/ extra]
	LayoutBoneIndicesFirst
)

func (l VertexLayout) String() string {
	switch l {
	case LayoutWeightsFirst:
		return "weights-first"
	case LayoutBoneIndicesFirst:
		return "bones-first"
	}
	return "auto"
}

// Parse a layout name as accepted by the command line.
func ParseVertexLayout(name string) (VertexLayout, error) {
	switch name {
	case "", "auto":
		return LayoutAuto, nil
	case "weights-first":
		return LayoutWeightsFirst, nil
	case "bones-first":
		return LayoutBoneIndicesFirst, nil
	}
	return LayoutAuto, fmt.Errorf("reader: unknown vertex layout %q; expected one of auto, weights-first, bones-first", name)
}

// Options controls how a mesh file and its companion skeleton are read.
type Options struct {
	// Skinned vertex row layout.
	Layout VertexLayout

	// Name for the assembled mesh. Defaults to the mesh file base name.
	Name string

	// Load and bind a skeleton.
	LoadSkeleton bool

	// Skeleton file; relative paths are resolved against the mesh file.
	// Defaults to the mesh file name with a .skel extension.
	SkeletonFile string
}

// Get the default reader options.
func DefaultOptions() Options {
	return Options{
		Layout:       LayoutAuto,
		LoadSkeleton: true,
	}
}
