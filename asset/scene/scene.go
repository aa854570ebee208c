package scene

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/meshimport/asset"
	"github.com/olekukonko/tablewriter"
)

// A Binding associates a mesh vertex group with a skeleton bone. Bone is
// nil for groups that could not be matched.
type Binding struct {
	Group string
	Bone  *Bone
}

// Returns true if the group was matched to a bone.
func (b Binding) Bound() bool {
	return b.Bone != nil
}

// The output of the import pipeline: an assembled mesh, an optional
// skeleton and the group to bone bindings between them.
type Scene struct {
	Mesh     *Mesh
	Skeleton *Skeleton
	Bindings []Binding

	// Recoverable problems collected while reading and assembling.
	Diagnostics asset.Diagnostics
}

// Get the binding for a vertex group.
func (sc *Scene) Binding(group string) (Binding, bool) {
	for _, b := range sc.Bindings {
		if b.Group == group {
			return b, true
		}
	}
	return Binding{}, false
}

// Count the bound vertex groups.
func (sc *Scene) BoundGroups() int {
	count := 0
	for _, b := range sc.Bindings {
		if b.Bound() {
			count++
		}
	}
	return count
}

// Generate a table with scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count"})

	if sc.Mesh != nil {
		table.Append([]string{"Mesh", sc.Mesh.Name, " "})
		table.Append([]string{"", "Fragments", fmt.Sprint(len(sc.Mesh.Fragments))})
		table.Append([]string{"", "Vertices", fmt.Sprint(len(sc.Mesh.Positions))})
		table.Append([]string{"", "Faces", fmt.Sprint(len(sc.Mesh.Faces))})
		table.Append([]string{"", "Vertex groups", fmt.Sprint(len(sc.Mesh.VertexGroups))})
		bbox := sc.Mesh.BBox()
		table.Append([]string{"", "Bounds", fmt.Sprintf("%v - %v", bbox[0], bbox[1])})
		table.Append([]string{" ", " ", " "})
	}

	if sc.Skeleton != nil {
		table.Append([]string{"Skeleton", sc.Skeleton.Name, " "})
		table.Append([]string{"", "Bones (declared)", fmt.Sprint(sc.Skeleton.BoneCount)})
		table.Append([]string{"", "Bones (parsed)", fmt.Sprint(len(sc.Skeleton.Bones()))})
		table.Append([]string{"", "Depth", fmt.Sprint(sc.Skeleton.Depth())})
		table.Append([]string{" ", " ", " "})
	}

	table.Append([]string{"Bindings", "---", fmt.Sprint(len(sc.Bindings))})
	table.Append([]string{"", "Bound", fmt.Sprint(sc.BoundGroups())})
	table.Append([]string{"", "Unbound", fmt.Sprint(len(sc.Bindings) - sc.BoundGroups())})
	table.SetFooter([]string{"Diagnostics", " ", fmt.Sprint(len(sc.Diagnostics))})

	table.Render()
	return buf.String()
}
