// Package format classifies the lines of tab-indented .mesh and .skel files.
package format

// The kind of a classified line.
type Kind uint8

const (
	Unrecognized Kind = iota
	Blank

	// Mesh block headers and flags.
	IndexHeader
	VertexHeader
	SkinnedFlag
	BoneCountDecl

	// Skeleton headers and bone properties.
	BoneHeader
	DataCrc
	NumBones
	MirrorBoneId
	Flags
	RotationQuaternion
	LocalOffset
	Scale
	ChildrenDecl

	// Structural brackets.
	OpenBracket
	CloseBracket

	// Data rows.
	IndexDataRow
	VertexDataRow
)

// Minimum tab depth for the mesh block headers (Indices, Vertices, Skinned, BoneCount).
const MinMeshHeaderDepth = 1

// Minimum tab depth for index and vertex data rows.
const MinDataRowDepth = 4

// Maximum number of indices in a single index row.
const MaxIndicesPerRow = 15

var kindNames = [...]string{
	Unrecognized:       "Unrecognized",
	Blank:              "Blank",
	IndexHeader:        "IndexHeader",
	VertexHeader:       "VertexHeader",
	SkinnedFlag:        "SkinnedFlag",
	BoneCountDecl:      "BoneCountDecl",
	BoneHeader:         "BoneHeader",
	DataCrc:            "DataCrc",
	NumBones:           "NumBones",
	MirrorBoneId:       "MirrorBoneId",
	Flags:              "Flags",
	RotationQuaternion: "RotationQuaternion",
	LocalOffset:        "LocalOffset",
	Scale:              "Scale",
	ChildrenDecl:       "ChildrenDecl",
	OpenBracket:        "OpenBracket",
	CloseBracket:       "CloseBracket",
	IndexDataRow:       "IndexDataRow",
	VertexDataRow:      "VertexDataRow",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// A Group is one slash-separated block of numbers in a vertex row.
type Group struct {
	Values []float32

	// True if every token in the group is an integer literal.
	Integral bool
}

// Line is the classification of a single line of text. Only the fields
// relevant to Kind are populated.
type Line struct {
	Kind Kind

	// Number of leading tab characters.
	Depth int

	// Integer argument of count headers (Indices, Vertices, BoneCount,
	// DataCRC, NumBones, MirrorBoneId, Children) or the number of braces
	// on a bracket line.
	Int int64

	// Skinned flag value.
	Flag bool

	// Bone header name and identifier. Opens is set when the header is
	// followed by an opening bracket on the same line.
	Name  string
	ID    string
	Opens bool

	// Flags tokens.
	Tokens []string

	// RotationQuaternion, LocalOffset and Scale arguments.
	Floats []float32

	// Index row values.
	Indices []uint32

	// Vertex row groups.
	Groups []Group

	// Leading keyword of an unrecognized line that starts like a header.
	Keyword string
}

// Returns true for lines that drive block structure (headers, flags and brackets).
func (l Line) IsControl() bool {
	switch l.Kind {
	case Unrecognized, Blank, IndexDataRow, VertexDataRow:
		return false
	}
	return true
}
