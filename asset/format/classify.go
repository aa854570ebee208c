package format

import (
	"strconv"
	"strings"
)

// Classify a single line of text. Classification is attempted in a fixed
// order: keyword headers and flags, then brackets, then data rows.
func Classify(text string) Line {
	text = strings.TrimRight(text, "\r\n")
	depth := 0
	for depth < len(text) && text[depth] == '\t' {
		depth++
	}

	body := strings.TrimSpace(text[depth:])
	if body == "" {
		return Line{Kind: Blank, Depth: depth}
	}

	fields := strings.Fields(body)
	if line, ok := classifyHeader(body, fields, depth); ok {
		return line
	}

	if kind, ok := classifyBracket(body); ok {
		return Line{Kind: kind, Depth: depth, Int: int64(len(body))}
	}

	if depth >= MinDataRowDepth {
		if strings.Contains(body, "/") {
			if groups, ok := parseGroups(body); ok {
				return Line{Kind: VertexDataRow, Depth: depth, Groups: groups}
			}
		} else if indices, ok := parseIndices(fields); ok {
			return Line{Kind: IndexDataRow, Depth: depth, Indices: indices}
		}
	}

	line := Line{Kind: Unrecognized, Depth: depth}
	if keywords[fields[0]] {
		line.Keyword = fields[0]
	}
	return line
}

var keywords = map[string]bool{
	"Indices": true, "Vertices": true, "BoneCount": true, "Skinned": true,
	"Bone": true, "DataCRC": true, "NumBones": true, "MirrorBoneId": true,
	"Children": true, "Flags": true, "RotationQuaternion": true,
	"LocalOffset": true, "Scale": true,
}

func classifyHeader(body string, fields []string, depth int) (Line, bool) {
	line := Line{Depth: depth}
	args := fields[1:]

	switch fields[0] {
	case "Indices", "Vertices", "BoneCount":
		if depth < MinMeshHeaderDepth || len(args) != 1 {
			return line, false
		}
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return line, false
		}
		line.Int = int64(v)
		switch fields[0] {
		case "Indices":
			line.Kind = IndexHeader
		case "Vertices":
			line.Kind = VertexHeader
		default:
			line.Kind = BoneCountDecl
		}
	case "Skinned":
		if depth < MinMeshHeaderDepth || len(args) != 1 {
			return line, false
		}
		switch args[0] {
		case "True":
			line.Flag = true
		case "False":
		default:
			return line, false
		}
		line.Kind = SkinnedFlag
	case "Bone":
		name, rest, ok := splitName(strings.TrimSpace(body[len("Bone"):]))
		if !ok || len(rest) < 1 || len(rest) > 2 {
			return line, false
		}
		if len(rest) == 2 {
			if rest[1] != "{" {
				return line, false
			}
			line.Opens = true
		}
		line.Kind = BoneHeader
		line.Name = name
		line.ID = rest[0]
	case "DataCRC", "NumBones", "MirrorBoneId", "Children":
		if len(args) != 1 {
			return line, false
		}
		v, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return line, false
		}
		line.Int = v
		switch fields[0] {
		case "DataCRC":
			line.Kind = DataCrc
		case "NumBones":
			line.Kind = NumBones
		case "MirrorBoneId":
			line.Kind = MirrorBoneId
		default:
			line.Kind = ChildrenDecl
		}
	case "Flags":
		line.Kind = Flags
		line.Tokens = append([]string{}, args...)
	case "RotationQuaternion", "LocalOffset", "Scale":
		expArgs := 3
		if fields[0] == "RotationQuaternion" {
			expArgs = 4
		}
		if len(args) != expArgs {
			return line, false
		}
		floats, ok := parseFloats(args)
		if !ok {
			return line, false
		}
		line.Floats = floats
		switch fields[0] {
		case "RotationQuaternion":
			line.Kind = RotationQuaternion
		case "LocalOffset":
			line.Kind = LocalOffset
		default:
			line.Kind = Scale
		}
	default:
		return line, false
	}

	return line, true
}

// Bracket lines contain nothing but one or more braces of the same kind.
func classifyBracket(body string) (Kind, bool) {
	switch {
	case strings.Trim(body, "{") == "":
		return OpenBracket, true
	case strings.Trim(body, "}") == "":
		return CloseBracket, true
	}
	return Unrecognized, false
}

// Split a bone name from the remaining fields. Quoted names may contain spaces.
func splitName(s string) (string, []string, bool) {
	if !strings.HasPrefix(s, `"`) {
		fields := strings.Fields(s)
		if len(fields) == 0 {
			return "", nil, false
		}
		return fields[0], fields[1:], true
	}

	end := strings.IndexByte(s[1:], '"')
	if end < 0 {
		return "", nil, false
	}
	return s[1 : end+1], strings.Fields(s[end+2:]), true
}

// Index rows start with a run of unsigned integers. Anything after the run is
// ignored and runs longer than MaxIndicesPerRow are truncated.
func parseIndices(fields []string) ([]uint32, bool) {
	indices := make([]uint32, 0, MaxIndicesPerRow)
	for _, tok := range fields {
		if len(indices) == MaxIndicesPerRow {
			break
		}
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			break
		}
		indices = append(indices, uint32(v))
	}
	return indices, len(indices) != 0
}

func parseGroups(body string) ([]Group, bool) {
	parts := strings.Split(body, "/")

	// Tolerate a trailing separator.
	if strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	groups := make([]Group, len(parts))
	for idx, part := range parts {
		tokens := strings.Fields(part)
		if len(tokens) == 0 {
			return nil, false
		}
		values, ok := parseFloats(tokens)
		if !ok {
			return nil, false
		}
		groups[idx] = Group{Values: values, Integral: isIntegral(tokens)}
	}
	return groups, true
}

func parseFloats(tokens []string) ([]float32, bool) {
	out := make([]float32, len(tokens))
	for idx, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return nil, false
		}
		out[idx] = float32(v)
	}
	return out, true
}

func isIntegral(tokens []string) bool {
	for _, tok := range tokens {
		if _, err := strconv.ParseInt(tok, 10, 64); err != nil {
			return false
		}
	}
	return true
}
