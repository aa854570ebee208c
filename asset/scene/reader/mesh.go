package reader

import (
	"github.com/achilleasa/meshimport/asset"
	"github.com/achilleasa/meshimport/asset/compiler/input"
	"github.com/achilleasa/meshimport/asset/format"
	"github.com/achilleasa/meshimport/log"
)

type meshParserState uint8

const (
	stateSeeking meshParserState = iota
	stateReadingIndices
	stateReadingVertices
)

// The meshParser consumes classified lines of a .mesh file and emits a raw
// fragment each time a vertex block is closed.
type meshParser struct {
	logger log.Logger
	file   string
	layout VertexLayout

	state meshParserState

	// Values of the Skinned and BoneCount header lines.
	skinned   bool
	boneCount int

	// Accumulators for the current fragment.
	indices   []uint32
	vertices  []input.RawVertex
	grammar   *vertexGrammar
	expCount  int64
	blockLine int

	fragments   []*input.RawMeshFragment
	diagnostics asset.Diagnostics
}

func newMeshParser(file string, layout VertexLayout) *meshParser {
	return &meshParser{
		logger:    log.New("mesh reader"),
		file:      file,
		layout:    layout,
		boneCount: -1,
	}
}

// Process the next classified line.
func (p *meshParser) feed(lineNum int, line format.Line) {
	switch p.state {
	case stateSeeking:
		p.seek(lineNum, line)
	case stateReadingIndices:
		p.readIndices(lineNum, line)
	case stateReadingVertices:
		p.readVertices(lineNum, line)
	}
}

func (p *meshParser) seek(lineNum int, line format.Line) {
	switch line.Kind {
	case format.IndexHeader:
		p.indices = nil
		p.expCount = line.Int
		p.blockLine = lineNum
		p.state = stateReadingIndices
	case format.VertexHeader:
		p.vertices = nil
		p.grammar = nil
		p.expCount = line.Int
		p.blockLine = lineNum
		p.state = stateReadingVertices
	case format.SkinnedFlag:
		p.skinned = line.Flag
	case format.BoneCountDecl:
		p.boneCount = int(line.Int)
	}
}

func (p *meshParser) readIndices(lineNum int, line format.Line) {
	switch line.Kind {
	case format.IndexDataRow:
		p.indices = append(p.indices, line.Indices...)
	case format.CloseBracket:
		if int64(len(p.indices)) != p.expCount {
			p.logger.Infof("[%s: %d] index block declares %d indices; parsed %d", p.file, p.blockLine, p.expCount, len(p.indices))
		}
		p.state = stateSeeking
	case format.VertexDataRow, format.Unrecognized:
		p.diagnostics.Add(asset.ErrMalformedDataRow, p.file, lineNum, "expected an index row starting with an unsigned integer")
	}
}

func (p *meshParser) readVertices(lineNum int, line format.Line) {
	switch line.Kind {
	case format.VertexDataRow:
		p.appendVertex(lineNum, line.Groups)
	case format.CloseBracket:
		if int64(len(p.vertices)) != p.expCount {
			p.logger.Infof("[%s: %d] vertex block declares %d vertices; parsed %d", p.file, p.blockLine, p.expCount, len(p.vertices))
		}
		p.emitFragment()
		p.state = stateSeeking
	case format.IndexDataRow, format.Unrecognized:
		p.diagnostics.Add(asset.ErrMalformedDataRow, p.file, lineNum, "expected a vertex row")
	}
}

func (p *meshParser) appendVertex(lineNum int, groups []format.Group) {
	if p.grammar == nil {
		grammar, err := selectGrammar(groups, p.layout)
		if err != nil {
			p.diagnostics.Add(asset.ErrMalformedDataRow, p.file, lineNum, "%s", err)
			return
		}
		if grammar.skinned != p.skinned {
			p.diagnostics.Add(asset.ErrStructure, p.file, lineNum, "vertex rows are %s but the mesh declares Skinned %t", grammar, p.skinned)
		}
		p.logger.Debugf("[%s: %d] using %s vertex row grammar", p.file, lineNum, grammar)
		p.grammar = &grammar
	}

	vertex, err := p.grammar.parse(groups)
	if err != nil {
		p.diagnostics.Add(asset.ErrMalformedDataRow, p.file, lineNum, "%s", err)
		return
	}
	p.vertices = append(p.vertices, vertex)
}

// Emit a fragment with the vertices of the current block and the indices
// gathered since the previous fragment.
func (p *meshParser) emitFragment() {
	frag := &input.RawMeshFragment{
		Indices:  p.indices,
		Vertices: p.vertices,
		File:     p.file,
		Line:     p.blockLine,
	}
	if p.grammar != nil {
		frag.Skinned = p.grammar.skinned
	}
	p.fragments = append(p.fragments, frag)

	p.indices = nil
	p.vertices = nil
	p.grammar = nil
}

// Flush any open block once the input is exhausted.
func (p *meshParser) finish(lineNum int) {
	switch p.state {
	case stateReadingIndices:
		p.diagnostics.Add(asset.ErrStructure, p.file, lineNum, "end of input inside the index block opened at line %d", p.blockLine)
	case stateReadingVertices:
		p.diagnostics.Add(asset.ErrStructure, p.file, lineNum, "end of input inside the vertex block opened at line %d", p.blockLine)
		p.emitFragment()
	}
	p.state = stateSeeking
}
