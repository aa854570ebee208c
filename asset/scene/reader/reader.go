package reader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/achilleasa/meshimport/asset"
	"github.com/achilleasa/meshimport/asset/compiler"
	"github.com/achilleasa/meshimport/asset/format"
	"github.com/achilleasa/meshimport/asset/scene"
	"github.com/achilleasa/meshimport/log"
)

// Vertex rows of dense meshes can exceed the default scanner token size.
const maxLineLength = 1024 * 1024

// The extension of the skeleton file that accompanies a mesh file.
const SkeletonExt = ".skel"

var readerLogger = log.New("scene reader")

// Read and assemble a mesh from a .mesh resource. Row level problems are
// returned as diagnostics; an error is returned if the resource cannot be
// read or contains no usable geometry.
func ReadMesh(res *asset.Resource, opts Options) (*scene.Mesh, asset.Diagnostics, error) {
	mesh, diagnostics, err := readMesh(res, opts)
	logDiagnostics(diagnostics)
	return mesh, diagnostics, err
}

// Read a skeleton from a .skel resource. Bracket imbalance is reported as a
// diagnostic and the tree built so far is still returned.
func ReadSkeleton(res *asset.Resource) (*scene.Skeleton, asset.Diagnostics, error) {
	skel, diagnostics, err := readSkeleton(res)
	logDiagnostics(diagnostics)
	return skel, diagnostics, err
}

// Read a mesh file and, if requested, its companion skeleton and bind them
// into a scene. A missing skeleton file is recorded as a diagnostic and the
// mesh is returned unbound.
//
// If the mesh contains no usable geometry, ReadScene still returns a scene
// with the skeleton and the diagnostics collected so far together with
// asset.ErrEmptyMeshResult.
func ReadScene(filename string, opts Options) (*scene.Scene, error) {
	meshRes, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer meshRes.Close()

	start := time.Now()
	mesh, diagnostics, meshErr := readMesh(meshRes, opts)
	if meshErr != nil && !errors.Is(meshErr, asset.ErrEmptyMeshResult) {
		logDiagnostics(diagnostics)
		return nil, meshErr
	}

	var skel *scene.Skeleton
	if opts.LoadSkeleton {
		skelFile := opts.SkeletonFile
		if skelFile == "" {
			skelFile = meshRes.CompanionPath(SkeletonExt)
		}

		skelRes, err := asset.NewResource(skelFile, meshRes)
		if err != nil {
			diagnostics.Add(asset.ErrMissingSkeletonFile, meshRes.Path(), 0, "%s", err)
		} else {
			var skelDiagnostics asset.Diagnostics
			skel, skelDiagnostics, err = readSkeleton(skelRes)
			skelRes.Close()
			diagnostics = append(diagnostics, skelDiagnostics...)
			if err != nil {
				logDiagnostics(diagnostics)
				return nil, err
			}
		}
	}

	sc := scene.Bind(mesh, skel)
	sc.Diagnostics = diagnostics
	logDiagnostics(diagnostics)

	readerLogger.Noticef(`read scene from "%s" in %d ms`, meshRes.Path(), time.Since(start).Nanoseconds()/1e6)
	return sc, meshErr
}

func readMesh(res *asset.Resource, opts Options) (*scene.Mesh, asset.Diagnostics, error) {
	parser := newMeshParser(res.Path(), opts.Layout)
	parser.logger.Noticef(`parsing mesh from "%s"`, res.Path())

	start := time.Now()
	err := scanLines(res, parser.feed, parser.finish)
	if err != nil {
		return nil, parser.diagnostics, err
	}
	parser.logger.Noticef("parsed %d mesh fragment(s) in %d ms", len(parser.fragments), time.Since(start).Nanoseconds()/1e6)

	name := opts.Name
	if name == "" {
		name = res.BaseName()
	}

	mesh, compileDiagnostics, err := compiler.Compile(name, parser.fragments)
	diagnostics := append(parser.diagnostics, compileDiagnostics...)
	if err != nil {
		return nil, diagnostics, fmt.Errorf("%w: %s", err, res.Path())
	}

	if parser.boneCount >= 0 {
		mesh.DeclaredBoneCount = parser.boneCount
	}
	if parser.skinned && !mesh.Skinned {
		parser.logger.Warningf(`"%s" is declared as skinned but contains no skinned vertices`, res.Path())
	}
	return mesh, diagnostics, nil
}

func readSkeleton(res *asset.Resource) (*scene.Skeleton, asset.Diagnostics, error) {
	parser := newSkeletonParser(res.BaseName(), res.Path())
	parser.logger.Noticef(`parsing skeleton from "%s"`, res.Path())

	start := time.Now()
	var skel *scene.Skeleton
	err := scanLines(res, parser.feed, func(lineNum int) {
		skel = parser.finish(lineNum)
	})
	if err != nil {
		return nil, parser.diagnostics, err
	}

	parser.logger.Noticef("parsed %d bone(s) in %d ms", parser.parsedBones, time.Since(start).Nanoseconds()/1e6)
	return skel, parser.diagnostics, nil
}

// Read the entire resource, classify each line and pass it to feedFn.
// Once all lines are processed, finishFn receives the last line number.
func scanLines(res *asset.Resource, feedFn func(int, format.Line), finishFn func(int)) error {
	data, err := res.ReadAll()
	if err != nil {
		return err
	}

	var lineNum int
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		lineNum++
		feedFn(lineNum, format.Classify(scanner.Text()))
	}
	if err = scanner.Err(); err != nil {
		return fmt.Errorf("%w: could not read '%s' (line %d): %s", asset.ErrIo, res.Path(), lineNum+1, err)
	}

	finishFn(lineNum)
	return nil
}

func logDiagnostics(diagnostics asset.Diagnostics) {
	for _, d := range diagnostics {
		readerLogger.Warning(d.Error())
	}
}
