package writer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/achilleasa/meshimport/asset/scene"
)

var ErrUnsupportedFormat = errors.New("writer: unsupported file format")

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition
	Write(*scene.Scene) error
}

// Write scene to a file. The output format is selected by the file extension.
func WriteScene(sc *scene.Scene, filename string) error {
	var writer Writer
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".glb":
		writer = newGltfWriter(filename, true)
	case ".gltf":
		writer = newGltfWriter(filename, false)
	default:
		return fmt.Errorf("%w %q; expected .glb or .gltf", ErrUnsupportedFormat, ext)
	}
	return writer.Write(sc)
}
