package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// The Resource type wraps a local file or a remote (http/https) stream.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Returns the resource file name without its extension. This is the name
// used for meshes and skeletons parsed from the resource.
func (r *Resource) BaseName() string {
	base := path.Base(filepath.ToSlash(r.url.Path))
	return strings.TrimSuffix(base, path.Ext(base))
}

// Returns the path of a resource living next to this one that shares the
// same base name but uses a different extension (e.g. the .skel file that
// accompanies a .mesh file).
func (r *Resource) CompanionPath(ext string) string {
	base := path.Base(filepath.ToSlash(r.url.Path))
	return strings.TrimSuffix(base, path.Ext(base)) + ext
}

// Read the entire resource into memory.
func (r *Resource) ReadAll() ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read '%s': %s", ErrIo, r.Path(), err)
	}
	return data, nil
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// does not define a scheme, then the path to the new Resource will be generated
// by concatenating the base path of relTo and pathToResource.
//
// Remote URLs are fetched with the net/http package. The caller must close
// the returned Resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIo, err)
	}

	// If this is a relative url, clone parent url and adjust its path
	if resURL.Scheme == "" && relTo != nil && !filepath.IsAbs(resURL.Path) {
		relPath := resURL.Path
		resURL, _ = url.Parse(relTo.url.String())
		prefix := resURL.Path
		if resURL.Scheme == "" {
			prefix, err = filepath.Abs(relTo.url.String())
			if err != nil {
				return nil, fmt.Errorf("%w: could not detect abs path for %s; %s", ErrIo, relTo.url.String(), err.Error())
			}
		}
		resURL.Path = path.Join(path.Dir(filepath.ToSlash(prefix)), relPath)
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(resURL.Path))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrIo, err)
		}
	case "http", "https":
		resp, err := http.Get(resURL.String())
		if err != nil {
			return nil, fmt.Errorf("%w: could not fetch '%s': %s", ErrIo, resURL.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: could not fetch '%s': status %d", ErrIo, resURL.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("%w: unsupported scheme '%s'", ErrIo, resURL.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, err := url.Parse(name)
	if err != nil {
		resURL = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
	}
}
