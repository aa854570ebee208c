package asset

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalResource(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "body.mesh")
	if err := os.WriteFile(meshFile, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewResource(meshFile, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	data, err := res.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Fatalf("expected to read %q; got %q", "payload", string(data))
	}

	if res.BaseName() != "body" {
		t.Fatalf("expected base name %q; got %q", "body", res.BaseName())
	}
	if res.CompanionPath(".skel") != "body.skel" {
		t.Fatalf("expected companion path %q; got %q", "body.skel", res.CompanionPath(".skel"))
	}
}

func TestMissingLocalResource(t *testing.T) {
	_, err := NewResource(filepath.Join(t.TempDir(), "missing.mesh"), nil)
	if !errors.Is(err, ErrIo) {
		t.Fatalf("expected an i/o error; got %v", err)
	}
}

func TestCompanionResource(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"body.mesh", "body.skel"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}

	meshRes, err := NewResource(filepath.Join(dir, "body.mesh"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer meshRes.Close()

	skelRes, err := NewResource(meshRes.CompanionPath(".skel"), meshRes)
	if err != nil {
		t.Fatal(err)
	}
	defer skelRes.Close()

	data, _ := skelRes.ReadAll()
	if string(data) != "body.skel" {
		t.Fatalf("expected companion resource to be body.skel; got %q", string(data))
	}
}

func TestHttpResource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "remote.mesh"), []byte("remote"), 0644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer server.Close()

	res, err := NewResource(server.URL+"/remote.mesh", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if !res.IsRemote() {
		t.Fatal("expected resource to be remote")
	}
	if res.BaseName() != "remote" {
		t.Fatalf("expected base name %q; got %q", "remote", res.BaseName())
	}

	fetchURL := server.URL + "/file-not-found.foo"
	expError := fmt.Sprintf("could not fetch '%s': status %d", fetchURL, 404)
	_, err = NewResource(fetchURL, nil)
	if err == nil || !strings.Contains(err.Error(), expError) || !errors.Is(err, ErrIo) {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestRelativeResources(t *testing.T) {
	serverHits := 0
	serverFn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHits++
		if r.URL.Path == "/foo/body.mesh" || r.URL.Path == "/foo/body.skel" {
			w.Write([]byte("OK"))
		} else {
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(serverFn)
	defer server.Close()

	res1, err := NewResource(server.URL+"/foo/body.mesh", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res1.Close()
	res2, err := NewResource(res1.CompanionPath(".skel"), res1)
	if err != nil {
		t.Fatal(err)
	}
	defer res2.Close()

	if serverHits != 2 {
		t.Fatalf("expected server to receive 2 requests; got %d", serverHits)
	}
}

func TestUnsupportedResourceScheme(t *testing.T) {
	expError := "asset: i/o error: unsupported scheme 'gopher'"
	_, err := NewResource("gopher://digging.mesh", nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestDiagnostics(t *testing.T) {
	var diags Diagnostics
	diags.Add(ErrMalformedDataRow, "body.mesh", 12, "expected %d groups; got %d", 6, 5)
	diags.Add(ErrStructure, "body.mesh", 0, "dropping fragment %d", 1)

	if diags.Count(ErrMalformedDataRow) != 1 {
		t.Fatalf("expected 1 malformed row diagnostic; got %d", diags.Count(ErrMalformedDataRow))
	}

	expMsg := "[body.mesh: 12] asset: malformed data row: expected 6 groups; got 5"
	if diags[0].Error() != expMsg {
		t.Fatalf("expected message %q; got %q", expMsg, diags[0].Error())
	}

	if !errors.Is(diags[1], ErrStructure) {
		t.Fatal("expected diagnostic to unwrap to its kind")
	}

	if got := diags.Filter(ErrStructure); len(got) != 1 || got[0] != diags[1] {
		t.Fatalf("expected filter to return the structural diagnostic; got %v", got)
	}
}
