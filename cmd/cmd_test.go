package cmd

import (
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/meshimport/asset/scene"
	"github.com/achilleasa/meshimport/asset/scene/reader"
	"github.com/urfave/cli"
)

func meshContext(layout, skeleton string, noSkeleton bool) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("layout", layout, "")
	set.String("skeleton", skeleton, "")
	set.Bool("no-skeleton", noSkeleton, "")
	return cli.NewContext(nil, set, nil)
}

func TestReaderOptions(t *testing.T) {
	opts, err := readerOptions(meshContext("bones-first", "rig.skel", false))
	if err != nil {
		t.Fatal(err)
	}
	if opts.Layout != reader.LayoutBoneIndicesFirst {
		t.Fatalf("expected layout %s; got %s", reader.LayoutBoneIndicesFirst, opts.Layout)
	}
	if !opts.LoadSkeleton {
		t.Fatal("expected skeleton loading to be enabled")
	}
	if !filepath.IsAbs(opts.SkeletonFile) || filepath.Base(opts.SkeletonFile) != "rig.skel" {
		t.Fatalf("expected an absolute skeleton path; got %q", opts.SkeletonFile)
	}

	opts, err = readerOptions(meshContext("auto", "https://example.com/rig.skel", true))
	if err != nil {
		t.Fatal(err)
	}
	if opts.LoadSkeleton {
		t.Fatal("expected skeleton loading to be disabled")
	}
	if opts.SkeletonFile != "https://example.com/rig.skel" {
		t.Fatalf("expected remote skeleton path to be kept; got %q", opts.SkeletonFile)
	}

	if _, err = readerOptions(meshContext("diagonal", "", false)); err == nil {
		t.Fatal("expected an error for an unknown layout")
	}
}

func TestBoneTable(t *testing.T) {
	skel := scene.NewSkeleton("body")
	skel.BoneCount = 2
	root := scene.NewBone("root", "0")
	root.AddChild(scene.NewBone("spine", "11"))
	skel.Roots = []*scene.Bone{root}

	out := boneTable(skel, 0)
	for _, exp := range []string{"root", "spine", "11", "2/2 bones", "depth 2"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected table to contain %q; got:\n%s", exp, out)
		}
	}
}
