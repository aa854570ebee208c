package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/achilleasa/meshimport/asset/scene"
	"github.com/achilleasa/meshimport/asset/scene/reader"
	"github.com/achilleasa/meshimport/asset/scene/writer"
	"github.com/urfave/cli"
)

// Build reader options from the command flags.
func readerOptions(ctx *cli.Context) (reader.Options, error) {
	opts := reader.DefaultOptions()

	layout, err := reader.ParseVertexLayout(ctx.String("layout"))
	if err != nil {
		return opts, err
	}
	opts.Layout = layout
	opts.LoadSkeleton = !ctx.Bool("no-skeleton")

	// Relative skeleton paths given on the command line refer to the
	// working directory rather than the mesh file.
	if skelFile := ctx.String("skeleton"); skelFile != "" {
		if !strings.Contains(skelFile, "://") {
			if skelFile, err = filepath.Abs(skelFile); err != nil {
				return opts, err
			}
		}
		opts.SkeletonFile = skelFile
	}
	return opts, nil
}

// Process each mesh file argument. Files are processed in argument order;
// a failure aborts only the file that caused it.
func forEachMesh(ctx *cli.Context, fn func(meshFile string, sc *scene.Scene) error) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		return errors.New("missing mesh file argument")
	}

	opts, err := readerOptions(ctx)
	if err != nil {
		return err
	}
	if opts.SkeletonFile != "" && ctx.NArg() > 1 {
		logger.Warningf("using skeleton %q for all %d mesh files", opts.SkeletonFile, ctx.NArg())
	}

	failed := 0
	for idx := 0; idx < ctx.NArg(); idx++ {
		meshFile := ctx.Args().Get(idx)
		if !strings.HasSuffix(strings.ToLower(meshFile), ".mesh") {
			logger.Warningf("skipping unsupported file %s", meshFile)
			continue
		}

		logger.Noticef("importing mesh: %s", meshFile)
		sc, err := reader.ReadScene(meshFile, opts)
		if err == nil {
			err = fn(meshFile, sc)
		}
		if err != nil {
			logger.Errorf("%s: %s", meshFile, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to process %d of %d file(s)", failed, ctx.NArg())
	}
	return nil
}

// Import mesh files and display the assembled scene info.
func ImportMesh(ctx *cli.Context) error {
	return forEachMesh(ctx, func(_ string, sc *scene.Scene) error {
		logger.Noticef("scene information:\n%s", sc.Stats())
		return nil
	})
}

// Import mesh files and convert them to glTF.
func ConvertMesh(ctx *cli.Context) error {
	out := ctx.String("out")
	if out != "" && ctx.NArg() > 1 {
		return errors.New("the --out flag can only be used with a single mesh file")
	}

	return forEachMesh(ctx, func(meshFile string, sc *scene.Scene) error {
		target := out
		if target == "" {
			target = strings.TrimSuffix(meshFile, filepath.Ext(meshFile)) + ".glb"
		}

		if err := writer.WriteScene(sc, target); err != nil {
			return err
		}
		logger.Noticef("wrote %s", target)
		return nil
	})
}
