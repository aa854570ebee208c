package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/meshimport/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	meshFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "layout",
			Value: "auto",
			Usage: "skinned vertex row layout: auto, weights-first or bones-first",
		},
		cli.StringFlag{
			Name:  "skeleton, s",
			Usage: "skeleton file to bind (default: the .skel file next to each mesh)",
		},
		cli.BoolFlag{
			Name:  "no-skeleton",
			Usage: "do not load a skeleton",
		},
	}

	app := cli.NewApp()
	app.Name = "meshimport"
	app.Usage = "import .mesh/.skel text models"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringSliceFlag{
			Name:  "log-level",
			Value: &cli.StringSlice{},
			Usage: `override the level of a single logger (e.g. "mesh reader=debug")`,
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "import",
			Usage: "import mesh files and display scene information",
			Description: `
Parse one or more .mesh files, assemble their fragments into a single mesh and
bind it to the companion skeleton. Diagnostics for malformed rows and
structural problems are reported as warnings.`,
			ArgsUsage: "mesh_file1.mesh mesh_file2.mesh ...",
			Flags:     meshFlags,
			Action:    cmd.ImportMesh,
		},
		{
			Name:  "convert",
			Usage: "convert mesh files to glTF",
			Description: `
Import one or more .mesh files and write each bound scene to a glTF file. The
output format is selected by the extension of the --out flag (.glb or .gltf);
by default a .glb file is written next to each mesh file.`,
			ArgsUsage: "mesh_file1.mesh mesh_file2.mesh ...",
			Flags: append(meshFlags, cli.StringFlag{
				Name:  "out, o",
				Usage: "output file (single mesh file only)",
			}),
			Action: cmd.ConvertMesh,
		},
		{
			Name:      "skeleton",
			Usage:     "display the bone hierarchy of a skeleton file",
			ArgsUsage: "skeleton_file.skel",
			Action:    cmd.ShowSkeleton,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
