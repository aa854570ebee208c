package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/achilleasa/meshimport/asset"
	"github.com/achilleasa/meshimport/asset/scene"
	"github.com/achilleasa/meshimport/asset/scene/reader"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display the bone hierarchy of a skeleton file.
func ShowSkeleton(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing skeleton file")
	}

	res, err := asset.NewResource(ctx.Args().First(), nil)
	if err != nil {
		return err
	}
	defer res.Close()

	skel, diagnostics, err := reader.ReadSkeleton(res)
	if err != nil {
		return err
	}

	logger.Noticef("skeleton information:\n%s", boneTable(skel, len(diagnostics)))
	return nil
}

func boneTable(skel *scene.Skeleton, diagnostics int) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Bone", "ID", "Offset", "Rotation (w x y z)", "Scale", "Children"})

	skel.Walk(func(bone *scene.Bone, depth int) bool {
		rot := bone.Rotation
		table.Append([]string{
			strings.Repeat("  ", depth-1) + bone.Name,
			bone.ID,
			fmt.Sprintf("%g %g %g", bone.LocalOffset[0], bone.LocalOffset[1], bone.LocalOffset[2]),
			fmt.Sprintf("%g %g %g %g", rot.W, rot.V[0], rot.V[1], rot.V[2]),
			fmt.Sprintf("%g %g %g", bone.Scale[0], bone.Scale[1], bone.Scale[2]),
			fmt.Sprint(len(bone.Children)),
		})
		return true
	})

	table.SetFooter([]string{
		skel.Name,
		fmt.Sprintf("%d/%d bones", len(skel.Bones()), skel.BoneCount),
		fmt.Sprintf("depth %d", skel.Depth()),
		fmt.Sprintf("crc %d", skel.DataCRC),
		" ",
		fmt.Sprintf("%d diagnostics", diagnostics),
	})

	table.Render()
	return buf.String()
}
