package cmd

import (
	"errors"

	"github.com/achilleasa/whitted/asset/compiler"
	"github.com/achilleasa/whitted/asset/reader"
	"github.com/achilleasa/whitted/scene"
	"github.com/urfave/cli"
)

// Flags for the info command.
func InfoFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "kd-depth",
			Value: scene.DefaultKDMaxDepth,
			Usage: "max KD-tree depth",
		},
		cli.IntFlag{
			Name:  "kd-leaf-items",
			Value: scene.DefaultKDMinLeafItems,
			Usage: "KD-tree nodes with this many items or fewer become leaves",
		},
	}
}

// Compile a scene and display its statistics.
func SceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	raw, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	sc, err := compiler.Compile(raw, compiler.Options{
		KDTree: scene.KDTreeOptions{
			MaxDepth:     ctx.Int("kd-depth"),
			MinLeafItems: ctx.Int("kd-leaf-items"),
		},
	})
	if err != nil {
		return err
	}

	logger.Noticef("scene information\n%s", sc.Stats())
	return nil
}
