package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/whitted/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "whitted"
	app.Usage = "render scenes using Whitted-style ray tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to an image file",
			Description: `
Parse a scene description (.scn or .yaml), build a KD-tree to accelerate ray
intersection tests and render a single frame using recursive ray tracing with
Blinn-Phong shading, soft shadows and mirror reflections.

Render options can be loaded from a TOML file using --config. Flags that are
explicitly set on the command line override values from the config file.`,
			ArgsUsage: "scene_file",
			Flags:     cmd.RenderFlags(),
			Action:    cmd.RenderFrame,
		},
		{
			Name:      "info",
			Usage:     "display scene and KD-tree statistics",
			ArgsUsage: "scene_file",
			Flags:     cmd.InfoFlags(),
			Action:    cmd.SceneInfo,
		},
		{
			Name:  "convert",
			Usage: "convert scene files to the yaml scene format",
			Description: `
Parse each scene file and write its description in yaml format next to it. Model
and texture references are kept as-is.`,
			ArgsUsage: "scene_file1.scn scene_file2.scn ...",
			Action:    cmd.ConvertScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
