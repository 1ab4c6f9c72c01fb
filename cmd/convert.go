package cmd

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/achilleasa/whitted/asset/reader"
	"github.com/achilleasa/whitted/asset/writer"
	"github.com/urfave/cli"
)

// Convert scene files to the YAML scene format. The output for each scene is
// written next to it, replacing its extension with .yaml.
func ConvertScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument(s)")
	}

	for _, scenePath := range ctx.Args() {
		outPath := strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + ".yaml"
		if outPath == scenePath {
			logger.Warningf("skipping %q; scene is already in yaml format", scenePath)
			continue
		}

		raw, err := reader.ReadScene(scenePath)
		if err != nil {
			return err
		}

		if err = writer.WriteScene(raw, outPath); err != nil {
			return err
		}
		logger.Noticef("converted %q to %q", scenePath, outPath)
	}

	return nil
}
