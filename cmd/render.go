package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/achilleasa/whitted/asset/compiler"
	"github.com/achilleasa/whitted/asset/reader"
	"github.com/achilleasa/whitted/renderer"
	"github.com/achilleasa/whitted/tracer"
	"github.com/fsnotify/fsnotify"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Scene file changes are coalesced over this interval before re-rendering.
const watchDebounce = 250 * time.Millisecond

// Flags for the render command.
func RenderFlags() []cli.Flag {
	defaults := renderer.DefaultOptions()
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: defaults.FrameW,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: defaults.FrameH,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "depth",
			Value: defaults.MaxDepth,
			Usage: "max ray recursion depth",
		},
		cli.IntFlag{
			Name:  "shadow-samples",
			Value: defaults.ShadowSamples,
			Usage: "shadow rays per light with a radius",
		},
		cli.StringFlag{
			Name:  "reflection",
			Value: defaults.Reflection.String(),
			Usage: "reflection accumulation mode (once, per-light)",
		},
		cli.BoolFlag{
			Name:  "brute-force",
			Usage: "test every primitive instead of using the KD-tree",
		},
		cli.IntFlag{
			Name:  "kd-depth",
			Value: defaults.KDMaxDepth,
			Usage: "max KD-tree depth",
		},
		cli.IntFlag{
			Name:  "kd-leaf-items",
			Value: defaults.KDMinLeafItems,
			Usage: "KD-tree nodes with this many items or fewer become leaves",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: defaults.Workers,
			Usage: "number of workers tracing row blocks in parallel",
		},
		cli.Float64Flag{
			Name:  "gamma",
			Value: defaults.Gamma,
			Usage: "gamma applied to the output image",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: defaults.Output,
			Usage: "image filename for the rendered frame (png, jpg, bmp, ppm)",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load render options from a TOML file; explicitly set flags override file values",
		},
		cli.BoolFlag{
			Name:  "watch",
			Usage: "re-render whenever the scene file changes",
		},
	}
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}
	scenePath := ctx.Args().First()

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if ctx.Bool("watch") {
		return watchScene(runCtx, scenePath, opts)
	}
	return renderScene(runCtx, scenePath, opts, nil)
}

// Assemble render options from the optional config file and the command
// line flags.
func renderOptions(ctx *cli.Context) (renderer.Options, error) {
	opts := renderer.DefaultOptions()

	var err error
	cfgFile := ctx.String("config")
	if cfgFile == "" {
		cfgFile = ctx.String("c")
	}
	if cfgFile != "" {
		if opts, err = renderer.LoadOptions(cfgFile, opts); err != nil {
			return opts, err
		}
		logger.Infof("loaded render options from %q", cfgFile)
	}

	if ctx.IsSet("width") {
		opts.FrameW = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		opts.FrameH = ctx.Int("height")
	}
	if ctx.IsSet("depth") {
		opts.MaxDepth = ctx.Int("depth")
	}
	if ctx.IsSet("shadow-samples") {
		opts.ShadowSamples = ctx.Int("shadow-samples")
	}
	if ctx.IsSet("workers") {
		opts.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("reflection") {
		if opts.Reflection, err = tracer.ParseReflectionMode(ctx.String("reflection")); err != nil {
			return opts, err
		}
	}
	if ctx.IsSet("brute-force") {
		opts.BruteForce = ctx.Bool("brute-force")
	}
	if ctx.IsSet("kd-depth") {
		opts.KDMaxDepth = ctx.Int("kd-depth")
	}
	if ctx.IsSet("kd-leaf-items") {
		opts.KDMinLeafItems = ctx.Int("kd-leaf-items")
	}
	if ctx.IsSet("gamma") {
		opts.Gamma = ctx.Float64("gamma")
	}
	for _, name := range []string{"out", "o"} {
		if ctx.IsSet(name) {
			opts.Output = ctx.String(name)
		}
	}

	if err = opts.Validate(); err != nil {
		return opts, err
	}
	return opts, renderer.ValidateOutput(opts.Output)
}

// Read, compile and render a scene. A non-nil scheduler carries row block
// feedback between successive renders of the same scene.
func renderScene(ctx context.Context, scenePath string, opts renderer.Options, scheduler renderer.BlockScheduler) error {
	raw, err := reader.ReadScene(scenePath)
	if err != nil {
		return err
	}

	sc, err := compiler.Compile(raw, compiler.Options{
		KDTree:     opts.KDTreeOptions(),
		SkipKDTree: opts.BruteForce,
	})
	if err != nil {
		return err
	}

	fb := renderer.NewFramebuffer(opts.FrameW, opts.FrameH, opts.Output, opts.Gamma)
	r, err := renderer.NewDefaultWithScheduler(sc, fb, opts, scheduler)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(ctx); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", opts.Output)

	displayFrameStats(r.Stats())
	return nil
}

// Render the scene and re-render it each time the scene file is modified
// until ctx is cancelled.
func watchScene(ctx context.Context, scenePath string, opts renderer.Options) error {
	absPath, err := filepath.Abs(scenePath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace files instead of writing them in place so the
	// parent folder is watched instead of the file itself.
	if err = watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("could not watch %q: %w", scenePath, err)
	}

	scheduler := renderer.NewPerfectScheduler()
	render := func() {
		if err := renderScene(ctx, scenePath, opts, scheduler); err != nil && !errors.Is(err, renderer.ErrInterrupted) {
			logger.Errorf("render failed: %s", err.Error())
		}
	}

	render()
	logger.Noticef("watching %q for changes; press ctrl+c to exit", scenePath)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != absPath || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warningf("watcher error: %s", err.Error())
		case <-debounce:
			debounce = nil
			logger.Noticef("scene %q changed; re-rendering", scenePath)
			render()
		}
	}
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"Statistic", "Value"})
	table.Append([]string{"Frame size", fmt.Sprintf("%dx%d", stats.FrameW, stats.FrameH)})
	table.Append([]string{"Workers", fmt.Sprintf("%d", stats.Workers)})
	table.Append([]string{"Primary rays", fmt.Sprintf("%d", stats.Rays.PrimaryRays)})
	table.Append([]string{"Shadow rays", fmt.Sprintf("%d", stats.Rays.ShadowRays)})
	table.Append([]string{"Reflection rays", fmt.Sprintf("%d", stats.Rays.ReflectionRays)})
	table.Append([]string{"Rays per pixel", fmt.Sprintf("%.2f", stats.RaysPerPixel())})
	table.Append([]string{"Row time (mean)", stats.RowTimeMean.String()})
	table.Append([]string{"Row time (std dev)", stats.RowTimeStdDev.String()})
	table.Append([]string{"Row time (p95)", stats.RowTimeP95.String()})
	table.Append([]string{"Slowest row", fmt.Sprintf("%d (%s)", stats.SlowestRow, stats.SlowestRowAt)})
	table.SetFooter([]string{"Render time", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
