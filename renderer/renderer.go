package renderer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/tracer"
	"golang.org/x/sync/errgroup"
)

type Renderer interface {
	// Render frame. Rendering stops with ErrInterrupted if ctx is cancelled.
	Render(ctx context.Context) error

	// Shutdown renderer and flush any pending output.
	Close() error

	// Get render statistics.
	Stats() FrameStats
}

// A renderer that traces one primary ray through each pixel center. Rows are
// split into contiguous blocks, one per worker; each worker walks its block in
// row-major order. With a single worker the whole frame is rendered in
// row-major order.
type defaultRenderer struct {
	logger log.Logger
	scene  *scene.Scene
	sink   Sink
	tracer tracer.Tracer
	opts   Options
	stats  FrameStats

	// Splits frames into row blocks, one per worker.
	scheduler BlockScheduler
}

// Create a new renderer for sc that writes pixels to sink. Unless
// opts.BruteForce is set, the scene KD-tree is built if missing.
func NewDefault(sc *scene.Scene, sink Sink, opts Options) (Renderer, error) {
	return NewDefaultWithScheduler(sc, sink, opts, NewPerfectScheduler())
}

// Create a new renderer that splits frames using scheduler. Sharing a
// scheduler between renderers of the same scene lets row block assignments
// benefit from earlier frames.
func NewDefaultWithScheduler(sc *scene.Scene, sink Sink, opts Options, scheduler BlockScheduler) (Renderer, error) {
	if scheduler == nil {
		scheduler = NewPerfectScheduler()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch {
	case sc == nil:
		return nil, ErrSceneNotDefined
	case sc.Camera == nil:
		return nil, ErrCameraNotDefined
	case sink == nil:
		return nil, ErrNoSink
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		scene:     sc,
		sink:      sink,
		opts:      opts,
		scheduler: scheduler,
	}

	if !opts.BruteForce && !sc.Built() {
		r.logger.Noticef("building KD-tree (max depth %d, min leaf items %d)", opts.KDMaxDepth, opts.KDMinLeafItems)
		sc.Build(opts.KDTreeOptions())
	}

	var err error
	r.tracer, err = tracer.NewWhitted(sc, opts.TracerOptions())
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *defaultRenderer) Render(ctx context.Context) error {
	frameW, frameH := r.opts.FrameW, r.opts.FrameH
	camera := r.scene.Camera
	if err := camera.SetupProjection(frameW, frameH); err != nil {
		return err
	}

	r.stats = FrameStats{FrameW: frameW, FrameH: frameH}
	blocks := r.scheduler.Schedule(min(r.opts.Workers, frameH), frameH)
	blockStats := make([]BlockStats, len(blocks))

	// Rows that were never rendered keep a negative time
	rowTimes := make([]time.Duration, frameH)
	for y := range rowTimes {
		rowTimes[y] = -1
	}

	reportEvery := int64(frameH / 10)
	if reportEvery == 0 {
		reportEvery = 1
	}
	var renderedRows atomic.Int64

	r.logger.Noticef("rendering %dx%d frame using tracer %q and %d worker(s)", frameW, frameH, r.tracer.Id(), len(blocks))
	start := time.Now()
	raysBefore := r.tracer.Stats()

	// Each worker owns a disjoint block of rows so sink writes never overlap
	var g errgroup.Group
	workers, blockY := 0, 0
	for idx, blockH := range blocks {
		if blockH == 0 {
			continue
		}
		workers++
		y0, y1 := blockY, blockY+blockH
		blockY = y1
		idx := idx
		g.Go(func() error {
			blockStart := time.Now()
			defer func() {
				blockStats[idx] = BlockStats{BlockH: y1 - y0, BlockTime: time.Since(blockStart)}
			}()

			for y := y0; y < y1; y++ {
				select {
				case <-ctx.Done():
					r.logger.Warningf("render interrupted at row %d/%d", y, frameH)
					return ErrInterrupted
				default:
				}

				rowStart := time.Now()
				for x := 0; x < frameW; x++ {
					r.sink.SetPixel(x, y, r.tracer.Trace(camera.GenerateRay(x, y), r.opts.MaxDepth))
				}
				rowTimes[y] = time.Since(rowStart)

				if done := renderedRows.Add(1); done%reportEvery == 0 {
					r.logger.Debugf("rendered %d/%d rows (%d%%)", done, frameH, 100*done/int64(frameH))
				}
			}
			return nil
		})
	}

	err := g.Wait()
	r.finalizeStats(start, rowTimes, workers, raysBefore)
	if err != nil {
		return err
	}
	r.scheduler.Record(blockStats)
	r.logger.Noticef("frame rendered in %d ms", r.stats.RenderTime.Nanoseconds()/1e6)

	return r.sink.Flush()
}

// The tracer counters are cumulative; only rays traced since raysBefore
// belong to this frame.
func (r *defaultRenderer) finalizeStats(start time.Time, rowTimes []time.Duration, workers int, raysBefore tracer.Stats) {
	r.stats.RenderTime = time.Since(start)
	r.stats.Workers = workers
	r.stats.setRowTimes(rowTimes)
	r.stats.Rays = r.tracer.Stats().Sub(raysBefore)
}

func (r *defaultRenderer) Close() error {
	if c, ok := r.sink.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}
