package renderer

import (
	"slices"
	"time"

	"github.com/achilleasa/whitted/tracer"
	"gonum.org/v1/gonum/stat"
)

type FrameStats struct {
	// Frame dims.
	FrameW int
	FrameH int

	// Number of workers that rendered the frame.
	Workers int

	// Total render time for entire frame.
	RenderTime time.Duration

	// Per row render time statistics.
	RowTimeMean   time.Duration
	RowTimeStdDev time.Duration
	RowTimeP95    time.Duration
	SlowestRow    int
	SlowestRowAt  time.Duration

	// Traced ray counts.
	Rays tracer.Stats
}

// Number of rendered pixels.
func (fs FrameStats) Pixels() int {
	return fs.FrameW * fs.FrameH
}

// Average number of rays per pixel.
func (fs FrameStats) RaysPerPixel() float64 {
	if fs.Pixels() == 0 {
		return 0
	}
	return float64(fs.Rays.Total()) / float64(fs.Pixels())
}

// Populate row time statistics from a list of row render times indexed by
// row. Negative entries mark rows that were not rendered.
func (fs *FrameStats) setRowTimes(rowTimes []time.Duration) {
	samples := make([]float64, 0, len(rowTimes))
	for row, rt := range rowTimes {
		if rt < 0 {
			continue
		}
		samples = append(samples, float64(rt))
		if rt > fs.SlowestRowAt {
			fs.SlowestRowAt = rt
			fs.SlowestRow = row
		}
	}
	if len(samples) == 0 {
		return
	}

	mean, stdDev := stat.MeanStdDev(samples, nil)
	if len(samples) < 2 {
		stdDev = 0
	}
	fs.RowTimeMean = time.Duration(mean)
	fs.RowTimeStdDev = time.Duration(stdDev)

	slices.Sort(samples)
	fs.RowTimeP95 = time.Duration(stat.Quantile(0.95, stat.Empirical, samples, nil))
}
