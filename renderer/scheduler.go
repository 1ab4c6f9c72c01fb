package renderer

import (
	"math"
	"time"
)

// Per-worker feedback collected while rendering a frame.
type BlockStats struct {
	// Number of rows assigned to the worker.
	BlockH int

	// Time spent rendering the block.
	BlockTime time.Duration
}

// The BlockScheduler interface is implemented by all block scheduling
// algorithms. A scheduler may outlive a renderer so that feedback carries
// over when a scene is re-compiled and rendered again.
type BlockScheduler interface {
	// Split frame into contiguous blocks of rows, one for each worker, using
	// feedback collected from the previous frame.
	//
	// This function returns the block height assignment for each worker.
	// Assignments always add up to frameH.
	Schedule(workers, frameH int) []int

	// Record per-worker statistics for a completed frame.
	Record(frame []BlockStats)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []int
	lastFrame       []BlockStats
}

// Create a new perfect scheduler instance
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height.
//
// Without usable feedback rows are split evenly. Otherwise the scheduler uses
// the following formula for estimating the workload for worker w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i / time,i)
func (sch *perfectScheduler) Schedule(workers, frameH int) []int {
	lastFrame := sch.lastFrame
	if workers < 1 {
		workers = 1
	}
	if len(sch.blockAssignment) != workers {
		sch.blockAssignment = make([]int, workers)
	}

	if !usableFeedback(workers, lastFrame) {
		for idx := range sch.blockAssignment {
			sch.blockAssignment[idx] = frameH / workers
		}
		sch.balance(frameH)
		return sch.blockAssignment
	}

	var total float64
	for _, st := range lastFrame {
		total += float64(st.BlockH) / float64(st.BlockTime)
	}

	scaler := float64(frameH) / total
	for idx, st := range lastFrame {
		sch.blockAssignment[idx] = int(math.Max(1.0, math.Floor(float64(st.BlockH)/float64(st.BlockTime)*scaler)))
	}
	sch.balance(frameH)
	return sch.blockAssignment
}

// Record per-worker statistics for a completed frame.
func (sch *perfectScheduler) Record(frame []BlockStats) {
	sch.lastFrame = append(sch.lastFrame[:0], frame...)
}

// In case rows don't add up to the frame height, trim the largest blocks or
// append the missing rows to the first block.
func (sch *perfectScheduler) balance(frameH int) {
	scheduledRows := 0
	for _, rows := range sch.blockAssignment {
		scheduledRows += rows
	}

	for ; scheduledRows > frameH; scheduledRows-- {
		largest := 0
		for idx, rows := range sch.blockAssignment {
			if rows > sch.blockAssignment[largest] {
				largest = idx
			}
		}
		sch.blockAssignment[largest]--
	}
	sch.blockAssignment[0] += frameH - scheduledRows
}

func usableFeedback(workers int, lastFrame []BlockStats) bool {
	if len(lastFrame) != workers {
		return false
	}
	for _, st := range lastFrame {
		if st.BlockH <= 0 || st.BlockTime <= 0 {
			return false
		}
	}
	return true
}
