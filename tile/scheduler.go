// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

package tile

import (
	"time"

	"github.com/latticeforge/voxeldiffusion/internal/morton"
	"github.com/latticeforge/voxeldiffusion/internal/workerpool"
	"github.com/latticeforge/voxeldiffusion/stepper"
)

// parallelChunk is how many tiles a multi-threaded Tick considers per
// budget check. Threads beyond this within one chunk would just add
// scheduling overhead without shortening the critical path further,
// since each parity group of the chunk is already bounded by the pool's
// worker count.
const parallelChunk = 64

// Scheduler drives a single generation's worth of tile processing,
// resumable across Tick calls under a per-invocation microsecond budget.
// It is built fresh by begin_step and discarded at commit; the step
// controller owns its lifetime.
type Scheduler struct {
	grid    Grid
	queue   []morton.Coord
	pos     int
	threads int
	pool    *workerpool.Pool
}

// NewScheduler builds the Morton-ordered tile queue for a field shape.
// threads <= 1 runs Tick single-threaded; threads > 1 processes tiles of
// the same color concurrently on pool within a single Tick call.
func NewScheduler(width, height, depth int16, rate uint8, edge, threads int, pool *workerpool.Pool) *Scheduler {
	grid := NewGrid(width, height, depth, rate, edge)
	queue := morton.Sequence(grid.NX, grid.NY, grid.NZ)
	return &Scheduler{grid: grid, queue: queue, threads: threads, pool: pool}
}

// Remaining returns the number of tiles left in the queue.
func (s *Scheduler) Remaining() int { return len(s.queue) - s.pos }

// Done reports whether every tile in the queue has been processed.
func (s *Scheduler) Done() bool { return s.pos >= len(s.queue) }

// Tick processes whole tiles from the queue against acc until the queue
// drains or the elapsed wall time exceeds budgetUs, whichever comes
// first. It always processes at least one tile, guaranteeing forward
// progress even for a zero budget. It never splits a tile.
func (s *Scheduler) Tick(acc stepper.Accumulator, snapshot []uint32, budgetUs uint64) (done bool) {
	start := time.Now()
	budget := time.Duration(budgetUs) * time.Microsecond
	first := true
	for !s.Done() {
		if !first && time.Since(start) >= budget {
			return false
		}
		first = false

		if s.threads > 1 && s.pool != nil {
			s.tickParallelChunk(acc, snapshot)
		} else {
			s.grid.Process(acc, snapshot, s.queue[s.pos])
			s.pos++
		}
	}
	return true
}

// tickParallelChunk processes up to parallelChunk tiles starting at the
// current queue position, split into eight passes by the parity of each
// tile coordinate so that no two concurrently processed tiles write the
// same cell (spec.md §4.3). A cell of tile U is written only by U and by
// its -X, -Y and -Z neighbours, and those four tiles fall in four
// different parity classes.
func (s *Scheduler) tickParallelChunk(acc stepper.Accumulator, snapshot []uint32) {
	end := min(s.pos+parallelChunk, len(s.queue))

	var groups [8][]int
	for pos := s.pos; pos < end; pos++ {
		c := s.queue[pos]
		k := c.X%2 | c.Y%2<<1 | c.Z%2<<2
		groups[k] = append(groups[k], pos)
	}
	s.pool.ParallelForColorGroups(groups[:], func(pos int) {
		s.grid.Process(acc, snapshot, s.queue[pos])
	})
	s.pos = end
}
