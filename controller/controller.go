// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

// Package controller implements the step controller: the external-facing
// handle that bundles a field with a snapshot/destination double-buffer
// and the tile scheduler, exposing begin/tick/completion semantics plus a
// blocking convenience path, and guaranteeing bit-identity between
// blocking and incremental completion of the same generation
// (spec.md §4.4).
package controller

import (
	"fmt"
	"sync"
	"time"

	"github.com/latticeforge/voxeldiffusion/field"
	"github.com/latticeforge/voxeldiffusion/internal/topology"
	"github.com/latticeforge/voxeldiffusion/internal/workerpool"
	"github.com/latticeforge/voxeldiffusion/stepper"
	"github.com/latticeforge/voxeldiffusion/tile"
)

// State is one of the two step-controller states (spec.md §3).
type State int

const (
	// Idle means no generation is in progress; field reads/writes are
	// legal.
	Idle State = iota
	// Stepping means a generation is in progress; the snapshot and tile
	// queue are live and field writes are rejected.
	Stepping
)

// String renders the state for diagnostics.
func (s State) String() string {
	if s == Stepping {
		return "stepping"
	}
	return "idle"
}

// Stats reports controller progress for diagnostics (cmd/voxelbench).
type Stats struct {
	Generation     uint64
	Stepping       bool
	TilesRemaining int
	LastCommit     time.Duration
}

// Controller is the step controller. It exclusively owns its field,
// in-progress snapshot, accumulator, and tile scheduler. The zero value
// is not usable; construct with New.
type Controller struct {
	mu sync.Mutex

	f       *field.Field
	state   State
	edge    int
	threads int
	pool    *workerpool.Pool

	snapshot   []uint32
	acc        stepper.Accumulator
	sched      *tile.Scheduler
	lastCommit time.Duration
}

// New constructs an idle controller owning a zero-initialized field of
// the given extents and diffusion-rate shift. threads <= 1 runs Tick
// single-threaded; threads > 1 enables the tile scheduler's
// coloring-based parallel mode on a persistent workerpool.Pool sized to
// threads. A threads value of 0 defaults to topology.DefaultThreads().
func New(width, height, depth int16, rate uint8, threads int) (*Controller, error) {
	f, err := field.New(width, height, depth, rate)
	if err != nil {
		return nil, err
	}
	if threads == 0 {
		threads = topology.DefaultThreads()
	}
	c := &Controller{
		f:       f,
		edge:    tile.DefaultEdge,
		threads: threads,
	}
	if threads > 1 {
		c.pool = workerpool.New(threads)
	}
	return c, nil
}

// Close releases the controller's worker pool, if any. Safe to call more
// than once. A Stepping controller that is closed releases its snapshot
// and destination buffer along with the field; no partial state leaks
// (spec.md §5, Cancellation).
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropStep()
	if c.pool != nil {
		c.pool.Close()
	}
}

// dropStep releases snapshot/accumulator/scheduler state and returns the
// controller to Idle without touching the field. Caller must hold mu.
func (c *Controller) dropStep() {
	c.snapshot = nil
	c.acc = stepper.Accumulator{}
	c.sched = nil
	c.state = Idle
}

// IsStepping reports whether a generation is in progress.
func (c *Controller) IsStepping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Stepping
}

// FieldGetGeneration returns the number of completed generations.
func (c *Controller) FieldGetGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f.Generation()
}

// FieldSet writes one cell of the owned field. Legal only in state Idle;
// returns ErrBusyStepping during Stepping, per spec.md's choice among
// the two behaviors the original source left ambiguous (§9, open
// question 2).
func (c *Controller) FieldSet(x, y, z int16, value uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Stepping {
		return ErrBusyStepping
	}
	c.f.Set(x, y, z, value)
	return nil
}

// FieldGet reads one cell. Legal in any state: mid-step, the field's
// cells are the unchanged pre-step values (spec.md §5), so repeated
// reads during Stepping are stable by construction.
func (c *Controller) FieldGet(x, y, z int16) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f.Get(x, y, z)
}

// TotalMass returns the field's current total mass.
func (c *Controller) TotalMass() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f.TotalMass()
}

// ImportRegion passes through to the owned field. Legal only in Idle;
// returns ErrBusyStepping during Stepping.
func (c *Controller) ImportRegion(in []uint32, min, max [3]int16) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Stepping {
		return 0, ErrBusyStepping
	}
	return c.f.ImportRegion(in, min, max), nil
}

// ExtractRegion passes through to the owned field.
func (c *Controller) ExtractRegion(out []uint32, min, max [3]int16) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f.ExtractRegion(out, min, max)
}

// BeginStep transitions Idle -> Stepping: clones the field's cells into
// an immutable snapshot, seeds the destination accumulator from it, and
// builds the Morton-ordered tile queue. Returns ErrAlreadyStepping
// without changing state if a generation is already in progress.
func (c *Controller) BeginStep() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Stepping {
		return ErrAlreadyStepping
	}
	c.snapshot = c.f.CloneCells()
	c.acc = stepper.NewAccumulator(c.snapshot)
	c.sched = tile.NewScheduler(c.f.Width(), c.f.Height(), c.f.Depth(), c.f.Rate(), c.edge, c.threads, c.pool)
	c.state = Stepping
	return nil
}

// Tick performs bounded work toward the in-progress generation. Legal
// only in Stepping (a Tick in Idle is a documented no-op that returns
// done=true, matching the state table in spec.md §4.4). When the tile
// queue drains it atomically commits: the destination buffer becomes the
// field's new cell array, the generation counter increments, and the
// controller returns to Idle.
//
// A StabilityViolation during a tile aborts the whole in-progress
// generation: the destination buffer and snapshot are dropped, the
// controller returns to Idle at the prior generation, and the field is
// left unchanged (spec.md §4.4, Failure semantics).
func (c *Controller) Tick(budgetUs uint64) (done bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return true, nil
	}

	start := time.Now()
	queueDone := c.sched.Tick(c.acc, c.snapshot, budgetUs)
	if !queueDone {
		return false, nil
	}

	cells, commitErr := c.acc.Commit()
	if commitErr != nil {
		c.dropStep()
		return false, fmt.Errorf("controller: generation aborted: %w", commitErr)
	}
	c.f.Commit(cells)
	c.lastCommit = time.Since(start)
	c.dropStep()
	return true, nil
}

// StepBlocking drives BeginStep followed by repeated Tick calls with an
// effectively infinite per-call budget until the generation completes.
// Its result is required to be bit-identical to any sequence of
// BeginStep + repeated Tick(small budget) that completes the same
// generation (spec.md §8, property 2), because both paths route through
// the same Accumulator and tile.Scheduler regardless of how the budget
// is sliced.
func (c *Controller) StepBlocking() error {
	if err := c.BeginStep(); err != nil {
		return err
	}
	const effectivelyInfinite = uint64(1) << 40 // microseconds; ~12.7 days
	for {
		done, err := c.Tick(effectivelyInfinite)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Stats reports controller progress for diagnostics.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Generation: c.f.Generation(),
		Stepping:   c.state == Stepping,
		LastCommit: c.lastCommit,
	}
	if c.sched != nil {
		s.TilesRemaining = c.sched.Remaining()
	}
	return s
}
