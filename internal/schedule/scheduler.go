// Package schedule implements the Iteration Scheduler (spec.md §4.5,
// component C5): the per-iteration state machine that posts the halo
// exchange, convolves the interior while it's in flight, waits for
// receives, convolves the border, waits for sends, then swaps buffers.
package schedule

import (
	"github.com/ajroetker/blurconv/internal/fabric"
	"github.com/ajroetker/blurconv/internal/filter"
	"github.com/ajroetker/blurconv/internal/stencil"
	"github.com/ajroetker/blurconv/internal/tile"
	"github.com/ajroetker/blurconv/internal/workerpool"
)

// RunIteration executes one full iteration's state machine:
//
//	POSTED -> interior compute -> RECVS_WAITED -> border compute -> SENDS_WAITED -> swap
//
// against pair.Src / pair.Dst, then swaps the pair. Any communication error
// returned by fabric.WaitAll is fatal and is returned unwrapped; the caller
// (internal/worker) is responsible for escalating it to a job abort
// (spec.md §4.5 "Failure semantics").
func RunIteration(pair *tile.Pair, ex *Exchanger, pool *workerpool.Pool, f filter.Matrix, policy filter.OverflowPolicy) error {
	r, c := pair.Src.Rows(), pair.Src.Cols()

	// POSTED: post halo exchange for every present neighbor.
	sends, recvs := ex.PostAll(pair.Src)

	// Interior compute: cells whose 3x3 neighborhood never touches a halo.
	// Runs concurrently with the in-flight halo exchange (spec.md §4.5 step
	// 2, §5: "no happens-before constraint with step 1's in-flight
	// communication — it is pure-compute on non-overlapping memory").
	if r >= 3 && c >= 3 {
		stencil.Convolve(pool, pair.Src, pair.Dst, stencil.Range{RowLo: 2, RowHi: r - 1, ColLo: 2, ColHi: c - 1}, f, policy)
	}

	// RECVS_WAITED.
	if err := fabric.WaitAll(recvs); err != nil {
		return err
	}

	// Border compute: four strips, each skipped if empty (spec.md §4.5 step 4).
	if c > 0 && r > 0 {
		stencil.Convolve(pool, pair.Src, pair.Dst, stencil.Range{RowLo: 1, RowHi: 1, ColLo: 1, ColHi: c}, f, policy) // top row
	}
	if c > 0 && r > 1 {
		stencil.Convolve(pool, pair.Src, pair.Dst, stencil.Range{RowLo: r, RowHi: r, ColLo: 1, ColHi: c}, f, policy) // bottom row
	}
	if c > 0 && r > 2 {
		stencil.Convolve(pool, pair.Src, pair.Dst, stencil.Range{RowLo: 2, RowHi: r - 1, ColLo: 1, ColHi: 1}, f, policy) // left column
	}
	if c > 1 && r > 2 {
		stencil.Convolve(pool, pair.Src, pair.Dst, stencil.Range{RowLo: 2, RowHi: r - 1, ColLo: c, ColHi: c}, f, policy) // right column
	}

	// SENDS_WAITED.
	if err := fabric.WaitAll(sends); err != nil {
		return err
	}

	// Swap: happens-after both waits (spec.md §5: "The swap happens-after
	// step 4 and step 5 jointly").
	pair.Swap()
	return nil
}
