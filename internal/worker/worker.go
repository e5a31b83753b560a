// Package worker owns one rank's end-to-end lifecycle: read its
// sub-rectangle off disk, run the requested number of iterations through
// the scheduler, write its sub-rectangle back, and report its wall-clock
// time over the fabric for the collective timing reduction (spec.md §4.7,
// §5 "Per-rank lifecycle").
package worker

import (
	"time"

	"github.com/ajroetker/blurconv/internal/config"
	"github.com/ajroetker/blurconv/internal/fabric"
	"github.com/ajroetker/blurconv/internal/grid"
	"github.com/ajroetker/blurconv/internal/rawio"
	"github.com/ajroetker/blurconv/internal/schedule"
	"github.com/ajroetker/blurconv/internal/tile"
	"github.com/ajroetker/blurconv/internal/workerpool"
)

// Rank bundles everything one goroutine needs to own a tile end to end.
type Rank struct {
	ID   int
	Plan grid.Plan
	Job  config.Job
	Fab  *fabric.Fabric
}

// Run executes this rank's full lifecycle against the job's image file and
// returns the elapsed wall-clock time of its iteration loop, measured from
// the startup barrier to the end of the last iteration, so neither the tile
// read nor the tile write is included (the collective max-timing reduction
// happens at the driver level).
//
// Every fatal error is a *config.JobError already tagged with the right
// Kind by the layer that detected it; Run adds no further wrapping.
func (rk *Rank) Run() (time.Duration, error) {
	r0, c0 := rk.Plan.StartRowCol(rk.ID)
	tileH := rk.Plan.TileH
	tileW := rk.Plan.TileW
	bpp := rk.Job.Type.BytesPerPixel()

	pair := tile.NewPair(tileH, tileW, bpp)
	if err := rawio.ReadTile(rk.Job.ImagePath, pair.Src, r0, c0, rk.Job.Width); err != nil {
		return 0, err
	}

	neighbors := schedule.ComputeNeighbors(rk.Plan, rk.ID)
	ex := schedule.NewExchanger(rk.Fab, rk.ID, neighbors, tileH, tileW, bpp)

	pool := workerpool.New(rk.Job.Workers)
	defer pool.Close()

	// Barrier precedes iteration 0 (spec.md §4.7): every rank's initial read
	// has finished by the time any rank starts its clock, so I/O never leaks
	// into the timed region and the measured elapsed time is comparable
	// across ranks regardless of read latency. If a sibling rank failed its
	// own read before reaching the barrier, Wait returns a CommError instead
	// of blocking forever.
	if err := rk.Fab.Barrier.Wait(); err != nil {
		return 0, err
	}
	start := time.Now()

	for iter := 0; iter < rk.Job.Loops; iter++ {
		if err := schedule.RunIteration(pair, ex, pool, rk.Job.Filter.Coeffs, rk.Job.Policy); err != nil {
			return 0, err
		}
	}

	elapsed := time.Since(start)

	if !rk.Job.NoOutput {
		outPath := rawio.OutputPath(baseName(rk.Job.ImagePath))
		if err := rawio.WriteTile(outPath, pair.Src, r0, c0, rk.Job.Width); err != nil {
			return 0, err
		}
	}

	rk.Fab.SendTiming(elapsed.Seconds())
	return elapsed, nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
