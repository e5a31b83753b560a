// Package cluster implements the Cluster Driver (spec.md §4 overview,
// component C11): given a resolved job, it plans the process grid, builds
// the shared fabric, and runs one rank goroutine per tile, collecting the
// critical-path wall time (spec.md §4.7) or the first fatal error.
package cluster

import (
	"time"

	"github.com/ajroetker/blurconv/internal/config"
	"github.com/ajroetker/blurconv/internal/fabric"
	"github.com/ajroetker/blurconv/internal/grid"
	"github.com/ajroetker/blurconv/internal/worker"
	"golang.org/x/sync/errgroup"
)

// Result is what a completed run reports back to the CLI.
type Result struct {
	Plan       grid.Plan
	ElapsedMax time.Duration
}

// Run plans the grid, spawns Plan.P rank goroutines against a shared
// fabric, and waits for all of them. The first rank to return a fatal
// error closes the fabric (spec.md §7: "once any rank raises a fatal
// error, ... the job aborts"), unblocking any sibling still waiting on a
// send/recv so errgroup.Group can return promptly instead of leaking
// goroutines.
func Run(job config.Job) (Result, error) {
	pl, err := grid.Choose(job.Height, job.Width, job.Processes)
	if err != nil {
		return Result{}, err
	}

	fab := fabric.New(pl.P)

	var g errgroup.Group
	for id := 0; id < pl.P; id++ {
		id := id
		g.Go(func() error {
			rk := &worker.Rank{ID: id, Plan: pl, Job: job, Fab: fab}
			if _, err := rk.Run(); err != nil {
				fab.Close()
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	maxElapsed, err := fab.CollectMaxTiming(pl.P)
	if err != nil {
		return Result{}, err
	}

	return Result{Plan: pl, ElapsedMax: time.Duration(maxElapsed * float64(time.Second))}, nil
}
