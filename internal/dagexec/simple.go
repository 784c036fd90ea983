package dagexec

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/daft-dev/daft/internal/condition"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookconfig"
	"github.com/daft-dev/daft/internal/progress"
	"github.com/daft-dev/daft/internal/template"
)

// runSimple executes jobs with no dependency edges, per the mode
// derived from the HookDef. Jobs are already priority-sorted
// by EffectiveJobs.
func (e *Executor) runSimple(ctx context.Context, jobs []hookconfig.JobDef, mode hookconfig.Mode, vars template.Vars, condCtx condition.Context, hctx daftmodel.HookContext, sink progress.Sink) ([]JobReport, error) {
	switch mode {
	case hookconfig.ModePiped:
		return e.runSequential(ctx, jobs, vars, condCtx, hctx, sink, true)
	case hookconfig.ModeFollow:
		return e.runSequential(ctx, jobs, vars, condCtx, hctx, sink, false)
	case hookconfig.ModeSequential:
		return e.runSequential(ctx, jobs, vars, condCtx, hctx, sink, true)
	default:
		return e.runParallel(ctx, jobs, vars, condCtx, hctx, sink)
	}
}

func (e *Executor) runSequential(ctx context.Context, jobs []hookconfig.JobDef, vars template.Vars, condCtx condition.Context, hctx daftmodel.HookContext, sink progress.Sink, stopOnFailure bool) ([]JobReport, error) {
	reports := make([]JobReport, 0, len(jobs))
	for _, j := range jobs {
		state, err := e.runOneJob(ctx, j, vars, condCtx, hctx, sink)
		reports = append(reports, JobReport{Name: j.Name, State: state, Err: err})
		if state == Failed && stopOnFailure {
			break
		}
	}
	return reports, nil
}

// runParallel dispatches non-interactive, non-group jobs onto a
// bounded worker pool, then runs interactive and group jobs
// sequentially on the calling goroutine once the pool has quiesced.
func (e *Executor) runParallel(ctx context.Context, jobs []hookconfig.JobDef, vars template.Vars, condCtx condition.Context, hctx daftmodel.HookContext, sink progress.Sink) ([]JobReport, error) {
	var poolJobs, deferredJobs []hookconfig.JobDef
	for _, j := range jobs {
		if j.Interactive || len(j.Group) > 0 {
			deferredJobs = append(deferredJobs, j)
		} else {
			poolJobs = append(poolJobs, j)
		}
	}

	reports := make([]JobReport, len(poolJobs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount())

	for i, j := range poolJobs {
		i, j := i, j
		g.Go(func() error {
			state, err := e.runOneJob(gctx, j, vars, condCtx, hctx, sink)
			mu.Lock()
			reports[i] = JobReport{Name: j.Name, State: state, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // per-job errors are carried in reports, not returned

	// reports is already in poolJobs' definition order (each goroutine
	// writes to its own index), giving deterministic reporting order
	// for parallel mode.

	for _, j := range deferredJobs {
		state, err := e.runOneJob(ctx, j, vars, condCtx, hctx, sink)
		reports = append(reports, JobReport{Name: j.Name, State: state, Err: err})
	}
	return reports, nil
}
