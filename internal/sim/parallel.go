package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run. Each job's Simulator must own its own World;
// worlds are not safe for concurrent use.
type Job struct {
	Name   string
	Sim    *Simulator
	Config Config
}

// RunBatch runs jobs concurrently and returns their results in job order.
// The first failure cancels the remaining jobs.
func RunBatch(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := job.Sim.Run(ctx, job.Config)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
