package crawl

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/recipefeed"
	"golang.org/x/sync/errgroup"
)

// DefaultSourceConcurrency is the number of sources ingested at once.
const DefaultSourceConcurrency = 2

// SourceRun pairs a source with the pipeline that ingests it. Each run owns
// its pipeline, so loggers, limiters and snapshots are never shared.
type SourceRun struct {
	Config   recipefeed.SourceConfig
	Pipeline *Pipeline
}

// RunSources ingests several sources concurrently, at most concurrency at a
// time. Summaries are returned in the order of runs; a run that failed
// leaves a nil summary and contributes its error to the joined error.
func RunSources(ctx context.Context, runs []SourceRun, concurrency int) ([]*recipefeed.RunSummary, error) {
	if concurrency <= 0 {
		concurrency = DefaultSourceConcurrency
	}

	summaries := make([]*recipefeed.RunSummary, len(runs))
	errs := make([]error, len(runs))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, run := range runs {
		g.Go(func() error {
			summary, err := run.Pipeline.Run(ctx, run.Config)
			if err != nil {
				errs[i] = fmt.Errorf("source %s: %w", run.Config.Name, err)
				return nil
			}
			summaries[i] = summary
			return nil
		})
	}
	_ = g.Wait()

	return summaries, errors.Join(errs...)
}
