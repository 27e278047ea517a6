package check

import (
	"context"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
)

// CheckFiles checks every path with at most Options.Concurrency sessions in
// flight. Reports are returned in path order; a manifest that could not be
// validated gets a report with Err set instead of aborting the batch.
func (c *Checker) CheckFiles(ctx context.Context, paths []string) []*Report {
	reports := make([]*Report, len(paths))

	workers := c.opts.Concurrency
	if workers < 1 {
		workers = 1
	}
	p := pool.New().WithMaxGoroutines(workers)

	var done atomic.Int64
	finish := func(i int, r *Report) {
		reports[i] = r
		if c.progress != nil {
			c.progress(int(done.Add(1)), len(paths))
		}
	}

	for i, path := range paths {
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				finish(i, failedReport(path, err))
				return
			}
			report, err := c.CheckFile(ctx, path)
			if err != nil {
				finish(i, failedReport(path, err))
				return
			}
			finish(i, report)
		})
	}
	p.Wait()

	c.logger.DebugContext(ctx, "batch checked", "manifests", len(paths), "workers", workers)
	return reports
}
