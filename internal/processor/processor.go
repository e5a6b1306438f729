package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"squash/pkg/assetkind"
)

// Run processes every task in plan and blocks until all of them have reached
// a terminal outcome. Each category runs as its own pipeline; the pipelines
// feed one worker pool of opts.Threads goroutines. Per-file failures are
// logged and counted in stats but never returned. The only errors Run returns
// are configuration errors, and those are returned before any file is
// touched.
//
// Cancelling ctx does not stop the run; its values are still passed to the
// transformers.
func Run(ctx context.Context, plan Plan, opts Options, stats *Stats) (Summary, error) {
	if opts.Threads < 1 {
		return Summary{}, ConfigError("start worker pool", fmt.Errorf("thread count must be at least 1, got %d", opts.Threads))
	}
	for _, c := range assetkind.All {
		if len(plan[c]) > 0 && opts.Transformers[c] == nil {
			return Summary{}, ConfigError("start pipeline", fmt.Errorf("no optimizer for %s files", c))
		}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if stats == nil {
		stats = NewStats()
	}
	ctx = context.WithoutCancel(ctx)
	started := time.Now()

	jobs := make(chan job)

	var workers sync.WaitGroup
	workers.Add(opts.Threads)
	for i := 0; i < opts.Threads; i++ {
		go func() {
			defer workers.Done()
			worker(ctx, jobs, log)
		}()
	}

	var pipelines errgroup.Group
	for _, c := range assetkind.All {
		paths := plan[c]
		if len(paths) == 0 {
			continue
		}
		engine := Engine{Transformer: opts.Transformers[c]}
		counters := stats.For(c)

		pipelines.Go(func() error {
			log.Debug("pipeline started", "category", c.String(), "tasks", len(paths))
			var pending sync.WaitGroup
			pending.Add(len(paths))
			for _, path := range paths {
				jobs <- job{
					path:     path,
					category: c,
					engine:   engine,
					counters: counters,
					done:     pending.Done,
				}
			}
			pending.Wait()
			log.Debug("pipeline drained", "category", c.String())
			// Task failures are recorded, never returned.
			return nil
		})
	}

	_ = pipelines.Wait()
	close(jobs)
	workers.Wait()

	summary := Summary{Elapsed: time.Since(started)}
	for _, c := range assetkind.All {
		if len(plan[c]) == 0 {
			continue
		}
		summary.Categories = append(summary.Categories, CategorySummary{
			Category:   c,
			Discovered: len(plan[c]),
			Snapshot:   stats.Snapshot(c),
		})
	}
	return summary, nil
}

func worker(ctx context.Context, jobs <-chan job, log *slog.Logger) {
	for j := range jobs {
		delta, err := j.engine.Apply(ctx, j.path)
		if err != nil {
			j.counters.RecordFailure()
			log.Error("failed to optimize",
				"path", j.path,
				"category", j.category.String(),
				"kind", KindOf(err).String(),
				"error", err,
			)
		} else {
			j.counters.RecordSuccess(delta)
			log.Debug("optimized", "path", j.path, "category", j.category.String(), "delta", delta)
		}
		j.done()
	}
}
