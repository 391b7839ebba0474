package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/environment"
	"github.com/programme-lv/ranker/internal/gatherer"
)

// Orchestrator fans the input lines out over a bounded pool of scoring
// workers and collects the results back into input order. A failing or
// panicking line is logged and dropped; it never takes the run down.
type Orchestrator struct {
	Worker  *Worker
	Dataset environment.Dataset
	Workers int
	Opts    ScoreOptions
	Gath    gatherer.RunGatherer
}

// Run scores every line and returns the survivors in input order.
func (o *Orchestrator) Run(ctx context.Context, lines []*api.TaskRecord) ([]*api.TaskRecord, gatherer.Summary) {
	gath := o.Gath
	if gath == nil {
		gath = gatherer.Discard{}
	}
	startedAt := time.Now()
	gath.StartRun(len(lines))

	results := xsync.NewMapOf[int, *api.TaskRecord]()
	var failed int64

	var eg errgroup.Group
	eg.SetLimit(o.Workers)
	for i, rec := range lines {
		i, rec := i, rec
		gath.StartTask(i)
		eg.Go(func() error {
			start := time.Now()
			if err := o.scoreOne(ctx, rec); err != nil {
				slog.Warn("failed to score line", slog.Int("line", i), slog.Any("error", err))
				gath.FailTask(i, err)
				atomic.AddInt64(&failed, 1)
				return nil
			}
			results.Store(i, rec)
			gath.FinishTask(i, time.Since(start))
			return nil
		})
	}
	eg.Wait()

	out := make([]*api.TaskRecord, 0, len(lines))
	for i := range lines {
		if rec, ok := results.Load(i); ok {
			out = append(out, rec)
		}
	}

	summary := gatherer.Summary{
		Processed:  len(out),
		Failed:     int(atomic.LoadInt64(&failed)),
		ElapsedSec: time.Since(startedAt).Seconds(),
	}
	gath.FinishRun(summary)
	return out, summary
}

// scoreOne shields the pool from a panicking worker.
func (o *Orchestrator) scoreOne(ctx context.Context, rec *api.TaskRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while scoring: %v", r)
		}
	}()
	return o.Worker.ScoreRecord(ctx, o.Dataset, rec, o.Opts)
}
