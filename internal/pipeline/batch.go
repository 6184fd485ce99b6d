package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of wikis synced at once.
const DefaultConcurrency = 4

// SyncFactory returns the sync for a wiki. Each wiki talks to its own
// server, so the factory builds a fresh client per wiki.
type SyncFactory func(wikiID string) (*FeedbackSync, error)

// BatchProcessor syncs several wikis concurrently.
//
// Design decision: each wiki's failure is recorded on its own SyncJob and
// never returned to the errgroup, so one unreachable wiki does not cancel
// the syncs of the others. Only cancellation of the parent context stops
// the batch.
type BatchProcessor struct {
	factory SyncFactory

	// concurrency bounds the number of wikis synced at once.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent syncs. Non-positive
// values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor returns a processor building each wiki's sync with factory.
func NewBatchProcessor(factory SyncFactory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch syncs wikiIDs and returns one job per wiki in input order.
// Failures are recorded on the jobs; the returned error is only set when
// ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, wikiIDs []string) ([]*SyncJob, error) {
	jobs := make([]*SyncJob, len(wikiIDs))
	err := bp.ProcessBatchWithCallback(ctx, wikiIDs, func(job *SyncJob, index int) {
		jobs[index] = job
	})
	return jobs, err
}

// ProcessBatchWithCallback syncs wikiIDs and calls callback with each
// finished job and its index. callback runs on the worker goroutine.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	wikiIDs []string,
	callback func(job *SyncJob, index int),
) error {
	bp.logger.Info("starting feedback sync",
		"wikis", len(wikiIDs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, wikiID := range wikiIDs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := bp.run(ctx, wikiID)
			callback(job, i)

			// A failed wiki must not cancel the others.
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("feedback sync complete",
		"wikis", len(wikiIDs),
		"elapsed", time.Since(startTime),
	)
	return err
}

func (bp *BatchProcessor) run(ctx context.Context, wikiID string) *SyncJob {
	fs, err := bp.factory(wikiID)
	if err != nil {
		bp.logger.Warn("cannot prepare sync", "wiki", wikiID, "error", err)
		job := NewSyncJob(wikiID, "", "")
		job.Error = err
		job.ErrorMessage = err.Error()
		return job
	}

	job, err := fs.Run(ctx, wikiID)
	if err != nil {
		bp.logger.Warn("sync failed", "wiki", wikiID, "error", err)
	}
	return job
}
