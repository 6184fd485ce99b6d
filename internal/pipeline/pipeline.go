package pipeline

import (
	"context"
	"log/slog"
)

// Step is one stage of a feedback sync. Steps run in sequence on the same
// SyncJob, and each one reads what earlier steps stored on it.
//
// Design decision: a step is an interface rather than a function type. Steps
// carry their dependencies (wiki service, feedback store) as fields, and
// Name gives the log lines and SyncJob.PerformedSteps a stable label.
type Step interface {
	// Do runs the step on job. A returned error ends the sync for this wiki
	// and is recorded on the job. A step that has nothing to do calls
	// job.Skip and returns nil; later steps then do not run.
	Do(ctx context.Context, job *SyncJob) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline runs the steps of one wiki's sync in order.
type Pipeline struct {
	// steps is the ordered list of steps to execute.
	steps []Step

	// logger receives one line per step, tagged with the wiki ID.
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New returns an empty pipeline. Steps are added with AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps. Steps run in the order they are added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps on job in sequence.
//
// Design decision: cancellation is checked before each step, not during
// one. A step that started runs until its own requests return or time out,
// so the report page is never left half written by the sync.
//
// The first failing step ends the run: its error is stored in job.Error and
// returned. Later steps depend on the fetched report and on the stored
// feedback, so none of them can run meaningfully after a failure. A skipped
// job ends the run with a nil error.
func (p *Pipeline) Execute(ctx context.Context, job *SyncJob) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("sync cancelled",
				"step", step.Name(),
				"wiki", job.WikiID,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"wiki", job.WikiID,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"wiki", job.WikiID,
				"error", err,
			)
			job.Error = err
			job.ErrorMessage = err.Error()
			return err
		}

		job.PerformedSteps = append(job.PerformedSteps, step.Name())

		if job.Skipped {
			p.logger.Info("sync skipped",
				"step", step.Name(),
				"wiki", job.WikiID,
				"reason", job.SkipReason,
			)
			return nil
		}
	}
	return nil
}
