package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/plantaest/citronspam/internal/model"
)

// reportDateLayout names a report's day.
const reportDateLayout = "2006-01-02"

// FeedbackSync syncs the feedback of yesterday's report on one wiki.
//
// Design decision: the sync always works on yesterday's report in UTC. The
// reporting process writes a day's page once the day is over, and feedback
// keeps arriving on it the day after, so that page is the one whose
// feedback is complete when the sync runs.
type FeedbackSync struct {
	// reports fetches the report page and saves it back.
	reports ReportService

	// store keeps feedback and ignored hostnames across runs.
	store FeedbackStore

	// prefix is the title prefix of report pages on this wiki.
	prefix string

	logger *slog.Logger

	// now is the clock the report day and sync timestamps derive from.
	now func() time.Time
}

// SyncOption configures a FeedbackSync.
type SyncOption func(*FeedbackSync)

// WithSyncLogger sets the logger.
func WithSyncLogger(logger *slog.Logger) SyncOption {
	return func(s *FeedbackSync) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SyncOption {
	return func(s *FeedbackSync) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReportPrefix sets the title prefix of report pages.
func WithReportPrefix(prefix string) SyncOption {
	return func(s *FeedbackSync) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewFeedbackSync returns a sync reading reports through reports and
// storing feedback in store.
func NewFeedbackSync(reports ReportService, store FeedbackStore, opts ...SyncOption) *FeedbackSync {
	s := &FeedbackSync{
		reports: reports,
		store:   store,
		prefix:  model.DefaultReportPrefix,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pipeline returns the steps of one sync, in order: fetch the report, stop
// when it has no feedback, store the feedback, add hostnames marked only
// good to the ignore list, then mark the feedback synced and save the page.
// Storing happens before the page is saved. After a failed save the next
// run stores the same entries again, and the store drops them as
// duplicates by hash.
func (s *FeedbackSync) Pipeline() *Pipeline {
	p := New(WithLogger(s.logger))
	p.AddSteps(
		NewFetchReportStep(s.reports, s.store, s.logger),
		CheckFeedbackStep{},
		NewStoreFeedbackStep(s.store),
		NewIgnoreHostnamesStep(s.store),
		NewMarkSyncedStep(s.reports, s.now),
	)
	return p
}

// Job returns the job for yesterday's report (UTC) on wikiID.
func (s *FeedbackSync) Job(wikiID string) *SyncJob {
	day := s.now().UTC().AddDate(0, 0, -1)
	return NewSyncJob(wikiID, model.ReportTitle(s.prefix, day), day.Format(reportDateLayout))
}

// Run syncs wikiID. The returned job is never nil; an error is also
// recorded on it.
func (s *FeedbackSync) Run(ctx context.Context, wikiID string) (*SyncJob, error) {
	job := s.Job(wikiID)
	s.logger.Info("syncing feedback", "wiki", wikiID, "title", job.Title)

	if err := s.Pipeline().Execute(ctx, job); err != nil {
		return job, err
	}

	if job.Succeeded() {
		s.logger.Info("feedback synced",
			"wiki", wikiID,
			"title", job.Title,
			"stored", job.StoredFeedbacks,
			"ignored", len(job.NewIgnored),
		)
	}
	return job, nil
}
