package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/spam"
	"github.com/plantaest/citronspam/internal/wiki"
)

// ReportService reads and writes report pages.
type ReportService interface {
	FetchReport(ctx context.Context, title string) (*model.Report, error)
	PutReport(ctx context.Context, title string, report *model.Report, opts spam.SaveOptions) (wiki.EditResponse, error)
}

// FeedbackStore persists synced feedback.
type FeedbackStore interface {
	SaveFeedbacks(ctx context.Context, wikiID, reportDate string, feedbacks []model.Feedback) (int, error)
	AddIgnoredHostname(ctx context.Context, wikiID, hostname string) (bool, error)
	SaveSnapshot(ctx context.Context, wikiID, title string, report *model.Report) error
}

// FetchReportStep loads the report. A report that cannot be fetched or
// parsed skips the wiki with a warning.
type FetchReportStep struct {
	reports ReportService
	store   FeedbackStore
	logger  *slog.Logger
}

// NewFetchReportStep returns a fetch step. When store is not nil the fetched
// report is also kept as a snapshot.
func NewFetchReportStep(reports ReportService, store FeedbackStore, logger *slog.Logger) *FetchReportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchReportStep{reports: reports, store: store, logger: logger}
}

// Name implements Step.
func (s *FetchReportStep) Name() string { return "fetch-report" }

// Do implements Step.
func (s *FetchReportStep) Do(ctx context.Context, job *SyncJob) error {
	report, err := s.reports.FetchReport(ctx, job.Title)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("cannot load report",
			"wiki", job.WikiID,
			"title", job.Title,
			"error", err,
		)
		job.Skip(fmt.Sprintf("cannot load report: %v", err))
		return nil
	}
	job.Report = report

	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, job.WikiID, job.Title, report); err != nil {
			s.logger.Warn("cannot save snapshot", "wiki", job.WikiID, "error", err)
		}
	}
	return nil
}

// CheckFeedbackStep skips reports without feedback.
type CheckFeedbackStep struct{}

// Name implements Step.
func (CheckFeedbackStep) Name() string { return "check-feedback" }

// Do implements Step.
func (CheckFeedbackStep) Do(_ context.Context, job *SyncJob) error {
	if job.Report == nil || len(job.Report.Feedbacks) == 0 {
		job.Skip("no feedback")
	}
	return nil
}

// StoreFeedbackStep writes every feedback entry of the report to the store.
type StoreFeedbackStep struct {
	store FeedbackStore
}

// NewStoreFeedbackStep returns a store step.
func NewStoreFeedbackStep(store FeedbackStore) *StoreFeedbackStep {
	return &StoreFeedbackStep{store: store}
}

// Name implements Step.
func (s *StoreFeedbackStep) Name() string { return "store-feedback" }

// Do implements Step.
func (s *StoreFeedbackStep) Do(ctx context.Context, job *SyncJob) error {
	n, err := s.store.SaveFeedbacks(ctx, job.WikiID, job.ReportDate, job.Report.Feedbacks)
	if err != nil {
		return err
	}
	job.StoredFeedbacks = n
	return nil
}

// IgnoreHostnamesStep adds hostnames that only received GOOD feedback to
// the ignore list.
type IgnoreHostnamesStep struct {
	store FeedbackStore
}

// NewIgnoreHostnamesStep returns an ignore step.
func NewIgnoreHostnamesStep(store FeedbackStore) *IgnoreHostnamesStep {
	return &IgnoreHostnamesStep{store: store}
}

// Name implements Step.
func (s *IgnoreHostnamesStep) Name() string { return "ignore-hostnames" }

// Do implements Step.
func (s *IgnoreHostnamesStep) Do(ctx context.Context, job *SyncJob) error {
	for _, hostname := range job.Report.IgnoredHostnames() {
		added, err := s.store.AddIgnoredHostname(ctx, job.WikiID, hostname)
		if err != nil {
			return err
		}
		if added {
			job.NewIgnored = append(job.NewIgnored, hostname)
		}
	}
	return nil
}

// MarkSyncedStep marks every feedback synced and saves the report as a
// bot edit.
type MarkSyncedStep struct {
	reports ReportService
	now     func() time.Time
}

// NewMarkSyncedStep returns a save step. A nil now uses time.Now.
func NewMarkSyncedStep(reports ReportService, now func() time.Time) *MarkSyncedStep {
	if now == nil {
		now = time.Now
	}
	return &MarkSyncedStep{reports: reports, now: now}
}

// Name implements Step.
func (s *MarkSyncedStep) Name() string { return "mark-synced" }

// Do implements Step.
func (s *MarkSyncedStep) Do(ctx context.Context, job *SyncJob) error {
	job.Report.MarkSynced(s.now())

	edit, err := s.reports.PutReport(ctx, job.Title, job.Report, spam.SaveOptions{
		Summary: spam.SyncSummary,
		Bot:     true,
	})
	if err != nil {
		return err
	}
	job.Edit = edit
	return nil
}
