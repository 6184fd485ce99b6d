package pipeline

import (
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/wiki"
)

// SyncJob carries the state of one wiki's sync through the pipeline.
type SyncJob struct {
	WikiID     string
	Title      string
	ReportDate string

	// Report is set by the fetch step.
	Report *model.Report

	// Skipped is set when a step ends the sync early without an error.
	Skipped    bool
	SkipReason string

	// StoredFeedbacks is the number of feedback rows newly stored.
	StoredFeedbacks int

	// NewIgnored lists hostnames added to the ignore list by this run.
	NewIgnored []string

	// Edit is the response of the final save.
	Edit wiki.EditResponse

	// Error is the error of the failing step, if any.
	Error        error
	ErrorMessage string

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string
}

// NewSyncJob returns a job for the report title of reportDate on wikiID.
func NewSyncJob(wikiID, title, reportDate string) *SyncJob {
	return &SyncJob{
		WikiID:         wikiID,
		Title:          title,
		ReportDate:     reportDate,
		PerformedSteps: make([]string, 0),
	}
}

// Skip ends the sync early.
func (j *SyncJob) Skip(reason string) {
	j.Skipped = true
	j.SkipReason = reason
}

// Succeeded reports whether the report was saved.
func (j *SyncJob) Succeeded() bool {
	return j.Error == nil && !j.Skipped
}
