package spam

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/plantaest/citronspam/internal/helper"
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/wiki"
)

// createdAtLayout matches JavaScript's Date.prototype.toISOString.
const createdAtLayout = "2006-01-02T15:04:05.000Z"

// FeedbackHash returns the SHA-1 of the key-sorted JSON of the identifying
// feedback fields. The hash does not cover Hash or Synced.
func FeedbackHash(f model.Feedback) (string, error) {
	obj := helper.SortObjectByKey(map[string]any{
		"createdAt": f.CreatedAt,
		"createdBy": f.CreatedBy,
		"hostname":  f.Hostname,
		"status":    int(f.Status),
		"user":      f.User,
	})
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return helper.HashSHA1(string(data)), nil
}

// NewFeedback builds a feedback entry for user, stamped at, with its hash.
func NewFeedback(user wiki.UserInfo, hostname string, status model.FeedbackStatus, at time.Time) (model.Feedback, error) {
	f := model.Feedback{
		CreatedAt: at.UTC().Format(createdAtLayout),
		CreatedBy: user.ID,
		Hostname:  hostname,
		Status:    status,
		User:      user.Name,
	}
	hash, err := FeedbackHash(f)
	if err != nil {
		return model.Feedback{}, err
	}
	f.Hash = hash
	return f, nil
}

// SubmitResult is what SubmitFeedback wrote.
type SubmitResult struct {
	Report    *model.Report
	Edit      wiki.EditResponse
	Feedbacks []model.Feedback
}

// SubmitFeedback fetches the latest report on title, records one feedback
// per decided hostname for user and saves the report. Decisions are applied
// in hostname order.
func (s *Service) SubmitFeedback(ctx context.Context, title string, user wiki.UserInfo, decisions map[string]model.FeedbackStatus) (SubmitResult, error) {
	if user.Anon || user.ID == 0 {
		return SubmitResult{}, ErrAnonymousUser
	}
	if len(decisions) == 0 {
		return SubmitResult{}, ErrNoDecisions
	}

	report, err := s.FetchReport(ctx, title)
	if err != nil {
		return SubmitResult{}, err
	}

	hostnames := make([]string, 0, len(decisions))
	for hostname := range decisions {
		if report.Hostname(hostname) == nil {
			return SubmitResult{}, fmt.Errorf("%w: %s", ErrUnknownHostname, hostname)
		}
		hostnames = append(hostnames, hostname)
	}
	slices.Sort(hostnames)

	now := s.now()
	feedbacks := make([]model.Feedback, 0, len(hostnames))
	for _, hostname := range hostnames {
		f, err := NewFeedback(user, hostname, decisions[hostname], now)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("failed to hash feedback: %w", err)
		}
		report.UpsertFeedback(f)
		feedbacks = append(feedbacks, f)
	}

	edit, err := s.PutReport(ctx, title, report, SaveOptions{})
	if err != nil {
		return SubmitResult{}, err
	}

	s.logger.Info("feedback submitted",
		"title", title,
		"user", user.Name,
		"count", len(feedbacks),
	)
	return SubmitResult{Report: report, Edit: edit, Feedbacks: feedbacks}, nil
}
