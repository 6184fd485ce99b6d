package spam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/plantaest/citronspam/internal/log"
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/wiki"
)

// DefaultSummary is the edit summary used when saving user feedback.
const DefaultSummary = "Update feedbacks for Citron/Spam report"

// SyncSummary is the edit summary used by the feedback sync.
const SyncSummary = "Sync feedback of Citron/Spam report"

// API is the part of the wiki client the service needs.
type API interface {
	Revisions(ctx context.Context, title string) (wiki.Page, error)
	PostWithToken(ctx context.Context, typ string, params url.Values, out any) error
}

// SaveOptions controls how a report is written back.
type SaveOptions struct {
	// Summary is the edit summary. Empty means DefaultSummary.
	Summary string
	// Bot marks the edit as a bot edit.
	Bot bool
}

// Service fetches and saves reports through the wiki API.
type Service struct {
	api    API
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, for feedback timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService returns a service using api.
func NewService(api API, opts ...Option) *Service {
	s := &Service{
		api:    api,
		logger: log.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchReport reads the report stored on page title. A report that
// references revisions it does not describe is still returned; the gap is
// logged as a warning.
func (s *Service) FetchReport(ctx context.Context, title string) (*model.Report, error) {
	page, err := s.api.Revisions(ctx, title)
	if errors.Is(err, wiki.ErrUnexpectedResponse) {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedReport, title, err)
	}
	if err != nil {
		return nil, err
	}
	if page.Missing {
		return nil, ErrPageMissing
	}
	content, ok := page.MainContent()
	if !ok {
		return nil, ErrEmptyPage
	}

	report, err := model.ParseReport([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedReport, title, err)
	}
	if err := report.Validate(); err != nil {
		s.logger.Warn("report is incomplete", "title", title, "error", err)
	}

	s.logger.Debug("report fetched",
		"title", title,
		"hostnames", len(report.Hostnames),
		"feedbacks", len(report.Feedbacks),
	)
	return report, nil
}

// GetReport starts FetchReport in the background. The query always leaves
// the loading state once the call returns.
func (s *Service) GetReport(ctx context.Context, title string) *model.Query[*model.Report] {
	q := model.NewQuery[*model.Report]()
	go func() {
		report, err := s.FetchReport(ctx, title)
		if err != nil {
			q.Reject(err)
			return
		}
		q.Resolve(report)
	}()
	return q
}

// PutReport writes report to page title as JSON content.
func (s *Service) PutReport(ctx context.Context, title string, report *model.Report, opts SaveOptions) (wiki.EditResponse, error) {
	text, err := json.Marshal(report)
	if err != nil {
		return wiki.EditResponse{}, fmt.Errorf("failed to encode report: %w", err)
	}

	summary := opts.Summary
	if summary == "" {
		summary = DefaultSummary
	}
	params := url.Values{
		"action":       {"edit"},
		"title":        {title},
		"text":         {string(text)},
		"summary":      {summary},
		"contentmodel": {"json"},
		"watchlist":    {"unwatch"},
	}
	if opts.Bot {
		params.Set("bot", "true")
	}

	var resp wiki.EditResponse
	if err := s.api.PostWithToken(ctx, wiki.TokenCSRF, params, &resp); err != nil {
		return wiki.EditResponse{}, err
	}

	s.logger.Info("report saved",
		"title", title,
		"result", resp.Edit.Result,
		"newrevid", resp.Edit.NewRevID,
		"nochange", resp.Edit.NoChange,
	)
	return resp, nil
}

// SaveReport starts PutReport in the background with the default summary.
func (s *Service) SaveReport(ctx context.Context, title string, report *model.Report) *model.Mutation[wiki.EditResponse] {
	m := model.NewMutation[wiki.EditResponse]()
	go func() {
		resp, err := s.PutReport(ctx, title, report, SaveOptions{})
		if err != nil {
			m.Reject(err)
			return
		}
		m.Resolve(resp)
	}()
	return m
}
