package spam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/wiki"
)

const testTitle = "Project:Citron/Spam/2025-03-01.json"

const testReport = `{"version":1,"updatedAt":"2025-03-02T00:00:05Z",` +
	`"hostnames":[{"hostname":"spam.example","time":"2025-03-01T10:00:00Z","score":0.97,"revisionIds":[101]},` +
	`{"hostname":"ok.example","time":"2025-03-01T11:00:00Z","score":0.6,"revisionIds":[102]}],` +
	`"revisions":{"101":{"page":"A","user":"Alice"},"102":{"page":"B","user":"Bob"}},` +
	`"feedbacks":[]}`

// fakeAPI serves one page and records edits. A successful edit replaces
// the page content with the posted text.
type fakeAPI struct {
	mu       sync.Mutex
	page     string
	getErr   error
	editErr  error
	gets     []string
	edits    []url.Values
	editResp string
}

func (f *fakeAPI) Revisions(_ context.Context, title string) (wiki.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, title)
	if f.getErr != nil {
		return wiki.Page{}, f.getErr
	}
	var resp wiki.QueryResponse
	if err := json.Unmarshal([]byte(f.page), &resp); err != nil {
		return wiki.Page{}, err
	}
	if len(resp.Query.Pages) == 0 {
		return wiki.Page{}, fmt.Errorf("%w: no pages for %q", wiki.ErrUnexpectedResponse, title)
	}
	return resp.Query.Pages[0], nil
}

func (f *fakeAPI) PostWithToken(_ context.Context, typ string, params url.Values, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if typ != wiki.TokenCSRF {
		return errors.New("unexpected token type " + typ)
	}
	f.edits = append(f.edits, params)
	if f.editErr != nil {
		return f.editErr
	}
	f.page = pageWithContent(params.Get("text"))
	resp := f.editResp
	if resp == "" {
		resp = `{"edit":{"result":"Success","pageid":9,"title":"` + testTitle + `","contentmodel":"json","oldrevid":1,"newrevid":2}}`
	}
	return json.Unmarshal([]byte(resp), out)
}

func pageWithContent(content string) string {
	quoted, _ := json.Marshal(content)
	return `{"query":{"pages":[{"pageid":9,"title":"` + testTitle + `","revisions":[{"slots":{"main":{"contentmodel":"json","content":` + string(quoted) + `}}}]}]}}`
}

func TestFetchReport(t *testing.T) {
	t.Parallel()

	apiErr := &wiki.APIError{Code: "internal_api_error", Info: "boom"}

	tests := []struct {
		name    string
		api     *fakeAPI
		wantErr error
		check   func(t *testing.T, r *model.Report)
	}{
		{
			name: "existing page",
			api:  &fakeAPI{page: pageWithContent(testReport)},
			check: func(t *testing.T, r *model.Report) {
				t.Helper()
				if len(r.Hostnames) != 2 || r.Revisions[101].User != "Alice" {
					t.Errorf("unexpected report: %+v", r)
				}
			},
		},
		{
			name:    "missing page",
			api:     &fakeAPI{page: `{"query":{"pages":[{"ns":4,"title":"` + testTitle + `","missing":true}]}}`},
			wantErr: ErrPageMissing,
		},
		{
			name:    "page without revisions",
			api:     &fakeAPI{page: `{"query":{"pages":[{"pageid":9,"title":"` + testTitle + `"}]}}`},
			wantErr: ErrEmptyPage,
		},
		{
			name:    "malformed content",
			api:     &fakeAPI{page: pageWithContent(`{"version":`)},
			wantErr: ErrMalformedReport,
		},
		{
			name:    "no pages",
			api:     &fakeAPI{page: `{"query":{"pages":[]}}`},
			wantErr: ErrMalformedReport,
		},
		{
			name:    "api failure passed through",
			api:     &fakeAPI{getErr: apiErr},
			wantErr: apiErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := NewService(tt.api).FetchReport(context.Background(), testTitle)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, r)

			if diff := cmp.Diff([]string{testTitle}, tt.api.gets); diff != "" {
				t.Errorf("fetched titles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchReportIncomplete(t *testing.T) {
	t.Parallel()

	r, _ := model.ParseReport([]byte(testReport))
	delete(r.Revisions, 102)
	content, _ := json.Marshal(r)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	got, err := NewService(&fakeAPI{page: pageWithContent(string(content))}, WithLogger(logger)).
		FetchReport(context.Background(), testTitle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Hostnames) != 2 {
		t.Errorf("expected the report to be kept, got %+v", got)
	}
	for _, want := range []string{"level=WARN", "report is incomplete", "102"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("expected log to contain %q, got %q", want, logs.String())
		}
	}
}

func TestReportRoundTrip(t *testing.T) {
	t.Parallel()

	want, err := model.ParseReport([]byte(testReport))
	if err != nil {
		t.Fatalf("failed to parse report: %v", err)
	}
	want.Feedbacks = []model.Feedback{
		{CreatedAt: "2025-03-01T12:00:00.000Z", CreatedBy: 42, User: "Alice", Hostname: "spam.example", Status: model.FeedbackBad, Hash: "h1"},
		{CreatedAt: "2025-03-01T12:05:00.000Z", CreatedBy: 7, User: "Bob", Hostname: "ok.example", Status: model.FeedbackGood, Synced: true},
	}

	api := &fakeAPI{page: `{"query":{"pages":[{"title":"` + testTitle + `","missing":true}]}}`}
	svc := NewService(api)
	ctx := context.Background()

	if _, err := svc.PutReport(ctx, testTitle, want, SaveOptions{}); err != nil {
		t.Fatalf("PutReport: %v", err)
	}
	got, err := svc.FetchReport(ctx, testTitle)
	if err != nil {
		t.Fatalf("FetchReport: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestErrPageMissingMessage(t *testing.T) {
	t.Parallel()

	if ErrPageMissing.Error() != "missing" {
		t.Errorf("got %q", ErrPageMissing.Error())
	}
}

func TestGetReport(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		q := NewService(&fakeAPI{page: pageWithContent(testReport)}).GetReport(context.Background(), testTitle)
		r, err := q.Wait(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.IsLoading() || q.State() != model.StateSuccess || r.Version != 1 {
			t.Errorf("unexpected query state %v, report %+v", q.State(), r)
		}
	})

	t.Run("missing leaves loading with error", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{page: `{"query":{"pages":[{"title":"x","missing":true}]}}`}
		q := NewService(api).GetReport(context.Background(), testTitle)
		<-q.Done()
		if q.IsLoading() {
			t.Error("still loading")
		}
		if q.Err() == nil || q.Err().Error() != "missing" {
			t.Errorf("error = %v", q.Err())
		}
		if q.Data() != nil {
			t.Error("expected no data")
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		q := NewService(&fakeAPI{getErr: context.DeadlineExceeded}).GetReport(context.Background(), testTitle)
		<-q.Done()
		if !errors.Is(q.Err(), context.DeadlineExceeded) || q.IsLoading() {
			t.Errorf("state %v err %v", q.State(), q.Err())
		}
	})
}

func TestPutReport(t *testing.T) {
	t.Parallel()

	t.Run("default summary", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{}
		report := model.DefaultReport()
		resp, err := NewService(api).PutReport(context.Background(), testTitle, report, SaveOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Edit.NewRevID != 2 {
			t.Errorf("newrevid = %d", resp.Edit.NewRevID)
		}

		want := url.Values{
			"action":       {"edit"},
			"title":        {testTitle},
			"text":         {`{"version":0,"updatedAt":"2025-01-01T00:00:00.000Z","hostnames":[],"revisions":{},"feedbacks":[]}`},
			"summary":      {"Update feedbacks for Citron/Spam report"},
			"contentmodel": {"json"},
			"watchlist":    {"unwatch"},
		}
		if diff := cmp.Diff(want, api.edits[0]); diff != "" {
			t.Errorf("edit params mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("bot edit with custom summary", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{}
		_, err := NewService(api).PutReport(context.Background(), testTitle, model.DefaultReport(),
			SaveOptions{Summary: SyncSummary, Bot: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if api.edits[0].Get("bot") != "true" || api.edits[0].Get("summary") != SyncSummary {
			t.Errorf("unexpected params: %v", api.edits[0])
		}
	})
}

func TestSaveReport(t *testing.T) {
	t.Parallel()

	t.Run("success sets data", func(t *testing.T) {
		t.Parallel()

		m := NewService(&fakeAPI{}).SaveReport(context.Background(), testTitle, model.DefaultReport())
		resp, err := m.Wait(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !m.IsSuccess() || resp.Edit.Result != "Success" {
			t.Errorf("state %v resp %+v", m.State(), resp)
		}
	})

	t.Run("edit conflict is a failure", func(t *testing.T) {
		t.Parallel()

		conflict := &wiki.APIError{Code: "editconflict", Info: "Edit conflict."}
		api := &fakeAPI{editErr: conflict}
		m := NewService(api).SaveReport(context.Background(), testTitle, model.DefaultReport())
		<-m.Done()
		if m.IsSuccess() {
			t.Error("expected failure")
		}
		if !errors.Is(m.Err(), conflict) {
			t.Errorf("error = %v", m.Err())
		}
		if len(api.edits) != 1 {
			t.Errorf("expected a single attempt, got %d", len(api.edits))
		}
	})
}

func TestFeedbackHash(t *testing.T) {
	t.Parallel()

	f := model.Feedback{
		CreatedAt: "2025-03-01T12:00:00.000Z",
		CreatedBy: 42,
		Hostname:  "spam.example",
		Status:    model.FeedbackBad,
		User:      "Alice",
	}
	got, err := FeedbackHash(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 40 {
		t.Errorf("hash length %d", len(got))
	}

	same := f
	same.Synced = true
	same.Hash = "ignored"
	if h, _ := FeedbackHash(same); h != got {
		t.Error("hash depends on Hash or Synced")
	}

	other := f
	other.Status = model.FeedbackGood
	if h, _ := FeedbackHash(other); h == got {
		t.Error("hash ignores status")
	}
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	alice := wiki.UserInfo{ID: 42, Name: "Alice"}
	fixed := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("records and saves decisions", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{page: pageWithContent(testReport)}
		svc := NewService(api, WithClock(func() time.Time { return fixed }))

		res, err := svc.SubmitFeedback(context.Background(), testTitle, alice, map[string]model.FeedbackStatus{
			"spam.example": model.FeedbackBad,
			"ok.example":   model.FeedbackGood,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Feedbacks) != 2 || res.Feedbacks[0].Hostname != "ok.example" {
			t.Fatalf("unexpected feedbacks: %+v", res.Feedbacks)
		}
		fb := res.Feedbacks[1]
		if fb.CreatedAt != "2025-03-01T12:00:00.000Z" || fb.CreatedBy != 42 || fb.User != "Alice" || fb.Synced {
			t.Errorf("unexpected feedback: %+v", fb)
		}

		saved, err := model.ParseReport([]byte(api.edits[0].Get("text")))
		if err != nil {
			t.Fatalf("saved text is not a report: %v", err)
		}
		if diff := cmp.Diff(res.Feedbacks, saved.Feedbacks); diff != "" {
			t.Errorf("saved feedback mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("replaces unsynced feedback of same user", func(t *testing.T) {
		t.Parallel()

		r, _ := model.ParseReport([]byte(testReport))
		r.Feedbacks = []model.Feedback{{CreatedBy: 42, Hostname: "spam.example", Status: model.FeedbackGood, User: "Alice"}}
		content, _ := json.Marshal(r)

		api := &fakeAPI{page: pageWithContent(string(content))}
		res, err := NewService(api).SubmitFeedback(context.Background(), testTitle, alice,
			map[string]model.FeedbackStatus{"spam.example": model.FeedbackBad})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Report.Feedbacks) != 1 || res.Report.Feedbacks[0].Status != model.FeedbackBad {
			t.Errorf("unexpected feedbacks: %+v", res.Report.Feedbacks)
		}
	})

	t.Run("anonymous user", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{page: pageWithContent(testReport)}
		_, err := NewService(api).SubmitFeedback(context.Background(), testTitle, wiki.UserInfo{Anon: true},
			map[string]model.FeedbackStatus{"spam.example": model.FeedbackBad})
		if !errors.Is(err, ErrAnonymousUser) {
			t.Errorf("expected ErrAnonymousUser, got %v", err)
		}
		if len(api.gets) != 0 {
			t.Error("report fetched for anonymous user")
		}
	})

	t.Run("unknown hostname", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{page: pageWithContent(testReport)}
		_, err := NewService(api).SubmitFeedback(context.Background(), testTitle, alice,
			map[string]model.FeedbackStatus{"other.example": model.FeedbackBad})
		if !errors.Is(err, ErrUnknownHostname) {
			t.Errorf("expected ErrUnknownHostname, got %v", err)
		}
		if len(api.edits) != 0 {
			t.Error("report saved despite unknown hostname")
		}
	})

	t.Run("no decisions", func(t *testing.T) {
		t.Parallel()

		_, err := NewService(&fakeAPI{}).SubmitFeedback(context.Background(), testTitle, alice, nil)
		if !errors.Is(err, ErrNoDecisions) {
			t.Errorf("expected ErrNoDecisions, got %v", err)
		}
	})

	t.Run("missing report", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{page: `{"query":{"pages":[{"title":"x","missing":true}]}}`}
		_, err := NewService(api).SubmitFeedback(context.Background(), testTitle, alice,
			map[string]model.FeedbackStatus{"spam.example": model.FeedbackBad})
		if !errors.Is(err, ErrPageMissing) {
			t.Errorf("expected ErrPageMissing, got %v", err)
		}
	})
}
