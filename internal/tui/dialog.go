package tui

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/spam"
	"github.com/plantaest/citronspam/internal/wiki"
)

// Interface message keys used by the dialog.
const (
	MsgSave      = "popups-settings-save"
	MsgCancel    = "popups-settings-cancel"
	MsgError     = "ooui-dialog-process-error"
	MsgPublished = "postedit-confirmation-published"
)

// MessageKeys are loaded before the dialog is shown.
var MessageKeys = []string{MsgSave, MsgCancel, MsgError, MsgPublished}

// Messages renders localized interface messages.
type Messages interface {
	Message(key string, args ...string) string
}

// ReportService loads reports and records feedback.
type ReportService interface {
	GetReport(ctx context.Context, title string) *model.Query[*model.Report]
	SubmitFeedback(ctx context.Context, title string, user wiki.UserInfo, decisions map[string]model.FeedbackStatus) (spam.SubmitResult, error)
}

type reportLoadedMsg struct {
	report *model.Report
	err    error
}

type feedbackSavedMsg struct {
	result spam.SubmitResult
	err    error
}

type closeDialogMsg struct{}

// Dialog shows one report and collects the user's verdicts.
type Dialog struct {
	ctx      context.Context
	service  ReportService
	messages Messages
	title    string
	user     wiki.UserInfo

	query    *model.Query[*model.Report]
	mutation *model.Mutation[spam.SubmitResult]

	// recorded is the user's feedback already on the page; decisions is
	// what the dialog would save.
	recorded  map[string]model.FeedbackStatus
	decisions map[string]model.FeedbackStatus

	// linked marks hostnames linked from the page the dialog was opened on.
	linked map[string]bool

	cursor   int
	expanded bool
	notice   string
	failure  string
}

// NewDialog returns a dialog for the report on title and starts loading it.
func NewDialog(ctx context.Context, service ReportService, messages Messages, title string, user wiki.UserInfo) Dialog {
	d := Dialog{
		ctx:       ctx,
		service:   service,
		messages:  messages,
		title:     title,
		user:      user,
		recorded:  map[string]model.FeedbackStatus{},
		decisions: map[string]model.FeedbackStatus{},
	}
	d.query = service.GetReport(ctx, title)
	return d
}

// Init implements tea.Model.
func (d Dialog) Init() tea.Cmd {
	return waitReport(d.ctx, d.query)
}

func waitReport(ctx context.Context, q *model.Query[*model.Report]) tea.Cmd {
	return func() tea.Msg {
		report, err := q.Wait(ctx)
		return reportLoadedMsg{report: report, err: err}
	}
}

// Report returns the loaded report, or nil.
func (d Dialog) Report() *model.Report {
	if d.query == nil || d.query.State() != model.StateSuccess {
		return nil
	}
	return d.query.Data()
}

// Changes returns the decisions that differ from the recorded feedback.
func (d Dialog) Changes() map[string]model.FeedbackStatus {
	out := make(map[string]model.FeedbackStatus)
	for hostname, status := range d.decisions {
		if prev, ok := d.recorded[hostname]; !ok || prev != status {
			out[hostname] = status
		}
	}
	return out
}

func (d Dialog) saving() bool {
	return d.mutation != nil && d.mutation.IsPending()
}

// Update implements tea.Model.
func (d Dialog) Update(msg tea.Msg) (Dialog, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		if msg.err != nil {
			d.failure = d.errorText(msg.err)
			return d, nil
		}
		d.failure = ""
		d.recorded = msg.report.FeedbackFor(d.user.ID)
		d.decisions = maps.Clone(d.recorded)
		if d.cursor >= len(msg.report.Hostnames) {
			d.cursor = 0
		}
		return d, nil

	case feedbackSavedMsg:
		if msg.err != nil {
			d.failure = d.errorText(msg.err)
			return d, nil
		}
		d.failure = ""
		d.notice = d.messages.Message(MsgPublished)
		q := model.NewQuery[*model.Report]()
		q.Resolve(msg.result.Report)
		d.query = q
		return d, waitReport(d.ctx, q)

	case tea.KeyMsg:
		return d.handleKey(msg)
	}
	return d, nil
}

func (d Dialog) handleKey(msg tea.KeyMsg) (Dialog, tea.Cmd) {
	if key.Matches(msg, keys.Close) {
		return d, func() tea.Msg { return closeDialogMsg{} }
	}

	report := d.Report()
	if report == nil || d.saving() {
		if key.Matches(msg, keys.Reload) && d.query != nil && !d.query.IsLoading() {
			return d.reload()
		}
		return d, nil
	}

	switch {
	case key.Matches(msg, keys.Down):
		if d.cursor < len(report.Hostnames)-1 {
			d.cursor++
		}
	case key.Matches(msg, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(msg, keys.Good):
		d.decide(report, model.FeedbackGood)
	case key.Matches(msg, keys.Bad):
		d.decide(report, model.FeedbackBad)
	case key.Matches(msg, keys.Clear):
		if h := d.current(report); h != "" {
			if prev, ok := d.recorded[h]; ok {
				d.decisions[h] = prev
			} else {
				delete(d.decisions, h)
			}
		}
	case key.Matches(msg, keys.Expand):
		d.expanded = !d.expanded
	case key.Matches(msg, keys.Reload):
		return d.reload()
	case key.Matches(msg, keys.Save):
		return d.save()
	}
	return d, nil
}

func (d Dialog) current(report *model.Report) string {
	if d.cursor < 0 || d.cursor >= len(report.Hostnames) {
		return ""
	}
	return report.Hostnames[d.cursor].Hostname
}

func (d *Dialog) decide(report *model.Report, status model.FeedbackStatus) {
	if h := d.current(report); h != "" {
		d.notice = ""
		d.decisions[h] = status
	}
}

func (d Dialog) reload() (Dialog, tea.Cmd) {
	d.notice = ""
	d.failure = ""
	d.query = d.service.GetReport(d.ctx, d.title)
	return d, waitReport(d.ctx, d.query)
}

func (d Dialog) save() (Dialog, tea.Cmd) {
	changes := d.Changes()
	if len(changes) == 0 {
		d.notice = "No changes to save."
		return d, nil
	}

	d.notice = ""
	d.failure = ""
	m := model.NewMutation[spam.SubmitResult]()
	d.mutation = m

	ctx, service, title, user := d.ctx, d.service, d.title, d.user
	return d, func() tea.Msg {
		result, err := service.SubmitFeedback(ctx, title, user, changes)
		if err != nil {
			m.Reject(err)
		} else {
			m.Resolve(result)
		}
		return feedbackSavedMsg{result: result, err: err}
	}
}

func (d Dialog) errorText(err error) string {
	return d.messages.Message(MsgError) + ": " + err.Error()
}

// View implements tea.Model.
func (d Dialog) View() string {
	var b strings.Builder
	b.WriteString(dialogTitleStyle.Render("Citron/Spam · " + d.title))
	b.WriteString("\n")

	switch report := d.Report(); {
	case d.query == nil || d.query.IsLoading():
		b.WriteString(dimStyle.Render("Loading…"))
		b.WriteString("\n")
	case report == nil:
		b.WriteString(errorStyle.Render(d.failure))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Press r to retry."))
		b.WriteString("\n")
	default:
		d.renderHostnames(&b, report)
	}

	if d.saving() {
		b.WriteString(dimStyle.Render("Saving…"))
		b.WriteString("\n")
	}
	if d.notice != "" {
		b.WriteString(noticeStyle.Render(d.notice))
		b.WriteString("\n")
	}
	if d.failure != "" && d.Report() != nil {
		b.WriteString(errorStyle.Render(d.failure))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		primaryButtonStyle.Render(d.messages.Message(MsgSave)+" (s)"),
		buttonStyle.Render(d.messages.Message(MsgCancel)+" (esc)"),
	))

	return dialogStyle.Render(b.String())
}

func (d Dialog) renderHostnames(b *strings.Builder, report *model.Report) {
	if len(report.Hostnames) == 0 {
		b.WriteString(dimStyle.Render("No hostnames reported."))
		b.WriteString("\n")
		return
	}

	for i, h := range report.Hostnames {
		badge := noBadgeStyle.Render("[    ]")
		if status, ok := d.decisions[h.Hostname]; ok {
			switch status {
			case model.FeedbackGood:
				badge = goodBadgeStyle.Render("[GOOD]")
			case model.FeedbackBad:
				badge = badBadgeStyle.Render("[BAD] ")
			}
		}

		name := h.Hostname
		if d.linked[h.Hostname] {
			name = linkedStyle.Render(h.Hostname + " " + linkedMarker)
		}
		line := fmt.Sprintf("%s %s  %s  %s", badge, scoreStyle.Render(fmt.Sprintf("%.2f", h.Score)),
			name, dimStyle.Render(fmt.Sprintf("%s · %d revisions", h.Time, len(h.RevisionIDs))))
		style := rowStyle
		if i == d.cursor {
			style = rowSelectedStyle
			line = "> " + line
		} else {
			line = "  " + line
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if i == d.cursor && d.expanded {
			for _, id := range h.RevisionIDs {
				text := fmt.Sprintf("%d (unknown revision)", id)
				if rev, ok := report.Revisions[id]; ok {
					text = fmt.Sprintf("%d %s by %s", id, rev.Page, rev.User)
				}
				b.WriteString(revisionStyle.Render(text))
				b.WriteString("\n")
			}
		}
	}

	if changes := d.Changes(); len(changes) > 0 {
		names := slices.Sorted(maps.Keys(changes))
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n%d unsaved: %s", len(names), strings.Join(names, ", "))))
		b.WriteString("\n")
	}
}
