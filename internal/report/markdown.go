package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/plantaest/citronspam/internal/model"
)

// MarkdownWriter writes a GitHub flavored Markdown report, suitable for
// pasting into an issue or a wiki talk page.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter returns a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders report as Markdown.
func (w *MarkdownWriter) Write(title string, report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, title, report)
	w.writeAlert(md, report)
	w.writeHostnames(md, report)
	w.writeFeedbacks(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, title string, report *model.Report) {
	md.H1("Citron/Spam Report")
	md.PlainText("")

	rows := [][]string{}
	if title != "" {
		rows = append(rows, []string{"Page", codeCell(title)})
	}
	rows = append(rows,
		[]string{"Version", strconv.Itoa(report.Version)},
		[]string{"Updated At", report.UpdatedAt},
		[]string{"Hostnames", strconv.Itoa(len(report.Hostnames))},
		[]string{"Feedback", strconv.Itoa(len(report.Feedbacks))},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch missing := report.DanglingRevisionIDs(); {
	case len(missing) > 0:
		md.Cautionf("%d revision(s) referenced by hostnames are missing from the report.", len(missing))
	case report.UnsyncedCount() > 0:
		md.Warningf("%d feedback entries not yet synced.", report.UnsyncedCount())
	case len(report.Hostnames) == 0:
		md.Tip("No hostnames were reported.")
	case len(report.Feedbacks) == 0:
		md.Note("No feedback yet.")
	default:
		md.Importantf("All %d feedback entries are synced.", len(report.Feedbacks))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeHostnames(md *markdown.Markdown, report *model.Report) {
	md.H2("Hostnames")
	md.PlainText("")

	if len(report.Hostnames) == 0 {
		md.PlainText("No hostnames reported.")
		md.PlainText("")
		return
	}

	counts := tally(report)
	rows := make([][]string, len(report.Hostnames))
	for i, h := range report.Hostnames {
		v := counts[h.Hostname]
		rows[i] = []string{
			codeCell(h.Hostname),
			strconv.FormatFloat(h.Score, 'f', 2, 64),
			textCell(h.Time),
			strconv.Itoa(len(h.RevisionIDs)),
			strconv.Itoa(v.good),
			strconv.Itoa(v.bad),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Hostname", "Score", "Time", "Revisions", "Good", "Bad"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, h := range report.Hostnames {
		if len(h.RevisionIDs) == 0 {
			continue
		}
		lines := make([]string, 0, len(h.RevisionIDs))
		for _, id := range h.RevisionIDs {
			if rev, ok := report.Revisions[id]; ok {
				lines = append(lines, "- "+strconv.FormatInt(id, 10)+": "+rev.Page+" ("+rev.User+")")
			} else {
				lines = append(lines, "- "+strconv.FormatInt(id, 10)+": unknown revision")
			}
		}
		md.Details(h.Hostname, strings.Join(lines, "\n"))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFeedbacks(md *markdown.Markdown, report *model.Report) {
	md.H2("Feedback")
	md.PlainText("")

	if len(report.Feedbacks) == 0 {
		md.PlainText("No feedback yet.")
		md.PlainText("")
		return
	}

	var good, bad uint64
	rows := make([][]string, len(report.Feedbacks))
	for i, f := range report.Feedbacks {
		switch f.Status {
		case model.FeedbackGood:
			good++
		case model.FeedbackBad:
			bad++
		}
		rows[i] = []string{
			textCell(f.CreatedAt),
			textCell(f.User),
			codeCell(f.Hostname),
			f.Status.String(),
			syncedLabel(f.Synced),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Created At", "User", "Hostname", "Status", "Sync"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Feedback"),
		piechart.WithShowData(true),
	)
	if good > 0 {
		chart.LabelAndIntValue("Good", good)
	}
	if bad > 0 {
		chart.LabelAndIntValue("Bad", bad)
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Rendered by [citronspam](https://github.com/plantaest/citronspam)*")
}

// textCell makes s safe inside a table cell: pipes are escaped and line
// breaks become spaces.
func textCell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.ReplaceAll(s, "|", `\|`)
}

// codeCell renders s as a code span inside a table cell. The fence is one
// backtick longer than the longest backtick run in s.
func codeCell(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if longest > 0 {
		s = " " + s + " "
	}
	return textCell(fence + s + fence)
}
