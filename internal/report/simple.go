package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/plantaest/citronspam/internal/model"
)

const ruleWidth = 70

// SimpleWriter writes a plain text report for the terminal.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have no entries.
	showEmpty bool

	// verbose lists the revisions behind each hostname.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty prints empty sections too.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose lists page and user of every revision.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter returns a SimpleWriter writing to output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders report as text.
func (w *SimpleWriter) Write(title string, report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, title, report)
	w.writeHostnames(&sb, report)
	w.writeFeedbacks(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func rule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, ruleWidth))
	sb.WriteString("\n")
}

func section(sb *strings.Builder, name string) {
	rule(sb, "-")
	sb.WriteString(name)
	sb.WriteString("\n")
	rule(sb, "-")
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, title string, report *model.Report) {
	sb.WriteString("\n")
	rule(sb, "=")
	sb.WriteString("                        CITRON/SPAM REPORT\n")
	rule(sb, "=")
	sb.WriteString("\n")

	if title != "" {
		fmt.Fprintf(sb, "Page:        %s\n", title)
	}
	fmt.Fprintf(sb, "Version:     %d\n", report.Version)
	fmt.Fprintf(sb, "Updated at:  %s\n", report.UpdatedAt)
	fmt.Fprintf(sb, "Hostnames:   %d\n", len(report.Hostnames))
	fmt.Fprintf(sb, "Feedback:    %d (%d unsynced)\n", len(report.Feedbacks), report.UnsyncedCount())

	if missing := report.DanglingRevisionIDs(); len(missing) > 0 {
		ids := make([]string, len(missing))
		for i, id := range missing {
			ids[i] = strconv.FormatInt(id, 10)
		}
		fmt.Fprintf(sb, "Warning:     unknown revisions %s\n", strings.Join(ids, ", "))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHostnames(sb *strings.Builder, report *model.Report) {
	if len(report.Hostnames) == 0 && !w.showEmpty {
		return
	}
	section(sb, "HOSTNAMES")

	if len(report.Hostnames) == 0 {
		sb.WriteString("  No hostnames reported\n\n")
		return
	}

	counts := tally(report)
	for _, h := range report.Hostnames {
		v := counts[h.Hostname]
		fmt.Fprintf(sb, "  %.2f  %s\n", h.Score, h.Hostname)
		fmt.Fprintf(sb, "        time: %s  revisions: %d  good: %d  bad: %d\n",
			h.Time, len(h.RevisionIDs), v.good, v.bad)

		if !w.verbose {
			continue
		}
		for _, id := range h.RevisionIDs {
			rev, ok := report.Revisions[id]
			if !ok {
				fmt.Fprintf(sb, "        - [%d] (unknown revision)\n", id)
				continue
			}
			fmt.Fprintf(sb, "        - [%d] %s by %s\n", id, rev.Page, rev.User)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFeedbacks(sb *strings.Builder, report *model.Report) {
	if len(report.Feedbacks) == 0 && !w.showEmpty {
		return
	}
	section(sb, "FEEDBACK")

	if len(report.Feedbacks) == 0 {
		sb.WriteString("  No feedback yet\n\n")
		return
	}

	for _, f := range report.Feedbacks {
		fmt.Fprintf(sb, "  [%s] %s by %s at %s (%s)\n",
			strings.ToUpper(f.Status.String()), f.Hostname, f.User, f.CreatedAt, syncedLabel(f.Synced))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	rule(sb, "=")
	sb.WriteString("Rendered by citronspam\n")
	rule(sb, "=")
}
