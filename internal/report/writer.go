package report

import (
	"io"

	"github.com/plantaest/citronspam/internal/model"
)

// Writer renders a report fetched from the page with the given title.
type Writer interface {
	Write(title string, report *model.Report) (int, error)
}

// MultiWriter writes to several Writers in order and stops at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a Writer writing to all of writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders report with every writer and returns the total byte count.
func (m *MultiWriter) Write(title string, report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(title, report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// verdicts counts GOOD and BAD feedback for one hostname.
type verdicts struct {
	good int
	bad  int
}

func tally(report *model.Report) map[string]verdicts {
	out := make(map[string]verdicts)
	for _, f := range report.Feedbacks {
		v := out[f.Hostname]
		switch f.Status {
		case model.FeedbackGood:
			v.good++
		case model.FeedbackBad:
			v.bad++
		}
		out[f.Hostname] = v
	}
	return out
}

func syncedLabel(synced bool) string {
	if synced {
		return "synced"
	}
	return "unsynced"
}
