package report

import (
	"encoding/json"
	"io"

	"github.com/plantaest/citronspam/internal/model"
)

// JSONWriter writes the report document as JSON, in the same shape it has
// on the wiki page. Its output can be parsed back with model.ParseReport.
//
// Design decision: the document is encoded with encoding/json and the
// model's own JSON tags, so the file written here and the page content saved
// by the spam service share one encoding. Revisions marshal with ascending
// numeric keys, so two writes of the same report are byte-identical.
type JSONWriter struct {
	baseWriter

	// indent enables indented output. When false, output is compact.
	indent bool

	// indentPrefix is prepended to each line of indented output.
	indentPrefix string

	// indentString is the indentation of one nesting level.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output. prefix starts every line and indent
// is repeated once per nesting level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint indents with two spaces and no prefix. It is the format
// "show --json" writes.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter returns a compact JSONWriter unless configured otherwise.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes report followed by a newline. The title is not part of the
// document and is ignored; the page a report came from is known to the
// caller. An encoding error leaves output untouched.
func (w *JSONWriter) Write(_ string, report *model.Report) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(report, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
