package report

import (
	"io"

	"github.com/nao1215/atlasharvest/internal/database"
	"github.com/nao1215/atlasharvest/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// WriteSummary outputs descriptive counts over a dataset.
	// Returns the number of bytes written and any error encountered.
	WriteSummary(summary *model.Summary) (int, error)

	// WriteRuns outputs crawl runs from the history, newest first.
	WriteRuns(runs []database.Run) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteSummary outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
func (m *MultiWriter) WriteSummary(summary *model.Summary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteSummary(summary) })
}

// WriteRuns outputs the runs to all configured Writers.
func (m *MultiWriter) WriteRuns(runs []database.Run) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteRuns(runs) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Format names a report format accepted by NewWriter.
type Format string

const (
	// FormatText renders terminal tables.
	FormatText Format = "text"
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
	// FormatMarkdown renders a Markdown document.
	FormatMarkdown Format = "markdown"
)

// Formats returns the accepted format names.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatMarkdown)}
}

// NewWriter returns the writer for format, or ErrUnknownFormat.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, &FormatError{Format: string(format)}
	}
}
