package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/atlasharvest/internal/database"
	"github.com/nao1215/atlasharvest/internal/model"
)

// JSONWriter outputs reports in JSON format for scripts and dashboards.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteSummary outputs the summary as a JSON object.
func (w *JSONWriter) WriteSummary(summary *model.Summary) (int, error) {
	return w.writeJSON(summary)
}

// WriteRuns outputs the runs as a JSON array.
func (w *JSONWriter) WriteRuns(runs []database.Run) (int, error) {
	out := make([]jsonRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, newJSONRun(r))
	}
	return w.writeJSON(out)
}

// jsonRun is the wire shape of a database.Run.
type jsonRun struct {
	ID           int64     `json:"id"`
	ScoreType    string    `json:"score_type"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	DurationMS   int64     `json:"duration_ms"`
	State        string    `json:"state"`
	Pages        int       `json:"pages"`
	NewRecords   int       `json:"new_records"`
	TotalRecords int       `json:"total_records"`
	Duplicates   int       `json:"duplicates"`
	Skipped      int       `json:"skipped"`
	Degraded     bool      `json:"degraded"`
	Error        string    `json:"error,omitempty"`
}

func newJSONRun(r database.Run) jsonRun {
	return jsonRun{
		ID:           r.ID,
		ScoreType:    r.ScoreType,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		DurationMS:   r.Duration().Milliseconds(),
		State:        r.State,
		Pages:        r.Pages,
		NewRecords:   r.NewRecords,
		TotalRecords: r.TotalRecords,
		Duplicates:   r.Duplicates,
		Skipped:      r.Skipped,
		Degraded:     r.Degraded,
		Error:        r.Error,
	}
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
