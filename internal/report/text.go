package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nao1215/atlasharvest/internal/database"
	"github.com/nao1215/atlasharvest/internal/model"
)

// TextWriter outputs rounded terminal tables.
type TextWriter struct {
	baseWriter

	// style is the go-pretty table style.
	style table.Style
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithStyle sets the table style. The default is table.StyleRounded.
func WithStyle(style table.Style) TextWriterOption {
	return func(w *TextWriter) {
		w.style = style
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		style:      table.StyleRounded,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *TextWriter) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(w.style)
	return t
}

// render prints title on its own line above the table. go-pretty clips a
// table title to the column widths, so narrow tables would wrap it.
func render(title string, t table.Writer) string {
	return title + "\n" + t.Render()
}

// WriteSummary outputs score type and quota status tables and the
// attribute inventory.
func (w *TextWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	sb.WriteString(w.countTable("Score Types", summary.ScoreTypes, summary.TotalRecords, scoreTypeLabel))
	sb.WriteString("\n")
	sb.WriteString(w.countTable("Quota Status", summary.QuotaStatuses, summary.TotalRecords, statusLabel))
	sb.WriteString("\n")

	t := w.newTable()
	t.AppendHeader(table.Row{"#", "Attribute"})
	for i, a := range summary.Attributes {
		t.AppendRow(table.Row{i + 1, a})
	}
	sb.WriteString(render(fmt.Sprintf("Attributes (%d)", len(summary.Attributes)), t))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteDistribution outputs one count table with shares of total.
func (w *TextWriter) WriteDistribution(title string, counts []model.Count, total int) (int, error) {
	return io.WriteString(w.output, w.countTable(title, counts, total, statusLabel)+"\n")
}

func (w *TextWriter) countTable(title string, counts []model.Count, total int, label func(string) string) string {
	t := w.newTable()
	t.AppendHeader(table.Row{"Value", "Records", "Share"})
	for _, c := range counts {
		t.AppendRow(table.Row{label(c.Label), c.Count, share(c.Count, total)})
	}
	t.AppendFooter(table.Row{"Total", total, ""})
	return render(title, t)
}

// WriteRuns outputs the run history table.
func (w *TextWriter) WriteRuns(runs []database.Run) (int, error) {
	t := w.newTable()
	t.AppendHeader(table.Row{"ID", "Score Type", "Started", "Duration", "State", "Pages", "New", "Total", "Dup", "Skipped", "Error"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			scoreTypeLabel(r.ScoreType),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Duration().Round(time.Second).String(),
			runState(r),
			r.Pages,
			r.NewRecords,
			r.TotalRecords,
			r.Duplicates,
			r.Skipped,
			dash(truncateString(r.Error, 40)),
		})
	}
	return io.WriteString(w.output, render("Crawl History", t)+"\n")
}

func share(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}
