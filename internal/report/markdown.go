package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/atlasharvest/internal/database"
	"github.com/nao1215/atlasharvest/internal/model"
)

// MarkdownWriter outputs reports as Markdown documents.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteSummary outputs the dataset statistics.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Admission Atlas Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Total Records", strconv.Itoa(summary.TotalRecords)},
			{"Score Types", strconv.Itoa(len(summary.ScoreTypes))},
			{"Distinct Attributes", strconv.Itoa(len(summary.Attributes))},
		},
	})
	md.PlainText("")

	if summary.TotalRecords == 0 {
		md.Note("The dataset is empty. Run `atlasharvest crawl` and `atlasharvest normalize` first.")
		md.PlainText("")
	}

	w.writeCounts(md, "Score Types", "Records per Score Type", summary.ScoreTypes, scoreTypeLabel)
	w.writeCounts(md, "Quota Status", "Quota Status Distribution", summary.QuotaStatuses, statusLabel)
	w.writeAttributes(md, summary.Attributes)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeCounts writes a count table followed by a pie chart.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, title, chartTitle string, counts []model.Count, label func(string) string) {
	md.H2(title)
	md.PlainText("")

	if len(counts) == 0 {
		md.PlainText("No records.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{label(c.Label), strconv.Itoa(c.Count)})
	}
	md.Table(markdown.TableSet{
		Header: []string{title, "Records"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(chartTitle),
		piechart.WithShowData(true),
	)
	for _, c := range counts {
		if c.Count > 0 {
			chart.LabelAndIntValue(label(c.Label), uint64(c.Count))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAttributes(md *markdown.Markdown, attrs []string) {
	md.H2("Attributes")
	md.PlainText("")
	if len(attrs) == 0 {
		md.PlainText("No attributes.")
		md.PlainText("")
		return
	}
	md.BulletList(attrs...)
	md.PlainText("")
}

// WriteRuns outputs the run history as a table.
func (w *MarkdownWriter) WriteRuns(runs []database.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(runs))
	failed := 0
	for _, r := range runs {
		if r.Error != "" {
			failed++
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			scoreTypeLabel(r.ScoreType),
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Duration().Round(time.Second).String(),
			runState(r),
			strconv.Itoa(r.Pages),
			strconv.Itoa(r.NewRecords),
			strconv.Itoa(r.TotalRecords),
			dash(truncateString(r.Error, 60)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Score Type", "Started", "Duration", "State", "Pages", "New", "Total", "Error"},
		Rows:   rows,
	})
	md.PlainText("")

	if failed > 0 {
		md.Warningf("%d of %d run(s) failed.", failed, len(runs))
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [atlasharvest](https://github.com/nao1215/atlasharvest)*")
}
