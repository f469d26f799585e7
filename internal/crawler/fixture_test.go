package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/atlasharvest/internal/model"
	"github.com/nao1215/atlasharvest/internal/provider"
	"github.com/nao1215/atlasharvest/internal/provider/htmldoc"
)

const testBaseURL = "https://atlas.test"

var (
	listingURL = model.ScoreTypeSAY.ListingURL(testBaseURL)
	sizedURL   = listingURL + "&mydata_length=100"
	detailURL  = sizedURL + "&view=detail"
)

func pageURL(n int) string {
	if n == 1 {
		return detailURL
	}
	return fmt.Sprintf("%s&page=%d", detailURL, n)
}

func code(i int) string {
	return fmt.Sprintf("1%08d", i)
}

// programRow renders a detailed-layout row for code.
func programRow(code string) string {
	return `<tr><td></td><td><a href="#">` + code + `</a></td>` +
		`<td><strong>ÜNİVERSİTE ` + code + `</strong></td>` +
		`<td><strong><a href="#">Tıp</a></strong><br><font color="#CC0000">(Türkçe) (6 Yıllık)</font></td>` +
		`<td>ANKARA</td><td>Devlet</td><td>Ücretsiz</td><td>Örgün</td>` +
		`<td><font color="red">10</font></td><td>Doldu</td><td><font color="red">10</font></td>` +
		`<td><font color="red">1.000</font></td><td><font color="red">500,1</font></td></tr>`
}

// compactRow renders a row of the default compact layout.
func compactRow(code string) string {
	return `<tr><td>` + code + `</td><td>ÜNİVERSİTE</td><td>Tıp</td><td>ANKARA</td></tr>`
}

// malformedRow is a full-width notice row without a program code.
const malformedRow = `<tr><td colspan="13">Reklam</td></tr>`

func rows(from, to int, render func(string) string) []string {
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, render(code(i)))
	}
	return out
}

// listingPage describes one fixture page.
type listingPage struct {
	rows []string

	// next is the next-page link target; empty renders a disabled control.
	next string

	// nextStyle is added to the next-page link.
	nextStyle string

	// toggle is the markup of the view controls.
	toggle string

	noTable    bool
	noPageSize bool
}

func (p listingPage) String() string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	if !p.noPageSize {
		sb.WriteString(`<select name="mydata_length"><option value="10">10</option><option value="100">100</option></select>`)
	}
	sb.WriteString(p.toggle)
	if !p.noTable {
		sb.WriteString(`<table id="mydata"><thead><tr><th>Kod</th></tr></thead><tbody>`)
		for _, r := range p.rows {
			sb.WriteString(r)
		}
		sb.WriteString(`</tbody></table>`)
	}
	sb.WriteString(`<ul class="pagination">`)
	if p.next == "" {
		sb.WriteString(`<li class="paginate_button next disabled"><a href="#">Sonraki</a></li>`)
	} else {
		fmt.Fprintf(&sb, `<li class="paginate_button next"><a href="%s" style="%s">Sonraki</a></li>`, p.next, p.nextStyle)
	}
	sb.WriteString(`</ul></body></html>`)
	return sb.String()
}

func toggleButton(target string) string {
	return `<button id="toggle_view" data-href="` + target + `">Detaylı</button>`
}

// site builds the standard listing: a compact landing page, the same page
// sized to 100 rows, and detailed pages reached through the toggle.
func site(detailPages ...listingPage) *htmldoc.StaticFetcher {
	compact := listingPage{rows: rows(0, 3, compactRow), toggle: toggleButton(detailURL)}
	pages := map[string]string{
		listingURL: compact.String(),
		sizedURL:   compact.String(),
	}
	for i, p := range detailPages {
		pages[pageURL(i+1)] = p.String()
	}
	return htmldoc.NewStaticFetcher(pages)
}

// memoryStore is an in-memory Store that counts saves.
type memoryStore struct {
	mu      sync.Mutex
	records []model.Record
	saves   int
	loadErr error
	saveErr error
}

func (s *memoryStore) Load() ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]model.Record(nil), s.records...), nil
}

func (s *memoryStore) Save(records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = append([]model.Record(nil), records...)
	return nil
}

func (s *memoryStore) snapshot() ([]model.Record, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Record(nil), s.records...), s.saves
}

func newTestCrawler(fetcher htmldoc.Fetcher, st *memoryStore, opts ...Option) *Crawler {
	base := []Option{
		WithBaseURL(testBaseURL),
		WithSettleDelays(0, 0, 0),
		WithLoadTimeout(50 * time.Millisecond),
		WithElementTimeout(50 * time.Millisecond),
		WithPollInterval(time.Millisecond),
	}
	return New(
		func() (provider.Document, error) { return htmldoc.New(fetcher), nil },
		func(model.ScoreType) Store { return st },
		append(base, opts...)...,
	)
}

// closeTracker records whether the document was closed.
type closeTracker struct {
	provider.Document
	closed bool
}

func (d *closeTracker) Close() error {
	d.closed = true
	return d.Document.Close()
}

func run(t *testing.T, c *Crawler) (Result, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.Run(ctx, model.ScoreTypeSAY)
}

func requireAs[T error](t *testing.T, err error) T {
	t.Helper()

	var target T
	if !errors.As(err, &target) {
		t.Fatalf("expected %T, got %v", target, err)
	}
	return target
}
