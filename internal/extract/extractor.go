package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/atlasharvest/internal/model"
)

// Extractor maps listing rows of one score type to records.
type Extractor struct {
	scoreType model.ScoreType
	variant   model.Variant
}

// New creates an Extractor for the given score type using its variant.
func New(scoreType model.ScoreType) *Extractor {
	return NewWithVariant(scoreType, scoreType.Variant())
}

// NewWithVariant creates an Extractor with an explicit variant.
func NewWithVariant(scoreType model.ScoreType, variant model.Variant) *Extractor {
	return &Extractor{scoreType: scoreType, variant: variant}
}

// Variant returns the variant the extractor reads.
func (e *Extractor) Variant() model.Variant {
	return e.variant
}

// Extract builds a record from one tr element.
//
// It returns ErrRowSkipped when the row has fewer cells than the variant
// needs or no program code, and a *RowParseError when row is not a table row.
func (e *Extractor) Extract(row *html.Node) (model.Record, error) {
	if row == nil || row.Type != html.ElementNode || row.Data != "tr" {
		return model.Record{}, &RowParseError{Err: errNotRow}
	}

	tds := cells(row)
	if len(tds) < e.variant.MinColumns {
		return model.Record{}, ErrRowSkipped
	}

	cols := e.variant.Columns
	cell := func(c model.Column) *html.Node {
		if !c.Present() {
			return nil
		}
		return tds[c]
	}

	code, ok := Code(cell(cols.Code))
	if !ok {
		return model.Record{}, ErrRowSkipped
	}

	rec := model.NewRecord(code, e.scoreType)
	rec.UniversityName = UniversityName(cell(cols.University))
	rec.ProgramName = ProgramName(cell(cols.Program), e.variant.ProgramLinked)
	rec.Attributes = Attributes(cell(cols.Program), e.variant.AttributeColor, e.variant.AttributeColorFold)
	rec.City = plainText(cell(cols.City))
	rec.UniversityType = plainText(cell(cols.UniversityType))
	rec.ScholarshipType = plainText(cell(cols.ScholarshipType))
	rec.EducationType = plainText(cell(cols.EducationType))
	rec.TotalQuota = ColoredValues(cell(cols.TotalQuota), e.variant.SlotColors)
	rec.QuotaStatus = plainText(cell(cols.QuotaStatus))
	rec.FilledQuota = ColoredValues(cell(cols.FilledQuota), e.variant.SlotColors)
	rec.MaxRank = ColoredValues(cell(cols.MaxRank), e.variant.SlotColors)
	rec.MinScore = ColoredValues(cell(cols.MinScore), e.variant.SlotColors)

	return rec, nil
}

// plainText is cellText that tolerates an absent column.
func plainText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return cellText(n)
}

// IsCode reports whether token is a program code: ASCII digits only and at
// least model.MinCodeLength characters long.
func IsCode(token string) bool {
	if len(token) < model.MinCodeLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}

// Code locates the program code in the code cell.
//
// The cell's text tokens are scanned in document order and the first one
// passing IsCode wins. If none does, the texts of the cell's anchors are
// tried. Markup around the code drifts between pages (extra icons, nested
// spans, a second link), so the position inside the cell is never assumed.
func Code(cell *html.Node) (string, bool) {
	if cell == nil {
		return "", false
	}

	for _, token := range textTokens(cell) {
		if IsCode(token) {
			return token, true
		}
	}

	var code string
	goquery.NewDocumentFromNode(cell).Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if text := selectionText(a); IsCode(text) {
			code = text
			return false
		}
		return true
	})
	return code, code != ""
}

// ColoredValues reads one slot per color key, in key order. A slot holds
// the text of the first font element of that color with any "(breakdown)"
// suffix removed, or "" when the color is absent. The result always has
// len(colors) entries.
func ColoredValues(cell *html.Node, colors []string) []string {
	values := make([]string, len(colors))
	if cell == nil {
		return values
	}

	for i, color := range colors {
		values[i] = stripBreakdown(selectionText(findColored(cell, color, false)))
	}
	return values
}

// stripBreakdown turns "8(6+0+1+0+1)" into "8".
func stripBreakdown(text string) string {
	open := strings.Index(text, "(")
	if open < 0 || !strings.Contains(text, ")") {
		return text
	}
	return strings.TrimSpace(text[:open])
}

// attributeBoundary separates packed qualifiers: "(a) (b)" or "(a)(b)".
var attributeBoundary = regexp.MustCompile(`\)\s*\(`)

// Attributes reads the qualifier list from the marker-colored span of the
// program cell. The span text must be wrapped as "(a)(b)(c)"; anything else
// yields an empty list.
func Attributes(cell *html.Node, color string, fold bool) []string {
	attrs := make([]string, 0)
	if cell == nil {
		return attrs
	}

	text := selectionText(findColored(cell, color, fold))
	if len(text) < 2 || !strings.HasPrefix(text, "(") || !strings.HasSuffix(text, ")") {
		return attrs
	}

	for _, part := range attributeBoundary.Split(text[1:len(text)-1], -1) {
		if part = strings.TrimSpace(part); part != "" {
			attrs = append(attrs, part)
		}
	}
	return attrs
}

// UniversityName returns the text of the first strong element of the cell.
func UniversityName(cell *html.Node) string {
	if cell == nil {
		return ""
	}
	return selectionText(goquery.NewDocumentFromNode(cell).Find("strong").First())
}

// ProgramName returns the program name from the program cell. When linked
// is set the name is the text of the link inside the first strong element;
// a strong element without a link then yields "".
func ProgramName(cell *html.Node, linked bool) string {
	if cell == nil {
		return ""
	}

	strong := goquery.NewDocumentFromNode(cell).Find("strong").First()
	if strong.Length() == 0 {
		return ""
	}
	if !linked {
		return selectionText(strong)
	}
	return selectionText(strong.Find("a").First())
}
