package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// textTokens returns the trimmed, non-empty text nodes below n in document
// order. Tokens are NFC-normalized because the listing mixes composed and
// decomposed Turkish letters.
func textTokens(n *html.Node) []string {
	tokens := make([]string, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				tokens = append(tokens, norm.NFC.String(t))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if n != nil {
		walk(n)
	}
	return tokens
}

// strippedText joins the trimmed text nodes below n without a separator,
// so "<b> 8 </b>( 6 )" reads "8(6)".
func strippedText(n *html.Node) string {
	return strings.Join(textTokens(n), "")
}

// selectionText is strippedText for the first node of sel.
func selectionText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return strippedText(sel.Get(0))
}

// cellText returns the text of n with runs of whitespace collapsed, the way
// a browser renders a plain table cell.
func cellText(n *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if n != nil {
		walk(n)
	}
	return norm.NFC.String(strings.Join(strings.Fields(sb.String()), " "))
}

// cells returns the td children of a table row in order.
func cells(row *html.Node) []*html.Node {
	out := make([]*html.Node, 0)
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			out = append(out, c)
		}
	}
	return out
}

// findColored returns the first font element below cell whose color
// attribute equals color. fold makes the comparison case-insensitive.
func findColored(cell *html.Node, color string, fold bool) *goquery.Selection {
	return goquery.NewDocumentFromNode(cell).Find("font").FilterFunction(func(_ int, s *goquery.Selection) bool {
		val, ok := s.Attr("color")
		if !ok {
			return false
		}
		if fold {
			return strings.EqualFold(val, color)
		}
		return val == color
	}).First()
}
