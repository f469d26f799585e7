package htmldoc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/atlasharvest/internal/provider"
)

// Element is a provider.Element backed by a goquery selection of one node.
type Element struct {
	sel *goquery.Selection
}

var _ provider.Element = (*Element)(nil)

// Text implements provider.Element.
func (e *Element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// Attr implements provider.Element.
func (e *Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// Node implements provider.Element.
func (e *Element) Node() *html.Node {
	return e.sel.Get(0)
}

// Interactable implements provider.Element.
func (e *Element) Interactable() bool {
	if _, ok := e.sel.Attr("disabled"); ok {
		return false
	}
	if _, ok := e.sel.Attr("hidden"); ok {
		return false
	}
	if e.sel.HasClass("disabled") {
		return false
	}
	if typ, _ := e.sel.Attr("type"); strings.EqualFold(typ, "hidden") {
		return false
	}

	for n := e.Node(); n != nil; n = n.Parent {
		if n.Type == html.ElementNode && displayNone(n) {
			return false
		}
	}
	return true
}

// FindAll implements provider.Element.
func (e *Element) FindAll(q provider.Query) []provider.Element {
	return wrap(e.sel.Find(q.Selector()))
}

// displayNone reports whether the inline style of n hides it.
func displayNone(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "style" {
			continue
		}
		for _, decl := range strings.Split(attr.Val, ";") {
			prop, val, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(prop), "display") &&
				strings.EqualFold(strings.TrimSpace(val), "none") {
				return true
			}
		}
	}
	return false
}

// wrap converts each node of sel into an Element.
func wrap(sel *goquery.Selection) []provider.Element {
	out := make([]provider.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{sel: s})
	})
	return out
}
