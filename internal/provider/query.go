package provider

import (
	"fmt"
	"strings"
)

// QueryKind identifies how a Query matches elements.
type QueryKind int

const (
	// KindID matches the id attribute.
	KindID QueryKind = iota
	// KindName matches the name attribute.
	KindName
	// KindTag matches the element name.
	KindTag
	// KindSelector is a CSS selector.
	KindSelector
)

// String returns the kind name.
func (k QueryKind) String() string {
	switch k {
	case KindID:
		return "id"
	case KindName:
		return "name"
	case KindTag:
		return "tag"
	case KindSelector:
		return "selector"
	default:
		return "unknown"
	}
}

// Query locates elements in a document.
type Query struct {
	Kind  QueryKind
	Value string
}

// ByID matches the element whose id is id.
func ByID(id string) Query {
	return Query{Kind: KindID, Value: id}
}

// ByName matches elements whose name attribute is name.
func ByName(name string) Query {
	return Query{Kind: KindName, Value: name}
}

// ByTag matches elements by tag name.
func ByTag(tag string) Query {
	return Query{Kind: KindTag, Value: tag}
}

// BySelector matches elements with a CSS selector.
func BySelector(selector string) Query {
	return Query{Kind: KindSelector, Value: selector}
}

// Selector returns q as a CSS selector.
func (q Query) Selector() string {
	switch q.Kind {
	case KindID:
		return `[id="` + escapeAttr(q.Value) + `"]`
	case KindName:
		return `[name="` + escapeAttr(q.Value) + `"]`
	case KindTag:
		return q.Value
	default:
		return q.Value
	}
}

// String implements fmt.Stringer for log output.
func (q Query) String() string {
	return fmt.Sprintf("%s(%s)", q.Kind, q.Value)
}

func escapeAttr(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
}
