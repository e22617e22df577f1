// Package xmltext wraps antchfx/xmlquery for the XML-based corpus formats.
//
// Besides XPath lookup it provides a depth-first text walk that reports, for
// every element, the code point range its text occupies inside the
// concatenated text of an enclosing element. Inline-markup corpora carry their
// annotations that way.
package xmltext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document is a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node is an XML element.
type Node struct {
	node *xmlquery.Node
}

// Parse parses XML data. xmlquery decodes with encoding/xml, which never
// fetches external entities.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Root returns the document element.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath returns every node matching expr.
func (d *Document) XPath(expr string) ([]*Node, error) {
	return queryAll(d.root, expr)
}

// XPath evaluates expr relative to n.
func (n *Node) XPath(expr string) ([]*Node, error) {
	return queryAll(n.node, expr)
}

func queryAll(root *xmlquery.Node, expr string) ([]*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	nodes := xmlquery.QuerySelectorAll(root, compiled)
	out := make([]*Node, len(nodes))
	for i, m := range nodes {
		out[i] = &Node{node: m}
	}
	return out, nil
}

// Name returns the element name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// Attr returns an attribute value, or "" when absent.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// Text returns the concatenated text of n and its descendants.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// ChildText returns the trimmed text of the first child element called name.
func (n *Node) ChildText(name string) string {
	c := n.Child(name)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

// Child returns the first child element called name.
func (n *Node) Child(name string) *Node {
	if n == nil || n.node == nil {
		return nil
	}
	for c := n.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == name {
			return &Node{node: c}
		}
	}
	return nil
}

// Children returns child elements, all of them when name is empty.
func (n *Node) Children(name string) []*Node {
	if n == nil || n.node == nil {
		return nil
	}
	var out []*Node
	for c := n.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if name == "" || c.Data == name {
			out = append(out, &Node{node: c})
		}
	}
	return out
}

// Span is an element located inside the text of an ancestor.
type Span struct {
	Node   *Node
	Offset kb.Offset
}

// Text returns the element's own text.
func (s Span) Text() string { return s.Node.Text() }

// Walk traverses root depth-first, concatenating text and character data in
// document order. It returns that text together with the range of every
// descendant element for which match returns true. A nil match selects every
// element. Ranges are code point offsets into the returned text.
func Walk(root *Node, match func(*Node) bool) (string, []Span) {
	if root == nil || root.node == nil {
		return "", nil
	}
	w := walker{match: match}
	for c := root.node.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c)
	}
	return w.b.String(), w.spans
}

type walker struct {
	b     strings.Builder
	n     int
	match func(*Node) bool
	spans []Span
}

func (w *walker) visit(x *xmlquery.Node) {
	switch x.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		w.b.WriteString(x.Data)
		w.n += kb.RuneLen(x.Data)
	case xmlquery.ElementNode:
		start := w.n
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			w.visit(c)
		}
		node := &Node{node: x}
		if w.match == nil || w.match(node) {
			w.spans = append(w.spans, Span{Node: node, Offset: kb.Offset{start, w.n}})
		}
	}
}
