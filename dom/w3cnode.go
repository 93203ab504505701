package dom

import (
	"strings"

	"github.com/npillmayer/shadowdom/dom/w3cdom"
	"golang.org/x/net/html"
)

// W3CNode is a read-only view on a document node, implementing
// w3cdom.Node.
type W3CNode struct {
	doc *Document
	h   Handle
}

// W3C returns a W3C view for a node of a document, or nil for Null.
func (doc *Document) W3C(h Handle) *W3CNode {
	if h == Null || doc.Node(h) == nil {
		return nil
	}
	return &W3CNode{doc: doc, h: h}
}

var _ w3cdom.Node = &W3CNode{}

// Handle returns the handle of the viewed node.
func (w *W3CNode) Handle() Handle {
	return w.h
}

// Document returns the document the node belongs to.
func (w *W3CNode) Document() *Document {
	return w.doc
}

// NodeType returns the HTML node type. Shadow roots report
// html.DocumentNode, as they are roots of a tree.
func (w *W3CNode) NodeType() html.NodeType {
	switch w.doc.Kind(w.h) {
	case ElementNode:
		return html.ElementNode
	case TextNode:
		return html.TextNode
	case CommentNode:
		return html.CommentNode
	}
	return html.DocumentNode
}

// NodeName returns the tag name for elements and a kind marker otherwise.
func (w *W3CNode) NodeName() string {
	n := w.doc.Node(w.h)
	if n.Kind == ElementNode {
		return n.Data
	}
	return n.Kind.String()
}

// NodeValue returns the text of text and comment nodes.
func (w *W3CNode) NodeValue() string {
	return w.doc.Text(w.h)
}

// HasAttributes is true for elements with at least one attribute.
func (w *W3CNode) HasAttributes() bool {
	return len(w.doc.Attributes(w.h)) > 0
}

// ParentNode returns the light-tree parent, or nil.
func (w *W3CNode) ParentNode() w3cdom.Node {
	return w.wrap(w.doc.Parent(w.h))
}

// HasChildNodes is true if the node has light-tree children.
func (w *W3CNode) HasChildNodes() bool {
	return w.doc.FirstChild(w.h) != Null
}

// ChildNodes returns all light-tree children.
func (w *W3CNode) ChildNodes() w3cdom.NodeList {
	return &nodeList{doc: w.doc, nodes: w.doc.Children(w.h)}
}

// Children returns the element children.
func (w *W3CNode) Children() w3cdom.NodeList {
	var elems []Handle
	for c := w.doc.FirstChild(w.h); c != Null; c = w.doc.NextSibling(c) {
		if w.doc.IsElement(c) {
			elems = append(elems, c)
		}
	}
	return &nodeList{doc: w.doc, nodes: elems}
}

// FirstChild returns the first light-tree child, or nil.
func (w *W3CNode) FirstChild() w3cdom.Node {
	return w.wrap(w.doc.FirstChild(w.h))
}

// NextSibling returns the next light-tree sibling, or nil.
func (w *W3CNode) NextSibling() w3cdom.Node {
	return w.wrap(w.doc.NextSibling(w.h))
}

// Attributes returns the attributes of an element.
func (w *W3CNode) Attributes() w3cdom.NamedNodeMap {
	return attrMap(w.doc.Attributes(w.h))
}

// ShadowRoot returns the youngest shadow root of a host, or nil.
func (w *W3CNode) ShadowRoot() w3cdom.Node {
	return w.wrap(w.doc.YoungestShadowRoot(w.h))
}

// AssignedNodes returns the distribution of an insertion point. For other
// nodes the list is empty.
func (w *W3CNode) AssignedNodes() w3cdom.NodeList {
	if ip := w.doc.InsertionPoint(w.h); ip != nil {
		return &nodeList{doc: w.doc, nodes: ip.Distribution().Nodes()}
	}
	return &nodeList{doc: w.doc}
}

// TextContent concatenates the text of all light-tree descendants.
func (w *W3CNode) TextContent() (string, error) {
	var sb strings.Builder
	var collect func(Handle)
	collect = func(h Handle) {
		if w.doc.Kind(h) == TextNode {
			sb.WriteString(w.doc.Text(h))
		}
		for c := w.doc.FirstChild(h); c != Null; c = w.doc.NextSibling(c) {
			collect(c)
		}
	}
	collect(w.h)
	return sb.String(), nil
}

func (w *W3CNode) wrap(h Handle) w3cdom.Node {
	if h == Null {
		return nil // avoid non-nil interface holding a nil pointer
	}
	return w.doc.W3C(h)
}

// --- Node lists and attributes ---------------------------------------------

type nodeList struct {
	doc   *Document
	nodes []Handle
}

func (l *nodeList) Length() int {
	return len(l.nodes)
}

func (l *nodeList) Item(i int) w3cdom.Node {
	if i < 0 || i >= len(l.nodes) {
		return nil
	}
	return l.doc.W3C(l.nodes[i])
}

func (l *nodeList) String() string {
	names := make([]string, len(l.nodes))
	for i, h := range l.nodes {
		names[i] = l.doc.W3C(h).NodeName()
	}
	return "[" + strings.Join(names, " ") + "]"
}

type attr struct {
	key, val string
}

func (a attr) Namespace() string { return "" }
func (a attr) Key() string       { return a.key }
func (a attr) Value() string     { return a.val }

type attrMap []Attr

func (m attrMap) Length() int {
	return len(m)
}

func (m attrMap) Item(i int) w3cdom.Attr {
	if i < 0 || i >= len(m) {
		return nil
	}
	return attr{m[i].Key, m[i].Val}
}

func (m attrMap) GetNamedItem(key string) w3cdom.Attr {
	key = strings.ToLower(key)
	for _, a := range m {
		if a.Key == key {
			return attr{a.Key, a.Val}
		}
	}
	return nil
}
