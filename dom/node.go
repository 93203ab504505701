package dom

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/shadowdom/tree"
	"golang.org/x/net/html"
)

// Handle addresses a node of a document.
type Handle = tree.ID

// Null is the null handle.
const Null Handle = tree.None

// ErrNotAnElement is returned for element operations on non-element nodes.
var ErrNotAnElement = errors.New("node is not an element")

// ErrShadowHostCycle is returned if a shadow host would become part of its
// own shadow tree.
var ErrShadowHostCycle = errors.New("shadow host would become part of its own shadow tree")

// ErrInvalidHandle is returned for handles not belonging to a document.
var ErrInvalidHandle = errors.New("invalid node handle")

// NodeKind is the type of a document node.
type NodeKind uint8

// Kinds of nodes.
const (
	DocumentNode NodeKind = iota
	ElementNode
	TextNode
	CommentNode
	ShadowRootNode
)

func (k NodeKind) String() string {
	switch k {
	case DocumentNode:
		return "#document"
	case ElementNode:
		return "element"
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case ShadowRootNode:
		return "#shadow-root"
	}
	return "?"
}

// Attr is an element attribute.
type Attr struct {
	Key string
	Val string
}

// Node is the payload of a document tree node.
type Node struct {
	Kind         NodeKind
	Data         string // tag name for elements, text for text and comments
	attrs        []Attr
	id           string
	classes      []string
	host         *hostData       // shadow host bookkeeping
	root         *rootData       // shadow root bookkeeping
	ip           *InsertionPoint // non-nil for <content> and <shadow>
	styleChange  StyleChange
	flags        Flags
	source       *html.Node
}

// Document is a tree of nodes, including all the shadow trees attached to
// its elements.
type Document struct {
	tree    *tree.Tree[*Node]
	root    Handle
	ipSeq   uint64
	sources map[*html.Node]Handle
}

// NewDocument creates an empty document, consisting of a document node only.
func NewDocument() *Document {
	doc := &Document{
		tree:    tree.New[*Node](),
		sources: make(map[*html.Node]Handle),
	}
	doc.root = doc.tree.NewNode(&Node{Kind: DocumentNode, Data: "#document"})
	return doc
}

// Root returns the document node.
func (doc *Document) Root() Handle {
	return doc.root
}

// Tree exposes the underlying node arena, e.g. for use with tree.Walker.
func (doc *Document) Tree() *tree.Tree[*Node] {
	return doc.tree
}

// Node returns the payload for a handle, or nil for invalid handles.
func (doc *Document) Node(h Handle) *Node {
	return doc.tree.Payload(h)
}

// Size returns the number of nodes ever created for this document.
func (doc *Document) Size() int {
	return doc.tree.Len()
}

func (doc *Document) String() string {
	return fmt.Sprintf("(Document #nodes=%d)", doc.Size())
}

// --- Creation --------------------------------------------------------------

// CreateElement creates a new isolated element. Tag names are folded to
// lower case. Elements named "content" or "shadow" become insertion points.
func (doc *Document) CreateElement(tag string, attrs ...Attr) Handle {
	n := &Node{Kind: ElementNode, Data: strings.ToLower(tag)}
	switch n.Data {
	case "content":
		doc.ipSeq++
		n.ip = &InsertionPoint{kind: ContentInsertionPoint, seq: doc.ipSeq, valid: true}
	case "shadow":
		doc.ipSeq++
		n.ip = &InsertionPoint{kind: ShadowInsertionPoint, seq: doc.ipSeq, valid: true}
	}
	h := doc.tree.NewNode(n)
	for _, a := range attrs {
		doc.setAttribute(n, a.Key, a.Val)
	}
	return h
}

// CreateText creates a new isolated text node.
func (doc *Document) CreateText(text string) Handle {
	return doc.tree.NewNode(&Node{Kind: TextNode, Data: text})
}

// CreateComment creates a new isolated comment node.
func (doc *Document) CreateComment(text string) Handle {
	return doc.tree.NewNode(&Node{Kind: CommentNode, Data: text})
}

// --- Node properties -------------------------------------------------------

// Kind returns the kind of a node. Invalid handles report DocumentNode.
func (doc *Document) Kind(h Handle) NodeKind {
	if n := doc.Node(h); n != nil {
		return n.Kind
	}
	return DocumentNode
}

// IsElement is a predicate for element nodes.
func (doc *Document) IsElement(h Handle) bool {
	n := doc.Node(h)
	return n != nil && n.Kind == ElementNode
}

// IsShadowRoot is a predicate for shadow root nodes.
func (doc *Document) IsShadowRoot(h Handle) bool {
	n := doc.Node(h)
	return n != nil && n.Kind == ShadowRootNode
}

// TagName returns the lower-case tag name of an element, or "" for other
// nodes.
func (doc *Document) TagName(h Handle) string {
	if n := doc.Node(h); n != nil && n.Kind == ElementNode {
		return n.Data
	}
	return ""
}

// Text returns the text of a text or comment node.
func (doc *Document) Text(h Handle) string {
	if n := doc.Node(h); n != nil && (n.Kind == TextNode || n.Kind == CommentNode) {
		return n.Data
	}
	return ""
}

// ID returns the id of an element.
func (doc *Document) ID(h Handle) string {
	if n := doc.Node(h); n != nil {
		return n.id
	}
	return ""
}

// Classes returns the class set of an element. Clients must not modify
// the returned slice.
func (doc *Document) Classes(h Handle) []string {
	if n := doc.Node(h); n != nil {
		return n.classes
	}
	return nil
}

// HasClass is a predicate for class set membership.
func (doc *Document) HasClass(h Handle, class string) bool {
	for _, c := range doc.Classes(h) {
		if c == class {
			return true
		}
	}
	return false
}

// Attribute returns the value of an attribute and whether it is set.
func (doc *Document) Attribute(h Handle, key string) (string, bool) {
	n := doc.Node(h)
	if n == nil {
		return "", false
	}
	key = strings.ToLower(key)
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attributes returns all attributes of an element, in order of definition.
func (doc *Document) Attributes(h Handle) []Attr {
	if n := doc.Node(h); n != nil {
		return n.attrs
	}
	return nil
}

// Source returns the HTML parse node a document node has been built from,
// if any.
func (doc *Document) Source(h Handle) *html.Node {
	if n := doc.Node(h); n != nil {
		return n.source
	}
	return nil
}

// HandleFor returns the document node built from an HTML parse node.
func (doc *Document) HandleFor(hn *html.Node) Handle {
	return doc.sources[hn]
}

func (doc *Document) setAttribute(n *Node, key, val string) {
	key = strings.ToLower(key)
	found := false
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Val = val
			found = true
			break
		}
	}
	if !found {
		n.attrs = append(n.attrs, Attr{Key: key, Val: val})
	}
	doc.attributeUpdated(n, key, val)
}

func (doc *Document) removeAttribute(n *Node, key string) bool {
	key = strings.ToLower(key)
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			doc.attributeUpdated(n, key, "")
			return true
		}
	}
	return false
}

func (doc *Document) attributeUpdated(n *Node, key, val string) {
	switch key {
	case "id":
		n.id = val
	case "class":
		n.classes = SplitClasses(val)
	case "select":
		if n.ip != nil {
			n.ip.setSelect(val)
		}
	}
}

// SplitClasses splits the value of a class attribute into class names.
func SplitClasses(value string) []string {
	return strings.Fields(value)
}

// SymmetricDifference returns the strings contained in exactly one of a
// and b, each one once.
func SymmetricDifference(a, b []string) []string {
	ina := make(map[string]bool, len(a))
	for _, s := range a {
		ina[s] = true
	}
	inb := make(map[string]bool, len(b))
	for _, s := range b {
		inb[s] = true
	}
	var diff []string
	for _, s := range a {
		if !inb[s] {
			diff = append(diff, s)
			inb[s] = true // report once
		}
	}
	for _, s := range b {
		if !ina[s] {
			diff = append(diff, s)
			ina[s] = true
		}
	}
	return diff
}

// --- Light tree navigation -------------------------------------------------

// Parent returns the parent node, or Null for roots.
func (doc *Document) Parent(h Handle) Handle {
	return doc.tree.Parent(h)
}

// FirstChild returns the first child of a node.
func (doc *Document) FirstChild(h Handle) Handle {
	return doc.tree.FirstChild(h)
}

// LastChild returns the last child of a node.
func (doc *Document) LastChild(h Handle) Handle {
	return doc.tree.LastChild(h)
}

// NextSibling returns the next sibling of a node.
func (doc *Document) NextSibling(h Handle) Handle {
	return doc.tree.NextSibling(h)
}

// PrevSibling returns the previous sibling of a node.
func (doc *Document) PrevSibling(h Handle) Handle {
	return doc.tree.PrevSibling(h)
}

// Children returns the children of a node.
func (doc *Document) Children(h Handle) []Handle {
	return doc.tree.Children(h)
}

// ChildCount returns the number of children of a node.
func (doc *Document) ChildCount(h Handle) int {
	return doc.tree.ChildCount(h)
}

// PrevElementSibling returns the nearest preceding sibling which is an element.
func (doc *Document) PrevElementSibling(h Handle) Handle {
	for s := doc.tree.PrevSibling(h); s != Null; s = doc.tree.PrevSibling(s) {
		if doc.IsElement(s) {
			return s
		}
	}
	return Null
}

// NextElementSibling returns the nearest following sibling which is an element.
func (doc *Document) NextElementSibling(h Handle) Handle {
	for s := doc.tree.NextSibling(h); s != Null; s = doc.tree.NextSibling(s) {
		if doc.IsElement(s) {
			return s
		}
	}
	return Null
}

// ElementByID finds the first element in the light tree of the document with
// a given id.
func (doc *Document) ElementByID(id string) Handle {
	found, _ := tree.NewWalker(doc.tree, doc.root).DescendantsWith(func(h Handle, n *Node) bool {
		return n.Kind == ElementNode && n.id == id
	})
	if len(found) == 0 {
		return Null
	}
	return found[0]
}

// ComputedLanguage returns the inherited content language of a node: the
// value of the nearest "lang" attribute, walking up through shadow hosts.
func (doc *Document) ComputedLanguage(h Handle) string {
	for n := h; n != Null; n = doc.ParentOrShadowHost(n) {
		if lang, ok := doc.Attribute(n, "lang"); ok && doc.IsElement(n) {
			return lang
		}
	}
	return ""
}
