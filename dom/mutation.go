package dom

import (
	"errors"

	"github.com/npillmayer/shadowdom/tree"
)

// ErrNotInsertable is returned when trying to insert a document node or a
// shadow root as a child.
var ErrNotInsertable = errors.New("document and shadow root nodes cannot be inserted")

// ErrNoChildren is returned when trying to insert a child into a text or
// comment node.
var ErrNoChildren = errors.New("text and comment nodes cannot have children")

// AppendChild appends an isolated node as the last child of parent.
func (doc *Document) AppendChild(parent, child Handle) error {
	return doc.InsertBefore(parent, child, Null)
}

// InsertBefore inserts an isolated node as a child of parent, before ref.
// A Null ref appends.
//
// Inserting a node into a shadow host or into a shadow tree flags the
// affected distributions as stale.
func (doc *Document) InsertBefore(parent, child, ref Handle) error {
	if err := doc.checkInsertion(parent, child); err != nil {
		return err
	}
	if err := doc.tree.InsertBefore(parent, child, ref); err != nil {
		return err
	}
	doc.childrenChanged(parent, child)
	return nil
}

// RemoveChild isolates a child node from its parent. The removed node keeps
// its subtree and may be inserted again.
func (doc *Document) RemoveChild(parent, child Handle) error {
	if doc.tree.Parent(child) != parent || parent == Null {
		return tree.ErrNotAChild
	}
	doc.childrenChanged(parent, child) // while child is still connected
	doc.tree.Isolate(child)
	doc.scopeChanged(parent)
	return nil
}

func (doc *Document) checkInsertion(parent, child Handle) error {
	p, c := doc.Node(parent), doc.Node(child)
	if p == nil || c == nil {
		return ErrInvalidHandle
	}
	if c.Kind == DocumentNode || c.Kind == ShadowRootNode {
		return ErrNotInsertable
	}
	if p.Kind == TextNode || p.Kind == CommentNode {
		return ErrNoChildren
	}
	if !doc.tree.IsAncestorOf(child, parent) && doc.IsShadowIncludingInclusiveAncestor(child, parent) {
		return ErrShadowHostCycle
	}
	return nil
}

// childrenChanged reacts to an insertion or removal of child below parent.
func (doc *Document) childrenChanged(parent, child Handle) {
	if doc.IsShadowHost(parent) {
		doc.SetNeedsDistributionRecalc(parent)
	}
	doc.scopeChanged(parent)
	host := doc.ScopeHost(parent)
	if host == Null {
		return
	}
	// within a shadow tree: insertion points or hosts inside the changed
	// subtree, or fallback content of an insertion point
	touchesInsertionPoints := doc.IsInsertionPoint(parent)
	touchesHosts := false
	_ = tree.NewWalker(doc.tree, child).TopDown(func(h Handle, _ Handle, _ int) (bool, error) {
		touchesInsertionPoints = touchesInsertionPoints || doc.IsInsertionPoint(h)
		touchesHosts = touchesHosts || doc.IsShadowHost(h)
		return true, nil
	})
	if touchesInsertionPoints {
		tracer().Debugf("insertion points of host %d changed", host)
		doc.SetNeedsDistributionRecalc(host)
		doc.WillAffectSelector(parent)
	}
	if touchesHosts {
		doc.WillAffectSelector(parent)
	}
}

// SetAttribute sets the value of an attribute of an element.
func (doc *Document) SetAttribute(h Handle, key, value string) error {
	n := doc.Node(h)
	if n == nil {
		return ErrInvalidHandle
	}
	if n.Kind != ElementNode {
		return ErrNotAnElement
	}
	doc.setAttribute(n, key, value)
	return nil
}

// RemoveAttribute removes an attribute from an element. It reports whether
// the attribute has been present.
func (doc *Document) RemoveAttribute(h Handle, key string) (bool, error) {
	n := doc.Node(h)
	if n == nil {
		return false, ErrInvalidHandle
	}
	if n.Kind != ElementNode {
		return false, ErrNotAnElement
	}
	return doc.removeAttribute(n, key), nil
}
