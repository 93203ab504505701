/*
Package composed navigates the composed tree of a document.

The composed tree is the tree seen after content distribution has been
applied: a shadow host's children are the top-level nodes of its youngest
shadow tree; an active insertion point is replaced by the nodes distributed
to it; light children of a host which are not distributed to any insertion
point are not part of the composed tree at all.

A Walker is a read-only projection. It never modifies distribution state
and may be called any number of times, in any order. Distributions are
expected to be up to date, i.e. the distribution engine has to run before
the walker is used.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package composed

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shadowdom/dom"
)

// tracer traces with key 'shadowdom.composed'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.composed")
}

// Walker navigates the composed tree of a document.
type Walker struct {
	doc *dom.Document
}

// NewWalker creates a composed tree walker for a document.
func NewWalker(doc *dom.Document) *Walker {
	return &Walker{doc: doc}
}

// Document returns the document the walker navigates.
func (w *Walker) Document() *dom.Document {
	return w.doc
}

type direction bool

const (
	forward  direction = true
	backward direction = false
)

// visited guards loops against malformed shadow/insertion point cycles.
type visited map[dom.Handle]struct{}

func (v visited) enter(h dom.Handle) bool {
	if _, ok := v[h]; ok {
		tracer().Errorf("composed tree: cycle at node %d, stopping", h)
		return false
	}
	v[h] = struct{}{}
	return true
}

// FirstChild returns the first child of n in the composed tree, or Null.
func (w *Walker) FirstChild(n dom.Handle) dom.Handle {
	return w.child(n, forward)
}

// LastChild returns the last child of n in the composed tree, or Null.
func (w *Walker) LastChild(n dom.Handle) dom.Handle {
	return w.child(n, backward)
}

func (w *Walker) child(n dom.Handle, dir direction) dom.Handle {
	doc := w.doc
	if doc.IsActiveInsertionPoint(n) {
		return dom.Null // insertion points are replaced by their distribution
	}
	parent := n
	if root := doc.YoungestShadowRoot(n); root != dom.Null {
		parent = root
	}
	if dir == forward {
		return w.resolve(doc.FirstChild(parent), dir, visited{})
	}
	return w.resolve(doc.LastChild(parent), dir, visited{})
}

// resolve substitutes active insertion points by their distributed nodes.
// Insertion points without distribution are skipped.
func (w *Walker) resolve(c dom.Handle, dir direction, seen visited) dom.Handle {
	doc := w.doc
	for c != dom.Null {
		if !seen.enter(c) {
			return dom.Null
		}
		if !doc.IsActiveInsertionPoint(c) {
			return c
		}
		d := doc.InsertionPoint(c).Distribution()
		switch {
		case !d.IsEmpty() && dir == forward:
			c = d.First()
		case !d.IsEmpty():
			c = d.Last()
		case dir == forward:
			c = doc.NextSibling(c)
		default:
			c = doc.PrevSibling(c)
		}
	}
	return dom.Null
}

// NextSibling returns the next sibling of n in the composed tree, or Null.
// For distributed nodes, the sibling is taken from the distribution of the
// insertion point the node has finally been distributed to; after its last
// node, navigation continues after the insertion point.
func (w *Walker) NextSibling(n dom.Handle) dom.Handle {
	return w.sibling(n, forward)
}

// PreviousSibling returns the previous sibling of n in the composed tree,
// or Null.
func (w *Walker) PreviousSibling(n dom.Handle) dom.Handle {
	return w.sibling(n, backward)
}

func (w *Walker) sibling(n dom.Handle, dir direction) dom.Handle {
	doc := w.doc
	seen := visited{}
	for cur := n; cur != dom.Null; {
		if !seen.enter(cur) {
			return dom.Null
		}
		if ip := doc.FinalDestinationInsertionPoint(cur); ip != dom.Null {
			d := doc.InsertionPoint(ip).Distribution()
			var s dom.Handle
			if dir == forward {
				s = d.Next(cur)
			} else {
				s = d.Previous(cur)
			}
			if s != dom.Null {
				return w.resolve(s, dir, seen)
			}
			cur = ip // continue behind the insertion point
			continue
		}
		if !w.isComposed(cur) {
			return dom.Null
		}
		if dir == forward {
			return w.resolve(doc.NextSibling(cur), dir, seen)
		}
		return w.resolve(doc.PrevSibling(cur), dir, seen)
	}
	return dom.Null
}

// isComposed is false for light children of hosts and for fallback content,
// if these have not been distributed.
func (w *Walker) isComposed(n dom.Handle) bool {
	p := w.doc.Parent(n)
	if p == dom.Null {
		return true
	}
	if w.doc.IsShadowHost(p) || w.doc.IsActiveInsertionPoint(p) {
		return len(w.doc.DestinationInsertionPoints(n)) > 0
	}
	return true
}

// Parent returns the parent of n in the composed tree, or Null. Distributed
// nodes have the parent of the insertion point they have finally been
// distributed to. Top-level nodes of a youngest shadow tree, and the shadow
// root itself, have the host as their parent.
func (w *Walker) Parent(n dom.Handle) dom.Handle {
	doc := w.doc
	seen := visited{}
	for cur := n; cur != dom.Null; {
		if !seen.enter(cur) {
			return dom.Null
		}
		if ip := doc.FinalDestinationInsertionPoint(cur); ip != dom.Null {
			cur = ip
			continue
		}
		p := doc.Parent(cur)
		switch {
		case p == dom.Null:
			return doc.ShadowHost(cur) // Null for the document node
		case doc.IsShadowRoot(p):
			host := doc.ShadowHost(p)
			if doc.YoungestShadowRoot(host) != p {
				return dom.Null // older shadow trees are not composed
			}
			return host
		case doc.IsShadowHost(p) || doc.IsActiveInsertionPoint(p):
			return dom.Null // neither distributed nor fallback
		}
		return p
	}
	return dom.Null
}

// ParentElement is like Parent, but returns Null if the composed parent is
// not an element.
func (w *Walker) ParentElement(n dom.Handle) dom.Handle {
	if p := w.Parent(n); w.doc.IsElement(p) {
		return p
	}
	return dom.Null
}

// Children returns the children of n in the composed tree.
func (w *Walker) Children(n dom.Handle) []dom.Handle {
	var children []dom.Handle
	seen := visited{}
	for c := w.FirstChild(n); c != dom.Null; c = w.NextSibling(c) {
		if !seen.enter(c) {
			break
		}
		children = append(children, c)
	}
	return children
}

// Visitor is called for every node of a traversal. Returning false
// prevents the traversal from descending into the node's children.
type Visitor func(n dom.Handle, depth int) bool

// Traverse visits the composed tree below and including root in pre-order.
func (w *Walker) Traverse(root dom.Handle, visit Visitor) {
	w.traverse(root, 0, visit, visited{})
}

func (w *Walker) traverse(n dom.Handle, depth int, visit Visitor, seen visited) {
	if !seen.enter(n) || !visit(n, depth) {
		return
	}
	for c := w.FirstChild(n); c != dom.Null; c = w.NextSibling(c) {
		w.traverse(c, depth+1, visit, seen)
	}
}

// ShadowIncludingChildren returns the shadow roots of n, youngest first,
// followed by the light children of n. This is not the composed tree, but
// the tree of trees: every node of the document is reachable from the
// document node this way.
func (w *Walker) ShadowIncludingChildren(n dom.Handle) []dom.Handle {
	roots := w.doc.ShadowRoots(n)
	children := make([]dom.Handle, 0, len(roots)+w.doc.ChildCount(n))
	children = append(children, roots...)
	return append(children, w.doc.Children(n)...)
}
