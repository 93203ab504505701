package dom

import (
	"github.com/npillmayer/shadowdom/tree"
)

// NodeIsText is a predicate to match text-nodes of a DOM.
// It is intended to be used in a tree.Walker.
var NodeIsText tree.Predicate[*Node] = func(h Handle, n *Node) bool {
	return n != nil && n.Kind == TextNode
}

// NodeIsElement is a predicate to match element nodes of a DOM.
// It is intended to be used in a tree.Walker.
var NodeIsElement tree.Predicate[*Node] = func(h Handle, n *Node) bool {
	return n != nil && n.Kind == ElementNode
}

// NodeIsShadowHost is a predicate to match elements carrying shadow roots.
// It is intended to be used in a tree.Walker.
var NodeIsShadowHost tree.Predicate[*Node] = func(h Handle, n *Node) bool {
	return n != nil && n.host != nil && len(n.host.roots) > 0
}

// Elements returns all elements of the tree rooted at h, excluding h and
// not descending into shadow trees, in document order.
func (doc *Document) Elements(h Handle) []Handle {
	elems, _ := tree.NewWalker(doc.tree, h).DescendantsWith(NodeIsElement)
	return elems
}

// ShadowIncludingElements returns all elements of the tree rooted at h and
// of all shadow trees attached within it, in shadow-including tree order.
func (doc *Document) ShadowIncludingElements(h Handle) []Handle {
	var elems []Handle
	seen := map[Handle]bool{}
	var walk func(Handle)
	walk = func(n Handle) {
		if seen[n] {
			tracer().Errorf("shadow-including walk revisits node %d", n)
			return
		}
		seen[n] = true
		if doc.IsElement(n) && n != h {
			elems = append(elems, n)
		}
		for _, r := range doc.ShadowRoots(n) {
			walk(r)
		}
		for c := doc.FirstChild(n); c != Null; c = doc.NextSibling(c) {
			walk(c)
		}
	}
	walk(h)
	return elems
}
