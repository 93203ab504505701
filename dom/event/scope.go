package event

import (
	"fmt"

	"github.com/npillmayer/shadowdom/dom"
)

// TreeScopeContext holds the adjusted targets of an event for one tree
// scope of a path.
type TreeScopeContext struct {
	scope         dom.Handle
	target        dom.Handle
	relatedTarget dom.Handle
	parent        *TreeScopeContext
	children      []*TreeScopeContext
	pre, post     int
}

// Scope returns the root of the tree scope: the document node or a
// shadow root.
func (c *TreeScopeContext) Scope() dom.Handle {
	return c.scope
}

// Target returns the adjusted target for nodes of this scope.
func (c *TreeScopeContext) Target() dom.Handle {
	return c.target
}

// RelatedTarget returns the adjusted related target for nodes of this
// scope, or Null.
func (c *TreeScopeContext) RelatedTarget() dom.Handle {
	return c.relatedTarget
}

// Parent returns the context of the enclosing tree scope, or nil.
func (c *TreeScopeContext) Parent() *TreeScopeContext {
	return c.parent
}

// IsInclusiveAncestorOf is a predicate: does c enclose other, or is c
// identical to other?
func (c *TreeScopeContext) IsInclusiveAncestorOf(other *TreeScopeContext) bool {
	return c.pre <= other.pre && other.post <= c.post
}

func (c *TreeScopeContext) String() string {
	return fmt.Sprintf("scope(%d)[%d,%d]", c.scope, c.pre, c.post)
}

// number assigns pre- and post-order numbers to c and its children,
// starting with n. It returns the post-order number of c.
func (c *TreeScopeContext) number(n int) int {
	c.pre = n
	for _, ch := range c.children {
		n = ch.number(n + 1)
	}
	c.post = n + 1
	return c.post
}

// parentScope returns the scope enclosing a tree scope. For a shadow root
// this is the next older shadow root of the same host, if any, and the
// scope of the host otherwise.
func parentScope(doc *dom.Document, scope dom.Handle) dom.Handle {
	if !doc.IsShadowRoot(scope) {
		return dom.Null
	}
	if older := doc.OlderShadowRoot(scope); older != dom.Null {
		return older
	}
	return doc.TreeScope(doc.ShadowHost(scope))
}
