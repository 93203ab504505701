package event

import (
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/composed"
)

// Event is the part of a DOM event relevant for computing its path.
type Event struct {
	Type          string
	RelatedTarget dom.Handle // e.g. the node left by the pointer for "mouseover"; may be Null
}

// DefaultScopedEvents lists the event types which do not leave the shadow
// tree of their target.
var DefaultScopedEvents = []string{
	"abort", "change", "error", "load", "reset", "resize", "scroll", "select", "selectstart",
}

// PathEntry is a node on an event path, together with the targets the
// node sees.
type PathEntry struct {
	Node          dom.Handle
	Target        dom.Handle
	RelatedTarget dom.Handle
	Context       *TreeScopeContext
}

// Path is the sequence of nodes an event travels, from the target upwards.
type Path struct {
	target   dom.Handle
	entries  []PathEntry
	contexts []*TreeScopeContext
	root     *TreeScopeContext
}

// Len returns the length of the path.
func (p *Path) Len() int {
	return len(p.entries)
}

// At returns entry i of the path.
func (p *Path) At(i int) PathEntry {
	return p.entries[i]
}

// Entries returns all entries of the path.
func (p *Path) Entries() []PathEntry {
	return p.entries
}

// Nodes returns the nodes of the path.
func (p *Path) Nodes() []dom.Handle {
	nodes := make([]dom.Handle, len(p.entries))
	for i, e := range p.entries {
		nodes[i] = e.Node
	}
	return nodes
}

// Contexts returns the tree scope contexts of the path, in order of
// creation.
func (p *Path) Contexts() []*TreeScopeContext {
	return p.contexts
}

// ComposedPath returns the path as seen by the node of entry i: all nodes
// of the path whose tree scope encloses (or is) the scope of entry i.
func (p *Path) ComposedPath(i int) []dom.Handle {
	if i < 0 || i >= len(p.entries) {
		return nil
	}
	viewer := p.entries[i].Context
	var nodes []dom.Handle
	for _, e := range p.entries {
		if e.Context.IsInclusiveAncestorOf(viewer) {
			nodes = append(nodes, e.Node)
		}
	}
	return nodes
}

// Dispatcher computes event paths for a document.
type Dispatcher struct {
	walker *composed.Walker
	doc    *dom.Document
	scoped map[string]struct{}
}

// NewDispatcher creates a dispatcher. scopedEvents lists the event types
// which stop at the shadow root of their target's tree; if it is nil,
// DefaultScopedEvents is used.
func NewDispatcher(walker *composed.Walker, scopedEvents []string) *Dispatcher {
	if scopedEvents == nil {
		scopedEvents = DefaultScopedEvents
	}
	d := &Dispatcher{
		walker: walker,
		doc:    walker.Document(),
		scoped: make(map[string]struct{}, len(scopedEvents)),
	}
	for _, t := range scopedEvents {
		d.scoped[t] = struct{}{}
	}
	return d
}

// NewPath computes the path of an event dispatched to node, using the
// default list of scoped events. ev may be nil.
func NewPath(walker *composed.Walker, node dom.Handle, ev *Event) *Path {
	return NewDispatcher(walker, nil).Path(node, ev)
}

// IsScoped is a predicate: does an event type stop at shadow roots?
func (d *Dispatcher) IsScoped(eventType string) bool {
	_, ok := d.scoped[eventType]
	return ok
}

// Path computes the path of an event dispatched to node. ev may be nil.
func (d *Dispatcher) Path(node dom.Handle, ev *Event) *Path {
	p := &Path{target: node}
	if d.doc.Node(node) == nil {
		return p
	}
	d.collect(p, node, ev)
	d.adjustTargets(p)
	if ev != nil && ev.RelatedTarget != dom.Null {
		d.adjustRelatedTargets(p, ev.RelatedTarget)
	}
	tracer().Debugf("event path of node %d has %d entries", node, len(p.entries))
	return p
}

func (d *Dispatcher) collect(p *Path, node dom.Handle, ev *Event) {
	doc := d.doc
	seen := make(map[dom.Handle]bool)
	add := func(n dom.Handle) bool {
		if seen[n] {
			tracer().Errorf("event path reached node %d twice, stopping", n)
			return false
		}
		seen[n] = true
		p.entries = append(p.entries, PathEntry{Node: n})
		return true
	}
	add(node)
	for cur := node; cur != dom.Null; {
		if ips := doc.DestinationInsertionPoints(cur); len(ips) > 0 {
			for _, ip := range ips {
				if !add(ip) {
					return
				}
			}
			cur = ips[len(ips)-1]
			continue
		}
		if doc.IsShadowRoot(cur) {
			if ev != nil && d.stopsAt(ev, cur, node) {
				return
			}
			cur = d.walker.Parent(cur) // the host
		} else {
			cur = doc.Parent(cur)
		}
		if cur != dom.Null && !add(cur) {
			return
		}
	}
}

// stopsAt is true if a scoped event must not leave the shadow tree of its
// target at root.
func (d *Dispatcher) stopsAt(ev *Event, root, target dom.Handle) bool {
	return d.IsScoped(ev.Type) && d.doc.ScopeHost(target) == d.doc.ShadowHost(root)
}

// adjustTargets creates a context for every tree scope of the path.
// A scope sees the target of its enclosing scope, if that scope has seen
// the target already; otherwise it sees the first node of the path which
// belongs to it.
func (d *Dispatcher) adjustTargets(p *Path) {
	doc := d.doc
	contexts := make(map[dom.Handle]*TreeScopeContext)
	var ensure func(node, scope dom.Handle) *TreeScopeContext
	ensure = func(node, scope dom.Handle) *TreeScopeContext {
		if scope == dom.Null {
			return nil
		}
		c, ok := contexts[scope]
		if !ok {
			c = &TreeScopeContext{scope: scope}
			contexts[scope] = c
			p.contexts = append(p.contexts, c)
			if c.parent = ensure(dom.Null, parentScope(doc, scope)); c.parent != nil {
				c.parent.children = append(c.parent.children, c)
			}
			if c.parent != nil && c.parent.target != dom.Null {
				c.target = c.parent.target
			} else {
				c.target = node
			}
		} else if c.target == dom.Null {
			c.target = node
		}
		return c
	}
	for i := range p.entries {
		e := &p.entries[i]
		e.Context = ensure(e.Node, doc.TreeScope(e.Node))
		e.Target = e.Context.target
	}
	for _, c := range p.contexts {
		if c.parent == nil {
			p.root = c
			c.number(0)
		}
	}
}

// adjustRelatedTargets computes the related target every scope sees, by
// looking up the nearest enclosing scope on the related target's own path.
// The path is cut off at the first node seeing identical targets.
func (d *Dispatcher) adjustRelatedTargets(p *Path, related dom.Handle) {
	doc := d.doc
	if doc.Node(related) == nil || !d.connected(p.target) || !d.connected(related) {
		return
	}
	relatedPath := d.Path(related, nil)
	targets := make(map[dom.Handle]dom.Handle)
	for _, c := range relatedPath.contexts {
		if c.target != dom.Null {
			targets[c.scope] = c.target
		}
	}
	for _, c := range p.contexts {
		var visited []dom.Handle
		for s := c.scope; s != dom.Null; s = parentScope(doc, s) {
			visited = append(visited, s)
			if t, ok := targets[s]; ok {
				c.relatedTarget = t
				break
			}
		}
		for _, s := range visited {
			targets[s] = c.relatedTarget
		}
	}
	for i := range p.entries {
		p.entries[i].RelatedTarget = p.entries[i].Context.relatedTarget
	}
	d.shrink(p, related)
}

func (d *Dispatcher) shrink(p *Path, related dom.Handle) {
	for i, e := range p.entries {
		if p.target == related {
			if e.Node == d.doc.TreeScope(p.target) {
				p.entries = p.entries[:i+1]
				return
			}
		} else if e.Target == e.RelatedTarget {
			tracer().Debugf("event path cut off at node %d", e.Node)
			p.entries = p.entries[:i]
			return
		}
	}
}

// connected is true for nodes whose chain of tree scopes ends at the
// document node.
func (d *Dispatcher) connected(n dom.Handle) bool {
	doc := d.doc
	scope := doc.TreeScope(n)
	for seen := 0; doc.IsShadowRoot(scope) && seen < doc.Size(); seen++ {
		scope = doc.TreeScope(doc.ShadowHost(scope))
	}
	return scope == doc.Root()
}
