/*
Package shadow implements content distribution for shadow hosts.

A shadow host's light children are distributed to the active insertion
points of the host's youngest shadow tree. Distribution starts with a pool
made of the host's children, where a child which is itself an active
insertion point (of an enclosing shadow tree) contributes the nodes
distributed to it instead of itself. Insertion points then take nodes from
the pool, in tree order: a content insertion point without filter takes
everything left, a filtered one takes the elements matching its filter, and
a shadow insertion point takes everything left. Pool consumption is
destructive, so no node is ever distributed to two insertion points of the
same tree. An insertion point which receives nothing renders its fallback
content, i.e. its own children.

A new distribution is compared to the previous one. Only the nodes in the
changed region are reported as attached and detached.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package shadow

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/style/matcher"
)

// tracer traces with key 'shadowdom.shadow'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.shadow")
}

// Result reports the nodes whose composed position changed during
// redistribution of one insertion point.
type Result struct {
	Attached []dom.Handle // nodes newly placed
	Detached []dom.Handle // nodes removed from their previous place
}

// Operations returns the number of attach and detach operations.
func (r Result) Operations() int {
	return len(r.Attached) + len(r.Detached)
}

// Stats summarizes distribution passes of an engine.
type Stats struct {
	Hosts    int // number of hosts distributed
	Attached int
	Detached int
}

// Engine distributes light children of shadow hosts.
type Engine struct {
	doc     *dom.Document
	checker *matcher.Checker
	busy    map[dom.Handle]bool // hosts currently being distributed
	stats   Stats
	notify  Observer
}

// Observer is told about every redistributed insertion point whose
// distribution changed.
type Observer func(ip dom.Handle, r Result)

// NewEngine creates a distribution engine for a document.
func NewEngine(doc *dom.Document) *Engine {
	return &Engine{
		doc:     doc,
		checker: matcher.New(doc, matcher.ModeQuerying),
		busy:    make(map[dom.Handle]bool),
	}
}

// SetObserver sets a receiver for distribution changes. It may be nil.
func (e *Engine) SetObserver(o Observer) {
	e.notify = o
}

// Stats returns the accumulated statistics of all passes and resets them.
func (e *Engine) Stats() Stats {
	s := e.stats
	e.stats = Stats{}
	return s
}

// Distribute (re-)distributes the light children of a host, whether or not
// the host needs it. It returns a result for every active insertion point
// of the host's youngest shadow tree.
func (e *Engine) Distribute(host dom.Handle) map[dom.Handle]Result {
	doc := e.doc
	root := doc.YoungestShadowRoot(host)
	if root == dom.Null {
		return nil
	}
	if e.busy[host] {
		tracer().Errorf("host %d is already being distributed, stopping", host)
		return nil
	}
	e.busy[host] = true
	defer delete(e.busy, host)
	//
	pool := e.pool(host)
	consumed := make([]bool, len(pool))
	doc.ClearAssignments(host)
	results := make(map[dom.Handle]Result)
	for _, iph := range doc.ActiveInsertionPoints(root) {
		ip := doc.InsertionPoint(iph)
		var nodes []dom.Handle
		for i, n := range pool {
			if !consumed[i] && e.accepts(ip, n) {
				consumed[i] = true
				nodes = append(nodes, n)
			}
		}
		if len(nodes) == 0 { // fallback content
			nodes = doc.Children(iph)
		}
		d := dom.NewDistribution(nodes)
		r := Diff(ip.Distribution(), &d)
		ip.SetDistribution(d)
		for _, n := range nodes {
			doc.AssignToInsertionPoint(host, n, iph)
		}
		results[iph] = r
		if e.notify != nil && r.Operations() > 0 {
			e.notify(iph, r)
		}
		e.stats.Attached += len(r.Attached)
		e.stats.Detached += len(r.Detached)
		// hosts fed by this insertion point have to follow
		if p := doc.Parent(iph); doc.IsShadowHost(p) {
			doc.SetNeedsDistributionRecalc(p)
		}
	}
	doc.ClearNeedsDistributionRecalc(host)
	e.stats.Hosts++
	tracer().Debugf("distributed %d pool nodes of host %d", len(pool), host)
	return results
}

// pool collects the distribution candidates of a host: its children, with
// active insertion points replaced by their current distribution.
func (e *Engine) pool(host dom.Handle) []dom.Handle {
	doc := e.doc
	var pool []dom.Handle
	seen := make(map[dom.Handle]bool)
	var add func(n dom.Handle)
	add = func(n dom.Handle) {
		if seen[n] {
			tracer().Errorf("node %d reached twice while building pool of host %d", n, host)
			return
		}
		seen[n] = true
		if doc.IsActiveInsertionPoint(n) {
			for _, d := range doc.InsertionPoint(n).Distribution().Nodes() {
				add(d)
			}
			return
		}
		pool = append(pool, n)
	}
	for c := doc.FirstChild(host); c != dom.Null; c = doc.NextSibling(c) {
		add(c)
	}
	return pool
}

// accepts decides if an insertion point takes a pool node. Filters are
// matched against candidates within the candidate's own tree scope.
func (e *Engine) accepts(ip *dom.InsertionPoint, n dom.Handle) bool {
	if ip.Kind() == dom.ShadowInsertionPoint {
		return true
	}
	if !ip.IsValid() {
		return false
	}
	if ip.Filter() == nil {
		return true
	}
	if !e.doc.IsElement(n) {
		return false
	}
	return e.checker.MatchList(ip.Filter(), n, e.doc.TreeScope(n))
}

// DistributeIfNeeded distributes a host if its distribution is stale.
// It reports whether a distribution took place.
func (e *Engine) DistributeIfNeeded(host dom.Handle) bool {
	if !e.doc.NeedsDistributionRecalc(host) {
		return false
	}
	e.Distribute(host)
	return true
}

// DistributeAll distributes every host with a stale distribution. Hosts are
// processed top-down, following shadow roots, so that enclosing hosts are
// distributed before the hosts they feed.
func (e *Engine) DistributeAll() Stats {
	doc := e.doc
	seen := make(map[dom.Handle]bool)
	var visit func(n dom.Handle)
	visit = func(n dom.Handle) {
		if seen[n] {
			tracer().Errorf("node %d visited twice during distribution, stopping", n)
			return
		}
		seen[n] = true
		e.DistributeIfNeeded(n)
		if !doc.HasFlag(n, dom.ChildNeedsDistributionRecalc) {
			return
		}
		for _, root := range doc.ShadowRoots(n) {
			visit(root)
		}
		for c := doc.FirstChild(n); c != dom.Null; c = doc.NextSibling(c) {
			visit(c)
		}
		doc.ClearFlag(n, dom.ChildNeedsDistributionRecalc)
	}
	visit(doc.Root())
	s := e.Stats()
	if s.Hosts > 0 {
		tracer().Infof("distribution: %d hosts, %d attached, %d detached", s.Hosts, s.Attached, s.Detached)
	}
	return s
}

// Diff compares two distributions. Entries of the common prefix and of the
// common suffix are left alone; the remaining entries of the old
// distribution are detached, the remaining entries of the new one are
// attached.
func Diff(prev, next *dom.Distribution) Result {
	var r Result
	lo, ln := prev.Len(), next.Len()
	pre := 0
	for pre < lo && pre < ln && prev.At(pre) == next.At(pre) {
		pre++
	}
	suf := 0
	for suf < lo-pre && suf < ln-pre && prev.At(lo-1-suf) == next.At(ln-1-suf) {
		suf++
	}
	for i := pre; i < lo-suf; i++ {
		r.Detached = append(r.Detached, prev.At(i))
	}
	for i := pre; i < ln-suf; i++ {
		r.Attached = append(r.Attached, next.At(i))
	}
	return r
}
