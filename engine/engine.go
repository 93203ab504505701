/*
Package engine ties together distribution, selector matching, style
invalidation and style recalculation for a document with shadow trees.

An Engine owns the rule sets of a document, one per tree scope, and
receives every mutation of the document. Mutations are recorded as
pending invalidation sets and distribution flags; the work is done by
UpdateStyle, which runs the pipeline

    distribute → invalidate → recalculate.

Event paths are computed on the composed tree as it is after the last
distribution.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package engine

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shadowdom/config"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/composed"
	"github.com/npillmayer/shadowdom/dom/event"
	"github.com/npillmayer/shadowdom/dom/shadow"
	"github.com/npillmayer/shadowdom/dom/style"
	"github.com/npillmayer/shadowdom/dom/style/cssom"
	"github.com/npillmayer/shadowdom/dom/style/invalidation"
	"github.com/npillmayer/shadowdom/dom/style/matcher"
	"github.com/npillmayer/shadowdom/dom/style/ruleset"
	"github.com/npillmayer/shadowdom/dom/style/selector"
	"github.com/npillmayer/shadowdom/dom/styledtree"
)

// tracer traces with key 'shadowdom.engine'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.engine")
}

// ErrNotInDocument is returned for a stylesheet owner which is not a node
// of the engine's document.
var ErrNotInDocument = errors.New("node is not part of the document")

// Stats reports the work done by UpdateStyle.
type Stats struct {
	Distribution shadow.Stats
	Invalidation invalidation.Stats
	Recalculated int // number of elements whose style has been recomputed
}

// Engine is the entry point for styling a document with shadow trees.
type Engine struct {
	doc         *dom.Document
	opts        config.Options
	walker      *composed.Walker
	distributor *shadow.Engine
	checker     *matcher.Checker
	sets        map[dom.Handle]*ruleset.RuleSet // by tree scope; Null for the document
	scopes      []dom.Handle                    // tree scopes in order of first stylesheet
	features    *invalidation.FeatureSet
	scheduler   *invalidation.Scheduler
	analyzer    *invalidation.Analyzer
	store       *styledtree.Store
	dispatcher  *event.Dispatcher
}

// New creates an engine for a document. The whole document is marked for
// style recalculation, i.e. the first call to UpdateStyle will style every
// element.
func New(doc *dom.Document, opts config.Options) *Engine {
	walker := composed.NewWalker(doc)
	e := &Engine{
		doc:         doc,
		opts:        opts,
		walker:      walker,
		distributor: shadow.NewEngine(doc),
		checker:     matcher.New(doc, matcher.ModeStyling),
		sets:        make(map[dom.Handle]*ruleset.RuleSet),
		features:    invalidation.NewFeatureSet(),
		scheduler:   invalidation.NewScheduler(walker),
		analyzer:    invalidation.NewAnalyzer(doc),
		dispatcher:  event.NewDispatcher(walker, opts.ScopedEvents),
	}
	e.store = styledtree.NewStore(walker, e)
	e.scheduler.SetStyleRecalc(e.store)
	e.distributor.SetObserver(e.distributionChanged)
	doc.SetNeedsStyleRecalc(doc.Root(), dom.SubtreeStyleChange)
	return e
}

// Document returns the document styled by the engine.
func (e *Engine) Document() *dom.Document {
	return e.doc
}

// Walker returns the composed tree walker of the engine.
func (e *Engine) Walker() *composed.Walker {
	return e.walker
}

// Styles returns the computed styles of an element, as of the last call to
// UpdateStyle.
func (e *Engine) Styles(el dom.Handle) *style.PropertyMap {
	return e.store.Styles(el)
}

// Property returns the computed value of a property for an element,
// cascading along the composed tree.
func (e *Engine) Property(el dom.Handle, key string) style.Property {
	return e.store.Property(el, key)
}

// --- Stylesheets -----------------------------------------------------------

// AddStyleSheet adds the rules of a stylesheet. Owner is the element the
// stylesheet originates from, or Null. Rules of a stylesheet owned by an
// element of a shadow tree apply to that shadow tree only. Elements which
// may be affected by the new rules are marked for recalculation. It
// returns the number of rules added.
func (e *Engine) AddStyleSheet(sheet cssom.StyleSheet, owner dom.Handle) (int, error) {
	scope := dom.Null
	if owner != dom.Null {
		if e.doc.Node(owner) == nil {
			return 0, ErrNotInDocument
		}
		scope = e.doc.ContainingShadowRoot(owner)
	}
	rs := e.ruleSet(scope)
	before := rs.Len()
	n := rs.AddStyleSheet(sheet)
	for _, r := range rs.Rules()[before:] {
		e.features.AddSelector(r.Selector)
	}
	if n == 0 {
		return 0, nil
	}
	if e.opts.FastPath {
		res := e.analyzer.StyleSheetAdded(sheet, owner)
		tracer().Debugf("stylesheet analysis: full=%v scoped=%v ids=%v classes=%v",
			res.FullInvalidation, res.ScopedToOwner, res.IDs, res.Classes)
	} else {
		e.doc.SetNeedsStyleRecalc(e.doc.Root(), dom.SubtreeStyleChange)
	}
	tracer().Infof("added stylesheet with %d rules to scope %d", n, scope)
	return n, nil
}

func (e *Engine) ruleSet(scope dom.Handle) *ruleset.RuleSet {
	rs, ok := e.sets[scope]
	if !ok {
		rs = ruleset.New(scope)
		rs.SetMediaEvaluator(ruleset.MediaType(e.opts.Media))
		e.sets[scope] = rs
		e.scopes = append(e.scopes, scope)
	}
	return rs
}

// MatchingRules returns the rules matching an element, from all tree
// scopes which may style it. :host rules of the element's shadow trees
// come first, followed by the rules of the element's own tree scope.
// Within a rule set, rules are in bucket order; the styled tree store
// sorts them by specificity and source order.
func (e *Engine) MatchingRules(el dom.Handle) []*ruleset.Rule {
	if !e.doc.IsElement(el) {
		return nil
	}
	var host, own []*ruleset.Rule
	treeScope := e.doc.TreeScope(el)
	for _, scope := range e.scopes {
		rs := e.sets[scope]
		switch {
		case scope != dom.Null && e.doc.ShadowHost(scope) == el:
			host = append(host, rs.MatchingRules(e.checker, e.doc, el)...)
		case scope == treeScope || (scope == dom.Null && treeScope == e.doc.Root()):
			own = append(own, rs.MatchingRules(e.checker, e.doc, el)...)
		}
	}
	return append(host, own...)
}

// QuerySelectorAll returns all elements of the document, including
// elements in shadow trees, matched by a selector. Elements in shadow trees
// are matched within their own tree scope.
func (e *Engine) QuerySelectorAll(sel string) ([]dom.Handle, error) {
	list, err := selector.Compile(sel)
	if err != nil {
		return nil, err
	}
	ch := matcher.New(e.doc, matcher.ModeQuerying)
	var result []dom.Handle
	for _, el := range e.doc.ShadowIncludingElements(e.doc.Root()) {
		if ch.MatchList(list, el, e.doc.TreeScope(el)) {
			result = append(result, el)
		}
	}
	return result, nil
}

// --- Mutations -------------------------------------------------------------

// SetAttribute sets an attribute of an element.
func (e *Engine) SetAttribute(el dom.Handle, name, value string) error {
	old, _ := e.doc.Attribute(el, name)
	if err := e.doc.SetAttribute(el, name, value); err != nil {
		return err
	}
	e.attributeChanged(el, name, old, value)
	return nil
}

// RemoveAttribute removes an attribute from an element. It reports whether
// the attribute has been present.
func (e *Engine) RemoveAttribute(el dom.Handle, name string) (bool, error) {
	old, _ := e.doc.Attribute(el, name)
	removed, err := e.doc.RemoveAttribute(el, name)
	if err != nil || !removed {
		return removed, err
	}
	e.attributeChanged(el, name, old, "")
	return true, nil
}

func (e *Engine) attributeChanged(el dom.Handle, name, oldValue, newValue string) {
	if oldValue == newValue {
		return
	}
	e.distributor.DidChangeAttribute(el, name, oldValue, newValue)
	switch name {
	case "id":
		e.scheduler.ScheduleAll(e.features.ForIDChange(oldValue, newValue), el)
	case "class":
		e.scheduler.ScheduleAll(e.features.ForClassChange(oldValue, newValue), el)
	}
	e.scheduler.Schedule(e.features.ForAttribute(name), el)
}

// AppendChild appends a child to a parent node.
func (e *Engine) AppendChild(parent, child dom.Handle) error {
	if err := e.doc.AppendChild(parent, child); err != nil {
		return err
	}
	e.childrenChanged(parent, child)
	return nil
}

// InsertBefore inserts a child before a reference child of parent.
func (e *Engine) InsertBefore(parent, child, ref dom.Handle) error {
	if err := e.doc.InsertBefore(parent, child, ref); err != nil {
		return err
	}
	e.childrenChanged(parent, child)
	return nil
}

// RemoveChild removes a child from its parent.
func (e *Engine) RemoveChild(parent, child dom.Handle) error {
	if err := e.doc.RemoveChild(parent, child); err != nil {
		return err
	}
	e.childrenChanged(parent, dom.Null)
	return nil
}

// childrenChanged marks an inserted child for styling. Parents with
// children matched by structural pseudo-classes are restyled with their
// subtree.
func (e *Engine) childrenChanged(parent, inserted dom.Handle) {
	if e.doc.IsElement(inserted) {
		e.doc.SetNeedsStyleRecalc(inserted, dom.SubtreeStyleChange)
	}
	if e.doc.HasFlag(parent, dom.ChildrenAffectedByStructure) {
		e.doc.SetNeedsStyleRecalc(parent, dom.SubtreeStyleChange)
	}
}

// distributionChanged restyles nodes which changed their place in the
// composed tree, as they inherit from a new parent.
func (e *Engine) distributionChanged(ip dom.Handle, r shadow.Result) {
	for _, nodes := range [][]dom.Handle{r.Attached, r.Detached} {
		for _, n := range nodes {
			if e.doc.IsElement(n) {
				e.doc.SetNeedsStyleRecalc(n, dom.SubtreeStyleChange)
			}
		}
	}
}

// SetHovered sets the hover state of an element.
func (e *Engine) SetHovered(el dom.Handle, on bool) {
	e.setState(el, on, dom.IsHovered, dom.AffectedByHover, selector.PseudoHover, e.doc.SetHovered)
}

// SetFocused sets the focus state of an element.
func (e *Engine) SetFocused(el dom.Handle, on bool) {
	e.setState(el, on, dom.IsFocused, dom.AffectedByFocus, selector.PseudoFocus, e.doc.SetFocused)
}

// SetActive sets the active state of an element.
func (e *Engine) SetActive(el dom.Handle, on bool) {
	e.setState(el, on, dom.IsActive, dom.AffectedByActive, selector.PseudoActive, e.doc.SetActive)
}

func (e *Engine) setState(el dom.Handle, on bool, state, affected dom.Flags,
	kind selector.PseudoKind, set func(dom.Handle, bool)) {
	//
	if !e.doc.IsElement(el) || e.doc.HasFlag(el, state) == on {
		return
	}
	set(el, on)
	if e.doc.HasFlag(el, affected) {
		e.doc.SetNeedsStyleRecalc(el, dom.LocalStyleChange)
	}
	e.scheduler.Schedule(e.features.ForPseudoClass(kind), el)
}

// --- Pipeline --------------------------------------------------------------

// UpdateStyle brings the styles of the document up to date: stale
// distributions are recomputed, pending invalidation sets are evaluated,
// and every element marked for recalculation is restyled.
func (e *Engine) UpdateStyle() Stats {
	var stats Stats
	stats.Distribution = e.distributor.DistributeAll()
	stats.Invalidation = e.scheduler.Invalidate(e.doc.Root())
	stats.Recalculated = e.store.RecalcStyle(e.doc.Root())
	tracer().Infof("update style: %d hosts distributed, %d nodes dirtied, %d elements restyled",
		stats.Distribution.Hosts, stats.Invalidation.Dirtied, stats.Recalculated)
	return stats
}

// ComposedPath computes the event path for an event fired at a node.
func (e *Engine) ComposedPath(node dom.Handle, ev *event.Event) *event.Path {
	return e.dispatcher.Path(node, ev)
}

var _ styledtree.RuleSource = &Engine{}
