/*
Package matcher tests compiled selectors against elements of a document.

Matching happens relative to a scope, i.e. the root of a tree (the document
node or a shadow root). Rules of a stylesheet living in a shadow tree are
matched with the shadow root as their scope. A selector matches an element
only if the whole chain matches within that scope; the single exception is
the shadow host of the scope, which is reachable by compounds containing
:host.

A Checker in styling mode records which dynamic and structural
pseudo-classes it had to consult, by setting "affected by" flags on the
document nodes. A Checker in querying mode has no side effects.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package matcher

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/style/selector"
)

// tracer traces with key 'shadowdom.matcher'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.matcher")
}

// Mode tells if a Checker records affected-by flags.
type Mode uint8

// Modes of operation.
const (
	ModeStyling  Mode = iota // record affected-by flags on elements
	ModeQuerying             // no side effects
)

// Checker matches selectors against elements of a document.
type Checker struct {
	doc  *dom.Document
	mode Mode
}

// New creates a Checker for a document.
func New(doc *dom.Document, mode Mode) *Checker {
	return &Checker{doc: doc, mode: mode}
}

// MatchList returns true if any alternative of list matches el within scope.
func (ch *Checker) MatchList(list *selector.List, el, scope dom.Handle) bool {
	if list == nil {
		return false
	}
	for _, alt := range list.Alternatives {
		if ch.Match(alt, el, scope) {
			return true
		}
	}
	return false
}

// Match tests a complex selector against an element. Scope is the root of
// the tree the selector has been declared in; Null denotes the document.
func (ch *Checker) Match(sel *selector.Complex, el, scope dom.Handle) bool {
	if sel == nil || len(sel.Compounds) == 0 || !ch.doc.IsElement(el) {
		return false
	}
	if scope == dom.Null {
		scope = ch.doc.Root()
	}
	last, ok := ch.matchFrom(sel, len(sel.Compounds)-1, el, scope)
	if !ok {
		return false
	}
	if ch.doc.TreeScope(last) == scope || last == ch.doc.ShadowHost(scope) {
		return true
	}
	tracer().Debugf("selector %s escapes its scope at node %d", sel, last)
	return false
}

// matchFrom matches compounds [0…i] with compound i anchored at el. It
// returns the element matched by the leftmost compound.
func (ch *Checker) matchFrom(sel *selector.Complex, i int, el, scope dom.Handle) (dom.Handle, bool) {
	cmp := sel.Compounds[i]
	if !ch.matchCompound(cmp, el, scope) {
		return dom.Null, false
	}
	if i == 0 {
		return el, true
	}
	switch cmp.Combinator {
	case selector.Child:
		p := ch.parentForMatching(el, scope)
		if p == dom.Null {
			return dom.Null, false
		}
		return ch.matchFrom(sel, i-1, p, scope)
	default: // descendant
		for p := ch.parentForMatching(el, scope); p != dom.Null; p = ch.parentForMatching(p, scope) {
			if last, ok := ch.matchFrom(sel, i-1, p, scope); ok {
				return last, true
			}
		}
	}
	return dom.Null, false
}

// parentForMatching returns the parent element of el. From the top level of
// the scope's shadow tree it crosses over to the shadow host, but never
// beyond it.
func (ch *Checker) parentForMatching(el, scope dom.Handle) dom.Handle {
	host := ch.doc.ShadowHost(scope)
	if el == host && host != dom.Null {
		return dom.Null
	}
	p := ch.doc.Parent(el)
	if ch.doc.IsElement(p) {
		return p
	}
	if p == scope && host != dom.Null {
		return host
	}
	return dom.Null
}

func (ch *Checker) matchCompound(cmp selector.Compound, el, scope dom.Handle) bool {
	if host := ch.doc.ShadowHost(scope); host != dom.Null && el == host {
		// from inside a shadow tree, the host is matched by :host only
		if _, ok := cmp.Host(); !ok {
			return false
		}
	}
	for _, s := range cmp.Simples {
		if !ch.matchSimple(s, el, scope) {
			return false
		}
	}
	return true
}

func (ch *Checker) matchSimple(s selector.Simple, el, scope dom.Handle) bool {
	doc := ch.doc
	switch x := s.(type) {
	case selector.Universal:
		return true
	case selector.Tag:
		return doc.TagName(el) == x.Name
	case selector.ID:
		return x.Name != "" && doc.ID(el) == x.Name
	case selector.Class:
		return doc.HasClass(el, x.Name)
	case selector.Attribute:
		return ch.matchAttribute(x, el)
	case selector.PseudoClass:
		return ch.matchPseudo(x, el, scope)
	}
	return false
}

func (ch *Checker) matchAttribute(a selector.Attribute, el dom.Handle) bool {
	v, ok := ch.doc.Attribute(el, a.Name)
	if !ok {
		return false
	}
	want := a.Value
	if a.CaseInsensitive {
		v, want = strings.ToLower(v), strings.ToLower(want)
	}
	switch a.Op {
	case selector.AttrExists:
		return true
	case selector.AttrEquals:
		return v == want
	case selector.AttrIncludes:
		if want == "" || strings.ContainsAny(want, " \t\n\r\f") {
			return false
		}
		for _, f := range strings.Fields(v) {
			if f == want {
				return true
			}
		}
		return false
	case selector.AttrContains:
		return want != "" && strings.Contains(v, want)
	case selector.AttrPrefix:
		return want != "" && strings.HasPrefix(v, want)
	case selector.AttrSuffix:
		return want != "" && strings.HasSuffix(v, want)
	case selector.AttrDashMatch:
		return v == want || strings.HasPrefix(v, want+"-")
	}
	return false
}

func (ch *Checker) matchPseudo(p selector.PseudoClass, el, scope dom.Handle) bool {
	doc := ch.doc
	switch p.Kind {
	case selector.PseudoHover:
		ch.record(el, dom.AffectedByHover)
		return doc.HasFlag(el, dom.IsHovered)
	case selector.PseudoActive:
		ch.record(el, dom.AffectedByActive)
		return doc.HasFlag(el, dom.IsActive)
	case selector.PseudoFocus:
		ch.record(el, dom.AffectedByFocus)
		return doc.HasFlag(el, dom.IsFocused)
	case selector.PseudoLang:
		return MatchesLanguage(doc.ComputedLanguage(el), p.Arg)
	case selector.PseudoHost:
		return ch.matchHost(p, el, scope)
	case selector.PseudoNot:
		return !ch.MatchList(p.List, el, scope)
	case selector.PseudoFirstChild, selector.PseudoLastChild, selector.PseudoOnlyChild:
		parent := doc.Parent(el)
		if parent == dom.Null {
			return false
		}
		ch.record(parent, dom.ChildrenAffectedByStructure)
		first := doc.PrevElementSibling(el) == dom.Null
		last := doc.NextElementSibling(el) == dom.Null
		switch p.Kind {
		case selector.PseudoFirstChild:
			return first
		case selector.PseudoLastChild:
			return last
		}
		return first && last
	case selector.PseudoEmpty:
		for c := doc.FirstChild(el); c != dom.Null; c = doc.NextSibling(c) {
			if doc.IsElement(c) || (doc.Kind(c) == dom.TextNode && doc.Text(c) != "") {
				return false
			}
		}
		return true
	case selector.PseudoRoot:
		return doc.Parent(el) == doc.Root()
	}
	tracer().Debugf("pseudo-class %s does not match anything", p)
	return false
}

// matchHost implements :host and :host(<list>). The element has to be the
// shadow host of the scope. Arguments are matched against the host within
// the host's own tree scope.
func (ch *Checker) matchHost(p selector.PseudoClass, el, scope dom.Handle) bool {
	host := ch.doc.ShadowHost(scope)
	if host == dom.Null || el != host {
		return false
	}
	if p.List.IsEmpty() {
		return true
	}
	return ch.MatchList(p.List, host, ch.doc.TreeScope(host))
}

func (ch *Checker) record(h dom.Handle, f dom.Flags) {
	if ch.mode == ModeStyling {
		ch.doc.SetFlag(h, f)
	}
}

// MatchesLanguage compares a content language against a language range,
// with hyphen-boundary semantics: "de" matches "de" and "de-CH", but not
// "deu". Comparison is case-insensitive.
func MatchesLanguage(lang, rng string) bool {
	if lang == "" || rng == "" {
		return false
	}
	lang, rng = strings.ToLower(lang), strings.ToLower(rng)
	if rng == "*" {
		return true
	}
	return lang == rng || strings.HasPrefix(lang, rng+"-")
}
