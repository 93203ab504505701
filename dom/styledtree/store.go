package styledtree

import (
	"sort"

	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/composed"
	"github.com/npillmayer/shadowdom/dom/style"
	"github.com/npillmayer/shadowdom/dom/style/ruleset"
)

// RuleSource yields the rules matching an element, collected from all the
// rule sets which may style it, one rule set per tree scope. The rules of a
// rule set are expected to be contiguous. For rules of equal specificity,
// rule sets later in the result take precedence.
type RuleSource interface {
	MatchingRules(el dom.Handle) []*ruleset.Rule
}

// Store holds the computed styles of the elements of a document.
type Store struct {
	doc     *dom.Document
	walker  *composed.Walker
	rules   RuleSource
	styles  map[dom.Handle]*style.PropertyMap
	initial *style.PropertyMap
}

// NewStore creates a style store for the document a walker navigates.
// Inherited properties not set on any composed ancestor fall back to the
// initial values, which may be extended with additional properties.
func NewStore(walker *composed.Walker, rules RuleSource, additional ...style.KeyValue) *Store {
	return &Store{
		doc:     walker.Document(),
		walker:  walker,
		rules:   rules,
		styles:  make(map[dom.Handle]*style.PropertyMap),
		initial: style.InitialValues(additional),
	}
}

// Styles returns the computed styles of an element. The result is nil for
// elements which have not been styled yet.
func (s *Store) Styles(el dom.Handle) *style.PropertyMap {
	return s.styles[el]
}

// SetStyles sets the computed styles of an element.
func (s *Store) SetStyles(el dom.Handle, styles *style.PropertyMap) {
	s.styles[el] = styles
}

// Len returns the number of styled elements.
func (s *Store) Len() int {
	return len(s.styles)
}

// Compute computes the styles of an element from its matching rules and
// stores them.
func (s *Store) Compute(el dom.Handle) *style.PropertyMap {
	if !s.doc.IsElement(el) {
		return nil
	}
	rules := cascadeOrder(s.rules.MatchingRules(el))
	pmap := style.NewPropertyMap()
	for _, important := range []bool{false, true} {
		for _, r := range rules {
			if r.Decl == nil {
				continue
			}
			for _, key := range r.Decl.Properties() {
				if r.Decl.IsImportant(key) == important {
					s.apply(pmap, key, r.Decl.Value(key))
				}
			}
		}
	}
	s.styles[el] = pmap
	tracer().Debugf("computed style of <%s> (node %d) from %d rules", s.doc.TagName(el), el, len(rules))
	return pmap
}

// cascadeOrder sorts matching rules by ascending precedence: by specificity,
// then by the order of their rule sets, then by source position.
func cascadeOrder(matching []*ruleset.Rule) []*ruleset.Rule {
	rules := make([]*ruleset.Rule, len(matching))
	copy(rules, matching)
	rank := make(map[dom.Handle]int)
	for _, r := range rules {
		if _, ok := rank[r.Scope]; !ok {
			rank[r.Scope] = len(rank)
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if sa, sb := a.Selector.Specificity(), b.Selector.Specificity(); sa != sb {
			return sa.Less(sb)
		}
		if rank[a.Scope] != rank[b.Scope] {
			return rank[a.Scope] < rank[b.Scope]
		}
		return a.Position < b.Position
	})
	return rules
}

func (s *Store) apply(pmap *style.PropertyMap, key string, value style.Property) {
	if !style.IsCompoundProperty(key) {
		pmap.Set(key, value)
		return
	}
	props, err := style.SplitCompoundProperty(key, value)
	if err != nil {
		tracer().Errorf("skipping property %s: %v", key, err)
		return
	}
	for _, kv := range props {
		pmap.Set(kv.Key, kv.Value)
	}
}

// Property returns the value of a property for an element. If the property
// is not set locally and is inherited (or set to "inherit"), the search
// cascades to the composed ancestors and finally to the initial values.
// A value of "initial" resolves to the initial value of the property.
// Otherwise the user-agent default for the element is returned.
func (s *Store) Property(el dom.Handle, key string) style.Property {
	p, ok := s.styles[el].Property(key)
	switch {
	case ok && p.IsInitial():
		return s.initialValue(el, key)
	case ok && !p.IsInherit() && !p.IsEmpty():
		return p
	}
	if p.IsInherit() || style.IsCascading(key) {
		if parent := s.walker.ParentElement(el); parent != dom.Null {
			return s.Property(parent, key)
		}
		return s.initialValue(el, key)
	}
	return style.UserAgentDefault(s.doc.TagName(el), key)
}

// initialValue looks up a property in the group chain of the initial
// values, falling back to the user-agent default for the element.
func (s *Store) initialValue(el dom.Handle, key string) style.Property {
	group := s.initial.Group(style.GroupNameFromPropertyKey(key))
	if g := group.Cascade(key); g != nil {
		p, _ := g.Get(key)
		return p
	}
	return style.UserAgentDefault(s.doc.TagName(el), key)
}

// --- Recalculation ---------------------------------------------------------

// ShareStyle lets an element share the style of its previous element
// sibling in the composed tree, if both are indistinguishable by selectors
// and the sibling's style is up to date. Sharing copies the sibling's
// property map.
func (s *Store) ShareStyle(el dom.Handle) bool {
	doc := s.doc
	sib := s.previousElementSibling(el)
	if sib == dom.Null || doc.NeedsStyleRecalc(sib) || s.styles[sib] == nil {
		return false
	}
	if doc.IsShadowHost(el) || doc.IsShadowHost(sib) || !s.sameFeatures(el, sib) {
		return false
	}
	s.styles[el] = s.styles[sib].Clone()
	tracer().Debugf("node %d shares style with node %d", el, sib)
	return true
}

// Recompute recomputes the style of an element.
func (s *Store) Recompute(el dom.Handle) {
	s.Compute(el)
}

func (s *Store) previousElementSibling(el dom.Handle) dom.Handle {
	for sib := s.walker.PreviousSibling(el); sib != dom.Null; sib = s.walker.PreviousSibling(sib) {
		if s.doc.IsElement(sib) {
			return sib
		}
	}
	return dom.Null
}

// sameFeatures is true if two elements have the same tag, id, classes and
// attributes, and the same interaction state.
func (s *Store) sameFeatures(a, b dom.Handle) bool {
	doc := s.doc
	if doc.TagName(a) != doc.TagName(b) || doc.ID(a) != doc.ID(b) {
		return false
	}
	for _, f := range []dom.Flags{dom.IsHovered, dom.IsActive, dom.IsFocused} {
		if doc.HasFlag(a, f) != doc.HasFlag(b, f) {
			return false
		}
	}
	aa, ba := doc.Attributes(a), doc.Attributes(b)
	if len(aa) != len(ba) {
		return false
	}
	values := make(map[string]string, len(aa))
	for _, attr := range aa {
		values[attr.Key] = attr.Val
	}
	for _, attr := range ba {
		if v, ok := values[attr.Key]; !ok || v != attr.Val {
			return false
		}
	}
	return len(dom.SymmetricDifference(doc.Classes(a), doc.Classes(b))) == 0
}

// RecalcStyle recomputes the styles of all elements at or below root which
// need a style recalculation, and clears their style change flags. Nodes
// flagged with a subtree change have all their descendants recomputed.
// It returns the number of elements recomputed.
func (s *Store) RecalcStyle(root dom.Handle) int {
	n := s.recalc(root, false)
	tracer().Infof("style recalc: %d elements recomputed", n)
	return n
}

func (s *Store) recalc(h dom.Handle, force bool) int {
	doc := s.doc
	change := doc.StyleChangeType(h)
	if !force && change == dom.NoStyleChange && !doc.HasFlag(h, dom.ChildNeedsStyleRecalc) {
		return 0
	}
	count := 0
	if doc.IsElement(h) && (force || change != dom.NoStyleChange) {
		s.Compute(h)
		count++
	}
	force = force || change == dom.SubtreeStyleChange
	doc.ClearNeedsStyleRecalc(h)
	for _, c := range s.walker.ShadowIncludingChildren(h) {
		count += s.recalc(c, force)
	}
	return count
}
