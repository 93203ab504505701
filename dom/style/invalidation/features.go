package invalidation

import (
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/style/ruleset"
	"github.com/npillmayer/shadowdom/dom/style/selector"
)

// FeatureSet maps selector features (ids, classes, attribute names and
// dynamic pseudo-classes) to the invalidation sets to schedule when an
// element gains or loses the feature.
//
// For every selector, the features of each compound are keyed to the
// features of the rightmost compound: if an element's class changes, and
// the class appears left of the rightmost compound, descendants matching
// the rightmost compound may change style. If the class appears in the
// rightmost compound, the element itself may change style.
type FeatureSet struct {
	ids     map[string]*Set
	classes map[string]*Set
	attrs   map[string]*Set
	pseudos map[selector.PseudoKind]*Set
}

// NewFeatureSet creates an empty feature set.
func NewFeatureSet() *FeatureSet {
	return &FeatureSet{
		ids:     make(map[string]*Set),
		classes: make(map[string]*Set),
		attrs:   make(map[string]*Set),
		pseudos: make(map[selector.PseudoKind]*Set),
	}
}

// AddRuleSet collects the features of every rule of a rule set.
func (fs *FeatureSet) AddRuleSet(rs *ruleset.RuleSet) {
	if rs == nil {
		return
	}
	for _, r := range rs.Rules() {
		fs.AddSelector(r.Selector)
	}
}

// AddSelector collects the features of a single complex selector.
func (fs *FeatureSet) AddSelector(c *selector.Complex) {
	if c == nil || len(c.Compounds) == 0 {
		return
	}
	descendants := descendantFeatures(c.Rightmost())
	last := len(c.Compounds) - 1
	for i, cmp := range c.Compounds {
		_, crossing := cmp.Host()
		fs.collect(cmp, func(s *Set) {
			if i == last {
				s.SetInvalidatesSelf()
			} else {
				s.Combine(descendants)
			}
			if crossing {
				s.SetTreeBoundaryCrossing()
			}
		})
	}
}

// descendantFeatures extracts the features of the subject compound. If the
// subject has no id, class, tag or attribute, every descendant may match.
func descendantFeatures(cmp selector.Compound) *Set {
	s := NewSet()
	for _, id := range cmp.IDs() {
		s.AddID(id)
	}
	for _, c := range cmp.Classes() {
		s.AddClass(c)
	}
	if tag, ok := cmp.TagName(); ok {
		s.AddTag(tag)
	}
	for _, a := range cmp.Attributes() {
		s.AddAttribute(a)
	}
	if s.IsEmpty() {
		s.SetWholeSubtreeInvalid()
	}
	return s
}

// collect calls update for the invalidation set of every feature of a
// compound, including the features of argument lists of :not and :host.
func (fs *FeatureSet) collect(cmp selector.Compound, update func(*Set)) {
	for _, s := range cmp.Simples {
		switch x := s.(type) {
		case selector.ID:
			update(ensure(fs.ids, x.Name))
		case selector.Class:
			update(ensure(fs.classes, x.Name))
		case selector.Attribute:
			update(ensure(fs.attrs, x.Name))
		case selector.PseudoClass:
			if x.Kind.IsDynamic() {
				update(ensure(fs.pseudos, x.Kind))
			}
			if x.List != nil {
				for _, alt := range x.List.Alternatives {
					for _, inner := range alt.Compounds {
						fs.collect(inner, update)
					}
				}
			}
		}
	}
}

func ensure[K comparable](m map[K]*Set, key K) *Set {
	s, ok := m[key]
	if !ok {
		s = NewSet()
		m[key] = s
	}
	return s
}

// ForID returns the invalidation set for an id, or nil.
func (fs *FeatureSet) ForID(id string) *Set {
	return fs.ids[id]
}

// ForClass returns the invalidation set for a class, or nil.
func (fs *FeatureSet) ForClass(class string) *Set {
	return fs.classes[class]
}

// ForAttribute returns the invalidation set for an attribute name, or nil.
func (fs *FeatureSet) ForAttribute(name string) *Set {
	return fs.attrs[name]
}

// ForPseudoClass returns the invalidation set for a dynamic pseudo-class,
// or nil.
func (fs *FeatureSet) ForPseudoClass(kind selector.PseudoKind) *Set {
	return fs.pseudos[kind]
}

// ForClassChange returns the invalidation sets for all classes which are
// contained in exactly one of two class attribute values.
func (fs *FeatureSet) ForClassChange(oldValue, newValue string) []*Set {
	var sets []*Set
	changed := dom.SymmetricDifference(dom.SplitClasses(oldValue), dom.SplitClasses(newValue))
	for _, c := range changed {
		if s := fs.ForClass(c); s != nil {
			sets = append(sets, s)
		}
	}
	return sets
}

// ForIDChange returns the invalidation sets for an id change.
func (fs *FeatureSet) ForIDChange(oldValue, newValue string) []*Set {
	if oldValue == newValue {
		return nil
	}
	var sets []*Set
	for _, id := range []string{oldValue, newValue} {
		if s := fs.ForID(id); id != "" && s != nil {
			sets = append(sets, s)
		}
	}
	return sets
}
