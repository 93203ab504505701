package invalidation

import (
	"sort"
	"strings"

	"github.com/npillmayer/shadowdom/dom"
)

type stringSet map[string]struct{}

func (s *stringSet) add(str string) {
	if *s == nil {
		*s = make(stringSet)
	}
	(*s)[str] = struct{}{}
}

func (s stringSet) has(str string) bool {
	_, ok := s[str]
	return ok
}

func (s stringSet) sorted() []string {
	if len(s) == 0 {
		return nil
	}
	l := make([]string, 0, len(s))
	for k := range s {
		l = append(l, k)
	}
	sort.Strings(l)
	return l
}

// Set is an invalidation set. It is scheduled on an element and describes
// which of the element's descendants need style recalculation.
type Set struct {
	ids          stringSet
	classes      stringSet
	tags         stringSet
	attributes   stringSet
	wholeSubtree bool
	crossing     bool
	self         bool
}

// NewSet creates an empty invalidation set.
func NewSet() *Set {
	return &Set{}
}

// AddID adds an id to the set.
func (s *Set) AddID(id string) *Set {
	if !s.wholeSubtree {
		s.ids.add(id)
	}
	return s
}

// AddClass adds a class to the set.
func (s *Set) AddClass(class string) *Set {
	if !s.wholeSubtree {
		s.classes.add(class)
	}
	return s
}

// AddTag adds a tag name to the set.
func (s *Set) AddTag(tag string) *Set {
	if !s.wholeSubtree {
		s.tags.add(tag)
	}
	return s
}

// AddAttribute adds an attribute name to the set.
func (s *Set) AddAttribute(name string) *Set {
	if !s.wholeSubtree {
		s.attributes.add(name)
	}
	return s
}

// SetWholeSubtreeInvalid makes the set match every descendant. Individual
// features are dropped.
func (s *Set) SetWholeSubtreeInvalid() *Set {
	s.wholeSubtree = true
	s.ids, s.classes, s.tags, s.attributes = nil, nil, nil, nil
	return s
}

// WholeSubtreeInvalid is true if the set matches every descendant.
func (s *Set) WholeSubtreeInvalid() bool {
	return s.wholeSubtree
}

// SetTreeBoundaryCrossing lets the set reach into shadow trees below the
// element it is scheduled on.
func (s *Set) SetTreeBoundaryCrossing() *Set {
	s.crossing = true
	return s
}

// TreeBoundaryCrossing is true if the set reaches into shadow trees.
func (s *Set) TreeBoundaryCrossing() bool {
	return s.crossing
}

// SetInvalidatesSelf makes the set invalidate the element it is scheduled
// on, in addition to descendants.
func (s *Set) SetInvalidatesSelf() *Set {
	s.self = true
	return s
}

// InvalidatesSelf is true if the set invalidates the element it is
// scheduled on.
func (s *Set) InvalidatesSelf() bool {
	return s.self
}

// IsEmpty is true if the set invalidates nothing at all.
func (s *Set) IsEmpty() bool {
	return s == nil || (!s.wholeSubtree && !s.self && len(s.ids) == 0 && len(s.classes) == 0 &&
		len(s.tags) == 0 && len(s.attributes) == 0)
}

// Combine adds all features and flags of other to s.
func (s *Set) Combine(other *Set) *Set {
	if other == nil || s == other {
		return s
	}
	if other.crossing {
		s.crossing = true
	}
	if other.self {
		s.self = true
	}
	if s.wholeSubtree {
		return s
	}
	if other.wholeSubtree {
		return s.SetWholeSubtreeInvalid()
	}
	for k := range other.ids {
		s.ids.add(k)
	}
	for k := range other.classes {
		s.classes.add(k)
	}
	for k := range other.tags {
		s.tags.add(k)
	}
	for k := range other.attributes {
		s.attributes.add(k)
	}
	return s
}

// Matches is a predicate: is an element invalidated by this set, if the set
// is active for one of its ancestors?
func (s *Set) Matches(doc *dom.Document, el dom.Handle) bool {
	if s == nil || !doc.IsElement(el) {
		return false
	}
	if s.wholeSubtree {
		return true
	}
	if len(s.tags) > 0 && s.tags.has(doc.TagName(el)) {
		return true
	}
	if id := doc.ID(el); id != "" && s.ids.has(id) {
		return true
	}
	if len(s.classes) > 0 {
		for _, c := range doc.Classes(el) {
			if s.classes.has(c) {
				return true
			}
		}
	}
	for a := range s.attributes {
		if _, ok := doc.Attribute(el, a); ok {
			return true
		}
	}
	return false
}

func (s *Set) String() string {
	if s == nil {
		return "{}"
	}
	var parts []string
	if s.wholeSubtree {
		parts = append(parts, "*")
	}
	for _, id := range s.ids.sorted() {
		parts = append(parts, "#"+id)
	}
	for _, c := range s.classes.sorted() {
		parts = append(parts, "."+c)
	}
	parts = append(parts, s.tags.sorted()...)
	for _, a := range s.attributes.sorted() {
		parts = append(parts, "["+a+"]")
	}
	if s.self {
		parts = append(parts, "$self")
	}
	if s.crossing {
		parts = append(parts, "$crossing")
	}
	return "{" + strings.Join(parts, " ") + "}"
}
