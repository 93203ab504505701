package selector

import (
	"strings"
)

// Simple is a simple selector: Tag, Universal, ID, Class, Attribute or
// PseudoClass. The set of variants is closed.
type Simple interface {
	simple()
	String() string
}

// Tag selects elements by (lower-case) tag name.
type Tag struct {
	Name string
}

// Universal is the '*' selector.
type Universal struct{}

// ID selects elements by id.
type ID struct {
	Name string
}

// Class selects elements by class membership.
type Class struct {
	Name string
}

// AttrOp is the operator of an attribute selector.
type AttrOp uint8

// Attribute selector operators.
const (
	AttrExists    AttrOp = iota // [name]
	AttrEquals                  // [name=value]
	AttrIncludes                // [name~=value]
	AttrContains                // [name*=value]
	AttrPrefix                  // [name^=value]
	AttrSuffix                  // [name$=value]
	AttrDashMatch               // [name|=value]
)

var attrOpStrings = [...]string{"", "=", "~=", "*=", "^=", "$=", "|="}

func (op AttrOp) String() string {
	if int(op) < len(attrOpStrings) {
		return attrOpStrings[op]
	}
	return "?"
}

// Attribute selects elements by attribute presence or value.
type Attribute struct {
	Name            string
	Op              AttrOp
	Value           string
	CaseInsensitive bool
}

// PseudoKind enumerates the pseudo-classes known to the matcher.
type PseudoKind uint8

// Known pseudo-classes. Everything else compiles to PseudoUnknown and will
// never match.
const (
	PseudoUnknown PseudoKind = iota
	PseudoHover
	PseudoActive
	PseudoFocus
	PseudoLang
	PseudoHost
	PseudoNot
	PseudoFirstChild
	PseudoLastChild
	PseudoOnlyChild
	PseudoEmpty
	PseudoRoot
)

var pseudoNames = map[string]PseudoKind{
	"hover":       PseudoHover,
	"active":      PseudoActive,
	"focus":       PseudoFocus,
	"lang":        PseudoLang,
	"host":        PseudoHost,
	"not":         PseudoNot,
	"first-child": PseudoFirstChild,
	"last-child":  PseudoLastChild,
	"only-child":  PseudoOnlyChild,
	"empty":       PseudoEmpty,
	"root":        PseudoRoot,
}

// IsDynamic is true for pseudo-classes depending on user interaction state.
func (k PseudoKind) IsDynamic() bool {
	return k == PseudoHover || k == PseudoActive || k == PseudoFocus
}

// IsStructural is true for pseudo-classes depending on sibling structure.
func (k PseudoKind) IsStructural() bool {
	switch k {
	case PseudoFirstChild, PseudoLastChild, PseudoOnlyChild, PseudoEmpty:
		return true
	}
	return false
}

// PseudoClass is a pseudo-class selector. Arg holds the raw argument for
// functional notation (e.g. the language range for :lang), List holds a
// compiled argument list for :host(…) and :not(…).
type PseudoClass struct {
	Kind PseudoKind
	Name string
	Arg  string
	List *List
}

func (Tag) simple()         {}
func (Universal) simple()   {}
func (ID) simple()          {}
func (Class) simple()       {}
func (Attribute) simple()   {}
func (PseudoClass) simple() {}

func (s Tag) String() string       { return s.Name }
func (s Universal) String() string { return "*" }
func (s ID) String() string        { return "#" + s.Name }
func (s Class) String() string     { return "." + s.Name }

func (s Attribute) String() string {
	if s.Op == AttrExists {
		return "[" + s.Name + "]"
	}
	str := "[" + s.Name + s.Op.String() + "\"" + s.Value + "\""
	if s.CaseInsensitive {
		str += " i"
	}
	return str + "]"
}

func (s PseudoClass) String() string {
	switch {
	case s.List != nil:
		return ":" + s.Name + "(" + s.List.String() + ")"
	case s.Arg != "":
		return ":" + s.Name + "(" + s.Arg + ")"
	}
	return ":" + s.Name
}

// --- Compounds and chains --------------------------------------------------

// Combinator connects a compound selector to the compound on its left.
type Combinator uint8

// Supported combinators.
const (
	NoCombinator Combinator = iota // leftmost compound of a chain
	Descendant                     // whitespace
	Child                          // '>'
)

// Compound is a sequence of simple selectors which all have to match the
// same node. Combinator tells how this compound relates to its left
// neighbour within a Complex.
type Compound struct {
	Simples    []Simple
	Combinator Combinator
}

func (c Compound) String() string {
	var sb strings.Builder
	for _, s := range c.Simples {
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Host returns the :host pseudo-class of this compound, if present.
func (c Compound) Host() (PseudoClass, bool) {
	for _, s := range c.Simples {
		if p, ok := s.(PseudoClass); ok && p.Kind == PseudoHost {
			return p, true
		}
	}
	return PseudoClass{}, false
}

// IDs returns the names of all id selectors of this compound.
func (c Compound) IDs() []string {
	var ids []string
	for _, s := range c.Simples {
		if id, ok := s.(ID); ok {
			ids = append(ids, id.Name)
		}
	}
	return ids
}

// Classes returns the names of all class selectors of this compound.
func (c Compound) Classes() []string {
	var classes []string
	for _, s := range c.Simples {
		if cl, ok := s.(Class); ok {
			classes = append(classes, cl.Name)
		}
	}
	return classes
}

// TagName returns the tag selector of this compound, if present.
func (c Compound) TagName() (string, bool) {
	for _, s := range c.Simples {
		if t, ok := s.(Tag); ok {
			return t.Name, true
		}
	}
	return "", false
}

// Attributes returns the names of all attribute selectors of this compound.
func (c Compound) Attributes() []string {
	var attrs []string
	for _, s := range c.Simples {
		if a, ok := s.(Attribute); ok {
			attrs = append(attrs, a.Name)
		}
	}
	return attrs
}

// Pseudos returns all pseudo-classes of this compound.
func (c Compound) Pseudos() []PseudoClass {
	var pp []PseudoClass
	for _, s := range c.Simples {
		if p, ok := s.(PseudoClass); ok {
			pp = append(pp, p)
		}
	}
	return pp
}

// Complex is a chain of compound selectors, stored left to right.
type Complex struct {
	Compounds []Compound
}

// Rightmost returns the subject compound of the chain.
func (c *Complex) Rightmost() Compound {
	if c == nil || len(c.Compounds) == 0 {
		return Compound{}
	}
	return c.Compounds[len(c.Compounds)-1]
}

func (c *Complex) String() string {
	var sb strings.Builder
	for i, cmp := range c.Compounds {
		if i > 0 {
			switch cmp.Combinator {
			case Child:
				sb.WriteString(" > ")
			default:
				sb.WriteString(" ")
			}
		}
		sb.WriteString(cmp.String())
	}
	return sb.String()
}

// List is a comma separated list of complex selectors. Lists are
// immutable once compiled.
type List struct {
	Alternatives []*Complex
	Text         string
}

// Len returns the number of alternatives.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Alternatives)
}

// IsEmpty is true for a nil list or a list without alternatives.
func (l *List) IsEmpty() bool {
	return l.Len() == 0
}

func (l *List) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(l.Alternatives))
	for i, c := range l.Alternatives {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// IsValidContentFilter checks if this list may be used as the select filter
// of a content insertion point. Filters consist of compound selectors only;
// allowed are tag, universal, id, class and attribute selectors, structural
// pseudo-classes and :not of a valid filter. Everything else invalidates the
// filter.
func (l *List) IsValidContentFilter() bool {
	if l == nil {
		return true
	}
	for _, alt := range l.Alternatives {
		if len(alt.Compounds) != 1 {
			return false
		}
		for _, s := range alt.Compounds[0].Simples {
			p, ok := s.(PseudoClass)
			if !ok {
				continue
			}
			switch {
			case p.Kind.IsStructural():
			case p.Kind == PseudoNot:
				if !p.List.IsValidContentFilter() {
					return false
				}
			default:
				tracer().Debugf("pseudo-class %s not allowed in content filter", p.String())
				return false
			}
		}
	}
	return true
}

// Specificity is the (ids, classes, tags) triple of a selector.
type Specificity [3]int

// Less compares specificities lexicographically.
func (s Specificity) Less(other Specificity) bool {
	for i := range s {
		if s[i] != other[i] {
			return s[i] < other[i]
		}
	}
	return false
}

func (s Specificity) add(other Specificity) Specificity {
	return Specificity{s[0] + other[0], s[1] + other[1], s[2] + other[2]}
}

// Specificity computes the specificity of a complex selector. :not(…)
// counts as its most specific argument, :host(…) as a pseudo-class plus
// its most specific argument.
func (c *Complex) Specificity() Specificity {
	var spec Specificity
	if c == nil {
		return spec
	}
	for _, cmp := range c.Compounds {
		for _, s := range cmp.Simples {
			switch s := s.(type) {
			case ID:
				spec[0]++
			case Class, Attribute:
				spec[1]++
			case Tag:
				spec[2]++
			case PseudoClass:
				if s.Kind != PseudoNot {
					spec[1]++
				}
				spec = spec.add(s.List.maxSpecificity())
			}
		}
	}
	return spec
}

func (l *List) maxSpecificity() Specificity {
	var max Specificity
	if l == nil {
		return max
	}
	for _, alt := range l.Alternatives {
		if s := alt.Specificity(); max.Less(s) {
			max = s
		}
	}
	return max
}
