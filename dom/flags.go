package dom

// StyleChange is the kind of pending style recalculation of a node.
type StyleChange uint8

// Kinds of style changes, in increasing order of impact.
const (
	NoStyleChange      StyleChange = iota
	LocalStyleChange               // the node itself needs recalculation
	SubtreeStyleChange             // the node and its entire subtree
)

func (sc StyleChange) String() string {
	switch sc {
	case LocalStyleChange:
		return "local"
	case SubtreeStyleChange:
		return "subtree"
	}
	return "none"
}

// Flags is a bit set of per-node bookkeeping flags.
type Flags uint32

// Node flags.
const (
	ChildNeedsStyleRecalc Flags = 1 << iota
	NeedsStyleInvalidation
	ChildNeedsStyleInvalidation
	ChildNeedsDistributionRecalc
	AffectedByHover
	AffectedByActive
	AffectedByFocus
	ChildrenAffectedByStructure // a child matched a structural pseudo-class
	IsHovered
	IsActive
	IsFocused
)

// HasFlag tests a flag of a node.
func (doc *Document) HasFlag(h Handle, f Flags) bool {
	n := doc.Node(h)
	return n != nil && n.flags&f != 0
}

// SetFlag sets a flag of a node.
func (doc *Document) SetFlag(h Handle, f Flags) {
	if n := doc.Node(h); n != nil {
		n.flags |= f
	}
}

// ClearFlag clears a flag of a node.
func (doc *Document) ClearFlag(h Handle, f Flags) {
	if n := doc.Node(h); n != nil {
		n.flags &^= f
	}
}

// StyleChangeType returns the pending style change of a node.
func (doc *Document) StyleChangeType(h Handle) StyleChange {
	if n := doc.Node(h); n != nil {
		return n.styleChange
	}
	return NoStyleChange
}

// NeedsStyleRecalc is true if a node has a pending style change.
func (doc *Document) NeedsStyleRecalc(h Handle) bool {
	return doc.StyleChangeType(h) != NoStyleChange
}

// SetNeedsStyleRecalc records a pending style change for a node. Changes are
// never downgraded. Shadow-including ancestors are marked with
// ChildNeedsStyleRecalc.
func (doc *Document) SetNeedsStyleRecalc(h Handle, change StyleChange) {
	n := doc.Node(h)
	if n == nil || change <= n.styleChange {
		return
	}
	n.styleChange = change
	for p := doc.ParentOrShadowHost(h); p != Null; p = doc.ParentOrShadowHost(p) {
		if doc.HasFlag(p, ChildNeedsStyleRecalc) {
			break
		}
		doc.SetFlag(p, ChildNeedsStyleRecalc)
	}
}

// ClearNeedsStyleRecalc clears the pending style change of a node and its
// ChildNeedsStyleRecalc flag.
func (doc *Document) ClearNeedsStyleRecalc(h Handle) {
	if n := doc.Node(h); n != nil {
		n.styleChange = NoStyleChange
		n.flags &^= ChildNeedsStyleRecalc
	}
}

// SetNeedsStyleInvalidation flags a node as carrying pending invalidation
// sets and marks shadow-including ancestors with ChildNeedsStyleInvalidation.
func (doc *Document) SetNeedsStyleInvalidation(h Handle) {
	n := doc.Node(h)
	if n == nil {
		return
	}
	n.flags |= NeedsStyleInvalidation
	for p := doc.ParentOrShadowHost(h); p != Null; p = doc.ParentOrShadowHost(p) {
		if doc.HasFlag(p, ChildNeedsStyleInvalidation) {
			break
		}
		doc.SetFlag(p, ChildNeedsStyleInvalidation)
	}
}

// ClearStyleInvalidation clears NeedsStyleInvalidation and
// ChildNeedsStyleInvalidation of a node.
func (doc *Document) ClearStyleInvalidation(h Handle) {
	doc.ClearFlag(h, NeedsStyleInvalidation|ChildNeedsStyleInvalidation)
}

// NeedsStyleInvalidation is true for nodes with pending invalidation sets.
func (doc *Document) NeedsStyleInvalidation(h Handle) bool {
	return doc.HasFlag(h, NeedsStyleInvalidation)
}

// ChildNeedsStyleInvalidation is true if a descendant carries pending
// invalidation sets.
func (doc *Document) ChildNeedsStyleInvalidation(h Handle) bool {
	return doc.HasFlag(h, ChildNeedsStyleInvalidation)
}

// --- User interaction state ------------------------------------------------

// SetHovered sets the hover state of an element.
func (doc *Document) SetHovered(h Handle, on bool) {
	doc.setState(h, IsHovered, on)
}

// SetActive sets the active state of an element.
func (doc *Document) SetActive(h Handle, on bool) {
	doc.setState(h, IsActive, on)
}

// SetFocused sets the focus state of an element.
func (doc *Document) SetFocused(h Handle, on bool) {
	doc.setState(h, IsFocused, on)
}

func (doc *Document) setState(h Handle, f Flags, on bool) {
	if on {
		doc.SetFlag(h, f)
	} else {
		doc.ClearFlag(h, f)
	}
}
