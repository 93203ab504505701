package invalidation

import (
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/composed"
)

// StyleRecalc is implemented by the holder of computed styles. During an
// invalidation pass, an element which has not been invalidated itself, but
// has invalidated descendants, is offered to ShareStyle first. If the
// style cannot be shared, it is recomputed.
type StyleRecalc interface {
	ShareStyle(el dom.Handle) bool
	Recompute(el dom.Handle)
}

// Stats reports the work done by an invalidation pass.
type Stats struct {
	Visited    int // nodes visited
	Dirtied    int // nodes whose style change type has been raised
	Recomputed int // ancestors of dirty nodes recomputed
	Shared     int // ancestors of dirty nodes which shared a style
}

// Scheduler collects invalidation sets scheduled on elements and turns them
// into style change flags.
type Scheduler struct {
	doc     *dom.Document
	walker  *composed.Walker
	recalc  StyleRecalc
	pending map[dom.Handle][]*Set
}

// NewScheduler creates a scheduler for the document a walker navigates.
func NewScheduler(walker *composed.Walker) *Scheduler {
	return &Scheduler{
		doc:     walker.Document(),
		walker:  walker,
		pending: make(map[dom.Handle][]*Set),
	}
}

// SetStyleRecalc sets the receiver of share/recompute requests. It may be nil.
func (s *Scheduler) SetStyleRecalc(r StyleRecalc) {
	s.recalc = r
}

// Schedule appends an invalidation set to the pending sets of an element.
// If the element already has a pending whole-subtree set, nothing is added.
// A whole-subtree set replaces all other pending sets.
func (s *Scheduler) Schedule(set *Set, el dom.Handle) {
	if set.IsEmpty() || !s.doc.IsElement(el) {
		return
	}
	list := s.pending[el]
	for _, p := range list {
		if p.WholeSubtreeInvalid() {
			return
		}
	}
	if set.WholeSubtreeInvalid() {
		s.pending[el] = []*Set{set}
	} else {
		s.pending[el] = append(list, set)
	}
	s.doc.SetNeedsStyleInvalidation(el)
	tracer().Debugf("scheduled %v on node %d", set, el)
}

// ScheduleAll schedules a number of sets on an element.
func (s *Scheduler) ScheduleAll(sets []*Set, el dom.Handle) {
	for _, set := range sets {
		s.Schedule(set, el)
	}
}

// Pending returns the sets currently scheduled on an element.
func (s *Scheduler) Pending(el dom.Handle) []*Set {
	return s.pending[el]
}

// recursionData is the state of an invalidation pass for one node. It is
// passed by value, so changes made for a node are only seen by the node's
// descendants.
type recursionData struct {
	sets         []*Set // sets active on the ancestor path
	wholeSubtree bool   // an ancestor has been invalidated with its subtree
	crossed      bool   // the walk entered a shadow tree below the sets' origin
}

func (rd recursionData) activate(pending []*Set) recursionData {
	rd.sets = append(rd.sets[:len(rd.sets):len(rd.sets)], pending...)
	for _, p := range pending {
		if p.WholeSubtreeInvalid() {
			rd.wholeSubtree = true
		}
	}
	return rd
}

// enterShadowTree drops all sets which must not cross a tree boundary.
func (rd recursionData) enterShadowTree() recursionData {
	var sets []*Set
	for _, s := range rd.sets {
		if s.TreeBoundaryCrossing() {
			sets = append(sets, s)
		}
	}
	rd.sets = sets
	rd.crossed = true
	return rd
}

func (rd recursionData) matches(doc *dom.Document, el dom.Handle) bool {
	for _, s := range rd.sets {
		if s.Matches(doc, el) {
			return true
		}
	}
	return false
}

func (rd recursionData) isActive() bool {
	return rd.wholeSubtree || len(rd.sets) > 0
}

type pass struct {
	stats Stats
	seen  map[dom.Handle]bool
}

// Invalidate evaluates all pending invalidation sets at or below root in a
// single depth-first pass, following shadow roots. Elements matched by an
// active set get a style change flag. Afterwards no element at or below
// root carries pending sets or invalidation flags.
func (s *Scheduler) Invalidate(root dom.Handle) Stats {
	p := &pass{seen: make(map[dom.Handle]bool)}
	s.invalidate(root, recursionData{}, p)
	if p.stats.Dirtied > 0 {
		tracer().Infof("invalidation: %d visited, %d dirtied, %d recomputed, %d shared",
			p.stats.Visited, p.stats.Dirtied, p.stats.Recomputed, p.stats.Shared)
	}
	return p.stats
}

// invalidate processes a node and returns true if the node or any of its
// descendants has been dirtied.
func (s *Scheduler) invalidate(n dom.Handle, rd recursionData, p *pass) bool {
	doc := s.doc
	if p.seen[n] {
		tracer().Errorf("invalidation reached node %d twice, stopping", n)
		return false
	}
	p.seen[n] = true
	p.stats.Visited++
	self := false
	if doc.StyleChangeType(n) == dom.SubtreeStyleChange || rd.wholeSubtree {
		self = s.dirty(n, dom.SubtreeStyleChange, p)
		rd.wholeSubtree = true
	} else if doc.IsElement(n) {
		pending := s.pending[n]
		if len(pending) > 0 {
			rd = rd.activate(pending)
		}
		switch {
		case rd.wholeSubtree:
			self = s.dirty(n, dom.SubtreeStyleChange, p)
		case invalidatesSelf(pending) || rd.matches(doc, n):
			self = s.dirty(n, dom.LocalStyleChange, p)
		}
	}
	if self && rd.crossed {
		tracer().Debugf("node %d invalidated from outside its tree scope", n)
	}
	delete(s.pending, n)
	descend := rd.isActive() || doc.ChildNeedsStyleInvalidation(n)
	doc.ClearStyleInvalidation(n)
	below := false
	if descend {
		for _, c := range s.walker.ShadowIncludingChildren(n) {
			crd := rd
			if doc.IsShadowRoot(c) {
				crd = rd.enterShadowTree()
			}
			if s.invalidate(c, crd, p) {
				below = true
			}
		}
	}
	if !self && below && doc.IsElement(n) && s.recalc != nil {
		if s.recalc.ShareStyle(n) {
			p.stats.Shared++
		} else {
			s.recalc.Recompute(n)
			p.stats.Recomputed++
		}
	}
	return self || below
}

// dirty raises the style change type of an element. It returns true if the
// element is dirty afterwards. Other nodes are left untouched.
func (s *Scheduler) dirty(n dom.Handle, change dom.StyleChange, p *pass) bool {
	if !s.doc.IsElement(n) {
		return false
	}
	if s.doc.StyleChangeType(n) < change {
		s.doc.SetNeedsStyleRecalc(n, change)
		p.stats.Dirtied++
		tracer().Debugf("node %d needs %v style recalc", n, change)
	}
	return true
}

func invalidatesSelf(sets []*Set) bool {
	for _, s := range sets {
		if s.InvalidatesSelf() {
			return true
		}
	}
	return false
}
