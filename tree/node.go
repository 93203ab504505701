package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
)

/*
We manage a tree of mutable nodes living in an arena. Each node carries a
payload of type parameter T. Nodes are addressed by an ID, which is an
index into the arena. Links between nodes (parent, children, siblings) are
stored as IDs as well, never as pointers, so there is no ownership cycle
between a parent and its children.

IDs are never re-used: a node removed from the tree stays in the arena as an
isolated node and may be re-inserted later.
*/

// ID addresses a node within a tree arena.
type ID uint32

// None is the null node. It is never a valid node of any tree.
const None ID = 0

// ErrInvalidNode is returned if an operation is called with an ID not
// belonging to the tree.
var ErrInvalidNode = errors.New("invalid tree node")

// ErrCycle is returned if inserting a node would make it its own ancestor.
var ErrCycle = errors.New("insertion would create a cycle")

// ErrHasParent is returned if a node to insert is still connected to a parent.
var ErrHasParent = errors.New("node is already attached to a parent")

// ErrNotAChild is returned if a reference node is not a child of the given parent.
var ErrNotAChild = errors.New("reference node is not a child of parent")

type slot[T any] struct {
	payload T
	parent  ID
	first   ID // first child
	last    ID // last child
	next    ID // next sibling
	prev    ID // previous sibling
	count   int
}

// Tree is an arena of nodes. The zero value is not usable, clients have to
// call New.
type Tree[T any] struct {
	slots []slot[T]
}

// New creates an empty tree arena.
func New[T any]() *Tree[T] {
	return &Tree[T]{
		slots: make([]slot[T], 1, 64), // slot 0 is None
	}
}

// NewNode creates a new isolated node with a given payload.
func (t *Tree[T]) NewNode(payload T) ID {
	t.slots = append(t.slots, slot[T]{payload: payload})
	return ID(len(t.slots) - 1)
}

// Len returns the number of nodes ever created in this arena.
func (t *Tree[T]) Len() int {
	return len(t.slots) - 1
}

// Valid checks if n addresses a node of t.
func (t *Tree[T]) Valid(n ID) bool {
	return n != None && int(n) < len(t.slots)
}

func (t *Tree[T]) String() string {
	return fmt.Sprintf("(Tree #nodes=%d)", t.Len())
}

// Payload returns the payload of node n. For invalid nodes the zero value
// of T is returned.
func (t *Tree[T]) Payload(n ID) T {
	if !t.Valid(n) {
		var zero T
		return zero
	}
	return t.slots[n].payload
}

// Ref returns a pointer to the payload of node n, or nil for invalid nodes.
// The pointer is valid until the next call to NewNode.
func (t *Tree[T]) Ref(n ID) *T {
	if !t.Valid(n) {
		return nil
	}
	return &t.slots[n].payload
}

// SetPayload replaces the payload of node n.
func (t *Tree[T]) SetPayload(n ID, payload T) {
	if t.Valid(n) {
		t.slots[n].payload = payload
	}
}

// Parent returns the parent node or None (for the root of the tree or for
// isolated nodes).
func (t *Tree[T]) Parent(n ID) ID {
	if !t.Valid(n) {
		return None
	}
	return t.slots[n].parent
}

// FirstChild returns the first child of n or None.
func (t *Tree[T]) FirstChild(n ID) ID {
	if !t.Valid(n) {
		return None
	}
	return t.slots[n].first
}

// LastChild returns the last child of n or None.
func (t *Tree[T]) LastChild(n ID) ID {
	if !t.Valid(n) {
		return None
	}
	return t.slots[n].last
}

// NextSibling returns the next sibling of n or None.
func (t *Tree[T]) NextSibling(n ID) ID {
	if !t.Valid(n) {
		return None
	}
	return t.slots[n].next
}

// PrevSibling returns the previous sibling of n or None.
func (t *Tree[T]) PrevSibling(n ID) ID {
	if !t.Valid(n) {
		return None
	}
	return t.slots[n].prev
}

// ChildCount returns the number of children-nodes for a node.
func (t *Tree[T]) ChildCount(n ID) int {
	if !t.Valid(n) {
		return 0
	}
	return t.slots[n].count
}

// Children returns a slice with all children of a node.
func (t *Tree[T]) Children(n ID) []ID {
	if !t.Valid(n) {
		return nil
	}
	children := make([]ID, 0, t.slots[n].count)
	for ch := t.slots[n].first; ch != None; ch = t.slots[ch].next {
		children = append(children, ch)
	}
	return children
}

// IndexOfChild returns the index of a child within the list of children
// of its parent, or -1 if ch is not a child of n.
func (t *Tree[T]) IndexOfChild(n ID, ch ID) int {
	if !t.Valid(n) || !t.Valid(ch) || t.slots[ch].parent != n {
		return -1
	}
	i := 0
	for c := t.slots[n].first; c != None; c = t.slots[c].next {
		if c == ch {
			return i
		}
		i++
	}
	return -1
}

// IsAncestorOf is a predicate: is a an inclusive ancestor of d?
func (t *Tree[T]) IsAncestorOf(a ID, d ID) bool {
	if !t.Valid(a) {
		return false
	}
	for n := d; n != None; n = t.Parent(n) {
		if n == a {
			return true
		}
	}
	return false
}

// Root returns the root of the tree n is part of.
func (t *Tree[T]) Root(n ID) ID {
	if !t.Valid(n) {
		return None
	}
	for t.slots[n].parent != None {
		n = t.slots[n].parent
	}
	return n
}

// AppendChild inserts a new child node into the tree, as the last child of
// parent. The child must be an isolated node.
func (t *Tree[T]) AppendChild(parent ID, ch ID) error {
	return t.InsertBefore(parent, ch, None)
}

// InsertBefore inserts an isolated node ch as a child of parent, before the
// child ref. If ref is None, ch will be appended as the last child.
func (t *Tree[T]) InsertBefore(parent ID, ch ID, ref ID) error {
	if !t.Valid(parent) || !t.Valid(ch) {
		return ErrInvalidNode
	}
	if t.slots[ch].parent != None {
		return ErrHasParent
	}
	if t.IsAncestorOf(ch, parent) {
		return ErrCycle
	}
	if ref != None && (!t.Valid(ref) || t.slots[ref].parent != parent) {
		return ErrNotAChild
	}
	p := &t.slots[parent]
	c := &t.slots[ch]
	c.parent = parent
	if ref == None {
		c.prev = p.last
		c.next = None
		if p.last != None {
			t.slots[p.last].next = ch
		} else {
			p.first = ch
		}
		p.last = ch
	} else {
		r := &t.slots[ref]
		c.prev = r.prev
		c.next = ref
		if r.prev != None {
			t.slots[r.prev].next = ch
		} else {
			p.first = ch
		}
		r.prev = ch
	}
	p.count++
	return nil
}

// Isolate removes a node from its parent.
// Isolate returns the isolated node. The node keeps its own children.
func (t *Tree[T]) Isolate(n ID) ID {
	if !t.Valid(n) {
		return None
	}
	s := &t.slots[n]
	if s.parent == None {
		return n
	}
	p := &t.slots[s.parent]
	if s.prev != None {
		t.slots[s.prev].next = s.next
	} else {
		p.first = s.next
	}
	if s.next != None {
		t.slots[s.next].prev = s.prev
	} else {
		p.last = s.prev
	}
	p.count--
	s.parent, s.prev, s.next = None, None, None
	return n
}
