package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'shadowdom.tree'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.tree")
}

// ErrEmptyTree is returned if a Walker is called with an empty tree.
var ErrEmptyTree = errors.New("cannot walk empty tree")

// Walker holds information for operating on trees: finding nodes and
// doing work on them. Clients usually create a Walker for a (sub-)tree
// to search for a selection of nodes matching certain criteria.
//
// Walkers operate synchronously; every operation runs to completion before
// it returns. A typical usage of a Walker looks like this:
//
//    w := tree.NewWalker(t, node)
//    nodes, err := w.DescendantsWith(isElement)
//
type Walker[T any] struct {
	tree    *Tree[T]
	initial ID
}

// NewWalker creates a Walker for the initial node of a (sub-)tree.
func NewWalker[T any](t *Tree[T], initial ID) *Walker[T] {
	return &Walker[T]{tree: t, initial: initial}
}

// Predicate is a function type to match against nodes of a tree.
// Is is used as an argument for various Walker functions to
// collect a selection of nodes.
type Predicate[T any] func(n ID, payload T) bool

// Whatever is a predicate to match anything (see type Predicate).
// It is useful to match the first node in a given direction.
func Whatever[T any]() Predicate[T] {
	return func(ID, T) bool {
		return true
	}
}

// NodeIsLeaf returns a predicate to match leafs of a tree.
func NodeIsLeaf[T any](t *Tree[T]) Predicate[T] {
	return func(n ID, _ T) bool {
		return t.FirstChild(n) == None
	}
}

// Action is a function type to operate on tree nodes. If an action returns
// false, the children of the node will not be visited.
type Action[T any] func(n ID, parent ID, position int) (descend bool, err error)

func (w *Walker[T]) check() error {
	if w == nil || w.tree == nil || !w.tree.Valid(w.initial) {
		return ErrEmptyTree
	}
	return nil
}

// AncestorWith finds the nearest ancestor matching the given predicate.
// The search does not include the start node.
func (w *Walker[T]) AncestorWith(predicate Predicate[T]) (ID, error) {
	if err := w.check(); err != nil {
		return None, err
	}
	for n := w.tree.Parent(w.initial); n != None; n = w.tree.Parent(n) {
		if predicate(n, w.tree.Payload(n)) {
			return n, nil
		}
	}
	return None, nil
}

// DescendantsWith finds descendants matching a predicate, in document order.
// The search does not include the start node.
func (w *Walker[T]) DescendantsWith(predicate Predicate[T]) ([]ID, error) {
	if err := w.check(); err != nil {
		return nil, err
	}
	var result []ID
	err := w.TopDown(func(n ID, parent ID, position int) (bool, error) {
		if n != w.initial && predicate(n, w.tree.Payload(n)) {
			result = append(result, n)
		}
		return true, nil
	})
	return result, err
}

// TopDown traverses a tree starting at (and including) the initial node.
// The traversal guarantees that parents are always processed before
// their children, and siblings in document order.
//
// If the action function returns an error for a node, the traversal stops
// and the error is returned.
func (w *Walker[T]) TopDown(action Action[T]) error {
	if err := w.check(); err != nil {
		return err
	}
	t := w.tree
	type frame struct {
		node, parent ID
		position     int
	}
	stack := []frame{{w.initial, t.Parent(w.initial), t.IndexOfChild(t.Parent(w.initial), w.initial)}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		descend, err := action(f.node, f.parent, f.position)
		if err != nil {
			tracer().Debugf("tree walker stopped at node %d: %v", f.node, err)
			return err
		}
		if !descend {
			continue
		}
		// push children in reverse order
		pos := t.ChildCount(f.node) - 1
		for ch := t.LastChild(f.node); ch != None; ch = t.PrevSibling(ch) {
			stack = append(stack, frame{ch, f.node, pos})
			pos--
		}
	}
	return nil
}

// CalcRank returns the number of nodes of the subtree rooted at the
// initial node, including the initial node.
func (w *Walker[T]) CalcRank() int {
	if w.check() != nil {
		return 0
	}
	rank := 0
	_ = w.TopDown(func(ID, ID, int) (bool, error) {
		rank++
		return true, nil
	})
	return rank
}
